package runspec

import (
	"fmt"
	"os"

	"github.com/DjordjeVuckovic/probe-report/internal/apperr"
	"github.com/DjordjeVuckovic/probe-report/internal/metrics"
	"github.com/DjordjeVuckovic/probe-report/internal/task"
	"gopkg.in/yaml.v3"
)

func LoadFromFile(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run spec file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*RunSpec, error) {
	var s RunSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse run spec YAML: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate applies defaults and rejects specs that would fail only after reading data.
func Validate(s *RunSpec) error {
	if s.DataDir == "" {
		return apperr.NewValidation("run spec has no data_dir")
	}
	if len(s.Tasks) == 0 {
		return apperr.NewValidation("run spec has no tasks")
	}
	if _, err := task.ParseAll(s.Tasks); err != nil {
		return apperr.NewValidationWrap("run spec tasks", err)
	}
	if _, err := metrics.ParseCorrelationKind(s.Correlation); err != nil {
		return apperr.NewValidationWrap("run spec correlation", err)
	}
	if s.DropParts != nil {
		if *s.DropParts <= 0 {
			return apperr.NewValidation(fmt.Sprintf("drop_parts must be positive, got %d", *s.DropParts))
		}
		if s.ProbeThreshold == nil {
			return apperr.NewValidation("drop_parts needs probe_threshold")
		}
	}
	if s.LayerIndex != nil && *s.LayerIndex < -1 {
		return apperr.NewValidation(fmt.Sprintf("layer_index must be -1 or a layer, got %d", *s.LayerIndex))
	}

	switch s.Probe.Type {
	case "":
		s.Probe.Type = ProbeLinear
		fallthrough
	case ProbeLinear:
		if s.Probe.Path == "" {
			return apperr.NewValidation("linear probe has no path")
		}
	case ProbeRemote:
		if s.Probe.Address == "" {
			return apperr.NewValidation("remote probe has no address")
		}
	default:
		return apperr.NewValidation(fmt.Sprintf("probe has invalid type %q", s.Probe.Type))
	}

	if s.ParentDir == "" {
		s.ParentDir = "experiments"
	}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if len(s.Languages) == 0 {
		s.Languages = []string{"en"}
	}
	if s.BatchSize <= 0 {
		s.BatchSize = DefaultBatchSize
	}
	if s.Correlation == "" {
		s.Correlation = string(metrics.KindSpearman)
	}
	return nil
}
