package runspec

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	ProbeLinear = "linear"
	ProbeRemote = "remote"

	DefaultSeed       = 42
	DefaultLayerIndex = 6
	DefaultBatchSize  = 20
	DefaultModel      = "bert-base-multilingual-cased"
)

type RunSpec struct {
	DataDir   string   `yaml:"data_dir" schema:"required" description:"Directory holding data_map.json"`
	ParentDir string   `yaml:"parent_dir" schema:"default=experiments"`
	Model     string   `yaml:"model" schema:"default=bert-base-multilingual-cased"`
	Languages []string `yaml:"languages" description:"Language groups; members of a group are joined with +"`
	Tasks     []string `yaml:"tasks" schema:"required,minItems=1"`

	LayerIndex *int `yaml:"layer_index" schema:"minimum=-1,default=6" description:"-1 averages all layers"`
	Seed       *int `yaml:"seed" schema:"default=42"`
	BatchSize  int  `yaml:"batch_size" schema:"minimum=1,default=20"`

	ProbeThreshold *float64 `yaml:"probe_threshold" description:"Enables gated evaluation"`
	DropParts      *int     `yaml:"drop_parts" schema:"minimum=1" description:"Needs probe_threshold"`
	Correlation    string   `yaml:"correlation" schema:"enum=spearman|pearson|kendall,default=spearman"`

	Probe ProbeConfig `yaml:"probe" schema:"required"`
}

type ProbeConfig struct {
	Type    string `yaml:"type" schema:"enum=linear|remote,default=linear"`
	Path    string `yaml:"path,omitempty" description:"Linear probe parameters (JSON)"`
	Address string `yaml:"address,omitempty" description:"Remote probe service address"`
}

func (s *RunSpec) Layer() int {
	if s.LayerIndex == nil {
		return DefaultLayerIndex
	}
	return *s.LayerIndex
}

func (s *RunSpec) SeedValue() int {
	if s.Seed == nil {
		return DefaultSeed
	}
	return *s.Seed
}

func (s *RunSpec) DropPartsValue() int {
	if s.DropParts == nil {
		return 0
	}
	return *s.DropParts
}

// ExperimentName names the output directory of a run. The seed is only part of the name when
// it differs from the default.
func (s *RunSpec) ExperimentName() string {
	name := fmt.Sprintf("task_%s-layer_%d-trainl_%s",
		strings.Join(s.Tasks, "_"), s.Layer(), strings.Join(s.Languages, "_"))
	if seed := s.SeedValue(); seed != DefaultSeed {
		name += fmt.Sprintf("-seed_%d", seed)
	}
	return name
}

func (s *RunSpec) OutDir() string {
	return filepath.Join(s.ParentDir, s.ExperimentName())
}
