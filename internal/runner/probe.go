package runner

import (
	"fmt"
	"io"

	"github.com/DjordjeVuckovic/probe-report/internal/probe"
	"github.com/DjordjeVuckovic/probe-report/internal/runspec"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenProbe builds the probe a run spec names. The returned closer releases remote connections.
func OpenProbe(cfg runspec.ProbeConfig) (probe.Probe, io.Closer, error) {
	switch cfg.Type {
	case runspec.ProbeLinear, "":
		p, err := probe.Load(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return p, nopCloser{}, nil
	case runspec.ProbeRemote:
		p, err := probe.NewRemote(cfg.Address)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unknown probe type %q", cfg.Type)
	}
}
