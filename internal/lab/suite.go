package lab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/config"
	"github.com/aram-vel/gravlab/internal/diag"
	"github.com/aram-vel/gravlab/internal/integrate"
)

// Suite is a scripted battery of runs loaded from a yaml manifest.
type Suite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Runs        []SuiteRun `yaml:"runs"`
}

// SuiteRun is one step: a config source plus the diagnostics to run on
// the stored result. Preset and Config are mutually exclusive; neither
// means the defaults.
type SuiteRun struct {
	Name        string             `yaml:"name"`
	Preset      string             `yaml:"preset,omitempty"`
	Config      string             `yaml:"config,omitempty"`
	Overrides   map[string]float64 `yaml:"overrides,omitempty"`
	Diagnostics []string           `yaml:"diagnostics,omitempty"`
}

// LoadSuite reads a manifest.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}
	if len(s.Runs) == 0 {
		return nil, fmt.Errorf("suite %s has no runs", path)
	}
	return &s, nil
}

func (r SuiteRun) resolveConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case r.Preset != "" && r.Config != "":
		return nil, fmt.Errorf("both preset and config set")
	case r.Preset != "":
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	case r.Config != "":
		var err error
		cfg, err = config.Load(r.Config)
		if err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	for key, val := range r.Overrides {
		if err := applyOverride(cfg, key, val); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyOverride pokes one numeric config field by its yaml key.
func applyOverride(cfg *config.Config, key string, val float64) error {
	switch key {
	case "g":
		cfg.G = val
	case "a0":
		cfg.A0 = val
	case "softening":
		cfg.Softening = val
	case "timestep":
		cfg.Dt = val
	case "n_steps":
		cfg.Steps = int(val)
	case "snapshot_cadence":
		cfg.Cadence = int(val)
	case "particle_count":
		cfg.N = int(val)
	case "disk_mass":
		cfg.DiskMass = val
	case "central_mass":
		cfg.CentralMass = val
	case "seed":
		cfg.Seed = int64(val)
	case "perturbation":
		cfg.Perturb = val
	case "perturbation_scale":
		cfg.PerturbScale = val
	case "workers":
		cfg.Workers = int(val)
	default:
		return &body.ConfigError{Field: key, Reason: "not an overridable field"}
	}
	return nil
}

// SuiteResult is one step's outcome: the stored run plus whatever
// reports its diagnostics produced.
type SuiteResult struct {
	Step     string
	RunID    string
	Status   integrate.Status
	Drift    float64
	Outcomes []diag.Outcome
}

// Passed reports whether the step ran to completion and every
// diagnostic passed.
func (r SuiteResult) Passed() bool {
	if r.Status != integrate.StatusCompleted {
		return false
	}
	for _, o := range r.Outcomes {
		if o.Err != nil || o.Report == nil || !o.Report.Passed {
			return false
		}
	}
	return true
}

// RunSuite executes the manifest in order. A step that diverges is
// recorded and the battery moves on; a step that cannot run at all
// stops it. Progress lines go to w when non-nil, and the results of
// completed steps come back even on error.
func (l *Lab) RunSuite(ctx context.Context, s *Suite, w io.Writer) ([]SuiteResult, error) {
	if l.store == nil {
		return nil, &body.ConfigError{Field: "store", Reason: "suites need a store"}
	}

	results := make([]SuiteResult, 0, len(s.Runs))
	for i, step := range s.Runs {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		if w != nil {
			fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(s.Runs), name)
		}

		cfg, err := step.resolveConfig()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		out, runErr := l.Run(ctx, name, cfg)
		if out == nil || (runErr != nil && out.ID == "") {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, runErr)
		}
		res := SuiteResult{
			Step:   name,
			RunID:  out.ID,
			Status: out.Result.Status,
			Drift:  out.Result.EnergyDrift,
		}
		if errors.Is(runErr, body.ErrContextCanceled) {
			results = append(results, res)
			return results, runErr
		}

		if out.Result.Status == integrate.StatusCompleted {
			var err error
			res.Outcomes, err = l.Diagnose(out.ID, step.Diagnostics)
			if err != nil {
				return results, fmt.Errorf("step %d (%s): diagnose: %w", i+1, name, err)
			}
		}
		results = append(results, res)
	}
	return results, nil
}
