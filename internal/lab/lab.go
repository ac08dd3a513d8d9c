// Package lab wires configs into runnable simulations and stored runs
// into diagnostics. It owns every conversion between the yaml-facing
// config types and the engine's own parameter structs, so neither side
// has to know about the other.
package lab

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/config"
	"github.com/aram-vel/gravlab/internal/disk"
	"github.com/aram-vel/gravlab/internal/force"
	"github.com/aram-vel/gravlab/internal/integrate"
	"github.com/aram-vel/gravlab/internal/storage"
	"github.com/aram-vel/gravlab/internal/vec"
)

// Lab turns configs into runs and stored runs into reports. The store
// may be nil for throwaway runs that should not persist.
type Lab struct {
	store *storage.Store
}

func New(store *storage.Store) *Lab {
	return &Lab{store: store}
}

func modelParams(cfg *config.Config) force.Params {
	return force.Params{
		G:           cfg.G,
		A0:          cfg.A0,
		Softening:   cfg.Softening,
		External:    vec.V3{X: cfg.External.X, Y: cfg.External.Y, Z: cfg.External.Z},
		Interaction: force.Interaction(cfg.Interaction),
		Workers:     cfg.Workers,
	}
}

// BuildModel constructs the configured force model.
func BuildModel(cfg *config.Config) (force.Model, error) {
	return force.New(cfg.ForceModel, modelParams(cfg))
}

// BuildProfile constructs the configured mass profile.
func BuildProfile(cfg *config.Config) (disk.Profile, error) {
	return disk.NewProfile(cfg.Profile.Name, cfg.Profile.Params)
}

// BuildEnsemble places the configured ensemble with circular speeds
// solved under the configured model.
func BuildEnsemble(cfg *config.Config) (*body.State, force.Model, error) {
	model, err := BuildModel(cfg)
	if err != nil {
		return nil, nil, err
	}
	profile, err := BuildProfile(cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := disk.Builder{
		Model:        model,
		Profile:      profile,
		N:            cfg.N,
		DiskMass:     cfg.DiskMass,
		CentralMass:  cfg.CentralMass,
		Seed:         cfg.Seed,
		Perturb:      cfg.Perturb,
		PerturbScale: cfg.PerturbScale,
		ZeroMomentum: cfg.ZeroMomentum,
	}.Build()
	if err != nil {
		return nil, nil, err
	}
	return s, model, nil
}

// RunOutput collects everything one finished run produced.
type RunOutput struct {
	// ID is the stored run's identifier, empty when the lab has no
	// store.
	ID     string
	Config *config.Config
	Model  force.Model
	Result *integrate.Result
	Stats  map[string]float64
}

// Run builds the configured ensemble, integrates it, and saves the
// outcome under label. A diverged run is still saved; the truncated
// trajectory and the divergence error come back together.
func (l *Lab) Run(ctx context.Context, label string, cfg *config.Config, obs ...integrate.Observer) (*RunOutput, error) {
	run := cfg.Clone()
	state, model, err := BuildEnsemble(run)
	if err != nil {
		return nil, err
	}

	tracker := newConservation(state, run.Cadence)
	runner := integrate.NewRunner(model)
	runner.AddObserver(tracker)
	for _, o := range obs {
		runner.AddObserver(o)
	}

	res, runErr := runner.Run(ctx, state, integrate.Config{Dt: run.Dt, Steps: run.Steps, Cadence: run.Cadence})
	if res == nil {
		return nil, runErr
	}

	out := &RunOutput{Config: run, Model: model, Result: res, Stats: tracker.Stats()}
	if l.store != nil {
		if label == "" {
			label = "run"
		}
		id, err := l.store.SaveRun(label, run, res, out.Stats)
		if err != nil {
			return out, err
		}
		out.ID = id
	}
	return out, runErr
}

// CompareRow is one force law's line in a side-by-side table.
type CompareRow struct {
	Model   string
	Status  integrate.Status
	Steps   int
	Drift   float64
	Elapsed time.Duration
}

// Compare integrates the configured ensemble once per force law. The
// seed is shared so both runs place identical particles; each law
// solves its own circular speeds. Nothing is stored, and a divergence
// under one law still benches the other.
func (l *Lab) Compare(ctx context.Context, cfg *config.Config) ([]CompareRow, error) {
	rows := make([]CompareRow, 0, 2)
	for _, name := range force.Names() {
		run := cfg.Clone()
		run.ForceModel = name
		state, model, err := BuildEnsemble(run)
		if err != nil {
			return rows, fmt.Errorf("%s: %w", name, err)
		}
		res, runErr := integrate.NewRunner(model).Run(ctx, state, integrate.Config{Dt: run.Dt, Steps: run.Steps, Cadence: run.Cadence})
		if res == nil {
			return rows, fmt.Errorf("%s: %w", name, runErr)
		}
		rows = append(rows, CompareRow{
			Model:   name,
			Status:  res.Status,
			Steps:   res.StepsTaken,
			Drift:   res.EnergyDrift,
			Elapsed: res.Elapsed,
		})
		if errors.Is(runErr, body.ErrContextCanceled) {
			return rows, runErr
		}
	}
	return rows, nil
}

// BenchRow is one cell of the dt x n sweep.
type BenchRow struct {
	N           int
	Dt          float64
	Steps       int
	Elapsed     time.Duration
	StepsPerSec float64
}

// Bench integrates short throwaway runs over every (n, dt) pair and
// reports throughput. Empty sweeps fall back to the config's own
// values.
func (l *Lab) Bench(ctx context.Context, cfg *config.Config, ns []int, dts []float64, steps int) ([]BenchRow, error) {
	if steps <= 0 {
		steps = 200
	}
	if len(ns) == 0 {
		ns = []int{cfg.N}
	}
	if len(dts) == 0 {
		dts = []float64{cfg.Dt}
	}

	rows := make([]BenchRow, 0, len(ns)*len(dts))
	for _, n := range ns {
		run := cfg.Clone()
		run.N = n
		state, model, err := BuildEnsemble(run)
		if err != nil {
			return rows, fmt.Errorf("n=%d: %w", n, err)
		}
		for _, dt := range dts {
			res, runErr := integrate.NewRunner(model).Run(ctx, state, integrate.Config{Dt: dt, Steps: steps, Cadence: steps})
			if res == nil {
				return rows, fmt.Errorf("n=%d dt=%v: %w", n, dt, runErr)
			}
			row := BenchRow{N: state.N(), Dt: dt, Steps: res.StepsTaken, Elapsed: res.Elapsed}
			if sec := res.Elapsed.Seconds(); sec > 0 {
				row.StepsPerSec = float64(res.StepsTaken) / sec
			}
			rows = append(rows, row)
			if errors.Is(runErr, body.ErrContextCanceled) {
				return rows, runErr
			}
		}
	}
	return rows, nil
}

// CurveSet holds one rotation-curve sweep per force law over a shared
// radius grid. Entropic is nil when the config carries no a0.
type CurveSet struct {
	Radii     []float64
	Newtonian []float64
	Entropic  []float64
}

// Curves samples the circular speed both laws imply for the configured
// mass distribution. Only placement and masses matter to the field, so
// the source ensemble is built once.
func Curves(cfg *config.Config, rmin, rmax float64, n int) (*CurveSet, error) {
	if rmin <= 0 || rmax <= rmin || n < 2 {
		return nil, &body.ConfigError{Field: "radii", Reason: "need 0 < rmin < rmax and n >= 2"}
	}

	run := cfg.Clone()
	run.ForceModel = force.Newtonian
	src, newton, err := BuildEnsemble(run)
	if err != nil {
		return nil, err
	}

	set := &CurveSet{Radii: disk.Radii(rmin, rmax, n)}
	set.Newtonian = disk.RotationCurve(newton, src, set.Radii)
	if run.A0 > 0 {
		entropic, err := force.New(force.Entropic, modelParams(run))
		if err != nil {
			return nil, err
		}
		set.Entropic = disk.RotationCurve(entropic, src, set.Radii)
	}
	return set, nil
}
