// Package integrate advances a particle ensemble in time with the
// kick-drift-kick leapfrog scheme. The scheme is symplectic, so energy
// errors stay bounded over long runs instead of accumulating, and it
// needs one force evaluation per step.
package integrate

import (
	"context"
	"math"
	"time"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/force"
	"github.com/aram-vel/gravlab/internal/vec"
)

// Status tracks a run through its lifecycle.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusDiverged    Status = "diverged"
)

// Config fixes the stepping of one run. The timestep never adapts;
// adaptive stepping would break the symplectic energy bound.
type Config struct {
	// Dt is the timestep.
	Dt float64

	// Steps is the number of leapfrog steps to take.
	Steps int

	// Cadence records a trajectory snapshot every Cadence steps.
	// Zero means every step. The final state is always recorded.
	Cadence int
}

func (c Config) cadence() int {
	if c.Cadence <= 0 {
		return 1
	}
	return c.Cadence
}

// Validate rejects configs that cannot produce a meaningful run.
func (c Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return &body.ConfigError{Field: "timestep", Reason: "must be positive and finite"}
	}
	if c.Steps <= 0 {
		return &body.ConfigError{Field: "n_steps", Reason: "must be positive"}
	}
	if c.Cadence < 0 {
		return &body.ConfigError{Field: "snapshot_cadence", Reason: "must be non-negative"}
	}
	return nil
}

// Observer is notified after every completed step. The state is live;
// observers must treat it as read-only.
type Observer interface {
	OnStep(step int, s *body.State)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(step int, s *body.State)

func (f ObserverFunc) OnStep(step int, s *body.State) { f(step, s) }

// Result carries everything a finished (or aborted) run produced.
type Result struct {
	Status     Status
	Trajectory body.Trajectory
	StepsTaken int
	Elapsed    time.Duration

	InitialEnergy float64
	FinalEnergy   float64
	EnergyDrift   float64
}

// Runner drives an ensemble forward under one force model. It is
// oblivious to which model is installed; any force.Model works.
type Runner struct {
	model     force.Model
	status    Status
	observers []Observer
}

func NewRunner(model force.Model) *Runner {
	return &Runner{model: model, status: StatusInitialized}
}

func (r *Runner) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

func (r *Runner) Status() Status { return r.status }

func (r *Runner) Model() force.Model { return r.model }

// Run integrates s0 for cfg.Steps leapfrog steps. The input ensemble is
// cloned, never mutated. On divergence the trajectory is truncated at
// the last finite snapshot and the partial result is returned together
// with the error.
func (r *Runner) Run(ctx context.Context, s0 *body.State, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateEnsemble(s0); err != nil {
		return nil, err
	}

	r.status = StatusRunning
	start := time.Now()

	s := s0.Clone()
	acc := make([]vec.V3, s.N())
	r.model.Accel(s, acc)

	res := &Result{Status: StatusRunning}
	res.Trajectory.Append(s)
	res.InitialEnergy = s.KineticEnergy() + r.model.Potential(s)

	cad := cfg.cadence()
	halfDt := 0.5 * cfg.Dt

	for step := 1; step <= cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			r.finish(res, s, start)
			return res, body.ErrContextCanceled
		default:
		}

		// kick, drift, kick
		for i := range s.Vel {
			s.Vel[i] = s.Vel[i].Add(acc[i].Scale(halfDt))
		}
		for i := range s.Pos {
			s.Pos[i] = s.Pos[i].Add(s.Vel[i].Scale(cfg.Dt))
		}
		s.Time = s0.Time + float64(step)*cfg.Dt
		r.model.Accel(s, acc)
		for i := range s.Vel {
			s.Vel[i] = s.Vel[i].Add(acc[i].Scale(halfDt))
		}

		if err := s.Check(step); err != nil {
			r.status = StatusDiverged
			res.Status = StatusDiverged
			res.Elapsed = time.Since(start)
			return res, err
		}

		res.StepsTaken = step
		if step%cad == 0 || step == cfg.Steps {
			res.Trajectory.Append(s)
		}
		for _, o := range r.observers {
			o.OnStep(step, s)
		}
	}

	r.status = StatusCompleted
	res.Status = StatusCompleted
	r.finish(res, s, start)
	return res, nil
}

func (r *Runner) finish(res *Result, s *body.State, start time.Time) {
	res.Elapsed = time.Since(start)
	res.FinalEnergy = s.KineticEnergy() + r.model.Potential(s)
	if res.InitialEnergy != 0 {
		res.EnergyDrift = math.Abs(res.FinalEnergy-res.InitialEnergy) / math.Abs(res.InitialEnergy)
	}
}

func validateEnsemble(s *body.State) error {
	if s == nil || s.N() == 0 {
		return &body.ConfigError{Field: "particles", Reason: "ensemble is empty"}
	}
	if len(s.Vel) != s.N() || len(s.Mass) != s.N() {
		return &body.ConfigError{Field: "particles", Reason: "mismatched position/velocity/mass lengths"}
	}
	for i, m := range s.Mass {
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return &body.ConfigError{Field: "mass", Reason: "must be positive and finite"}
		}
		if !s.Pos[i].IsFinite() || !s.Vel[i].IsFinite() {
			return &body.ConfigError{Field: "particles", Reason: "initial state is non-finite"}
		}
	}
	return nil
}
