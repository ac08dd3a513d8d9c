package lab

import (
	"context"
	"errors"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/config"
	"github.com/aram-vel/gravlab/internal/integrate"
	"github.com/aram-vel/gravlab/internal/vec"
	"github.com/aram-vel/gravlab/internal/viz"
)

// LiveStarter adapts a run into the frame stream the live view
// consumes. The channel holds one frame, so the integrator advances
// only as fast as the viewer drains it: pausing the view pauses the
// run. Nothing is stored; canceling the context ends the run and
// closes the stream.
func LiveStarter(cfg *config.Config) viz.Starter {
	return func(ctx context.Context) (<-chan viz.Frame, error) {
		run := cfg.Clone()
		state, model, err := BuildEnsemble(run)
		if err != nil {
			return nil, err
		}

		cadence := run.Cadence
		if cadence <= 0 {
			cadence = 1
		}
		frames := make(chan viz.Frame, 1)
		frames <- viz.Frame{
			Pos:    append([]vec.V3(nil), state.Pos...),
			Energy: state.KineticEnergy() + model.Potential(state),
		}

		runner := integrate.NewRunner(model)
		runner.AddObserver(integrate.ObserverFunc(func(step int, s *body.State) {
			if step%cadence != 0 && step != run.Steps {
				return
			}
			f := viz.Frame{
				Step:   step,
				Time:   s.Time,
				Pos:    append([]vec.V3(nil), s.Pos...),
				Energy: s.KineticEnergy() + model.Potential(s),
			}
			select {
			case frames <- f:
			case <-ctx.Done():
			}
		}))

		go func() {
			defer close(frames)
			_, err := runner.Run(ctx, state, integrate.Config{Dt: run.Dt, Steps: run.Steps, Cadence: run.Cadence})
			if err != nil && !errors.Is(err, body.ErrContextCanceled) {
				select {
				case frames <- viz.Frame{Err: err}:
				case <-ctx.Done():
				}
			}
		}()
		return frames, nil
	}
}
