package lab

import (
	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/vec"
)

// conservation watches momentum and angular momentum through a run,
// sampled at the snapshot cadence. Drifts are absolute: a zeroed-out
// initial momentum leaves nothing to take a ratio against.
type conservation struct {
	cadence int
	p0, l0  vec.V3
	maxP    float64
	maxL    float64
}

func newConservation(s *body.State, cadence int) *conservation {
	if cadence <= 0 {
		cadence = 1
	}
	return &conservation{
		cadence: cadence,
		p0:      s.Momentum(),
		l0:      s.AngularMomentum(),
	}
}

func (c *conservation) OnStep(step int, s *body.State) {
	if step%c.cadence != 0 {
		return
	}
	if d := s.Momentum().Sub(c.p0).Norm(); d > c.maxP {
		c.maxP = d
	}
	if d := s.AngularMomentum().Sub(c.l0).Norm(); d > c.maxL {
		c.maxL = d
	}
}

// Stats reports the tracked maxima under the keys run metadata uses.
func (c *conservation) Stats() map[string]float64 {
	return map[string]float64{
		"momentum_drift":         c.maxP,
		"angular_momentum_drift": c.maxL,
	}
}
