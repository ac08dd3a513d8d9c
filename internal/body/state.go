// Package body defines the particle ensemble state shared by force models,
// integrators and diagnostics. Positions, velocities and masses live in
// parallel slices indexed by particle.
package body

import (
	"github.com/aram-vel/gravlab/internal/vec"
)

// State is a snapshot of the ensemble at one instant.
type State struct {
	Time float64
	Pos  []vec.V3
	Vel  []vec.V3
	Mass []float64
}

// NewState allocates a zeroed ensemble of n particles.
func NewState(n int) *State {
	return &State{
		Pos:  make([]vec.V3, n),
		Vel:  make([]vec.V3, n),
		Mass: make([]float64, n),
	}
}

// N reports the particle count.
func (s *State) N() int {
	return len(s.Pos)
}

func (s *State) Clone() *State {
	c := &State{
		Time: s.Time,
		Pos:  make([]vec.V3, len(s.Pos)),
		Vel:  make([]vec.V3, len(s.Vel)),
		Mass: make([]float64, len(s.Mass)),
	}
	copy(c.Pos, s.Pos)
	copy(c.Vel, s.Vel)
	copy(c.Mass, s.Mass)
	return c
}

// Check returns a DivergenceError naming the first non-finite particle,
// or nil when every position and velocity is finite.
func (s *State) Check(step int) error {
	for i := range s.Pos {
		if !s.Pos[i].IsFinite() {
			return &DivergenceError{Step: step, Time: s.Time, Particle: i, Quantity: "position"}
		}
		if !s.Vel[i].IsFinite() {
			return &DivergenceError{Step: step, Time: s.Time, Particle: i, Quantity: "velocity"}
		}
	}
	return nil
}

// IsValid reports whether all positions and velocities are finite.
func (s *State) IsValid() bool {
	return s.Check(0) == nil
}

func (s *State) TotalMass() float64 {
	m := 0.0
	for _, mi := range s.Mass {
		m += mi
	}
	return m
}

// CenterOfMass returns the mass-weighted mean position.
// A massless ensemble yields the zero vector.
func (s *State) CenterOfMass() vec.V3 {
	m := s.TotalMass()
	if m == 0 {
		return vec.V3{}
	}
	var com vec.V3
	for i := range s.Pos {
		com = com.Add(s.Pos[i].Scale(s.Mass[i]))
	}
	return com.Scale(1 / m)
}

func (s *State) Momentum() vec.V3 {
	var p vec.V3
	for i := range s.Vel {
		p = p.Add(s.Vel[i].Scale(s.Mass[i]))
	}
	return p
}

func (s *State) AngularMomentum() vec.V3 {
	var l vec.V3
	for i := range s.Pos {
		l = l.Add(s.Pos[i].Cross(s.Vel[i].Scale(s.Mass[i])))
	}
	return l
}

func (s *State) KineticEnergy() float64 {
	ke := 0.0
	for i := range s.Vel {
		ke += 0.5 * s.Mass[i] * s.Vel[i].Norm2()
	}
	return ke
}

// ZeroMomentum shifts every velocity so the ensemble's net momentum
// vanishes. It leaves a massless ensemble untouched.
func (s *State) ZeroMomentum() {
	m := s.TotalMass()
	if m == 0 {
		return
	}
	drift := s.Momentum().Scale(1 / m)
	for i := range s.Vel {
		s.Vel[i] = s.Vel[i].Sub(drift)
	}
}
