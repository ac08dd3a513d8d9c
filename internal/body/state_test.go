package body

import (
	"errors"
	"math"
	"testing"

	"github.com/aram-vel/gravlab/internal/vec"
)

func twoBody() *State {
	s := NewState(2)
	s.Pos[0] = vec.V3{X: -1}
	s.Pos[1] = vec.V3{X: 1}
	s.Vel[0] = vec.V3{Y: -0.5}
	s.Vel[1] = vec.V3{Y: 0.5}
	s.Mass[0] = 1
	s.Mass[1] = 1
	return s
}

func TestCloneIndependence(t *testing.T) {
	s := twoBody()
	c := s.Clone()

	c.Pos[0] = vec.V3{X: 99}
	c.Mass[1] = 42

	if s.Pos[0].X != -1 {
		t.Error("clone shares position storage with original")
	}
	if s.Mass[1] != 1 {
		t.Error("clone shares mass storage with original")
	}
}

func TestCenterOfMass(t *testing.T) {
	s := twoBody()
	com := s.CenterOfMass()
	if com.Norm() > 1e-12 {
		t.Errorf("symmetric pair should have COM at origin, got %v", com)
	}

	s.Mass[1] = 3
	com = s.CenterOfMass()
	if math.Abs(com.X-0.5) > 1e-12 {
		t.Errorf("weighted COM = %v, want X=0.5", com)
	}
}

func TestMomentumAndZeroing(t *testing.T) {
	s := NewState(2)
	s.Pos[1] = vec.V3{X: 2}
	s.Vel[0] = vec.V3{X: 1}
	s.Vel[1] = vec.V3{X: 1}
	s.Mass[0] = 1
	s.Mass[1] = 2

	p := s.Momentum()
	if math.Abs(p.X-3) > 1e-12 {
		t.Errorf("momentum = %v, want X=3", p)
	}

	s.ZeroMomentum()
	if s.Momentum().Norm() > 1e-12 {
		t.Errorf("momentum after zeroing = %v", s.Momentum())
	}
}

func TestKineticEnergy(t *testing.T) {
	s := twoBody()
	// two unit masses at speed 0.5: 2 * 0.5 * 1 * 0.25
	want := 0.25
	if ke := s.KineticEnergy(); math.Abs(ke-want) > 1e-12 {
		t.Errorf("kinetic energy = %v, want %v", ke, want)
	}
}

func TestAngularMomentum(t *testing.T) {
	s := twoBody()
	// each particle contributes m * r x v = 1 * (∓1,0,0) x (0,∓0.5,0) = (0,0,0.5)
	l := s.AngularMomentum()
	if math.Abs(l.Z-1) > 1e-12 || math.Abs(l.X) > 1e-12 || math.Abs(l.Y) > 1e-12 {
		t.Errorf("angular momentum = %v, want (0,0,1)", l)
	}
}

func TestCheckFindsDivergence(t *testing.T) {
	s := twoBody()
	if err := s.Check(0); err != nil {
		t.Fatalf("finite state should pass: %v", err)
	}

	s.Time = 1.5
	s.Vel[1] = vec.V3{X: math.NaN()}
	err := s.Check(7)
	if err == nil {
		t.Fatal("expected divergence error")
	}
	if !errors.Is(err, ErrDiverged) {
		t.Errorf("error should wrap ErrDiverged, got %v", err)
	}

	var de *DivergenceError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DivergenceError, got %T", err)
	}
	if de.Step != 7 || de.Particle != 1 || de.Quantity != "velocity" {
		t.Errorf("unexpected divergence detail: %+v", de)
	}
}

func TestErrorWrapping(t *testing.T) {
	ce := &ConfigError{Field: "dt", Reason: "must be positive"}
	if !errors.Is(ce, ErrConfiguration) {
		t.Error("ConfigError should wrap ErrConfiguration")
	}

	ie := &InputError{Diagnostic: "toomre", Reason: "needs at least 3 radii"}
	if !errors.Is(ie, ErrDiagnosticInput) {
		t.Error("InputError should wrap ErrDiagnosticInput")
	}
}

func TestTrajectorySnapshotsAreCopies(t *testing.T) {
	s := twoBody()
	var tr Trajectory

	tr.Append(s)
	s.Pos[0] = vec.V3{X: 100}
	s.Time = 9
	tr.Append(s)

	if tr.Len() != 2 {
		t.Fatalf("expected 2 frames, got %d", tr.Len())
	}
	if tr.First().Pos[0].X != -1 {
		t.Error("first frame mutated by later state changes")
	}
	if tr.Last().Pos[0].X != 100 {
		t.Error("last frame missing latest state")
	}

	times := tr.Times()
	if times[0] != 0 || times[1] != 9 {
		t.Errorf("times = %v", times)
	}

	radii := tr.Radii(0)
	if radii[0] != 1 || radii[1] != 100 {
		t.Errorf("radii = %v", radii)
	}
}

func TestEmptyTrajectory(t *testing.T) {
	var tr Trajectory
	if tr.First() != nil || tr.Last() != nil {
		t.Error("empty trajectory should return nil frames")
	}
}
