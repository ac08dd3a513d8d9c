package diag

import (
	"fmt"
	"math"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/force"
)

// DefaultDriftTolerance is the symplectic drift bound a healthy run
// stays under.
const DefaultDriftTolerance = 1e-4

// EnergyAudit measures relative energy drift over a trajectory using
// the potential consistent with the model that produced it.
type EnergyAudit struct {
	Model      force.Model
	Trajectory *body.Trajectory

	// Tolerance on |E_final - E_initial| / |E_initial|.
	// Zero means DefaultDriftTolerance.
	Tolerance float64
}

func (a EnergyAudit) Name() string { return "energy" }

func (a EnergyAudit) tolerance() float64 {
	if a.Tolerance <= 0 {
		return DefaultDriftTolerance
	}
	return a.Tolerance
}

func (a EnergyAudit) Run() (*Report, error) {
	if a.Model == nil {
		return nil, &body.InputError{Diagnostic: a.Name(), Reason: "no force model"}
	}
	if a.Trajectory == nil || a.Trajectory.Len() < 2 {
		return nil, &body.InputError{Diagnostic: a.Name(), Reason: "trajectory needs at least 2 snapshots"}
	}

	times := a.Trajectory.Times()
	energies := make([]float64, a.Trajectory.Len())
	for i, f := range a.Trajectory.Frames {
		energies[i] = f.KineticEnergy() + a.Model.Potential(f)
	}

	e0 := energies[0]
	eN := energies[len(energies)-1]

	drift := math.Abs(eN - e0)
	if e0 != 0 {
		drift /= math.Abs(e0)
	}

	tol := a.tolerance()
	return &Report{
		Name:   a.Name(),
		Passed: drift <= tol,
		Summary: fmt.Sprintf("drift %.3g over %d snapshots (tolerance %.3g)",
			drift, len(energies), tol),
		Scalars: map[string]float64{
			"initial_energy": e0,
			"final_energy":   eN,
			"drift":          drift,
			"tolerance":      tol,
		},
		Series: []Series{{Name: "energy", X: times, Y: energies}},
	}, nil
}
