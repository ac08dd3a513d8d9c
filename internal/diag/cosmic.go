package diag

import (
	"fmt"
	"math"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/cosmo"
)

// CosmicExpansion reports the background expansion history: H(z) over a
// redshift grid, the scale-factor track a(t), and the present-day age
// computed two independent ways. The two ages agreeing is the pass
// criterion; they share no code path beyond the E(a) function itself.
type CosmicExpansion struct {
	Params cosmo.Params

	// ZMax tops the reported redshift grid; zero means 3.
	ZMax float64

	// ZSteps is the grid size; zero means 61.
	ZSteps int

	// Tolerance on the relative ODE-vs-quadrature age difference.
	// Zero means 1e-3.
	Tolerance float64
}

func (c CosmicExpansion) Name() string { return "cosmo" }

func (c CosmicExpansion) zGrid() []float64 {
	zMax := c.ZMax
	if zMax <= 0 {
		zMax = 3
	}
	n := c.ZSteps
	if n <= 1 {
		n = 61
	}
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = zMax * float64(i) / float64(n-1)
	}
	return grid
}

func (c CosmicExpansion) tolerance() float64 {
	if c.Tolerance <= 0 {
		return 1e-3
	}
	return c.Tolerance
}

func (c CosmicExpansion) Run() (*Report, error) {
	if err := c.Params.Validate(); err != nil {
		return nil, &body.InputError{Diagnostic: c.Name(), Reason: err.Error()}
	}

	zs := c.zGrid()
	hs := make([]float64, len(zs))
	for i, z := range zs {
		hs[i] = c.Params.HofZ(z)
	}

	ageQuad, err := c.Params.Age()
	if err != nil {
		return nil, &body.InputError{Diagnostic: c.Name(), Reason: err.Error()}
	}

	hist, err := c.Params.Expand(0.01, 1.0, 0)
	if err != nil {
		return nil, &body.InputError{Diagnostic: c.Name(), Reason: err.Error()}
	}
	ageODE := hist.TimeAt(1.0)

	diff := math.Abs(ageODE-ageQuad) / ageQuad
	tol := c.tolerance()

	rep := &Report{
		Name:   c.Name(),
		Passed: diff <= tol,
		Summary: fmt.Sprintf("age %.3f Gyr (ODE) vs %.3f Gyr (quadrature), rel diff %.2g",
			ageODE, ageQuad, diff),
		Scalars: map[string]float64{
			"age_ode_gyr":  ageODE,
			"age_quad_gyr": ageQuad,
			"age_rel_diff": diff,
			"h0":           c.Params.H0,
		},
		Series: []Series{
			{Name: "H(z)", X: zs, Y: hs},
			downsample("a(t)", hist.T, hist.A, 256),
		},
	}
	return rep, nil
}

// downsample strides a long track to at most max points, always keeping
// the final one.
func downsample(name string, x, y []float64, max int) Series {
	n := len(x)
	if n <= max {
		return Series{Name: name, X: x, Y: y}
	}
	stride := (n + max - 1) / max
	var xs, ys []float64
	for i := 0; i < n; i += stride {
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if (n-1)%stride != 0 {
		xs = append(xs, x[n-1])
		ys = append(ys, y[n-1])
	}
	return Series{Name: name, X: xs, Y: ys}
}
