package diag

import (
	"errors"
	"math"
	"testing"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/force"
	"github.com/aram-vel/gravlab/internal/vec"
)

func pointLens(t *testing.T, mass float64) *body.State {
	t.Helper()
	s := body.NewState(1)
	s.Mass[0] = mass
	return s
}

func lensModel(t *testing.T, name string, p force.Params) force.Model {
	t.Helper()
	m, err := force.New(name, p)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// truncated thin-lens deflection of a point mass:
// alpha = (4GM / c^2 b) * Z/sqrt(Z^2+b^2)
func pointDeflection(g, mass, c, b, z float64) float64 {
	return 4 * g * mass / (c * c * b) * z / math.Hypot(z, b)
}

func TestLensingNewtonianPointMass(t *testing.T) {
	model := lensModel(t, force.Newtonian, force.Params{G: 1, Softening: 1e-4})
	tr := LensingTracer{
		Models:  []force.Model{model},
		Source:  pointLens(t, 1),
		Impacts: []float64{2, 4, 6, 8, 10},
		C:       1,
	}

	rep, err := tr.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !rep.Passed {
		t.Errorf("point-mass sweep should pass: %s", rep.Summary)
	}

	z := rep.Scalars["bound"]
	if z != 200 {
		t.Fatalf("auto bound = %v, want 20*b_max = 200", z)
	}

	alphas := rep.FindSeries(force.Newtonian)
	if alphas == nil {
		t.Fatal("newtonian series missing")
	}
	for i, b := range tr.Impacts {
		want := pointDeflection(1, 1, 1, b, z)
		if math.Abs(alphas.Y[i]-want)/want > 1e-3 {
			t.Errorf("alpha(%g) = %v, want %v", b, alphas.Y[i], want)
		}
	}

	// the classic 4GM/(c^2 b) once the truncation deficit is allowed for
	for i, b := range tr.Impacts {
		ideal := 4.0 / b
		if math.Abs(alphas.Y[i]-ideal)/ideal > 5e-3 {
			t.Errorf("alpha(%g) = %v, ideal %v", b, alphas.Y[i], ideal)
		}
	}
}

func TestLensingEntropicFlattens(t *testing.T) {
	// light lens so the whole sight line sits in the low-acceleration
	// regime: alpha approaches (4/c^2)*sqrt(GMa0)*atan(Z/b)
	g, mass, a0 := 1.0, 1e-4, 1e-3
	newton := lensModel(t, force.Newtonian, force.Params{G: g, Softening: 1e-4})
	entropic := lensModel(t, force.Entropic, force.Params{G: g, A0: a0, Softening: 1e-4})

	tr := LensingTracer{
		Models:  []force.Model{newton, entropic},
		Source:  pointLens(t, mass),
		Impacts: []float64{2, 4, 6, 8, 10},
		C:       1,
	}

	rep, err := tr.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !rep.Passed {
		t.Errorf("entropic curve should flatten past newtonian: %s", rep.Summary)
	}

	ratio := rep.FindSeries("entropic/newtonian")
	if ratio == nil {
		t.Fatal("ratio series missing")
	}
	for i := 1; i < len(ratio.Y); i++ {
		if ratio.Y[i] <= ratio.Y[i-1] {
			t.Errorf("boost ratio not increasing at b=%g: %v <= %v",
				tr.Impacts[i], ratio.Y[i], ratio.Y[i-1])
		}
	}

	// deep regime asymptote at the widest impact parameter
	e := rep.FindSeries(force.Entropic)
	z := rep.Scalars["bound"]
	b := tr.Impacts[len(tr.Impacts)-1]
	want := 4 * math.Sqrt(g*mass*a0) * math.Atan(z/b)
	got := e.Y[len(e.Y)-1]
	if math.Abs(got-want)/want > 0.03 {
		t.Errorf("deep deflection at b=%g: got %v, want %v", b, got, want)
	}
}

func TestLensingEntropicAloneFlattens(t *testing.T) {
	entropic := lensModel(t, force.Entropic, force.Params{G: 1, A0: 1e-3, Softening: 1e-4})
	tr := LensingTracer{
		Models:  []force.Model{entropic},
		Source:  pointLens(t, 1e-4),
		Impacts: []float64{2, 5, 10},
		C:       1,
	}
	rep, err := tr.Run()
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Passed {
		t.Errorf("alpha*b should grow without a newtonian reference: %s", rep.Summary)
	}
	if rep.FindSeries("entropic/newtonian") != nil {
		t.Error("no ratio series without both models")
	}
}

func TestLensingExternalFieldSubtracted(t *testing.T) {
	// a strong uniform field along x would swamp the ray integral if it
	// were not removed; with the baseline subtracted the residual
	// bending tracks the quasi-newtonian value.
	g, mass, a0 := 1.0, 1e-4, 1e-3
	entropic := lensModel(t, force.Entropic, force.Params{
		G: g, A0: a0, Softening: 1e-4,
		External: vec.V3{X: 10 * a0},
	})
	tr := LensingTracer{
		Models:  []force.Model{entropic},
		Source:  pointLens(t, mass),
		Impacts: []float64{5},
		C:       1,
	}

	alpha := tr.Deflection(entropic, 5)
	newton := pointDeflection(g, mass, 1, 5, tr.bound())
	if alpha <= 0 {
		t.Fatalf("alpha = %v, background leaked into the integral", alpha)
	}
	if r := alpha / newton; r < 0.95 || r > 1.10 {
		t.Errorf("alpha/alpha_N = %v, field-dominated bending should stay near newtonian", r)
	}
}

func TestLensingBoundAndSamplesOverride(t *testing.T) {
	model := lensModel(t, force.Newtonian, force.Params{G: 1, Softening: 1e-4})
	tr := LensingTracer{
		Models:  []force.Model{model},
		Source:  pointLens(t, 1),
		Impacts: []float64{3},
		C:       1,
		Bound:   50,
		Samples: 400, // rounded up to odd
	}
	rep, err := tr.Run()
	if err != nil {
		t.Fatal(err)
	}
	if rep.Scalars["bound"] != 50 {
		t.Errorf("bound = %v, want 50", rep.Scalars["bound"])
	}
	want := pointDeflection(1, 1, 1, 3, 50)
	got := rep.FindSeries(force.Newtonian).Y[0]
	if math.Abs(got-want)/want > 1e-3 {
		t.Errorf("alpha = %v, want %v", got, want)
	}
}

func TestLensingInputErrors(t *testing.T) {
	model := lensModel(t, force.Newtonian, force.Params{G: 1, Softening: 1e-4})
	src := pointLens(t, 1)
	hollow := body.NewState(1)

	tests := []struct {
		name string
		tr   LensingTracer
	}{
		{"no models", LensingTracer{Source: src, Impacts: []float64{1}, C: 1}},
		{"nil source", LensingTracer{Models: []force.Model{model}, Impacts: []float64{1}, C: 1}},
		{"empty source", LensingTracer{Models: []force.Model{model}, Source: body.NewState(0), Impacts: []float64{1}, C: 1}},
		{"massless source", LensingTracer{Models: []force.Model{model}, Source: hollow, Impacts: []float64{1}, C: 1}},
		{"no impacts", LensingTracer{Models: []force.Model{model}, Source: src, C: 1}},
		{"unsorted impacts", LensingTracer{Models: []force.Model{model}, Source: src, Impacts: []float64{2, 2}, C: 1}},
		{"zero c", LensingTracer{Models: []force.Model{model}, Source: src, Impacts: []float64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.tr.Run(); !errors.Is(err, body.ErrDiagnosticInput) {
				t.Errorf("expected diagnostic input error, got %v", err)
			}
		})
	}
}
