package diag

import (
	"fmt"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/force"
	"github.com/aram-vel/gravlab/internal/vec"
)

// LensingTracer integrates the transverse field along a line of sight
// to produce deflection angles alpha(b) = (2/c^2) * integral of aPerp dz.
// One series is reported per model, so a Newtonian and an entropic model
// can be swept together and their falloff compared.
//
// Rays run parallel to the z axis at x = b. The integral is truncated
// at a finite bound and the softened force law itself floors the
// integrand near the sources, so no separate minimum distance is
// needed.
type LensingTracer struct {
	Models []force.Model
	Source *body.State

	// Impacts are the swept impact parameters, strictly increasing.
	Impacts []float64

	// C is the tracer speed (speed of light) in simulation units.
	C float64

	// Bound truncates the sight line to [-Bound, Bound]. Zero picks
	// max(20*b_max, 40*softening, 20*source extent).
	Bound float64

	// Samples per ray; zero means 2001. Even values are rounded up to
	// keep Simpson weights valid.
	Samples int
}

func (l LensingTracer) Name() string { return "lensing" }

func (l LensingTracer) validate() error {
	if len(l.Models) == 0 {
		return &body.InputError{Diagnostic: l.Name(), Reason: "no force models"}
	}
	if l.Source == nil || l.Source.N() == 0 {
		return &body.InputError{Diagnostic: l.Name(), Reason: "no lensing source"}
	}
	if l.Source.TotalMass() <= 0 {
		return &body.InputError{Diagnostic: l.Name(), Reason: "source carries no mass"}
	}
	if len(l.Impacts) == 0 {
		return &body.InputError{Diagnostic: l.Name(), Reason: "no impact parameters"}
	}
	for i, b := range l.Impacts {
		if b <= 0 || (i > 0 && b <= l.Impacts[i-1]) {
			return &body.InputError{Diagnostic: l.Name(), Reason: "impact parameters must be positive and strictly increasing"}
		}
	}
	if l.C <= 0 {
		return &body.InputError{Diagnostic: l.Name(), Reason: "tracer speed c must be positive"}
	}
	return nil
}

func (l LensingTracer) bound() float64 {
	if l.Bound > 0 {
		return l.Bound
	}
	z := 20 * l.Impacts[len(l.Impacts)-1]
	extent := 0.0
	for _, p := range l.Source.Pos {
		if r := p.Norm(); r > extent {
			extent = r
		}
	}
	if e := 20 * extent; e > z {
		z = e
	}
	for _, m := range l.Models {
		if s := 40 * m.Params().Softening; s > z {
			z = s
		}
	}
	return z
}

func (l LensingTracer) samples() int {
	n := l.Samples
	if n <= 0 {
		n = 2001
	}
	if n%2 == 0 {
		n++
	}
	if n < 3 {
		n = 3
	}
	return n
}

// Deflection integrates one ray for one model. The model's field with
// no sources (its uniform external term, interpolated) is subtracted
// first, so only the source-induced bending is counted.
func (l LensingTracer) Deflection(m force.Model, b float64) float64 {
	zMax := l.bound()
	n := l.samples()
	hStep := 2 * zMax / float64(n-1)

	empty := body.NewState(0)
	background := m.AccelAt(empty, vec.V3{})

	perp := func(z float64) float64 {
		g := m.AccelAt(l.Source, vec.V3{X: b, Z: z}).Sub(background)
		return -g.X // toward the lens axis
	}

	sum := perp(-zMax) + perp(zMax)
	for i := 1; i < n-1; i++ {
		w := 4.0
		if i%2 == 0 {
			w = 2.0
		}
		sum += w * perp(-zMax+float64(i)*hStep)
	}
	integral := sum * hStep / 3.0

	return 2 * integral / (l.C * l.C)
}

func (l LensingTracer) Run() (*Report, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	rep := &Report{
		Name:    l.Name(),
		Scalars: map[string]float64{"bound": l.bound(), "c": l.C},
	}

	curves := make(map[string][]float64, len(l.Models))
	for _, m := range l.Models {
		alphas := make([]float64, len(l.Impacts))
		for i, b := range l.Impacts {
			alphas[i] = l.Deflection(m, b)
		}
		curves[m.Name()] = alphas
		rep.Series = append(rep.Series, Series{Name: m.Name(), X: l.Impacts, Y: alphas})
	}

	rep.Passed, rep.Summary = l.judge(curves)

	if n, e := curves[force.Newtonian], curves[force.Entropic]; n != nil && e != nil {
		ratio := make([]float64, len(n))
		for i := range n {
			if n[i] != 0 {
				ratio[i] = e[i] / n[i]
			}
		}
		rep.Series = append(rep.Series, Series{Name: "entropic/newtonian", X: l.Impacts, Y: ratio})
	}

	return rep, nil
}

// judge encodes the qualitative expectations: Newtonian deflection
// decreases monotonically with impact parameter, and an entropic curve
// must fall off more slowly than 1/b (equivalently, slower than the
// Newtonian curve when both are present).
func (l LensingTracer) judge(curves map[string][]float64) (bool, string) {
	pass := true
	summary := ""

	if alphas, ok := curves[force.Newtonian]; ok {
		for i := 1; i < len(alphas); i++ {
			if alphas[i] >= alphas[i-1] {
				pass = false
				summary = fmt.Sprintf("newtonian deflection not decreasing at b=%g", l.Impacts[i])
				break
			}
		}
	}

	if len(l.Impacts) >= 2 {
		first, last := 0, len(l.Impacts)-1
		if e, ok := curves[force.Entropic]; ok && pass {
			if n, ok := curves[force.Newtonian]; ok {
				if e[last]/e[first] <= n[last]/n[first] {
					pass = false
					summary = "entropic deflection does not flatten relative to newtonian"
				}
			} else if e[last]*l.Impacts[last] <= e[first]*l.Impacts[first] {
				pass = false
				summary = "entropic deflection decays as fast as 1/b"
			}
		}
	}

	if summary == "" {
		summary = fmt.Sprintf("%d models swept over %d impact parameters", len(curves), len(l.Impacts))
	}
	return pass, summary
}
