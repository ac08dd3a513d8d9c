package force

import (
	"math"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/vec"
)

type entropicModel struct {
	p Params
}

func (m *entropicModel) Name() string   { return Entropic }
func (m *entropicModel) Params() Params { return m.p }

// Boost maps a Newtonian acceleration magnitude to the effective one:
// the positive root of aEff^2 - aN*aEff - aN*a0 = 0. It tends to aN for
// aN >> a0 and to sqrt(aN*a0) for aN << a0, with a continuous first
// derivative across the transition.
func Boost(aN, a0 float64) float64 {
	if aN <= 0 {
		return 0
	}
	return 0.5 * (aN + math.Sqrt(aN*aN+4*aN*a0))
}

func (m *entropicModel) rescale(g vec.V3) vec.V3 {
	aN := g.Norm()
	if aN == 0 {
		return g
	}
	return g.Scale(Boost(aN, m.p.A0) / aN)
}

// Accel computes the softened Newtonian field per particle, external
// term included, then rescales each vector through the interpolation.
// The interpolation argument is the combined magnitude, so a strong
// external field suppresses the low-acceleration boost.
func (m *entropicModel) Accel(s *body.State, acc []vec.V3) {
	newtonField(s, m.p, acc)
	for i := range acc {
		acc[i] = m.rescale(acc[i])
	}
}

func (m *entropicModel) AccelAt(s *body.State, at vec.V3) vec.V3 {
	return m.rescale(newtonAtPoint(s, m.p, at))
}

func (m *entropicModel) Potential(s *body.State) float64 {
	return potentialSum(s, m.p, func(k, r float64) float64 {
		return entropicPair(k, m.p.A0, m.p.Softening, r)
	})
}

// entropicPair is the antiderivative of Boost(k/(r^2+eps^2), a0) in r,
// shifted to match the Newtonian pair potential as a0 -> 0. Around an
// isolated source it reproduces the boosted field exactly. At large r
// it grows like sqrt(k*a0)*ln(r), the flat-rotation-curve form.
func entropicPair(k, a0, eps, r float64) float64 {
	if k == 0 {
		return 0
	}
	c := 2 * math.Sqrt(k*a0)
	a := k*k + c*c*eps*eps
	root := math.Sqrt(a + c*c*r*r)
	return (k/(2*eps))*math.Atan(r/eps) +
		0.5*c*math.Asinh(c*r/math.Sqrt(a)) +
		(k/(2*eps))*math.Atan(k*r/(eps*root)) -
		k*math.Pi/(2*eps)
}
