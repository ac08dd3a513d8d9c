package force

import (
	"math"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/vec"
)

type newtonModel struct {
	p Params
}

func (m *newtonModel) Name() string   { return Newtonian }
func (m *newtonModel) Params() Params { return m.p }

func (m *newtonModel) Accel(s *body.State, acc []vec.V3) {
	newtonField(s, m.p, acc)
}

func (m *newtonModel) AccelAt(s *body.State, at vec.V3) vec.V3 {
	return newtonAtPoint(s, m.p, at)
}

// Potential sums the pair potential matching the softened magnitude
// G*m/(r^2+eps^2) exactly: -(k/eps)*atan(eps/r), zero at infinity and
// finite at contact.
func (m *newtonModel) Potential(s *body.State) float64 {
	eps := m.p.Softening
	return potentialSum(s, m.p, func(k, r float64) float64 {
		return -(k / eps) * math.Atan2(eps, r)
	})
}
