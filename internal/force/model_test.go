package force_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/force"
	"github.com/aram-vel/gravlab/internal/vec"
)

// centralState puts a single mass m at the origin, the simplest source
// for field probes.
func centralState(m float64) *body.State {
	s := body.NewState(1)
	s.Mass[0] = m
	return s
}

func randomCloud(n int, seed int64) *body.State {
	rng := rand.New(rand.NewSource(seed))
	s := body.NewState(n)
	for i := 0; i < n; i++ {
		s.Pos[i] = vec.V3{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		s.Vel[i] = vec.V3{X: rng.NormFloat64() * 0.1, Y: rng.NormFloat64() * 0.1}
		s.Mass[i] = 0.5 + rng.Float64()
	}
	return s
}

var _ = Describe("Boost", func() {
	const a0 = 1e-3

	It("reduces to Newtonian gravity at high acceleration", func() {
		aN := 1e6 * a0
		Expect(force.Boost(aN, a0)).To(BeNumerically("~", aN, aN*1e-5))
	})

	It("approaches sqrt(aN*a0) deep in the low-acceleration regime", func() {
		aN := 1e-12
		want := math.Sqrt(aN * a0)
		Expect(force.Boost(aN, a0)).To(BeNumerically("~", want, want*1e-4))
	})

	It("solves the defining quadratic exactly", func() {
		for _, aN := range []float64{1e-9, 1e-6, 1e-3, 1, 1e3} {
			aEff := force.Boost(aN, a0)
			residual := aEff*aEff - aN*aEff - aN*a0
			Expect(residual).To(BeNumerically("~", 0, 1e-12*aEff*aEff))
		}
	})

	It("is monotonic in aN", func() {
		prev := 0.0
		for aN := 1e-9; aN < 1e3; aN *= 10 {
			cur := force.Boost(aN, a0)
			Expect(cur).To(BeNumerically(">", prev))
			prev = cur
		}
	})

	It("returns zero field unchanged", func() {
		Expect(force.Boost(0, a0)).To(BeZero())
	})
})

var _ = Describe("New", func() {
	valid := force.Params{G: 1, A0: 1e-3, Softening: 0.01}

	It("accepts both model names", func() {
		for _, name := range force.Names() {
			m, err := force.New(name, valid)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Name()).To(Equal(name))
		}
	})

	It("rejects an unknown model name", func() {
		_, err := force.New("aristotelian", valid)
		Expect(err).To(MatchError(body.ErrConfiguration))
	})

	It("rejects zero softening", func() {
		p := valid
		p.Softening = 0
		_, err := force.New(force.Newtonian, p)
		Expect(err).To(MatchError(body.ErrConfiguration))
	})

	It("rejects negative softening", func() {
		p := valid
		p.Softening = -0.1
		_, err := force.New(force.Entropic, p)
		Expect(err).To(MatchError(body.ErrConfiguration))
	})

	It("rejects an entropic model without a0", func() {
		p := valid
		p.A0 = 0
		_, err := force.New(force.Entropic, p)
		Expect(err).To(MatchError(body.ErrConfiguration))
	})

	It("rejects a non-positive gravitational constant", func() {
		p := valid
		p.G = 0
		_, err := force.New(force.Newtonian, p)
		Expect(err).To(MatchError(body.ErrConfiguration))
	})
})

var _ = Describe("Newtonian model", func() {
	var model force.Model

	BeforeEach(func() {
		var err error
		model, err = force.New(force.Newtonian, force.Params{G: 1, Softening: 1e-4})
		Expect(err).NotTo(HaveOccurred())
	})

	It("recovers the inverse-square field far from the softening scale", func() {
		src := centralState(4)
		g := model.AccelAt(src, vec.V3{X: 2})
		Expect(g.X).To(BeNumerically("~", -1.0, 1e-6))
		Expect(g.Y).To(BeZero())
	})

	It("keeps the force finite at zero separation", func() {
		s := body.NewState(2)
		s.Mass[0], s.Mass[1] = 1, 1
		// coincident pair
		acc := make([]vec.V3, 2)
		model.Accel(s, acc)
		Expect(acc[0].IsFinite()).To(BeTrue())
		Expect(acc[1].IsFinite()).To(BeTrue())
	})

	It("matches -G*m1*m2/r pair energy well outside the softening length", func() {
		s := body.NewState(2)
		s.Pos[1] = vec.V3{X: 3}
		s.Mass[0], s.Mass[1] = 2, 5
		u := model.Potential(s)
		Expect(u).To(BeNumerically("~", -2.0*5.0/3.0, 1e-6))
	})

	It("derives the force from the potential", func() {
		s := body.NewState(2)
		s.Pos[1] = vec.V3{X: 1.3, Y: 0.4}
		s.Mass[0], s.Mass[1] = 2, 3

		acc := make([]vec.V3, 2)
		model.Accel(s, acc)

		h := 1e-6
		plus, minus := s.Clone(), s.Clone()
		plus.Pos[1].X += h
		minus.Pos[1].X -= h
		grad := (model.Potential(plus) - model.Potential(minus)) / (2 * h)

		Expect(-grad / s.Mass[1]).To(BeNumerically("~", acc[1].X, 1e-5))
	})
})

var _ = Describe("Entropic model", func() {
	const (
		G  = 1.0
		a0 = 1e-3
	)

	newModel := func(p force.Params) force.Model {
		m, err := force.New(force.Entropic, p)
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	It("boosts circular speeds below a0 by the closed-form ratio", func() {
		// aN = G*M/r^2 = 1e-4, one decade under a0.
		const M, r = 0.01, 10.0
		src := centralState(M)
		pos := vec.V3{X: r}

		nm, err := force.New(force.Newtonian, force.Params{G: G, Softening: 1e-4})
		Expect(err).NotTo(HaveOccurred())
		em := newModel(force.Params{G: G, A0: a0, Softening: 1e-4})

		vN := force.CircularSpeed(nm.AccelAt(src, pos), pos)
		vE := force.CircularSpeed(em.AccelAt(src, pos), pos)

		aN := G * M / (r * r)
		want := math.Sqrt(force.Boost(aN, a0) / aN)
		Expect(vE).To(BeNumerically(">", vN))
		Expect(vE / vN).To(BeNumerically("~", want, want*0.01))
	})

	It("suppresses the boost under a strong external field", func() {
		const M, r = 0.01, 10.0
		src := centralState(M)
		pos := vec.V3{Y: r}

		isolated := newModel(force.Params{G: G, A0: a0, Softening: 1e-4})
		hosted := newModel(force.Params{G: G, A0: a0, Softening: 1e-4,
			External: vec.V3{X: 100 * a0}})

		aN := G * M / (r * r)
		gIso := isolated.AccelAt(src, pos)
		Expect(gIso.Norm()).To(BeNumerically(">", 2*aN))

		// Transverse to the external field the internal pull survives,
		// but its boost collapses toward 1.
		gHost := hosted.AccelAt(src, pos)
		Expect(math.Abs(gHost.Y)).To(BeNumerically("~", aN, aN*0.05))
	})

	It("derives the force from the potential for an equal-mass pair", func() {
		m := newModel(force.Params{G: G, A0: a0, Softening: 0.01})
		s := body.NewState(2)
		s.Pos[1] = vec.V3{X: 7, Y: 2}
		s.Mass[0], s.Mass[1] = 0.03, 0.03

		acc := make([]vec.V3, 2)
		m.Accel(s, acc)

		h := 1e-4
		plus, minus := s.Clone(), s.Clone()
		plus.Pos[1].Y += h
		minus.Pos[1].Y -= h
		grad := (m.Potential(plus) - m.Potential(minus)) / (2 * h)

		Expect(-grad / s.Mass[1]).To(BeNumerically("~", acc[1].Y, math.Abs(acc[1].Y)*1e-4))
	})

	It("matches the Newtonian potential when a0 vanishes", func() {
		s := body.NewState(2)
		s.Pos[1] = vec.V3{X: 2.5}
		s.Mass[0], s.Mass[1] = 1, 4

		nm, err := force.New(force.Newtonian, force.Params{G: G, Softening: 0.05})
		Expect(err).NotTo(HaveOccurred())
		em := newModel(force.Params{G: G, A0: 1e-30, Softening: 0.05})

		Expect(em.Potential(s)).To(BeNumerically("~", nm.Potential(s), 1e-9))
	})

	It("grows the pair energy logarithmically at large separation", func() {
		m := newModel(force.Params{G: G, A0: a0, Softening: 0.01})
		energyAt := func(r float64) float64 {
			s := body.NewState(2)
			s.Pos[1] = vec.V3{X: r}
			s.Mass[0], s.Mass[1] = 1, 1
			return m.Potential(s)
		}

		// Deep in the flat regime the increment per decade of separation
		// settles to sqrt(G*m*a0)*ln(10).
		d1 := energyAt(1e4) - energyAt(1e3)
		d2 := energyAt(1e5) - energyAt(1e4)
		want := math.Sqrt(G*1*a0) * math.Log(10)
		Expect(d1).To(BeNumerically("~", want, want*0.01))
		Expect(d2).To(BeNumerically("~", want, want*0.001))
	})
})

var _ = Describe("Interaction modes", func() {
	It("restricts sources to particle 0 in central mode", func() {
		s := body.NewState(3)
		s.Pos[1] = vec.V3{X: 2}
		s.Pos[2] = vec.V3{X: -2}
		s.Mass[0], s.Mass[1], s.Mass[2] = 10, 1, 1

		m, err := force.New(force.Newtonian, force.Params{
			G: 1, Softening: 1e-4, Interaction: force.InteractCentral,
		})
		Expect(err).NotTo(HaveOccurred())

		acc := make([]vec.V3, 3)
		m.Accel(s, acc)

		Expect(acc[0]).To(Equal(vec.V3{}))
		// satellites feel only the central body, not each other
		Expect(acc[1].X).To(BeNumerically("~", -10.0/4.0, 1e-3))
		Expect(acc[2].X).To(BeNumerically("~", 10.0/4.0, 1e-3))
	})

	It("rejects an unknown interaction mode", func() {
		_, err := force.New(force.Newtonian, force.Params{
			G: 1, Softening: 0.01, Interaction: "onion",
		})
		Expect(err).To(MatchError(body.ErrConfiguration))
	})
})

var _ = Describe("Parallel field evaluation", func() {
	It("is bitwise identical for any worker count", func() {
		s := randomCloud(200, 42)

		accFor := func(workers int) []vec.V3 {
			m, err := force.New(force.Entropic, force.Params{
				G: 1, A0: 1e-3, Softening: 0.01, Workers: workers,
			})
			Expect(err).NotTo(HaveOccurred())
			acc := make([]vec.V3, s.N())
			m.Accel(s, acc)
			return acc
		}

		base := accFor(1)
		for _, w := range []int{2, 3, 7, 16} {
			Expect(accFor(w)).To(Equal(base))
		}
	})
})
