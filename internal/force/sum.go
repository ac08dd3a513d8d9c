package force

import (
	"math"
	"runtime"
	"sync"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/vec"
)

// Below this ensemble size the goroutine fan-out costs more than it saves.
const parallelThreshold = 64

// newtonField fills g[i] with the softened Newtonian field at particle i,
// external term included. Each particle's sum runs over ascending j, in
// both the serial and the chunked path, so the floating-point result is
// identical for any worker count.
func newtonField(s *body.State, p Params, g []vec.V3) {
	n := s.N()
	if n >= parallelThreshold && p.workerCount() > 1 {
		w := p.workerCount()
		var wg sync.WaitGroup
		chunk := (n + w - 1) / w
		for start := 0; start < n; start += chunk {
			end := start + chunk
			if end > n {
				end = n
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					g[i] = newtonAtParticle(s, p, i)
				}
			}(start, end)
		}
		wg.Wait()
		return
	}
	for i := 0; i < n; i++ {
		g[i] = newtonAtParticle(s, p, i)
	}
}

func (p Params) workerCount() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.NumCPU()
}

// newtonAtParticle sums the softened field felt by particle i.
func newtonAtParticle(s *body.State, p Params, i int) vec.V3 {
	g := p.External
	eps2 := p.Softening * p.Softening

	if p.interaction() == InteractCentral {
		if i != 0 {
			g = g.Add(pairField(s.Pos[0], s.Mass[0], s.Pos[i], p.G, eps2))
		}
		return g
	}

	for j := 0; j < s.N(); j++ {
		if j == i {
			continue
		}
		g = g.Add(pairField(s.Pos[j], s.Mass[j], s.Pos[i], p.G, eps2))
	}
	return g
}

// newtonAtPoint sums the softened field at an arbitrary test point.
// Every particle sources it; there is no self term to skip.
func newtonAtPoint(s *body.State, p Params, at vec.V3) vec.V3 {
	g := p.External
	eps2 := p.Softening * p.Softening

	if p.interaction() == InteractCentral {
		if s.N() > 0 {
			g = g.Add(pairField(s.Pos[0], s.Mass[0], at, p.G, eps2))
		}
		return g
	}

	for j := 0; j < s.N(); j++ {
		g = g.Add(pairField(s.Pos[j], s.Mass[j], at, p.G, eps2))
	}
	return g
}

// pairField is the softened field of one source: magnitude G*m/(r^2+eps^2)
// along the separation unit vector. Coincident points contribute nothing,
// matching the symmetric limit.
func pairField(src vec.V3, m float64, at vec.V3, g, eps2 float64) vec.V3 {
	d := src.Sub(at)
	r2 := d.Norm2()
	if r2 == 0 {
		return vec.V3{}
	}
	r := math.Sqrt(r2)
	mag := g * m / (r2 + eps2)
	return d.Scale(mag / r)
}

// potentialSum accumulates the ensemble potential energy from psi, the
// pair potential per unit target mass around a source of strength k = G*m.
// Pairwise mode symmetrizes over the two orderings of each pair; central
// mode charges only the satellites, since the central body feels no
// internal force there. The uniform external field contributes -m*(g.x).
func potentialSum(s *body.State, p Params, psi func(k, r float64) float64) float64 {
	n := s.N()
	u := 0.0

	if p.interaction() == InteractCentral {
		if n > 0 {
			k0 := p.G * s.Mass[0]
			for i := 1; i < n; i++ {
				u += s.Mass[i] * psi(k0, s.Pos[i].Dist(s.Pos[0]))
			}
		}
	} else {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				r := s.Pos[i].Dist(s.Pos[j])
				u += 0.5 * (s.Mass[i]*psi(p.G*s.Mass[j], r) + s.Mass[j]*psi(p.G*s.Mass[i], r))
			}
		}
	}

	for i := 0; i < n; i++ {
		u -= s.Mass[i] * p.External.Dot(s.Pos[i])
	}
	return u
}
