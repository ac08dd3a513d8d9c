package force

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/vec"
)

func benchState(n int) *body.State {
	rng := rand.New(rand.NewSource(7))
	s := body.NewState(n)
	for i := 0; i < n; i++ {
		s.Pos[i] = vec.V3{X: rng.NormFloat64() * 5, Y: rng.NormFloat64() * 5}
		s.Mass[i] = 1
	}
	return s
}

func BenchmarkNewtonianAccel256(b *testing.B) {
	m, _ := New(Newtonian, Params{G: 1, Softening: 0.01})
	s := benchState(256)
	acc := make([]vec.V3, s.N())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Accel(s, acc)
	}
}

func BenchmarkEntropicAccel256(b *testing.B) {
	m, _ := New(Entropic, Params{G: 1, A0: 1e-3, Softening: 0.01})
	s := benchState(256)
	acc := make([]vec.V3, s.N())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Accel(s, acc)
	}
}

func BenchmarkAccelWorkers(b *testing.B) {
	s := benchState(1024)
	for _, w := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers-%d", w), func(b *testing.B) {
			m, _ := New(Newtonian, Params{G: 1, Softening: 0.01, Workers: w})
			acc := make([]vec.V3, s.N())
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m.Accel(s, acc)
			}
		})
	}
}

func BenchmarkPotential512(b *testing.B) {
	m, _ := New(Entropic, Params{G: 1, A0: 1e-3, Softening: 0.01})
	s := benchState(512)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Potential(s)
	}
}
