// Package cosmo integrates the homogeneous expansion background. It is
// deliberately independent of the N-body machinery: a one-dimensional
// ODE for the scale factor plus a redshift quadrature for the age.
package cosmo

import (
	"math"

	"github.com/aram-vel/gravlab/internal/body"
)

// One km/s/Mpc expressed in inverse gigayears.
const kmsMpcInGyr = 1.0 / 977.79222168

// Reactive is an optional extra density term scaling as a^-Index.
// The zero value switches it off. Coeff 0.25 with Index 3 mimics a
// cold-dark-matter component, which lets a pure-baryon configuration
// reproduce the standard expansion history without one.
type Reactive struct {
	Coeff float64 `yaml:"coeff"`
	Index float64 `yaml:"index"`
}

// Params fixes one background cosmology. H0 is in km/s/Mpc; all times
// reported by this package are in Gyr.
type Params struct {
	H0       float64  `yaml:"h0"`
	OmegaM   float64  `yaml:"omega_m"`
	OmegaL   float64  `yaml:"omega_l"`
	Reactive Reactive `yaml:"reactive"`
}

func (p Params) Validate() error {
	if p.H0 <= 0 {
		return &body.ConfigError{Field: "h0", Reason: "must be positive"}
	}
	if p.OmegaM <= 0 {
		return &body.ConfigError{Field: "omega_m", Reason: "must be positive"}
	}
	if p.OmegaL < 0 {
		return &body.ConfigError{Field: "omega_l", Reason: "must be non-negative"}
	}
	if p.Reactive.Coeff < 0 {
		return &body.ConfigError{Field: "reactive.coeff", Reason: "must be non-negative"}
	}
	if p.Reactive.Coeff > 0 && p.Reactive.Index < 0 {
		return &body.ConfigError{Field: "reactive.index", Reason: "must be non-negative"}
	}
	return nil
}

// E2 is the dimensionless H^2/H0^2 at scale factor a.
func (p Params) E2(a float64) float64 {
	e2 := p.OmegaM/(a*a*a) + p.OmegaL
	if p.Reactive.Coeff > 0 {
		e2 += p.Reactive.Coeff * math.Pow(a, -p.Reactive.Index)
	}
	return e2
}

// H returns the Hubble rate at scale factor a in km/s/Mpc.
func (p Params) H(a float64) float64 {
	return p.H0 * math.Sqrt(p.E2(a))
}

// HofZ returns the Hubble rate at redshift z in km/s/Mpc.
func (p Params) HofZ(z float64) float64 {
	return p.H(1 / (1 + z))
}

// hGyr is the Hubble rate in 1/Gyr, the unit the ODE runs in.
func (p Params) hGyr(a float64) float64 {
	return p.H(a) * kmsMpcInGyr
}

// History records a scale-factor trajectory, times in Gyr.
type History struct {
	T []float64
	A []float64
}

// TimeAt interpolates the cosmic time at scale factor a. Outside the
// recorded range it clamps to the endpoints.
func (h History) TimeAt(a float64) float64 {
	if len(h.A) == 0 {
		return 0
	}
	if a <= h.A[0] {
		return h.T[0]
	}
	for i := 1; i < len(h.A); i++ {
		if h.A[i] >= a {
			f := (a - h.A[i-1]) / (h.A[i] - h.A[i-1])
			return h.T[i-1] + f*(h.T[i]-h.T[i-1])
		}
	}
	return h.T[len(h.T)-1]
}

// Expand integrates da/dt = a*H(a) with classic fixed-step RK4 from
// aStart to aEnd. The clock starts at the matter-dominated age
// 2/(3*H(aStart)), accurate as long as aStart sits well before dark
// energy matters. dtGyr <= 0 picks a default fine enough for the
// tolerances the diagnostics test against.
func (p Params) Expand(aStart, aEnd, dtGyr float64) (History, error) {
	if err := p.Validate(); err != nil {
		return History{}, err
	}
	if aStart <= 0 || aEnd <= aStart {
		return History{}, &body.ConfigError{Field: "a_start", Reason: "need 0 < aStart < aEnd"}
	}
	if dtGyr <= 0 {
		dtGyr = 1e-3
	}

	f := func(a float64) float64 { return a * p.hGyr(a) }

	a := aStart
	t := 2.0 / (3.0 * p.hGyr(aStart))
	h := History{T: []float64{t}, A: []float64{a}}

	for a < aEnd {
		k1 := f(a)
		k2 := f(a + 0.5*dtGyr*k1)
		k3 := f(a + 0.5*dtGyr*k2)
		k4 := f(a + dtGyr*k3)
		a += dtGyr / 6.0 * (k1 + 2*k2 + 2*k3 + k4)
		t += dtGyr
		h.T = append(h.T, t)
		h.A = append(h.A, a)
	}
	return h, nil
}

// AgeAt computes the cosmic time at redshift z by Simpson quadrature of
// dz'/((1+z')*H(z')) from z out to zMax = 1000, in ln(1+z) steps, plus
// the matter-dominated tail 2/(3*H(zMax)).
func (p Params) AgeAt(z float64) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if z < 0 {
		return 0, &body.ConfigError{Field: "z", Reason: "must be non-negative"}
	}

	const zMax = 1000.0
	const steps = 2048 // even, for Simpson weights

	// substitute x = ln(1+z): integrand becomes 1/H(e^x - 1) dx
	x0 := math.Log(1 + z)
	x1 := math.Log(1 + zMax)
	dx := (x1 - x0) / steps

	integrand := func(x float64) float64 {
		return 1 / (p.HofZ(math.Expm1(x)) * kmsMpcInGyr)
	}

	sum := integrand(x0) + integrand(x1)
	for i := 1; i < steps; i++ {
		w := 4.0
		if i%2 == 0 {
			w = 2.0
		}
		sum += w * integrand(x0+float64(i)*dx)
	}
	age := sum * dx / 3.0

	age += 2.0 / (3.0 * p.HofZ(zMax) * kmsMpcInGyr)
	return age, nil
}

// Age is the present-day age of the universe in Gyr.
func (p Params) Age() (float64, error) {
	return p.AgeAt(0)
}
