package diag

import (
	"fmt"
	"math"

	"github.com/aram-vel/gravlab/internal/body"
)

// ToomreAnalyzer computes the local stability parameter
// Q(r) = kappa*sigma_R / (3.36*G*Sigma) along a rotation curve.
// The caller supplies the surface density; the analyzer never guesses
// a mass distribution.
type ToomreAnalyzer struct {
	G float64

	// R and V form the rotation curve; R must increase strictly.
	R []float64
	V []float64

	// Sigma is the surface density at each R.
	Sigma []float64

	// SigmaFraction sets the radial velocity dispersion as a fraction
	// of the local circular speed.
	SigmaFraction float64

	// MinStableFraction of radii with Q > 1 needed to pass.
	// Zero means 0.5.
	MinStableFraction float64
}

func (t ToomreAnalyzer) Name() string { return "toomre" }

func (t ToomreAnalyzer) validate() error {
	if len(t.R) < 3 {
		return &body.InputError{Diagnostic: t.Name(), Reason: "need at least 3 radii to differentiate"}
	}
	if len(t.V) != len(t.R) || len(t.Sigma) != len(t.R) {
		return &body.InputError{Diagnostic: t.Name(), Reason: "R, V and Sigma lengths differ"}
	}
	for i, r := range t.R {
		if r <= 0 || (i > 0 && r <= t.R[i-1]) {
			return &body.InputError{Diagnostic: t.Name(), Reason: "radii must be positive and strictly increasing"}
		}
		if t.Sigma[i] <= 0 {
			return &body.InputError{Diagnostic: t.Name(), Reason: "surface density must be positive"}
		}
		if t.V[i] < 0 {
			return &body.InputError{Diagnostic: t.Name(), Reason: "circular speeds must be non-negative"}
		}
	}
	if t.SigmaFraction <= 0 {
		return &body.InputError{Diagnostic: t.Name(), Reason: "sigma fraction must be positive"}
	}
	if t.G <= 0 {
		return &body.InputError{Diagnostic: t.Name(), Reason: "G must be positive"}
	}
	return nil
}

func (t ToomreAnalyzer) minStable() float64 {
	if t.MinStableFraction <= 0 {
		return 0.5
	}
	return t.MinStableFraction
}

func (t ToomreAnalyzer) Run() (*Report, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	n := len(t.R)

	// specific angular momentum h = r^2*Omega = r*v
	h := make([]float64, n)
	for i := range h {
		h[i] = t.R[i] * t.V[i]
	}

	// kappa^2 = (2*Omega/r) * d(r^2*Omega)/dr, central differences
	// inside, one-sided at the ends.
	kappa := make([]float64, n)
	q := make([]float64, n)
	stable := 0
	for i := 0; i < n; i++ {
		var dh float64
		switch i {
		case 0:
			dh = (h[1] - h[0]) / (t.R[1] - t.R[0])
		case n - 1:
			dh = (h[n-1] - h[n-2]) / (t.R[n-1] - t.R[n-2])
		default:
			dh = (h[i+1] - h[i-1]) / (t.R[i+1] - t.R[i-1])
		}

		omega := t.V[i] / t.R[i]
		k2 := 2 * omega / t.R[i] * dh

		// declining angular momentum means a locally unstable orbit;
		// report it as Q = 0 rather than a complex kappa
		if k2 <= 0 {
			kappa[i] = 0
			q[i] = 0
			continue
		}
		kappa[i] = math.Sqrt(k2)

		sigmaR := t.SigmaFraction * t.V[i]
		q[i] = kappa[i] * sigmaR / (3.36 * t.G * t.Sigma[i])
		if q[i] > 1 {
			stable++
		}
	}

	frac := float64(stable) / float64(n)
	min := t.minStable()

	return &Report{
		Name:   t.Name(),
		Passed: frac >= min,
		Summary: fmt.Sprintf("%.0f%% of %d radii locally stable (Q > 1), need %.0f%%",
			frac*100, n, min*100),
		Scalars: map[string]float64{
			"stable_fraction": frac,
			"min_stable":      min,
		},
		Series: []Series{
			{Name: "Q", X: t.R, Y: q},
			{Name: "kappa", X: t.R, Y: kappa},
		},
	}, nil
}
