package disk

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/force"
	"github.com/aram-vel/gravlab/internal/vec"
)

// perlin noise shape; two octaves of persistence 2 read smoothly at the
// scales disks span.
const (
	noiseAlpha   = 2
	noiseBeta    = 2
	noiseOctaves = 3
)

// Builder assembles an initial ensemble. Velocities come from the
// installed model's own field on the placed particles, so the orbits
// that t=0 encodes are circular for that model, not for Newton.
// Swapping models after building produces the collapse/ejection
// transient this builder exists to avoid.
type Builder struct {
	Model   force.Model
	Profile Profile

	// N satellites drawn from Profile, sharing DiskMass equally.
	N        int
	DiskMass float64

	// CentralMass, when positive, adds a body at rest at the origin
	// as particle 0.
	CentralMass float64

	// Seed fixes both placement and perturbation noise.
	Seed int64

	// Perturb scales an azimuthal perlin modulation of each circular
	// speed; 0.05 means speeds vary by up to five percent.
	Perturb float64

	// PerturbScale is the spatial frequency of the noise field.
	PerturbScale float64

	// ZeroMomentum removes the net drift after velocities are set.
	ZeroMomentum bool
}

func (b Builder) validate() error {
	if b.Model == nil {
		return &body.ConfigError{Field: "force_model", Reason: "builder needs a model"}
	}
	if b.N < 0 {
		return &body.ConfigError{Field: "particle_count", Reason: "must be non-negative"}
	}
	if b.N == 0 && b.CentralMass <= 0 {
		return &body.ConfigError{Field: "particle_count", Reason: "nothing to build"}
	}
	if b.N > 0 {
		if b.Profile == nil {
			return &body.ConfigError{Field: "mass_profile", Reason: "satellites need a profile"}
		}
		if err := b.Profile.Validate(); err != nil {
			return err
		}
		if b.DiskMass <= 0 {
			return &body.ConfigError{Field: "disk_mass", Reason: "must be positive"}
		}
	}
	if b.CentralMass < 0 {
		return &body.ConfigError{Field: "central_mass", Reason: "must be non-negative"}
	}
	if b.Perturb < 0 || b.Perturb >= 1 {
		return &body.ConfigError{Field: "perturb", Reason: "must be in [0, 1)"}
	}
	return nil
}

// Build places the ensemble and solves v(r) = sqrt(a*r) per particle
// from the model's field at its position.
func (b Builder) Build() (*body.State, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(b.Seed))

	offset := 0
	if b.CentralMass > 0 {
		offset = 1
	}
	s := body.NewState(offset + b.N)
	if offset == 1 {
		s.Mass[0] = b.CentralMass
	}

	if b.N > 0 {
		positions := b.Profile.Positions(rng, b.N)
		each := b.DiskMass / float64(b.N)
		for i, p := range positions {
			s.Pos[offset+i] = p
			s.Mass[offset+i] = each
		}
	}

	// One field evaluation over the assembled ensemble covers every
	// satellite; accelerations do not depend on the still-zero
	// velocities.
	acc := make([]vec.V3, s.N())
	b.Model.Accel(s, acc)

	var noise *perlin.Perlin
	if b.Perturb > 0 {
		noise = perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, b.Seed)
	}
	freq := b.PerturbScale
	if freq <= 0 {
		freq = 1
	}

	for i := offset; i < s.N(); i++ {
		v := force.CircularSpeed(acc[i], s.Pos[i])
		if noise != nil {
			v *= 1 + b.Perturb*noise.Noise2D(s.Pos[i].X*freq, s.Pos[i].Y*freq)
		}
		s.Vel[i] = tangentDir(s.Pos[i]).Scale(v)
	}

	if b.ZeroMomentum {
		s.ZeroMomentum()
	}
	return s, nil
}

// tangentDir returns the unit direction of a counterclockwise circular
// orbit through p about the origin. Positions on the z axis fall back
// to the x cross product.
func tangentDir(p vec.V3) vec.V3 {
	t := vec.V3{Z: 1}.Cross(p)
	if t.Norm2() < 1e-24*p.Norm2() || p.Norm2() == 0 {
		t = vec.V3{X: 1}.Cross(p)
	}
	return t.Normalize()
}

// RotationCurve samples the circular speed the model implies at each
// radius, probing along the x axis of the source ensemble.
func RotationCurve(model force.Model, src *body.State, radii []float64) []float64 {
	v := make([]float64, len(radii))
	for i, r := range radii {
		pos := vec.V3{X: r}
		v[i] = force.CircularSpeed(model.AccelAt(src, pos), pos)
	}
	return v
}

// SpeedAt mirrors RotationCurve for a single radius.
func SpeedAt(model force.Model, src *body.State, r float64) float64 {
	pos := vec.V3{X: r}
	return force.CircularSpeed(model.AccelAt(src, pos), pos)
}

// MeasuredCurve bins the particles of a snapshot by cylindrical radius
// and averages the tangential speed per bin. Particles at the origin
// (a central body) are skipped. Bins with no particles are dropped, so
// the returned radii increase strictly.
func MeasuredCurve(s *body.State, bins int) (radii, speeds []float64) {
	if s == nil || bins <= 0 {
		return nil, nil
	}

	rs := make([]float64, 0, s.N())
	vt := make([]float64, 0, s.N())
	rmin, rmax := math.Inf(1), 0.0
	for i := range s.Pos {
		r := math.Hypot(s.Pos[i].X, s.Pos[i].Y)
		if r == 0 {
			continue
		}
		rs = append(rs, r)
		vt = append(vt, math.Abs(s.Pos[i].X*s.Vel[i].Y-s.Pos[i].Y*s.Vel[i].X)/r)
		rmin = math.Min(rmin, r)
		rmax = math.Max(rmax, r)
	}
	if len(rs) == 0 {
		return nil, nil
	}
	if rmin == rmax {
		return []float64{rmin}, []float64{mean(vt)}
	}

	sumR := make([]float64, bins)
	sumV := make([]float64, bins)
	count := make([]int, bins)
	width := (rmax - rmin) / float64(bins)
	for i, r := range rs {
		b := int((r - rmin) / width)
		if b >= bins {
			b = bins - 1
		}
		sumR[b] += r
		sumV[b] += vt[i]
		count[b]++
	}

	for b := range count {
		if count[b] == 0 {
			continue
		}
		radii = append(radii, sumR[b]/float64(count[b]))
		speeds = append(speeds, sumV[b]/float64(count[b]))
	}
	return radii, speeds
}

func mean(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// Radii builds n logarithmically spaced radii over [rmin, rmax],
// the natural sampling for rotation curves.
func Radii(rmin, rmax float64, n int) []float64 {
	if n <= 0 || rmin <= 0 || rmax <= rmin {
		return nil
	}
	if n == 1 {
		return []float64{rmin}
	}
	out := make([]float64, n)
	step := math.Log(rmax/rmin) / float64(n-1)
	for i := range out {
		out[i] = rmin * math.Exp(float64(i)*step)
	}
	return out
}
