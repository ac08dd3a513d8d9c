// Package force implements the gravitational force laws that drive the
// integrator. Two models are provided: plain Newtonian gravity and an
// entropic variant that boosts accelerations below a characteristic
// scale a0. Both share the same softened pairwise sum and differ only
// in how the summed field is mapped to an effective acceleration.
package force

import (
	"fmt"
	"math"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/vec"
)

// Model names accepted by New.
const (
	Newtonian = "newtonian"
	Entropic  = "entropic"
)

// Interaction selects which particles source the field.
type Interaction string

const (
	// InteractAll sums over every pair.
	InteractAll Interaction = "pairwise"

	// InteractCentral treats particle 0 as the only source. Satellites
	// feel the central body; the central body feels nothing internal.
	InteractCentral Interaction = "central"
)

// Params holds the physical constants of a force model. Immutable for
// the lifetime of a run.
type Params struct {
	// G is the gravitational constant.
	G float64

	// A0 is the low-acceleration scale of the entropic model. Fields
	// much stronger than A0 stay Newtonian; weaker fields are boosted
	// toward sqrt(aN*A0).
	A0 float64

	// Softening caps the pairwise force at small separations. The
	// Newtonian magnitude is G*m/(r^2 + Softening^2).
	Softening float64

	// External is a uniform background field added to every particle.
	External vec.V3

	// Interaction defaults to InteractAll when empty.
	Interaction Interaction

	// Workers caps the goroutines used for the pairwise sum.
	// Zero means one per CPU. Results do not depend on this value.
	Workers int
}

func (p Params) interaction() Interaction {
	if p.Interaction == "" {
		return InteractAll
	}
	return p.Interaction
}

// Validate checks the parameters common to all models.
func (p Params) Validate() error {
	if p.Softening <= 0 {
		return &body.ConfigError{Field: "softening", Reason: "must be positive"}
	}
	if p.G <= 0 {
		return &body.ConfigError{Field: "G", Reason: "must be positive"}
	}
	if p.A0 < 0 {
		return &body.ConfigError{Field: "a0", Reason: "must be non-negative"}
	}
	if p.Workers < 0 {
		return &body.ConfigError{Field: "workers", Reason: "must be non-negative"}
	}
	if !p.External.IsFinite() {
		return &body.ConfigError{Field: "external_field", Reason: "must be finite"}
	}
	switch p.interaction() {
	case InteractAll, InteractCentral:
	default:
		return &body.ConfigError{Field: "interaction", Reason: fmt.Sprintf("unknown mode %q", p.Interaction)}
	}
	return nil
}

// Model computes accelerations for a particle ensemble. Implementations
// are safe for concurrent read-only use once constructed.
type Model interface {
	// Name identifies the model in configs and reports.
	Name() string

	// Params returns the constants the model was built with.
	Params() Params

	// Accel fills acc[i] with the acceleration of particle i.
	// len(acc) must equal s.N().
	Accel(s *body.State, acc []vec.V3)

	// AccelAt returns the field at an arbitrary point sourced by every
	// particle of s. Used by the lensing tracer and rotation curves.
	AccelAt(s *body.State, at vec.V3) vec.V3

	// Potential returns the potential energy consistent with the
	// model's force law, including the external field term.
	Potential(s *body.State) float64
}

// New builds the named model after validating its parameters.
func New(name string, p Params) (Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch name {
	case Newtonian:
		return &newtonModel{p: p}, nil
	case Entropic:
		if p.A0 == 0 {
			return nil, &body.ConfigError{Field: "a0", Reason: "entropic model needs a0 > 0"}
		}
		return &entropicModel{p: p}, nil
	default:
		return nil, &body.ConfigError{Field: "force_model", Reason: fmt.Sprintf("unknown model %q", name)}
	}
}

// Names lists the models New accepts.
func Names() []string {
	return []string{Newtonian, Entropic}
}

// CircularSpeed returns the circular-orbit speed at radius r implied by
// the radially attractive part of the field g at that point, v^2 = a*r.
// A field with no inward component yields zero.
func CircularSpeed(g vec.V3, pos vec.V3) float64 {
	r := pos.Norm()
	if r == 0 {
		return 0
	}
	inward := -g.Dot(pos) / r
	if inward <= 0 {
		return 0
	}
	return math.Sqrt(inward * r)
}
