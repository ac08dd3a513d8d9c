package body

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrConfiguration indicates a parameter outside its valid range.
	ErrConfiguration = errors.New("body: invalid configuration")

	// ErrDiverged indicates a non-finite position or velocity during integration.
	ErrDiverged = errors.New("body: state diverged (NaN or Inf detected)")

	// ErrDiagnosticInput indicates input a diagnostic cannot analyze.
	ErrDiagnosticInput = errors.New("body: invalid diagnostic input")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("body: run canceled by context")
)

// ConfigError reports the parameter that failed validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// DivergenceError records where an integration run lost finiteness.
type DivergenceError struct {
	Step     int
	Time     float64
	Particle int
	Quantity string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v: step %d (t=%.4g): particle %d %s non-finite",
		ErrDiverged, e.Step, e.Time, e.Particle, e.Quantity)
}

func (e *DivergenceError) Unwrap() error {
	return ErrDiverged
}

// InputError reports why a diagnostic rejected its input.
type InputError struct {
	Diagnostic string
	Reason     string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrDiagnosticInput, e.Diagnostic, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrDiagnosticInput
}
