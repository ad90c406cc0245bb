package decode

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks invalid construction parameters: a negative k,
	// p outside [0, 1], an unresolvable device, an empty end sequence.
	ErrConfiguration = errors.New("configuration error")
	// ErrArithmetic marks numeric settings that would divide by zero.
	ErrArithmetic = errors.New("arithmetic error")
	// ErrEmptyScores is returned when the model produces no scores, which
	// would make a step yield zero tokens.
	ErrEmptyScores = errors.New("model returned an empty score distribution")
)

// ConfigError reports a rejected parameter. It matches ErrConfiguration and,
// when set, the underlying cause.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s %v", ErrConfiguration, e.Field, e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}

// ArithmeticError reports a parameter whose value makes a scaling step
// divide by zero.
type ArithmeticError struct {
	Field string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s: %s must be nonzero (division by zero)", ErrArithmetic, e.Field)
}

func (e *ArithmeticError) Unwrap() error { return ErrArithmetic }

// WarningKind classifies non-fatal diagnostics.
type WarningKind string

const (
	// ConfigurationWarning is an accepted but unconventional setting.
	ConfigurationWarning WarningKind = "configuration"
	// RuntimeWarning is a condition that turned a filter into a no-op.
	RuntimeWarning WarningKind = "runtime"
)

// Warning is a diagnostic delivered to the decoder's warning sink and logger
// instead of failing the call.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s warning: %s: %s", w.Kind, w.Field, w.Message)
}
