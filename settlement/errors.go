/*
errors.go - Structural error types for the settlement engine

PURPOSE:
  The engine has two severities. Structural problems in the inputs are
  fatal and reported here, before any computation runs. Business-rule
  violations are never errors; they become Warnings (see warnings.go).

ERROR CATEGORIES:
  1. Decision errors - negative volumes, quality outside [0,100], bad codes
  2. State errors - quarter outside 1..4, negative stocks or fleet
  3. Forecast errors - unknown channel, negative volume
  4. Params errors - an unusable parameter table

USAGE:
  _, err := engine.Settle(decisions, state, nil)
  if errors.Is(err, settlement.ErrInvalidDecision) {
      var verrs settlement.ValidationErrors
      errors.As(err, &verrs) // every offending field
  }

SEE ALSO:
  - validate.go: Produces these errors
  - warnings.go: Non-fatal rule violations
*/
package settlement

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDecision is returned when the decision bundle is malformed.
	ErrInvalidDecision = errors.New("invalid decision")

	// ErrInvalidState is returned when the opening period state is malformed.
	ErrInvalidState = errors.New("invalid period state")

	// ErrInvalidForecast is returned when the sales forecast override is malformed.
	ErrInvalidForecast = errors.New("invalid forecast")

	// ErrInvalidParams is returned when a parameter table cannot be used.
	ErrInvalidParams = errors.New("invalid parameter table")

	// ErrRunNotFound is returned by run stores for an unknown run ID.
	ErrRunNotFound = errors.New("settlement run not found")

	// ErrDuplicateRun is returned when a run ID is saved twice.
	ErrDuplicateRun = errors.New("settlement run already archived")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InputError describes one offending input field.
type InputError struct {
	Kind   error // one of the sentinel errors above
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: %s=%s: %s", e.Kind, e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Kind
}

func decisionError(field, value, reason string) *InputError {
	return &InputError{Kind: ErrInvalidDecision, Field: field, Value: value, Reason: reason}
}

func stateError(field, value, reason string) *InputError {
	return &InputError{Kind: ErrInvalidState, Field: field, Value: value, Reason: reason}
}

func forecastError(field, value, reason string) *InputError {
	return &InputError{Kind: ErrInvalidForecast, Field: field, Value: value, Reason: reason}
}

func paramError(field, value, reason string) *InputError {
	return &InputError{Kind: ErrInvalidParams, Field: field, Value: value, Reason: reason}
}

// ValidationErrors collects every structural problem found in one call.
type ValidationErrors []*InputError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes each field error so errors.Is matches any of their kinds.
func (v ValidationErrors) Unwrap() []error {
	out := make([]error, len(v))
	for i, e := range v {
		out[i] = e
	}
	return out
}

// OrNil returns nil for an empty collection.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDecision) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidForecast)
}

// IsNotFound returns true if the error indicates a missing run.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
