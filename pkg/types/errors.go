package types

import "fmt"

// DataError indicates missing or unusable input data (empty history, a
// training target column absent from every record). It is reported at the
// boundary where the bad input is detected and is never retried.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error: %s", e.Reason)
}

// NewDataError returns a DataError with a formatted reason.
func NewDataError(format string, args ...any) *DataError {
	return &DataError{Reason: fmt.Sprintf(format, args...)}
}

// ConfigError indicates an invalid configuration value (negative horizon,
// nonsensical thresholds). Like DataError it is not retryable.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Reason)
	}
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// NewConfigError returns a ConfigError for the given field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvariantViolation indicates an impossible internal state reached the
// decision stage (e.g. a negative total load that upstream clamping should
// have prevented). It is fatal to the forecast run and must never be
// suppressed into a default value.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Reason)
}

// NewInvariantViolation returns an InvariantViolation with a formatted
// reason.
func NewInvariantViolation(format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Reason: fmt.Sprintf(format, args...)}
}
