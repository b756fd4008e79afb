package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups for records that do not exist.
var ErrNotFound = errors.New("not found")

// UnknownCompoundError reports a dose, threshold or lookup that names a
// compound id absent from the catalog.
type UnknownCompoundError struct {
	ID string
}

func (e *UnknownCompoundError) Error() string {
	return fmt.Sprintf("unknown compound %q", e.ID)
}

// InvalidParameterError reports a parameter outside its allowed range.
// Subject names the owning record (a compound id, a dose id, "threshold").
type InvalidParameterError struct {
	Subject string
	Field   string
	Value   float64
	Reason  string
}

func (e *InvalidParameterError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("invalid %s %g: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: invalid %s %g: %s", e.Subject, e.Field, e.Value, e.Reason)
}

// ConfigurationError reports malformed settings such as a sleep window.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsUnknownCompound reports whether err wraps an UnknownCompoundError.
func IsUnknownCompound(err error) bool {
	var uc *UnknownCompoundError
	return errors.As(err, &uc)
}

// IsInvalidInput reports whether err wraps an InvalidParameterError or a
// ConfigurationError.
func IsInvalidInput(err error) bool {
	var ip *InvalidParameterError
	var ce *ConfigurationError
	return errors.As(err, &ip) || errors.As(err, &ce)
}
