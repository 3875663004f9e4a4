package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every compile failure unwraps to exactly one of these.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrOutOfRangeValue      = errors.New("value out of range")
	ErrUnrecognizedEncoding = errors.New("unrecognized encoding")
	ErrCapacityExceeded     = errors.New("capacity exceeded")
	ErrUnresolvedReference  = errors.New("unresolved reference")
	ErrUnencodableText      = errors.New("text cannot be encoded")
	ErrIOFailure            = errors.New("io failure")
)

// FieldError describes a failure tied to one field of the source document.
type FieldError struct {
	Field  string // path such as "enemies[2].difficulty"
	Value  any    // offending value, nil when the field is absent
	Kind   error  // one of the Err* kinds above
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	if s, ok := e.Value.(string); ok {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Reason, s)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// NewFieldError builds a FieldError.
func NewFieldError(kind error, field string, value any, reason string) *FieldError {
	return &FieldError{Field: field, Value: value, Kind: kind, Reason: reason}
}

// Kind reports which error kind err belongs to, or nil for foreign errors.
func Kind(err error) error {
	for _, k := range []error{
		ErrMissingRequiredField,
		ErrOutOfRangeValue,
		ErrUnrecognizedEncoding,
		ErrCapacityExceeded,
		ErrUnresolvedReference,
		ErrUnencodableText,
		ErrIOFailure,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
