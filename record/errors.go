package record

import (
	"fmt"
	"strings"
)

// ValidationError reports one rejected field during record construction or
// attribute assignment.
type ValidationError struct {
	Field string
	Value any
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Msg, e.Value)
}

// Invalid builds a field-level validation error.
func Invalid(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Value: value, Msg: fmt.Sprintf(format, args...)}
}

// ValidationErrors aggregates the per-field failures of one validation run.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// orNil collapses an empty error list to a nil error.
func (e ValidationErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// SignatureError reports an ill-formed record signature at definition time.
type SignatureError struct {
	Class string
	Msg   string
}

func (e *SignatureError) Error() string {
	if e.Class == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Msg)
}

// Signaturef builds a signature definition error.
func Signaturef(class, format string, args ...any) *SignatureError {
	return &SignatureError{Class: class, Msg: fmt.Sprintf(format, args...)}
}
