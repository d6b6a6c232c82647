package match

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeUsage    ErrorType = "UsageError"
	TypeCoercion ErrorType = "CoercionError"
)

// Error is the interface for all matching-related errors.
type Error interface {
	error
	Type() ErrorType
}

// MatchError reports that a pattern or builder was constructed or used
// incorrectly. It is never returned for a value that merely fails to match;
// that case is always the NoMatch sentinel.
type MatchError struct {
	Msg string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("[%s] %s", TypeUsage, e.Msg)
}

func (e *MatchError) Type() ErrorType {
	return TypeUsage
}

// Usagef creates a new MatchError with a formatted message.
func Usagef(format string, args ...any) *MatchError {
	return &MatchError{Msg: fmt.Sprintf(format, args...)}
}

// CoercionError signals that a Coercible type cannot convert the given
// value. CoercedTo and GenericCoercedTo translate it into NoMatch; any other
// error kind raised by a coercion is treated as a defect and propagates.
type CoercionError struct {
	Msg   string
	Value any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("[%s] %s", TypeCoercion, e.Msg)
}

func (e *CoercionError) Type() ErrorType {
	return TypeCoercion
}

// Coercionf creates a new CoercionError with a formatted message.
func Coercionf(value any, format string, args ...any) *CoercionError {
	return &CoercionError{Msg: fmt.Sprintf(format, args...), Value: value}
}

// IsCoercionError reports whether err is (or wraps) a CoercionError.
func IsCoercionError(err error) bool {
	var ce *CoercionError
	return errors.As(err, &ce)
}
