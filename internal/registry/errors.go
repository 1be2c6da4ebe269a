package registry

import (
	"errors"
	"fmt"
	"maps"
)

// Error codes produced by the registry itself. Capabilities add their own.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeInternal         = "INTERNAL_ERROR"
	CodeTimeout          = "TIMEOUT"
	CodeCanceled         = "CANCELED"
)

// CodedError is an application error with a stable machine-readable code.
// Handlers return it to fail an invocation with a specific code.
type CodedError struct {
	Code      string
	Message   string
	Field     string // offending parameter, for INVALID_PARAMETER
	Retryable bool
	Details   map[string]any
	Cause     error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WithRetry returns a copy of e that tells the caller to retry.
func (e *CodedError) WithRetry() *CodedError {
	c := *e
	c.Retryable = true
	return &c
}

// WithDetails returns a copy of e carrying extra structured details.
func (e *CodedError) WithDetails(details map[string]any) *CodedError {
	c := *e
	c.Details = maps.Clone(details)
	return &c
}

// WithCause returns a copy of e wrapping cause.
func (e *CodedError) WithCause(cause error) *CodedError {
	c := *e
	c.Cause = cause
	return &c
}

// NewError creates a coded error.
func NewError(code, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// Errorf creates a coded error with a formatted message.
func Errorf(code, format string, args ...any) *CodedError {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound creates a not found error for a (kind, name) lookup.
func ErrNotFound(kind Kind, name string) *CodedError {
	return &CodedError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, name),
	}
}

// ErrInvalidParameter creates an invalid parameter error naming field.
func ErrInvalidParameter(field, message string) *CodedError {
	return &CodedError{
		Code:    CodeInvalidParameter,
		Message: fmt.Sprintf("invalid parameter %q: %s", field, message),
		Field:   field,
	}
}

// AsCodedError extracts a CodedError from err's chain.
func AsCodedError(err error) (*CodedError, bool) {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded, true
	}
	return nil, false
}

// panicError carries a recovered panic value. It is never a CodedError, so
// it surfaces as INTERNAL_ERROR.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
