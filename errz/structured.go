// Package errz defines the structured errors reported while translating
// method bodies.
package errz

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrMalformed indicates invalid input, e.g. an unresolved branch target
	// or an inconsistent exception-region table.
	ErrMalformed ErrorKind = iota
	// ErrUnclaimed indicates that no parser recognized an instruction.
	ErrUnclaimed
	// ErrBudget indicates that a method exceeded its translation step budget.
	ErrBudget
	// ErrInternal indicates an unexpected translator state.
	ErrInternal
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrMalformed:
		return "malformed input"
	case ErrUnclaimed:
		return "unclaimed instruction"
	case ErrBudget:
		return "budget exceeded"
	case ErrInternal:
		return "internal error"
	default:
		return "error"
	}
}

// NoOffset marks an error that is not tied to a specific instruction.
const NoOffset = -1

// TranslationError is an error raised while translating one method body.
type TranslationError struct {
	Kind    ErrorKind
	Method  string
	Offset  int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	prefix := e.Kind.String()
	if e.Method != "" {
		prefix = fmt.Sprintf("%s: %s", e.Method, prefix)
	}
	if e.Offset == NoOffset {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return fmt.Sprintf("%s at IL_%04x: %s", prefix, e.Offset, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the error points at a defect in the translator
// rather than at bad input. Callers may keep going after non-fatal errors;
// a fatal error means some opcode family is not covered.
func (e *TranslationError) IsFatal() bool {
	switch e.Kind {
	case ErrUnclaimed, ErrInternal:
		return true
	default:
		return false
	}
}

// New creates a new TranslationError.
func New(kind ErrorKind, offset int, message string) *TranslationError {
	return &TranslationError{Kind: kind, Offset: offset, Message: message}
}

// Newf creates a new TranslationError with a formatted message.
func Newf(kind ErrorKind, offset int, format string, args ...any) *TranslationError {
	return &TranslationError{Kind: kind, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// WithCause wraps the error with a cause.
func (e *TranslationError) WithCause(cause error) *TranslationError {
	e.Cause = cause
	return e
}

// WithMethod sets the method the error belongs to.
func (e *TranslationError) WithMethod(method string) *TranslationError {
	e.Method = method
	return e
}

// KindOf returns the kind of the first TranslationError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var terr *TranslationError
	if errors.As(err, &terr) {
		return terr.Kind, true
	}
	return 0, false
}

// IsFatal reports whether err contains a fatal TranslationError.
func IsFatal(err error) bool {
	var terr *TranslationError
	if errors.As(err, &terr) {
		return terr.IsFatal()
	}
	return false
}
