package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is an error detected while simulating or analysing a
// circuit, as opposed to a parse or construction error.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Module is the module the error is about, if any.
	Module string

	// Press is the press count when the error was raised, if any.
	Press int

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNonTermination indicates a press did not settle.
	ErrCodeNonTermination RuntimeErrorCode = "NON_TERMINATION"

	// ErrCodeStructureViolation indicates the circuit does not have the
	// shape an analysis relies on.
	ErrCodeStructureViolation RuntimeErrorCode = "STRUCTURE_VIOLATION"

	// ErrCodePressLimit indicates an analysis ran out of presses before
	// it observed what it was waiting for.
	ErrCodePressLimit RuntimeErrorCode = "PRESS_LIMIT"
)

func (e *RuntimeError) Error() string {
	if e.Module != "" && e.Press > 0 {
		return fmt.Sprintf("%s: %s (module=%s, press=%d)", e.Code, e.Message, e.Module, e.Press)
	}
	if e.Module != "" {
		return fmt.Sprintf("%s: %s (module=%s)", e.Code, e.Message, e.Module)
	}
	if e.Press > 0 {
		return fmt.Sprintf("%s: %s (press=%d)", e.Code, e.Message, e.Press)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNonTermination reports whether err is a press that did not settle.
// Matches both RuntimeError with ErrCodeNonTermination and
// SignalsExceededError.
func IsNonTermination(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeNonTermination
	}
	var se *SignalsExceededError
	return errors.As(err, &se)
}

// IsStructureError reports whether err is a structural assumption failure.
func IsStructureError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeStructureViolation
	}
	return false
}

// IsPressLimit reports whether err is an exhausted press budget.
func IsPressLimit(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodePressLimit
	}
	return false
}

// NewStructureError creates a RuntimeError for a structural violation.
func NewStructureError(module, message string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStructureViolation,
		Message: message,
		Module:  module,
	}
}

// NewPressLimitError creates a RuntimeError for an exhausted press budget.
// pending lists what was still unobserved.
func NewPressLimitError(presses int, pending []string) *RuntimeError {
	details := map[string]string{
		"max_presses": fmt.Sprintf("%d", presses),
	}
	if len(pending) > 0 {
		details["pending"] = fmt.Sprintf("%v", pending)
	}
	return &RuntimeError{
		Code:    ErrCodePressLimit,
		Message: fmt.Sprintf("gave up after %d presses", presses),
		Press:   presses,
		Details: details,
	}
}

// ErrorCode returns the runtime error code carried by err, or "" when err
// is not a runtime error.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	var se *SignalsExceededError
	if errors.As(err, &se) {
		return se.Code()
	}
	return ""
}
