// Package domainerrors carries coded errors from services to transport.
//
// Services return *Error values (or types that expose a Code) so handlers can
// translate outcomes into responses without string matching. Infrastructure
// facts (not found, conflict) are reported by stores with pkg/platform/sentinel
// and translated into codes at the service boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error classification.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"

	// Identity code outcomes.
	CodeMalformedCode        Code = "malformed_code"
	CodeUnknownSchemeVersion Code = "unknown_scheme_version"
	CodeInvalidCode          Code = "invalid_code"

	// Levy outcomes. These are business results, not system failures.
	CodeDuplicatePayment       Code = "duplicate_payment"
	CodeAlreadyPaid            Code = "already_paid"
	CodePendingConfirmation    Code = "pending_confirmation"
	CodeInvalidStateTransition Code = "invalid_state_transition"
)

// Coded is implemented by every error type that participates in the taxonomy.
type Coded interface {
	error
	ErrorCode() Code
}

// Error is the generic coded error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode implements Coded.
func (e *Error) ErrorCode() Code { return e.Code }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the outermost code in err's chain, or CodeInternal when the
// chain carries none.
func CodeOf(err error) Code {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return CodeInternal
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if coded, ok := err.(Coded); ok && coded.ErrorCode() == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
