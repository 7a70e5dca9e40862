// Package apierr is the ledger's structured error taxonomy.
//
// Every boundary response is the envelope {code, message, details?}. Code
// is a stable identifier meant for programmatic branching; Message is for
// humans and may evolve. Callers should use errors.As to recover an *Error
// and branch on Code, never on the message string.
package apierr

import "errors"

// Code is a stable category for programmatic error handling.
type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeInvalidRealm    Code = "INVALID_REALM"
	CodeInvalidResolver Code = "INVALID_RESOLVER"
	CodeInvalidEvidence Code = "INVALID_EVIDENCE"
	CodeInvalidParent   Code = "INVALID_PARENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeAlreadyRevoked  Code = "ALREADY_REVOKED"
	CodeResolverNotFound Code = "RESOLVER_NOT_FOUND"
	CodeResolverTimeout Code = "RESOLVER_TIMEOUT"
	CodeChainIntegrity  Code = "CHAIN_INTEGRITY"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// HTTPStatus returns the status code §6 maps each error code to. Unknown
// codes fall back to 500, matching "unhandled conditions must still yield
// a 500 with a generic message".
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeInvalidRealm, CodeInvalidResolver, CodeInvalidEvidence, CodeInvalidParent:
		return 400
	case CodeNotFound, CodeResolverNotFound:
		return 404
	case CodeAlreadyExists, CodeAlreadyRevoked:
		return 409
	default:
		return 500
	}
}

// FieldError is one entry of a per-field validation failure list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the library's structured error type.
type Error struct {
	Code    Code
	Message string
	Details any
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New constructs an *Error with no wrapped cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf is New with Details attached.
func Newf(code Code, message string, details any) error {
	return &Error{Code: code, Message: message, Details: details}
}

// Wrap attaches a stable code/message to an underlying cause, preserving
// it for errors.Unwrap/errors.Is while keeping the boundary response
// generic.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Is reports whether err is (or wraps) an *Error with the given Code.
func Is(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// CodeOf returns the Code of a structured error, or "" if err is not one.
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}

// Internal builds a generic INTERNAL_ERROR that does not leak cause
// details to the caller; the cause is still available via errors.Unwrap
// for server-side logging.
func Internal(cause error) error {
	return &Error{Code: CodeInternal, Message: "internal error", Cause: cause}
}
