package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the type of error
type Kind int

const (
	ErrInternal Kind = iota
	ErrNotFound
	ErrValidation
	ErrConflict
	ErrInvalidInput
	// ErrNetwork means the request never completed
	ErrNetwork
	// ErrApplication means the voting service answered with a failure
	ErrApplication
)

// String returns a short name for the kind, used in log records
func (k Kind) String() string {
	switch k {
	case ErrNotFound:
		return "not_found"
	case ErrValidation:
		return "validation"
	case ErrConflict:
		return "conflict"
	case ErrInvalidInput:
		return "invalid_input"
	case ErrNetwork:
		return "network"
	case ErrApplication:
		return "application"
	default:
		return "internal"
	}
}

// Error is an application-level error with a kind for classification.
// Message is always safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Status  int   // HTTP status for ErrApplication, 0 otherwise
	Err     error // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constructor functions for common error types

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: ErrInvalidInput, Message: msg}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Err: err}
}

// Network reports a request that never reached a response
func Network(msg string, err error) *Error {
	return &Error{Kind: ErrNetwork, Message: msg, Err: err}
}

// Application reports a response that carried a failure.
// status is the HTTP status code, or 200 for a success=false body.
func Application(status int, msg string) *Error {
	return &Error{Kind: ErrApplication, Message: msg, Status: status}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or ErrInternal
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrInternal
}

// UserMessage returns the message to show for err.
// Errors without a classified message fall back to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if stderrors.As(err, &appErr) && appErr.Message != "" && appErr.Kind != ErrInternal {
		return appErr.Message
	}
	type userFacing interface{ UserMessage() string }
	var uf userFacing
	if stderrors.As(err, &uf) {
		return uf.UserMessage()
	}
	return fallback
}
