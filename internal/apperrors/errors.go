package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an AppError for callers and transports.
type Code string

const (
	CodeUnknown             Code = "UNKNOWN"
	CodeNotFound            Code = "NOT_FOUND"
	CodeExpired             Code = "EXPIRED"
	CodeWriteFailed         Code = "WRITE_FAILED"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodePermissionDenied    Code = "PERMISSION_DENIED"
	CodeInternal            Code = "INTERNAL"
)

type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code and message,
// so a sentinel still matches after WithCause attaches a cause to it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// WithCause returns a copy of the sentinel carrying cause.
func WithCause(sentinel error, cause error) error {
	var ae *AppError
	if !errors.As(sentinel, &ae) {
		return fmt.Errorf("%w: %w", sentinel, cause)
	}
	return &AppError{Code: ae.Code, Message: ae.Message, Cause: cause}
}

func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

func InvalidArg(msg string) error {
	return New(CodeInvalidArgument, msg)
}

func Forbidden(msg string) error {
	return New(CodePermissionDenied, msg)
}

func Unauthorized(msg string) error {
	return New(CodeUnauthenticated, msg)
}

// StoreError reports a rejected insert or update.
func StoreError(msg string, cause error) error {
	return Wrap(CodeWriteFailed, msg, cause)
}

// Upstream reports a network failure talking to the catalog or the store.
func Upstream(msg string, cause error) error {
	return Wrap(CodeUpstreamUnavailable, msg, cause)
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// MessageOf returns the user-facing message of the first AppError in err's chain.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}
