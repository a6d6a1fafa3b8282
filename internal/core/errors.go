// Package core holds the error taxonomy shared by the structural and
// semantic layers.
package core

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. Callers branch on the kind, never on the message.
type Kind string

const (
	KindParse             Kind = "parse"
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindTransportTimeout  Kind = "transport_timeout"
	KindTransportFailure  Kind = "transport_failure"
	KindConfig            Kind = "config"
	KindTunnelSetup       Kind = "tunnel_setup"
	KindRemoteUnreachable Kind = "remote_unreachable"
	KindInvalidResponse   Kind = "invalid_response"
)

// Error is a classified failure with an optional underlying cause.
type Error struct {
	Kind    Kind
	Op      string // Operation that failed, e.g. "adb shell" or "parse bounds"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind with no message,
// which lets the package-level sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Op == ""
}

// Retryable reports whether the failure is transient. Only capture-style
// failures qualify; configuration and tunnel problems never heal on retry.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindParse, KindTransportFailure, KindTransportTimeout:
		return true
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrParse             = &Error{Kind: KindParse}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrTransportTimeout  = &Error{Kind: KindTransportTimeout}
	ErrTransportFailure  = &Error{Kind: KindTransportFailure}
	ErrConfig            = &Error{Kind: KindConfig}
	ErrTunnelSetup       = &Error{Kind: KindTunnelSetup}
	ErrRemoteUnreachable = &Error{Kind: KindRemoteUnreachable}
	ErrInvalidResponse   = &Error{Kind: KindInvalidResponse}
)

// New creates an Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether err is a retryable *Error.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}
