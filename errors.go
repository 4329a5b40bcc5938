package awsclient

import (
	"errors"
	"fmt"
)

// Kind classifies the single terminal failure of a dispatched call.
type Kind int

const (
	// KindInvalidURL: the endpoint cannot be parsed, or signing cannot resolve
	// a host. Detected locally; no network call is attempted.
	KindInvalidURL Kind = iota + 1
	// KindNetworkError: the transport failed to complete the exchange.
	KindNetworkError
	// KindInvalidResponse: the body is missing or undecodable as the declared
	// result type.
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid url"
	case KindNetworkError:
		return "network error"
	case KindInvalidResponse:
		return "invalid response"
	default:
		return "unknown"
	}
}

// Error is the one error type surfaced by a Client. There is no automatic
// retry and no partial success: a call yields either a decoded value or
// exactly one Error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}

// KindOf extracts the Kind from err, or 0 when err is not a client Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is a client Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
