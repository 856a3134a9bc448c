// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer. Each error carries a Kind that handlers map to a status code
// and a message safe to show to the user.
package apperr

import "errors"

// Kind classifies an application error.
type Kind string

const (
	// KindUnsupportedFormat rejects a document upload locally, before any
	// call to the external analyzer.
	KindUnsupportedFormat Kind = "unsupported_format"

	// KindServiceError covers an unreachable external capability or an
	// unparseable response from it.
	KindServiceError Kind = "service_error"

	// KindLowConfidence means the analyzer responded but the judgement was
	// invalid or below the acceptance threshold.
	KindLowConfidence Kind = "low_confidence"

	// KindNotAuthorized rejects an operation the user's current trust state
	// does not allow, such as a non-driver posting a ride.
	KindNotAuthorized Kind = "not_authorized"

	// KindInvalidInput rejects out-of-range or malformed input before any
	// state change.
	KindInvalidInput Kind = "invalid_input"

	// KindNotFound means the referenced record does not exist.
	KindNotFound Kind = "not_found"

	// KindTooManyAttempts means the per-stage retry cap or an upload rate
	// limit has been reached.
	KindTooManyAttempts Kind = "too_many_attempts"

	// KindConflict rejects an operation while another one for the same user
	// is still in flight.
	KindConflict Kind = "conflict"
)

// Error is an application error with a user-presentable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an application error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an application error of the given kind wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, or an empty Kind if err is not an
// application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
