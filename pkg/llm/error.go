package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies gateway failures coarsely enough for callers to pick
// an HTTP status or decide whether retrying could ever help.
type ErrorKind int

const (
	// KindUnreachable means the backend could not be reached at all
	// (connection refused, DNS failure, backend-side 5xx).
	KindUnreachable ErrorKind = iota

	// KindTimedOut means the call exceeded its configured deadline.
	KindTimedOut

	// KindMalformedResponse means the backend replied but the body was not
	// parseable or lacked the expected response field.
	KindMalformedResponse

	// KindUnsupported means the requested model is not loaded or available
	// on the backend.
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindTimedOut:
		return "timed out"
	case KindMalformedResponse:
		return "malformed response"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is the typed failure every Generator returns.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inference %s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("inference %s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from err if it is (or wraps) a gateway Error.
func KindOf(err error) (ErrorKind, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a gateway Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
