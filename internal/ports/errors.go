package ports

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind discriminates the four failure classes a Sidecar operation
// can produce. There is deliberately no error hierarchy: callers check
// the kind (or use the Is* helpers) instead of dispatching on types.
type ErrorKind int

const (
	// KindInvalidArgument means the caller supplied a required empty or
	// nil field. Raised before any network activity; never retried.
	KindInvalidArgument ErrorKind = iota

	// KindSidecarNotPresent means the transport was refused at the
	// connection level: the sidecar process is not running or not
	// listening on the resolved port. Callers may treat this as
	// "feature unavailable" rather than a hard failure.
	KindSidecarNotPresent

	// KindSidecarError covers every other abnormal outcome: a non-2xx
	// sidecar response (status/code/message taken from its error
	// envelope where present) or a transport fault other than
	// connection refusal.
	KindSidecarError

	// KindCancelled means the caller's context was done while the call
	// was outstanding. context.Canceled / context.DeadlineExceeded
	// remain reachable through Unwrap.
	KindCancelled
)

// String returns a short token for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindSidecarNotPresent:
		return "sidecar_not_present"
	case KindSidecarError:
		return "sidecar_error"
	case KindCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Machine error codes carried in Status.ErrorCode. Codes originating in
// the sidecar's own error envelope pass through verbatim; these are the
// ones this client fills in itself.
const (
	CodeSidecarDoesNotExist = "ERR_SIDECAR_DOES_NOT_EXIST"
	CodeRequestFailed       = "ERR_REQUEST_FAILED"
	CodeDoesNotExist        = "ERR_DOES_NOT_EXIST"
	CodeUnknown             = "ERR_UNKNOWN"
	CodeInvalidArgument     = "ERR_INVALID_ARGUMENT"
	CodeCancelled           = "ERR_CANCELLED"
)

// Status is the one error shape surfaced by every Sidecar operation.
//
// Invariants:
//   - StatusCode and ErrorCode are always populated for sidecar-facing
//     kinds (defaults are filled where the sidecar supplied nothing).
//   - A Status is never mutated after construction.
type Status struct {
	Kind       ErrorKind
	StatusCode int
	ErrorCode  string
	Message    string
	Cause      error
}

func (s *Status) Error() string {
	if s.Cause != nil {
		return fmt.Sprintf("%s (%d %s): %s: %v", s.Kind, s.StatusCode, s.ErrorCode, s.Message, s.Cause)
	}
	return fmt.Sprintf("%s (%d %s): %s", s.Kind, s.StatusCode, s.ErrorCode, s.Message)
}

// Unwrap exposes the lower-level cause, keeping errors.Is(err,
// context.Canceled) and friends working through a Status.
func (s *Status) Unwrap() error { return s.Cause }

// InvalidArgument reports a failed local precondition check. No network
// call has been made when this is returned.
func InvalidArgument(msg string) *Status {
	return &Status{
		Kind:       KindInvalidArgument,
		StatusCode: http.StatusBadRequest,
		ErrorCode:  CodeInvalidArgument,
		Message:    msg,
	}
}

// SidecarNotPresent wraps a connection-refused transport fault.
func SidecarNotPresent(cause error) *Status {
	return &Status{
		Kind:       KindSidecarNotPresent,
		StatusCode: http.StatusServiceUnavailable,
		ErrorCode:  CodeSidecarDoesNotExist,
		Message:    "sidecar is not running or not listening on the resolved address; start the sidecar process and retry",
		Cause:      cause,
	}
}

// RequestFailed wraps any transport fault other than connection refusal
// (DNS, timeout, TLS, generic socket errors).
func RequestFailed(cause error) *Status {
	return &Status{
		Kind:       KindSidecarError,
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  CodeRequestFailed,
		Message:    cause.Error(),
		Cause:      cause,
	}
}

// Cancelled wraps the caller's context error.
func Cancelled(cause error) *Status {
	return &Status{
		Kind:       KindCancelled,
		StatusCode: http.StatusRequestTimeout,
		ErrorCode:  CodeCancelled,
		Message:    "operation cancelled by caller",
		Cause:      cause,
	}
}

// IsInvalidArgument reports whether err is a Status of kind
// KindInvalidArgument.
func IsInvalidArgument(err error) bool { return kindOf(err) == KindInvalidArgument }

// IsSidecarNotPresent reports whether err means the sidecar process is
// unreachable at the connection level.
func IsSidecarNotPresent(err error) bool { return kindOf(err) == KindSidecarNotPresent }

// IsCancelled reports whether err is a cancellation outcome.
func IsCancelled(err error) bool { return kindOf(err) == KindCancelled }

func kindOf(err error) ErrorKind {
	if s, ok := AsStatus(err); ok {
		return s.Kind
	}
	return ErrorKind(-1)
}

// AsStatus extracts the Status from an error chain, if any.
func AsStatus(err error) (*Status, bool) {
	var s *Status
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}

// Compile-time check that Status implements error.
var _ error = (*Status)(nil)
