package stream

import "fmt"

// FailureKind classifies stream failures. Only network errors are
// retryable: a server rejection (4xx/5xx) is presumed permanent, so
// retrying it would loop forever against a rejecting endpoint.
type FailureKind string

const (
	// FailureMalformedEvent is a single frame that failed to parse.
	// The frame is skipped; the connection stays open.
	FailureMalformedEvent FailureKind = "malformed_event"

	// FailureNetworkError is a transport that never opened or dropped
	// unexpectedly. Retryable under the backoff policy.
	FailureNetworkError FailureKind = "network_error"

	// FailureServerError is a transport that opened and was then rejected
	// or closed by the server with an HTTP-level failure. Not retryable.
	FailureServerError FailureKind = "server_error"

	// FailureAttemptsExhausted means the retry budget is consumed. No
	// automatic attempts happen until an explicit Reconnect.
	FailureAttemptsExhausted FailureKind = "attempts_exhausted"
)

// Retryable reports whether the session may automatically reopen the
// connection after this failure.
func (k FailureKind) Retryable() bool {
	return k == FailureNetworkError
}

// Failure pairs a classification with the underlying error.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("stream: %s", f.Kind)
	}
	return fmt.Sprintf("stream: %s: %v", f.Kind, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }
