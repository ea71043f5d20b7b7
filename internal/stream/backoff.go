package stream

import "time"

// Backoff decides whether and when a session retries after a network
// failure. Delay grows linearly: BaseDelay * attempt.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultBackoff matches the dashboard's reconnect budget: up to 10
// attempts, 1s base delay (so the final wait is 10s).
func DefaultBackoff() Backoff {
	return Backoff{MaxAttempts: 10, BaseDelay: time.Second}
}

// ShouldRetry reports whether another attempt is allowed after `attempt`
// retries have already been made.
func (b Backoff) ShouldRetry(attempt int) bool {
	return attempt < b.MaxAttempts
}

// DelayFor returns the wait before retry number `attempt` (1-based).
func (b Backoff) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return b.BaseDelay * time.Duration(attempt)
}
