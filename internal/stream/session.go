package stream

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithHTTPClient sets the HTTP client used for subscriptions.
func WithHTTPClient(c *http.Client) SessionOption {
	return func(s *Session) { s.client = c }
}

// WithBackoff overrides the reconnect policy.
func WithBackoff(b Backoff) SessionOption {
	return func(s *Session) { s.backoff = b }
}

// WithClientID injects the opaque per-client identifier sent with every
// subscription request.
func WithClientID(id string) SessionOption {
	return func(s *Session) { s.clientID = id }
}

// WithEventObserver registers fn for every event appended to the log.
// fn must not call back into the Session.
func WithEventObserver(fn func(domain.EventMessage)) SessionOption {
	return func(s *Session) { s.onEvent = fn }
}

// WithStateObserver registers fn for every connection state change.
// fn must not call back into the Session.
func WithStateObserver(fn func(ConnectionState)) SessionOption {
	return func(s *Session) { s.onState = fn }
}

// Session is the public face of the streaming client: it orchestrates one
// Connection at a time, an append-only deduplicated event log, and the
// reconnect/backoff loop. All session state is serialized behind one
// mutex; transport callbacks and retry timers funnel through it.
type Session struct {
	baseURL  string
	client   *http.Client
	clientID string
	backoff  Backoff
	onEvent  func(domain.EventMessage)
	onState  func(ConnectionState)

	mu      sync.Mutex
	jobID   string
	state   ConnectionState
	events  []domain.EventMessage
	tracker *SequenceTracker
	conn    *Connection
	attempt int
	retry   *time.Timer
	done    bool

	// notifyMu serializes state-observer calls. It is always acquired
	// while mu is still held, so deliveries happen in mutation order.
	notifyMu sync.Mutex
}

// NewSession creates a session against the server at baseURL. The session
// starts disconnected and bound to no job.
func NewSession(baseURL string, opts ...SessionOption) *Session {
	s := &Session{
		baseURL: baseURL,
		client:  http.DefaultClient,
		backoff: DefaultBackoff(),
		state:   StateDisconnected,
		tracker: NewSequenceTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the session to jobID and opens a subscription. Binding to a
// different job resets the event log and resume point; restarting the
// same job keeps both, so the new connection resumes where the old one
// stopped. When jobDone is true (the job is already known to be complete)
// no connection is ever opened. Starting a job that is already live is a
// no-op beyond re-asserting the current state.
func (s *Session) Start(jobID string, jobDone bool) {
	s.mu.Lock()
	s.stopRetryLocked()

	if s.jobID == jobID && s.conn != nil {
		s.unlockAndNotify(s.state)
		return
	}

	if s.jobID != jobID {
		s.jobID = jobID
		s.events = nil
		s.tracker.Reset()
		s.done = false
	}
	if jobDone {
		s.done = true
	}
	s.attempt = 0

	if s.done {
		s.state = StateDisconnected
		s.unlockAndNotify(StateDisconnected)
		return
	}

	s.openLocked()
	s.unlockAndNotify(s.state)
}

// Stop closes the live connection and cancels any pending retry. The
// accumulated event log is kept so history stays inspectable.
func (s *Session) Stop() {
	s.mu.Lock()
	s.stopRetryLocked()
	conn := s.conn
	s.conn = nil
	changed := s.state != StateDisconnected
	s.state = StateDisconnected
	if changed {
		s.unlockAndNotify(StateDisconnected)
	} else {
		s.mu.Unlock()
	}

	if conn != nil {
		conn.Close()
	}
}

// Reconnect resets the retry budget and reopens the subscription without
// clearing history. It is the manual escape hatch once automatic attempts
// are exhausted or after a server rejection.
func (s *Session) Reconnect() {
	s.mu.Lock()
	s.stopRetryLocked()
	s.attempt = 0

	if s.jobID == "" || s.done {
		s.mu.Unlock()
		return
	}

	s.openLocked()
	s.unlockAndNotify(s.state)
}

// Events returns a copy of the ordered, deduplicated event log.
func (s *Session) Events() []domain.EventMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventMessage, len(s.events))
	copy(out, s.events)
	return out
}

// State returns the current connection state.
func (s *Session) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastSequence returns the highest sequence recorded, or NoSequence.
func (s *Session) LastSequence() int64 {
	return s.tracker.Last()
}

// openLocked replaces the live connection with a fresh one resuming from
// the tracker's high-water mark. Caller holds s.mu.
func (s *Session) openLocked() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	conn := NewConnection(s.client, s.endpointFor(s.jobID), s.clientID)
	s.conn = conn
	s.state = StateConnecting

	cb := ConnectionCallbacks{
		OnOpen:     func() { s.handleOpen(conn) },
		OnEvent:    func(ev domain.EventMessage) { s.handleEvent(conn, ev) },
		OnTerminal: func(domain.EventMessage) { s.handleTerminal(conn) },
		OnFailure:  func(f Failure) { s.handleFailure(conn, f) },
	}

	if err := conn.Open(context.Background(), s.tracker.Last(), cb); err != nil {
		log.Error().Err(err).Str("job_id", s.jobID).Msg("stream: open subscription")
		s.conn = nil
		s.state = StateError
	}
}

func (s *Session) handleOpen(conn *Connection) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.attempt = 0
	s.state = StateConnected
	s.unlockAndNotify(StateConnected)
}

func (s *Session) handleEvent(conn *Connection, ev domain.EventMessage) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	// Replayed or out-of-order events are dropped: the log never holds
	// two entries with the same sequence, and never moves backwards.
	if !s.tracker.Record(ev.Sequence) {
		s.mu.Unlock()
		return
	}
	s.events = append(s.events, ev)
	onEvent := s.onEvent
	s.mu.Unlock()

	if onEvent != nil {
		onEvent(ev)
	}
}

func (s *Session) handleTerminal(conn *Connection) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.conn = nil
	s.state = StateDisconnected
	s.unlockAndNotify(StateDisconnected)
}

func (s *Session) handleFailure(conn *Connection, f Failure) {
	if f.Kind == FailureMalformedEvent {
		s.mu.Lock()
		jobID := s.jobID
		s.mu.Unlock()
		// Skipped frame; no state change, stream is still live.
		log.Warn().Err(f.Err).Str("job_id", jobID).Msg("stream: skipping malformed frame")
		return
	}

	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	conn.Close()
	s.conn = nil

	if f.Kind.Retryable() && s.backoff.ShouldRetry(s.attempt) {
		s.attempt++
		delay := s.backoff.DelayFor(s.attempt)
		s.state = StateError
		s.retry = time.AfterFunc(delay, s.retryFire)
		attempt := s.attempt
		jobID := s.jobID
		s.unlockAndNotify(StateError)

		log.Warn().Err(f.Err).Int("attempt", attempt).Dur("retry_in", delay).Str("job_id", jobID).Msg("stream: connection lost, retrying")
		return
	}

	kind := f.Kind
	if kind.Retryable() {
		kind = FailureAttemptsExhausted
	}
	s.state = StateError
	jobID := s.jobID
	s.unlockAndNotify(StateError)

	log.Error().Err(f.Err).Str("failure", string(kind)).Str("job_id", jobID).Msg("stream: giving up until manual reconnect")
}

func (s *Session) retryFire() {
	s.mu.Lock()
	s.retry = nil
	if s.done || s.conn != nil || s.state != StateError || s.jobID == "" {
		s.mu.Unlock()
		return
	}
	s.openLocked()
	s.unlockAndNotify(s.state)
}

func (s *Session) stopRetryLocked() {
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
}

// unlockAndNotify releases s.mu and delivers st to the state observer.
// notifyMu is taken before s.mu drops, so when two transitions race the
// observer sees them in the order they were applied. Callers hold s.mu.
func (s *Session) unlockAndNotify(st ConnectionState) {
	s.notifyMu.Lock()
	s.mu.Unlock()
	if s.onState != nil {
		s.onState(st)
	}
	s.notifyMu.Unlock()
}

func (s *Session) endpointFor(jobID string) string {
	return strings.TrimSuffix(s.baseURL, "/") + "/api/v1/jobs/" + url.PathEscape(jobID) + "/events/stream"
}
