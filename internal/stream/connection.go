package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

// ConnectionCallbacks receive everything a live connection produces. All
// callbacks fire from the connection's read goroutine, one at a time.
type ConnectionCallbacks struct {
	// OnOpen fires once, after the subscription is accepted by the server.
	OnOpen func()
	// OnEvent fires for every parsed event, terminal ones included.
	OnEvent func(domain.EventMessage)
	// OnTerminal fires after OnEvent when the event ends the job. The
	// connection closes itself immediately afterwards.
	OnTerminal func(domain.EventMessage)
	// OnFailure fires for malformed frames (connection stays open) and
	// for network/server failures (connection is finished).
	OnFailure func(Failure)
}

// Connection owns exactly one push subscription to a job's event stream.
// It is single-use: once closed or failed it is discarded and the session
// creates a fresh one.
type Connection struct {
	client   *http.Client
	endpoint string
	clientID string

	mu     sync.Mutex
	opened bool
	closed bool
	cancel context.CancelFunc
}

// NewConnection creates an unopened connection to the given subscription
// endpoint. clientID, when set, is sent as X-Client-ID on the request.
func NewConnection(client *http.Client, endpoint, clientID string) *Connection {
	if client == nil {
		client = http.DefaultClient
	}
	return &Connection{client: client, endpoint: endpoint, clientID: clientID}
}

// Open begins the subscription and returns immediately. resumeFrom is the
// last sequence already seen; pass NoSequence on a first connection to
// omit the resume parameter. Open may be called at most once.
func (c *Connection) Open(ctx context.Context, resumeFrom int64, cb ConnectionCallbacks) error {
	c.mu.Lock()
	if c.opened || c.closed {
		c.mu.Unlock()
		return errors.New("stream: connection already used")
	}
	c.opened = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	target, err := subscriptionURL(c.endpoint, resumeFrom)
	if err != nil {
		return fmt.Errorf("stream.Connection.Open: %w", err)
	}

	go c.run(ctx, target, cb)
	return nil
}

// Close releases the underlying subscription. Idempotent and safe on a
// never-opened or already-failed connection.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *Connection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Connection) run(ctx context.Context, target string, cb ConnectionCallbacks) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.fail(cb, Failure{Kind: FailureNetworkError, Err: err})
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport never reached an open state: retryable.
		c.fail(cb, Failure{Kind: FailureNetworkError, Err: err})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The server answered and rejected us (bad job id, auth failure,
		// crash page). Presumed permanent.
		c.fail(cb, Failure{
			Kind: FailureServerError,
			Err:  fmt.Errorf("subscription rejected: HTTP %d", resp.StatusCode),
		})
		return
	}

	if cb.OnOpen != nil {
		cb.OnOpen()
	}

	if err := c.readFrames(resp.Body, cb); err != nil {
		c.fail(cb, Failure{Kind: FailureNetworkError, Err: err})
	}
}

// readFrames consumes text/event-stream framing: data lines accumulate
// until a blank line dispatches the event. Returns nil only when a
// terminal event closed the stream cleanly.
func (c *Connection) readFrames(body io.Reader, cb ConnectionCallbacks) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []string
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if len(data) == 0 {
				continue
			}
			frame := strings.Join(data, "\n")
			data = data[:0]
			if done := c.dispatch(frame, cb); done {
				c.Close()
				return nil
			}
			continue
		}

		if value, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(value, " "))
		}
		// event:, id:, retry: and comment lines are ignored; the payload
		// carries its own kind and sequence.
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	// Stream ended without a terminal event: the server (or something in
	// between) dropped us mid-job.
	return io.ErrUnexpectedEOF
}

// dispatch parses one frame and invokes callbacks. Returns true when the
// event was terminal.
func (c *Connection) dispatch(frame string, cb ConnectionCallbacks) bool {
	var ev domain.EventMessage
	if err := json.Unmarshal([]byte(frame), &ev); err != nil {
		// A single bad frame is skipped; the stream continues.
		c.fail(cb, Failure{Kind: FailureMalformedEvent, Err: err})
		return false
	}

	if cb.OnEvent != nil {
		cb.OnEvent(ev)
	}

	if ev.Kind.IsTerminal() {
		if cb.OnTerminal != nil {
			cb.OnTerminal(ev)
		}
		return true
	}
	return false
}

// fail reports a failure unless the connection was deliberately closed,
// in which case whatever the transport surfaced is just teardown noise.
func (c *Connection) fail(cb ConnectionCallbacks, f Failure) {
	if f.Kind != FailureMalformedEvent && c.isClosed() {
		return
	}
	if cb.OnFailure != nil {
		cb.OnFailure(f)
	}
}

// subscriptionURL appends the resume parameter when there is a resume
// point. A first connection (resumeFrom == NoSequence) omits it.
func subscriptionURL(endpoint string, resumeFrom int64) (string, error) {
	if resumeFrom == NoSequence {
		return endpoint, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("since_sequence", strconv.FormatInt(resumeFrom, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
