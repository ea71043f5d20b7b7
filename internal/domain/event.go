package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NoSequence marks the absence of a resume point: ListSince called with
// NoSequence returns the log from the beginning.
const NoSequence int64 = -1

// EventKind discriminates job progress events on the wire.
type EventKind string

const (
	EventStageStarted      EventKind = "stage-started"
	EventStageProgress     EventKind = "stage-progress"
	EventStageCompleted    EventKind = "stage-completed"
	EventWorkflowCompleted EventKind = "workflow-completed"
	EventWorkflowFailed    EventKind = "workflow-failed"
	EventError             EventKind = "error"
)

// IsTerminal reports whether the kind ends the job's event stream.
// No further events are published for a job after a terminal event.
func (k EventKind) IsTerminal() bool {
	return k == EventWorkflowCompleted || k == EventWorkflowFailed
}

// EventMessage is one unit of server-pushed job progress. Sequence numbers
// are strictly increasing per job and unique within a job's stream.
type EventMessage struct {
	Kind      EventKind       `json:"kind"`
	Producer  string          `json:"producer,omitempty"` // which analysis agent emitted it
	Payload   json.RawMessage `json:"payload,omitempty"`
	Sequence  int64           `json:"sequence"`
	Note      string          `json:"note,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// EventLogRepository is the server-side append-only event log per job.
// Append assigns the next sequence number atomically and returns it, so
// concurrent producers can never collide on a sequence.
type EventLogRepository interface {
	Append(ctx context.Context, jobID uuid.UUID, ev *EventMessage) (int64, error)
	ListSince(ctx context.Context, jobID uuid.UUID, sinceSequence int64) ([]*EventMessage, error)
	LastSequence(ctx context.Context, jobID uuid.UUID) (int64, error)
}
