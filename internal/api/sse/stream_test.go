package sse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

type mockJobRepo struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*domain.AnalysisJob, error)
}

func (m *mockJobRepo) Create(context.Context, *domain.AnalysisJob) error { return nil }
func (m *mockJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisJob, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockJobRepo) List(context.Context, int, int) ([]*domain.AnalysisJob, error) {
	return nil, nil
}
func (m *mockJobRepo) ListBySubject(context.Context, uuid.UUID) ([]*domain.AnalysisJob, error) {
	return nil, nil
}
func (m *mockJobRepo) UpdateStatus(context.Context, uuid.UUID, domain.JobStatus) error { return nil }
func (m *mockJobRepo) SetCompleted(context.Context, uuid.UUID, string) error           { return nil }

type mockEventLog struct {
	listSinceFn func(ctx context.Context, jobID uuid.UUID, since int64) ([]*domain.EventMessage, error)
}

func (m *mockEventLog) Append(context.Context, uuid.UUID, *domain.EventMessage) (int64, error) {
	return 0, nil
}
func (m *mockEventLog) ListSince(ctx context.Context, jobID uuid.UUID, since int64) ([]*domain.EventMessage, error) {
	return m.listSinceFn(ctx, jobID, since)
}
func (m *mockEventLog) LastSequence(context.Context, uuid.UUID) (int64, error) {
	return domain.NoSequence, nil
}

type mockSubscriber struct {
	ch       chan []byte
	cleaned  bool
	channels []string
}

func (m *mockSubscriber) Subscribe(_ context.Context, channel string) (<-chan []byte, func(), error) {
	m.channels = append(m.channels, channel)
	return m.ch, func() { m.cleaned = true }, nil
}

func knownJob(id uuid.UUID) *mockJobRepo {
	return &mockJobRepo{
		getByIDFn: func(_ context.Context, got uuid.UUID) (*domain.AnalysisJob, error) {
			if got != id {
				return nil, domain.ErrNotFound
			}
			return &domain.AnalysisJob{ID: id, Status: domain.JobStatusRunning}, nil
		},
	}
}

func fixedLog(events ...*domain.EventMessage) *mockEventLog {
	return &mockEventLog{
		listSinceFn: func(_ context.Context, _ uuid.UUID, since int64) ([]*domain.EventMessage, error) {
			var out []*domain.EventMessage
			for _, ev := range events {
				if ev.Sequence > since {
					out = append(out, ev)
				}
			}
			return out, nil
		},
	}
}

func event(kind domain.EventKind, seq int64) *domain.EventMessage {
	return &domain.EventMessage{Kind: kind, Sequence: seq, Timestamp: time.Now().UTC()}
}

func marshal(t *testing.T, ev *domain.EventMessage) []byte {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return payload
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Get("/api/v1/jobs/{jobID}/events/stream", h.ServeHTTP)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// parseFrames extracts the JSON payload of every data frame in the body.
func parseFrames(t *testing.T, body string) []domain.EventMessage {
	t.Helper()
	var out []domain.EventMessage
	for _, line := range strings.Split(body, "\n") {
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev domain.EventMessage
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		out = append(out, ev)
	}
	return out
}

func sequences(events []domain.EventMessage) []int64 {
	var out []int64
	for _, ev := range events {
		out = append(out, ev.Sequence)
	}
	return out
}

func TestStreamReplaysLogUntilTerminal(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	sub := &mockSubscriber{ch: make(chan []byte)}
	h := NewHandler(knownJob(jobID), fixedLog(
		event(domain.EventStageStarted, 0),
		event(domain.EventStageCompleted, 1),
		event(domain.EventWorkflowCompleted, 2),
	), sub, func(id uuid.UUID) string { return "job:" + id.String() })

	rec := serve(t, h, "/api/v1/jobs/"+jobID.String()+"/events/stream")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseFrames(t, rec.Body.String())
	assert.Equal(t, []int64{0, 1, 2}, sequences(events))
	assert.Equal(t, domain.EventWorkflowCompleted, events[len(events)-1].Kind)

	assert.True(t, sub.cleaned)
	require.Len(t, sub.channels, 1)
	assert.Equal(t, "job:"+jobID.String(), sub.channels[0])
}

func TestStreamHonorsResumePoint(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	sub := &mockSubscriber{ch: make(chan []byte)}
	h := NewHandler(knownJob(jobID), fixedLog(
		event(domain.EventStageStarted, 0),
		event(domain.EventStageCompleted, 1),
		event(domain.EventWorkflowCompleted, 2),
	), sub, func(id uuid.UUID) string { return id.String() })

	rec := serve(t, h, "/api/v1/jobs/"+jobID.String()+"/events/stream?since_sequence=1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{2}, sequences(parseFrames(t, rec.Body.String())))
}

func TestStreamRelaysLiveAndSkipsReplayedSequences(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	// The live channel redelivers sequence 1, which the replay already
	// covered, then finishes the job.
	sub := &mockSubscriber{ch: make(chan []byte, 3)}
	sub.ch <- marshal(t, event(domain.EventStageCompleted, 1))
	sub.ch <- marshal(t, event(domain.EventStageCompleted, 2))
	sub.ch <- marshal(t, event(domain.EventWorkflowCompleted, 3))

	h := NewHandler(knownJob(jobID), fixedLog(
		event(domain.EventStageStarted, 0),
		event(domain.EventStageCompleted, 1),
	), sub, func(id uuid.UUID) string { return id.String() })

	rec := serve(t, h, "/api/v1/jobs/"+jobID.String()+"/events/stream")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{0, 1, 2, 3}, sequences(parseFrames(t, rec.Body.String())))
}

func TestStreamStopsWhenLiveChannelCloses(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	sub := &mockSubscriber{ch: make(chan []byte)}
	close(sub.ch)

	h := NewHandler(knownJob(jobID), fixedLog(
		event(domain.EventStageStarted, 0),
	), sub, func(id uuid.UUID) string { return id.String() })

	rec := serve(t, h, "/api/v1/jobs/"+jobID.String()+"/events/stream")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{0}, sequences(parseFrames(t, rec.Body.String())))
}

func TestStreamRejectsUnknownJob(t *testing.T) {
	t.Parallel()

	sub := &mockSubscriber{ch: make(chan []byte)}
	h := NewHandler(knownJob(uuid.New()), fixedLog(), sub, func(id uuid.UUID) string { return id.String() })

	rec := serve(t, h, "/api/v1/jobs/"+uuid.NewString()+"/events/stream")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, sub.channels)
}

func TestStreamRejectsBadInput(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	sub := &mockSubscriber{ch: make(chan []byte)}
	h := NewHandler(knownJob(jobID), fixedLog(), sub, func(id uuid.UUID) string { return id.String() })

	t.Run("malformed job id", func(t *testing.T) {
		rec := serve(t, h, "/api/v1/jobs/not-a-uuid/events/stream")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-numeric since_sequence", func(t *testing.T) {
		rec := serve(t, h, "/api/v1/jobs/"+jobID.String()+"/events/stream?since_sequence=abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative since_sequence", func(t *testing.T) {
		rec := serve(t, h, "/api/v1/jobs/"+jobID.String()+"/events/stream?since_sequence=-3")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
