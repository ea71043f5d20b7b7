// Package sse serves the per-job progress stream over text/event-stream.
// Subscribers attach with an optional since_sequence resume point: the
// handler subscribes to the live channel first, replays the durable log,
// then relays live events, dropping anything already replayed.
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

const heartbeatInterval = 25 * time.Second

// Subscriber delivers live event payloads for a channel until the
// returned cleanup func runs.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// ChannelFunc maps a job ID to its live channel name.
type ChannelFunc func(uuid.UUID) string

type Handler struct {
	jobs    domain.AnalysisJobRepository
	events  domain.EventLogRepository
	pubsub  Subscriber
	channel ChannelFunc
}

func NewHandler(jobs domain.AnalysisJobRepository, events domain.EventLogRepository, pubsub Subscriber, channel ChannelFunc) *Handler {
	return &Handler{jobs: jobs, events: events, pubsub: pubsub, channel: channel}
}

// ServeHTTP handles GET /api/v1/jobs/{jobID}/events/stream.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	since := domain.NoSequence
	if raw := r.URL.Query().Get("since_sequence"); raw != "" {
		since, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || since < 0 {
			http.Error(w, "invalid since_sequence", http.StatusBadRequest)
			return
		}
	}

	ctx := r.Context()

	if _, err := h.jobs.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("sse: load job")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Subscribe before reading the log so nothing published between the
	// replay query and the live loop is lost. Overlap is deduplicated by
	// sequence below.
	live, cleanup, err := h.pubsub.Subscribe(ctx, h.channel(jobID))
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("sse: subscribe")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	replayed, err := h.events.ListSince(ctx, jobID, since)
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("sse: replay query")
		return
	}

	lastSent := since
	for _, ev := range replayed {
		if err := writeEvent(w, flusher, ev); err != nil {
			return
		}
		lastSent = ev.Sequence
		if ev.Kind.IsTerminal() {
			return
		}
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case payload, open := <-live:
			if !open {
				return
			}
			var ev domain.EventMessage
			if err := json.Unmarshal(payload, &ev); err != nil {
				log.Warn().Err(err).Str("job_id", jobID.String()).Msg("sse: bad live payload")
				continue
			}
			// Already covered by the replay.
			if ev.Sequence <= lastSent {
				continue
			}
			if err := writeEvent(w, flusher, &ev); err != nil {
				return
			}
			lastSent = ev.Sequence
			if ev.Kind.IsTerminal() {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev *domain.EventMessage) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
