package stream

import "sync"

// NoSequence is the sentinel for "no events observed yet". A session
// resuming from NoSequence omits the resume parameter entirely.
const NoSequence int64 = -1

// SequenceTracker is the single source of truth for where a session
// resumes from. It only ever advances: recording a sequence at or below
// the current high-water mark is a no-op.
type SequenceTracker struct {
	mu   sync.Mutex
	last int64
}

func NewSequenceTracker() *SequenceTracker {
	return &SequenceTracker{last: NoSequence}
}

// Record merges seq into the high-water mark. It returns true when seq
// advanced the mark, false for a duplicate or out-of-order sequence.
func (t *SequenceTracker) Record(seq int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seq <= t.last {
		return false
	}
	t.last = seq
	return true
}

// Last returns the highest sequence recorded, or NoSequence.
func (t *SequenceTracker) Last() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Reset clears the tracker back to NoSequence. Used when a session is
// rebound to a different job.
func (t *SequenceTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = NoSequence
}
