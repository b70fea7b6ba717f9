package dispatch

import "sync"

// progressTracker remembers the last reported progress decile per task so the
// log carries at most one line per 10% step instead of one per chunk.
type progressTracker struct {
	mu   sync.Mutex
	last map[string]uint64
}

func newProgressTracker() *progressTracker {
	return &progressTracker{last: map[string]uint64{}}
}

// crossed reports whether pct enters a decile not yet reported for taskID,
// recording it when it does. The first report for a task always crosses.
func (t *progressTracker) crossed(taskID string, pct uint64) bool {
	decile := pct / 10
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.last[taskID]; ok && prev == decile {
		return false
	}
	t.last[taskID] = decile
	return true
}

// forget drops a task's state once the transfer reaches a terminal event.
func (t *progressTracker) forget(taskID string) {
	t.mu.Lock()
	delete(t.last, taskID)
	t.mu.Unlock()
}

func (t *progressTracker) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}
