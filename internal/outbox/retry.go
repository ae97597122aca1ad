package outbox

import (
	"time"

	"example.com/activities/internal/events"
)

const maxRetryDelay = 5 * time.Minute

// pending is a roster event together with the number of failed deliveries so far.
type pending struct {
	event    events.RosterChanged
	attempts int
}

type retryEntry struct {
	pending
	nextAt time.Time
}

// retryQueue holds events whose delivery failed until their backoff expires.
// It is owned by the dispatcher loop and is not safe for concurrent use.
type retryQueue struct {
	maxRetries int
	baseDelay  time.Duration
	entries    []retryEntry
}

func newRetryQueue(maxRetries int, baseDelay time.Duration) *retryQueue {
	return &retryQueue{maxRetries: maxRetries, baseDelay: baseDelay}
}

// schedule queues p for another attempt. It returns false once p has
// exhausted its retries; the caller quarantines it.
func (q *retryQueue) schedule(p pending, now time.Time) bool {
	p.attempts++
	if p.attempts > q.maxRetries {
		return false
	}
	q.entries = append(q.entries, retryEntry{pending: p, nextAt: now.Add(q.backoffDelay(p.attempts))})
	retryBacklog.Set(float64(len(q.entries)))
	return true
}

// due removes and returns entries whose backoff has expired.
func (q *retryQueue) due(now time.Time) []pending {
	var out []pending
	kept := q.entries[:0]
	for _, entry := range q.entries {
		if entry.nextAt.After(now) {
			kept = append(kept, entry)
			continue
		}
		out = append(out, entry.pending)
	}
	q.entries = kept
	retryBacklog.Set(float64(len(q.entries)))
	return out
}

// all removes and returns every entry regardless of backoff.
func (q *retryQueue) all() []pending {
	out := make([]pending, 0, len(q.entries))
	for _, entry := range q.entries {
		out = append(out, entry.pending)
	}
	q.entries = nil
	retryBacklog.Set(0)
	return out
}

func (q *retryQueue) len() int {
	return len(q.entries)
}

// backoffDelay doubles the base delay per attempt, capped at maxRetryDelay.
func (q *retryQueue) backoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 20 {
		return maxRetryDelay
	}
	delay := time.Duration(1<<uint(attempt-1)) * q.baseDelay
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
