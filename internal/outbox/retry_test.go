package outbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryQueueBackoff(t *testing.T) {
	q := newRetryQueue(5, time.Second)

	assert.Equal(t, time.Second, q.backoffDelay(1))
	assert.Equal(t, 2*time.Second, q.backoffDelay(2))
	assert.Equal(t, 8*time.Second, q.backoffDelay(4))
	assert.Equal(t, maxRetryDelay, q.backoffDelay(12))
	assert.Equal(t, maxRetryDelay, q.backoffDelay(64))
}

func TestRetryQueueDue(t *testing.T) {
	now := time.Date(2025, time.September, 1, 15, 30, 0, 0, time.UTC)
	q := newRetryQueue(3, time.Second)

	require.True(t, q.schedule(pending{event: rosterEvent("e1", "Chess Club")}, now))
	require.True(t, q.schedule(pending{event: rosterEvent("e2", "Chess Club"), attempts: 2}, now))
	require.Equal(t, 2, q.len())

	assert.Empty(t, q.due(now))

	due := q.due(now.Add(time.Second))
	require.Len(t, due, 1)
	assert.Equal(t, "e1", due[0].event.EventID)
	assert.Equal(t, 1, due[0].attempts)
	assert.Equal(t, 1, q.len())

	rest := q.all()
	require.Len(t, rest, 1)
	assert.Equal(t, 3, rest[0].attempts)
	assert.Zero(t, q.len())
}

func TestRetryQueueExhausted(t *testing.T) {
	q := newRetryQueue(1, time.Second)
	now := time.Now()

	assert.True(t, q.schedule(pending{event: rosterEvent("e1", "Art Club")}, now))
	assert.False(t, q.schedule(pending{event: rosterEvent("e1", "Art Club"), attempts: 1}, now))
	assert.Equal(t, 1, q.len())
}
