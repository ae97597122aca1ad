package outbox

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaProducerReusesWriterPerTopic(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"})

	first := p.writerForTopic("activity_roster_events")
	second := p.writerForTopic("activity_roster_events")
	other := p.writerForTopic("other")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, "activity_roster_events", first.Topic)
	assert.IsType(t, &kafka.Hash{}, first.Balancer)
	assert.Equal(t, kafka.RequireAll, first.RequiredAcks)

	require.NoError(t, p.Close())
}
