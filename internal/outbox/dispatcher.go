// Package outbox buffers roster events in memory and delivers them to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"example.com/activities/internal/events"
)

var (
	// ErrQueueFull is returned by Publish when the buffer has no room left.
	ErrQueueFull = errors.New("outbox queue full")
	// ErrStopped is returned by Publish once the dispatcher has shut down.
	ErrStopped = errors.New("outbox dispatcher stopped")
)

// Kafka header keys set on every roster message.
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
	HeaderActivity  = "activity"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Config tunes batching and retry behaviour.
type Config struct {
	Topic         string
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
	// MaxRetries is how many redeliveries a failed event gets before it is
	// quarantined. Negative disables retries.
	MaxRetries     int
	RetryBaseDelay time.Duration
	// DrainTimeout bounds the final flush performed on shutdown.
	DrainTimeout time.Duration
}

// Dispatcher queues roster events and writes them to Kafka in batches.
// Publish never blocks the request path; the queue is drained by Start.
type Dispatcher struct {
	producer         messageWriter
	cfg              Config
	queue            chan events.RosterChanged
	retries          *retryQueue
	logger           *zap.Logger
	now              func() time.Time
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher. Zero config values fall back to defaults.
func NewDispatcher(producer messageWriter, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = 5
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		producer:         producer,
		cfg:              cfg,
		queue:            make(chan events.RosterChanged, cfg.QueueSize),
		retries:          newRetryQueue(cfg.MaxRetries, cfg.RetryBaseDelay),
		logger:           logger,
		now:              time.Now,
		shutdownComplete: make(chan struct{}),
	}
}

// Publish enqueues an event for delivery.
func (d *Dispatcher) Publish(ctx context.Context, event events.RosterChanged) error {
	select {
	case <-d.shutdownComplete:
		droppedCounter.Inc()
		return ErrStopped
	default:
	}

	select {
	case d.queue <- event:
		queueDepth.Set(float64(len(d.queue)))
		return nil
	default:
		droppedCounter.Inc()
		return ErrQueueFull
	}
}

// Start runs the flush loop until ctx is cancelled, then drains the queue and
// the retry backlog once more. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	batch := make([]pending, 0, d.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			batch = append(d.drain(batch), d.retries.all()...)
			drainCtx, cancel := context.WithTimeout(context.Background(), d.cfg.DrainTimeout)
			d.flush(drainCtx, batch, false)
			cancel()
			return
		case event := <-d.queue:
			batch = append(batch, pending{event: event})
			if len(batch) >= d.cfg.BatchSize {
				d.flush(ctx, batch, true)
				batch = batch[:0]
			}
		case <-ticker.C:
			batch = append(batch, d.retries.due(d.now())...)
			if len(batch) > 0 {
				d.flush(ctx, batch, true)
				batch = batch[:0]
			}
		}
	}
}

// Wait blocks until Start has returned.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) drain(batch []pending) []pending {
	for {
		select {
		case event := <-d.queue:
			batch = append(batch, pending{event: event})
		default:
			return batch
		}
	}
}

func (d *Dispatcher) flush(ctx context.Context, batch []pending, retry bool) {
	queueDepth.Set(float64(len(d.queue)))
	if len(batch) == 0 {
		return
	}

	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	messages := make([]kafka.Message, 0, len(batch))
	sent := make([]pending, 0, len(batch))
	for _, p := range batch {
		msg, err := Encode(p.event)
		if err != nil {
			failedCounter.Inc()
			d.logger.Error("encode roster event", zap.String("event_id", p.event.EventID), zap.Error(err))
			continue
		}
		messages = append(messages, msg)
		sent = append(sent, p)
	}
	if len(messages) == 0 {
		return
	}

	if err := d.producer.WriteMessages(ctx, d.cfg.Topic, messages...); err != nil {
		failedCounter.Add(float64(len(messages)))
		d.logger.Error("deliver roster events",
			zap.String("topic", d.cfg.Topic),
			zap.Int("count", len(messages)),
			zap.Error(err),
		)
		if retry {
			d.scheduleRetries(sent)
		} else {
			quarantinedCounter.Add(float64(len(sent)))
		}
		return
	}
	deliveredCounter.Add(float64(len(messages)))
	d.logger.Debug("roster events delivered", zap.String("topic", d.cfg.Topic), zap.Int("count", len(messages)))
}

func (d *Dispatcher) scheduleRetries(failed []pending) {
	now := d.now()
	for _, p := range failed {
		if d.retries.schedule(p, now) {
			retryScheduledCounter.Inc()
			continue
		}
		quarantinedCounter.Inc()
		d.logger.Error("roster event quarantined",
			zap.String("event_id", p.event.EventID),
			zap.String("event_type", p.event.EventType),
			zap.String("activity", p.event.Activity),
			zap.Int("attempts", p.attempts+1),
		)
	}
}

// Encode turns a roster event into a Kafka message keyed by activity name.
func Encode(event events.RosterChanged) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s: %w", event.EventType, err)
	}
	return kafka.Message{
		Key:   []byte(event.Activity),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(event.EventType)},
			{Key: HeaderEventID, Value: []byte(event.EventID)},
			{Key: HeaderActivity, Value: []byte(event.Activity)},
		},
	}, nil
}
