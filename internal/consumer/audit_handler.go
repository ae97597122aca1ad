package consumer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"example.com/activities/internal/events"
)

// AuditHandler writes every roster change to the log and tracks the latest
// reported participant count per activity.
type AuditHandler struct {
	logger *zap.Logger

	mu     sync.Mutex
	counts map[string]int
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{
		logger: logger,
		counts: make(map[string]int),
	}
}

// Handle implements Handler.
func (h *AuditHandler) Handle(ctx context.Context, msg Message) error {
	var action string
	switch msg.EventType {
	case events.TypeParticipantSignedUp:
		action = "signed_up"
	case events.TypeParticipantUnregistered:
		action = "unregistered"
	default:
		return fmt.Errorf("unsupported event type %q", msg.EventType)
	}

	event := msg.Event
	h.mu.Lock()
	h.counts[event.Activity] = event.ParticipantCount
	h.mu.Unlock()
	rosterSizeGauge.WithLabelValues(event.Activity).Set(float64(event.ParticipantCount))

	h.logger.Info("roster changed",
		zap.String("action", action),
		zap.String("activity", event.Activity),
		zap.String("email", event.Email),
		zap.Int("participant_count", event.ParticipantCount),
		zap.Int("max_participants", event.MaxParticipants),
		zap.String("event_id", event.EventID),
		zap.Time("occurred_at", event.OccurredAt),
		zap.Int64("offset", msg.Offset),
	)
	return nil
}

// Count returns the last participant count seen for activity.
func (h *AuditHandler) Count(activity string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.counts[activity]
	return n, ok
}
