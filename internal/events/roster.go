// Package events defines the roster event payloads shared by the publisher and consumers.
package events

import "time"

// Event types carried in the event_type header of every roster message.
const (
	TypeParticipantSignedUp     = "activity.participant_signed_up"
	TypeParticipantUnregistered = "activity.participant_unregistered"
)

// RosterChanged is emitted whenever a participant joins or leaves an activity.
type RosterChanged struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	Activity         string    `json:"activity"`
	Email            string    `json:"email"`
	ParticipantCount int       `json:"participant_count"`
	MaxParticipants  int       `json:"max_participants"`
	OccurredAt       time.Time `json:"occurred_at"`
}
