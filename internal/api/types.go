package api

import "example.com/activities/internal/domain"

const (
	codeActivityNotFound    = "activity_not_found"
	codeParticipantNotFound = "participant_not_found"
	codeAlreadyRegistered   = "already_registered"
	codeActivityFull        = "activity_full"
	codeValidationFailed    = "validation_failed"
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeServerError         = "server_error"
)

// ActivityView is the wire form of one activity in GET /activities.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// ActivitiesResponse is keyed by activity name.
type ActivitiesResponse map[string]ActivityView

// MessageResponse acknowledges a successful signup or unregister.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

func toActivityView(activity domain.Activity) ActivityView {
	participants := activity.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityView{
		Description:     activity.Description,
		Schedule:        activity.Schedule,
		MaxParticipants: activity.MaxParticipants,
		Participants:    participants,
	}
}
