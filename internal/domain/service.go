// Package domain defines the business logic for activity signups.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"example.com/activities/internal/events"
	"example.com/activities/internal/observability"
)

var (
	// ErrActivityNotFound is returned when no activity has the requested name.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrParticipantNotFound is returned when unregistering an email that is not on the roster.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrAlreadyRegistered is returned when the email is already on the roster.
	ErrAlreadyRegistered = errors.New("student already signed up for this activity")
	// ErrActivityFull is returned when capacity enforcement is on and the roster is full.
	ErrActivityFull = errors.New("activity is full")
	// ErrInvalidEmail is returned when the email is blank.
	ErrInvalidEmail = errors.New("email is required")
)

// Roster operation names used for metrics and spans.
const (
	OperationList       = "list"
	OperationSignup     = "signup"
	OperationUnregister = "unregister"
)

// ActivityRepository captures the operations of the activity store.
type ActivityRepository interface {
	List(ctx context.Context) (map[string]Activity, error)
	AddParticipant(ctx context.Context, name, email string, enforceCapacity bool) (Activity, error)
	RemoveParticipant(ctx context.Context, name, email string) (Activity, error)
}

// Publisher delivers roster events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event events.RosterChanged) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, events.RosterChanged) error { return nil }

// Service orchestrates signup workflows.
type Service struct {
	repo            ActivityRepository
	publisher       Publisher
	logger          *zap.Logger
	tracer          trace.Tracer
	enforceCapacity bool
	now             func() time.Time
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithPublisher sets the destination for roster events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger overrides the logger used to report publish failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCapacityEnforcement toggles rejection of signups once an activity is full.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceCapacity = enabled
	}
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service. Capacity is enforced unless disabled.
func NewService(repo ActivityRepository, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		publisher:       NoopPublisher{},
		logger:          zap.NewNop(),
		tracer:          otel.Tracer("example.com/activities/internal/domain"),
		enforceCapacity: true,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActivities returns a snapshot of every activity keyed by name.
func (s *Service) ListActivities(ctx context.Context) (map[string]Activity, error) {
	ctx, span := s.tracer.Start(ctx, "activities.list")
	defer span.End()

	activities, err := s.repo.List(ctx)
	observability.RecordRosterOperation(OperationList, outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("activities.count", len(activities)))
	return activities, nil
}

// Signup adds email to the named activity.
func (s *Service) Signup(ctx context.Context, name, email string) (Activity, error) {
	ctx, span := s.tracer.Start(ctx, "activities.signup", trace.WithAttributes(attribute.String("activity.name", name)))
	defer span.End()

	if strings.TrimSpace(email) == "" {
		observability.RecordRosterOperation(OperationSignup, outcome(ErrInvalidEmail))
		span.SetStatus(codes.Error, ErrInvalidEmail.Error())
		return Activity{}, ErrInvalidEmail
	}

	activity, err := s.repo.AddParticipant(ctx, name, email, s.enforceCapacity)
	observability.RecordRosterOperation(OperationSignup, outcome(err))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Activity{}, err
	}

	span.SetAttributes(attribute.Int("activity.spots_left", activity.SpotsLeft()))
	observability.RecordParticipantCount(activity.Name, len(activity.Participants))
	s.publish(ctx, events.TypeParticipantSignedUp, activity, email)
	return activity, nil
}

// Unregister removes email from the named activity.
func (s *Service) Unregister(ctx context.Context, name, email string) (Activity, error) {
	ctx, span := s.tracer.Start(ctx, "activities.unregister", trace.WithAttributes(attribute.String("activity.name", name)))
	defer span.End()

	if strings.TrimSpace(email) == "" {
		observability.RecordRosterOperation(OperationUnregister, outcome(ErrInvalidEmail))
		span.SetStatus(codes.Error, ErrInvalidEmail.Error())
		return Activity{}, ErrInvalidEmail
	}

	activity, err := s.repo.RemoveParticipant(ctx, name, email)
	observability.RecordRosterOperation(OperationUnregister, outcome(err))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Activity{}, err
	}

	span.SetAttributes(attribute.Int("activity.spots_left", activity.SpotsLeft()))
	observability.RecordParticipantCount(activity.Name, len(activity.Participants))
	s.publish(ctx, events.TypeParticipantUnregistered, activity, email)
	return activity, nil
}

func (s *Service) publish(ctx context.Context, eventType string, activity Activity, email string) {
	event := events.RosterChanged{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		Activity:         activity.Name,
		Email:            email,
		ParticipantCount: len(activity.Participants),
		MaxParticipants:  activity.MaxParticipants,
		OccurredAt:       s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("roster event not published",
			zap.String("event_type", eventType),
			zap.String("activity", activity.Name),
			zap.Error(err),
		)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrActivityNotFound):
		return "activity_not_found"
	case errors.Is(err, ErrParticipantNotFound):
		return "participant_not_found"
	case errors.Is(err, ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, ErrActivityFull):
		return "activity_full"
	case errors.Is(err, ErrInvalidEmail):
		return "invalid_email"
	default:
		return "error"
	}
}
