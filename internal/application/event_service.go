package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/eventmetrix/internal/persistence"
)

// EventStore exposes the event collection operations the service needs.
type EventStore interface {
	ListEventsByOwner(ctx context.Context, ownerID string) ([]persistence.Event, error)
	SaveEvent(ctx context.Context, event persistence.Event) error
}

// MetricsStore exposes the per-event metrics collection.
type MetricsStore interface {
	ListEventMetrics(ctx context.Context) ([]persistence.EventMetrics, error)
	UpsertEventMetrics(ctx context.Context, metrics persistence.EventMetrics) error
	FindMetricsByEventID(ctx context.Context, eventID string) (persistence.EventMetrics, error)
}

// EventService orchestrates validation, creation, and lookup for events and
// their paired metrics rows.
type EventService struct {
	events      EventStore
	metrics     MetricsStore
	synth       *Synthesizer
	idGenerator func() string
	now         func() time.Time
	invalidate  func(userID string)
	logger      *slog.Logger
}

// NewEventService wires dependencies for the event service.
func NewEventService(events EventStore, metrics MetricsStore, synth *Synthesizer, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, metrics, synth, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(events EventStore, metrics MetricsStore, synth *Synthesizer, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if synth == nil {
		synth = NewSynthesizer(nil, now)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		metrics:     metrics,
		synth:       synth,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// SetInvalidator registers a callback fired after each successful creation,
// used to drop cached dashboard summaries for the owner.
func (s *EventService) SetInvalidator(invalidate func(userID string)) {
	if s == nil {
		return
	}
	s.invalidate = invalidate
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent validates input, appends the event, and stores its synthesized
// metrics row in the same operation. The pair is created together; metrics
// are never reconciled with real attendance afterwards.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (created EventWithMetrics, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil || s.metrics == nil {
		err = fmt.Errorf("event stores not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent", "owner_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", created.Event.ID, "roi_estimate", created.Metrics.ROIEstimate).InfoContext(ctx, "event created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	normalized := normalizeEventInput(params.Input)
	vErr := validateEventInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	event := persistence.Event{
		ID:                s.idGenerator(),
		OwnerID:           params.Principal.UserID,
		Name:              normalized.Name,
		Objectives:        normalized.Objectives,
		City:              normalized.City,
		LocationURL:       normalized.LocationURL,
		ExpectedAttendees: normalized.ExpectedAttendees,
		EventType:         normalized.EventType,
		StartDate:         normalized.StartDate,
		EndDate:           normalized.EndDate,
		CreatedAt:         s.now(),
	}

	if err = s.events.SaveEvent(ctx, event); err != nil {
		return
	}

	metrics := s.synth.Synthesize(event)
	if err = s.metrics.UpsertEventMetrics(ctx, metrics); err != nil {
		return
	}

	if s.invalidate != nil {
		s.invalidate(event.OwnerID)
	}

	created = EventWithMetrics{Event: event, Metrics: metrics}
	return
}

// ListEvents returns the principal's events in insertion order.
func (s *EventService) ListEvents(ctx context.Context, principal Principal) ([]persistence.Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event store not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	return s.events.ListEventsByOwner(ctx, principal.UserID)
}

// GetEventMetrics returns the metrics row for one of the principal's events.
// Events owned by someone else are indistinguishable from missing ones.
func (s *EventService) GetEventMetrics(ctx context.Context, principal Principal, eventID string) (persistence.EventMetrics, error) {
	if s == nil || s.events == nil || s.metrics == nil {
		return persistence.EventMetrics{}, fmt.Errorf("event stores not configured")
	}
	if principal.UserID == "" {
		return persistence.EventMetrics{}, ErrUnauthorized
	}

	owned, err := s.events.ListEventsByOwner(ctx, principal.UserID)
	if err != nil {
		return persistence.EventMetrics{}, err
	}
	if !slices.ContainsFunc(owned, func(e persistence.Event) bool { return e.ID == eventID }) {
		return persistence.EventMetrics{}, ErrNotFound
	}

	metrics, err := s.metrics.FindMetricsByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.EventMetrics{}, ErrNotFound
		}
		return persistence.EventMetrics{}, err
	}
	return metrics, nil
}

func normalizeEventInput(input EventInput) EventInput {
	return EventInput{
		Name:              strings.TrimSpace(input.Name),
		Objectives:        strings.TrimSpace(input.Objectives),
		City:              strings.TrimSpace(input.City),
		LocationURL:       strings.TrimSpace(input.LocationURL),
		ExpectedAttendees: input.ExpectedAttendees,
		EventType:         strings.TrimSpace(input.EventType),
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
	}
}

func validateEventInput(input EventInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Objectives == "" {
		vErr.add("objectives", "objectives are required")
	}
	if input.City == "" {
		vErr.add("city", "city is required")
	}

	if input.EventType == "" {
		vErr.add("event_type", "event type is required")
	} else if !slices.Contains(EventTypes(), input.EventType) {
		vErr.add("event_type", "event type is unknown")
	}

	if input.ExpectedAttendees != nil && *input.ExpectedAttendees < 0 {
		vErr.add("expected_attendees", "expected attendees must not be negative")
	}

	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		vErr.add("end_date", "end date must not precede start date")
	}

	return vErr
}
