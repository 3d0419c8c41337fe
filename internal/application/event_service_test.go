package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/eventmetrix/internal/persistence"
)

type eventStoreStub struct {
	events  []persistence.Event
	saveErr error
	listErr error
}

func (s *eventStoreStub) ListEventsByOwner(_ context.Context, ownerID string) ([]persistence.Event, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	owned := make([]persistence.Event, 0, len(s.events))
	for _, event := range s.events {
		if event.OwnerID == ownerID {
			owned = append(owned, event)
		}
	}
	return owned, nil
}

func (s *eventStoreStub) SaveEvent(_ context.Context, event persistence.Event) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.events = append(s.events, event)
	return nil
}

type metricsStoreStub struct {
	metrics   []persistence.EventMetrics
	upsertErr error
}

func (s *metricsStoreStub) ListEventMetrics(_ context.Context) ([]persistence.EventMetrics, error) {
	return append([]persistence.EventMetrics(nil), s.metrics...), nil
}

func (s *metricsStoreStub) UpsertEventMetrics(_ context.Context, metrics persistence.EventMetrics) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	for i := range s.metrics {
		if s.metrics[i].EventID == metrics.EventID {
			s.metrics[i] = metrics
			return nil
		}
	}
	s.metrics = append(s.metrics, metrics)
	return nil
}

func (s *metricsStoreStub) FindMetricsByEventID(_ context.Context, eventID string) (persistence.EventMetrics, error) {
	for _, metrics := range s.metrics {
		if metrics.EventID == eventID {
			return metrics, nil
		}
	}
	return persistence.EventMetrics{}, persistence.ErrNotFound
}

func scriptedIntN(values ...int) func(n int) int {
	return func(n int) int {
		if len(values) == 0 {
			return 0
		}
		value := values[0]
		values = values[1:]
		if n > 0 {
			value %= n
		}
		return value
	}
}

func validEventInput() EventInput {
	return EventInput{
		Name:       "ETH Lisbon Workshop",
		Objectives: "Onboard local developers",
		City:       "Lisbon",
		EventType:  "Workshop",
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	principal := Principal{UserID: "user-1"}

	t.Run("creates the event with a synthesized metrics row", func(t *testing.T) {
		t.Parallel()

		events := &eventStoreStub{}
		metrics := &metricsStoreStub{}
		// attended, ticket, sponsor, costs
		synth := NewSynthesizer(scriptedIntN(42, 10000, 20000, 15000), func() time.Time { return now })
		svc := NewEventService(events, metrics, synth, sequenceGenerator("event-1"), func() time.Time { return now })

		created, err := svc.CreateEvent(context.Background(), CreateEventParams{Principal: principal, Input: validEventInput()})
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		if created.Event.ID != "event-1" || created.Event.OwnerID != "user-1" {
			t.Fatalf("unexpected event identity: %#v", created.Event)
		}
		if created.Metrics.EventID != "event-1" {
			t.Fatalf("expected metrics bound to event-1, got %q", created.Metrics.EventID)
		}
		if created.Metrics.AttendedCount != 42 {
			t.Fatalf("expected attended 42, got %d", created.Metrics.AttendedCount)
		}
		// (10000 + 20000 - 15000) / 15000 * 100
		if got, want := created.Metrics.ROIEstimate, 100.0; got != want {
			t.Fatalf("expected ROI %v, got %v", want, got)
		}
		if len(events.events) != 1 || len(metrics.metrics) != 1 {
			t.Fatalf("expected one event and one metrics row, got %d/%d", len(events.events), len(metrics.metrics))
		}
	})

	t.Run("bounds attendance by expected attendees", func(t *testing.T) {
		t.Parallel()

		expected := 10
		input := validEventInput()
		input.ExpectedAttendees = &expected

		synth := NewSynthesizer(scriptedIntN(42, 0, 0, 0), func() time.Time { return now })
		svc := NewEventService(&eventStoreStub{}, &metricsStoreStub{}, synth, sequenceGenerator("event-1"), func() time.Time { return now })

		created, err := svc.CreateEvent(context.Background(), CreateEventParams{Principal: principal, Input: input})
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		if created.Metrics.AttendedCount >= expected {
			t.Fatalf("expected attendance below %d, got %d", expected, created.Metrics.AttendedCount)
		}
	})

	t.Run("applies the zero-cost ROI policy", func(t *testing.T) {
		t.Parallel()

		synth := NewSynthesizer(scriptedIntN(10, 5000, 5000, 0), func() time.Time { return now })
		svc := NewEventService(&eventStoreStub{}, &metricsStoreStub{}, synth, sequenceGenerator("event-1"), func() time.Time { return now })

		created, err := svc.CreateEvent(context.Background(), CreateEventParams{Principal: principal, Input: validEventInput()})
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		if created.Metrics.ROIEstimate != ZeroCostROI {
			t.Fatalf("expected zero-cost ROI policy, got %v", created.Metrics.ROIEstimate)
		}
	})

	t.Run("fires the summary invalidator for the owner", func(t *testing.T) {
		t.Parallel()

		svc := NewEventService(&eventStoreStub{}, &metricsStoreStub{}, nil, sequenceGenerator("event-1"), func() time.Time { return now })
		var invalidated []string
		svc.SetInvalidator(func(userID string) { invalidated = append(invalidated, userID) })

		if _, err := svc.CreateEvent(context.Background(), CreateEventParams{Principal: principal, Input: validEventInput()}); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		if len(invalidated) != 1 || invalidated[0] != "user-1" {
			t.Fatalf("expected invalidation for user-1, got %#v", invalidated)
		}
	})

	t.Run("rejects an anonymous principal", func(t *testing.T) {
		t.Parallel()

		svc := NewEventService(&eventStoreStub{}, &metricsStoreStub{}, nil, nil, nil)

		if _, err := svc.CreateEvent(context.Background(), CreateEventParams{Input: validEventInput()}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("collects field errors for invalid input", func(t *testing.T) {
		t.Parallel()

		negative := -1
		start := now
		end := now.Add(-time.Hour)
		input := EventInput{
			EventType:         "Rave",
			ExpectedAttendees: &negative,
			StartDate:         &start,
			EndDate:           &end,
		}
		svc := NewEventService(&eventStoreStub{}, &metricsStoreStub{}, nil, nil, nil)

		_, err := svc.CreateEvent(context.Background(), CreateEventParams{Principal: principal, Input: input})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"name", "objectives", "city", "event_type", "expected_attendees", "end_date"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s field error, got %#v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("trims whitespace before validating", func(t *testing.T) {
		t.Parallel()

		events := &eventStoreStub{}
		input := EventInput{
			Name:       "  Meetup  ",
			Objectives: " connect ",
			City:       " Porto ",
			EventType:  " Hackathon ",
		}
		svc := NewEventService(events, &metricsStoreStub{}, nil, sequenceGenerator("event-1"), func() time.Time { return now })

		created, err := svc.CreateEvent(context.Background(), CreateEventParams{Principal: principal, Input: input})
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		if created.Event.Name != "Meetup" || created.Event.City != "Porto" || created.Event.EventType != "Hackathon" {
			t.Fatalf("expected trimmed fields, got %#v", created.Event)
		}
	})
}

func TestEventService_GetEventMetrics(t *testing.T) {
	t.Parallel()

	principal := Principal{UserID: "user-1"}

	events := &eventStoreStub{events: []persistence.Event{
		{ID: "event-1", OwnerID: "user-1"},
		{ID: "event-2", OwnerID: "someone-else"},
	}}
	metrics := &metricsStoreStub{metrics: []persistence.EventMetrics{
		{EventID: "event-1", ROIEstimate: 50},
		{EventID: "event-2", ROIEstimate: 75},
	}}
	svc := NewEventService(events, metrics, nil, nil, nil)

	t.Run("returns the row for an owned event", func(t *testing.T) {
		t.Parallel()

		got, err := svc.GetEventMetrics(context.Background(), principal, "event-1")
		if err != nil {
			t.Fatalf("GetEventMetrics failed: %v", err)
		}
		if got.ROIEstimate != 50 {
			t.Fatalf("expected ROI 50, got %v", got.ROIEstimate)
		}
	})

	t.Run("hides other owners' events behind not-found", func(t *testing.T) {
		t.Parallel()

		if _, err := svc.GetEventMetrics(context.Background(), principal, "event-2"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reports missing events as not-found", func(t *testing.T) {
		t.Parallel()

		if _, err := svc.GetEventMetrics(context.Background(), principal, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
