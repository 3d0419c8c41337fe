package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/eventmetrix/internal/persistence"
)

var (
	userCounter  uint64
	eventCounter uint64
	teamCounter  uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// WithEmail overrides the generated email address.
func WithEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

// WithTeam overrides the generated team assignment.
func WithTeam(team string) UserOption {
	return func(u *persistence.User) { u.Team = team }
}

// NewUser returns a deterministic user record with optional overrides.
func NewUser(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	user := persistence.User{
		ID:          fmt.Sprintf("user-%03d", idx),
		Email:       fmt.Sprintf("user%03d@example.com", idx),
		DisplayName: fmt.Sprintf("User %03d", idx),
		Country:     "US",
		Team:        "other",
		Role:        "organizer",
		CreatedAt:   referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// EventOption configures a generated event fixture.
type EventOption func(*persistence.Event)

// WithOwner overrides the generated owner.
func WithOwner(ownerID string) EventOption {
	return func(e *persistence.Event) { e.OwnerID = ownerID }
}

// WithEventType overrides the generated event type.
func WithEventType(eventType string) EventOption {
	return func(e *persistence.Event) { e.EventType = eventType }
}

// WithExpectedAttendees sets the expected attendee window.
func WithExpectedAttendees(count int) EventOption {
	return func(e *persistence.Event) { e.ExpectedAttendees = &count }
}

// NewEvent returns a deterministic event record with optional overrides.
func NewEvent(opts ...EventOption) persistence.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	end := start.Add(6 * time.Hour)
	event := persistence.Event{
		ID:         fmt.Sprintf("event-%03d", idx),
		OwnerID:    "user-001",
		Name:       fmt.Sprintf("Event %03d", idx),
		Objectives: "Grow the local builder community",
		City:       "Lisbon",
		EventType:  "Workshop",
		StartDate:  &start,
		EndDate:    &end,
		CreatedAt:  referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// NewEventMetrics returns a metrics record tied to the supplied event with
// round figures that make rollup assertions easy to read.
func NewEventMetrics(eventID string, roi float64) persistence.EventMetrics {
	return persistence.EventMetrics{
		EventID:        eventID,
		AttendedCount:  80,
		TicketRevenue:  10000,
		SponsorRevenue: 20000,
		Costs:          15000,
		ROIEstimate:    roi,
		UpdatedAt:      referenceTime,
	}
}

// NewTeam returns a deterministic custom team record.
func NewTeam() persistence.Team {
	idx := atomic.AddUint64(&teamCounter, 1)
	return persistence.Team{
		ID:     fmt.Sprintf("team-%03d", idx),
		Name:   fmt.Sprintf("Team %03d", idx),
		Region: "Global",
	}
}
