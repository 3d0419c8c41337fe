package application

import (
	"time"

	"github.com/example/eventmetrix/internal/persistence"
)

// Principal identifies the user backing the current session.
type Principal struct {
	UserID string
}

// LoginParams captures the data required for the prototype login.
type LoginParams struct {
	Identifier string
	Password   string
}

// RegisterParams captures caller provided registration fields.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
	Country     string
	Team        string
	Role        string
}

// AuthResult carries the user and the freshly issued singleton session.
type AuthResult struct {
	User    persistence.User
	Session persistence.Session
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Name              string
	Objectives        string
	City              string
	LocationURL       string
	ExpectedAttendees *int
	EventType         string
	StartDate         *time.Time
	EndDate           *time.Time
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// EventWithMetrics pairs an event with its synthesized metrics row.
type EventWithMetrics struct {
	Event   persistence.Event
	Metrics persistence.EventMetrics
}

// Summary aggregates dashboard KPI figures across a user's events.
//
// TotalEvents counts every owned event; the remaining figures cover only
// events that have a metrics row.
type Summary struct {
	TotalEvents    int     `json:"totalEvents"`
	TotalAttendees int     `json:"totalAttendees"`
	TotalRevenue   int     `json:"totalRevenue"`
	TotalCosts     int     `json:"totalCosts"`
	AverageROI     float64 `json:"averageROI"`
}

// RankedEvent is a top-performing event entry.
type RankedEvent struct {
	Event   persistence.Event        `json:"event"`
	Metrics persistence.EventMetrics `json:"metrics"`
}

// MonthlyPoint is one synthetic trend sample. The series is decorative and
// not derived from stored events.
type MonthlyPoint struct {
	Month     string `json:"month"`
	Events    int    `json:"events"`
	Attendees int    `json:"attendees"`
	Revenue   int    `json:"revenue"`
}

// EventTypeCount tallies a user's events for one event type.
type EventTypeCount struct {
	EventType string `json:"eventType"`
	Count     int    `json:"count"`
}

// EventTypes returns the fixed event type enumeration in presentation order.
func EventTypes() []string {
	return []string{
		"Workshop",
		"Bootcamp",
		"Networking social",
		"Hackathon",
		"Feria/Expo",
		"Taller educativo",
		"Demo Day",
		"AMA/Meetup técnico",
	}
}
