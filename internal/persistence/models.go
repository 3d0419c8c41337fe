package persistence

import "time"

// User represents a registered (or fabricated prototype) account.
//
// PasswordHash is only populated for accounts created through registration;
// the prototype login never reads it.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	Country      string    `json:"country"`
	Team         string    `json:"team"`
	Role         string    `json:"role,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Event represents a user-owned gathering record.
type Event struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"ownerId"`
	Name              string     `json:"name"`
	Objectives        string     `json:"objectives"`
	City              string     `json:"city"`
	LocationURL       string     `json:"locationUrl,omitempty"`
	ExpectedAttendees *int       `json:"expectedAttendees,omitempty"`
	EventType         string     `json:"eventType"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// EventMetrics holds the synthesized figures paired one-to-one with an event.
type EventMetrics struct {
	EventID        string    `json:"eventId"`
	AttendedCount  int       `json:"attendedCount"`
	TicketRevenue  int       `json:"ticketRevenue"`
	SponsorRevenue int       `json:"sponsorRevenue"`
	Costs          int       `json:"costs"`
	ROIEstimate    float64   `json:"roiEstimate"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Session is the singleton authentication credential persisted per profile.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Team is a selectable team catalog entry, predefined or user-submitted.
type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}
