package persistence

import "context"

// UserRepository exposes the stored user collection.
//
// SaveUser appends without a uniqueness check; callers enforce the email
// uniqueness invariant with a lookup before inserting.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]User, error)
	SaveUser(ctx context.Context, user User) error
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByID(ctx context.Context, id string) (User, error)
}

// EventRepository exposes the stored event collection.
type EventRepository interface {
	ListEvents(ctx context.Context) ([]Event, error)
	ListEventsByOwner(ctx context.Context, ownerID string) ([]Event, error)
	SaveEvent(ctx context.Context, event Event) error
}

// EventMetricsRepository exposes the per-event metrics collection.
type EventMetricsRepository interface {
	ListEventMetrics(ctx context.Context) ([]EventMetrics, error)
	UpsertEventMetrics(ctx context.Context, metrics EventMetrics) error
	FindMetricsByEventID(ctx context.Context, eventID string) (EventMetrics, error)
}

// SessionRepository stores the singleton session slot. PutSession overwrites
// any prior session; DeleteSession is idempotent.
type SessionRepository interface {
	GetSession(ctx context.Context) (Session, error)
	PutSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context) error
}

// TeamRepository stores user-submitted custom teams. The predefined catalog
// lives in code (PredefinedTeams) and is merged by the application layer.
type TeamRepository interface {
	ListCustomTeams(ctx context.Context) ([]Team, error)
	SaveCustomTeam(ctx context.Context, team Team) error
}

// LanguageRepository persists the UI language preference.
type LanguageRepository interface {
	GetLanguage(ctx context.Context) (string, error)
	PutLanguage(ctx context.Context, code string) error
}
