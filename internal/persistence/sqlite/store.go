// Package sqlite persists each EventMetrix collection as a single JSON
// document row, mirroring the key-value layout of the original browser
// profile. Every write is a read-modify-write of the whole collection value,
// replaced atomically inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/eventmetrix/internal/metrics"
	"github.com/example/eventmetrix/internal/persistence"
	_ "modernc.org/sqlite"
)

// Store implements the persistence repositories on top of an embedded SQLite
// database. A single mutex serializes read-modify-write cycles so concurrent
// callers within the process cannot drop each other's writes.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (or creates) the database at the provided DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	// modernc/sqlite serializes internally; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate bootstraps the collection table. Safe to call repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w: %v", persistence.ErrStorageUnavailable, err)
		}
	}
	return nil
}

// --- raw blob access ---

func (s *Store) readValue(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM collections WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: read %s: %w: %v", key, persistence.ErrStorageUnavailable, err)
	}
	return []byte(value), true, nil
}

func (s *Store) writeValue(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.StorageWriteFailures.Inc()
		return fmt.Errorf("sqlite: write %s: %w: %v", key, persistence.ErrStorageUnavailable, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		_ = tx.Rollback()
		metrics.StorageWriteFailures.Inc()
		return fmt.Errorf("sqlite: write %s: %w: %v", key, persistence.ErrStorageUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		metrics.StorageWriteFailures.Inc()
		return fmt.Errorf("sqlite: write %s: %w: %v", key, persistence.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) deleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE key = ?`, key); err != nil {
		metrics.StorageWriteFailures.Inc()
		return fmt.Errorf("sqlite: delete %s: %w: %v", key, persistence.ErrStorageUnavailable, err)
	}
	return nil
}

func readCollection[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, ok, err := s.readValue(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("sqlite: decode %s: %w", key, err)
	}
	return items, nil
}

func writeCollection[T any](ctx context.Context, s *Store, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("sqlite: encode %s: %w", key, err)
	}
	return s.writeValue(ctx, key, raw)
}

// --- UserRepository ---

// ListUsers returns every stored user in insertion order.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[persistence.User](ctx, s, persistence.KeyUsers)
}

// SaveUser appends the user to the stored sequence. Uniqueness is the
// caller's responsibility (lookup-before-insert).
func (s *Store) SaveUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := readCollection[persistence.User](ctx, s, persistence.KeyUsers)
	if err != nil {
		return err
	}
	users = append(users, user)
	return writeCollection(ctx, s, persistence.KeyUsers, users)
}

// FindUserByEmail scans for a byte-exact email match.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := readCollection[persistence.User](ctx, s, persistence.KeyUsers)
	if err != nil {
		return persistence.User{}, err
	}
	for _, user := range users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// FindUserByID scans for a user by identifier.
func (s *Store) FindUserByID(ctx context.Context, id string) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := readCollection[persistence.User](ctx, s, persistence.KeyUsers)
	if err != nil {
		return persistence.User{}, err
	}
	for _, user := range users {
		if user.ID == id {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// --- EventRepository ---

// ListEvents returns every stored event in insertion order. Date fields
// rehydrate from their serialized RFC 3339 form.
func (s *Store) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[persistence.Event](ctx, s, persistence.KeyEvents)
}

// ListEventsByOwner filters stored events by owner, preserving insertion order.
func (s *Store) ListEventsByOwner(ctx context.Context, ownerID string) ([]persistence.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := readCollection[persistence.Event](ctx, s, persistence.KeyEvents)
	if err != nil {
		return nil, err
	}
	owned := make([]persistence.Event, 0, len(events))
	for _, event := range events {
		if event.OwnerID == ownerID {
			owned = append(owned, event)
		}
	}
	return owned, nil
}

// SaveEvent appends the event to the stored sequence.
func (s *Store) SaveEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := readCollection[persistence.Event](ctx, s, persistence.KeyEvents)
	if err != nil {
		return err
	}
	events = append(events, event)
	return writeCollection(ctx, s, persistence.KeyEvents, events)
}

// --- EventMetricsRepository ---

// ListEventMetrics returns every stored metrics record.
func (s *Store) ListEventMetrics(ctx context.Context) ([]persistence.EventMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[persistence.EventMetrics](ctx, s, persistence.KeyMetrics)
}

// UpsertEventMetrics replaces the record matching the event id, else appends.
func (s *Store) UpsertEventMetrics(ctx context.Context, metrics persistence.EventMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := readCollection[persistence.EventMetrics](ctx, s, persistence.KeyMetrics)
	if err != nil {
		return err
	}
	replaced := false
	for i := range all {
		if all[i].EventID == metrics.EventID {
			all[i] = metrics
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, metrics)
	}
	return writeCollection(ctx, s, persistence.KeyMetrics, all)
}

// FindMetricsByEventID scans for the metrics record paired with an event.
func (s *Store) FindMetricsByEventID(ctx context.Context, eventID string) (persistence.EventMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := readCollection[persistence.EventMetrics](ctx, s, persistence.KeyMetrics)
	if err != nil {
		return persistence.EventMetrics{}, err
	}
	for _, metrics := range all {
		if metrics.EventID == eventID {
			return metrics, nil
		}
	}
	return persistence.EventMetrics{}, persistence.ErrNotFound
}

// --- SessionRepository ---

// GetSession reads the singleton session slot.
func (s *Store) GetSession(ctx context.Context) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.readValue(ctx, persistence.KeySession)
	if err != nil {
		return persistence.Session{}, err
	}
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	var session persistence.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return persistence.Session{}, fmt.Errorf("sqlite: decode %s: %w", persistence.KeySession, err)
	}
	return session, nil
}

// PutSession overwrites the singleton session slot.
func (s *Store) PutSession(ctx context.Context, session persistence.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("sqlite: encode %s: %w", persistence.KeySession, err)
	}
	return s.writeValue(ctx, persistence.KeySession, raw)
}

// DeleteSession clears the singleton session slot. Idempotent.
func (s *Store) DeleteSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteValue(ctx, persistence.KeySession)
}

// --- TeamRepository ---

// ListCustomTeams returns user-submitted teams in insertion order.
func (s *Store) ListCustomTeams(ctx context.Context) ([]persistence.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[persistence.Team](ctx, s, persistence.KeyTeams)
}

// SaveCustomTeam appends a custom team entry.
func (s *Store) SaveCustomTeam(ctx context.Context, team persistence.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams, err := readCollection[persistence.Team](ctx, s, persistence.KeyTeams)
	if err != nil {
		return err
	}
	teams = append(teams, team)
	return writeCollection(ctx, s, persistence.KeyTeams, teams)
}

// --- LanguageRepository ---

// GetLanguage reads the persisted language code, ErrNotFound when unset.
func (s *Store) GetLanguage(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.readValue(ctx, persistence.KeyLanguage)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", persistence.ErrNotFound
	}
	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		return "", fmt.Errorf("sqlite: decode %s: %w", persistence.KeyLanguage, err)
	}
	return code, nil
}

// PutLanguage stores the language code.
func (s *Store) PutLanguage(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("sqlite: encode %s: %w", persistence.KeyLanguage, err)
	}
	return s.writeValue(ctx, persistence.KeyLanguage, raw)
}
