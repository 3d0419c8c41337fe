package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/eventmetrix/internal/persistence"
	"github.com/example/eventmetrix/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// storage instance for integration-style persistence tests.
type SQLiteHarness struct {
	Users    persistence.UserRepository
	Events   persistence.EventRepository
	Metrics  persistence.EventMetricsRepository
	Sessions persistence.SessionRepository
	Teams    persistence.TeamRepository
	Language persistence.LanguageRepository

	Store *sqlite.Store

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "eventmetrix.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Users:    storage,
		Events:   storage,
		Metrics:  storage,
		Sessions: storage,
		Teams:    storage,
		Language: storage,
		Store:    storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
