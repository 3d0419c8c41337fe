package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/eventmetrix/internal/persistence/sqlite"
)

func TestIsPublicPath(t *testing.T) {
	public := []string{"/auth/login", "/auth/register", "/catalog", "/healthz", "/metrics"}
	for _, path := range public {
		if !isPublicPath(path) {
			t.Errorf("expected %s to be public", path)
		}
	}

	guarded := []string{"/events", "/events/abc/metrics", "/teams", "/dashboard/summary", "/sessions/current", "/profile"}
	for _, path := range guarded {
		if isPublicPath(path) {
			t.Errorf("expected %s to be guarded", path)
		}
	}
}

func TestBootstrapLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventmetrix.db")
	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	// First run seeds the configured default.
	language, err := bootstrapLanguage(context.Background(), store, "es")
	if err != nil {
		t.Fatalf("bootstrapLanguage failed: %v", err)
	}
	if language != "es" {
		t.Fatalf("expected seeded language es, got %q", language)
	}

	// Subsequent runs keep the persisted value over the configured one.
	language, err = bootstrapLanguage(context.Background(), store, "en")
	if err != nil {
		t.Fatalf("bootstrapLanguage failed: %v", err)
	}
	if language != "es" {
		t.Fatalf("expected persisted language es, got %q", language)
	}
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := generateID()
		if id == "" {
			t.Fatal("expected a non-empty id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("expected unique ids, got duplicate %q", id)
		}
		seen[id] = struct{}{}
	}
}
