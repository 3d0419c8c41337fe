package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/eventmetrix/internal/persistence"
)

type userStoreStub struct {
	users   []persistence.User
	saveErr error
	findErr error
}

func (s *userStoreStub) SaveUser(_ context.Context, user persistence.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.users = append(s.users, user)
	return nil
}

func (s *userStoreStub) FindUserByEmail(_ context.Context, email string) (persistence.User, error) {
	if s.findErr != nil {
		return persistence.User{}, s.findErr
	}
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *userStoreStub) FindUserByID(_ context.Context, id string) (persistence.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

type sessionStoreStub struct {
	session   *persistence.Session
	putErr    error
	deleteErr error
	deletes   int
}

func (s *sessionStoreStub) GetSession(_ context.Context) (persistence.Session, error) {
	if s.session == nil {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return *s.session, nil
}

func (s *sessionStoreStub) PutSession(_ context.Context, session persistence.Session) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.session = &session
	return nil
}

func (s *sessionStoreStub) DeleteSession(_ context.Context) error {
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.session = nil
	return nil
}

func sequenceGenerator(values ...string) func() string {
	return func() string {
		if len(values) == 0 {
			return "fallback"
		}
		value := values[0]
		values = values[1:]
		return value
	}
}

func newTestAuthService(users *userStoreStub, sessions *sessionStoreStub, now time.Time, ids ...string) *AuthService {
	if len(ids) == 0 {
		ids = []string{"id-1", "token-1", "id-2", "token-2"}
	}
	gen := sequenceGenerator(ids...)
	return NewAuthService(users, sessions, gen, gen, func() time.Time { return now }, 7*24*time.Hour, 0)
}

func TestAuthService_LoginOrCreate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	t.Run("signs in an existing user without touching the collection", func(t *testing.T) {
		t.Parallel()

		existing := persistence.User{ID: "user-1", Email: "ada@example.com", DisplayName: "Ada"}
		users := &userStoreStub{users: []persistence.User{existing}}
		sessions := &sessionStoreStub{}
		svc := newTestAuthService(users, sessions, now)

		result, err := svc.LoginOrCreate(context.Background(), LoginParams{Identifier: "ada@example.com", Password: "anything"})
		if err != nil {
			t.Fatalf("LoginOrCreate failed: %v", err)
		}
		if result.User.ID != "user-1" {
			t.Fatalf("expected existing user, got %q", result.User.ID)
		}
		if len(users.users) != 1 {
			t.Fatalf("expected user collection unchanged, got %d entries", len(users.users))
		}
		if sessions.session == nil || sessions.session.UserID != "user-1" {
			t.Fatalf("expected a session for user-1, got %#v", sessions.session)
		}
	})

	t.Run("fabricates an account for an unseen identifier", func(t *testing.T) {
		t.Parallel()

		users := &userStoreStub{}
		sessions := &sessionStoreStub{}
		svc := newTestAuthService(users, sessions, now, "user-id", "session-id", "session-token")

		result, err := svc.LoginOrCreate(context.Background(), LoginParams{Identifier: "grace@navy.mil", Password: "ignored"})
		if err != nil {
			t.Fatalf("LoginOrCreate failed: %v", err)
		}

		if len(users.users) != 1 {
			t.Fatalf("expected a fabricated user, got %d entries", len(users.users))
		}
		created := users.users[0]
		if created.Email != "grace@navy.mil" {
			t.Fatalf("expected identifier stored as email, got %q", created.Email)
		}
		if created.DisplayName != "grace" {
			t.Fatalf("expected local part as display name, got %q", created.DisplayName)
		}
		if created.Country != "US" || created.Team != "other" || created.Role != "attendee" {
			t.Fatalf("unexpected fabricated defaults: %#v", created)
		}
		if !created.CreatedAt.Equal(now) {
			t.Fatalf("expected creation at %v, got %v", now, created.CreatedAt)
		}
		if result.Session.UserID != created.ID {
			t.Fatalf("expected session for fabricated user, got %q", result.Session.UserID)
		}
	})

	t.Run("uses a placeholder display name for bare identifiers", func(t *testing.T) {
		t.Parallel()

		users := &userStoreStub{}
		sessions := &sessionStoreStub{}
		svc := newTestAuthService(users, sessions, now)

		if _, err := svc.LoginOrCreate(context.Background(), LoginParams{Identifier: "@example.com"}); err != nil {
			t.Fatalf("LoginOrCreate failed: %v", err)
		}
		if users.users[0].DisplayName != "User" {
			t.Fatalf("expected placeholder display name, got %q", users.users[0].DisplayName)
		}
	})

	t.Run("rejects a blank identifier", func(t *testing.T) {
		t.Parallel()

		svc := newTestAuthService(&userStoreStub{}, &sessionStoreStub{}, now)

		_, err := svc.LoginOrCreate(context.Background(), LoginParams{Identifier: "   "})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["identifier"]; !ok {
			t.Fatalf("expected identifier field error, got %#v", vErr.FieldErrors)
		}
	})

	t.Run("honors context cancellation during the simulated delay", func(t *testing.T) {
		t.Parallel()

		users := &userStoreStub{}
		sessions := &sessionStoreStub{}
		gen := sequenceGenerator("id", "token")
		svc := NewAuthService(users, sessions, gen, gen, time.Now, time.Hour, 5*time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := svc.LoginOrCreate(ctx, LoginParams{Identifier: "late@example.com"}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(users.users) != 0 {
			t.Fatalf("expected no user written after cancellation, got %d", len(users.users))
		}
	})

	t.Run("propagates store failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		users := &userStoreStub{findErr: expected}
		svc := newTestAuthService(users, &sessionStoreStub{}, now)

		if _, err := svc.LoginOrCreate(context.Background(), LoginParams{Identifier: "x@example.com"}); !errors.Is(err, expected) {
			t.Fatalf("expected %v, got %v", expected, err)
		}
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	validParams := RegisterParams{
		Email:       "lin@example.com",
		Password:    "hunter2!",
		DisplayName: "Lin",
		Country:     "PT",
		Team:        "1",
		Role:        "organizer",
	}

	t.Run("persists the account and signs it in", func(t *testing.T) {
		t.Parallel()

		users := &userStoreStub{}
		sessions := &sessionStoreStub{}
		svc := newTestAuthService(users, sessions, now, "user-id", "session-id", "session-token")

		result, err := svc.Register(context.Background(), validParams)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if len(users.users) != 1 {
			t.Fatalf("expected one stored user, got %d", len(users.users))
		}
		stored := users.users[0]
		if stored.Email != "lin@example.com" || stored.Team != "1" {
			t.Fatalf("unexpected stored record: %#v", stored)
		}
		if stored.PasswordHash == "" || !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
			t.Fatalf("expected an argon2id password hash, got %q", stored.PasswordHash)
		}
		if stored.PasswordHash == validParams.Password {
			t.Fatal("password must not be stored in the clear")
		}
		if result.Session.Token != "session-token" {
			t.Fatalf("expected issued token, got %q", result.Session.Token)
		}
		if got, want := result.Session.ExpiresAt, now.Add(7*24*time.Hour); !got.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, got)
		}
	})

	t.Run("rejects a duplicate email and leaves the collection unchanged", func(t *testing.T) {
		t.Parallel()

		users := &userStoreStub{users: []persistence.User{{ID: "user-1", Email: "lin@example.com"}}}
		sessions := &sessionStoreStub{}
		svc := newTestAuthService(users, sessions, now)

		_, err := svc.Register(context.Background(), validParams)
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		if len(users.users) != 1 {
			t.Fatalf("expected collection unchanged, got %d entries", len(users.users))
		}
		if sessions.session != nil {
			t.Fatalf("expected no session issued, got %#v", sessions.session)
		}
	})

	t.Run("treats the duplicate check as byte-exact", func(t *testing.T) {
		t.Parallel()

		users := &userStoreStub{users: []persistence.User{{ID: "user-1", Email: "LIN@example.com"}}}
		svc := newTestAuthService(users, &sessionStoreStub{}, now)

		if _, err := svc.Register(context.Background(), validParams); err != nil {
			t.Fatalf("expected case-variant email to register, got %v", err)
		}
		if len(users.users) != 2 {
			t.Fatalf("expected a second user, got %d entries", len(users.users))
		}
	})

	t.Run("collects field errors for incomplete input", func(t *testing.T) {
		t.Parallel()

		svc := newTestAuthService(&userStoreStub{}, &sessionStoreStub{}, now)

		_, err := svc.Register(context.Background(), RegisterParams{Email: "not-an-email"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"email", "password", "display_name", "country", "team"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s field error, got %#v", field, vErr.FieldErrors)
			}
		}
	})
}

func TestAuthService_Sessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	t.Run("a new login overwrites the singleton slot", func(t *testing.T) {
		t.Parallel()

		users := &userStoreStub{users: []persistence.User{
			{ID: "user-1", Email: "a@example.com"},
			{ID: "user-2", Email: "b@example.com"},
		}}
		sessions := &sessionStoreStub{}
		svc := newTestAuthService(users, sessions, now, "s1", "t1", "s2", "t2")

		if _, err := svc.LoginOrCreate(context.Background(), LoginParams{Identifier: "a@example.com"}); err != nil {
			t.Fatalf("first login failed: %v", err)
		}
		if _, err := svc.LoginOrCreate(context.Background(), LoginParams{Identifier: "b@example.com"}); err != nil {
			t.Fatalf("second login failed: %v", err)
		}
		if sessions.session == nil || sessions.session.UserID != "user-2" {
			t.Fatalf("expected slot held by user-2, got %#v", sessions.session)
		}
	})

	t.Run("an expired session clears itself and stays cleared", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionStoreStub{session: &persistence.Session{
			ID: "s1", UserID: "user-1", Token: "t1", ExpiresAt: now.Add(-time.Minute),
		}}
		svc := newTestAuthService(&userStoreStub{}, sessions, now)

		_, err := svc.CurrentSession(context.Background())
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired for expired session, got %v", err)
		}
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected the expiry error to match ErrNotFound, got %v", err)
		}
		if sessions.session != nil {
			t.Fatal("expected expired session to be deleted")
		}

		// The repeat call hits an empty slot, so it is plain absence.
		_, err = svc.CurrentSession(context.Background())
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on repeat, got %v", err)
		}
		if errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected plain absence on repeat, got %v", err)
		}
	})

	t.Run("a session at exactly the expiry instant is expired", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionStoreStub{session: &persistence.Session{
			ID: "s1", UserID: "user-1", Token: "t1", ExpiresAt: now,
		}}
		svc := newTestAuthService(&userStoreStub{}, sessions, now)

		if _, err := svc.CurrentSession(context.Background()); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired at the expiry instant, got %v", err)
		}
	})

	t.Run("validate resolves the principal for the held token", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionStoreStub{session: &persistence.Session{
			ID: "s1", UserID: "user-1", Token: "t1", ExpiresAt: now.Add(time.Hour),
		}}
		svc := newTestAuthService(&userStoreStub{}, sessions, now)

		principal, err := svc.ValidateSession(context.Background(), "t1")
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if principal.UserID != "user-1" {
			t.Fatalf("expected user-1, got %q", principal.UserID)
		}
	})

	t.Run("validate rejects a stale token", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionStoreStub{session: &persistence.Session{
			ID: "s1", UserID: "user-1", Token: "t1", ExpiresAt: now.Add(time.Hour),
		}}
		svc := newTestAuthService(&userStoreStub{}, sessions, now)

		if _, err := svc.ValidateSession(context.Background(), "old-token"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("current user clears a dangling session", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionStoreStub{session: &persistence.Session{
			ID: "s1", UserID: "vanished", Token: "t1", ExpiresAt: now.Add(time.Hour),
		}}
		svc := newTestAuthService(&userStoreStub{}, sessions, now)

		if _, err := svc.CurrentUser(context.Background()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for dangling session, got %v", err)
		}
		if sessions.session != nil {
			t.Fatal("expected dangling session to be cleared")
		}
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionStoreStub{}
		svc := newTestAuthService(&userStoreStub{}, sessions, now)

		if err := svc.Logout(context.Background()); err != nil {
			t.Fatalf("Logout on empty slot failed: %v", err)
		}
		if err := svc.Logout(context.Background()); err != nil {
			t.Fatalf("repeat Logout failed: %v", err)
		}
	})
}
