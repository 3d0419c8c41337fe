package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/eventmetrix/internal/application"
)

type validatorStub struct {
	principal application.Principal
	err       error
	tokens    []string
}

func (v *validatorStub) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	v.tokens = append(v.tokens, token)
	if v.err != nil {
		return application.Principal{}, v.err
	}
	return v.principal, nil
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without a token", func(t *testing.T) {
		t.Parallel()

		validator := &validatorStub{}
		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("next handler must not run")
		})
		handler := RequireSession(validator, nil)(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if len(validator.tokens) != 0 {
			t.Fatalf("validator must not be consulted without a token, got %v", validator.tokens)
		}
	})

	t.Run("accepts a bearer token and injects the principal", func(t *testing.T) {
		t.Parallel()

		validator := &validatorStub{principal: application.Principal{UserID: "user-1"}}
		var seen application.Principal
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen, _ = PrincipalFromContext(r.Context())
		})
		handler := RequireSession(validator, nil)(next)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer token-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if seen.UserID != "user-1" {
			t.Fatalf("expected injected principal, got %#v", seen)
		}
		if len(validator.tokens) != 1 || validator.tokens[0] != "token-123" {
			t.Fatalf("expected the bearer token to reach the validator, got %v", validator.tokens)
		}
	})

	t.Run("falls back to the session cookie", func(t *testing.T) {
		t.Parallel()

		validator := &validatorStub{principal: application.Principal{UserID: "user-1"}}
		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		handler := RequireSession(validator, nil)(next)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(validator.tokens) != 1 || validator.tokens[0] != "cookie-token" {
			t.Fatalf("expected the cookie token to reach the validator, got %v", validator.tokens)
		}
	})

	t.Run("maps validation failures to 401", func(t *testing.T) {
		t.Parallel()

		validator := &validatorStub{err: application.ErrUnauthorized}
		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("next handler must not run")
		})
		handler := RequireSession(validator, nil)(next)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer stale")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
