package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/eventmetrix/internal/persistence"
)

// UserStore exposes the user collection operations the auth service needs.
type UserStore interface {
	SaveUser(ctx context.Context, user persistence.User) error
	FindUserByEmail(ctx context.Context, email string) (persistence.User, error)
	FindUserByID(ctx context.Context, id string) (persistence.User, error)
}

// SessionStore exposes the singleton session slot.
type SessionStore interface {
	GetSession(ctx context.Context) (persistence.Session, error)
	PutSession(ctx context.Context, session persistence.Session) error
	DeleteSession(ctx context.Context) error
}

// PasswordHasher derives the stored hash for a registration password.
type PasswordHasher func(password string) (string, error)

// AuthService coordinates the prototype authentication flows: implicit-signup
// login, registration, and singleton session lifecycle.
type AuthService struct {
	users          UserStore
	sessions       SessionStore
	hashPassword   PasswordHasher
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	loginDelay     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users UserStore, sessions SessionStore, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL, loginDelay time.Duration) *AuthService {
	return NewAuthServiceWithLogger(users, sessions, idGenerator, tokenGenerator, now, sessionTTL, loginDelay, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(users UserStore, sessions SessionStore, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL, loginDelay time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = idGenerator
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		hashPassword:   func(password string) (string, error) { return CreatePasswordHash(password, DefaultArgon2idParams) },
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		loginDelay:     loginDelay,
		logger:         defaultLogger(logger),
	}
}

// SetPasswordHasher overrides the registration hash function.
func (s *AuthService) SetPasswordHasher(hasher PasswordHasher) {
	if s == nil || hasher == nil {
		return
	}
	s.hashPassword = hasher
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// simulateLatency imitates the network round-trip of the original prototype
// before login and register resolve.
func (s *AuthService) simulateLatency(ctx context.Context) error {
	if s.loginDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.loginDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// LoginOrCreate signs the identifier in, fabricating an account when the
// email has never been seen. The password is accepted unchecked; this is the
// prototype's explicit implicit-signup policy, not a fallback.
func (s *AuthService) LoginOrCreate(ctx context.Context, params LoginParams) (result AuthResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.sessions == nil {
		err = fmt.Errorf("auth stores not configured")
		return
	}

	identifier := strings.TrimSpace(params.Identifier)
	logger := s.loggerWith(ctx, "LoginOrCreate", "identifier", identifier)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID, "session_id", result.Session.ID).InfoContext(ctx, "login succeeded")
	}()

	if identifier == "" {
		err = &ValidationError{FieldErrors: map[string]string{"identifier": "identifier is required"}}
		return
	}

	if err = s.simulateLatency(ctx); err != nil {
		return
	}

	user, lookupErr := s.users.FindUserByEmail(ctx, identifier)
	switch {
	case lookupErr == nil:
	case errors.Is(lookupErr, persistence.ErrNotFound):
		user = s.fabricateUser(identifier)
		if err = s.users.SaveUser(ctx, user); err != nil {
			return
		}
		logger.InfoContext(ctx, "fabricated prototype account", "user_id", user.ID)
	default:
		err = lookupErr
		return
	}

	session, sessionErr := s.CreateSession(ctx, user.ID)
	if sessionErr != nil {
		err = sessionErr
		return
	}

	result = AuthResult{User: user, Session: session}
	return
}

// Register creates an account and signs it in. A stored byte-exact email
// match fails with ErrAlreadyExists and leaves the user collection unchanged.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (result AuthResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.sessions == nil {
		err = fmt.Errorf("auth stores not configured")
		return
	}

	email := strings.TrimSpace(params.Email)
	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "registration succeeded")
	}()

	vErr := validateRegisterParams(params, email)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.simulateLatency(ctx); err != nil {
		return
	}

	if _, lookupErr := s.users.FindUserByEmail(ctx, email); lookupErr == nil {
		err = ErrAlreadyExists
		return
	} else if !errors.Is(lookupErr, persistence.ErrNotFound) {
		err = lookupErr
		return
	}

	hash, hashErr := s.hashPassword(params.Password)
	if hashErr != nil {
		err = hashErr
		return
	}

	user := persistence.User{
		ID:           s.idGenerator(),
		Email:        email,
		DisplayName:  strings.TrimSpace(params.DisplayName),
		Country:      strings.TrimSpace(params.Country),
		Team:         strings.TrimSpace(params.Team),
		Role:         strings.TrimSpace(params.Role),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err = s.users.SaveUser(ctx, user); err != nil {
		return
	}

	session, sessionErr := s.CreateSession(ctx, user.ID)
	if sessionErr != nil {
		err = sessionErr
		return
	}

	result = AuthResult{User: user, Session: session}
	return
}

// CreateSession issues a fresh session expiring sessionTTL from now and
// overwrites the singleton slot.
func (s *AuthService) CreateSession(ctx context.Context, userID string) (persistence.Session, error) {
	if s == nil || s.sessions == nil {
		return persistence.Session{}, fmt.Errorf("session store not configured")
	}

	session := persistence.Session{
		ID:        s.idGenerator(),
		UserID:    userID,
		Token:     s.tokenGenerator(),
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.PutSession(ctx, session); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// CurrentSession reads the singleton slot. An expired session deletes itself
// and reports ErrSessionExpired, which also matches ErrNotFound so a repeat
// call behaves identically to an empty slot.
func (s *AuthService) CurrentSession(ctx context.Context) (persistence.Session, error) {
	if s == nil || s.sessions == nil {
		return persistence.Session{}, fmt.Errorf("session store not configured")
	}

	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Session{}, ErrNotFound
		}
		return persistence.Session{}, err
	}

	if !session.ExpiresAt.After(s.now()) {
		if err := s.sessions.DeleteSession(ctx); err != nil {
			return persistence.Session{}, err
		}
		s.loggerWith(ctx, "CurrentSession").InfoContext(ctx, "expired session removed", "session_id", session.ID)
		return persistence.Session{}, ErrSessionExpired
	}

	return session, nil
}

// CurrentUser resolves the user behind the singleton session. A dangling
// session (user no longer present) clears the slot.
func (s *AuthService) CurrentUser(ctx context.Context) (persistence.User, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return persistence.User{}, err
	}

	user, err := s.users.FindUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			if clearErr := s.sessions.DeleteSession(ctx); clearErr != nil {
				return persistence.User{}, clearErr
			}
			return persistence.User{}, ErrNotFound
		}
		return persistence.User{}, err
	}
	return user, nil
}

// ValidateSession checks a presented token against the singleton slot and
// returns the principal it authenticates.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Principal{}, ErrUnauthorized
	}

	session, err := s.CurrentSession(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}
	if session.Token != trimmed {
		return Principal{}, ErrUnauthorized
	}

	return Principal{UserID: session.UserID}, nil
}

// Logout clears the singleton session slot. Absence is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("session store not configured")
	}
	if err := s.sessions.DeleteSession(ctx); err != nil {
		s.loggerWith(ctx, "Logout").ErrorContext(ctx, "failed to clear session", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	s.loggerWith(ctx, "Logout").InfoContext(ctx, "session cleared")
	return nil
}

// fabricateUser builds a prototype account from a login identifier.
func (s *AuthService) fabricateUser(identifier string) persistence.User {
	displayName := identifier
	if at := strings.Index(identifier, "@"); at >= 0 {
		displayName = identifier[:at]
	}
	if displayName == "" {
		displayName = "User"
	}
	return persistence.User{
		ID:          s.idGenerator(),
		Email:       identifier,
		DisplayName: displayName,
		Country:     "US",
		Team:        "other",
		Role:        "attendee",
		CreatedAt:   s.now(),
	}
}

func validateRegisterParams(params RegisterParams, email string) *ValidationError {
	vErr := &ValidationError{}

	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if strings.TrimSpace(params.Password) == "" {
		vErr.add("password", "password is required")
	}
	if strings.TrimSpace(params.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if strings.TrimSpace(params.Country) == "" {
		vErr.add("country", "country is required")
	}
	if strings.TrimSpace(params.Team) == "" {
		vErr.add("team", "team is required")
	}

	return vErr
}
