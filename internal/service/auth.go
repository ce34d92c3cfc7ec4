package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platebook/platebook/internal/auth"
	"github.com/platebook/platebook/internal/cache"
	"github.com/platebook/platebook/internal/metrics"
	"github.com/platebook/platebook/internal/model"
	"github.com/platebook/platebook/internal/repository"
)

// ErrAuthenticationFailed covers every credential failure: unknown email and
// wrong password produce this same error so callers cannot enumerate accounts.
var ErrAuthenticationFailed = errors.New("authentication failed")

// UserStore is the credential lookup contract.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionStore holds server-side session records.
// Satisfied by the Redis cache.
type SessionStore interface {
	PutSession(ctx context.Context, sessionID string, rec *cache.SessionRecord, ttl time.Duration) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// AuthService verifies credentials and manages session lifecycle.
type AuthService struct {
	users    UserStore
	issuer   *auth.SessionIssuer
	sessions SessionStore
	metrics  metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, issuer *auth.SessionIssuer, sessions SessionStore, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:    users,
		issuer:   issuer,
		sessions: sessions,
		metrics:  recorder,
	}
}

// Login verifies the credentials and issues a new session.
// On success the session record is stored server-side so logout can revoke
// it before the token's own expiry.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		s.metrics.IncLoginFailure()
		return nil, ErrAuthenticationFailed
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn the same hashing work as a real verification so the
			// unknown-user path is not observably faster.
			auth.DummyVerify(password)
			s.metrics.IncLoginFailure()
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailure()
		return nil, ErrAuthenticationFailed
	}

	session, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	rec := &cache.SessionRecord{
		UserID:    session.UserID,
		Email:     session.Email,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	}
	if err := s.sessions.PutSession(ctx, session.ID, rec, s.issuer.TTL()); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.metrics.IncLoginSuccess()

	return session, nil
}

// Logout destroys the session record. The signed token remains
// cryptographically valid until expiry, but the guard rejects it once the
// server-side record is gone.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
