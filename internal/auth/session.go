package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/platebook/platebook/internal/model"
)

const tokenIssuer = "platebook"

// ErrInvalidToken indicates a token failed signature or claims validation.
// Expired, tampered, and malformed tokens all map here.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the JWT claims embedded in a session token.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionIssuer mints and verifies signed session tokens.
// The signing secret is process-wide state injected once at startup.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer creates a SessionIssuer with the given signing secret
// and session lifetime.
func NewSessionIssuer(secret string, ttl time.Duration) (*SessionIssuer, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &SessionIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock overrides the time source. Intended for tests.
func (i *SessionIssuer) WithClock(now func() time.Time) *SessionIssuer {
	i.now = now
	return i
}

// Issue mints a new session for a verified user identity.
// The token is an HS256-signed JWT whose jti is a fresh ULID session ID.
func (i *SessionIssuer) Issue(userID, email string) (*model.Session, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}

	now := i.now().UTC()
	sessionID := ulid.Make().String()

	claims := SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &model.Session{
		ID:        sessionID,
		Token:     signed,
		UserID:    userID,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}, nil
}

// Verify validates a session token and returns its claims.
// Returns ErrInvalidToken for any failure: bad signature, wrong algorithm,
// expiry, or missing claims.
func (i *SessionIssuer) Verify(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TTL returns the configured session lifetime.
func (i *SessionIssuer) TTL() time.Duration {
	return i.ttl
}
