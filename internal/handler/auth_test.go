package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/platebook/platebook/internal/auth"
	"github.com/platebook/platebook/internal/cache"
	"github.com/platebook/platebook/internal/handler/dto"
	"github.com/platebook/platebook/internal/middleware"
	"github.com/platebook/platebook/internal/model"
	"github.com/platebook/platebook/internal/repository"
	"github.com/platebook/platebook/internal/service"
)

type stubSessionStore struct {
	records map[string]*cache.SessionRecord
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{records: make(map[string]*cache.SessionRecord)}
}

func (s *stubSessionStore) PutSession(_ context.Context, sessionID string, rec *cache.SessionRecord, _ time.Duration) error {
	s.records[sessionID] = rec
	return nil
}

func (s *stubSessionStore) DeleteSession(_ context.Context, sessionID string) error {
	delete(s.records, sessionID)
	return nil
}

func newAuthHandler(t *testing.T) (*AuthHandler, *stubSessionStore) {
	t.Helper()

	store := repository.NewMemory()
	hash, err := auth.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := store.CreateUser(context.Background(), &model.User{
		ID:           "01HTESTUSER0000000000000000",
		Email:        "alice@example.com",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	issuer, err := auth.NewSessionIssuer("handler-test-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewSessionIssuer: %v", err)
	}

	sessions := newStubSessionStore()
	svc := service.NewAuthService(store, issuer, sessions, nil)
	return NewAuthHandler(svc, discardLogger(), false), sessions
}

func TestLoginSuccess(t *testing.T) {
	h, sessions := newAuthHandler(t)

	payload := []byte(`{"email":"alice@example.com","password":"correct horse battery staple"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp dto.LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected token in response")
	}
	if remaining := time.Until(resp.ExpiresAt); remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Errorf("expected ~24h expiry, got %v", remaining)
	}

	cookies := rr.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.Value != resp.Token {
		t.Error("cookie value does not match response token")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	if len(sessions.records) != 1 {
		t.Errorf("expected 1 stored session record, got %d", len(sessions.records))
	}
}

func TestLoginFailureUniform(t *testing.T) {
	h, _ := newAuthHandler(t)

	bodies := []string{
		`{"email":"alice@example.com","password":"wrong"}`,
		`{"email":"nobody@example.com","password":"wrong"}`,
		`{"email":"","password":""}`,
	}

	var responses []string
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(body)))
		rr := httptest.NewRecorder()
		h.Login(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", body, rr.Code)
		}
		responses = append(responses, rr.Body.String())
	}

	// Unknown email and wrong password are indistinguishable.
	for i := 1; i < len(responses); i++ {
		if responses[i] != responses[0] {
			t.Errorf("failure responses differ: %q vs %q", responses[0], responses[i])
		}
	}
}

func TestLoginInvalidJSON(t *testing.T) {
	h, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("{")))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLogout(t *testing.T) {
	h, sessions := newAuthHandler(t)
	sessions.records["sess-1"] = &cache.SessionRecord{UserID: "u1"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	ctx := auth.ContextWithAuth(req.Context(), &model.AuthContext{
		UserID:    "u1",
		Email:     "alice@example.com",
		SessionID: "sess-1",
	})
	rr := httptest.NewRecorder()
	h.Logout(rr, req.WithContext(ctx))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if _, ok := sessions.records["sess-1"]; ok {
		t.Error("expected session record destroyed")
	}
}

func TestLogoutWithoutIdentity(t *testing.T) {
	h, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
