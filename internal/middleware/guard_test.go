package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/platebook/platebook/internal/auth"
	"github.com/platebook/platebook/internal/config"
	"github.com/platebook/platebook/internal/metrics"
)

type fakeSessionChecker struct {
	live map[string]bool
	err  error
}

func (f *fakeSessionChecker) SessionExists(_ context.Context, sessionID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.live[sessionID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGuard(t *testing.T, rules []config.PathRule, sessions *fakeSessionChecker, rec metrics.Recorder) (http.Handler, *auth.SessionIssuer) {
	t.Helper()

	issuer, err := auth.NewSessionIssuer("test-secret-key-for-guard", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionIssuer: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authCtx := auth.AuthFromContext(r.Context()); authCtx != nil {
			w.Header().Set("X-Test-User", authCtx.UserID)
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := Guard(GuardConfig{
		Logger:     testLogger(),
		Verifier:   issuer,
		Sessions:   sessions,
		Rules:      rules,
		SignInPath: "/signin",
		Metrics:    rec,
	})(inner)

	return handler, issuer
}

func issueLiveToken(t *testing.T, issuer *auth.SessionIssuer, sessions *fakeSessionChecker) string {
	t.Helper()
	session, err := issuer.Issue("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sessions.live[session.ID] = true
	return session.Token
}

func TestGuardUnmatchedPathPassesThrough(t *testing.T) {
	rules := []config.PathRule{{Pattern: "/api/*", Mode: config.ModeDeny}}
	sessions := &fakeSessionChecker{live: map[string]bool{}}
	handler, _ := testGuard(t, rules, sessions, metrics.NewInMemory())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for unmatched path, got %d", rr.Code)
	}
}

func TestGuardDenyModeWithoutToken(t *testing.T) {
	rules := []config.PathRule{{Pattern: "/api/*", Mode: config.ModeDeny}}
	sessions := &fakeSessionChecker{live: map[string]bool{}}
	rec := metrics.NewInMemory()
	handler, _ := testGuard(t, rules, sessions, rec)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	var body map[string]map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"]["code"] != "UNAUTHORIZED" {
		t.Errorf("expected UNAUTHORIZED code, got %q", body["error"]["code"])
	}

	if got := rec.Snapshot().GuardDenied; got != 1 {
		t.Errorf("expected 1 denied decision recorded, got %d", got)
	}
}

func TestGuardRedirectModeWithoutToken(t *testing.T) {
	rules := []config.PathRule{{Pattern: "/dashboard*", Mode: config.ModeRedirect}}
	sessions := &fakeSessionChecker{live: map[string]bool{}}
	rec := metrics.NewInMemory()
	handler, _ := testGuard(t, rules, sessions, rec)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/signin?error=unauthenticated" {
		t.Errorf("unexpected redirect target %q", loc)
	}

	if got := rec.Snapshot().GuardRedirected; got != 1 {
		t.Errorf("expected 1 redirected decision recorded, got %d", got)
	}
}

func TestGuardValidTokenSources(t *testing.T) {
	rules := []config.PathRule{{Pattern: "/api/*", Mode: config.ModeDeny}}

	tests := []struct {
		name   string
		attach func(r *http.Request, token string)
	}{
		{
			name: "session cookie",
			attach: func(r *http.Request, token string) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
			},
		},
		{
			name: "bearer header",
			attach: func(r *http.Request, token string) {
				r.Header.Set("Authorization", "Bearer "+token)
			},
		},
		{
			name: "query parameter",
			attach: func(r *http.Request, token string) {
				q := r.URL.Query()
				q.Set("token", token)
				r.URL.RawQuery = q.Encode()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessionChecker{live: map[string]bool{}}
			handler, issuer := testGuard(t, rules, sessions, metrics.NewInMemory())
			token := issueLiveToken(t, issuer, sessions)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
			tt.attach(req, token)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			if got := rr.Header().Get("X-Test-User"); got != "user-1" {
				t.Errorf("expected identity attached to context, got user %q", got)
			}
		})
	}
}

func TestGuardRejectsBadTokens(t *testing.T) {
	rules := []config.PathRule{{Pattern: "/api/*", Mode: config.ModeDeny}}

	t.Run("tampered token", func(t *testing.T) {
		sessions := &fakeSessionChecker{live: map[string]bool{}}
		handler, issuer := testGuard(t, rules, sessions, metrics.NewInMemory())
		token := issueLiveToken(t, issuer, sessions)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for tampered token, got %d", rr.Code)
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		sessions := &fakeSessionChecker{live: map[string]bool{}}
		handler, issuer := testGuard(t, rules, sessions, metrics.NewInMemory())

		session, err := issuer.Issue("user-1", "alice@example.com")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		// Session record absent: logged out.

		req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
		req.Header.Set("Authorization", "Bearer "+session.Token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for revoked session, got %d", rr.Code)
		}
	})

	t.Run("session store error fails closed", func(t *testing.T) {
		sessions := &fakeSessionChecker{live: map[string]bool{}, err: errors.New("redis down")}
		handler, issuer := testGuard(t, rules, sessions, metrics.NewInMemory())
		token := issueLiveToken(t, issuer, sessions)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 when session store unavailable, got %d", rr.Code)
		}
	})
}

func TestGuardFirstMatchingRuleWins(t *testing.T) {
	rules := []config.PathRule{
		{Pattern: "/dashboard/api*", Mode: config.ModeDeny},
		{Pattern: "/dashboard*", Mode: config.ModeRedirect},
	}
	sessions := &fakeSessionChecker{live: map[string]bool{}}
	handler, _ := testGuard(t, rules, sessions, metrics.NewInMemory())

	req := httptest.NewRequest(http.MethodGet, "/dashboard/api/widgets", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected deny rule to match first, got %d", rr.Code)
	}
}

func TestPathMatches(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/dashboard", "/dashboard", true},
		{"/dashboard", "/dashboard/x", false},
		{"/dashboard*", "/dashboard", true},
		{"/dashboard*", "/dashboard/settings", true},
		{"/dashboard*", "/dash", false},
		{"/api/v1/recipes*", "/api/v1/recipes/42", true},
		{"*", "/anything", true},
	}

	for _, tt := range tests {
		if got := pathMatches(tt.pattern, tt.path); got != tt.want {
			t.Errorf("pathMatches(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}
