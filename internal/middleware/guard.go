package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/platebook/platebook/internal/auth"
	"github.com/platebook/platebook/internal/config"
	"github.com/platebook/platebook/internal/metrics"
	"github.com/platebook/platebook/internal/model"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// TokenVerifier validates a session token's signature and claims.
// Satisfied by auth.SessionIssuer.
type TokenVerifier interface {
	Verify(token string) (*auth.SessionClaims, error)
}

// SessionChecker reports whether a session record is still live.
// Satisfied by the Redis cache.
type SessionChecker interface {
	SessionExists(ctx context.Context, sessionID string) (bool, error)
}

// GuardConfig holds configuration for the access guard middleware.
type GuardConfig struct {
	Logger     *slog.Logger
	Verifier   TokenVerifier
	Sessions   SessionChecker
	Rules      []config.PathRule
	SignInPath string
	Metrics    metrics.Recorder
}

// Guard returns the access guard middleware. Each request walks the ordered
// path rules; the first matching rule decides the enforcement mode. Requests
// matching no rule pass through unchanged. For matched paths the session
// token is validated and the resolved identity attached to the request
// context. The decision here is final: handlers never re-run it.
func Guard(cfg GuardConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rule, matched := matchRule(cfg.Rules, r.URL.Path)
			if !matched {
				recorder.IncGuardDecision(metrics.DecisionAllowed)
				recorder.ObserveGuardDuration(time.Since(start))
				next.ServeHTTP(w, r)
				return
			}

			token := extractSessionToken(r)
			if token == "" {
				cfg.rejected(w, r, rule, "missing_token", recorder, start)
				return
			}

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				cfg.rejected(w, r, rule, "invalid_token", recorder, start)
				return
			}

			live, err := cfg.Sessions.SessionExists(r.Context(), claims.ID)
			if err != nil {
				// Session store unreachable: fail closed.
				cfg.Logger.Error("session lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				cfg.rejected(w, r, rule, "session_store_error", recorder, start)
				return
			}
			if !live {
				cfg.rejected(w, r, rule, "revoked_session", recorder, start)
				return
			}

			recorder.IncGuardDecision(metrics.DecisionAllowed)
			recorder.ObserveGuardDuration(time.Since(start))

			ctx := auth.ContextWithAuth(r.Context(), &model.AuthContext{
				UserID:    claims.Subject,
				Email:     claims.Email,
				SessionID: claims.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejected terminates the request per the rule's enforcement mode.
func (cfg GuardConfig) rejected(w http.ResponseWriter, r *http.Request, rule config.PathRule, reason string, recorder metrics.Recorder, start time.Time) {
	cfg.Logger.Warn("access denied",
		slog.String("reason", reason),
		slog.String("path", r.URL.Path),
		slog.String("pattern", rule.Pattern),
		slog.String("mode", rule.Mode),
		slog.String("request_id", GetRequestID(r.Context())),
	)

	if rule.Mode == config.ModeRedirect {
		recorder.IncGuardDecision(metrics.DecisionRedirected)
		recorder.ObserveGuardDuration(time.Since(start))

		target := cfg.SignInPath + "?" + url.Values{"error": {"unauthenticated"}}.Encode()
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	recorder.IncGuardDecision(metrics.DecisionDenied)
	recorder.ObserveGuardDuration(time.Since(start))
	writeGuardError(w)
}

// matchRule returns the first rule whose pattern matches the path.
// A trailing '*' matches any suffix; patterns without it match exactly.
func matchRule(rules []config.PathRule, path string) (config.PathRule, bool) {
	for _, rule := range rules {
		if pathMatches(rule.Pattern, path) {
			return rule, true
		}
	}
	return config.PathRule{}, false
}

func pathMatches(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return pattern == path
}

// extractSessionToken pulls the session token from the request.
// Checked in order: session cookie, Authorization bearer header, and the
// "token" query parameter for the query-gated variant.
func extractSessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return r.URL.Query().Get("token")
}

// writeGuardError writes a 401 Unauthorized response.
// Uses the same message for all failures to prevent probing.
func writeGuardError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Valid session required"}}`))
}
