package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/platebook/platebook/internal/cache"
)

// LoginLimiter checks whether a client IP may attempt another login.
// Satisfied by the Redis cache.
type LoginLimiter interface {
	CheckLoginAttempts(ctx context.Context, clientIP string, max int) (*cache.LoginAttemptResult, error)
}

// LoginRateLimitConfig holds configuration for the login rate limiter.
type LoginRateLimitConfig struct {
	Logger  *slog.Logger
	Limiter LoginLimiter
	Enabled bool
	// MaxAttempts per IP per window.
	MaxAttempts int
}

// LoginRateLimit returns middleware that rate limits login attempts per
// client IP. Applied to the login endpoint only; it slows credential
// stuffing without affecting authenticated traffic.
func LoginRateLimit(cfg LoginRateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)

			result, err := cfg.Limiter.CheckLoginAttempts(r.Context(), ip, cfg.MaxAttempts)
			if err != nil {
				cfg.Logger.Error("login rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("ip", ip),
				)
				// Fail open - allow request
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				cfg.Logger.Warn("login rate limit exceeded",
					slog.String("ip", ip),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				msg := fmt.Sprintf(`{"error":{"code":"RATE_LIMITED","message":"Too many login attempts. Retry after %d seconds."}}`,
					int(result.RetryAfter.Seconds()))
				_, _ = w.Write([]byte(msg))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers for proxied requests.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// Take the first IP (client IP)
		for i := range xff {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	return r.RemoteAddr
}
