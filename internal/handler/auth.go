package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/platebook/platebook/internal/auth"
	"github.com/platebook/platebook/internal/handler/dto"
	"github.com/platebook/platebook/internal/middleware"
	"github.com/platebook/platebook/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	svc          *service.AuthService
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the session
// cookie Secure; disable only for local development over plain HTTP.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			// Same response for unknown email and wrong password.
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		h.logger.Error("login_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("session_issued",
		"user_id", session.UserID,
		"session_id", session.ID,
		"expires_at", session.ExpiresAt,
	)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles POST /api/v1/auth/logout. The route sits behind the access
// guard, so an identity is always attached here.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Valid session required")
		return
	}

	if err := h.svc.Logout(r.Context(), authCtx.SessionID); err != nil {
		h.logger.Error("logout_error", "error", err, "session_id", authCtx.SessionID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	// Expire the cookie client-side as well.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("session_destroyed", "session_id", authCtx.SessionID)

	w.WriteHeader(http.StatusNoContent)
}
