package handler

import (
	"log/slog"
	"net/http"

	"github.com/platebook/platebook/internal/auth"
	"github.com/platebook/platebook/internal/service"
)

// DashboardHandler serves the authenticated dashboard and the public
// sign-in page it redirects to.
type DashboardHandler struct {
	recipes *service.RecipeService
	logger  *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(recipes *service.RecipeService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		recipes: recipes,
		logger:  logger,
	}
}

// Dashboard handles GET /dashboard. The route sits behind the access guard
// in redirect mode, so unauthenticated visitors never reach it.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Valid session required")
		return
	}

	recent, err := h.recipes.ListRecipes(r.Context(), 5)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	titles := make([]string, 0, len(recent))
	for _, recipe := range recent {
		titles = append(titles, recipe.Title)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"email":          authCtx.Email,
		"user_id":        authCtx.UserID,
		"recent_recipes": titles,
	})
}

// SignIn handles GET /signin. Public; this is the redirect target for
// unauthenticated dashboard visits.
func (h *DashboardHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Sign in with POST /api/v1/auth/login",
	}
	if reason := r.URL.Query().Get("error"); reason != "" {
		response["error"] = reason
	}
	writeJSON(w, http.StatusOK, response)
}
