package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/platebook/platebook/internal/handler/dto"
	"github.com/platebook/platebook/internal/metrics"
	"github.com/platebook/platebook/internal/model"
	"github.com/platebook/platebook/internal/news"
)

// NewsSearcher queries the external news provider.
// Satisfied by news.Client.
type NewsSearcher interface {
	Search(ctx context.Context, query string) ([]model.Article, error)
}

// NewsHandler handles HTTP requests for the proxied news feed.
type NewsHandler struct {
	searcher NewsSearcher
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(searcher NewsSearcher, logger *slog.Logger, recorder metrics.Recorder) *NewsHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &NewsHandler{
		searcher: searcher,
		logger:   logger,
		metrics:  recorder,
	}
}

// Search handles GET /api/v1/news.
// Provider failures degrade to a 502 payload; they never take the
// service down with them.
func (h *NewsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "Query parameter q is required")
		return
	}

	articles, err := h.searcher.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, news.ErrUpstreamUnavailable) {
			h.metrics.IncUpstreamError()
			h.logger.Warn("news_upstream_unavailable", "error", err)
			writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "News provider is unavailable")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToArticleListResponse(articles))
}
