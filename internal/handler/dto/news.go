package dto

import (
	"time"

	"github.com/platebook/platebook/internal/model"
)

// ArticleResponse represents an external news article in API responses.
type ArticleResponse struct {
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ArticleListResponse represents a list of articles.
type ArticleListResponse struct {
	Data []ArticleResponse `json:"data"`
}

// ToArticleListResponse converts articles to a list response DTO.
func ToArticleListResponse(articles []model.Article) ArticleListResponse {
	data := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		data = append(data, ArticleResponse{
			Title:       a.Title,
			Source:      a.Source,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return ArticleListResponse{Data: data}
}
