package model

import "time"

// Article is a news item returned by the external news provider.
// The shape is owned by this application; the upstream response is
// translated into it by the news adapter.
type Article struct {
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
