package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Search(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/everything" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("expected query golang, got %s", got)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("expected API key header, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"title": "Go 1.22 released",
					"url": "https://example.com/go122",
					"publishedAt": "2024-02-06T12:00:00Z",
					"source": {"name": "Example News"}
				},
				{
					"title": "No date article",
					"url": "https://example.com/nodate",
					"source": {"name": "Example News"}
				}
			]
		}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "test-key")

	articles, err := client.Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Go 1.22 released" {
		t.Errorf("unexpected title: %s", articles[0].Title)
	}
	if articles[0].Source != "Example News" {
		t.Errorf("unexpected source: %s", articles[0].Source)
	}
	if articles[0].PublishedAt == nil {
		t.Error("expected published timestamp")
	}
	if articles[1].PublishedAt != nil {
		t.Error("expected nil timestamp for article without date")
	}
}

func TestClient_Search_UpstreamError(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "")

	_, err := client.Search(context.Background(), "golang")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestClient_Search_UndecodableBody(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "")

	_, err := client.Search(context.Background(), "golang")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestClient_Search_ConnectionRefused(t *testing.T) {
	t.Parallel()

	// Server shut down before the call: connection errors also degrade to
	// ErrUpstreamUnavailable.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	client := NewClient(upstream.URL, "")

	_, err := client.Search(context.Background(), "golang")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
