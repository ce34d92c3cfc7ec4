// Package news isolates the external news provider behind a single adapter.
// The rest of the application depends on model.Article, never on the
// provider's response shape.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/platebook/platebook/internal/model"
)

const (
	// clientTimeout is the total request timeout.
	clientTimeout = 10 * time.Second
	// dialTimeout is the connection timeout.
	dialTimeout = 5 * time.Second
	// tlsHandshakeTimeout is the TLS negotiation timeout.
	tlsHandshakeTimeout = 5 * time.Second
	// responseHeaderTimeout is time to wait for response headers.
	responseHeaderTimeout = 5 * time.Second

	// maxResponseBody caps how much of the upstream response is read.
	maxResponseBody = 1 << 20 // 1MB
)

// ErrUpstreamUnavailable indicates the news provider could not serve the
// request: network failure, non-success status, or an undecodable body.
var ErrUpstreamUnavailable = errors.New("news provider unavailable")

// Client calls the external news provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a news provider client.
// The API key is process-wide secret state; it is sent as a header and
// never logged.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: clientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   tlsHandshakeTimeout,
				ResponseHeaderTimeout: responseHeaderTimeout,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// providerResponse mirrors the upstream wire format. It stays private to
// this package.
type providerResponse struct {
	Status   string            `json:"status"`
	Articles []providerArticle `json:"articles"`
}

type providerArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// Search fetches articles matching the query.
// Any provider failure degrades to ErrUpstreamUnavailable; the caller turns
// that into an error payload rather than crashing the request.
func (c *Client) Search(ctx context.Context, query string) ([]model.Article, error) {
	endpoint := fmt.Sprintf("%s/everything?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, sanitizeNetError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var body providerResponse
	decoder := json.NewDecoder(http.MaxBytesReader(nil, resp.Body, maxResponseBody))
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: undecodable response", ErrUpstreamUnavailable)
	}

	articles := make([]model.Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		article := model.Article{
			Title:  a.Title,
			Source: a.Source.Name,
			URL:    a.URL,
		}
		if a.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
				article.PublishedAt = &t
			}
		}
		articles = append(articles, article)
	}

	return articles, nil
}

// sanitizeNetError strips the request URL from transport errors so the API
// key never leaks into logs through a query string.
func sanitizeNetError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
