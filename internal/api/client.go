// Package api is the HTTP client for the platform's search endpoints:
// search, suggest, and search-status. It implements search.Backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quayside/dockhand/internal/search"
)

// DefaultTimeout bounds a single request when the caller's context carries
// no deadline of its own.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of an error response is read for the message.
const maxErrorBody = 4 << 10

// Client talks to the admin console backend.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// Compile-time check that Client implements search.Backend.
var _ search.Backend = (*Client)(nil)

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. https://console.example.com.
	BaseURL string

	// Timeout is the per-request timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base URL %q must be absolute", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{base: base, http: hc, logger: logger}, nil
}

// searchResponse is the wire shape of /api/v1/search. total is optional:
// basic-mode backends omit it.
type searchResponse struct {
	Hits   []search.Hit `json:"hits"`
	Total  *int         `json:"total,omitempty"`
	TookMs int64        `json:"took_ms"`
}

type suggestResponse struct {
	Suggestions []search.Suggestion `json:"suggestions"`
}

// Status reports the backend search mode.
type Status struct {
	FTS5 bool `json:"fts5"`
}

// Search runs a backend search. An aborted context surfaces as ctx.Err().
func (c *Client) Search(ctx context.Context, query string, q search.Query) (search.Page, error) {
	params := url.Values{"q": {query}}
	if q.Type != "" {
		params.Set("type", string(q.Type))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "/api/v1/search", params, &resp); err != nil {
		return search.Page{}, err
	}

	page := search.Page{Hits: resp.Hits, TookMs: resp.TookMs}
	if resp.Total != nil {
		page.Total = *resp.Total
		page.TotalKnown = true
	}
	return page, nil
}

// Suggest fetches completion hints.
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]search.Suggestion, error) {
	params := url.Values{"q": {query}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var resp suggestResponse
	if err := c.getJSON(ctx, "/api/v1/suggest", params, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// SearchStatus reports whether the backend runs in advanced (FTS5) mode.
// This only drives the mode indicator; search behavior is unchanged.
func (c *Client) SearchStatus(ctx context.Context) (Status, error) {
	var st Status
	if err := c.getJSON(ctx, "/api/v1/search/status", nil, &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := *c.base
	u.Path, _ = url.JoinPath(u.Path, path)
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("api: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("api: %s: unexpected status %d: %s", path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: %s: decode response: %w", path, err)
	}
	return nil
}
