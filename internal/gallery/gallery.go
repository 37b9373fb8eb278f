// Package gallery talks to a Pixabay-compatible image search API.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/pixmark/internal/logging"
)

const (
	DefaultBaseURL = "https://pixabay.com/api/"
	DefaultTimeout = 10 * time.Second

	DefaultPerPage = 20
	MinPerPage     = 3
	MaxPerPage     = 200

	// The gallery shown when no query is given.
	DefaultQuery = "nature"
	DefaultCount = 12
)

// ImageRecord describes one search hit. Field names follow the upstream API.
type ImageRecord struct {
	ID           int    `json:"id"`
	WebformatURL string `json:"webformatURL"`
	FullURL      string `json:"largeImageURL"`
	User         string `json:"user"`
	Tags         string `json:"tags"`
	Width        int    `json:"imageWidth"`
	Height       int    `json:"imageHeight"`
}

// PreviewURL returns the medium sized rendition.
func (r ImageRecord) PreviewURL() string { return r.WebformatURL }

// Attribution returns the credited author.
func (r ImageRecord) Attribution() string { return r.User }

// SourceURL returns the best URL to load for editing.
func (r ImageRecord) SourceURL() string {
	if r.FullURL != "" {
		return r.FullURL
	}
	return r.WebformatURL
}

var (
	ErrEmptyQuery      = errors.New("search query cannot be empty")
	ErrMissingAPIKey   = errors.New("search API key is not configured")
	ErrRateLimited     = errors.New("rate limit exceeded, try again later")
	ErrInvalidQuery    = errors.New("invalid search query")
	ErrInvalidResponse = errors.New("invalid response from search API")
)

// TransportError reports a failed request that is not one of the sentinel
// conditions.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("search request failed: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("search request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client queries the search API.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTP       *http.Client
	SafeSearch bool
	Timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) Option { return func(c *Client) { c.BaseURL = u } }

// WithHTTPClient replaces the transport.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.HTTP = h } }

// WithSafeSearch toggles the safesearch parameter.
func WithSafeSearch(on bool) Option { return func(c *Client) { c.SafeSearch = on } }

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.Timeout = d } }

// NewClient returns a client with the upstream defaults applied.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTP:       http.DefaultClient,
		SafeSearch: true,
		Timeout:    DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ClampPerPage maps a requested result count into the accepted range. Zero
// or negative means the default.
func ClampPerPage(n int) int {
	if n <= 0 {
		return DefaultPerPage
	}
	return max(MinPerPage, min(n, MaxPerPage))
}

type searchResponse struct {
	Total     int           `json:"total"`
	TotalHits int           `json:"totalHits"`
	Hits      []ImageRecord `json:"hits"`
}

// Search returns up to perPage photos matching query.
func (c *Client) Search(ctx context.Context, query string, perPage int) ([]ImageRecord, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("parse base url: %w", err)}
	}
	params := u.Query()
	params.Set("key", c.APIKey)
	params.Set("q", q)
	params.Set("image_type", "photo")
	params.Set("per_page", strconv.Itoa(ClampPerPage(perPage)))
	params.Set("safesearch", strconv.FormatBool(c.SafeSearch))
	u.RawQuery = params.Encode()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	logging.Logger().Debug("gallery: search", "q", q, "per_page", params.Get("per_page"))

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Logger().Warn("gallery: close body", "err", cerr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidQuery
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TransportError{Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	// an empty list decodes to a non-nil slice; a missing one stays nil
	if out.Hits == nil {
		return nil, ErrInvalidResponse
	}
	logging.Logger().Debug("gallery: results", "q", q, "hits", len(out.Hits), "total", out.TotalHits)
	return out.Hits, nil
}
