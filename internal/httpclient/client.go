// Package httpclient provides the authenticated HTTP client used against
// the intake API. Authentication is a static api-key appended as a query
// parameter to every request.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aarhusstadsarkiv/smart-client/internal/config"
)

// Getter is the outbound HTTP port of the pipeline. The submission fetcher
// and the file downloader both depend on it so tests can swap in fakes.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// Client implements Getter over net/http. Requests are issued one at a
// time with no retries; a failure surfaces directly to the caller.
type Client struct {
	client    *http.Client
	apiKey    string
	userAgent string
}

// New creates a client. A zero timeout means the transport default.
func New(cfg config.HTTPConfig, apiKey string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey:    apiKey,
		userAgent: cfg.UserAgent,
	}
}

// Get issues an authenticated GET. The caller owns the response body.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	authenticated, err := appendAPIKey(rawURL, c.apiKey)
	if err != nil {
		return nil, fmt.Errorf("invalid request url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authenticated, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// appendAPIKey adds the api-key query parameter, preserving any parameters
// already present on the URL.
func appendAPIKey(rawURL, apiKey string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("api-key", apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
