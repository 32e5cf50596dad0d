package submission

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aarhusstadsarkiv/smart-client/internal/document"
	"github.com/aarhusstadsarkiv/smart-client/internal/httpclient"
	"github.com/aarhusstadsarkiv/smart-client/internal/observability"
)

// maxErrorBody bounds how much of an error response body is captured into
// a RemoteError.
const maxErrorBody = 4096

// Client retrieves submission documents from the intake API.
type Client struct {
	http    httpclient.Getter
	baseURL string
	logger  observability.Logger
	metrics observability.Metrics
}

// NewClient creates a submission client against the given base URL.
func NewClient(http httpclient.Getter, baseURL string, logger observability.Logger, metrics observability.Metrics) *Client {
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.WithFields(map[string]interface{}{"component": "submission"}),
		metrics: metrics,
	}
}

// Fetch retrieves and parses the submission document for the given id.
// A failure here is fatal to the run, so there are no retries: 404 maps to
// ErrNotFound, 401/403 to ErrAccessDenied, and any other non-200 status to
// a RemoteError carrying status and body.
func (c *Client) Fetch(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	endpoint := c.baseURL + "/" + id.String()
	c.logger.Info("fetching submission", "uuid", id.String())

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		c.metrics.IncrementCounter("submission.fetch.errors", map[string]string{"reason": "transport"})
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.IncrementCounter("submission.fetch.errors", map[string]string{"reason": "not_found"})
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.metrics.IncrementCounter("submission.fetch.errors", map[string]string{"reason": "access_denied"})
		return nil, ErrAccessDenied
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.metrics.IncrementCounter("submission.fetch.errors", map[string]string{"reason": "remote"})
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission body: %w", err)
	}

	doc, err := document.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse submission: %w", err)
	}

	c.metrics.IncrementCounter("submission.fetch.success", nil)
	return doc, nil
}
