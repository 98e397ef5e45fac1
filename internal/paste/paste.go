// Package paste publishes transcripts to a hastebin-compatible paste
// service and returns shareable links.
package paste

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/edgard/recbot/internal/errors"
)

const (
	// DefaultBaseURL is the public hastebin instance.
	DefaultBaseURL = "https://hastebin.com"
	// DefaultTimeout bounds one publish call.
	DefaultTimeout = 30 * time.Second

	maxResponseSize = 64 * 1024
)

// Publisher uploads text and returns a link to it.
type Publisher interface {
	Publish(ctx context.Context, text string) (string, error)
}

// Client is a Publisher for hastebin-style services: POST <base>/documents
// with the raw body, answered with {"key": "<id>"}, viewable at <base>/<id>.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Publisher = (*Client)(nil)

// NewClient creates a paste client. An empty baseURL uses DefaultBaseURL and
// a non-positive timeout uses DefaultTimeout. A nil httpClient gets a fresh
// client with the timeout applied.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("component", "paste"),
	}
}

type documentResponse struct {
	Key string `json:"key"`
}

// Publish uploads text and returns its link. Network failures, non-2xx
// responses and responses without a key fail with a CodeUpstream error.
// Publish does not retry.
func (c *Client) Publish(ctx context.Context, text string) (string, error) {
	startTime := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents", bytes.NewReader([]byte(text)))
	if err != nil {
		return "", fmt.Errorf("failed to create paste request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewUpstreamError("paste request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.WarnContext(ctx, "Failed to close paste response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", apperrors.NewUpstreamError("failed to read paste response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperrors.NewUpstreamError(fmt.Sprintf("paste service returned status %d", resp.StatusCode), nil)
	}

	var doc documentResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", apperrors.NewUpstreamError("failed to decode paste response", err)
	}
	if doc.Key == "" {
		return "", apperrors.NewUpstreamError("paste response has no key", nil)
	}

	link := c.baseURL + "/" + doc.Key
	c.logger.InfoContext(ctx, "Published paste",
		"bytes", len(text),
		"key", doc.Key,
		"duration", time.Since(startTime))
	return link, nil
}
