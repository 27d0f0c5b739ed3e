// Package client provides the outbound HTTP client used by the forwarder.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"webview-bridge/internal/config"
	"webview-bridge/internal/metrics"
)

// Client sends forwarded requests to arbitrary hosts.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a Client on a clone of the default transport.
// A zero forwarder timeout leaves the client without a deadline.
// The metrics parameter is optional; pass nil to disable metrics recording.
func NewClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	// Requests carry only the caller's headers and responses come back as sent,
	// Content-Encoding included.
	t.DisableCompression = true

	return &Client{
		httpClient: &http.Client{
			Transport: t,
			Timeout:   time.Duration(cfg.Forwarder.TimeoutSeconds) * time.Second,
		},
		logger:  logger.With("component", "http_client"),
		metrics: m,
	}
}

// Do executes a single HTTP request and returns the raw response.
// The caller is responsible for closing the response body.
func (c *Client) Do(ctx context.Context, method, url string, header http.Header, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if header != nil {
		req.Header = header
		// net/http ignores a Host entry in Header; it must go on the request.
		if host := header.Get("Host"); host != "" {
			req.Host = host
		}
	}

	c.logger.Debug("outbound request",
		"method", req.Method,
		"host", req.URL.Host,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller
	duration := time.Since(start).Seconds()

	label := metrics.NormalizeMethod(req.Method)
	if c.metrics != nil {
		c.metrics.Forward.Duration.WithLabelValues(label).Observe(duration)
	}
	if err != nil {
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.Forward.Responses.WithLabelValues(label, strconv.Itoa(resp.StatusCode)).Inc()
	}

	return resp, nil
}
