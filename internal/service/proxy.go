// Package service implements the http_proxy forwarding logic.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/http/httpguts"
	"golang.org/x/text/encoding/htmlindex"

	"webview-bridge/internal/client"
	"webview-bridge/internal/metrics"
	"webview-bridge/internal/model"
)

// Failure kinds. Every error returned by Forward wraps exactly one of these,
// and its message is what the front-end sees.
var (
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
	ErrHeaderParse       = errors.New("failed to parse headers")
	ErrRequestFailed     = errors.New("request failed")
	ErrBodyRead          = errors.New("failed to read response body")
	ErrSerialization     = errors.New("failed to serialize response")
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
	http.MethodHead:   true,
}

// ProxyService performs front-end requests on the front-end's behalf.
// It holds no per-call state and is safe for concurrent use.
type ProxyService struct {
	client  *client.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewProxyService creates a ProxyService.
// The metrics parameter is optional; pass nil to disable failure counting.
func NewProxyService(c *client.Client, logger *slog.Logger, m *metrics.Metrics) *ProxyService {
	return &ProxyService{
		client:  c,
		logger:  logger.With("component", "proxy_service"),
		metrics: m,
	}
}

// Forward performs the request described by pr and returns the response
// serialized as a JSON object {status, body, headers}.
func (s *ProxyService) Forward(ctx context.Context, pr *model.ProxyRequest) (string, error) {
	resp, err := s.Do(ctx, pr)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", s.fail(pr, fmt.Errorf("%w: %w", ErrSerialization, err))
	}
	return string(out), nil
}

// Do performs the request described by pr and returns the collected response.
// Validation failures are reported before any network activity.
func (s *ProxyService) Do(ctx context.Context, pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	method := strings.ToUpper(pr.Method)
	if !allowedMethods[method] {
		return nil, s.fail(pr, fmt.Errorf("%w: %s", ErrUnsupportedMethod, pr.Method))
	}

	header, err := parseHeaders(pr.Headers)
	if err != nil {
		return nil, s.fail(pr, err)
	}

	// The body goes out as given, whatever the method.
	var body io.Reader
	if pr.Body != nil {
		body = strings.NewReader(*pr.Body)
	}

	s.logger.Debug("forwarding request", "method", method, "url", pr.URL)

	resp, err := s.client.Do(ctx, method, pr.URL, header, body)
	if err != nil {
		return nil, s.fail(pr, fmt.Errorf("%w: %w", ErrRequestFailed, err))
	}
	defer func() { _ = resp.Body.Close() }()

	text, err := readBody(resp)
	if err != nil {
		return nil, s.fail(pr, err)
	}

	return &model.ProxyResponse{
		Status:  uint16(resp.StatusCode),
		Body:    text,
		Headers: collectHeaders(resp.Header),
	}, nil
}

// fail records err against its failure kind and returns it unchanged.
func (s *ProxyService) fail(pr *model.ProxyRequest, err error) error {
	kind := Kind(err)
	s.logger.Debug("forward failed", "kind", kind, "method", pr.Method, "err", err)
	if s.metrics != nil {
		s.metrics.Forward.Failures.WithLabelValues(kind).Inc()
	}
	return err
}

// Kind returns a short label for the failure kind err wraps, or "unknown".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedMethod):
		return "unsupported_method"
	case errors.Is(err, ErrHeaderParse):
		return "header_parse"
	case errors.Is(err, ErrRequestFailed):
		return "request_failed"
	case errors.Is(err, ErrBodyRead):
		return "body_read"
	case errors.Is(err, ErrSerialization):
		return "serialization"
	default:
		return "unknown"
	}
}

// parseHeaders decodes a serialized string-to-string JSON object. A null
// payload or a null value is a parse error. Entries that are not a valid field
// name or a visible-ASCII field value are dropped without error.
func parseHeaders(raw *string) (http.Header, error) {
	header := make(http.Header)
	if raw == nil {
		return header, nil
	}

	var m map[string]*string
	if err := json.Unmarshal([]byte(*raw), &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderParse, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: expected an object, got null", ErrHeaderParse)
	}

	for k, v := range m {
		if v == nil {
			return nil, fmt.Errorf("%w: header %q is null", ErrHeaderParse, k)
		}
		if !httpguts.ValidHeaderFieldName(k) || !validHeaderValue(*v) {
			continue
		}
		header.Set(k, *v)
	}
	return header, nil
}

// validHeaderValue reports whether v is a field value made of visible ASCII,
// spaces and tabs only.
func validHeaderValue(v string) bool {
	if !httpguts.ValidHeaderFieldValue(v) {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// collectHeaders flattens response headers into lower-cased keys. Values that
// are not valid UTF-8 are dropped; for repeated headers the last valid value wins.
func collectHeaders(src http.Header) map[string]string {
	dst := make(map[string]string, len(src))
	for key, vals := range src {
		for _, v := range vals {
			if utf8.ValidString(v) {
				dst[strings.ToLower(key)] = v
			}
		}
	}
	return dst
}

// readBody reads the whole body and decodes it to UTF-8 using the charset
// declared in Content-Type, defaulting to UTF-8.
func readBody(resp *http.Response) (string, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBodyRead, err)
	}

	charset := responseCharset(resp.Header.Get("Content-Type"))
	if charset != "" && charset != "utf-8" && charset != "utf8" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrBodyRead, err)
		}
		if raw, err = enc.NewDecoder().Bytes(raw); err != nil {
			return "", fmt.Errorf("%w: decode %s: %w", ErrBodyRead, charset, err)
		}
	}

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: body is not valid UTF-8", ErrBodyRead)
	}
	return string(raw), nil
}

func responseCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}
