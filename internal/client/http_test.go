package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"webview-bridge/internal/config"
	"webview-bridge/internal/metrics"
)

func newTestClient(t *testing.T, cfg *config.Config, m *metrics.Metrics) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(cfg, logger, m)
}

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("X-Test = %q, want %q", r.Header.Get("X-Test"), "1")
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer srv.Close()

	c := newTestClient(t, config.Default(), nil)

	header := http.Header{}
	header.Set("X-Test", "1")
	resp, err := c.Do(context.Background(), http.MethodPost, srv.URL, header, strings.NewReader("hi"))
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != "echo:hi" {
		t.Errorf("body = %q, want %q", body, "echo:hi")
	}
}

func TestClient_Do_Unreachable(t *testing.T) {
	c := newTestClient(t, config.Default(), nil)

	_, err := c.Do(context.Background(), http.MethodGet, "http://127.0.0.1:1/nonexistent", nil, nil)
	if err == nil {
		t.Fatal("Do() expected error for unreachable host, got nil")
	}
}

func TestClient_Do_BadURL(t *testing.T) {
	c := newTestClient(t, config.Default(), nil)

	_, err := c.Do(context.Background(), http.MethodGet, "://missing-scheme", nil, nil)
	if err == nil {
		t.Fatal("Do() expected error for malformed URL, got nil")
	}
}

func TestClient_Do_ConfiguredTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Forwarder.TimeoutSeconds = 1
	c := newTestClient(t, cfg, nil)

	start := time.Now()
	_, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err == nil {
		t.Fatal("Do() expected timeout error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 2500*time.Millisecond {
		t.Errorf("Do() took %v, expected the 1s client timeout to fire", elapsed)
	}
}

func TestClient_Do_RecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	m := metrics.New()
	c := newTestClient(t, config.Default(), m)

	resp, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	_ = resp.Body.Close()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	for _, f := range families {
		if f.GetName() != "webview_bridge_forward_responses_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["method"] == "GET" && labels["status_code"] == "418" {
				if v := metric.GetCounter().GetValue(); v != 1 {
					t.Errorf("counter value = %v, want 1", v)
				}
				return
			}
		}
	}
	t.Error("expected webview_bridge_forward_responses_total with method=GET, status_code=418")
}

func TestClient_Do_LeavesEncodingToCaller(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, _ = zw.Write([]byte("hello"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	acceptEncoding := make(chan []string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acceptEncoding <- r.Header.Values("Accept-Encoding")
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(compressed.Bytes())
	}))
	defer srv.Close()

	c := newTestClient(t, config.Default(), nil)
	resp, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := <-acceptEncoding; len(got) != 0 {
		t.Errorf("upstream saw Accept-Encoding %v, want none", got)
	}
	if got := resp.Header.Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Content-Encoding = %q, want %q", got, "gzip")
	}
	if resp.Uncompressed {
		t.Error("response was decompressed by the transport")
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(body, compressed.Bytes()) {
		t.Errorf("body = %q, want the gzip bytes as sent", body)
	}
}
