package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"webview-bridge/internal/client"
	"webview-bridge/internal/config"
	"webview-bridge/internal/model"
	"webview-bridge/internal/service"
)

func newTestBridgeHandler() *BridgeHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewProxyService(client.NewClient(config.Default(), logger, nil), logger, nil)
	return NewBridgeHandler(svc, logger)
}

func postBridge(t *testing.T, h *BridgeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/bridge/http_proxy", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.HTTPProxy(c); err != nil {
		t.Fatalf("HTTPProxy() error = %v", err)
	}
	return rec
}

func TestBridgeHandler_HTTPProxy_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("X-Test = %q, want %q", r.Header.Get("X-Test"), "1")
		}
		b, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(b)
	}))
	defer upstream.Close()

	args, _ := json.Marshal(map[string]string{
		"url":     upstream.URL,
		"method":  "put",
		"headers": `{"X-Test":"1"}`,
		"body":    "payload",
	})

	rec := postBridge(t, newTestBridgeHandler(), string(args))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Errorf("Content-Type = %q, want JSON", ct)
	}

	var resp model.ProxyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != http.StatusAccepted {
		t.Errorf("resp.status = %d, want %d", resp.Status, http.StatusAccepted)
	}
	if resp.Body != "payload" {
		t.Errorf("resp.body = %q, want %q", resp.Body, "payload")
	}
	if resp.Headers["content-type"] != "text/plain" {
		t.Errorf("resp.headers[content-type] = %q", resp.Headers["content-type"])
	}
}

func TestBridgeHandler_HTTPProxy_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unsupported method",
			body:       `{"url":"http://localhost","method":"TRACE"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "unsupported HTTP method: TRACE",
		},
		{
			name:       "malformed header payload",
			body:       `{"url":"http://localhost","method":"GET","headers":"{not json"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "failed to parse headers",
		},
		{
			name:       "unreachable host",
			body:       `{"url":"http://127.0.0.1:1/","method":"GET"}`,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "request failed",
		},
		{
			name:       "not a JSON object",
			body:       `[1,2,3]`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "request body must be a JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postBridge(t, newTestBridgeHandler(), tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !strings.HasPrefix(body["error"], tt.wantMsg) {
				t.Errorf("error = %q, want prefix %q", body["error"], tt.wantMsg)
			}
		})
	}
}
