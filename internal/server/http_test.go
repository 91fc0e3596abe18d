package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookvoice/bookvoice/internal/config"
	"github.com/bookvoice/bookvoice/internal/metrics"
	"github.com/bookvoice/bookvoice/internal/render"
	"github.com/prometheus/client_golang/prometheus"
)

func testServer(t *testing.T, progressFn func() render.Progress) *HTTPServer {
	t.Helper()
	cfg := config.Default()
	cfg.TTS.APIKey = "secret-key"
	m := metrics.NewMetricsWithRegistry(prometheus.NewRegistry())
	return NewHTTPServer(cfg.Monitor, slog.Default(), cfg, m, progressFn)
}

func get(t *testing.T, h *HTTPServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := get(t, testServer(t, nil), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestProgressEndpoint(t *testing.T) {
	h := testServer(t, func() render.Progress {
		return render.Progress{Engine: "piper", Total: 10, Done: 4}
	})

	rec := get(t, h, "/progress")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var p render.Progress
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if p.Engine != "piper" || p.Total != 10 || p.Done != 4 {
		t.Errorf("progress = %+v", p)
	}
}

func TestProgressWithoutActiveRun(t *testing.T) {
	rec := get(t, testServer(t, nil), "/progress")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestConfigEndpointOmitsSecrets(t *testing.T) {
	rec := get(t, testServer(t, nil), "/config")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-key") {
		t.Error("config endpoint leaked the API key")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := testServer(t, nil)
	rec := httptest.NewRecorder()
	h.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
