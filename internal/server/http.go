package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookvoice/bookvoice/internal/config"
	"github.com/bookvoice/bookvoice/internal/metrics"
	"github.com/bookvoice/bookvoice/internal/render"
)

// Version is reported by the health and root endpoints.
const Version = "1.0.0"

// HTTPServer exposes monitoring endpoints for long render runs: health,
// render progress, sanitized configuration, and Prometheus metrics.
type HTTPServer struct {
	server  *http.Server
	logger  *slog.Logger
	config  *config.Config
	metrics *metrics.Metrics

	// progress reports the state of the active render run, nil when no
	// run is attached.
	progress func() render.Progress

	startTime time.Time
}

// NewHTTPServer creates a monitoring server. progressFn may be nil when
// no render run is active.
func NewHTTPServer(cfg config.MonitorConfig, logger *slog.Logger,
	appConfig *config.Config, m *metrics.Metrics, progressFn func() render.Progress) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		config:    appConfig,
		metrics:   m,
		progress:  progressFn,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures the monitoring API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))
	mux.HandleFunc("/progress", h.withMetrics("/progress", h.handleProgress))
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with request metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := &responseWriter{ResponseWriter: w, statusCode: 200}
		handler(ww, r)
		if h.metrics != nil {
			h.metrics.RecordHTTPRequest(r.Method, endpoint, fmt.Sprintf("%d", ww.statusCode))
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server in the background.
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting monitoring server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("Monitoring server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping monitoring server...")

	return h.server.Shutdown(ctx)
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
		"service": map[string]interface{}{
			"name":    "bookvoice",
			"version": Version,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleProgress implements the /progress endpoint
func (h *HTTPServer) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.progress == nil {
		http.Error(w, "No render run active", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.progress())
}

// handleConfig implements the /config endpoint
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Return sanitized configuration (remove sensitive data)
	sanitizedConfig := map[string]interface{}{
		"chunk": map[string]interface{}{
			"max_chunk_size": h.config.Chunk.MaxChunkSize,
		},
		"audio": map[string]interface{}{
			"sample_rate":      h.config.Audio.SampleRate,
			"fade_duration_ms": h.config.Audio.FadeDurationMS,
		},
		"tts": map[string]interface{}{
			"engine":      h.config.TTS.Engine,
			"endpoint":    h.config.TTS.Endpoint,
			"speaker":     h.config.TTS.Speaker,
			"voice":       h.config.TTS.VoiceID(),
			"timeout":     h.config.TTS.Timeout,
			"max_retries": h.config.TTS.MaxRetries,
			// Note: API key is intentionally omitted for security
		},
		"encode": map[string]interface{}{
			"ffmpeg_path": h.config.Encode.FFmpegPath,
			"mp3_bitrate": h.config.Encode.MP3Bitrate,
			"m4b_bitrate": h.config.Encode.M4BBitrate,
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizedConfig)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "bookvoice",
		"version": Version,
		"endpoints": map[string]interface{}{
			"GET /":         "API documentation",
			"GET /health":   "Service health check",
			"GET /progress": "Current render run progress",
			"GET /config":   "Effective configuration",
			"GET /metrics":  "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiDoc)
}
