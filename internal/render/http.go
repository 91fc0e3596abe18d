package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// HTTPEngineConfig contains HTTP TTS engine configuration.
type HTTPEngineConfig struct {
	Endpoint   string
	APIKey     string
	Voice      string
	Language   string
	Timeout    time.Duration
	MaxRetries int
}

// HTTPEngine renders text through a remote TTS HTTP API. The endpoint
// receives a JSON body and answers with raw waveform bytes. Transient
// failures are retried with exponential backoff.
type HTTPEngine struct {
	config     HTTPEngineConfig
	httpClient *http.Client
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

// NewHTTPEngine creates a new HTTP TTS engine.
func NewHTTPEngine(config HTTPEngineConfig) (*HTTPEngine, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 3
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPEngine{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// Name returns the engine name.
func (e *HTTPEngine) Name() string { return "http" }

// Render requests synthesis for text and writes the response waveform to
// outPath. The file only appears once the full response has been
// received.
func (e *HTTPEngine) Render(ctx context.Context, text, outPath string) error {
	var lastErr error

	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		data, err := e.doRequest(ctx, text)
		if err == nil {
			return writeFileAtomic(outPath, data)
		}
		lastErr = err

		if !isRetryable(err) {
			return fmt.Errorf("synthesis failed after %d attempt(s): %w", attempt+1, err)
		}
	}

	return fmt.Errorf("synthesis failed after %d attempt(s): %w", e.config.MaxRetries+1, lastErr)
}

func (e *HTTPEngine) doRequest(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{
		Text:     text,
		Voice:    e.config.Voice,
		Language: e.config.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &transientError{fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transientError{fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("TTS API returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &transientError{err}
		}
		return nil, err
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("TTS API returned an empty body")
	}

	return data, nil
}

// transientError marks failures worth retrying: network problems, 5xx
// responses, and rate limiting.
type transientError struct{ err error }

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

func isRetryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place so no partial waveform is ever observable.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".render-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write waveform: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close waveform file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move waveform into place: %w", err)
	}
	return nil
}
