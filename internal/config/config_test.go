package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default configuration must validate: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:        "zero max chunk size",
			mutate:      func(c *Config) { c.Chunk.MaxChunkSize = 0 },
			expectError: true,
		},
		{
			name:        "negative fade",
			mutate:      func(c *Config) { c.Audio.FadeDurationMS = -1 },
			expectError: true,
		},
		{
			name:        "zero sample rate",
			mutate:      func(c *Config) { c.Audio.SampleRate = 0 },
			expectError: true,
		},
		{
			name:        "unknown engine",
			mutate:      func(c *Config) { c.TTS.Engine = "festival" },
			expectError: true,
		},
		{
			name: "http engine without endpoint",
			mutate: func(c *Config) {
				c.TTS.Engine = "http"
				c.TTS.Endpoint = ""
			},
			expectError: true,
		},
		{
			name: "http engine with endpoint",
			mutate: func(c *Config) {
				c.TTS.Engine = "http"
				c.TTS.Endpoint = "https://tts.example.com/render"
			},
		},
		{
			name:        "speaker missing from catalogue",
			mutate:      func(c *Config) { c.TTS.Speaker = "nobody" },
			expectError: true,
		},
		{
			name:        "empty ffmpeg path",
			mutate:      func(c *Config) { c.Encode.FFmpegPath = "" },
			expectError: true,
		},
		{
			name: "monitor enabled without address",
			mutate: func(c *Config) {
				c.Monitor.Enabled = true
				c.Monitor.Address = ""
			},
			expectError: true,
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
chunk:
  max_chunk_size: 300
audio:
  sample_rate: 44100
  fade_duration_ms: 50
tts:
  engine: piper
  language: de
  speaker: gitta
  voices:
    gitta: de_DE-thorsten-high
  piper_exe: /usr/local/bin/piper
  piper_voice: /models/de_DE-thorsten-high.onnx
  timeout: 60
logging:
  level: debug
  format: json
  output: stdout
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Chunk.MaxChunkSize != 300 {
		t.Errorf("max_chunk_size = %d, want 300", cfg.Chunk.MaxChunkSize)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("sample_rate = %d, want 44100", cfg.Audio.SampleRate)
	}
	if cfg.TTS.VoiceID() != "de_DE-thorsten-high" {
		t.Errorf("VoiceID = %q, want catalogue entry", cfg.TTS.VoiceID())
	}
	if cfg.TTS.GetTimeoutDuration() != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", cfg.TTS.GetTimeoutDuration())
	}
	// Sections absent from the file keep their defaults.
	if cfg.Encode.MP3Bitrate != "192k" {
		t.Errorf("mp3_bitrate default lost: %q", cfg.Encode.MP3Bitrate)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Chunk.MaxChunkSize != 250 {
		t.Errorf("expected default max_chunk_size, got %d", cfg.Chunk.MaxChunkSize)
	}
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("BOOKVOICE_TTS_API_KEY", "secret-key")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TTS.APIKey != "secret-key" {
		t.Errorf("APIKey = %q, want env override", cfg.TTS.APIKey)
	}
}

func TestVoiceIDFallback(t *testing.T) {
	cfg := Default()
	cfg.TTS.Speaker = "en_GB-alba-medium"
	if got := cfg.TTS.VoiceID(); got != "en_GB-alba-medium" {
		t.Errorf("VoiceID = %q, want verbatim fallback", got)
	}
}
