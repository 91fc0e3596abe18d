package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Chunk   ChunkConfig   `yaml:"chunk"`
	Audio   AudioConfig   `yaml:"audio"`
	TTS     TTSConfig     `yaml:"tts"`
	Encode  EncodeConfig  `yaml:"encode"`
	Monitor MonitorConfig `yaml:"monitor"`
	Logging LoggingConfig `yaml:"logging"`
}

// ChunkConfig contains text chunking parameters.
type ChunkConfig struct {
	MaxChunkSize int `yaml:"max_chunk_size"` // characters
}

// AudioConfig contains assembly parameters.
type AudioConfig struct {
	SampleRate     int   `yaml:"sample_rate"`
	FadeDurationMS int64 `yaml:"fade_duration_ms"`
}

// TTSConfig contains renderer configuration. Voices is the speaker
// catalogue: human-readable name to engine voice identifier.
type TTSConfig struct {
	Engine     string            `yaml:"engine"` // "piper" or "http"
	Language   string            `yaml:"language"`
	Speaker    string            `yaml:"speaker"`
	Voices     map[string]string `yaml:"voices"`
	PiperExe   string            `yaml:"piper_exe"`
	PiperVoice string            `yaml:"piper_voice"` // path to the voice model
	Endpoint   string            `yaml:"endpoint"`
	APIKey     string            `yaml:"api_key"`
	Timeout    int               `yaml:"timeout"` // seconds
	MaxRetries int               `yaml:"max_retries"`
}

// EncodeConfig contains ffmpeg encoding parameters.
type EncodeConfig struct {
	FFmpegPath string `yaml:"ffmpeg_path"`
	MP3Bitrate string `yaml:"mp3_bitrate"`
	M4BBitrate string `yaml:"m4b_bitrate"`
}

// MonitorConfig contains the optional monitoring HTTP server settings.
type MonitorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Chunk: ChunkConfig{
			MaxChunkSize: 250,
		},
		Audio: AudioConfig{
			SampleRate:     22050,
			FadeDurationMS: 100,
		},
		TTS: TTSConfig{
			Engine:     "piper",
			Language:   "en",
			Speaker:    "default",
			Voices:     map[string]string{"default": "en_US-hfc_female-medium"},
			PiperExe:   "piper",
			Timeout:    120,
			MaxRetries: 3,
		},
		Encode: EncodeConfig{
			FFmpegPath: "ffmpeg",
			MP3Bitrate: "192k",
			M4BBitrate: "128k",
		},
		Monitor: MonitorConfig{
			Enabled: false,
			Address: "127.0.0.1:9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads and parses the configuration file, layered over the
// defaults. The TTS API key may also come from the BOOKVOICE_TTS_API_KEY
// environment variable so secrets stay out of the config file.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if key := os.Getenv("BOOKVOICE_TTS_API_KEY"); key != "" {
		config.TTS.APIKey = key
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of the complete configuration.
func (c *Config) Validate() error {
	if err := c.Chunk.Validate(); err != nil {
		return fmt.Errorf("chunk config: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.TTS.Validate(); err != nil {
		return fmt.Errorf("tts config: %w", err)
	}
	if err := c.Encode.Validate(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates chunking configuration.
func (c *ChunkConfig) Validate() error {
	if c.MaxChunkSize < 1 {
		return fmt.Errorf("max_chunk_size must be positive, got %d", c.MaxChunkSize)
	}
	return nil
}

// Validate validates assembly configuration.
func (a *AudioConfig) Validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", a.SampleRate)
	}
	if a.FadeDurationMS < 0 {
		return fmt.Errorf("fade_duration_ms cannot be negative, got %d", a.FadeDurationMS)
	}
	return nil
}

// Validate validates renderer configuration.
func (t *TTSConfig) Validate() error {
	switch t.Engine {
	case "piper":
		if t.PiperExe == "" {
			return fmt.Errorf("piper_exe cannot be empty for the piper engine")
		}
	case "http":
		if t.Endpoint == "" {
			return fmt.Errorf("endpoint cannot be empty for the http engine")
		}
	default:
		return fmt.Errorf("engine must be 'piper' or 'http', got '%s'", t.Engine)
	}

	if t.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}
	if t.Speaker != "" {
		if _, ok := t.Voices[t.Speaker]; !ok {
			return fmt.Errorf("speaker '%s' not present in the voices catalogue", t.Speaker)
		}
	}
	if t.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", t.Timeout)
	}
	if t.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", t.MaxRetries)
	}
	return nil
}

// Validate validates encoder configuration.
func (e *EncodeConfig) Validate() error {
	if e.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg_path cannot be empty")
	}
	if e.MP3Bitrate == "" {
		return fmt.Errorf("mp3_bitrate cannot be empty")
	}
	if e.M4BBitrate == "" {
		return fmt.Errorf("m4b_bitrate cannot be empty")
	}
	return nil
}

// Validate validates monitoring configuration.
func (m *MonitorConfig) Validate() error {
	if m.Enabled && m.Address == "" {
		return fmt.Errorf("address cannot be empty when monitoring is enabled")
	}
	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// VoiceID resolves the configured speaker name through the voices
// catalogue. An unknown name falls back to being used verbatim so ad hoc
// engine identifiers still work from the command line.
func (t *TTSConfig) VoiceID() string {
	if id, ok := t.Voices[t.Speaker]; ok {
		return id
	}
	return t.Speaker
}

// GetTimeoutDuration returns the per-request render timeout.
func (t *TTSConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}
