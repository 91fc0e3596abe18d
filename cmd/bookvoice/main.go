package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookvoice/bookvoice/internal/config"
)

const serviceVersion = "1.0.0"

// configPath is shared by every subcommand via the persistent flag.
var configPath string

func main() {
	// Secrets such as BOOKVOICE_TTS_API_KEY may live in a local .env
	// file; a missing file is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "bookvoice",
		Short:   "Convert books into narrated audiobooks",
		Version: serviceVersion,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML configuration file")

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(chunkCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(stitchCmd())
	rootCmd.AddCommand(encodeCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger every subcommand
// starts from.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := initLogger(cfg.Logging)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// initLogger creates the structured logger from the logging configuration.
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr", "":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
