package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookvoice/bookvoice/internal/book"
	"github.com/bookvoice/bookvoice/internal/config"
	"github.com/bookvoice/bookvoice/internal/metrics"
	"github.com/bookvoice/bookvoice/internal/render"
	"github.com/bookvoice/bookvoice/internal/server"
)

func renderCmd() *cobra.Command {
	var (
		documentPath string
		unitsDir     string
		engineName   string
		speaker      string
		language     string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render every chunk of the book to a WAV unit file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if engineName != "" {
				cfg.TTS.Engine = engineName
			}
			if speaker != "" {
				cfg.TTS.Speaker = speaker
			}
			if language != "" {
				cfg.TTS.Language = language
			}

			doc, err := book.Load(documentPath)
			if err != nil {
				return err
			}

			engine, err := buildEngine(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var m *metrics.Metrics
			renderer := render.NewRenderer(engine, unitsDir, logger, nil)
			if cfg.Monitor.Enabled {
				m = metrics.NewMetrics()
				renderer = render.NewRenderer(engine, unitsDir, logger, m)

				srv := server.NewHTTPServer(cfg.Monitor, logger, cfg, m, renderer.Progress)
				if err := srv.Start(); err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Stop(shutdownCtx); err != nil {
						logger.Error("Error stopping monitoring server", slog.String("error", err.Error()))
					}
				}()
			}

			return renderer.RenderBook(ctx, doc)
		},
	}

	cmd.Flags().StringVar(&documentPath, "document", "book.json", "Book document file")
	cmd.Flags().StringVar(&unitsDir, "units", "units", "Directory for rendered unit WAV files")
	cmd.Flags().StringVar(&engineName, "engine", "", "TTS engine override (piper or http)")
	cmd.Flags().StringVar(&speaker, "voice", "", "Speaker name from the voices catalogue")
	cmd.Flags().StringVar(&language, "language", "", "Language code override")
	return cmd
}

// buildEngine constructs the configured TTS engine.
func buildEngine(cfg *config.Config) (render.Engine, error) {
	switch cfg.TTS.Engine {
	case "piper":
		voice := cfg.TTS.PiperVoice
		if voice == "" {
			voice = cfg.TTS.VoiceID()
		}
		return render.NewPiperEngine(cfg.TTS.PiperExe, voice)
	case "http":
		return render.NewHTTPEngine(render.HTTPEngineConfig{
			Endpoint:   cfg.TTS.Endpoint,
			APIKey:     cfg.TTS.APIKey,
			Voice:      cfg.TTS.VoiceID(),
			Language:   cfg.TTS.Language,
			Timeout:    cfg.TTS.GetTimeoutDuration(),
			MaxRetries: cfg.TTS.MaxRetries,
		})
	default:
		return nil, fmt.Errorf("unknown tts engine '%s'", cfg.TTS.Engine)
	}
}
