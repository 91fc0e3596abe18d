package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookvoice/bookvoice/internal/assemble"
	"github.com/bookvoice/bookvoice/internal/book"
	"github.com/bookvoice/bookvoice/internal/encode"
	"github.com/bookvoice/bookvoice/internal/extract"
	"github.com/bookvoice/bookvoice/internal/metrics"
	"github.com/bookvoice/bookvoice/internal/render"
	"github.com/bookvoice/bookvoice/internal/server"
	"github.com/bookvoice/bookvoice/internal/textchunk"
)

func runCmd() *cobra.Command {
	var workDir string

	cmd := &cobra.Command{
		Use:   "run <book.epub>",
		Short: "Run the whole pipeline: extract, chunk, render, stitch, encode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var (
				textPath     = filepath.Join(workDir, "book.txt")
				documentPath = filepath.Join(workDir, "book.json")
				unitsDir     = filepath.Join(workDir, "units")
				masterPath   = filepath.Join(workDir, "book.wav")
				mp3Path      = filepath.Join(workDir, "book.mp3")
				m4bPath      = filepath.Join(workDir, "book.m4b")
			)

			var m *metrics.Metrics
			if cfg.Monitor.Enabled {
				m = metrics.NewMetrics()
			}

			// Extract
			res, err := extract.EPUB(logger, args[0], workDir)
			if err != nil {
				return err
			}
			if len(res.Chapters) == 0 {
				return fmt.Errorf("%w in %s", textchunk.ErrNoChapters, args[0])
			}
			if err := extract.WriteChapterLines(textPath, res.Chapters); err != nil {
				return err
			}
			doc, err := book.LoadOrCreate(documentPath)
			if err != nil {
				return err
			}
			doc.Title = res.Document.Title
			doc.Author = res.Document.Author
			doc.ChapterCount = res.Document.ChapterCount
			doc.CoverFile = res.Document.CoverFile
			if err := doc.Save(documentPath); err != nil {
				return err
			}

			// Chunk
			chunks := textchunk.Chunk(res.Chapters, cfg.Chunk.MaxChunkSize)
			doc.SetChunks(chunks)
			if err := doc.Save(documentPath); err != nil {
				return err
			}
			if m != nil {
				for _, list := range chunks {
					m.RecordChapterChunked(list)
				}
			}

			// Render
			engine, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			renderer := render.NewRenderer(engine, unitsDir, logger, m)
			if cfg.Monitor.Enabled {
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
			if err := renderer.RenderBook(ctx, doc); err != nil {
				return err
			}

			// Stitch
			markers, err := assemble.Stitch(logger, unitsDir, masterPath, doc, cfg.Audio.FadeDurationMS)
			if err != nil {
				return err
			}
			doc.SetChapterMarkers(markers)
			if err := doc.Save(documentPath); err != nil {
				return err
			}
			if m != nil {
				var totalMS int64
				for _, marker := range markers {
					if marker.EndMS > totalMS {
						totalMS = marker.EndMS
					}
				}
				m.RecordStitch(float64(totalMS) / 1000.0)
			}

			// Encode
			encoder, err := encode.NewEncoder(cfg.Encode.FFmpegPath, logger, m)
			if err != nil {
				return err
			}
			if err := encoder.MP3(ctx, masterPath, mp3Path, cfg.Encode.MP3Bitrate); err != nil {
				return err
			}
			if err := encoder.M4B(ctx, masterPath, m4bPath, cfg.Encode.M4BBitrate, doc); err != nil {
				return err
			}

			logger.Info("Pipeline finished",
				slog.String("mp3", mp3Path),
				slog.String("m4b", m4bPath),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&workDir, "workdir", "build", "Working directory for intermediate and final files")
	return cmd
}
