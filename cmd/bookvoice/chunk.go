package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookvoice/bookvoice/internal/book"
	"github.com/bookvoice/bookvoice/internal/textchunk"
)

func chunkCmd() *cobra.Command {
	var (
		documentPath string
		maxChunkSize int
	)

	cmd := &cobra.Command{
		Use:   "chunk <input.txt>",
		Short: "Split chapter text into sentence-bounded chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-chunk-size") {
				maxChunkSize = cfg.Chunk.MaxChunkSize
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open text file %s: %w", args[0], err)
			}
			defer f.Close()

			chapters, err := textchunk.ReadChapters(f)
			if err != nil {
				return fmt.Errorf("failed to read chapters from %s: %w", args[0], err)
			}

			chunks := textchunk.Chunk(chapters, maxChunkSize)
			total := 0
			for _, list := range chunks {
				total += len(list)
			}
			logger.Info("Chunked book text",
				slog.Int("chapters", len(chapters)),
				slog.Int("chunks", total),
				slog.Int("max_chunk_size", maxChunkSize),
			)

			doc, err := book.LoadOrCreate(documentPath)
			if err != nil {
				return err
			}
			doc.SetChunks(chunks)
			return doc.Save(documentPath)
		},
	}

	cmd.Flags().StringVar(&documentPath, "document", "book.json", "Book document file")
	cmd.Flags().IntVar(&maxChunkSize, "max-chunk-size", 250, "Soft chunk size limit in characters")
	return cmd
}
