package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bookvoice/bookvoice/internal/book"
	"github.com/bookvoice/bookvoice/internal/encode"
)

func encodeCmd() *cobra.Command {
	var (
		documentPath string
		mp3Path      string
		m4bPath      string
		bitrate      string
	)

	cmd := &cobra.Command{
		Use:   "encode <book.wav>",
		Short: "Encode the stitched WAV into MP3 and/or M4B",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if mp3Path == "" && m4bPath == "" {
				return fmt.Errorf("nothing to encode: pass --mp3 and/or --m4b")
			}

			doc, err := book.Load(documentPath)
			if err != nil {
				return err
			}

			encoder, err := encode.NewEncoder(cfg.Encode.FFmpegPath, logger, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if mp3Path != "" {
				rate := bitrate
				if rate == "" {
					rate = cfg.Encode.MP3Bitrate
				}
				if err := encoder.MP3(ctx, args[0], mp3Path, rate); err != nil {
					return err
				}
			}
			if m4bPath != "" {
				rate := bitrate
				if rate == "" {
					rate = cfg.Encode.M4BBitrate
				}
				if err := encoder.M4B(ctx, args[0], m4bPath, rate, doc); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&documentPath, "document", "book.json", "Book document file")
	cmd.Flags().StringVar(&mp3Path, "mp3", "", "Output MP3 file")
	cmd.Flags().StringVar(&m4bPath, "m4b", "", "Output M4B audiobook file")
	cmd.Flags().StringVar(&bitrate, "bitrate", "", "Bitrate override for both formats")
	return cmd
}
