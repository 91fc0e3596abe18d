package main

import (
	"github.com/spf13/cobra"

	"github.com/bookvoice/bookvoice/internal/assemble"
	"github.com/bookvoice/bookvoice/internal/book"
)

func stitchCmd() *cobra.Command {
	var (
		documentPath string
		unitsDir     string
		outputPath   string
		fadeMS       int64
	)

	cmd := &cobra.Command{
		Use:   "stitch",
		Short: "Assemble rendered units into one audio file with chapter markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fade") {
				fadeMS = cfg.Audio.FadeDurationMS
			}

			doc, err := book.Load(documentPath)
			if err != nil {
				return err
			}

			markers, err := assemble.Stitch(logger, unitsDir, outputPath, doc, fadeMS)
			if err != nil {
				return err
			}

			// Markers are the only field this stage owns; re-read the
			// document so concurrent edits to other fields survive.
			doc, err = book.Load(documentPath)
			if err != nil {
				return err
			}
			doc.SetChapterMarkers(markers)
			return doc.Save(documentPath)
		},
	}

	cmd.Flags().StringVar(&documentPath, "document", "book.json", "Book document file")
	cmd.Flags().StringVar(&unitsDir, "units", "units", "Directory of rendered unit WAV files")
	cmd.Flags().StringVar(&outputPath, "output", "book.wav", "Output WAV file")
	cmd.Flags().Int64Var(&fadeMS, "fade", 100, "Crossfade duration in milliseconds")
	return cmd
}
