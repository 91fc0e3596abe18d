package main

import (
	"github.com/spf13/cobra"

	"github.com/bookvoice/bookvoice/internal/book"
	"github.com/bookvoice/bookvoice/internal/extract"
)

func extractCmd() *cobra.Command {
	var (
		textPath     string
		documentPath string
		coverDir     string
	)

	cmd := &cobra.Command{
		Use:   "extract <book.epub>",
		Short: "Extract chapter text and metadata from an EPUB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup()
			if err != nil {
				return err
			}

			res, err := extract.EPUB(logger, args[0], coverDir)
			if err != nil {
				return err
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
			return doc.Save(documentPath)
		},
	}

	cmd.Flags().StringVar(&textPath, "text", "book.txt", "Output text file, one chapter per line")
	cmd.Flags().StringVar(&documentPath, "document", "book.json", "Book document file")
	cmd.Flags().StringVar(&coverDir, "cover-dir", ".", "Directory for the extracted cover image")
	return cmd
}
