package extract

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"

	"github.com/bookvoice/bookvoice/internal/book"
)

// Result holds everything extraction produced: the seeded document and
// the chapter texts in spine order, one line per chapter.
type Result struct {
	Document *book.Document
	Chapters []string
}

// EPUB extracts chapter texts and metadata from an EPUB file. When the
// book carries a cover image it is copied into coverDir and recorded in
// the document. Spine entries whose name contains "chapter" are treated
// as chapters; when no entry matches, every spine document with text
// counts, so books without conventional file naming still work.
func EPUB(logger *slog.Logger, path, coverDir string) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rc, err := epub.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub %s: %w", path, err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub %s", path)
	}
	bk := rc.Rootfiles[0]

	chapters := spineChapters(bk, true)
	if len(chapters) == 0 {
		chapters = spineChapters(bk, false)
	}

	doc := &book.Document{
		Title:        strings.TrimSpace(bk.Title),
		Author:       strings.TrimSpace(bk.Creator),
		ChapterCount: len(chapters),
	}
	if doc.Title == "" {
		doc.Title = "Unknown Title"
	}
	if doc.Author == "" {
		doc.Author = "Unknown Author"
	}

	if coverDir != "" {
		coverPath, err := saveCover(bk, coverDir)
		if err != nil {
			logger.Warn("Could not save cover image", slog.String("error", err.Error()))
		} else if coverPath != "" {
			doc.CoverFile = coverPath
			logger.Info("Cover image saved", slog.String("path", coverPath))
		}
	}

	logger.Info("Extracted book",
		slog.String("title", doc.Title),
		slog.String("author", doc.Author),
		slog.Int("chapters", doc.ChapterCount),
	)

	return &Result{Document: doc, Chapters: chapters}, nil
}

// spineChapters walks the spine and returns the text of each chapter
// document as a single line. With chapterOnly set, entries whose HREF
// does not contain "chapter" are ignored.
func spineChapters(bk *epub.Rootfile, chapterOnly bool) []string {
	var chapters []string
	for _, ref := range bk.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		if chapterOnly && !strings.Contains(strings.ToLower(ref.Item.HREF), "chapter") {
			continue
		}

		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}

		text := flattenHTML(string(data))
		if text != "" {
			chapters = append(chapters, text)
		}
	}
	return chapters
}

// flattenHTML extracts the visible text of an XHTML document as one
// whitespace-normalized line.
func flattenHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Scripts and styles carry no narration text.
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if out.Len() > 0 {
					out.WriteString(" ")
				}
				out.WriteString(strings.Join(strings.Fields(t), " "))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out.String()
}

// saveCover locates the cover image in the manifest and copies it into
// dir. Returns the empty string when the book has no discernible cover.
func saveCover(bk *epub.Rootfile, dir string) (string, error) {
	item := findCoverItem(bk)
	if item == nil {
		return "", nil
	}

	r, err := item.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open cover item: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read cover image: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cover directory %s: %w", dir, err)
	}

	ext := filepath.Ext(item.HREF)
	if ext == "" {
		ext = ".jpg"
	}
	path := filepath.Join(dir, "cover"+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cover image %s: %w", path, err)
	}
	return path, nil
}

func findCoverItem(bk *epub.Rootfile) *epub.Item {
	for i, item := range bk.Manifest.Items {
		if strings.EqualFold(item.ID, "cover-image") {
			return &bk.Manifest.Items[i]
		}
	}
	for i, item := range bk.Manifest.Items {
		if strings.HasPrefix(item.MediaType, "image/") &&
			strings.Contains(strings.ToLower(item.ID+item.HREF), "cover") {
			return &bk.Manifest.Items[i]
		}
	}
	return nil
}

// WriteChapterLines writes the chapter texts to path, one chapter per
// line, the format the chunk stage reads back.
func WriteChapterLines(path string, chapters []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	var sb strings.Builder
	for _, ch := range chapters {
		sb.WriteString(ch)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write chapter text %s: %w", path, err)
	}
	return nil
}
