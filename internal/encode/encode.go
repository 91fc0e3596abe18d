package encode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bookvoice/bookvoice/internal/book"
	"github.com/bookvoice/bookvoice/internal/metrics"
)

// Encoder drives ffmpeg conversions of the stitched master file.
type Encoder struct {
	ffmpeg  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewEncoder creates an encoder using the given ffmpeg executable.
func NewEncoder(ffmpegPath string, logger *slog.Logger, m *metrics.Metrics) (*Encoder, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpeg path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Encoder{ffmpeg: ffmpegPath, logger: logger, metrics: m}, nil
}

// MP3 transcodes wavPath to an MP3 file at the given bitrate.
func (e *Encoder) MP3(ctx context.Context, wavPath, outPath, bitrate string) error {
	e.logger.Info("Encoding MP3",
		slog.String("input", wavPath),
		slog.String("output", outPath),
		slog.String("bitrate", bitrate),
	)
	if err := e.run(ctx, mp3Args(wavPath, outPath, bitrate)); err != nil {
		if e.metrics != nil {
			e.metrics.RecordEncode("mp3", true)
		}
		return fmt.Errorf("failed to encode mp3: %w", err)
	}
	if e.metrics != nil {
		e.metrics.RecordEncode("mp3", false)
	}
	return nil
}

// M4B transcodes wavPath to an M4B audiobook carrying the document's
// metadata, chapter markers, and cover art.
func (e *Encoder) M4B(ctx context.Context, wavPath, outPath, bitrate string, doc *book.Document) error {
	meta := ChapterMetadata(doc)
	metaFile, err := os.CreateTemp(filepath.Dir(outPath), ".ffmeta-*")
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}
	metaPath := metaFile.Name()
	defer os.Remove(metaPath)

	if _, err := metaFile.WriteString(meta); err != nil {
		metaFile.Close()
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	if err := metaFile.Close(); err != nil {
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	e.logger.Info("Encoding M4B",
		slog.String("input", wavPath),
		slog.String("output", outPath),
		slog.String("bitrate", bitrate),
		slog.Int("chapter_markers", len(doc.ChapterMarkers)),
		slog.Bool("cover", doc.CoverFile != ""),
	)
	if err := e.run(ctx, m4bArgs(wavPath, metaPath, doc.CoverFile, outPath, bitrate)); err != nil {
		if e.metrics != nil {
			e.metrics.RecordEncode("m4b", true)
		}
		return fmt.Errorf("failed to encode m4b: %w", err)
	}
	if e.metrics != nil {
		e.metrics.RecordEncode("m4b", false)
	}
	return nil
}

func (e *Encoder) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", e.ffmpeg, err, lastLines(stderr.String(), 5))
	}
	return nil
}

// mp3Args builds the ffmpeg argument list for a WAV to MP3 transcode.
func mp3Args(wavPath, outPath, bitrate string) []string {
	return []string{
		"-y",
		"-i", wavPath,
		"-c:a", "libmp3lame",
		"-b:a", bitrate,
		outPath,
	}
}

// m4bArgs builds the ffmpeg argument list for a WAV to M4B transcode
// with an FFMETADATA chapter file and optional cover art.
func m4bArgs(wavPath, metaPath, coverPath, outPath, bitrate string) []string {
	args := []string{
		"-y",
		"-i", wavPath,
		"-i", metaPath,
	}
	if coverPath != "" {
		args = append(args, "-i", coverPath)
	}
	args = append(args,
		"-map_metadata", "1",
		"-map", "0:a",
	)
	if coverPath != "" {
		args = append(args,
			"-map", "2:v",
			"-c:v", "copy",
			"-disposition:v", "attached_pic",
		)
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", bitrate,
		"-f", "ipod",
		outPath,
	)
	return args
}

// ChapterMetadata renders the document's chapter markers in ffmpeg's
// FFMETADATA1 format. Chapter 0 covers the title and author intro.
func ChapterMetadata(doc *book.Document) string {
	var sb strings.Builder
	sb.WriteString(";FFMETADATA1\n")
	if doc.Title != "" {
		fmt.Fprintf(&sb, "title=%s\n", escapeMeta(doc.Title))
	}
	if doc.Author != "" {
		fmt.Fprintf(&sb, "artist=%s\n", escapeMeta(doc.Author))
	}

	for _, ch := range doc.SortedMarkerChapters() {
		marker := doc.ChapterMarkers[fmt.Sprintf("%d", ch)]
		title := fmt.Sprintf("Chapter %d", ch)
		if ch == 0 {
			title = "Introduction"
		}
		sb.WriteString("[CHAPTER]\n")
		sb.WriteString("TIMEBASE=1/1000\n")
		fmt.Fprintf(&sb, "START=%d\n", marker.StartMS)
		fmt.Fprintf(&sb, "END=%d\n", marker.EndMS)
		fmt.Fprintf(&sb, "title=%s\n", title)
	}
	return sb.String()
}

var metaEscaper = strings.NewReplacer(
	`\`, `\\`,
	"=", `\=`,
	";", `\;`,
	"#", `\#`,
	"\n", `\`+"\n",
)

func escapeMeta(s string) string {
	return metaEscaper.Replace(s)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
