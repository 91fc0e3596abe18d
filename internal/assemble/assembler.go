package assemble

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bookvoice/bookvoice/internal/audio"
	"github.com/bookvoice/bookvoice/internal/book"
)

// PauseDurationMS is the fixed silence inserted around chapter
// announcements.
const PauseDurationMS int64 = 1000

// Assembler joins planned items into one waveform while tracking which
// chapter the timeline cursor is currently inside. Chapter index 0 is the
// intro region (title, author, chapter count); it is skipped entirely when
// the first audible item is already chapter 1's announcement.
type Assembler struct {
	fadeMS int64
	logger *slog.Logger

	timeline audio.Segment
	rate     int

	// marker state machine: the currently open chapter and where it
	// started on the timeline.
	current   int
	openStart int64
	markers   map[int]book.ChapterMarker
}

// NewAssembler creates an assembler with the given crossfade duration in
// milliseconds.
func NewAssembler(fadeMS int64, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		fadeMS:  fadeMS,
		logger:  logger,
		markers: make(map[int]book.ChapterMarker),
	}
}

// Run executes the plan and returns the assembled waveform plus the
// chapter markers keyed by chapter index.
func (a *Assembler) Run(plan []Item) (audio.Segment, map[int]book.ChapterMarker, error) {
	if len(plan) == 0 {
		return audio.Segment{}, nil, ErrEmptyPlan
	}

	if err := a.prepare(plan); err != nil {
		return audio.Segment{}, nil, err
	}

	for _, item := range plan {
		if item.Pause {
			// Pauses join with a hard cut, never a crossfade.
			a.timeline = a.timeline.Append(audio.Silence(PauseDurationMS, a.rate), 0)
			continue
		}

		seg, err := audio.ReadSegment(item.Path)
		if err != nil {
			return audio.Segment{}, nil, err
		}
		if seg.SampleRate != a.rate {
			return audio.Segment{}, nil, fmt.Errorf(
				"sample rate mismatch in %s: got %d Hz, timeline is %d Hz",
				item.Path, seg.SampleRate, a.rate)
		}

		if item.Chapter > 0 && item.Chapter != a.current {
			a.enterChapter(item.Chapter)
		}

		a.timeline = a.timeline.Append(seg, a.fadeMS)
	}

	// End of plan: close whichever chapter is still open at the final
	// timeline duration.
	total := a.timeline.DurationMS()
	a.markers[a.current] = book.ChapterMarker{StartMS: a.openStart, EndMS: total}

	a.logger.Info("Assembly finished",
		slog.Int("items", len(plan)),
		slog.Int64("duration_ms", total),
		slog.Int("chapters", len(a.markers)),
	)

	return a.timeline, a.markers, nil
}

// prepare derives the timeline sample rate from the first real unit and
// decides whether an intro region exists.
func (a *Assembler) prepare(plan []Item) error {
	first := -1
	for i, item := range plan {
		if !item.Pause {
			first = i
			break
		}
	}
	if first < 0 {
		return ErrEmptyPlan
	}

	seg, err := audio.ReadSegment(plan[first].Path)
	if err != nil {
		return err
	}
	a.rate = seg.SampleRate

	// No intro content before chapter 1's announcement means the book
	// opens directly in chapter 1 and no intro marker is written.
	if plan[first].Chapter == 1 {
		a.current = 1
	} else {
		a.current = 0
	}
	a.openStart = 0

	return nil
}

// enterChapter closes the open chapter and opens the next one. The
// boundary backs out the pause that was just appended before the
// announcement, so the new chapter begins at the start of that pause.
func (a *Assembler) enterChapter(chapter int) {
	boundary := a.timeline.DurationMS() - PauseDurationMS
	if boundary < 0 {
		boundary = 0
	}
	a.markers[a.current] = book.ChapterMarker{StartMS: a.openStart, EndMS: boundary}
	a.openStart = boundary
	a.current = chapter
}

// Stitch assembles all units in dir into a single WAV at outputPath and
// returns the chapter markers. The document is not modified; the caller
// owns the read-modify-write of its chapter_markers field.
func Stitch(logger *slog.Logger, dir, outputPath string, doc *book.Document, fadeMS int64) (map[int]book.ChapterMarker, error) {
	plan, err := BuildPlan(dir, doc)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Assembly plan built",
		slog.String("unit_dir", dir),
		slog.Int("items", len(plan)),
		slog.Int64("fade_ms", fadeMS),
	)

	assembler := NewAssembler(fadeMS, logger)
	timeline, markers, err := assembler.Run(plan)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := audio.WriteSegment(outputPath, timeline); err != nil {
		return nil, err
	}

	logger.Info("Stitched waveform written", slog.String("output", outputPath))

	return markers, nil
}
