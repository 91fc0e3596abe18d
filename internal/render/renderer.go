package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bookvoice/bookvoice/internal/book"
	"github.com/bookvoice/bookvoice/internal/metrics"
	"github.com/bookvoice/bookvoice/internal/units"
)

// Renderer drives the sequential per-unit rendering of a book. Units are
// rendered one at a time; a crashed run resumes from the completion
// index.
type Renderer struct {
	engine  Engine
	dir     string
	logger  *slog.Logger
	metrics *metrics.Metrics

	totalUnits int64
	doneUnits  int64
}

// Progress is a snapshot of the current render run, served by the
// monitoring HTTP API.
type Progress struct {
	Engine string `json:"engine"`
	Total  int64  `json:"total_units"`
	Done   int64  `json:"done_units"`
}

// NewRenderer creates a renderer writing unit files into dir.
func NewRenderer(engine Engine, dir string, logger *slog.Logger, m *metrics.Metrics) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		engine:  engine,
		dir:     dir,
		logger:  logger,
		metrics: m,
	}
}

// Progress returns a snapshot of the current run.
func (r *Renderer) Progress() Progress {
	return Progress{
		Engine: r.engine.Name(),
		Total:  atomic.LoadInt64(&r.totalUnits),
		Done:   atomic.LoadInt64(&r.doneUnits),
	}
}

// job pairs a unit with the text it speaks.
type job struct {
	unit units.Unit
	text string
}

// jobs builds the full ordered render work list for a document.
func (r *Renderer) jobs(doc *book.Document) []job {
	var list []job

	if doc.Title != "" {
		list = append(list, job{units.Title(), "Title: " + doc.Title})
	}
	if doc.Author != "" {
		list = append(list, job{units.Author(), "Author: " + doc.Author})
	}
	if doc.ChapterCount > 0 {
		list = append(list, job{units.ChapterCount(), fmt.Sprintf("Total chapters: %d", doc.ChapterCount)})
		for ch := 1; ch <= doc.ChapterCount; ch++ {
			list = append(list, job{units.Announcement(ch), fmt.Sprintf("Chapter %d", ch)})
		}
	}

	chapters := make([]int, 0, len(doc.Chunks))
	for key := range doc.Chunks {
		if n, err := strconv.Atoi(key); err == nil {
			chapters = append(chapters, n)
		}
	}
	sort.Ints(chapters)
	for _, ch := range chapters {
		for idx, text := range doc.ChapterChunks(ch) {
			list = append(list, job{units.Chunk(ch, idx), text})
		}
	}

	return list
}

// RenderBook renders every unit the document requires, skipping units the
// completion index already covers. The first failure aborts the run; work
// finished so far stays on disk and in the index.
func (r *Renderer) RenderBook(ctx context.Context, doc *book.Document) error {
	if len(doc.Chunks) == 0 {
		return fmt.Errorf("document has no chunks: run the chunk stage first")
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create unit directory %s: %w", r.dir, err)
	}

	state, err := LoadState(r.dir)
	if err != nil {
		return err
	}

	// Unit files rendered by older runs count as done even if the index
	// predates them.
	chunksPerChapter := make(map[int]int, len(doc.Chunks))
	for key, list := range doc.Chunks {
		if n, err := strconv.Atoi(key); err == nil {
			chunksPerChapter[n] = len(list)
		}
	}
	state.Seed(units.ScanExisting(r.dir, doc.ChapterCount, chunksPerChapter))

	work := r.jobs(doc)
	atomic.StoreInt64(&r.totalUnits, int64(len(work)))
	atomic.StoreInt64(&r.doneUnits, 0)

	r.logger.Info("Render run starting",
		slog.String("engine", r.engine.Name()),
		slog.Int("units", len(work)),
		slog.Int("already_done", state.Len()),
	)

	for _, j := range work {
		if state.Done(j.unit.ID()) {
			if r.metrics != nil {
				r.metrics.RecordUnitSkipped()
			}
			atomic.AddInt64(&r.doneUnits, 1)
			r.logger.Debug("Skipping rendered unit", slog.String("unit", j.unit.ID()))
			continue
		}

		start := time.Now()
		if err := r.engine.Render(ctx, j.text, j.unit.Path(r.dir)); err != nil {
			if r.metrics != nil {
				r.metrics.RecordRenderFailure()
			}
			return fmt.Errorf("failed to render unit %s: %w", j.unit.ID(), err)
		}
		if err := state.MarkDone(j.unit.ID()); err != nil {
			return err
		}

		if r.metrics != nil {
			r.metrics.RecordUnitRendered(time.Since(start).Seconds())
		}
		atomic.AddInt64(&r.doneUnits, 1)
		r.logger.Info("Rendered unit",
			slog.String("unit", j.unit.ID()),
			slog.String("file", j.unit.Filename()),
			slog.Duration("took", time.Since(start)),
		)
	}

	r.logger.Info("Render run finished", slog.Int("units", len(work)))
	return nil
}
