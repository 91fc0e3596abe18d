package assemble

import (
	"errors"
	"fmt"
	"os"

	"github.com/bookvoice/bookvoice/internal/book"
	"github.com/bookvoice/bookvoice/internal/units"
)

// ErrEmptyPlan is returned when no unit files at all were found: a
// logically inconsistent pipeline state rather than a missing file.
var ErrEmptyPlan = errors.New("no audio units found to assemble")

// Item is one entry in the assembly plan: either a fixed-length pause or
// a unit file. Chapter is set to the 1-based chapter index on
// announcement items and drives the chapter marker transitions.
type Item struct {
	Pause   bool
	Path    string
	Chapter int
}

func pauseItem() Item { return Item{Pause: true} }
func fileItem(path string) Item { return Item{Path: path} }

// BuildPlan scans the unit directory and produces the ordered assembly
// plan for the document. Missing announcement or chunk files are skipped
// silently; an entirely empty plan is an error.
func BuildPlan(dir string, doc *book.Document) ([]Item, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("unit directory %s not accessible: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("unit directory %s is not a directory", dir)
	}

	var plan []Item

	// Intro units, back to back with no pauses between them.
	for _, u := range []units.Unit{units.Title(), units.Author(), units.ChapterCount()} {
		if u.Exists(dir) {
			plan = append(plan, fileItem(u.Path(dir)))
		}
	}

	for chapter := 1; chapter <= doc.ChapterCount; chapter++ {
		announcement := units.Announcement(chapter)
		if announcement.Exists(dir) {
			plan = append(plan, pauseItem())
			plan = append(plan, Item{Path: announcement.Path(dir), Chapter: chapter})
			plan = append(plan, pauseItem())
		}

		chunkFiles, err := units.ChapterChunkFiles(dir, chapter)
		if err != nil {
			return nil, err
		}
		for _, path := range chunkFiles {
			plan = append(plan, fileItem(path))
		}
	}

	// A trailing pause would just pad the end of the book.
	for len(plan) > 0 && plan[len(plan)-1].Pause {
		plan = plan[:len(plan)-1]
	}

	if len(plan) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyPlan, dir)
	}

	return plan, nil
}
