package units

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Role identifies what a rendered unit speaks.
type Role int

const (
	RoleTitle Role = iota
	RoleAuthor
	RoleChapterCount
	RoleAnnouncement // "Chapter N"
	RoleChunk        // one text chunk of a chapter
)

// String returns the role name used in unit identifiers.
func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleAuthor:
		return "author"
	case RoleChapterCount:
		return "chapter_count"
	case RoleAnnouncement:
		return "announcement"
	case RoleChunk:
		return "chunk"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Unit names one rendered waveform. Chapter is the 1-based chapter index
// for announcements and chunks; Index is the 0-based chunk index within
// the chapter, used only by chunks.
type Unit struct {
	Role    Role
	Chapter int
	Index   int
}

// Title, Author, ChapterCount, Announcement and Chunk construct units for
// each role.
func Title() Unit { return Unit{Role: RoleTitle} }

func Author() Unit { return Unit{Role: RoleAuthor} }

func ChapterCount() Unit { return Unit{Role: RoleChapterCount} }

func Announcement(ch int) Unit { return Unit{Role: RoleAnnouncement, Chapter: ch} }

func Chunk(ch, idx int) Unit { return Unit{Role: RoleChunk, Chapter: ch, Index: idx} }

// Filename returns the unit's file name within the unit directory.
func (u Unit) Filename() string {
	switch u.Role {
	case RoleTitle:
		return "title.wav"
	case RoleAuthor:
		return "author.wav"
	case RoleChapterCount:
		return "chapter_count.wav"
	case RoleAnnouncement:
		return fmt.Sprintf("chapter_%d.wav", u.Chapter)
	case RoleChunk:
		return fmt.Sprintf("chunk_%02d_%04d.wav", u.Chapter, u.Index)
	default:
		return ""
	}
}

// ID returns a stable identifier for completion tracking, independent of
// the filesystem.
func (u Unit) ID() string {
	switch u.Role {
	case RoleAnnouncement:
		return fmt.Sprintf("announcement/%d", u.Chapter)
	case RoleChunk:
		return fmt.Sprintf("chunk/%d/%d", u.Chapter, u.Index)
	default:
		return u.Role.String()
	}
}

// Path returns the unit's location under dir.
func (u Unit) Path(dir string) string {
	return filepath.Join(dir, u.Filename())
}

// Exists reports whether the unit file is present under dir.
func (u Unit) Exists(dir string) bool {
	info, err := os.Stat(u.Path(dir))
	return err == nil && !info.IsDir()
}

// ChapterChunkFiles returns the paths of all chunk files for a chapter
// present in dir, in ascending chunk-index order. Indices are fixed width,
// so sorted filename order is playback order.
func ChapterChunkFiles(dir string, chapter int) ([]string, error) {
	pattern := filepath.Join(dir, fmt.Sprintf("chunk_%02d_*.wav", chapter))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan unit directory %s: %w", dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// ScanExisting lists the IDs of all units in the document's naming scheme
// that already exist in dir. Used to seed the render completion index so
// an interrupted run resumes without re-rendering finished units.
func ScanExisting(dir string, chapterCount int, chunksPerChapter map[int]int) map[string]bool {
	existing := make(map[string]bool)
	check := func(u Unit) {
		if u.Exists(dir) {
			existing[u.ID()] = true
		}
	}

	check(Title())
	check(Author())
	check(ChapterCount())
	for ch := 1; ch <= chapterCount; ch++ {
		check(Announcement(ch))
	}
	for ch, n := range chunksPerChapter {
		for idx := 0; idx < n; idx++ {
			check(Chunk(ch, idx))
		}
	}
	return existing
}
