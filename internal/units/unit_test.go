package units

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFilenames(t *testing.T) {
	tests := []struct {
		unit     Unit
		expected string
	}{
		{Title(), "title.wav"},
		{Author(), "author.wav"},
		{ChapterCount(), "chapter_count.wav"},
		{Announcement(3), "chapter_3.wav"},
		{Announcement(12), "chapter_12.wav"},
		{Chunk(1, 0), "chunk_01_0000.wav"},
		{Chunk(12, 345), "chunk_12_0345.wav"},
	}
	for _, tt := range tests {
		if got := tt.unit.Filename(); got != tt.expected {
			t.Errorf("%v.Filename() = %q, want %q", tt.unit, got, tt.expected)
		}
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := map[string]Unit{}
	all := []Unit{
		Title(), Author(), ChapterCount(),
		Announcement(1), Announcement(2),
		Chunk(1, 0), Chunk(1, 1), Chunk(2, 0),
	}
	for _, u := range all {
		if prev, ok := seen[u.ID()]; ok {
			t.Errorf("duplicate ID %q for %v and %v", u.ID(), prev, u)
		}
		seen[u.ID()] = u
	}
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("touch %s: %v", name, err)
	}
}

func TestChapterChunkFilesOrdering(t *testing.T) {
	dir := t.TempDir()
	// Written out of order on purpose.
	touch(t, dir, "chunk_01_0002.wav")
	touch(t, dir, "chunk_01_0000.wav")
	touch(t, dir, "chunk_01_0001.wav")
	touch(t, dir, "chunk_02_0000.wav")
	touch(t, dir, "chapter_1.wav")

	files, err := ChapterChunkFiles(dir, 1)
	if err != nil {
		t.Fatalf("ChapterChunkFiles failed: %v", err)
	}
	expected := []string{
		filepath.Join(dir, "chunk_01_0000.wav"),
		filepath.Join(dir, "chunk_01_0001.wav"),
		filepath.Join(dir, "chunk_01_0002.wav"),
	}
	if !reflect.DeepEqual(files, expected) {
		t.Errorf("ChapterChunkFiles = %v, want %v", files, expected)
	}
}

func TestScanExisting(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "title.wav")
	touch(t, dir, "chapter_1.wav")
	touch(t, dir, "chunk_01_0000.wav")

	existing := ScanExisting(dir, 2, map[int]int{1: 2, 2: 1})

	for _, want := range []string{"title", "announcement/1", "chunk/1/0"} {
		if !existing[want] {
			t.Errorf("expected %q to be seen as existing", want)
		}
	}
	for _, notWant := range []string{"author", "announcement/2", "chunk/1/1", "chunk/2/0"} {
		if existing[notWant] {
			t.Errorf("did not expect %q to be marked existing", notWant)
		}
	}
}
