package book

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.json")

	doc := &Document{
		Title:        "Test Book",
		Author:       "Test Author",
		ChapterCount: 2,
		CoverFile:    "data/cover.jpg",
	}
	doc.SetChunks(map[int][]string{
		1: {"Hello world.", "Is it?"},
		2: nil,
	})

	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, doc) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", loaded, doc)
	}
	if got := loaded.ChapterChunks(1); len(got) != 2 {
		t.Errorf("expected 2 chunks for chapter 1, got %v", got)
	}
	if got := loaded.ChapterChunks(2); got == nil || len(got) != 0 {
		t.Errorf("expected empty (non-nil) chunk list for chapter 2, got %v", got)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.json")

	doc := &Document{Title: "T"}
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected only the document file, got %d entries", len(entries))
	}
}

func TestReadModifyWritePreservesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.json")

	// Extraction writes metadata first.
	extracted := &Document{
		Title:        "Preserved Title",
		Author:       "Preserved Author",
		ChapterCount: 1,
		CoverFile:    "cover.jpg",
	}
	if err := extracted.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Chunking loads, adds chunks, saves.
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	doc.SetChunks(map[int][]string{1: {"Only chunk."}})
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Assembly loads, adds markers, saves.
	doc, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	doc.SetChapterMarkers(map[int]ChapterMarker{1: {StartMS: 0, EndMS: 1234}})
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	final, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if final.Title != "Preserved Title" || final.Author != "Preserved Author" {
		t.Errorf("metadata not preserved: %+v", final)
	}
	if final.CoverFile != "cover.jpg" || final.ChapterCount != 1 {
		t.Errorf("metadata not preserved: %+v", final)
	}
	if len(final.Chunks["1"]) != 1 {
		t.Errorf("chunks not preserved: %+v", final.Chunks)
	}
	if m := final.ChapterMarkers["1"]; m.EndMS != 1234 {
		t.Errorf("markers not written: %+v", final.ChapterMarkers)
	}
}

func TestSaveKeepsEmptyStageFields(t *testing.T) {
	// An explicitly set empty chunks map must survive in the JSON so
	// "stage produced nothing" stays distinguishable from "stage never
	// ran".
	path := filepath.Join(t.TempDir(), "book.json")
	doc := &Document{Title: "T", ChapterCount: 1}
	doc.SetChunks(map[int][]string{})
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), `"chunks": {}`) {
		t.Errorf("empty chunks map dropped from document:\n%s", data)
	}
	if !strings.Contains(string(data), `"chapter_markers"`) {
		t.Errorf("chapter_markers field missing from document:\n%s", data)
	}
}

func TestLoadOrCreateMissingFile(t *testing.T) {
	doc, err := LoadOrCreate(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if doc.Title != "" || doc.ChapterCount != 0 {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestLoadMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed document")
	}
}

func TestSortedMarkerChapters(t *testing.T) {
	doc := &Document{}
	doc.SetChapterMarkers(map[int]ChapterMarker{
		10: {}, 0: {}, 2: {},
	})
	got := doc.SortedMarkerChapters()
	if !reflect.DeepEqual(got, []int{0, 2, 10}) {
		t.Errorf("SortedMarkerChapters = %v", got)
	}
}
