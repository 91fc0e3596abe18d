package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ChapterMarker records the span of one chapter within the assembled
// waveform, in milliseconds from the start of the output.
type ChapterMarker struct {
	StartMS int64 `json:"start_ms"`
	EndMS   int64 `json:"end_ms"`
}

// Document is the persisted book metadata shared by the pipeline stages.
// Chapter keys in Chunks and ChapterMarkers are decimal chapter indices
// ("1", "2", ...); marker key "0" covers the intro region before the
// first chapter announcement.
type Document struct {
	Title          string                   `json:"title"`
	Author         string                   `json:"author"`
	ChapterCount   int                      `json:"chapter_count"`
	CoverFile      string                   `json:"cover_file,omitempty"`
	// Chunks and ChapterMarkers stay in the JSON even when empty, so a
	// stage that ran but produced nothing is distinguishable from a
	// stage that never ran (absent map).
	Chunks         map[string][]string      `json:"chunks"`
	ChapterMarkers map[string]ChapterMarker `json:"chapter_markers"`
}

// Load reads and parses a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}

	return &doc, nil
}

// LoadOrCreate reads the document at path, or returns an empty document
// when the file does not exist yet. Chunking can run before extraction has
// produced a document, matching the original single-field bootstrap.
func LoadOrCreate(path string) (*Document, error) {
	doc, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Document{}, nil
		}
		return nil, err
	}
	return doc, nil
}

// Save writes the document atomically: the JSON is written to a temporary
// file in the same directory and renamed over the target, so readers never
// observe a half-written document.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create document directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp document file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close document file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace document %s: %w", path, err)
	}

	return nil
}

// SetChunks replaces the chunk lists, keyed by 1-based chapter index.
// All other fields are left untouched.
func (d *Document) SetChunks(chunks map[int][]string) {
	d.Chunks = make(map[string][]string, len(chunks))
	for chapter, list := range chunks {
		if list == nil {
			list = []string{}
		}
		d.Chunks[strconv.Itoa(chapter)] = list
	}
}

// SetChapterMarkers replaces the chapter markers, keyed by chapter index
// (0 = intro region). All other fields are left untouched.
func (d *Document) SetChapterMarkers(markers map[int]ChapterMarker) {
	d.ChapterMarkers = make(map[string]ChapterMarker, len(markers))
	for chapter, m := range markers {
		d.ChapterMarkers[strconv.Itoa(chapter)] = m
	}
}

// ChapterChunks returns the chunk list for a 1-based chapter index.
func (d *Document) ChapterChunks(chapter int) []string {
	return d.Chunks[strconv.Itoa(chapter)]
}

// SortedMarkerChapters returns the chapter indices present in
// ChapterMarkers in ascending numeric order.
func (d *Document) SortedMarkerChapters() []int {
	chapters := make([]int, 0, len(d.ChapterMarkers))
	for key := range d.ChapterMarkers {
		n, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		chapters = append(chapters, n)
	}
	sort.Ints(chapters)
	return chapters
}
