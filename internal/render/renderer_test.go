package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bookvoice/bookvoice/internal/book"
)

// fakeEngine records rendered texts and writes marker files.
type fakeEngine struct {
	mu       sync.Mutex
	rendered []string
	failOn   string
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Render(_ context.Context, text, outPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && text == f.failOn {
		return errors.New("synthetic failure")
	}
	f.rendered = append(f.rendered, text)
	return os.WriteFile(outPath, []byte("RIFF"), 0o644)
}

func testDocument() *book.Document {
	doc := &book.Document{
		Title:        "A Book",
		Author:       "An Author",
		ChapterCount: 2,
	}
	doc.SetChunks(map[int][]string{
		1: {"First chunk.", "Second chunk."},
		2: {"Third chunk."},
	})
	return doc
}

func TestRenderBookOrderAndTexts(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{}

	r := NewRenderer(engine, dir, nil, nil)
	if err := r.RenderBook(context.Background(), testDocument()); err != nil {
		t.Fatalf("RenderBook failed: %v", err)
	}

	expected := []string{
		"Title: A Book",
		"Author: An Author",
		"Total chapters: 2",
		"Chapter 1",
		"Chapter 2",
		"First chunk.",
		"Second chunk.",
		"Third chunk.",
	}
	if !reflect.DeepEqual(engine.rendered, expected) {
		t.Errorf("rendered texts:\ngot  %v\nwant %v", engine.rendered, expected)
	}

	// Every unit file must exist under its conventional name.
	for _, name := range []string{
		"title.wav", "author.wav", "chapter_count.wav",
		"chapter_1.wav", "chapter_2.wav",
		"chunk_01_0000.wav", "chunk_01_0001.wav", "chunk_02_0000.wav",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("unit file %s missing: %v", name, err)
		}
	}

	p := r.Progress()
	if p.Done != p.Total || p.Total != 8 {
		t.Errorf("progress = %+v, want 8/8", p)
	}
}

func TestRenderBookResumesFromState(t *testing.T) {
	dir := t.TempDir()
	doc := testDocument()

	first := &fakeEngine{}
	if err := NewRenderer(first, dir, nil, nil).RenderBook(context.Background(), doc); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// A second run renders nothing at all.
	second := &fakeEngine{}
	if err := NewRenderer(second, dir, nil, nil).RenderBook(context.Background(), doc); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(second.rendered) != 0 {
		t.Errorf("resumed run re-rendered units: %v", second.rendered)
	}
}

func TestRenderBookSeedsFromExistingFiles(t *testing.T) {
	// Unit files without a state file (old directory layout) still count
	// as done.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "title.wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	engine := &fakeEngine{}
	if err := NewRenderer(engine, dir, nil, nil).RenderBook(context.Background(), testDocument()); err != nil {
		t.Fatalf("RenderBook failed: %v", err)
	}
	for _, text := range engine.rendered {
		if text == "Title: A Book" {
			t.Error("title was re-rendered despite existing file")
		}
	}
}

func TestRenderBookFailureAborts(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{failOn: "Chapter 2"}

	err := NewRenderer(engine, dir, nil, nil).RenderBook(context.Background(), testDocument())
	if err == nil {
		t.Fatal("expected render failure to propagate")
	}

	// Units before the failure stay done, units after were never tried.
	state, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if !state.Done("announcement/1") {
		t.Error("completed unit missing from index")
	}
	if state.Done("chunk/1/0") {
		t.Error("unit after the failure must not be marked done")
	}
}

func TestRenderBookWithoutChunks(t *testing.T) {
	doc := &book.Document{Title: "T", ChapterCount: 1}
	err := NewRenderer(&fakeEngine{}, t.TempDir(), nil, nil).RenderBook(context.Background(), doc)
	if err == nil {
		t.Error("expected error for document without chunks")
	}
}

func TestHTTPEngineRender(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("fake-wav-bytes"))
	}))
	defer server.Close()

	engine, err := NewHTTPEngine(HTTPEngineConfig{
		Endpoint: server.URL,
		APIKey:   "k",
		Voice:    "v",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewHTTPEngine failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "unit.wav")
	if err := engine.Render(context.Background(), "hello", out); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != "fake-wav-bytes" {
		t.Errorf("output = %q", data)
	}
	if gotAuth != "Bearer k" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestHTTPEngineRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	engine, err := NewHTTPEngine(HTTPEngineConfig{
		Endpoint:   server.URL,
		MaxRetries: 3,
		Timeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewHTTPEngine failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "unit.wav")
	if err := engine.Render(context.Background(), "hello", out); err != nil {
		t.Fatalf("Render failed after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestHTTPEngineClientErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad text", http.StatusBadRequest)
	}))
	defer server.Close()

	engine, err := NewHTTPEngine(HTTPEngineConfig{
		Endpoint:   server.URL,
		MaxRetries: 3,
		Timeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewHTTPEngine failed: %v", err)
	}

	err = engine.Render(context.Background(), "hello", filepath.Join(t.TempDir(), "u.wav"))
	if err == nil {
		t.Fatal("expected client error to propagate")
	}
	if calls != 1 {
		t.Errorf("client errors must not be retried, got %d attempts", calls)
	}
	// The error reports how often we actually tried, not the retry budget.
	if !strings.Contains(err.Error(), "after 1 attempt") {
		t.Errorf("error should report a single attempt, got %q", err)
	}
}

func TestNewPiperEngineValidation(t *testing.T) {
	if _, err := NewPiperEngine("", "voice.onnx"); err == nil {
		t.Error("expected error for empty executable")
	}
	if _, err := NewPiperEngine("piper", ""); err == nil {
		t.Error("expected error for empty voice")
	}
}
