// Package book defines the persisted book document shared by all pipeline
// stages. The document is a single JSON file created by extraction and
// enriched in place: chunking adds the chunk lists, assembly adds the
// chapter markers. Every stage rewrites only its own fields and preserves
// the rest, and saves go through a temp-file-then-rename so a crash mid
// write never truncates the document.
package book
