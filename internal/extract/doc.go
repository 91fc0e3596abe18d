// Package extract pulls chapter text and book metadata out of EPUB
// files. Each spine document that looks like a chapter becomes one
// logical chapter, flattened to a single line of text for the chunking
// stage; title, author, chapter count, and the cover image seed the book
// document.
package extract
