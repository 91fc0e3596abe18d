package textchunk

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrNoChapters is returned when the input text contains no chapters at
// all: a logically inconsistent pipeline state rather than a missing
// file.
var ErrNoChapters = errors.New("no chapters to chunk")

// sentence boundary sequences: terminal punctuation followed by a space.
// The punctuation mark stays attached to the preceding sentence.
var boundaryReplacer = strings.NewReplacer(
	"! ", "!|",
	"? ", "?|",
	". ", ".|",
)

// SplitSentences splits chapter text into sentences. Internal line breaks
// are always sentence boundaries; within a line, sentences end at ". ",
// "! " or "? ". Empty fragments are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, part := range strings.Split(boundaryReplacer.Replace(line), "|") {
			part = strings.TrimSpace(part)
			if part != "" {
				sentences = append(sentences, part)
			}
		}
	}
	return sentences
}

// ChunkChapter packs a chapter's sentences into chunks of at most
// maxChunkSize characters. The limit is a soft packing threshold: a single
// sentence longer than maxChunkSize becomes its own oversized chunk rather
// than being split or truncated. A chapter with no sentences yields nil.
func ChunkChapter(text string, maxChunkSize int) []string {
	var chunks []string
	var current string
	for _, sentence := range SplitSentences(text) {
		if current != "" && len(current)+len(sentence) > maxChunkSize {
			chunks = append(chunks, current)
			current = sentence
			continue
		}
		if current != "" {
			current += " "
		}
		current += sentence
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// Chunk processes an ordered list of chapter texts and returns chunk lists
// keyed by 1-based chapter index. Chapters with no extractable sentences
// map to an empty list.
func Chunk(chapters []string, maxChunkSize int) map[int][]string {
	chunks := make(map[int][]string, len(chapters))
	for i, chapter := range chapters {
		chunks[i+1] = ChunkChapter(chapter, maxChunkSize)
	}
	return chunks
}

// ReadChapters reads chapter texts from r, one logical chapter per
// non-empty line. Leading and trailing whitespace is stripped. Input
// with no chapters at all is ErrNoChapters, never an empty list.
func ReadChapters(r io.Reader) ([]string, error) {
	var chapters []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			chapters = append(chapters, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, ErrNoChapters
	}
	return chapters, nil
}
