// Package textchunk segments chapter text into bounded, sentence-aligned
// chunks suitable for one TTS rendering pass each. Chunking is a pure
// function of its inputs: identical text and size limit always produce
// identical chunk lists.
package textchunk
