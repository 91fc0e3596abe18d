// Package audio handles PCM waveform data for the assembly stage.
// It implements encoding and decoding of 16-bit mono WAV files, silence
// generation, and crossfaded concatenation of segments with millisecond
// duration accounting.
package audio
