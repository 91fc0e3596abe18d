// Package render turns the book's text units into per-unit waveform files
// through a pluggable TTS engine. Rendering is strictly sequential and
// resumable: a persisted completion index records which units are already
// done, so an interrupted run picks up where it stopped without
// re-rendering finished audio.
package render
