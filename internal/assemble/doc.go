// Package assemble builds the final audiobook waveform from rendered unit
// files. It constructs an ordered assembly plan (intro units, then per
// chapter a pause, the announcement, another pause, and the chapter's
// chunks), joins the clips with crossfades and fixed-length pauses, and
// records millisecond chapter start/end markers as the timeline grows.
package assemble
