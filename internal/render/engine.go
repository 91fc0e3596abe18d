package render

import "context"

// Engine converts one text unit into a waveform file. Implementations
// must either write a complete file at outPath or return an error; a
// partial file left behind would poison the completion index seeding of
// the next run.
type Engine interface {
	// Render synthesizes text and writes the waveform to outPath.
	Render(ctx context.Context, text, outPath string) error

	// Name returns the human-readable engine name for logging.
	Name() string
}
