package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PiperEngine renders text through the piper executable. Piper reads the
// text on stdin and writes the waveform to the path given with
// --output_file.
type PiperEngine struct {
	exe   string
	voice string
}

// NewPiperEngine creates a piper-backed engine. voice is the path to the
// voice model file.
func NewPiperEngine(exe, voice string) (*PiperEngine, error) {
	if exe == "" {
		return nil, fmt.Errorf("piper executable cannot be empty")
	}
	if voice == "" {
		return nil, fmt.Errorf("piper voice model must be specified")
	}
	return &PiperEngine{exe: exe, voice: voice}, nil
}

// Name returns the engine name.
func (p *PiperEngine) Name() string { return "piper" }

// Render pipes text into piper and waits for it to finish. On failure the
// captured stderr is included so the tool's own diagnostic reaches the
// caller.
func (p *PiperEngine) Render(ctx context.Context, text, outPath string) error {
	cmd := exec.CommandContext(ctx, p.exe, "--model", p.voice, "--output_file", outPath)
	cmd.Stdin = strings.NewReader(text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("piper failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
