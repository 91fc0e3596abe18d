package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const stateFileName = "render_state.json"

// State is the explicit index of completed unit identifiers. It replaces
// bare "file exists" checks as the source of truth for resumption, while
// existing files still seed the index so old unit directories keep
// working.
type State struct {
	path      string
	completed map[string]bool
}

type stateFile struct {
	Completed []string `json:"completed"`
}

// LoadState reads the completion index from dir, returning an empty index
// when none exists yet.
func LoadState(dir string) (*State, error) {
	s := &State{
		path:      filepath.Join(dir, stateFileName),
		completed: make(map[string]bool),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read render state %s: %w", s.path, err)
	}

	var f stateFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse render state %s: %w", s.path, err)
	}
	for _, id := range f.Completed {
		s.completed[id] = true
	}

	return s, nil
}

// Seed merges externally observed completions (existing unit files) into
// the index without persisting them; they get written out with the next
// MarkDone.
func (s *State) Seed(existing map[string]bool) {
	for id, done := range existing {
		if done {
			s.completed[id] = true
		}
	}
}

// Done reports whether the unit was already rendered.
func (s *State) Done(id string) bool {
	return s.completed[id]
}

// MarkDone records a completed unit and persists the index immediately,
// so a crash right after a render does not lose the checkpoint.
func (s *State) MarkDone(id string) error {
	s.completed[id] = true
	return s.save()
}

// Len returns the number of completed units.
func (s *State) Len() int {
	return len(s.completed)
}

func (s *State) save() error {
	ids := make([]string, 0, len(s.completed))
	for id := range s.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.MarshalIndent(stateFile{Completed: ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode render state: %w", err)
	}
	if err := writeFileAtomic(s.path, append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write render state: %w", err)
	}
	return nil
}
