package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const stateFileName = ".export-state.json"

// exportState is the sidecar persisted alongside the jsonl files (spec.md
// §6.4): per-table last content hash plus the last export timestamp.
type exportState struct {
	LastHashes   map[string]string `json:"lastHashes"`
	LastExportAt string            `json:"lastExportAt"`
}

func loadState(dir string) (*exportState, error) {
	path := filepath.Join(dir, stateFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &exportState{LastHashes: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var state exportState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if state.LastHashes == nil {
		state.LastHashes = map[string]string{}
	}
	return &state, nil
}

func saveState(dir string, state *exportState) error {
	path := filepath.Join(dir, stateFileName)
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export state: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
