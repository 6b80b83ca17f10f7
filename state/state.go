package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists address counts between runs so repeated scans accumulate
// and newly sighted addresses can be reported.
type Store interface {
	Load() (map[string]int, error)
	Save(counts map[string]int) error
}

// MemoryStore keeps counts for the lifetime of the process only. Used in
// tests and when persistence is disabled.
type MemoryStore struct {
	mu     sync.RWMutex
	counts map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int)}
}

func (m *MemoryStore) Load() (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int, len(m.counts))
	for addr, count := range m.counts {
		counts[addr] = count
	}
	return counts, nil
}

func (m *MemoryStore) Save(counts map[string]int) error {
	copied := make(map[string]int, len(counts))
	for addr, count := range counts {
		copied[addr] = count
	}

	m.mu.Lock()
	m.counts = copied
	m.mu.Unlock()
	return nil
}

// FileStore persists address counts as a JSON object in the state directory,
// so a later run can seed its aggregator from the previous totals.
type FileStore struct {
	path string
}

func NewFileStore(stateDir string) (*FileStore, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, fmt.Errorf("state directory is empty")
	}

	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	return &FileStore{path: filepath.Join(stateDir, "addresses.json")}, nil
}

// Path returns the location of the persisted counts file.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the persisted counts. A missing file is not an error; it yields
// an empty map for a first run.
func (f *FileStore) Load() (map[string]int, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}

	counts := make(map[string]int)
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", f.path, err)
	}

	return counts, nil
}

// Save rewrites the counts file. The write goes through a temp file and
// rename so an interrupted run cannot corrupt the previous state.
func (f *FileStore) Save(counts map[string]int) error {
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}
