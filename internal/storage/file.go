package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// File is a Backend persisted as a single JSON file. Every write rewrites
// the file through a temp file and rename, so a crash never leaves a
// half-written store behind. Suited to CLI use, not to large datasets.
type File struct {
	path string
	mu   sync.Mutex
	data map[string][]byte
}

// OpenFile loads the store at path, creating an empty one if absent.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string][]byte)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	return f, nil
}

func (f *File) Load(_ context.Context, key []byte) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (f *File) Save(_ context.Context, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	f.data[string(key)] = stored
	return f.flush()
}

func (f *File) Scan(_ context.Context, prefix []byte) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []Entry
	for k, v := range f.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			value := make([]byte, len(v))
			copy(value, v)
			entries = append(entries, Entry{Key: []byte(k), Value: value})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Key, entries[j].Key) < 0
	})
	return entries, nil
}

func (f *File) flush() error {
	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	raw, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write store tmp: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}
