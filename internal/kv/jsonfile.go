package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile stores every key in a single JSON object on disk.
//
// Writes go to a temporary file in the same directory followed by os.Rename,
// so a reader never observes a half-written file. A missing or corrupt file
// reads as an empty store; any other read failure is returned.
type JSONFile struct {
	// Path is the absolute path to the JSON file.
	Path string

	mu sync.Mutex
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func (b *JSONFile) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.read()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (b *JSONFile) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.read()
	if err != nil {
		return err
	}
	m[key] = value
	return b.write(m)
}

func (b *JSONFile) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.read()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return b.write(m)
}

func (b *JSONFile) read() (map[string]string, error) {
	m := make(map[string]string)
	data, err := os.ReadFile(b.Path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.Path, err)
	}
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string), nil
	}
	return m, nil
}

func (b *JSONFile) write(m map[string]string) error {
	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, "*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return closeErr
	}

	if err := os.Rename(tmpPath, b.Path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
