package kv_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tasklist/internal/kv"
)

func Test_JSONFile_Contract(t *testing.T) {
	t.Parallel()
	exerciseBackend(t, kv.NewJSONFile(filepath.Join(t.TempDir(), "sub", "store.json")))
}

func Test_JSONFile_CorruptFileReadsEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", "{not json"},
		{"array instead of object", `["a","b"]`},
		{"null", "null"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "store.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write setup file: %v", err)
			}

			b := kv.NewJSONFile(path)
			if _, ok, err := b.Get("todo.tasks"); ok || err != nil {
				t.Fatalf("Get() = ok %v, err %v; want absent, nil", ok, err)
			}

			// A write replaces the corrupt content.
			if err := b.Set("todo.tasks", "[]"); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			if got, ok, _ := b.Get("todo.tasks"); !ok || got != "[]" {
				t.Errorf("Get() after Set = %q ok %v", got, ok)
			}
		})
	}
}

func Test_JSONFile_FileLayout(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "store.json")
	b := kv.NewJSONFile(path)

	if err := b.Set("todo.tasks", `[]`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if data[len(data)-1] != '\n' {
		t.Error("file should end with a trailing newline")
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("file is not a JSON object: %v", err)
	}
	if m["todo.tasks"] != "[]" {
		t.Errorf("file content = %v", m)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the store file, found %d entries (temp file leaked?)", len(entries))
	}
}

func Test_JSONFile_UnwritableDirectory(t *testing.T) {
	t.Parallel()
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	b := kv.NewJSONFile(filepath.Join(blocker, "store.json"))
	if err := b.Set("k", "v"); err == nil {
		t.Fatal("Set() under a regular file succeeded, want error")
	}
}

func Test_JSONFile_ReadErrorIsReported(t *testing.T) {
	t.Parallel()
	// The store path is a directory, so reading it fails with something other
	// than "does not exist".
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	b := kv.NewJSONFile(path)

	if _, ok, err := b.Get("todo.tasks"); err == nil || ok {
		t.Errorf("Get() = ok %v, err %v; want error", ok, err)
	}
	if err := b.Set("todo.tasks", "[]"); err == nil {
		t.Error("Set() succeeded, want read error")
	}
	if err := b.Delete("todo.tasks"); err == nil {
		t.Error("Delete() succeeded, want read error")
	}
}

func Test_JSONFile_UnreadableFileKeepsOtherKeys(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	path := filepath.Join(t.TempDir(), "store.json")
	b := kv.NewJSONFile(path)
	if err := b.Set("other.key", "precious"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := os.Chmod(path, 0o200); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	if err := b.Set("todo.tasks", "[]"); err == nil {
		t.Fatal("Set() on an unreadable file succeeded, want error")
	}

	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if got, ok, err := b.Get("other.key"); err != nil || !ok || got != "precious" {
		t.Errorf("Get(other.key) = %q, %v, %v; want precious", got, ok, err)
	}
}
