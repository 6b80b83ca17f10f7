package state

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	counts, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("Load() on missing file = %v, want empty", counts)
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	want := map[string]int{
		"spam@example.com":  7,
		"offer@example.net": 2,
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() reopen error = %v", err)
	}
	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "addresses.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(); err == nil {
		t.Error("Load() on corrupt file should fail")
	}
}

func TestFileStore_EmptyDir(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Error("NewFileStore with blank dir should fail")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	counts, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("fresh store Load() = %v, want empty", counts)
	}

	saved := map[string]int{"a@x.com": 1}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	saved["a@x.com"] = 99 // mutating the caller's map must not leak in

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got["a@x.com"] != 1 {
		t.Errorf("Load() = %v, want a@x.com:1", got)
	}

	got["b@y.com"] = 5 // mutating the loaded map must not leak back
	again, _ := store.Load()
	if _, ok := again["b@y.com"]; ok {
		t.Error("mutating loaded map leaked into store")
	}
}
