package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readString(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func TestWatchedFileBasic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(path, []byte("initial content"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWatchedFile[string](path)
	content, err := w.Load(readString)
	if err != nil {
		t.Fatal(err)
	}
	if content != "initial content" {
		t.Fatalf("got %q", content)
	}
	if w.HasChanged() {
		t.Fatalf("expected no change immediately after load")
	}

	time.Sleep(10 * time.Millisecond)
	if err := os.WriteFile(path, []byte("modified content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !w.HasChanged() {
		t.Fatalf("expected change to be detected")
	}
	content, err = w.Load(readString)
	if err != nil {
		t.Fatal(err)
	}
	if content != "modified content" {
		t.Fatalf("got %q", content)
	}
}

func TestWatchedFileDeleted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWatchedFile[string](path)
	if _, err := w.Load(readString); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !w.HasChanged() {
		t.Fatalf("expected deletion to be detected as a change")
	}

	changed, err := w.ReloadIfChanged(readString)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatalf("expected reload to report changed")
	}
	if _, ok := w.Content(); ok {
		t.Fatalf("expected content to be cleared after deletion")
	}
}

func TestWatchedFileNoPath(t *testing.T) {
	w := NewWatchedFile[string]("")
	if w.HasChanged() {
		t.Fatalf("expected no change with no path configured")
	}
	if _, ok := w.Content(); ok {
		t.Fatalf("expected no content with no path configured")
	}
}
