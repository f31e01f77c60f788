package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestByteOffsetToLineCol(t *testing.T) {
	text := "line one\nline two\nline three"
	cases := []struct {
		offset   int
		wantLine int
		wantCol  int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{9, 2, 1},
		{14, 2, 6},
	}
	for _, c := range cases {
		line, col := byteOffsetToLineCol(text, c.offset)
		if line != c.wantLine || col != c.wantCol {
			t.Errorf("offset %d: got %d:%d, want %d:%d", c.offset, line, col, c.wantLine, c.wantCol)
		}
	}
}

func TestDedupRemovesAdjacentDuplicatesFromSortedInput(t *testing.T) {
	in := []string{"a", "a", "b", "c", "c", "c"}
	got := dedup(in)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestStdStylesRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	s := stdStyles(true)
	if s.bold != "" || s.boldRed != "" {
		t.Errorf("expected empty styles when NO_COLOR is set, got %+v", s)
	}
}

func TestStdStylesOffWhenNotATerminal(t *testing.T) {
	s := stdStyles(false)
	if s.bold != "" {
		t.Errorf("expected empty styles when not a terminal, got %+v", s)
	}
}

func TestResolvePathsExpandsDirectoryRecursively(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b.go"), []byte("package b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := resolvePaths([]string{dir})
	if len(got) != 2 {
		t.Fatalf("expected 2 files, got %v", got)
	}
}

func TestResolvePathsExpandsGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.go", "two.go", "three.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := resolvePaths([]string{filepath.Join(dir, "*.go")})
	if len(got) != 2 {
		t.Fatalf("expected 2 .go files, got %v", got)
	}
}
