package lang

import "testing"

func TestDetectByExtension(t *testing.T) {
	cases := map[string]ID{
		"main.go":      Go,
		"lib.rs":       Rust,
		"script.py":    Python,
		"app.ts":       TypeScript,
		"widget.tsx":   TSX,
		"data.yaml":    YAML,
		"config.toml":  TOML,
		"blob.json":    JSON,
		"run.sh":       Bash,
		"lib.cpp":      CPP,
		"README.md":    Plain,
		"unknown.zzzz": Plain,
	}
	for path, want := range cases {
		if got := Detect(path); got != want {
			t.Errorf("Detect(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestDetectBySpecialFilename(t *testing.T) {
	cases := map[string]ID{
		"Makefile":                     Plain,
		"Dockerfile":                   Plain,
		"go.mod":                       Go,
		"go.sum":                       Plain,
		"Cargo.toml":                   TOML,
		"package-lock.json":            JSON,
		".bashrc":                      Bash,
		"/home/user/project/.zshrc":    Bash,
		"/home/user/project/.gitignore": Plain,
	}
	for path, want := range cases {
		if got := Detect(path); got != want {
			t.Errorf("Detect(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestDetectWithShebangSniffsInterpreter(t *testing.T) {
	cases := []struct {
		path, firstLine string
		want            ID
	}{
		{"script", "#!/usr/bin/env python3", Python},
		{"script", "#!/bin/bash", Bash},
		{"script", "#!/bin/zsh", Bash},
		{"script", "#!/usr/bin/env node", JavaScript},
		{"script", "not a shebang", Plain},
		{"script.go", "#!/bin/sh", Go}, // extension wins before shebang is consulted
	}
	for _, c := range cases {
		if got := DetectWithShebang(c.path, c.firstLine); got != c.want {
			t.Errorf("DetectWithShebang(%q, %q) = %q, want %q", c.path, c.firstLine, got, c.want)
		}
	}
}

func TestResolveLSPID(t *testing.T) {
	if got := ResolveLSPID("typescriptreact"); got != TSX {
		t.Errorf("ResolveLSPID(typescriptreact) = %q, want %q", got, TSX)
	}
	if got := ResolveLSPID("unknown-lsp-id"); got != Plain {
		t.Errorf("ResolveLSPID(unknown) = %q, want plain", got)
	}
}

func TestGetFallsBackToPlain(t *testing.T) {
	if got := Get(ID("not-registered")); got.ID != Plain {
		t.Errorf("Get(unregistered) = %q, want plain descriptor", got.ID)
	}
}
