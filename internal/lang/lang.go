// Package lang is the Language Registry: it maps a file extension, LSP
// language id, or special filename to an immutable LanguageDescriptor built
// once at process startup.
package lang

import (
	"path/filepath"
	"strings"
)

// ID identifies a supported grammar/dictionary-hint set.
type ID string

const (
	Plain      ID = "plain"
	Go         ID = "go"
	Rust       ID = "rust"
	Python     ID = "python"
	JavaScript ID = "javascript"
	TypeScript ID = "typescript"
	TSX        ID = "tsx"
	YAML       ID = "yaml"
	TOML       ID = "toml"
	JSON       ID = "json"
	Bash       ID = "bash"
	C          ID = "c"
	CPP        ID = "cpp"
	Zig        ID = "zig"
)

// Descriptor is the spec's LanguageDescriptor: immutable, loaded once.
// FileNames and Interpreters are the full-filename and shebang-interpreter
// counterparts of FileExtensions, folded into the descriptor itself so
// DictionaryHints, extensions, special filenames and interpreters all live
// on the one record a dictionary lookup ultimately needs, rather than in
// parallel free-standing tables.
type Descriptor struct {
	ID              ID
	LSPIDs          []string
	FileExtensions  []string
	FileNames       []string
	Interpreters    []string
	DictionaryHints []string
	QuerySource     string
}

var registry = map[ID]*Descriptor{
	Plain: {
		ID:              Plain,
		LSPIDs:          []string{"plaintext", "markdown"},
		FileNames:       []string{"Makefile", "Dockerfile", ".gitignore", ".editorconfig", "go.sum"},
		DictionaryHints: nil,
		QuerySource:     "",
	},
	Go: {
		ID:              Go,
		LSPIDs:          []string{"go"},
		FileExtensions:  []string{".go"},
		FileNames:       []string{"go.mod"},
		DictionaryHints: []string{"go"},
		QuerySource:     queryGo,
	},
	Rust: {
		ID:              Rust,
		LSPIDs:          []string{"rust"},
		FileExtensions:  []string{".rs"},
		DictionaryHints: []string{"rust"},
		QuerySource:     queryRust,
	},
	Python: {
		ID:              Python,
		LSPIDs:          []string{"python"},
		FileExtensions:  []string{".py", ".pyi"},
		Interpreters:    []string{"python"},
		DictionaryHints: []string{"python"},
		QuerySource:     queryPython,
	},
	JavaScript: {
		ID:              JavaScript,
		LSPIDs:          []string{"javascript", "javascriptreact"},
		FileExtensions:  []string{".js", ".jsx", ".mjs", ".cjs"},
		Interpreters:    []string{"node"},
		DictionaryHints: []string{"javascript"},
		QuerySource:     queryJavaScript,
	},
	TypeScript: {
		ID:              TypeScript,
		LSPIDs:          []string{"typescript"},
		FileExtensions:  []string{".ts", ".mts", ".cts"},
		DictionaryHints: []string{"javascript", "typescript"},
		QuerySource:     queryTypeScript,
	},
	TSX: {
		ID:              TSX,
		LSPIDs:          []string{"typescriptreact"},
		FileExtensions:  []string{".tsx"},
		DictionaryHints: []string{"javascript", "typescript"},
		QuerySource:     queryTSX,
	},
	YAML: {
		ID:              YAML,
		LSPIDs:          []string{"yaml"},
		FileExtensions:  []string{".yaml", ".yml"},
		DictionaryHints: nil,
		QuerySource:     queryYAML,
	},
	TOML: {
		ID:              TOML,
		LSPIDs:          []string{"toml"},
		FileExtensions:  []string{".toml"},
		FileNames:       []string{"Cargo.toml"},
		DictionaryHints: nil,
		QuerySource:     queryTOML,
	},
	JSON: {
		ID:              JSON,
		LSPIDs:          []string{"json", "jsonc"},
		FileExtensions:  []string{".json", ".jsonc", ".json5"},
		FileNames:       []string{"package-lock.json"},
		DictionaryHints: nil,
		QuerySource:     queryJSON,
	},
	Bash: {
		ID:              Bash,
		LSPIDs:          []string{"shellscript"},
		FileExtensions:  []string{".sh", ".bash", ".zsh"},
		FileNames:       []string{".bashrc", ".zshrc"},
		Interpreters:    []string{"bash", "zsh", "sh"},
		DictionaryHints: nil,
		QuerySource:     queryBash,
	},
	C: {
		ID:              C,
		LSPIDs:          []string{"c"},
		FileExtensions:  []string{".c", ".h"},
		DictionaryHints: []string{"c"},
		QuerySource:     queryC,
	},
	CPP: {
		ID:              CPP,
		LSPIDs:          []string{"cpp"},
		FileExtensions:  []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
		DictionaryHints: []string{"cpp"},
		QuerySource:     queryCPP,
	},
	Zig: {
		ID:              Zig,
		LSPIDs:          []string{"zig"},
		FileExtensions:  []string{".zig"},
		DictionaryHints: []string{"zig"},
		QuerySource:     queryZig,
	},
}

var extMap map[string]ID
var lspMap map[string]ID
var fileMap map[string]ID

func init() {
	extMap = make(map[string]ID)
	lspMap = make(map[string]ID)
	fileMap = make(map[string]ID)
	for id, d := range registry {
		for _, ext := range d.FileExtensions {
			extMap[ext] = id
		}
		for _, lsp := range d.LSPIDs {
			lspMap[lsp] = id
		}
		for _, name := range d.FileNames {
			fileMap[name] = id
		}
	}
}

// Get returns the descriptor for id, or the plaintext descriptor if absent.
func Get(id ID) *Descriptor {
	if d, ok := registry[id]; ok {
		return d
	}
	return registry[Plain]
}

// Detect resolves a LanguageDescriptor from a file path by special filename
// then extension, falling back to plaintext.
func Detect(path string) ID {
	base := filepath.Base(path)
	if id, ok := fileMap[base]; ok {
		return id
	}
	ext := strings.ToLower(filepath.Ext(base))
	if id, ok := extMap[ext]; ok {
		return id
	}
	return Plain
}

// DetectWithShebang extends Detect with interpreter-line sniffing for
// extensionless scripts, matching the shebang against the registered
// Interpreters of the Python, Bash and JavaScript descriptors, in that
// order. Interpreters listed on any other descriptor are not consulted.
func DetectWithShebang(path string, firstLine string) ID {
	if id := Detect(path); id != Plain {
		return id
	}

	if !strings.HasPrefix(firstLine, "#!") {
		return Plain
	}
	lower := strings.ToLower(firstLine)
	for _, id := range []ID{Python, Bash, JavaScript} {
		for _, interp := range registry[id].Interpreters {
			if strings.Contains(lower, interp) {
				return id
			}
		}
	}
	return Plain
}

// ResolveLSPID resolves an LSP languageId (as sent in didOpen) to an ID.
func ResolveLSPID(lspID string) ID {
	if id, ok := lspMap[lspID]; ok {
		return id
	}
	return Plain
}
