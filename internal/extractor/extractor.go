// Package extractor implements the Token Extractor (component E): it walks
// a tree-sitter parse tree through a per-language, definition-site-only
// query and yields (role, byte-range) captures. Its parser-pool and
// compiled-query-cache architecture is ported from the pooled-parser /
// worker / LRU design in oomathias-snav/src/internal/highlighter/highlighter.go,
// replacing that file's heuristic node-type classifier with real
// declarative .scm query execution (spec.md §4.E requires normative,
// per-language queries, not heuristics).
package extractor

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	bashlang "github.com/smacker/go-tree-sitter/bash"
	clang "github.com/smacker/go-tree-sitter/c"
	cpplang "github.com/smacker/go-tree-sitter/cpp"
	golang "github.com/smacker/go-tree-sitter/golang"
	python "github.com/smacker/go-tree-sitter/python"
	rust "github.com/smacker/go-tree-sitter/rust"
	tomllang "github.com/smacker/go-tree-sitter/toml"
	tsxlang "github.com/smacker/go-tree-sitter/typescript/tsx"
	tslang "github.com/smacker/go-tree-sitter/typescript/typescript"
	yamllang "github.com/smacker/go-tree-sitter/yaml"
	tsjson "github.com/tree-sitter/tree-sitter-json/bindings/go"
	tszig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"

	"codebooklsp/internal/lang"
)

// Role tags the linguistic purpose of a capture.
type Role int

const (
	RoleComment Role = iota
	RoleString
	RoleIdentifier
)

// Capture is a tree-sitter query result tagged with a role and byte range,
// matching the spec.md Data Model's "Capture".
type Capture struct {
	Role  Role
	Start int
	End   int
}

type langResources struct {
	language *sitter.Language
	query    *sitter.Query
	pool     chan *sitter.Parser
}

// Extractor owns the per-language grammar/query/parser-pool resources.
// Long-lived and shared; safe for concurrent use from multiple workers.
type Extractor struct {
	mu        sync.Mutex
	resources map[lang.ID]*langResources
	poolSize  int
}

// New builds an Extractor. poolSize controls how many parsers are pooled
// per language (spec.md §5: "one parser per language, leased to a worker").
func New(poolSize int) *Extractor {
	if poolSize <= 0 {
		poolSize = 2
	}
	return &Extractor{
		resources: make(map[lang.ID]*langResources),
		poolSize:  poolSize,
	}
}

func grammarFor(id lang.ID) *sitter.Language {
	switch id {
	case lang.Go:
		return golang.GetLanguage()
	case lang.Rust:
		return rust.GetLanguage()
	case lang.Python:
		return python.GetLanguage()
	case lang.JavaScript:
		return tslang.GetLanguage()
	case lang.TypeScript:
		return tslang.GetLanguage()
	case lang.TSX:
		return tsxlang.GetLanguage()
	case lang.YAML:
		return yamllang.GetLanguage()
	case lang.TOML:
		return tomllang.GetLanguage()
	case lang.JSON:
		return sitter.NewLanguage(tsjson.Language())
	case lang.Bash:
		return bashlang.GetLanguage()
	case lang.C:
		return clang.GetLanguage()
	case lang.CPP:
		return cpplang.GetLanguage()
	case lang.Zig:
		return sitter.NewLanguage(tszig.Language())
	default:
		return nil
	}
}

func (e *Extractor) resourcesFor(id lang.ID) (*langResources, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r, ok := e.resources[id]; ok {
		return r, nil
	}

	descriptor := lang.Get(id)
	grammar := grammarFor(id)
	if grammar == nil || descriptor.QuerySource == "" {
		return nil, nil // plaintext / unsupported: caller synthesizes a whole-file capture
	}

	query, err := sitter.NewQuery([]byte(descriptor.QuerySource), grammar)
	if err != nil {
		return nil, fmt.Errorf("compiling query for %s: %w", id, err)
	}

	pool := make(chan *sitter.Parser, e.poolSize)
	for i := 0; i < e.poolSize; i++ {
		p := sitter.NewParser()
		p.SetLanguage(grammar)
		pool <- p
	}

	r := &langResources{language: grammar, query: query, pool: pool}
	e.resources[id] = r
	return r, nil
}

func (e *Extractor) lease(r *langResources) *sitter.Parser {
	return <-r.pool
}

func (e *Extractor) release(r *langResources, p *sitter.Parser) {
	r.pool <- p
}

// Supported reports whether id has a compiled grammar/query (as opposed to
// falling back to the plain-text whole-file capture).
func (e *Extractor) Supported(id lang.ID) bool {
	return grammarFor(id) != nil && lang.Get(id).QuerySource != ""
}

// Extract parses source under the grammar for id and runs its query,
// returning captures in source order. If id has no grammar/query, it
// returns a single synthetic RoleString capture spanning the whole buffer
// (spec.md §4.F step 3's plain-text fallback).
func (e *Extractor) Extract(ctx context.Context, source []byte, id lang.ID) ([]Capture, error) {
	r, err := e.resourcesFor(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		if len(source) == 0 {
			return nil, nil
		}
		return []Capture{{Role: RoleString, Start: 0, End: len(source)}}, nil
	}

	parser := e.lease(r)
	defer e.release(r, parser)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		// ParseFailed: fail-silent, empty captures (spec.md §7).
		return nil, nil
	}
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(r.query, tree.RootNode())

	var raw []Capture
	identifierRanges := make(map[[2]int]struct{})

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			name := r.query.CaptureNameForId(c.Index)
			role, ok := roleForCaptureName(name)
			if !ok {
				continue
			}
			start := int(c.Node.StartByte())
			end := int(c.Node.EndByte())
			if role == RoleString && end-start >= 2 {
				// keep only the inner text of a quoted literal node
				if q := source[start]; (q == '"' || q == '\'' || q == '`') && source[end-1] == q {
					start, end = start+1, end-1
				}
			}
			if role == RoleIdentifier {
				identifierRanges[[2]int{start, end}] = struct{}{}
			}
			raw = append(raw, Capture{Role: role, Start: start, End: end})
		}
	}

	// Drop @string captures whose range exactly matches an @identifier
	// capture (e.g. JSON object keys, where the same string_content node
	// is both the field's definition site and its literal text).
	out := raw[:0:0]
	for _, c := range raw {
		if c.Role == RoleString {
			if _, isIdentifier := identifierRanges[[2]int{c.Start, c.End}]; isIdentifier {
				continue
			}
		}
		out = append(out, c)
	}

	return out, nil
}

func roleForCaptureName(name string) (Role, bool) {
	switch name {
	case "comment":
		return RoleComment, true
	case "string":
		return RoleString, true
	case "identifier":
		return RoleIdentifier, true
	default:
		return 0, false
	}
}
