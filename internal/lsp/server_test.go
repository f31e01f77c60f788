package lsp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"codebooklsp/internal/config"
	"codebooklsp/internal/dictionary"
	"codebooklsp/internal/extractor"
	"codebooklsp/internal/logging"
	"codebooklsp/internal/pipeline"
)

// fixedDictionaries always resolves to the same dictionary set, standing
// in for the real config-driven dictionary.Manager in these tests.
type fixedDictionaries struct {
	dicts []dictionary.Dictionary
}

func (f fixedDictionaries) Resolve(ids []string) []dictionary.Dictionary {
	return f.dicts
}

func newTestServer(t *testing.T, words ...string) (*Server, *bytes.Buffer) {
	t.Helper()
	srv, out, _ := newTestServerWithLoader(t, words...)
	return srv, out
}

// newTestServerWithLoader builds a Server backed by a real config.Loader
// rooted in a scratch directory, so tests can exercise the
// workspace/executeCommand persistence path end to end.
func newTestServerWithLoader(t *testing.T, words ...string) (*Server, *bytes.Buffer, *config.Loader) {
	t.Helper()
	dict, err := dictionary.NewTextDictionary("test", words)
	if err != nil {
		t.Fatalf("building test dictionary: %v", err)
	}
	orch := pipeline.New(extractor.New(1), dictionary.NewEngine(64))
	store := config.NewStore()
	store.Swap(&config.EffectiveConfig{Merged: config.Default()})

	dir := t.TempDir()
	projectPath := filepath.Join(dir, "codebook.toml")
	if err := os.WriteFile(projectPath, []byte(""), 0o644); err != nil {
		t.Fatalf("seeding project config: %v", err)
	}
	loader := config.NewLoader(filepath.Join(dir, "global", "codebook.toml"))
	loader.SetProjectDir(dir)

	var out bytes.Buffer
	transport := NewTransport(bytes.NewReader(nil), &out)
	srv := NewServer(transport, orch, fixedDictionaries{dicts: []dictionary.Dictionary{dict}}, store, loader, logging.New(logging.Error, &bytes.Buffer{}))
	return srv, &out, loader
}

func decodeNotifications(t *testing.T, buf *bytes.Buffer) []Message {
	t.Helper()
	var out []Message
	data := buf.Bytes()
	for len(data) > 0 {
		idx := bytes.Index(data, []byte("\r\n\r\n"))
		if idx < 0 {
			break
		}
		header := string(data[:idx])
		var length int
		if _, err := fmt.Sscanf(header, "Content-Length: %d", &length); err != nil {
			t.Fatalf("bad header %q: %v", header, err)
		}
		body := data[idx+4 : idx+4+length]
		var msg Message
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		out = append(out, msg)
		data = data[idx+4+length:]
	}
	return out
}

func TestHandleInitializeRespondsWithCapabilities(t *testing.T) {
	srv, out := newTestServer(t)
	params, _ := json.Marshal(InitializeParams{RootURI: "file:///tmp/proj"})
	id := json.RawMessage(`1`)
	srv.dispatch(&Message{JSONRPC: "2.0", ID: id, Method: "initialize", Params: params})

	msgs := decodeNotifications(t, out)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 response, got %d", len(msgs))
	}
	if msgs[0].Error != nil {
		t.Fatalf("unexpected error: %+v", msgs[0].Error)
	}
	if srv.root != "file:///tmp/proj" {
		t.Errorf("expected root to be recorded, got %q", srv.root)
	}
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	srv, out := newTestServer(t, "hello")
	params, _ := json.Marshal(DidOpenTextDocumentParams{TextDocument: TextDocumentItem{
		URI:        "file:///tmp/a.ts",
		LanguageID: "typescript",
		Text:       `const myVarible = "Hello Wolrd";`,
	}})
	srv.dispatch(&Message{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: params})

	msgs := decodeNotifications(t, out)
	if len(msgs) != 1 || msgs[0].Method != "textDocument/publishDiagnostics" {
		t.Fatalf("expected a single publishDiagnostics notification, got %+v", msgs)
	}
	var diagParams PublishDiagnosticsParams
	if err := json.Unmarshal(msgs[0].Params, &diagParams); err != nil {
		t.Fatal(err)
	}
	if len(diagParams.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %+v", len(diagParams.Diagnostics), diagParams.Diagnostics)
	}
	for _, d := range diagParams.Diagnostics {
		if d.Source != sourceName {
			t.Errorf("expected source %q, got %q", sourceName, d.Source)
		}
	}
}

func TestDidChangeHonorsCheckWhileTypingFalse(t *testing.T) {
	srv, out := newTestServer(t)
	disabled := false
	srv.options = ClientInitializationOptions{CheckWhileTyping: &disabled}

	openParams, _ := json.Marshal(DidOpenTextDocumentParams{TextDocument: TextDocumentItem{
		URI: "file:///tmp/a.go", LanguageID: "go", Text: "package main\n",
	}})
	srv.dispatch(&Message{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: openParams})
	out.Reset()

	changeParams, _ := json.Marshal(DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: "file:///tmp/a.go", Version: 2},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: "package main\n// prosess\n"}},
	})
	srv.dispatch(&Message{JSONRPC: "2.0", Method: "textDocument/didChange", Params: changeParams})

	if out.Len() != 0 {
		t.Errorf("expected no diagnostics published while checkWhileTyping is false, got %q", out.String())
	}

	srv.mu.Lock()
	doc := srv.documents["file:///tmp/a.go"]
	srv.mu.Unlock()
	if doc.revision != 1 {
		t.Errorf("expected revision to still advance to 1, got %d", doc.revision)
	}
}

func TestDidChangeAdvancesRevisionAndReplacesCancelFunc(t *testing.T) {
	srv, _ := newTestServer(t)
	openParams, _ := json.Marshal(DidOpenTextDocumentParams{TextDocument: TextDocumentItem{
		URI: "file:///tmp/a.go", LanguageID: "go", Text: "package main\n",
	}})
	srv.dispatch(&Message{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: openParams})

	srv.mu.Lock()
	doc := srv.documents["file:///tmp/a.go"]
	firstRevision := doc.revision
	srv.mu.Unlock()

	changeParams, _ := json.Marshal(DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: "file:///tmp/a.go", Version: 2},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: "package main\n// x\n"}},
	})
	srv.dispatch(&Message{JSONRPC: "2.0", Method: "textDocument/didChange", Params: changeParams})

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if doc.revision <= firstRevision {
		t.Errorf("expected revision to advance past %d, got %d", firstRevision, doc.revision)
	}
	if doc.text != "package main\n// x\n" {
		t.Errorf("expected full-sync replacement text, got %q", doc.text)
	}
}

func TestCodeActionOffersSuggestionsAndAddWordCommands(t *testing.T) {
	srv, out := newTestServer(t, "hello")
	openParams, _ := json.Marshal(DidOpenTextDocumentParams{TextDocument: TextDocumentItem{
		URI: "file:///tmp/a.go", LanguageID: "go", Text: "// helo\n",
	}})
	srv.dispatch(&Message{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: openParams})
	out.Reset()

	diag := Diagnostic{
		Range:   Range{Start: Position{Line: 0, Character: 3}, End: Position{Line: 0, Character: 7}},
		Source:  sourceName,
		Message: `Possible spelling issue "helo".`,
	}
	params, _ := json.Marshal(CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///tmp/a.go"},
		Context:      CodeActionContext{Diagnostics: []Diagnostic{diag}},
	})
	id := json.RawMessage(`2`)
	srv.dispatch(&Message{JSONRPC: "2.0", ID: id, Method: "textDocument/codeAction", Params: params})

	msgs := decodeNotifications(t, out)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 response, got %d", len(msgs))
	}
	var actions []CodeAction
	if err := json.Unmarshal(toRaw(t, msgs[0].Result), &actions); err != nil {
		t.Fatal(err)
	}

	var haveAddProject, haveAddGlobal, haveFlag bool
	for _, a := range actions {
		if a.Command == nil {
			continue
		}
		switch a.Command.Command {
		case commandAddWord:
			haveAddProject = true
		case commandAddWordGlobal:
			haveAddGlobal = true
		case commandAddFlagWord:
			haveFlag = true
		}
	}
	if !haveAddProject || !haveAddGlobal || !haveFlag {
		t.Errorf("expected project/global/flag add-word actions, got %+v", actions)
	}
}

func TestExecuteAddWordPersistsToProjectConfigAndStopsFlagging(t *testing.T) {
	srv, out, loader := newTestServerWithLoader(t)
	openParams, _ := json.Marshal(DidOpenTextDocumentParams{TextDocument: TextDocumentItem{
		URI: "file:///tmp/a.go", LanguageID: "go", Text: "// wrold\n",
	}})
	srv.dispatch(&Message{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: openParams})

	msgs := decodeNotifications(t, out)
	var diagParams PublishDiagnosticsParams
	if err := json.Unmarshal(msgs[len(msgs)-1].Params, &diagParams); err != nil {
		t.Fatal(err)
	}
	if len(diagParams.Diagnostics) != 1 {
		t.Fatalf("expected 'wrold' to be flagged before adding it, got %+v", diagParams.Diagnostics)
	}
	out.Reset()

	execParams, _ := json.Marshal(ExecuteCommandParams{Command: commandAddWord, Arguments: []any{"wrold"}})
	id := json.RawMessage(`4`)
	srv.dispatch(&Message{JSONRPC: "2.0", ID: id, Method: "workspace/executeCommand", Params: execParams})

	projectPath := loader.Describe()
	data, err := os.ReadFile(projectPath)
	if err != nil {
		t.Fatalf("reading persisted project config: %v", err)
	}
	persisted, err := config.ParseTOML(data)
	if err != nil {
		t.Fatalf("parsing persisted project config: %v", err)
	}
	found := false
	for _, w := range persisted.Words {
		if w == "wrold" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'wrold' to be persisted to the project config's words list, got %v", persisted.Words)
	}

	msgs = decodeNotifications(t, out)
	var last PublishDiagnosticsParams
	for _, m := range msgs {
		if m.Method == "textDocument/publishDiagnostics" {
			_ = json.Unmarshal(m.Params, &last)
		}
	}
	if len(last.Diagnostics) != 0 {
		t.Errorf("expected the recheck triggered by executeCommand to no longer flag 'wrold', got %+v", last.Diagnostics)
	}
}

func toRaw(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestCodeActionIgnoresForeignDiagnostics(t *testing.T) {
	srv, out := newTestServer(t)
	openParams, _ := json.Marshal(DidOpenTextDocumentParams{TextDocument: TextDocumentItem{
		URI: "file:///tmp/a.go", LanguageID: "go", Text: "// helo\n",
	}})
	srv.dispatch(&Message{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: openParams})
	out.Reset()

	diag := Diagnostic{
		Range:  Range{Start: Position{Line: 0, Character: 3}, End: Position{Line: 0, Character: 7}},
		Source: "some-other-linter",
	}
	params, _ := json.Marshal(CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///tmp/a.go"},
		Context:      CodeActionContext{Diagnostics: []Diagnostic{diag}},
	})
	id := json.RawMessage(`3`)
	srv.dispatch(&Message{JSONRPC: "2.0", ID: id, Method: "textDocument/codeAction", Params: params})

	msgs := decodeNotifications(t, out)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 response, got %d", len(msgs))
	}
	if msgs[0].Result != nil {
		t.Errorf("expected nil result for a foreign diagnostic, got %v", msgs[0].Result)
	}
}
