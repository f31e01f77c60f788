package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"codebooklsp/internal/config"
	"codebooklsp/internal/dictionary"
	"codebooklsp/internal/lang"
	"codebooklsp/internal/logging"
	"codebooklsp/internal/pipeline"
)

// document is the server's cached view of one open buffer, grounded on
// lsp.rs's file_cache::TextDocumentCache entries plus a revision counter
// for cooperative cancellation (spec.md §5).
type document struct {
	uri        string
	languageID string
	text       string
	revision   uint64
	cancel     context.CancelFunc
}

// DictionaryProvider resolves the active Dictionary set for a document's
// EffectiveConfig, decoupling the server from the Dictionary Engine's
// loading/caching details.
type DictionaryProvider interface {
	Resolve(ids []string) []dictionary.Dictionary
}

// Server implements the handful of LSP methods the spell checker needs over
// a Transport, delegating actual checking to a pipeline.Orchestrator.
type Server struct {
	t      *Transport
	orch   *pipeline.Orchestrator
	dicts  DictionaryProvider
	cfg    *config.Store
	loader *config.Loader
	log    *logging.Logger
	root   string

	mu        sync.Mutex
	documents map[string]*document

	options  ClientInitializationOptions
	severity Severity

	shutdown int32
}

// NewServer wires a Server over transport t. loader may be nil, in which
// case the add-word/add-flag-word commands become no-ops beyond
// acknowledging the request (there is nowhere to persist them).
func NewServer(t *Transport, orch *pipeline.Orchestrator, dicts DictionaryProvider, cfg *config.Store, loader *config.Loader, log *logging.Logger) *Server {
	return &Server{
		t:         t,
		orch:      orch,
		dicts:     dicts,
		cfg:       cfg,
		loader:    loader,
		log:       log,
		documents: make(map[string]*document),
		severity:  SeverityInformation,
	}
}

// Serve runs the read loop until the stream closes or shutdown completes.
func (s *Server) Serve() error {
	for {
		msg, err := s.t.ReadMessage()
		if err != nil {
			return err
		}
		s.dispatch(msg)
		if atomic.LoadInt32(&s.shutdown) == 2 {
			return nil
		}
	}
}

func (s *Server) dispatch(msg *Message) {
	switch msg.Method {
	case "initialize":
		s.handleInitialize(msg)
	case "initialized":
		// no-op: nothing to do once the client acks initialization.
	case "textDocument/didOpen":
		s.handleDidOpen(msg)
	case "textDocument/didChange":
		s.handleDidChange(msg)
	case "textDocument/didSave":
		s.handleDidSave(msg)
	case "textDocument/didClose":
		s.handleDidClose(msg)
	case "textDocument/codeAction":
		s.handleCodeAction(msg)
	case "workspace/executeCommand":
		s.handleExecuteCommand(msg)
	case "shutdown":
		atomic.StoreInt32(&s.shutdown, 1)
		if msg.ID != nil {
			_ = s.t.Respond(msg.ID, nil)
		}
	case "exit":
		atomic.StoreInt32(&s.shutdown, 2)
	default:
		if msg.ID != nil {
			_ = s.t.RespondError(msg.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", msg.Method))
		}
	}
}

func (s *Server) handleInitialize(msg *Message) {
	var params InitializeParams
	_ = json.Unmarshal(msg.Params, &params)

	var opts ClientInitializationOptions
	if len(params.InitializationOptions) > 0 {
		if err := json.Unmarshal(params.InitializationOptions, &opts); err != nil && s.log != nil {
			s.log.Warnf("failed to decode initializationOptions, using defaults: %v", err)
		}
	}
	s.options = opts.Defaulted()
	s.severity = ParseSeverity(s.options.DiagnosticSeverity)
	if s.log != nil {
		s.log.SetLevel(logging.ParseLevel(s.options.LogLevel))
	}

	s.root = params.RootURI
	if s.root == "" {
		s.root = params.RootPath
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:   1, // full sync
			CodeActionProvider: true,
			ExecuteCommandProvider: &ExecuteCommandOptions{
				Commands: []string{commandAddWord, commandAddWordGlobal, commandAddFlagWord},
			},
		},
		ServerInfo: ServerInfo{Name: "codebooklsp", Version: "0.1.0"},
	}
	if msg.ID != nil {
		_ = s.t.Respond(msg.ID, result)
	}
}

func (s *Server) handleDidOpen(msg *Message) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return
	}
	s.mu.Lock()
	doc := &document{uri: params.TextDocument.URI, languageID: params.TextDocument.LanguageID, text: params.TextDocument.Text}
	s.documents[doc.uri] = doc
	s.mu.Unlock()
	s.checkAndPublish(doc.uri)
}

func (s *Server) handleDidChange(msg *Message) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return
	}
	s.mu.Lock()
	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		doc = &document{uri: params.TextDocument.URI}
		s.documents[doc.uri] = doc
	}
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			doc.text = change.Text // full sync: spec.md §6 declares full text sync only
			continue
		}
		idx := NewOffsetIndex(doc.text)
		start := idx.ByteOffset(change.Range.Start)
		end := idx.ByteOffset(change.Range.End)
		doc.text = doc.text[:start] + change.Text + doc.text[end:]
	}
	doc.revision++
	if doc.cancel != nil {
		doc.cancel() // cooperative cancellation of the in-flight check for the stale revision
	}
	s.mu.Unlock()

	if s.options.CheckWhileTyping != nil && !*s.options.CheckWhileTyping {
		return
	}
	s.checkAndPublish(doc.uri)
}

func (s *Server) handleDidSave(msg *Message) {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return
	}
	if params.Text != "" {
		s.mu.Lock()
		if doc, ok := s.documents[params.TextDocument.URI]; ok {
			doc.text = params.Text
			doc.revision++
		}
		s.mu.Unlock()
	}
	s.checkAndPublish(params.TextDocument.URI)
}

func (s *Server) handleDidClose(msg *Message) {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return
	}
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()
}

// checkAndPublish runs the pipeline for uri's current text and publishes
// diagnostics, discarding the result if a newer revision superseded it by
// the time the check completes (spec.md §5's ordering guarantee).
func (s *Server) checkAndPublish(uri string) {
	s.mu.Lock()
	doc, ok := s.documents[uri]
	if !ok {
		s.mu.Unlock()
		return
	}
	revision := doc.revision
	ctx, cancel := context.WithCancel(context.Background())
	doc.cancel = cancel
	text := doc.text
	languageID := doc.languageID
	s.mu.Unlock()

	path := uriToPath(uri)
	snapshot := s.cfg.Load()
	settings := snapshot.ResolveForPath(path)
	dicts := s.dicts.Resolve(settings.DictionaryIDs())

	var id lang.ID
	if languageID != "" {
		id = lang.ResolveLSPID(languageID)
	}

	results, err := s.orch.Check(ctx, pipeline.Request{
		Source:       []byte(text),
		Path:         path,
		LanguageID:   id,
		Settings:     settings,
		Dictionaries: dicts,
	})
	if err != nil {
		if s.log != nil && ctx.Err() == nil {
			s.log.Warnf("spell check failed for %s: %v", uri, err)
		}
		return
	}

	s.mu.Lock()
	stale := doc.revision != revision
	s.mu.Unlock()
	if stale {
		return
	}

	idx := NewOffsetIndex(text)
	diags := make([]Diagnostic, 0, len(results))
	for _, wl := range results {
		for _, r := range wl.Locations {
			diags = append(diags, Diagnostic{
				Range:    idx.Range(r.Start, r.End),
				Severity: s.severity,
				Source:   sourceName,
				Message:  fmt.Sprintf("Possible spelling issue %q.", wl.Word),
			})
		}
	}

	_ = s.t.Notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

func (s *Server) handleCodeAction(msg *Message) {
	var params CodeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		if msg.ID != nil {
			_ = s.t.RespondError(msg.ID, codeInvalidParams, err.Error())
		}
		return
	}

	s.mu.Lock()
	doc, ok := s.documents[params.TextDocument.URI]
	s.mu.Unlock()
	if !ok {
		if msg.ID != nil {
			_ = s.t.Respond(msg.ID, nil)
		}
		return
	}

	snapshot := s.cfg.Load()
	settings := snapshot.ResolveForPath(uriToPath(params.TextDocument.URI))
	dicts := s.dicts.Resolve(settings.DictionaryIDs())

	var actions []CodeAction
	for _, diag := range params.Context.Diagnostics {
		if diag.Source != sourceName {
			continue
		}
		word := wordAt(doc.text, diag.Range)
		if word == "" || strings.ContainsAny(word, " \t") {
			continue
		}

		suggestions := suggestFor(s.orch, word, dicts)
		for _, sug := range suggestions {
			actions = append(actions, CodeAction{
				Title: fmt.Sprintf("Change to %q", sug),
				Kind:  "quickfix",
				Edit: &WorkspaceEdit{Changes: map[string][]TextEdit{
					params.TextDocument.URI: {{Range: diag.Range, NewText: sug}},
				}},
			})
		}

		actions = append(actions,
			CodeAction{
				Title:   fmt.Sprintf("Add %q to project dictionary", word),
				Kind:    "quickfix",
				Command: &Command{Title: "Add to project dictionary", Command: commandAddWord, Arguments: []any{word}},
			},
			CodeAction{
				Title:   fmt.Sprintf("Add %q to global dictionary", word),
				Kind:    "quickfix",
				Command: &Command{Title: "Add to global dictionary", Command: commandAddWordGlobal, Arguments: []any{word}},
			},
			CodeAction{
				Title:   fmt.Sprintf("Flag %q as always misspelled", word),
				Kind:    "quickfix",
				Command: &Command{Title: "Add to flag words", Command: commandAddFlagWord, Arguments: []any{word}},
			},
		)
	}

	if msg.ID == nil {
		return
	}
	if len(actions) == 0 {
		_ = s.t.Respond(msg.ID, nil)
		return
	}
	_ = s.t.Respond(msg.ID, actions)
}

func (s *Server) handleExecuteCommand(msg *Message) {
	var params ExecuteCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		if msg.ID != nil {
			_ = s.t.RespondError(msg.ID, codeInvalidParams, err.Error())
		}
		return
	}

	word, _ := firstStringArg(params.Arguments)
	if word == "" {
		if msg.ID != nil {
			_ = s.t.Respond(msg.ID, nil)
		}
		return
	}

	changed := false
	if s.loader != nil {
		var err error
		switch params.Command {
		case commandAddWord:
			changed, err = s.loader.UpdateProject(func(set *config.Settings) bool { return set.InsertWord(word) })
		case commandAddWordGlobal:
			changed, err = s.loader.UpdateGlobal(func(set *config.Settings) bool { return set.InsertWord(word) })
		case commandAddFlagWord:
			changed, err = s.loader.UpdateProject(func(set *config.Settings) bool { return set.InsertFlagWord(word) })
		}
		if err != nil && s.log != nil {
			s.log.Warnf("persisting %s %q: %v", params.Command, word, err)
		}
	}

	// lsp.rs's add_words/add_words_global only call config.save()+recheck_all
	// when the word was actually new; re-running the merge and every open
	// document's check otherwise would be wasted work.
	if changed {
		s.reloadConfig()
		s.recheckAll()
	}

	if msg.ID != nil {
		_ = s.t.Respond(msg.ID, nil)
	}
}

// reloadConfig re-merges global+project settings from the loader and swaps
// them into the shared Store, so the word just persisted is honored by the
// very next check without waiting on the file watcher's poll/fsnotify path.
func (s *Server) reloadConfig() {
	if s.loader == nil {
		return
	}
	settings, err := s.loader.Load()
	if err != nil && s.log != nil {
		s.log.Warnf("reloading config after command: %v", err)
	}
	s.cfg.Swap(&config.EffectiveConfig{Merged: settings})
}

func (s *Server) recheckAll() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	for _, uri := range uris {
		s.checkAndPublish(uri)
	}
}

func suggestFor(orch *pipeline.Orchestrator, word string, dicts []dictionary.Dictionary) []string {
	eng := orch.Engine()
	return eng.Suggest(word, dicts)
}

func wordAt(text string, r Range) string {
	idx := NewOffsetIndex(text)
	start := idx.ByteOffset(r.Start)
	end := idx.ByteOffset(r.End)
	if start < 0 || end > len(text) || start > end {
		return ""
	}
	return text[start:end]
}

func firstStringArg(args []any) (string, bool) {
	for _, a := range args {
		if s, ok := a.(string); ok {
			return s, true
		}
	}
	return "", false
}

func uriToPath(uri string) string {
	const prefix = "file://"
	if strings.HasPrefix(uri, prefix) {
		return strings.TrimPrefix(uri, prefix)
	}
	return uri
}
