// Package lsp implements the LSP Adapter (component H): a hand-rolled
// Content-Length-framed JSON-RPC transport and the handful of
// textDocument/* methods the spell checker needs, grounded on
// other_examples/Dev-cmyser-lsp-view.tree__server.go's message/transport
// shape (no LSP or jsonrpc2 framework exists anywhere in the example
// corpus) and on original_source/crates/codebook-lsp/src/lsp.rs's handler
// semantics (diagnostics, code actions, add-word commands).
package lsp

import "encoding/json"

// Message is a JSON-RPC 2.0 envelope covering requests, responses and
// notifications alike.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError mirrors the JSON-RPC error object.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Position is zero-based, UTF-16 code-unit line/character, per the LSP spec.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span in Position coordinates.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Severity mirrors LSP's DiagnosticSeverity enum (1=Error .. 4=Hint).
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// ParseSeverity maps the diagnosticSeverity init option string to a
// Severity, defaulting to Information per spec.md §4.H.
func ParseSeverity(s string) Severity {
	switch s {
	case "error":
		return SeverityError
	case "warning":
		return SeverityWarning
	case "hint":
		return SeverityHint
	default:
		return SeverityInformation
	}
}

// sourceName identifies this server's diagnostics so codeAction can filter
// to only the diagnostics it authored (spec.md §4.H).
const sourceName = "codebooklsp"

// Diagnostic is the subset of LSP's Diagnostic this server publishes.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Source   string   `json:"source"`
	Message  string   `json:"message"`
	Code     string   `json:"code,omitempty"`
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidSaveTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Text         string                 `json:"text,omitempty"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type InitializeParams struct {
	RootURI               string          `json:"rootUri"`
	RootPath              string          `json:"rootPath"`
	InitializationOptions json.RawMessage `json:"initializationOptions"`
}

// ClientInitializationOptions extends the original Rust implementation's
// init_options.rs with diagnosticSeverity (absent from the source; added
// per spec.md §4.H).
type ClientInitializationOptions struct {
	LogLevel           string `json:"logLevel"`
	GlobalConfigPath   string `json:"globalConfigPath"`
	CheckWhileTyping   *bool  `json:"checkWhileTyping"`
	DiagnosticSeverity string `json:"diagnosticSeverity"`
}

// Defaulted returns a copy with defaults applied (log_level=info,
// check_while_typing=true), matching init_options.rs's Default impl.
func (o ClientInitializationOptions) Defaulted() ClientInitializationOptions {
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
	if o.CheckWhileTyping == nil {
		t := true
		o.CheckWhileTyping = &t
	}
	return o
}

type ServerCapabilities struct {
	TextDocumentSync       int                    `json:"textDocumentSync"`
	CodeActionProvider     bool                   `json:"codeActionProvider"`
	ExecuteCommandProvider *ExecuteCommandOptions `json:"executeCommandProvider,omitempty"`
}

type ExecuteCommandOptions struct {
	Commands []string `json:"commands"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type CodeActionContext struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type CodeActionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
	Context      CodeActionContext      `json:"context"`
}

type Command struct {
	Title     string `json:"title"`
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes,omitempty"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type CodeAction struct {
	Title   string         `json:"title"`
	Kind    string         `json:"kind"`
	Edit    *WorkspaceEdit `json:"edit,omitempty"`
	Command *Command       `json:"command,omitempty"`
}

type ExecuteCommandParams struct {
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

const (
	commandAddWord       = "codebook.addWord"
	commandAddWordGlobal = "codebook.addWordGlobal"
	commandAddFlagWord   = "codebook.addFlagWord"
)
