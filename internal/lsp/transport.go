package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Transport reads and writes Content-Length-framed JSON-RPC messages over
// arbitrary streams, ported from the header-parsing loop in
// other_examples/Dev-cmyser-lsp-view.tree__server.go's Server.Run/sendMessage.
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	wmu    sync.Mutex
}

// NewTransport wraps r/w as an LSP message stream.
func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{reader: bufio.NewReader(r), writer: w}
}

// ReadMessage blocks for the next framed message, returning io.EOF when the
// client stream closes cleanly.
func (t *Transport) ReadMessage() (*Message, error) {
	contentLength := -1
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if name, value, ok := strings.Cut(line, ":"); ok && strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length header %q: %w", value, err)
			}
			contentLength = n
		}
	}
	if contentLength < 0 {
		return nil, fmt.Errorf("message missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, fmt.Errorf("reading message body: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}
	return &msg, nil
}

// WriteMessage frames and writes msg. Safe for concurrent use.
func (t *Transport) WriteMessage(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	t.wmu.Lock()
	defer t.wmu.Unlock()

	if _, err := fmt.Fprintf(t.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	_, err = t.writer.Write(data)
	return err
}

// Respond sends a successful response for request id.
func (t *Transport) Respond(id json.RawMessage, result any) error {
	return t.WriteMessage(Message{JSONRPC: "2.0", ID: id, Result: result})
}

// RespondError sends an error response for request id.
func (t *Transport) RespondError(id json.RawMessage, code int, message string) error {
	return t.WriteMessage(Message{JSONRPC: "2.0", ID: id, Error: &ResponseError{Code: code, Message: message}})
}

// Notify sends a server-to-client notification.
func (t *Transport) Notify(method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return t.WriteMessage(Message{JSONRPC: "2.0", Method: method, Params: raw})
}
