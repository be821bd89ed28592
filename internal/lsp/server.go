package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/leapstack-labs/bettersql/pkg/compiler"
)

// JSON-RPC error codes.
const (
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeInvalidRequest = -32600
)

// ErrExitWithoutShutdown is returned by Run when the client sends exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// Server implements the Language Server Protocol for bsql queries.
type Server struct {
	// Document management
	documents *DocumentStore

	rootURI     string
	initialized bool
	version     string

	// I/O
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	// Logging
	logger *slog.Logger

	// Shutdown state
	shutdown   bool
	exited     bool
	shutdownMu sync.RWMutex
}

// NewServer creates a new LSP server instance.
func NewServer(reader io.Reader, writer io.Writer) *Server {
	return NewServerWithLogger(reader, writer, nil)
}

// NewServerWithLogger creates a new LSP server instance with a custom logger.
// The logger must not write to writer, which carries the protocol.
func NewServerWithLogger(reader io.Reader, writer io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Server{
		documents: NewDocumentStore(compiler.New(logger)),
		reader:    bufio.NewReader(reader),
		writer:    writer,
		logger:    logger,
	}
}

// SetVersion sets the version reported in the initialize response.
func (s *Server) SetVersion(v string) {
	s.version = v
}

// Run processes JSON-RPC messages until the client sends exit or closes the
// stream. It returns ErrExitWithoutShutdown if exit arrives before shutdown.
func (s *Server) Run() error {
	s.logger.Info("bsql LSP server starting...")

	for {
		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("Client disconnected")
				return nil
			}
			s.logger.Error("Error reading message", "error", err)
			continue
		}

		if err := s.handleMessage(msg); err != nil {
			s.logger.Error("Error handling message", "method", msg.Method, "error", err)
		}

		s.shutdownMu.RLock()
		exited, shutdown := s.exited, s.shutdown
		s.shutdownMu.RUnlock()
		if exited {
			if !shutdown {
				return ErrExitWithoutShutdown
			}
			return nil
		}
	}
}

// JSONRPCMessage represents a JSON-RPC 2.0 message.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// readMessage reads a JSON-RPC message from the input stream.
func (s *Server) readMessage() (*JSONRPCMessage, error) {
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break
		}

		if lengthStr, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			contentLength, err = strconv.Atoi(lengthStr)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}

	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	return &msg, nil
}

// sendResponse sends a JSON-RPC response.
func (s *Server) sendResponse(id *json.RawMessage, result any, err *JSONRPCError) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
	}

	if err != nil {
		msg.Error = err
	} else {
		resultBytes, _ := json.Marshal(result)
		msg.Result = resultBytes
	}

	s.writeMessage(&msg)
}

// sendNotification sends a JSON-RPC notification (no ID).
func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
	}

	if params != nil {
		paramsBytes, _ := json.Marshal(params)
		msg.Params = paramsBytes
	}

	s.writeMessage(&msg)
}

// writeMessage writes a JSON-RPC message to the output stream.
func (s *Server) writeMessage(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Error marshaling message", "error", err)
		return
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	_, _ = s.writer.Write([]byte(header))
	_, _ = s.writer.Write(body)
}

// handleMessage dispatches a message to the appropriate handler.
func (s *Server) handleMessage(msg *JSONRPCMessage) error {
	s.logger.Debug("Received", "method", msg.Method)

	s.shutdownMu.RLock()
	shutdown := s.shutdown
	s.shutdownMu.RUnlock()
	if shutdown && msg.Method != "exit" {
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    codeInvalidRequest,
				Message: "server is shutting down",
			})
		}
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		return s.handleExit(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "bsql/compile":
		return s.handleCompile(msg)
	default:
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    codeMethodNotFound,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle handlers ---

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}

	s.rootURI = params.RootURI
	s.logger.Info("Workspace root", "path", URIToPath(s.rootURI))

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
				Save: &SaveOptions{
					IncludeText: true,
				},
			},
			CompletionProvider: &CompletionOptions{
				TriggerCharacters: []string{" ", "{", "["},
			},
			HoverProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "bsql", Version: s.version},
	}

	s.sendResponse(msg.ID, result, nil)
	return nil
}

func (s *Server) handleInitialized(_ *JSONRPCMessage) error {
	s.initialized = true
	s.logger.Info("Server initialized")
	return nil
}

func (s *Server) handleShutdown(msg *JSONRPCMessage) error {
	s.shutdownMu.Lock()
	s.shutdown = true
	s.shutdownMu.Unlock()

	s.sendResponse(msg.ID, nil, nil)
	s.logger.Info("Server shutdown")
	return nil
}

func (s *Server) handleExit(_ *JSONRPCMessage) error {
	s.shutdownMu.Lock()
	s.exited = true
	s.shutdownMu.Unlock()

	s.logger.Info("Server exit")
	return nil
}

// --- Document handlers ---

func (s *Server) handleDidOpen(msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	doc := s.documents.Open(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)
	s.logger.Info("Opened", "uri", params.TextDocument.URI)

	s.publishDiagnostics(doc)
	return nil
}

func (s *Server) handleDidClose(msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	s.documents.Close(params.TextDocument.URI)
	s.logger.Info("Closed", "uri", params.TextDocument.URI)

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})

	return nil
}

func (s *Server) handleDidChange(msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	// Full sync: the last change carries the whole document.
	if len(params.ContentChanges) == 0 {
		return nil
	}
	lastChange := params.ContentChanges[len(params.ContentChanges)-1]

	doc := s.documents.Update(params.TextDocument.URI, lastChange.Text, params.TextDocument.Version)
	if doc == nil {
		return fmt.Errorf("change for unopened document %s", params.TextDocument.URI)
	}

	s.publishDiagnostics(doc)
	return nil
}

func (s *Server) handleDidSave(msg *JSONRPCMessage) error {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	uri := params.TextDocument.URI
	s.logger.Info("Saved", "path", URIToPath(uri))

	doc := s.documents.Get(uri)
	if doc == nil {
		return nil
	}
	if params.Text != nil && *params.Text != doc.Content {
		doc = s.documents.Update(uri, *params.Text, doc.Version)
	}

	s.publishDiagnostics(doc)
	return nil
}

// --- Feature handlers ---

func (s *Server) handleCompletion(msg *JSONRPCMessage) error {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}

	items := s.getCompletions(params)
	s.sendResponse(msg.ID, &CompletionList{Items: items}, nil)
	return nil
}

func (s *Server) handleHover(msg *JSONRPCMessage) error {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}

	s.sendResponse(msg.ID, s.getHover(params), nil)
	return nil
}

// handleCompile answers bsql/compile with the SQL of an open document.
func (s *Server) handleCompile(msg *JSONRPCMessage) error {
	var params CompileParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{
			Code:    codeInvalidParams,
			Message: "document not open: " + params.TextDocument.URI,
		})
		return nil
	}

	var result CompileResult
	if doc.Result.OK() {
		result.SQL = doc.Result.SQL
	} else {
		r := syntaxErrorRange(doc, doc.Result.Err)
		result.Error = doc.Result.Err.Error()
		result.Range = &r
	}

	s.sendResponse(msg.ID, result, nil)
	return nil
}
