package playground

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/leapstack-labs/bettersql/internal/ui/notifier"
	"github.com/leapstack-labs/bettersql/internal/watch"
	"github.com/leapstack-labs/bettersql/pkg/compiler"
	"github.com/starfederation/datastar-go/datastar"
)

// RequestIDHeader carries the ID assigned to each API request.
const RequestIDHeader = "X-Request-Id"

// Handlers provides HTTP handlers for the playground feature.
type Handlers struct {
	compiler *compiler.Compiler
	notifier *notifier.Notifier[watch.Event]
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(notify *notifier.Notifier[watch.Event], logger *slog.Logger) *Handlers {
	return &Handlers{
		compiler: compiler.New(logger),
		notifier: notify,
		logger:   logger,
	}
}

// Healthz reports liveness.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// Compile compiles the posted query to SQL.
func (h *Handlers) Compile(w http.ResponseWriter, r *http.Request) {
	id := requestID(w)
	req, ok := h.decode(w, r, id)
	if !ok {
		return
	}

	res := h.compiler.Compile("request "+id, req.Query)
	if !res.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, syntaxErrorResponse(id, res))
		return
	}
	writeJSON(w, http.StatusOK, CompileResponse{ID: id, SQL: res.SQL})
}

// Parse returns the AST of the posted query.
func (h *Handlers) Parse(w http.ResponseWriter, r *http.Request) {
	id := requestID(w)
	req, ok := h.decode(w, r, id)
	if !ok {
		return
	}

	res := h.compiler.Compile("request "+id, req.Query)
	if !res.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, syntaxErrorResponse(id, res))
		return
	}
	writeJSON(w, http.StatusOK, ParseResponse{ID: id, AST: res.AST})
}

// Examples lists the built-in sample queries.
func (h *Handlers) Examples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ExamplesResponse{Examples: compiler.Examples()})
}

// EventsSSE is the long-lived SSE endpoint pushing one signal patch per
// recompiled file.
func (h *Handlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-updates:
			if err := sse.MarshalAndPatchSignals(map[string]any{"lastCompile": ev}); err != nil {
				h.logger.Debug("events stream closed", "error", err)
				return
			}
		}
	}
}

// PlaygroundSSE compiles the query signal of the playground page. A
// successful compile patches sql and clears error; a failed one patches only
// error so the page keeps the last good SQL.
func (h *Handlers) PlaygroundSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)

	res := h.compiler.Compile("playground", signals.Query)
	var patch any = Signals{Query: signals.Query, SQL: res.SQL}
	if !res.OK() {
		patch = map[string]any{"error": res.Err.Error()}
	}
	if err := sse.MarshalAndPatchSignals(patch); err != nil {
		h.logger.Debug("playground stream closed", "error", err)
	}
}

// decode reads a CompileRequest, writing a 400 response on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, id string) (CompileRequest, bool) {
	var req CompileRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes))
	if err := dec.Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %v", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
		}
		h.logger.Debug("rejected request", "id", id, "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{ID: id, Error: msg})
		return req, false
	}
	return req, true
}

func syntaxErrorResponse(id string, res *compiler.Result) ErrorResponse {
	return ErrorResponse{
		ID:     id,
		Error:  res.Err.Error(),
		Line:   res.Err.Pos.Line,
		Column: res.Err.Pos.Column,
	}
}

// requestID assigns a fresh ID to the request and echoes it in the response.
func requestID(w http.ResponseWriter) string {
	id := uuid.NewString()
	w.Header().Set(RequestIDHeader, id)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
