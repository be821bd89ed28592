package lsp

import (
	"github.com/leapstack-labs/bettersql/pkg/parser"
)

// diagnosticSource labels every diagnostic published by the server.
const diagnosticSource = "bsql"

// publishDiagnostics sends the diagnostics of an open document to the client.
func (s *Server) publishDiagnostics(doc *Document) {
	if doc == nil {
		return
	}

	diagnostics := documentDiagnostics(doc)
	version := doc.Version

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: diagnostics,
	})

	s.logger.Debug("Published diagnostics", "uri", doc.URI, "count", len(diagnostics))
}

// documentDiagnostics returns the compile diagnostics of doc. A query stops
// at its first syntax error, so there is at most one.
func documentDiagnostics(doc *Document) []Diagnostic {
	diagnostics := []Diagnostic{}
	if doc.Result == nil || doc.Result.OK() {
		return diagnostics
	}

	return append(diagnostics, Diagnostic{
		Range:    syntaxErrorRange(doc, doc.Result.Err),
		Severity: DiagnosticSeverityError,
		Source:   diagnosticSource,
		Message:  doc.Result.Err.Message,
	})
}

// syntaxErrorRange converts the 1-based error position into a zero-based
// range covering the word at that position, or a single character when no
// word starts there.
func syntaxErrorRange(doc *Document, err *parser.SyntaxError) Range {
	if !err.Pos.IsValid() {
		return Range{}
	}

	start := Position{
		Line:      uint32(err.Pos.Line - 1),
		Character: uint32(err.Pos.Column - 1),
	}

	word, r := doc.GetWordAtPosition(start)
	if word != "" && r.Start == start {
		return r
	}

	end := start
	if int(start.Character) < len(doc.GetLine(int(start.Line))) {
		end.Character++
	}
	return Range{Start: start, End: end}
}
