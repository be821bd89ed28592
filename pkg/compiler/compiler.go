// Package compiler compiles bsql queries into SQL.
//
//	sql, err := compiler.Compile("select user { id, nickname }")
//
// Compile is a pure function of its input: no state is shared between calls,
// so it is safe to call from multiple goroutines.
package compiler

import (
	"log/slog"
	"time"

	"github.com/leapstack-labs/bettersql/pkg/codegen"
	"github.com/leapstack-labs/bettersql/pkg/parser"
)

// Compile tokenizes, parses and generates SQL for text. Any failure is a
// *parser.SyntaxError and no partial output is returned.
func Compile(text string) (string, error) {
	sel, err := Decode(text)
	if err != nil {
		return "", err
	}
	return codegen.Generate(sel), nil
}

// Decode tokenizes and parses text, returning the AST without generating SQL.
func Decode(text string) (*parser.Select, error) {
	tokens, err := parser.Tokenize(text)
	if err != nil {
		return nil, err
	}
	return parser.Parse(tokens)
}

// Compiler wraps Compile with debug logging for long-running callers.
type Compiler struct {
	logger *slog.Logger
}

// New creates a Compiler. A nil logger discards all output.
func New(logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{logger: logger}
}

// Result is the outcome of one compilation.
type Result struct {
	SQL      string
	AST      *parser.Select
	Err      *parser.SyntaxError
	Duration time.Duration
}

// OK reports whether compilation succeeded.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Compile compiles text and reports the outcome as a Result. source names
// the input in log records (a file path, URI or request ID).
func (c *Compiler) Compile(source, text string) *Result {
	start := time.Now()
	res := &Result{}

	sel, err := Decode(text)
	if err != nil {
		se, ok := parser.AsSyntaxError(err)
		if !ok {
			se = &parser.SyntaxError{Message: err.Error()}
		}
		res.Err = se
		res.Duration = time.Since(start)
		c.logger.Debug("compile failed", "source", source, "error", se, "duration", res.Duration)
		return res
	}

	res.AST = sel
	res.SQL = codegen.Generate(sel)
	res.Duration = time.Since(start)
	c.logger.Debug("compiled", "source", source, "bytes", len(res.SQL), "duration", res.Duration)
	return res
}
