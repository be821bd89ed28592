package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/bettersql/pkg/token"
)

// SyntaxError is returned by the tokenizer and the parser for any malformed
// input. It is the only error kind produced while compiling a query.
type SyntaxError struct {
	Pos     token.Position
	Table   string // innermost table under construction, empty for tokenizer errors
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return "syntax error: " + e.Message
}

// IsSyntaxError reports whether err (or any error it wraps) is a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// AsSyntaxError extracts the *SyntaxError from err, if any.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Common error messages
const (
	ErrUnknownToken         = "unknown token %q in %q"
	ErrEmptyQuery           = "empty query"
	ErrMissingSelect        = `missing "select" token, got %s`
	ErrTrailingToken        = "unexpected %s after %s"
	ErrMissing              = "missing %s"
	ErrExpected             = "expected %s, got %s"
	ErrTerminatedAfterTable = "unexpected termination after table name %q"
	ErrOpenBracket          = `expected "[" or "{" to open the fields of %s, got %s`
	ErrCloseBracket         = "missing close bracket %q for %s"
	ErrMismatchedBracket    = "mismatched close bracket %q for %s, expected %q"
	ErrNoFields             = "%s has no fields"
	ErrAliasWithoutField    = `missing field name before "as" alias in %s`
	ErrAliasAfterTable      = `unexpected "as" after nested table %q in %s, the alias must precede its fields`
	ErrMissingRelation      = "missing relation table name in fields of %s"
	ErrPromotedTwice        = "nested table %q in %s already has fields"
	ErrUnexpectedField      = "expected table fields of %s, got %s"
	ErrEmptyWhere           = "empty where statement after %s"
	ErrCloseParen           = "missing close parenthesis in where statement after %s"
	ErrOperator             = "expected comparison operator in where statement after %s, got %s"
)
