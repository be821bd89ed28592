// Package token defines the tokens produced by the bsql tokenizer.
//
// The tokenizer emits only three kinds of tokens. Keywords are not
// recognized here: the parser compares WORD values case-insensitively,
// so the original spelling survives all the way to code generation.
package token

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType mirrors the SQL toolkit naming
type TokenType int8

const (
	// WORD is an identifier, number, literal, or placeholder (:name, @name, $name, ?).
	WORD TokenType = iota + 1
	// SYMBOL is a bracket, a comparison operator, a comma, or the collapsed
	// "is" / "is not" operator.
	SYMBOL
	// NEWLINE marks the start of every source line after the first.
	NEWLINE
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	switch t {
	case WORD:
		return "word"
	case SYMBOL:
		return "symbol"
	case NEWLINE:
		return "newline"
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// Token represents a lexical token with position information.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
}

// Word creates a WORD token.
func Word(value string, pos Position) Token {
	return Token{Type: WORD, Value: value, Pos: pos}
}

// Symbol creates a SYMBOL token.
func Symbol(value string, pos Position) Token {
	return Token{Type: SYMBOL, Value: value, Pos: pos}
}

// Newline creates a NEWLINE token.
func Newline(pos Position) Token {
	return Token{Type: NEWLINE, Pos: pos}
}

// IsWord reports whether the token is a WORD equal to w, ignoring case.
func (t Token) IsWord(w string) bool {
	return t.Type == WORD && strings.EqualFold(t.Value, w)
}

// IsSymbol reports whether the token is the SYMBOL s.
func (t Token) IsSymbol(s string) bool {
	return t.Type == SYMBOL && t.Value == s
}

// String renders the token for diagnostics, e.g. word "title" or newline.
func (t Token) String() string {
	if t.Type == NEWLINE {
		return t.Type.String()
	}
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}
