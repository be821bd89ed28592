// Package parser turns bsql text into an AST.
//
// # Usage
//
//	tokens, err := parser.Tokenize("select user [ id ]")
//	if err != nil {
//	    // handle error
//	}
//	sel, err := parser.Parse(tokens)
//
// # Grammar Overview
//
// Keywords are matched case-insensitively; NEWLINE tokens are skipped
// wherever a word or symbol is expected.
//
//	select       → "select" table
//	table        → name ["as" alias] fields [where]
//	fields       → ("[" | "{") (column | promoted | "," | NEWLINE)* ("]" | "}")
//	column       → name ["as" alias]
//	promoted     → column fields [where]     (a column directly followed by a field block)
//	where        → "where" where_expr
//	where_expr   → unary [("and" | "or") where_expr]
//	unary        → "not" unary | "(" where_expr ")" | compare
//	compare      → WORD operator WORD
//
// See each file for the grammar rules of that section.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/bettersql/pkg/token"
)

// cursor is an immutable view of the token sequence at a position.
// Every parse function takes a cursor and returns the cursor after the
// construct it consumed.
type cursor struct {
	tokens []token.Token
	pos    int
}

func (c cursor) done() bool {
	return c.pos >= len(c.tokens)
}

// peek returns the current token, or the zero Token when done.
func (c cursor) peek() token.Token {
	if c.done() {
		return token.Token{}
	}
	return c.tokens[c.pos]
}

func (c cursor) next() cursor {
	c.pos++
	return c
}

func (c cursor) skipNewlines() cursor {
	for !c.done() && c.tokens[c.pos].Type == token.NEWLINE {
		c.pos++
	}
	return c
}

// position returns the position of the current token, or of the last token
// when the input is exhausted.
func (c cursor) position() token.Position {
	switch {
	case len(c.tokens) == 0:
		return token.Position{}
	case c.done():
		return c.tokens[len(c.tokens)-1].Pos
	}
	return c.tokens[c.pos].Pos
}

func (c cursor) errorf(table string, format string, args ...any) error {
	return &SyntaxError{
		Pos:     c.position(),
		Table:   table,
		Message: fmt.Sprintf(format, args...),
	}
}

// Parse builds the AST for a token sequence produced by Tokenize.
func Parse(tokens []token.Token) (*Select, error) {
	c := cursor{tokens: tokens}.skipNewlines()
	if c.done() {
		return nil, &SyntaxError{Message: ErrEmptyQuery}
	}

	kw := c.peek()
	if !kw.IsWord("select") {
		return nil, c.errorf("", ErrMissingSelect, kw)
	}

	table, c, err := parseTable(c.next())
	if err != nil {
		return nil, err
	}

	c = c.skipNewlines()
	if !c.done() {
		return nil, c.errorf(describe(table), ErrTrailingToken, c.peek(), describe(table))
	}

	return &Select{
		SelectKeyword: remark(kw, "select"),
		Table:         table,
	}, nil
}

// ParseString tokenizes and parses text.
func ParseString(text string) (*Select, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// parseWord consumes the next WORD, skipping newlines. what names the
// expected construct and table the enclosing table for diagnostics.
func parseWord(c cursor, what, table string) (string, cursor, error) {
	c = c.skipNewlines()
	if c.done() {
		return "", c, c.errorf(table, ErrMissing, within(what, table))
	}
	tok := c.peek()
	if tok.Type != token.WORD {
		return "", c, c.errorf(table, ErrExpected, within(what, table), tok)
	}
	return tok.Value, c.next(), nil
}

func within(what, table string) string {
	if table == "" {
		return what
	}
	return what + " of " + table
}

// describe names a table for diagnostics: table "post" or table "thread" (as "post").
func describe(t *Table) string {
	if t.Alias != "" {
		return fmt.Sprintf("table %q (as %q)", t.Name, t.Alias)
	}
	return fmt.Sprintf("table %q", t.Name)
}

// remark returns the token's spelling when it differs from the canonical keyword.
func remark(tok token.Token, canonical string) string {
	if tok.Value != canonical {
		return tok.Value
	}
	return ""
}
