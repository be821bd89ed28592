package parser

import (
	"fmt"

	"github.com/leapstack-labs/bettersql/pkg/token"
)

// Table and field block parsing.
//
// Grammar:
//
//	table    → name ["as" alias] fields [where]
//	fields   → open (column | promoted | "," | NEWLINE)* close
//	open     → "[" (many rows) | "{" (single row)
//	column   → name ["as" alias]
//	promoted → column fields [where]
//
// A word directly followed by an open bracket is promoted: the column just
// pushed is popped and rebuilt as a nested table with its name and alias.

var closeBrackets = map[string]string{
	"[": "]",
	"{": "}",
}

func isOpenBracket(tok token.Token) bool {
	return tok.IsSymbol("[") || tok.IsSymbol("{")
}

func isCloseBracket(tok token.Token) bool {
	return tok.IsSymbol("]") || tok.IsSymbol("}")
}

// parseTable parses a table name, its optional alias, and its field block.
func parseTable(c cursor) (*Table, cursor, error) {
	name, c, err := parseWord(c, "table name", "")
	if err != nil {
		return nil, c, err
	}

	if c.done() {
		return nil, c, c.errorf(fmt.Sprintf("table %q", name), ErrTerminatedAfterTable, name)
	}

	t := &Table{Name: name}
	if kw := c.peek(); kw.IsWord("as") {
		alias, next, err := parseWord(c.next(), "alias", fmt.Sprintf("table %q", name))
		if err != nil {
			return nil, next, err
		}
		t.Alias = alias
		t.AsKeyword = remark(kw, "as")
		c = next
	}

	c, err = parseFields(c, t)
	if err != nil {
		return nil, c, err
	}
	return t, c, nil
}

// parseFields parses the bracketed field block of t and its trailing where
// clause, filling in t.Single, t.Fields and t.Where.
func parseFields(c cursor, t *Table) (cursor, error) {
	label := describe(t)

	c = c.skipNewlines()
	if c.done() {
		return c, c.errorf(label, ErrMissing, "open bracket for "+label)
	}
	open := c.peek()
	if !isOpenBracket(open) {
		return c, c.errorf(label, ErrOpenBracket, label, open)
	}
	closer := closeBrackets[open.Value]
	t.Single = open.Value == "{"
	c = c.next()

	var fields []Field
	for {
		if c.done() {
			return c, c.errorf(label, ErrCloseBracket, closer, label)
		}
		tok := c.peek()

		switch {
		case tok.IsSymbol(closer):
			if len(fields) == 0 {
				return c, c.errorf(label, ErrNoFields, label)
			}
			c = c.next()
			t.Fields = fields
			return parseWhere(c, t)

		case tok.IsWord("as"):
			if len(fields) == 0 {
				return c, c.errorf(label, ErrAliasWithoutField, label)
			}
			col, ok := fields[len(fields)-1].(*Column)
			if !ok {
				nested := fields[len(fields)-1].(*Table)
				return c, c.errorf(label, ErrAliasAfterTable, nested.Name, label)
			}
			alias, next, err := parseWord(c.next(), "alias", fmt.Sprintf("column %q in %s", col.Name, label))
			if err != nil {
				return next, err
			}
			col.Alias = alias
			col.AsKeyword = remark(tok, "as")
			c = next

		case tok.Type == token.WORD:
			fields = append(fields, &Column{Name: tok.Value})
			c = c.next()

		case tok.Type == token.NEWLINE, tok.IsSymbol(","):
			c = c.next()

		case isOpenBracket(tok):
			if len(fields) == 0 {
				return c, c.errorf(label, ErrMissingRelation, label)
			}
			col, ok := fields[len(fields)-1].(*Column)
			if !ok {
				nested := fields[len(fields)-1].(*Table)
				return c, c.errorf(label, ErrPromotedTwice, nested.Name, label)
			}
			nested := &Table{Name: col.Name, Alias: col.Alias, AsKeyword: col.AsKeyword}
			next, err := parseFields(c, nested)
			if err != nil {
				return next, err
			}
			fields[len(fields)-1] = nested
			c = next

		case isCloseBracket(tok):
			return c, c.errorf(label, ErrMismatchedBracket, tok.Value, label, closer)

		default:
			return c, c.errorf(label, ErrUnexpectedField, label, tok)
		}
	}
}
