package parser

import (
	"strings"

	"github.com/leapstack-labs/bettersql/pkg/token"
)

// Where clause parsing.
//
// Grammar:
//
//	where      → "where" where_expr
//	where_expr → unary [("and" | "or") where_expr]
//	unary      → "not" unary | "(" where_expr ")" | compare
//	compare    → WORD operator WORD
//	operator   → "=" | "<>" | "!=" | "<" | ">" | "<=" | ">=" | "is" | "is not"
//
// Connectives associate to the right: a and b or c parses as and(a, or(b, c)).

var comparisonOperators = map[string]bool{
	"=":      true,
	"<>":     true,
	"!=":     true,
	"<":      true,
	">":      true,
	"<=":     true,
	">=":     true,
	"is":     true,
	"is not": true,
}

// parseWhere parses an optional where clause for t. Without one, the cursor
// is returned past any newlines.
func parseWhere(c cursor, t *Table) (cursor, error) {
	c = c.skipNewlines()
	kw := c.peek()
	if !kw.IsWord("where") {
		return c, nil
	}

	expr, c, err := parseWhereExpr(c.next(), describe(t))
	if err != nil {
		return c, err
	}
	t.Where = &Where{
		WhereKeyword: remark(kw, "where"),
		Expr:         expr,
	}
	return c, nil
}

func parseWhereExpr(c cursor, label string) (WhereExpr, cursor, error) {
	left, c, err := parseUnary(c, label)
	if err != nil {
		return nil, c, err
	}

	c = c.skipNewlines()
	op := c.peek()
	if !op.IsWord("and") && !op.IsWord("or") {
		return left, c, nil
	}

	right, c, err := parseWhereExpr(c.next(), label)
	if err != nil {
		return nil, c, err
	}
	return &Logical{Left: left, Op: op.Value, Right: right}, c, nil
}

func parseUnary(c cursor, label string) (WhereExpr, cursor, error) {
	c = c.skipNewlines()
	if c.done() {
		return nil, c, c.errorf(label, ErrEmptyWhere, label)
	}
	tok := c.peek()

	if tok.IsWord("not") {
		inner, next, err := parseUnary(c.next(), label)
		if err != nil {
			return nil, next, err
		}
		return &Not{NotKeyword: remark(tok, "not"), Expr: inner}, next, nil
	}

	if tok.IsSymbol("(") {
		inner, next, err := parseWhereExpr(c.next(), label)
		if err != nil {
			return nil, next, err
		}
		next = next.skipNewlines()
		if !next.peek().IsSymbol(")") {
			return nil, next, next.errorf(label, ErrCloseParen, label)
		}
		return &Parenthesis{Expr: inner}, next.next(), nil
	}

	return parseCompare(c, label)
}

func parseCompare(c cursor, label string) (WhereExpr, cursor, error) {
	left, c, err := parseWord(c, "left-hand side of where statement", label)
	if err != nil {
		return nil, c, err
	}

	c = c.skipNewlines()
	if c.done() {
		return nil, c, c.errorf(label, ErrMissing, within("operator of where statement", label))
	}
	op := c.peek()
	if op.Type != token.SYMBOL || !comparisonOperators[strings.ToLower(op.Value)] {
		return nil, c, c.errorf(label, ErrOperator, label, op)
	}

	right, c, err := parseWord(c.next(), "right-hand side of where statement", label)
	if err != nil {
		return nil, c, err
	}
	return &Compare{Left: left, Op: op.Value, Right: right}, c, nil
}
