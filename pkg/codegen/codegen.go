// Package codegen renders a parsed bsql query as SQL text.
//
// The root table becomes the FROM clause; every nested table becomes a join
// keyed on "<ref>.id = <parentRef>.<ref>_id", an inner join for "{...}"
// tables and a left join for "[...]" tables. Predicates from every table are
// combined with "and" innermost first.
package codegen

import (
	"strings"

	"github.com/leapstack-labs/bettersql/pkg/parser"
)

type projection struct {
	owner  *parser.Table
	column *parser.Column
}

type join struct {
	table  *parser.Table
	parent *parser.Table
}

type generator struct {
	p           *Printer
	projections []projection
	joins       []join
	groups      []*parser.Table // tables carrying a where clause, post-order
}

// Generate renders sel as SQL. It never fails for an AST built by the parser.
func Generate(sel *parser.Select) string {
	g := &generator{p: newPrinter(isUpper(sel.SelectKeyword))}
	g.walk(sel.Table)
	g.collectWhere(sel.Table)

	g.p.writeln(spelled(sel.SelectKeyword, "select"))
	g.writeProjections()
	g.p.writeln(g.p.kw("from"), " ", g.tableDecl(sel.Table))
	g.writeJoins()
	g.writeWhere()
	if sel.Table.Single {
		g.p.writeln(g.p.kw("limit"), " 1")
	}
	return g.p.String()
}

// isUpper reports whether a recorded keyword spelling is entirely uppercase.
func isUpper(s string) bool {
	return s != "" && s == strings.ToUpper(s) && s != strings.ToLower(s)
}

// walk collects projections and joins in pre-order.
func (g *generator) walk(t *parser.Table) {
	for _, f := range t.Fields {
		switch f := f.(type) {
		case *parser.Column:
			g.projections = append(g.projections, projection{owner: t, column: f})
		case *parser.Table:
			g.joins = append(g.joins, join{table: f, parent: t})
			g.walk(f)
		}
	}
}

// collectWhere collects predicate groups in post-order: nested tables first,
// in field order, then the table itself.
func (g *generator) collectWhere(t *parser.Table) {
	for _, nested := range t.Tables() {
		g.collectWhere(nested)
	}
	if t.Where != nil {
		g.groups = append(g.groups, t)
	}
}

func (g *generator) writeProjections() {
	g.p.formatList(len(g.projections), func(i int) string {
		proj := g.projections[i]
		s := proj.owner.Ref() + "." + proj.column.Name
		if proj.column.Alias != "" {
			s += " " + g.asKeyword(proj.column.AsKeyword) + " " + proj.column.Alias
		}
		return s
	}, "  ", ", ")
}

func (g *generator) writeJoins() {
	for _, j := range g.joins {
		kind := "left join"
		if j.table.Single {
			kind = "inner join"
		}
		ref := j.table.Ref()
		g.p.writeln(
			g.p.kw(kind), " ", g.tableDecl(j.table),
			" ", g.p.kw("on"), " ", ref, ".id = ", j.parent.Ref(), ".", ref, "_id",
		)
	}
}

func (g *generator) writeWhere() {
	if len(g.groups) == 0 {
		return
	}
	wrap := len(g.groups) > 1
	for i, t := range g.groups {
		text := g.renderExpr(t.Where.Expr, t.Ref())
		if wrap && hasTopLevelOr(t.Where.Expr) {
			text = "(" + text + ")"
		}
		if i == 0 {
			g.p.writeln(spelled(t.Where.WhereKeyword, "where"), " ", text)
			continue
		}
		g.p.writeln(gutter(g.p.kw("and")), text)
	}
}

// tableDecl renders "name" or "name as alias".
func (g *generator) tableDecl(t *parser.Table) string {
	if t.Alias == "" {
		return t.Name
	}
	return t.Name + " " + g.asKeyword(t.AsKeyword) + " " + t.Alias
}

func (g *generator) asKeyword(recorded string) string {
	if recorded != "" {
		return recorded
	}
	return g.p.kw("as")
}

// renderExpr renders a predicate owned by the table referenced as ref.
// Continuation lines start with a connective aligned into the where gutter.
func (g *generator) renderExpr(e parser.WhereExpr, ref string) string {
	switch e := e.(type) {
	case *parser.Compare:
		return qualify(ref, e.Left) + " " + e.Op + " " + e.Right
	case *parser.Not:
		return spelled(e.NotKeyword, "not") + " " + g.renderExpr(e.Expr, ref)
	case *parser.Parenthesis:
		return "(" + g.renderExpr(e.Expr, ref) + ")"
	case *parser.Logical:
		return g.renderExpr(e.Left, ref) + "\n" + gutter(e.Op) + g.renderExpr(e.Right, ref)
	}
	return ""
}

// hasTopLevelOr reports whether the connective chain of e, outside any
// parentheses, contains an "or".
func hasTopLevelOr(e parser.WhereExpr) bool {
	l, ok := e.(*parser.Logical)
	if !ok {
		return false
	}
	return l.Connective() == "or" || hasTopLevelOr(l.Left) || hasTopLevelOr(l.Right)
}

// qualify prefixes an identifier operand with its table reference.
// Literals and placeholders (:name, @name, $name, ?) pass through.
func qualify(ref, operand string) string {
	if operand == "" {
		return operand
	}
	c := operand[0]
	if c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' {
		return ref + "." + operand
	}
	return operand
}
