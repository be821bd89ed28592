package parser

import (
	"encoding/json"
	"strings"
)

// Field is an entry in a table's field block: a *Column or a nested *Table.
type Field interface {
	fieldNode()
}

// WhereExpr is a filter predicate: *Compare, *Not, *Parenthesis or *Logical.
type WhereExpr interface {
	whereExprNode()
}

// Keyword spelling fields (SelectKeyword, WhereKeyword, NotKeyword, AsKeyword)
// are set only when the source spelling differs from the canonical lowercase
// keyword. Generators fall back to the canonical spelling when they are empty.

// Select is the root of a parsed query.
type Select struct {
	SelectKeyword string
	Table         *Table
}

// Table is a relation with its field block.
// Single is true for "{...}" (at most one row) and false for "[...]".
type Table struct {
	Name      string
	Alias     string
	AsKeyword string
	Single    bool
	Fields    []Field
	Where     *Where
}

func (*Table) fieldNode() {}

// Ref returns the name rows of this table are referenced by: the alias if
// present, otherwise the table name.
func (t *Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Tables returns the nested tables declared directly in this table's fields.
func (t *Table) Tables() []*Table {
	var tables []*Table
	for _, f := range t.Fields {
		if nested, ok := f.(*Table); ok {
			tables = append(tables, nested)
		}
	}
	return tables
}

// AllTables returns t and every table nested below it, in pre-order.
func (t *Table) AllTables() []*Table {
	tables := []*Table{t}
	for _, nested := range t.Tables() {
		tables = append(tables, nested.AllTables()...)
	}
	return tables
}

// Column is a projected column of its owning table.
type Column struct {
	Name      string
	Alias     string
	AsKeyword string
}

func (*Column) fieldNode() {}

// Where is the predicate attached to one table.
type Where struct {
	WhereKeyword string
	Expr         WhereExpr
}

// Compare is a binary comparison such as "type_id = 1" or "delete_time is null".
// Left and Right are bare identifiers, literals or placeholders (:name, @name,
// $name, ?); Op keeps its source spelling.
type Compare struct {
	Left  string
	Op    string
	Right string
}

// Not negates its operand.
type Not struct {
	NotKeyword string
	Expr       WhereExpr
}

// Parenthesis groups its operand.
type Parenthesis struct {
	Expr WhereExpr
}

// Logical joins two predicates with "and" or "or". Op keeps the source
// spelling of the connective.
type Logical struct {
	Left  WhereExpr
	Op    string
	Right WhereExpr
}

// Connective returns the lowercase connective ("and" or "or").
func (l *Logical) Connective() string {
	return strings.ToLower(l.Op)
}

func (*Compare) whereExprNode()     {}
func (*Not) whereExprNode()         {}
func (*Parenthesis) whereExprNode() {}
func (*Logical) whereExprNode()     {}

// ---------- Serialization ----------

// Map converts the tree into nested maps with a "type" discriminator on
// every node, omitting absent optional fields.
func (s *Select) Map() map[string]any {
	m := map[string]any{"type": "select", "table": s.Table.Map()}
	if s.SelectKeyword != "" {
		m["selectKeyword"] = s.SelectKeyword
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (s *Select) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// MarshalYAML implements yaml.Marshaler.
func (s *Select) MarshalYAML() (any, error) {
	return s.Map(), nil
}

// Map converts the table into nested maps, see Select.Map.
func (t *Table) Map() map[string]any {
	fields := make([]any, 0, len(t.Fields))
	for _, f := range t.Fields {
		switch f := f.(type) {
		case *Table:
			fields = append(fields, f.Map())
		case *Column:
			fields = append(fields, f.Map())
		}
	}
	m := map[string]any{
		"type":   "table",
		"name":   t.Name,
		"single": t.Single,
		"fields": fields,
	}
	if t.Alias != "" {
		m["alias"] = t.Alias
	}
	if t.AsKeyword != "" {
		m["asKeyword"] = t.AsKeyword
	}
	if t.Where != nil {
		w := map[string]any{"type": "where", "expr": exprMap(t.Where.Expr)}
		if t.Where.WhereKeyword != "" {
			w["whereKeyword"] = t.Where.WhereKeyword
		}
		m["where"] = w
	}
	return m
}

// Map converts the column into a map, see Select.Map.
func (c *Column) Map() map[string]any {
	m := map[string]any{"type": "column", "name": c.Name}
	if c.Alias != "" {
		m["alias"] = c.Alias
	}
	if c.AsKeyword != "" {
		m["asKeyword"] = c.AsKeyword
	}
	return m
}

func exprMap(e WhereExpr) map[string]any {
	switch e := e.(type) {
	case *Compare:
		return map[string]any{"type": "compare", "left": e.Left, "op": e.Op, "right": e.Right}
	case *Not:
		m := map[string]any{"type": "not", "expr": exprMap(e.Expr)}
		if e.NotKeyword != "" {
			m["notKeyword"] = e.NotKeyword
		}
		return m
	case *Parenthesis:
		return map[string]any{"type": "parenthesis", "expr": exprMap(e.Expr)}
	case *Logical:
		return map[string]any{"type": "logical", "left": exprMap(e.Left), "op": e.Op, "right": exprMap(e.Right)}
	}
	return nil
}
