package parser_test

import (
	"testing"

	"github.com/leapstack-labs/bettersql/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(name string) *parser.Column {
	return &parser.Column{Name: name}
}

func cmp(left, op, right string) *parser.Compare {
	return &parser.Compare{Left: left, Op: op, Right: right}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *parser.Select
	}{
		{
			name:  "multi-row select",
			query: `select user [ id ]`,
			want: &parser.Select{Table: &parser.Table{
				Name:   "user",
				Fields: []parser.Field{col("id")},
			}},
		},
		{
			name:  "single-row select",
			query: `select user { id }`,
			want: &parser.Select{Table: &parser.Table{
				Name:   "user",
				Single: true,
				Fields: []parser.Field{col("id")},
			}},
		},
		{
			name:  "multi-line fields",
			query: "\nselect user {\n  id\n  nickname\n}\n",
			want: &parser.Select{Table: &parser.Table{
				Name:   "user",
				Single: true,
				Fields: []parser.Field{col("id"), col("nickname")},
			}},
		},
		{
			name:  "nested tables",
			query: "select cart [\n  user_id\n  user { nickname }\n  product { price shop { name } }\n]",
			want: &parser.Select{Table: &parser.Table{
				Name: "cart",
				Fields: []parser.Field{
					col("user_id"),
					&parser.Table{Name: "user", Single: true, Fields: []parser.Field{col("nickname")}},
					&parser.Table{Name: "product", Single: true, Fields: []parser.Field{
						col("price"),
						&parser.Table{Name: "shop", Single: true, Fields: []parser.Field{col("name")}},
					}},
				},
			}},
		},
		{
			name:  "column and table aliases",
			query: "select thread as post [\n  id\n  user as author { username, id as author_id }\n]",
			want: &parser.Select{Table: &parser.Table{
				Name:  "thread",
				Alias: "post",
				Fields: []parser.Field{
					col("id"),
					&parser.Table{Name: "user", Alias: "author", Single: true, Fields: []parser.Field{
						col("username"),
						&parser.Column{Name: "id", Alias: "author_id"},
					}},
				},
			}},
		},
		{
			name:  "nested and root where",
			query: "select post [\n  id\n  author { nickname } where is_admin = 1\n  title\n] where delete_time is null",
			want: &parser.Select{Table: &parser.Table{
				Name: "post",
				Fields: []parser.Field{
					col("id"),
					&parser.Table{
						Name:   "author",
						Single: true,
						Fields: []parser.Field{col("nickname")},
						Where:  &parser.Where{Expr: cmp("is_admin", "=", "1")},
					},
					col("title"),
				},
				Where: &parser.Where{Expr: cmp("delete_time", "is", "null")},
			}},
		},
		{
			name:  "connectives associate to the right",
			query: "select post [ id ]\nwhere a = 1\n  and b = 2\n   or c = 3",
			want: &parser.Select{Table: &parser.Table{
				Name:   "post",
				Fields: []parser.Field{col("id")},
				Where: &parser.Where{Expr: &parser.Logical{
					Left: cmp("a", "=", "1"),
					Op:   "and",
					Right: &parser.Logical{
						Left:  cmp("b", "=", "2"),
						Op:    "or",
						Right: cmp("c", "=", "3"),
					},
				}},
			}},
		},
		{
			name:  "not binds tighter than and",
			query: "select post [ id ] where not a = 1 and b = 2",
			want: &parser.Select{Table: &parser.Table{
				Name:   "post",
				Fields: []parser.Field{col("id")},
				Where: &parser.Where{Expr: &parser.Logical{
					Left:  &parser.Not{Expr: cmp("a", "=", "1")},
					Op:    "and",
					Right: cmp("b", "=", "2"),
				}},
			}},
		},
		{
			name:  "parenthesis followed by connective",
			query: "select post [ id ] where (a = 1 or b = 2) and c <> :c",
			want: &parser.Select{Table: &parser.Table{
				Name:   "post",
				Fields: []parser.Field{col("id")},
				Where: &parser.Where{Expr: &parser.Logical{
					Left: &parser.Parenthesis{Expr: &parser.Logical{
						Left:  cmp("a", "=", "1"),
						Op:    "or",
						Right: cmp("b", "=", "2"),
					}},
					Op:    "and",
					Right: cmp("c", "<>", ":c"),
				}},
			}},
		},
		{
			name:  "keyword spellings are recorded only when not canonical",
			query: "SELECT POST [ ID AS POST_ID ]\nWHERE AUTHOR_ID = :AUTHOR_ID\n  AND NOT DELETE_TIME IS NOT NULL",
			want: &parser.Select{
				SelectKeyword: "SELECT",
				Table: &parser.Table{
					Name:   "POST",
					Fields: []parser.Field{&parser.Column{Name: "ID", Alias: "POST_ID", AsKeyword: "AS"}},
					Where: &parser.Where{
						WhereKeyword: "WHERE",
						Expr: &parser.Logical{
							Left:  cmp("AUTHOR_ID", "=", ":AUTHOR_ID"),
							Op:    "AND",
							Right: &parser.Not{NotKeyword: "NOT", Expr: cmp("DELETE_TIME", "IS NOT", "NULL")},
						},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseString(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Placeholders(t *testing.T) {
	for _, variable := range []string{":user_id", "$user_id", "@user_id", "?"} {
		t.Run(variable, func(t *testing.T) {
			got, err := parser.ParseString("select post [ id title ] where user_id = " + variable)
			require.NoError(t, err)
			require.NotNil(t, got.Table.Where)
			assert.Equal(t, cmp("user_id", "=", variable), got.Table.Where.Expr)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantMsg string
		table   string
	}{
		{
			name:    "empty",
			query:   "\n\n",
			wantMsg: "empty query",
		},
		{
			name:    "missing select",
			query:   "user [ id ]",
			wantMsg: `missing "select" token, got word "user"`,
		},
		{
			name:    "missing table name",
			query:   "select",
			wantMsg: "missing table name",
		},
		{
			name:    "terminated after table name",
			query:   "select user",
			wantMsg: `unexpected termination after table name "user"`,
			table:   `table "user"`,
		},
		{
			name:    "missing table alias",
			query:   "select user as",
			wantMsg: `missing alias of table "user"`,
			table:   `table "user"`,
		},
		{
			name:    "symbol instead of table alias",
			query:   "select user as [ id ]",
			wantMsg: `expected alias of table "user", got symbol "["`,
		},
		{
			name:    "missing open bracket",
			query:   "select user id",
			wantMsg: `expected "[" or "{" to open the fields of table "user", got word "id"`,
		},
		{
			name:    "missing close bracket",
			query:   "select user [ id",
			wantMsg: `missing close bracket "]" for table "user"`,
			table:   `table "user"`,
		},
		{
			name:    "mismatched close bracket",
			query:   "select user { id ]",
			wantMsg: `mismatched close bracket "]" for table "user", expected "}"`,
		},
		{
			name:    "nested missing close bracket names nested table",
			query:   "select post [ id user as author { name ]",
			wantMsg: `mismatched close bracket "]" for table "user" (as "author"), expected "}"`,
			table:   `table "user" (as "author")`,
		},
		{
			name:    "empty field list",
			query:   "select user [ ]",
			wantMsg: `table "user" has no fields`,
		},
		{
			name:    "empty nested field list",
			query:   "select post [ id author {} ]",
			wantMsg: `table "author" has no fields`,
			table:   `table "author"`,
		},
		{
			name:    "alias without field",
			query:   "select user [ as x ]",
			wantMsg: `missing field name before "as" alias in table "user"`,
		},
		{
			name:    "missing column alias",
			query:   "select user [ id as ]",
			wantMsg: `expected alias of column "id" in table "user", got symbol "]"`,
		},
		{
			name:    "alias after promoted table",
			query:   "select post [ author { id } as writer ]",
			wantMsg: `unexpected "as" after nested table "author" in table "post", the alias must precede its fields`,
		},
		{
			name:    "field block without relation name",
			query:   "select post [ { id } ]",
			wantMsg: `missing relation table name in fields of table "post"`,
		},
		{
			name:    "field block promoted twice",
			query:   "select post [ author { id } { name } ]",
			wantMsg: `nested table "author" in table "post" already has fields`,
		},
		{
			name:    "unexpected symbol in fields",
			query:   "select post [ id = 1 ]",
			wantMsg: `expected table fields of table "post", got symbol "="`,
		},
		{
			name:    "missing where body",
			query:   "select post [ id ] where",
			wantMsg: `empty where statement after table "post"`,
			table:   `table "post"`,
		},
		{
			name:    "missing operator",
			query:   "select post [ id ] where a",
			wantMsg: `missing operator of where statement of table "post"`,
		},
		{
			name:    "unsupported operator",
			query:   "select post [ id ] where title like :keyword",
			wantMsg: `expected comparison operator in where statement after table "post", got word "like"`,
		},
		{
			name:    "incomplete comparison",
			query:   "select post [ id ] where a =",
			wantMsg: `missing right-hand side of where statement of table "post"`,
		},
		{
			name:    "unmatched parenthesis",
			query:   "select post [ id ] where (a = 1",
			wantMsg: `missing close parenthesis in where statement after table "post"`,
		},
		{
			name:    "dangling connective",
			query:   "select post [ id ] where a = 1 and",
			wantMsg: `empty where statement after table "post"`,
		},
		{
			name:    "trailing tokens",
			query:   "select post [ id ]\norder by id",
			wantMsg: `unexpected word "order" after table "post"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseString(tt.query)
			require.Error(t, err)
			assert.Nil(t, got)

			se, ok := parser.AsSyntaxError(err)
			require.True(t, ok, "expected *SyntaxError, got %T", err)
			assert.Contains(t, se.Message, tt.wantMsg)
			if tt.table != "" {
				assert.Equal(t, tt.table, se.Table)
			}
		})
	}
}

func TestParse_EmptyFieldListPosition(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		line   int
		column int
	}{
		{name: "root", query: "select user [ ]", line: 1, column: 15},
		{name: "nested", query: "select post [ id author {} ]", line: 1, column: 26},
		{name: "close on next line", query: "select post [\n]\nwhere a = 1", line: 2, column: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseString(tt.query)
			se, ok := parser.AsSyntaxError(err)
			require.True(t, ok, "expected *SyntaxError, got %T", err)
			assert.Contains(t, se.Message, "has no fields")
			assert.Equal(t, tt.line, se.Pos.Line)
			assert.Equal(t, tt.column, se.Pos.Column)
		})
	}
}

func TestSyntaxError_Error(t *testing.T) {
	_, err := parser.ParseString("select user [\n  id\n")
	require.Error(t, err)
	assert.Equal(t, `syntax error at line 2, column 3: missing close bracket "]" for table "user"`, err.Error())
	assert.True(t, parser.IsSyntaxError(err))

	_, err = parser.ParseString("")
	require.Error(t, err)
	assert.Equal(t, "syntax error: empty query", err.Error())
}

func TestSelect_MarshalJSON(t *testing.T) {
	sel, err := parser.ParseString("select thread as post { id as post_id author { name } } where not a = 1")
	require.NoError(t, err)

	data, err := sel.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "select",
		"table": {
			"type": "table",
			"name": "thread",
			"alias": "post",
			"single": true,
			"fields": [
				{"type": "column", "name": "id", "alias": "post_id"},
				{"type": "table", "name": "author", "single": true, "fields": [
					{"type": "column", "name": "name"}
				]}
			],
			"where": {
				"type": "where",
				"expr": {"type": "not", "expr": {"type": "compare", "left": "a", "op": "=", "right": "1"}}
			}
		}
	}`, string(data))
}
