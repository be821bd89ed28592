package parser

import (
	"testing"

	"github.com/leapstack-labs/bettersql/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	typ   token.TokenType
	value string
}

func simplify(tokens []token.Token) []tok {
	out := make([]tok, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, tok{t.Type, t.Value})
	}
	return out
}

func w(v string) tok { return tok{token.WORD, v} }
func s(v string) tok { return tok{token.SYMBOL, v} }

var nl = tok{token.NEWLINE, ""}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tok
	}{
		{
			name:  "inline select",
			input: "select user [ id ]",
			want:  []tok{w("select"), w("user"), s("["), w("id"), s("]")},
		},
		{
			name:  "multi-line drops leading newline",
			input: "\nselect user {\n  id\n\n  nickname\n}\n",
			want:  []tok{w("select"), w("user"), s("{"), nl, w("id"), nl, w("nickname"), nl, s("}")},
		},
		{
			name:  "commas and brackets without spaces",
			input: "select post[id,title]",
			want:  []tok{w("select"), w("post"), s("["), w("id"), s(","), w("title"), s("]")},
		},
		{
			name:  "multi-char operators before whitespace",
			input: "a <> 1 b != 2 c <= 3 d >= 4",
			want: []tok{
				w("a"), s("<>"), w("1"),
				w("b"), s("!="), w("2"),
				w("c"), s("<="), w("3"),
				w("d"), s(">="), w("4"),
			},
		},
		{
			name:  "multi-char operator at end of line",
			input: "a <>",
			want:  []tok{w("a"), s("<>")},
		},
		{
			name:  "operator without trailing space splits",
			input: "a<>1",
			want:  []tok{w("a"), s("<"), s(">"), w("1")},
		},
		{
			name:  "is null",
			input: "delete_time is null",
			want:  []tok{w("delete_time"), s("is"), w("null")},
		},
		{
			name:  "is not null keeps casing",
			input: "DELETE_TIME IS NOT Null",
			want:  []tok{w("DELETE_TIME"), s("IS NOT"), w("Null")},
		},
		{
			name:  "is null before close parenthesis",
			input: "(x is null)",
			want:  []tok{s("("), w("x"), s("is"), w("null"), s(")")},
		},
		{
			name:  "is not null with extra spaces",
			input: "x is   not   null and y = 1",
			want:  []tok{w("x"), s("is not"), w("null"), w("and"), w("y"), s("="), w("1")},
		},
		{
			name:  "is followed by a longer word stays a word",
			input: "x is nullable",
			want:  []tok{w("x"), w("is"), w("nullable")},
		},
		{
			name:  "placeholders",
			input: ":user_id @user_id $user_id ?",
			want:  []tok{w(":user_id"), w("@user_id"), w("$user_id"), w("?")},
		},
		{
			name:  "tabs and carriage returns",
			input: "select\tuser [\r\n\tid\r\n]\r\n",
			want:  []tok{w("select"), w("user"), s("["), nl, w("id"), nl, s("]")},
		},
		{
			name:  "empty input",
			input: "  \n \n",
			want:  []tok{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, simplify(tokens))
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	tokens, err := Tokenize("select user [\n  id is null\n]")
	require.NoError(t, err)
	require.Len(t, tokens, 9)

	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, tokens[0].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 8, Offset: 7}, tokens[1].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 13, Offset: 12}, tokens[2].Pos)
	// newline marker sits on the first character of its line
	assert.Equal(t, token.NEWLINE, tokens[3].Type)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 16}, tokens[3].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 16}, tokens[4].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 6, Offset: 19}, tokens[5].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 9, Offset: 22}, tokens[6].Pos)
	assert.Equal(t, token.Position{Line: 3, Column: 1, Offset: 27}, tokens[8].Pos)
}

func TestTokenize_UnknownCharacter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		char    string
		line    int
		column  int
		context string
	}{
		{
			name:    "dot",
			input:   "select user [ id. ]",
			char:    `"."`,
			line:    1,
			column:  17,
			context: `". ]"`,
		},
		{
			name:    "quote on second line",
			input:   "select user [\n  name = 'x'\n]",
			char:    `"'"`,
			line:    2,
			column:  10,
			context: `"'x'"`,
		},
		{
			name:    "non-ascii letter",
			input:   "select usér [ id ]",
			char:    `"é"`,
			line:    1,
			column:  10,
			context: `"ér [ id ]"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)

			se, ok := AsSyntaxError(err)
			require.True(t, ok, "expected *SyntaxError, got %T", err)
			assert.Equal(t, tt.line, se.Pos.Line)
			assert.Equal(t, tt.column, se.Pos.Column)
			assert.Contains(t, se.Message, "unknown token "+tt.char)
			assert.Contains(t, se.Message, tt.context)
		})
	}
}
