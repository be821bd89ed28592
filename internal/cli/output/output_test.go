package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bettersql/pkg/compiler"
	"github.com/leapstack-labs/bettersql/pkg/parser"
)

func TestNewRenderer_Modes(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want Mode
	}{
		{"auto on a buffer is plain", ModeAuto, ModePlain},
		{"empty is auto", "", ModePlain},
		{"explicit text", ModeText, ModeText},
		{"explicit json", ModeJSON, ModeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_PlainSQLUnchanged(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModePlain)
	sql := "\nselect\n  user.id\nfrom user\nlimit 1\n"
	assert.Equal(t, sql, r.SQL(sql))
}

func TestRenderer_TextSQLKeepsText(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeText, Options{NoColor: true})
	out := r.SQL("select user.id from user")
	for _, part := range []string{"select", "user.id", "from", "user"} {
		assert.Contains(t, out, part)
	}
}

func TestRenderer_SyntaxError(t *testing.T) {
	text := "select user {\n\tid %\n}"
	_, err := compiler.Compile(text)
	se, ok := parser.AsSyntaxError(err)
	require.True(t, ok)

	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModePlain)
	out := r.SyntaxError("query.bsql", text, se)

	assert.Contains(t, out, `unknown token "%"`)
	assert.Contains(t, out, "query.bsql:2:5")
	assert.Contains(t, out, "2 | \tid %")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	caret := lines[len(lines)-1]
	assert.True(t, strings.HasSuffix(caret, "\t   ^"), "caret line %q", caret)
}

func TestRenderer_SyntaxErrorWithoutPosition(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModePlain)
	out := r.SyntaxError("<stdin>", "", &parser.SyntaxError{Message: "empty query"})

	assert.Contains(t, out, "empty query")
	assert.Contains(t, out, "--> <stdin>\n")
	assert.NotContains(t, out, "^")
}

func TestRenderer_Streams(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeJSON)

	r.Println("a")
	r.Printf("%d\n", 1)
	r.Errorf("warn %s\n", "x")
	require.NoError(t, r.JSON(map[string]string{"sql": "select"}))

	assert.Equal(t, "a\n1\n{\n  \"sql\": \"select\"\n}\n", out.String())
	assert.Equal(t, "warn x\n", errOut.String())
}

func TestCaretIndent(t *testing.T) {
	assert.Equal(t, "", caretIndent("abc", 1))
	assert.Equal(t, "  ", caretIndent("abc", 3))
	assert.Equal(t, "\t ", caretIndent("\tabc", 3))
	assert.Equal(t, "   ", caretIndent("abc", 10))
}
