package output

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/bettersql/pkg/parser"
)

var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "inner": true, "left": true, "join": true, "on": true,
	"as": true, "limit": true, "is": true, "null": true,
}

// SQL returns sql with keywords styled. In plain mode sql is returned as is.
func (r *Renderer) SQL(sql string) string {
	if r.mode != ModeText {
		return sql
	}

	var b strings.Builder
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := sql[start:end]
		if sqlKeywords[strings.ToLower(word)] {
			b.WriteString(r.styles.Keyword.Render(word))
		} else {
			b.WriteString(word)
		}
		start = -1
	}

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if isWordByte(c) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		b.WriteByte(c)
	}
	flush(len(sql))
	return b.String()
}

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '.' || c == ':' || c == '@' || c == '$' || c == '?'
}

// SyntaxError formats err against the text it was reported for: a header
// naming source, the offending line and a caret under the error column.
func (r *Renderer) SyntaxError(source, text string, err *parser.SyntaxError) string {
	var b strings.Builder

	loc := source
	if err.Pos.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d", source, err.Pos.Line, err.Pos.Column)
	}
	fmt.Fprintf(&b, "%s %s\n", r.styles.Error.Render("error:"), err.Message)
	fmt.Fprintf(&b, "  %s %s\n", r.styles.Muted.Render("-->"), loc)

	if !err.Pos.IsValid() {
		return b.String()
	}
	lines := strings.Split(text, "\n")
	if err.Pos.Line > len(lines) {
		return b.String()
	}

	line := strings.TrimRight(lines[err.Pos.Line-1], "\r")
	gutter := fmt.Sprintf("%d", err.Pos.Line)
	pad := strings.Repeat(" ", len(gutter))
	fmt.Fprintln(&b, r.styles.Muted.Render(pad+" |"))
	fmt.Fprintf(&b, "%s %s\n", r.styles.Muted.Render(gutter+" |"), line)
	fmt.Fprintf(&b, "%s %s%s\n", r.styles.Muted.Render(pad+" |"),
		caretIndent(line, err.Pos.Column), r.styles.Caret.Render("^"))
	return b.String()
}

// caretIndent returns the whitespace that puts a caret under the 1-based
// column of line, keeping tabs so it lines up in a terminal.
func caretIndent(line string, column int) string {
	n := min(max(column-1, 0), len(line))
	indent := []byte(line[:n])
	for i, c := range indent {
		if c != '\t' {
			indent[i] = ' '
		}
	}
	return string(indent)
}
