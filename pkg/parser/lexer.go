package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/leapstack-labs/bettersql/pkg/token"
)

// Tokenizer rules, tried in order at every position of a trimmed line:
//
//	multi_op   → "<>" | "!=" | "<=" | ">="      (only before whitespace or end of line)
//	is_not     → "is" "not" "null"              → SYMBOL("is not") WORD("null")
//	is         → "is" "null"                    → SYMBOL("is") WORD("null")
//	symbol     → "{" | "}" | "[" | "]" | "(" | ")" | "<" | ">" | "!" | "=" | ","
//	word       → [a-zA-Z0-9_:@$?]+
//
// Every line after the first starts with a NEWLINE token.

var multiCharOperators = []string{"<>", "!=", "<=", ">="}

const symbolChars = "{}[]()<>!=,"

// Lexer tokenizes bsql input one line at a time.
type Lexer struct {
	input  string
	tokens []token.Token

	line   string // current trimmed line
	i      int    // byte index into line
	lineNo int    // 1-based line number of the current line
	col0   int    // 0-based column of line[0] in the source line
	offset int    // byte offset of line[0] in input
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize converts text into a flat token sequence.
func Tokenize(text string) ([]token.Token, error) {
	return NewLexer(text).Lex()
}

// Lex runs the lexer over the whole input.
func (l *Lexer) Lex() ([]token.Token, error) {
	l.tokens = nil
	lineStart := 0
	for n, raw := range strings.Split(l.input, "\n") {
		trimmedLeft := strings.TrimLeftFunc(raw, unicode.IsSpace)
		line := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
		if line != "" {
			l.line = line
			l.i = 0
			l.lineNo = n + 1
			l.col0 = len(raw) - len(trimmedLeft)
			l.offset = lineStart + l.col0
			if len(l.tokens) > 0 {
				l.emit(token.Newline(l.pos()))
			}
			if err := l.lexLine(); err != nil {
				return nil, err
			}
		}
		lineStart += len(raw) + 1
	}
	return l.tokens, nil
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Line:   l.lineNo,
		Column: l.col0 + l.i + 1,
		Offset: l.offset + l.i,
	}
}

func (l *Lexer) emit(t token.Token) {
	l.tokens = append(l.tokens, t)
}

func (l *Lexer) lexLine() error {
	for {
		for l.i < len(l.line) && isSpace(l.line[l.i]) {
			l.i++
		}
		if l.i >= len(l.line) {
			return nil
		}
		rest := l.line[l.i:]

		if op, ok := matchMultiCharOperator(rest); ok {
			l.emit(token.Symbol(op, l.pos()))
			l.i += len(op)
			continue
		}

		if l.lexIsNull(rest) {
			continue
		}

		if strings.IndexByte(symbolChars, rest[0]) >= 0 {
			l.emit(token.Symbol(rest[:1], l.pos()))
			l.i++
			continue
		}

		if n := wordLen(rest); n > 0 {
			l.emit(token.Word(rest[:n], l.pos()))
			l.i += n
			continue
		}

		r := []rune(rest)[0]
		return &SyntaxError{
			Pos:     l.pos(),
			Message: fmt.Sprintf(ErrUnknownToken, string(r), rest),
		}
	}
}

// lexIsNull collapses "is null" and "is not null" into an operator SYMBOL
// followed by a "null" WORD, keeping the source spelling of every part.
func (l *Lexer) lexIsNull(rest string) bool {
	is := leadingField(rest)
	if !strings.EqualFold(is, "is") {
		return false
	}
	start := l.pos()

	j := skipSpaces(rest, len(is))
	second := leadingField(rest[j:])

	if strings.EqualFold(second, "not") {
		k := skipSpaces(rest, j+len(second))
		if !hasNullPrefix(rest[k:]) {
			return false
		}
		l.emit(token.Symbol(is+" "+second, start))
		l.i += k
		l.emit(token.Word(rest[k:k+4], l.pos()))
		l.i += 4
		return true
	}

	if !hasNullPrefix(rest[j:]) {
		return false
	}
	l.emit(token.Symbol(is, start))
	l.i += j
	l.emit(token.Word(rest[j:j+4], l.pos()))
	l.i += 4
	return true
}

func matchMultiCharOperator(rest string) (string, bool) {
	for _, op := range multiCharOperators {
		if strings.HasPrefix(rest, op) && (len(rest) == len(op) || isSpace(rest[len(op)])) {
			return op, true
		}
	}
	return "", false
}

// hasNullPrefix reports whether s starts with "null" (any case) and the
// word ends right there.
func hasNullPrefix(s string) bool {
	if len(s) < 4 || !strings.EqualFold(s[:4], "null") {
		return false
	}
	return len(s) == 4 || !isWordChar(s[4])
}

func leadingField(s string) string {
	n := 0
	for n < len(s) && !isSpace(s[n]) {
		n++
	}
	return s[:n]
}

func skipSpaces(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func wordLen(s string) int {
	n := 0
	for n < len(s) && isWordChar(s[n]) {
		n++
	}
	return n
}

func isWordChar(ch byte) bool {
	return 'a' <= ch && ch <= 'z' ||
		'A' <= ch && ch <= 'Z' ||
		'0' <= ch && ch <= '9' ||
		ch == '_' || ch == ':' || ch == '@' || ch == '$' || ch == '?'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f'
}
