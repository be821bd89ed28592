package codegen

import (
	"bytes"
	"strings"
)

// gutterWidth is the width of the "where " prefix; connectives on
// continuation lines are right-aligned into the same gutter.
const gutterWidth = len("where ")

// Printer accumulates generated SQL one line at a time.
type Printer struct {
	output *bytes.Buffer
	upper  bool // synthesized keywords are uppercased
}

func newPrinter(upper bool) *Printer {
	p := &Printer{
		output: &bytes.Buffer{},
		upper:  upper,
	}
	p.output.WriteByte('\n')
	return p
}

// String returns the generated output.
func (p *Printer) String() string {
	return p.output.String()
}

func (p *Printer) writeln(parts ...string) {
	for _, s := range parts {
		p.output.WriteString(s)
	}
	p.output.WriteByte('\n')
}

// kw returns a keyword the source never spelled, in the query's case style.
func (p *Printer) kw(canonical string) string {
	if p.upper {
		return strings.ToUpper(canonical)
	}
	return canonical
}

// spelled returns the recorded source spelling of a keyword, or its
// canonical form when none was recorded.
func spelled(recorded, canonical string) string {
	if recorded != "" {
		return recorded
	}
	return canonical
}

// gutter right-aligns a connective so the operand after it starts at gutterWidth.
func gutter(connective string) string {
	pad := gutterWidth - len(connective) - 1
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + connective + " "
}

// formatList writes count items, the first prefixed by first and the rest by sep.
func (p *Printer) formatList(count int, item func(i int) string, first, sep string) {
	for i := 0; i < count; i++ {
		prefix := sep
		if i == 0 {
			prefix = first
		}
		p.writeln(prefix, item(i))
	}
}
