// Package output renders command results for terminals and pipes.
//
// A Renderer picks its effective mode once: styled text when writing to a
// color-capable terminal, plain text otherwise, or JSON on request.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeAuto  Mode = "auto"
	ModeText  Mode = "text"
	ModePlain Mode = "plain"
	ModeJSON  Mode = "json"
)

// Renderer writes results and diagnostics to a pair of streams.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// Options tunes renderer construction.
type Options struct {
	// NoColor forces plain output even on a terminal.
	NoColor bool
}

// NewRenderer creates a renderer for out and errOut. ModeAuto resolves to
// ModeText when out is a color-capable terminal and to ModePlain otherwise.
func NewRenderer(out, errOut io.Writer, mode Mode, opts ...Options) *Renderer {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	if mode == "" {
		mode = ModeAuto
	}
	if mode == ModeAuto {
		mode = ModePlain
		if !o.NoColor && isTerminal(out) {
			mode = ModeText
		}
	}

	profile := termenv.Ascii
	if mode == ModeText && !o.NoColor {
		profile = termenv.EnvColorProfile()
	}

	lr := lipgloss.NewRenderer(out, termenv.WithProfile(profile))
	lr.SetColorProfile(profile)

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: NewStyles(lr),
	}
}

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EffectiveMode returns the resolved mode, never ModeAuto.
func (r *Renderer) EffectiveMode() Mode {
	return r.mode
}

// Styles returns the styles for this renderer's color profile.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the result stream.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the diagnostics stream.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Println writes a line to the result stream.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the result stream.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Errorf writes a formatted message to the diagnostics stream.
func (r *Renderer) Errorf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.errOut, format, a...)
}

// JSON writes v as indented JSON to the result stream.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
