package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the CLI.
type Styles struct {
	Header  lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Keyword lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Caret   lipgloss.Style
}

// NewStyles creates styles bound to a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Keyword: r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Caret:   r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}
