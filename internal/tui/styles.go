package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorGold      = lipgloss.Color("#F1C40F")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// styles are bound to the renderer of the writer they draw on, so colour
// detection follows the actual output rather than stdout.
type styles struct {
	header   lipgloss.Style
	name     lipgloss.Style
	live     lipgloss.Style
	pending  lipgloss.Style
	gold     lipgloss.Style
	ahead    lipgloss.Style
	behind   lipgloss.Style
	running  lipgloss.Style
	paused   lipgloss.Style
	finished lipgloss.Style
	idle     lipgloss.Style
	message  lipgloss.Style
	err      lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		header:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		name:     r.NewStyle().Foreground(colorFg),
		live:     r.NewStyle().Bold(true).Foreground(colorHighlight),
		pending:  r.NewStyle().Foreground(colorMuted),
		gold:     r.NewStyle().Bold(true).Foreground(colorGold),
		ahead:    r.NewStyle().Foreground(colorSuccess),
		behind:   r.NewStyle().Foreground(colorError),
		running:  r.NewStyle().Bold(true).Foreground(colorSuccess),
		paused:   r.NewStyle().Bold(true).Foreground(colorWarning),
		finished: r.NewStyle().Bold(true).Foreground(colorPrimary),
		idle:     r.NewStyle().Foreground(colorMuted),
		message:  r.NewStyle().Foreground(colorFg),
		err:      r.NewStyle().Foreground(colorError),
	}
}

// delta picks the colour for a delta cell by its sign.
func (s styles) delta(cell string) lipgloss.Style {
	switch {
	case len(cell) > 1 && cell[0] == '-':
		return s.ahead
	case len(cell) > 1 && cell[0] == '+':
		return s.behind
	}
	return s.pending
}
