package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title, subtitle lipgloss.Style
	label, value    lipgloss.Style
	active, cursor  lipgloss.Style
	inactive, dim   lipgloss.Style
	key, hint       lipgloss.Style
	scene, chart    lipgloss.Style
	ok, err         lipgloss.Style
	panel           lipgloss.Style
}

func newStyles(t Theme) styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return styles{
		title:    fg(t.Title).Bold(true),
		subtitle: fg(t.Muted),
		label:    fg(t.Muted).Width(16),
		value:    fg(t.Text),
		active:   fg(t.Text).Bold(true),
		cursor:   fg(t.Title).Bold(true),
		inactive: fg(t.Dim),
		dim:      fg(t.Dim),
		key:      fg(t.Title).Bold(true),
		hint:     fg(t.Muted),
		scene:    fg(t.Scene).Padding(1, 2),
		chart:    fg(t.Chart).Padding(1, 0),
		ok:       fg(t.Success).Bold(true),
		err:      fg(t.Error).Bold(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Dim).
			Padding(1, 2).
			Width(45),
	}
}

// keyHints renders "key action" pairs.
func (s styles) keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s.key.Render(pairs[i]) + s.hint.Render(" "+pairs[i+1]))
	}
	return b.String()
}

// ProgressBar renders a bar filled to percent of width.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
