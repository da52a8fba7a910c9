package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// theme styles the confirm, export and result screens. Lists keep the
// default delegate styling.
type theme struct {
	heading  lipgloss.Style
	exported lipgloss.Style
	failure  lipgloss.Style
	skipped  lipgloss.Style
	status   lipgloss.Style
	label    lipgloss.Style
}

var styles = newTheme(themeColors{
	accent:  "#7D56F4",
	success: "#04B575",
	danger:  "#FF0000",
	caution: "#FFA500",
	muted:   "#626262",
})

type themeColors struct {
	accent, success, danger, caution, muted string
}

func newTheme(c themeColors) theme {
	fg := func(hex string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	}
	return theme{
		heading:  fg(c.accent).Bold(true).MarginBottom(1),
		exported: fg(c.success).Bold(true),
		failure:  fg(c.danger).Bold(true),
		skipped:  fg(c.caution),
		status:   fg(c.muted).Italic(true),
		label:    fg(c.muted).Bold(true).Width(labelWidth),
	}
}

// labelWidth fits the longest field name on the confirm screen.
const labelWidth = 18

// field renders one "Label  value" row of the confirm and result screens.
func (t theme) field(label string, value any) string {
	return t.label.Render(label) + fmt.Sprint(value)
}
