// Package tui is the interactive history browser: a scrollable view of the
// session user's action log with undo/redo bound to the familiar keyboard
// shortcuts.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	white  = lipgloss.Color("#E2E2E2")
	gray   = lipgloss.Color("#888888")
	muted  = lipgloss.Color("#555555")
	blue   = lipgloss.Color("#5FAFFF")
	green  = lipgloss.Color("#5FD787")
	yellow = lipgloss.Color("#FFD787")
	red    = lipgloss.Color("#FF8787")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(white)

	selectedStyle = lipgloss.NewStyle().
			Foreground(blue).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(muted)

	helpStyle = lipgloss.NewStyle().
			Foreground(gray)

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(green)

	unreadStyle = lipgloss.NewStyle().
			Foreground(yellow).
			Bold(true)
)

// recordStatusStyle returns the style for a record's lifecycle status.
func recordStatusStyle(status string) lipgloss.Style {
	switch status {
	case "applied":
		return lipgloss.NewStyle().Foreground(green)
	case "undone":
		return lipgloss.NewStyle().Foreground(yellow)
	case "conflicted":
		return lipgloss.NewStyle().Foreground(red)
	default:
		return lipgloss.NewStyle().Foreground(gray)
	}
}
