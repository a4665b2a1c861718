package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"pigmea-go/internal/history"
)

type keyMap struct {
	Undo     key.Binding
	Redo     key.Binding
	Up       key.Binding
	Down     key.Binding
	MarkRead key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "deshacer"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "rehacer"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "subir"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "bajar"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "marcar leído"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refrescar"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "salir"),
		),
	}
}

// shortcutAction is what a global undo/redo shortcut resolved to.
type shortcutAction int

const (
	shortcutNone shortcutAction = iota
	shortcutUndo
	shortcutRedo
)

// resolveShortcut decides whether an undo or redo shortcut should fire
// given the current engine state. Shortcuts only consume the key press
// when the action is actually available and no other undo/redo is in
// flight; otherwise the press falls through to whatever else binds it.
func resolveShortcut(action shortcutAction, state history.State, processing bool) bool {
	if processing {
		return false
	}
	switch action {
	case shortcutUndo:
		return state.CanUndo
	case shortcutRedo:
		return state.CanRedo
	default:
		return false
	}
}
