package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pigmea-go/internal/history"
)

// --- Messages ---

type refreshedMsg struct {
	records []*history.Record
	state   history.State
}

type actionDoneMsg struct {
	action shortcutAction
	ok     bool
}

type markedReadMsg struct {
	err error
}

// --- History browser model ---

type historyModel struct {
	engine *history.Engine
	keys   keyMap

	records []*history.Record
	state   history.State
	cursor  int

	width  int
	height int

	// processing disables the undo/redo shortcuts while a command is in
	// flight. The engine's own guard remains the authority.
	processing bool

	status      string
	statusIsErr bool
	quitting    bool
}

// Run starts the full-window history browser.
func Run(engine *history.Engine) error {
	m := historyModel{
		engine: engine,
		keys:   defaultKeyMap(),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running history browser: %w", err)
	}
	return nil
}

func (m historyModel) Init() tea.Cmd {
	return m.refresh()
}

func (m historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		m.engine.RefreshHistory(context.Background())
		return refreshedMsg{records: m.engine.History(), state: m.engine.State()}
	}
}

func (m historyModel) runUndo() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: shortcutUndo, ok: m.engine.Undo(context.Background())}
	}
}

func (m historyModel) runRedo() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: shortcutRedo, ok: m.engine.Redo(context.Background())}
	}
}

func (m historyModel) markAllRead() tea.Cmd {
	return func() tea.Msg {
		return markedReadMsg{err: m.engine.MarkAllAsRead(context.Background())}
	}
}

// --- Update ---

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshedMsg:
		m.records = msg.records
		m.state = msg.state
		if m.cursor >= len(m.records) {
			m.cursor = max(0, len(m.records)-1)
		}
		return m, nil

	case actionDoneMsg:
		m.processing = false
		if msg.ok {
			if msg.action == shortcutUndo {
				m.status = "Acción deshecha"
			} else {
				m.status = "Acción rehecha"
			}
			m.statusIsErr = false
		} else {
			m.status = "La operación no se pudo completar"
			m.statusIsErr = true
		}
		return m, m.refresh()

	case markedReadMsg:
		if msg.err != nil {
			m.status = "No se pudo actualizar el marcador de lectura"
			m.statusIsErr = true
			return m, nil
		}
		m.status = "Historial marcado como leído"
		m.statusIsErr = false
		return m, m.refresh()
	}

	return m, nil
}

func (m historyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Undo):
		if !resolveShortcut(shortcutUndo, m.state, m.processing) {
			m.status = "Nada que deshacer"
			m.statusIsErr = false
			return m, nil
		}
		m.processing = true
		m.status = "Deshaciendo..."
		m.statusIsErr = false
		return m, m.runUndo()

	case key.Matches(msg, m.keys.Redo):
		if !resolveShortcut(shortcutRedo, m.state, m.processing) {
			m.status = "Nada que rehacer"
			m.statusIsErr = false
			return m, nil
		}
		m.processing = true
		m.status = "Rehaciendo..."
		m.statusIsErr = false
		return m, m.runRedo()

	case key.Matches(msg, m.keys.MarkRead):
		return m, m.markAllRead()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	}

	return m, nil
}

// --- View ---

func (m historyModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := titleStyle.Render("Historial de acciones")
	if m.state.UnreadCount > 0 {
		title += " " + unreadStyle.Render(fmt.Sprintf("(%d sin leer)", m.state.UnreadCount))
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	if len(m.records) == 0 {
		b.WriteString(mutedStyle.Render("No hay acciones registradas."))
		b.WriteString("\n")
	}

	for i, r := range m.records {
		cursor := "  "
		line := fmt.Sprintf("%-10s  %s  %s",
			recordStatusStyle(string(r.Status)).Render(string(r.Status)),
			mutedStyle.Render(r.Timestamp.Local().Format("2006-01-02 15:04")),
			r.Description,
		)
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
			line = selectedStyle.Render(fmt.Sprintf("%-10s  %s  %s",
				r.Status, r.Timestamp.Local().Format("2006-01-02 15:04"), r.Description))
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		if m.statusIsErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(statusStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m historyModel) helpLine() string {
	bindings := []key.Binding{m.keys.Undo, m.keys.Redo, m.keys.Up, m.keys.Down, m.keys.MarkRead, m.keys.Refresh, m.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("%s %s", h.Key, h.Desc))
	}
	return strings.Join(parts, " · ")
}
