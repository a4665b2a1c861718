package tui

import (
	"testing"

	"pigmea-go/internal/history"
)

func TestResolveShortcut(t *testing.T) {
	tests := []struct {
		name       string
		action     shortcutAction
		state      history.State
		processing bool
		want       bool
	}{
		{
			name:   "undo fires when eligible",
			action: shortcutUndo,
			state:  history.State{CanUndo: true},
			want:   true,
		},
		{
			name:   "undo passes through with nothing to undo",
			action: shortcutUndo,
			state:  history.State{CanRedo: true},
			want:   false,
		},
		{
			name:   "redo fires when eligible",
			action: shortcutRedo,
			state:  history.State{CanRedo: true},
			want:   true,
		},
		{
			name:   "redo passes through with nothing to redo",
			action: shortcutRedo,
			state:  history.State{CanUndo: true},
			want:   false,
		},
		{
			name:       "shortcuts are inert while processing",
			action:     shortcutUndo,
			state:      history.State{CanUndo: true, CanRedo: true},
			processing: true,
			want:       false,
		},
		{
			name:   "unknown action never fires",
			action: shortcutNone,
			state:  history.State{CanUndo: true, CanRedo: true},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveShortcut(tt.action, tt.state, tt.processing); got != tt.want {
				t.Errorf("resolveShortcut() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistoryModel_CursorBounds(t *testing.T) {
	m := historyModel{
		keys: defaultKeyMap(),
		records: []*history.Record{
			{ID: "a1"}, {ID: "a2"},
		},
	}

	// Refresh shrinking the list pulls the cursor back in range.
	m.cursor = 5
	next, _ := m.Update(refreshedMsg{records: m.records})
	if got := next.(historyModel).cursor; got != 1 {
		t.Errorf("cursor = %d, want 1 after shrink", got)
	}
}
