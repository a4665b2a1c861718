package history

import "testing"

func TestTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  Status
		event   Event
		want    Status
		wantErr bool
	}{
		{name: "undo applied", status: StatusApplied, event: EventUndo, want: StatusUndone},
		{name: "undo pending", status: StatusPending, event: EventUndo, want: StatusUndone},
		{name: "redo undone", status: StatusUndone, event: EventRedo, want: StatusApplied},
		{name: "conflict applied", status: StatusApplied, event: EventConflict, want: StatusConflicted},
		{name: "conflict undone", status: StatusUndone, event: EventConflict, want: StatusConflicted},
		{name: "conflict conflicted", status: StatusConflicted, event: EventConflict, want: StatusConflicted},
		{name: "undo undone", status: StatusUndone, event: EventUndo, wantErr: true},
		{name: "redo applied", status: StatusApplied, event: EventRedo, wantErr: true},
		{name: "undo conflicted", status: StatusConflicted, event: EventUndo, wantErr: true},
		{name: "redo conflicted", status: StatusConflicted, event: EventRedo, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := transition(tt.status, tt.event)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got status %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, got)
			}
		})
	}
}
