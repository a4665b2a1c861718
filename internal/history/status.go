package history

import "fmt"

// Status is a record's position in the undo/redo lifecycle.
type Status string

const (
	// StatusApplied marks a record whose effect is live. It is eligible
	// as the next undo target.
	StatusApplied Status = "applied"

	// StatusUndone marks a record whose effect has been reversed. It is
	// eligible as the next redo target.
	StatusUndone Status = "undone"

	// StatusConflicted marks a record invalidated by an external change.
	// Terminal: never eligible for undo or redo again.
	StatusConflicted Status = "conflicted"

	// StatusPending is reserved. Nothing in the engine produces it; for
	// eligibility it behaves like StatusApplied.
	StatusPending Status = "pending"
)

// Event is a lifecycle trigger applied to a record's status.
type Event string

const (
	EventUndo     Event = "undo"
	EventRedo     Event = "redo"
	EventConflict Event = "conflict"
)

// transition computes the status that results from applying an event.
// applied ↔ undone is the only cycle; conflict is reachable from any
// status and has no way out.
func transition(s Status, e Event) (Status, error) {
	if e == EventConflict {
		return StatusConflicted, nil
	}

	switch s {
	case StatusApplied, StatusPending:
		if e == EventUndo {
			return StatusUndone, nil
		}
	case StatusUndone:
		if e == EventRedo {
			return StatusApplied, nil
		}
	}

	return s, fmt.Errorf("illegal transition: %s on %s", e, s)
}
