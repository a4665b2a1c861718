package testutil

import (
	"context"
	"sync"

	"pigmea-go/internal/history"
)

// RecordingHandler captures undo and redo calls for inspection.
// Errors can be injected to simulate callback failures.
type RecordingHandler struct {
	mu        sync.Mutex
	UndoErr   error
	RedoErr   error
	UndoCalls []*history.Record
	RedoCalls []*history.Record
}

func NewRecordingHandler() *RecordingHandler {
	return &RecordingHandler{}
}

func (h *RecordingHandler) Undo(ctx context.Context, record *history.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.UndoErr != nil {
		return h.UndoErr
	}
	h.UndoCalls = append(h.UndoCalls, record)
	return nil
}

func (h *RecordingHandler) Redo(ctx context.Context, record *history.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.RedoErr != nil {
		return h.RedoErr
	}
	h.RedoCalls = append(h.RedoCalls, record)
	return nil
}

// UndoCount returns the number of successful undo callbacks.
func (h *RecordingHandler) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.UndoCalls)
}

// RedoCount returns the number of successful redo callbacks.
func (h *RecordingHandler) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.RedoCalls)
}
