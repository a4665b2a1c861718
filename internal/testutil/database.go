package testutil

import (
	"context"
	"testing"

	"pigmea-go/internal/database"
	"pigmea-go/internal/history"
)

// NewTestStore creates a new in-memory SQLite store with schema applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T, clock history.Clock) *database.SQLiteStore {
	t.Helper()

	store := database.NewSQLiteStore(":memory:", clock)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
