package history

import (
	"context"
	"errors"
	"time"
)

// Store errors. Implementations wrap these so callers can test with errors.Is.
var (
	// ErrNotFound is returned when an operation targets a record id that
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID is returned by Add when the record id already exists.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrNotInitialized is returned when a store is used before Init.
	ErrNotInitialized = errors.New("store not initialized")
)

// Store provides persistence for action records. Implementations must make
// UpdateStatus atomic with respect to concurrent callers touching the same
// record (a single read-then-write transaction per call).
type Store interface {
	// Init opens the store and creates the schema. Idempotent: concurrent
	// callers converge on the same single open handle.
	Init(ctx context.Context) error

	// Add inserts a new record. Fails with ErrDuplicateID if the id exists.
	Add(ctx context.Context, record *Record) error

	// UpdateStatus rewrites a record's status. Fails with ErrNotFound if
	// the id is absent.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// GetByContext returns all records for a context, newest first.
	GetByContext(ctx context.Context, contextID string) ([]*Record, error)

	// GetByUser returns up to limit records for a user, newest first.
	GetByUser(ctx context.Context, userID string, limit int) ([]*Record, error)

	// GetLastApplied returns the most recent applied-or-pending record for
	// a user, or nil if there is none.
	GetLastApplied(ctx context.Context, userID string) (*Record, error)

	// GetLastUndone returns the most recent undone record for a user, or
	// nil if there is none.
	GetLastUndone(ctx context.Context, userID string) (*Record, error)

	// PurgeByContext deletes all records for a context. Returns the number
	// of records deleted.
	PurgeByContext(ctx context.Context, contextID string) (int, error)

	// CleanOlderThan deletes records older than now minus days. Returns
	// the number of records deleted.
	CleanOlderThan(ctx context.Context, days int) (int, error)

	// ClearAll deletes every record. Debug/reset only.
	ClearAll(ctx context.Context) error

	// LastSeen returns the user's read marker, or the zero time if the
	// user has never marked history as read.
	LastSeen(ctx context.Context, userID string) (time.Time, error)

	// SetLastSeen moves the user's read marker.
	SetLastSeen(ctx context.Context, userID string, ts time.Time) error

	// Close releases store resources.
	Close() error
}

// NopStore is a Store that persists nothing. The engine falls back to it
// when local storage is unavailable, degrading to a no-history mode.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (*NopStore) Init(context.Context) error                            { return nil }
func (*NopStore) Add(context.Context, *Record) error                    { return nil }
func (*NopStore) UpdateStatus(context.Context, string, Status) error    { return nil }
func (*NopStore) GetByContext(context.Context, string) ([]*Record, error) { return nil, nil }
func (*NopStore) GetByUser(context.Context, string, int) ([]*Record, error) {
	return nil, nil
}
func (*NopStore) GetLastApplied(context.Context, string) (*Record, error) { return nil, nil }
func (*NopStore) GetLastUndone(context.Context, string) (*Record, error)  { return nil, nil }
func (*NopStore) PurgeByContext(context.Context, string) (int, error)     { return 0, nil }
func (*NopStore) CleanOlderThan(context.Context, int) (int, error)        { return 0, nil }
func (*NopStore) ClearAll(context.Context) error                          { return nil }
func (*NopStore) LastSeen(context.Context, string) (time.Time, error) {
	return time.Time{}, nil
}
func (*NopStore) SetLastSeen(context.Context, string, time.Time) error { return nil }
func (*NopStore) Close() error                                         { return nil }

// Compile-time check.
var _ Store = (*NopStore)(nil)
