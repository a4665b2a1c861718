package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pigmea-go/internal/database/migrations"
	"pigmea-go/internal/history"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout is the stored timestamp format. Fixed-width UTC text keeps
// the column comparable with plain string ordering; RFC3339Nano would not,
// since it trims trailing zeros from the fraction.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements history.Store backed by a local SQLite database.
//
// The store is shared per device: one database file per installation, all
// users of the machine included. Writes are serialized by SQLite itself;
// read-modify-write sequences run inside a single transaction.
type SQLiteStore struct {
	path  string
	clock history.Clock

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

// NewSQLiteStore creates a store for the database at path. No I/O happens
// until Init. path can be ":memory:" for an in-memory database.
func NewSQLiteStore(path string, clock history.Clock) *SQLiteStore {
	return &SQLiteStore{path: path, clock: clock}
}

// Init opens the database and applies pending schema migrations. It is
// idempotent and safe to call from multiple goroutines: every caller
// converges on the same single connection, and only the first does work.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		db, err := OpenConnection(s.path)
		if err != nil {
			s.initErr = err
			return
		}

		if err := migrations.MigrateUp(db); err != nil {
			db.Close()
			s.initErr = fmt.Errorf("migrating database: %w", err)
			return
		}

		s.db = db
	})
	return s.initErr
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the store depends on. Exported for tests and tools that need a
// properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return db, nil
}

// conn returns the open database handle or ErrNotInitialized.
func (s *SQLiteStore) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, history.ErrNotInitialized
	}
	return s.db, nil
}

// Add inserts a new record. The existence check and the insert run in one
// transaction so a duplicate id is reported as ErrDuplicateID rather than
// a bare constraint error.
func (s *SQLiteStore) Add(ctx context.Context, record *history.Record) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	payload, err := history.EncodePayload(record.Payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions WHERE id = ?`, record.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking for existing record: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("adding record %s: %w", record.ID, history.ErrDuplicateID)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO actions (id, context_id, context_type, action_type, payload, timestamp, user_id, user_name, status, description)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ContextID, string(record.ContextType), string(record.Type), string(payload),
		record.Timestamp.UTC().Format(timeLayout), record.UserID, record.UserName,
		string(record.Status), record.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpdateStatus rewrites a record's status. The read and the write run in
// one transaction so concurrent callers cannot interleave on the same
// record.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status history.Status) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM actions WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("updating status of %s: %w", id, history.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading record status: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE actions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating record status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const recordColumns = `id, context_id, context_type, action_type, payload, timestamp, user_id, user_name, status, description`

// GetByContext returns all records for a context, newest first.
func (s *SQLiteStore) GetByContext(ctx context.Context, contextID string) ([]*history.Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT `+recordColumns+` FROM actions
        WHERE context_id = ?
        ORDER BY timestamp DESC, rowid DESC`, contextID)
	if err != nil {
		return nil, fmt.Errorf("querying records by context: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByUser returns up to limit records for a user, newest first.
func (s *SQLiteStore) GetByUser(ctx context.Context, userID string, limit int) ([]*history.Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT `+recordColumns+` FROM actions
        WHERE user_id = ?
        ORDER BY timestamp DESC, rowid DESC
        LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying records by user: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetLastApplied returns the user's most recent applied record, or nil.
// Pending records count as applied for eligibility.
func (s *SQLiteStore) GetLastApplied(ctx context.Context, userID string) (*history.Record, error) {
	return s.lastWithStatus(ctx, userID, []string{string(history.StatusApplied), string(history.StatusPending)})
}

// GetLastUndone returns the user's most recent undone record, or nil.
func (s *SQLiteStore) GetLastUndone(ctx context.Context, userID string) (*history.Record, error) {
	return s.lastWithStatus(ctx, userID, []string{string(history.StatusUndone)})
}

func (s *SQLiteStore) lastWithStatus(ctx context.Context, userID string, statuses []string) (*history.Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `
        SELECT ` + recordColumns + ` FROM actions
        WHERE user_id = ? AND status = ?
        ORDER BY timestamp DESC, rowid DESC
        LIMIT 1`
	args := []any{userID, statuses[0]}
	if len(statuses) == 2 {
		query = `
        SELECT ` + recordColumns + ` FROM actions
        WHERE user_id = ? AND status IN (?, ?)
        ORDER BY timestamp DESC, rowid DESC
        LIMIT 1`
		args = []any{userID, statuses[0], statuses[1]}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying last record: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// PurgeByContext deletes all records for a context. Returns the number of
// records deleted.
func (s *SQLiteStore) PurgeByContext(ctx context.Context, contextID string) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM actions WHERE context_id = ?`, contextID)
	if err != nil {
		return 0, fmt.Errorf("purging records by context: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged records: %w", err)
	}
	return int(count), nil
}

// CleanOlderThan deletes records older than now minus days. Returns the
// number of records deleted.
func (s *SQLiteStore) CleanOlderThan(ctx context.Context, days int) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	cutoff := s.clock.Now().UTC().AddDate(0, 0, -days).Format(timeLayout)
	result, err := db.ExecContext(ctx, `DELETE FROM actions WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting expired records: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted records: %w", err)
	}
	return int(count), nil
}

// ClearAll deletes every record. Debug/reset only.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM actions`); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}
	return nil
}

// LastSeen returns the user's read marker, or the zero time if none is set.
func (s *SQLiteStore) LastSeen(ctx context.Context, userID string) (time.Time, error) {
	db, err := s.conn()
	if err != nil {
		return time.Time{}, err
	}

	var raw string
	err = db.QueryRowContext(ctx, `SELECT last_seen FROM read_markers WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading last-seen marker: %w", err)
	}

	ts, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing last-seen marker: %w", err)
	}
	return ts, nil
}

// SetLastSeen moves the user's read marker.
func (s *SQLiteStore) SetLastSeen(ctx context.Context, userID string, ts time.Time) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        INSERT INTO read_markers (user_id, last_seen) VALUES (?, ?)
        ON CONFLICT(user_id) DO UPDATE SET last_seen = excluded.last_seen`,
		userID, ts.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("writing last-seen marker: %w", err)
	}
	return nil
}

// Conn returns the underlying connection for collaborators that share the
// same database file (the pedido repository). Only valid after Init.
func (s *SQLiteStore) Conn() (*sql.DB, error) {
	return s.conn()
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]*history.Record, error) {
	var records []*history.Record

	for rows.Next() {
		var (
			rec         history.Record
			contextType string
			actionType  string
			payload     string
			timestamp   string
			status      string
		)
		err := rows.Scan(&rec.ID, &rec.ContextID, &contextType, &actionType, &payload,
			&timestamp, &rec.UserID, &rec.UserName, &status, &rec.Description)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		rec.ContextType = history.ContextType(contextType)
		rec.Type = history.ActionType(actionType)
		rec.Status = history.Status(status)

		rec.Timestamp, err = time.Parse(timeLayout, timestamp)
		if err != nil {
			return nil, fmt.Errorf("parsing record timestamp: %w", err)
		}

		rec.Payload, err = history.DecodePayload(rec.Type, []byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decoding record payload: %w", err)
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// Compile-time check that SQLiteStore implements history.Store.
var _ history.Store = (*SQLiteStore)(nil)
