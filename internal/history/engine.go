package history

import (
	"context"
	"sync"
)

// User identifies the session user owning recorded actions.
type User struct {
	ID          string
	Username    string
	DisplayName string
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// UserProvider supplies the current session user. The second return value
// is false when no user is authenticated.
type UserProvider interface {
	CurrentUser() (User, bool)
}

// Handler executes the domain effect of reversing or reapplying an action.
// The engine has no knowledge of what "undo" means for a given entity type;
// all domain effect is delegated here.
type Handler interface {
	Undo(ctx context.Context, record *Record) error
	Redo(ctx context.Context, record *Record) error
}

// State is the derived view snapshot, recomputed after every mutating call.
type State struct {
	CanUndo      bool
	CanRedo      bool
	HistoryCount int
	UnreadCount  int
	LastAction   *Record
}

// Options tunes engine behavior. Zero values select the defaults.
type Options struct {
	// MaxHistory caps how many records History returns. Default 100.
	MaxHistory int

	// RetentionDays is the age past which the startup sweep deletes
	// records. Default 30.
	RetentionDays int
}

const (
	DefaultMaxHistory    = 100
	DefaultRetentionDays = 30
)

// Engine applies the undo/redo business rules on top of a Store: it records
// new actions, computes eligibility, invokes the Handler, and advances each
// record through its status lifecycle.
//
// Persistence failures never escape to the caller as panics or lost primary
// actions: RecordAction is write-then-forget, and Undo/Redo report failure
// by returning false. At most one Undo or Redo executes at a time per
// engine; concurrent triggers are rejected, not queued.
type Engine struct {
	store         Store
	handler       Handler
	users         UserProvider
	logger        Logger
	clock         Clock
	idgen         IDGenerator
	maxHistory    int
	retentionDays int

	// procMu is the re-entrancy guard for Undo/Redo.
	procMu sync.Mutex

	mu      sync.RWMutex
	state   State
	history []*Record
}

// NewEngine creates an Engine with the provided dependencies.
func NewEngine(store Store, handler Handler, users UserProvider, logger Logger, clock Clock, idgen IDGenerator, opts Options) *Engine {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = DefaultRetentionDays
	}
	return &Engine{
		store:         store,
		handler:       handler,
		users:         users,
		logger:        logger,
		clock:         clock,
		idgen:         idgen,
		maxHistory:    opts.MaxHistory,
		retentionDays: opts.RetentionDays,
	}
}

// Init opens the store, sweeps expired records, and loads the initial
// snapshot. It never fails: when the store cannot be opened the engine
// degrades to a no-history mode backed by a NopStore, where RecordAction
// drops silently and Undo/Redo always return false.
func (e *Engine) Init(ctx context.Context) {
	if err := e.store.Init(ctx); err != nil {
		e.logger.Warn("history storage unavailable, continuing without history", "error", err)
		e.store = NewNopStore()
	}

	deleted, err := e.store.CleanOlderThan(ctx, e.retentionDays)
	if err != nil {
		e.logger.Warn("retention sweep failed", "error", err)
	} else if deleted > 0 {
		e.logger.Info("expired history records removed", "count", deleted, "retention_days", e.retentionDays)
	}

	e.RefreshHistory(ctx)
}

// RecordAction persists a new applied record for the current user and
// refreshes the derived state.
//
// It never fails loudly: without an authenticated user it warns and
// no-ops, and persistence failures are logged only — the primary action
// the record describes has already happened and must not be blocked or
// reversed by history bookkeeping.
func (e *Engine) RecordAction(ctx context.Context, contextID string, contextType ContextType, actionType ActionType, payload Payload, description string) {
	user, ok := e.users.CurrentUser()
	if !ok {
		e.logger.Warn("no authenticated user, action not recorded", "description", description)
		return
	}

	record := &Record{
		ID:          e.idgen.New(),
		ContextID:   contextID,
		ContextType: contextType,
		Type:        actionType,
		Payload:     payload,
		Timestamp:   e.clock.Now(),
		UserID:      user.ID,
		UserName:    user.Name(),
		Status:      StatusApplied,
		Description: description,
	}

	if err := e.store.Add(ctx, record); err != nil {
		e.logger.Error("recording action failed", "id", record.ID, "error", err)
		return
	}

	e.logger.Debug("action recorded", "id", record.ID, "description", description)
	e.RefreshHistory(ctx)
}

// Undo reverses the current user's most recent applied action. It reports
// whether an action was undone. The call is rejected (false) when no user
// is authenticated, nothing is eligible, or another undo/redo is already
// in flight. The record's status flips to undone only after the handler
// succeeds; a handler failure leaves it applied so the user can retry.
func (e *Engine) Undo(ctx context.Context) bool {
	user, ok := e.users.CurrentUser()
	if !ok || !e.State().CanUndo {
		return false
	}

	if !e.procMu.TryLock() {
		return false
	}
	defer e.procMu.Unlock()

	record, err := e.store.GetLastApplied(ctx, user.ID)
	if err != nil {
		e.logger.Error("fetching undo target failed", "error", err)
		return false
	}
	if record == nil {
		return false
	}

	e.logger.Debug("undoing action", "id", record.ID, "description", record.Description)

	if err := e.handler.Undo(ctx, record); err != nil {
		e.logger.Error("undo handler failed", "id", record.ID, "error", err)
		return false
	}

	if !e.advance(ctx, record, EventUndo) {
		return false
	}

	e.RefreshHistory(ctx)
	return true
}

// Redo reapplies the current user's most recent undone action. Guarding
// and failure semantics mirror Undo.
func (e *Engine) Redo(ctx context.Context) bool {
	user, ok := e.users.CurrentUser()
	if !ok || !e.State().CanRedo {
		return false
	}

	if !e.procMu.TryLock() {
		return false
	}
	defer e.procMu.Unlock()

	record, err := e.store.GetLastUndone(ctx, user.ID)
	if err != nil {
		e.logger.Error("fetching redo target failed", "error", err)
		return false
	}
	if record == nil {
		return false
	}

	e.logger.Debug("redoing action", "id", record.ID, "description", record.Description)

	if err := e.handler.Redo(ctx, record); err != nil {
		e.logger.Error("redo handler failed", "id", record.ID, "error", err)
		return false
	}

	if !e.advance(ctx, record, EventRedo) {
		return false
	}

	e.RefreshHistory(ctx)
	return true
}

// advance applies a lifecycle event to a record and persists the new status.
func (e *Engine) advance(ctx context.Context, record *Record, event Event) bool {
	next, err := transition(record.Status, event)
	if err != nil {
		e.logger.Error("status transition rejected", "id", record.ID, "error", err)
		return false
	}
	if err := e.store.UpdateStatus(ctx, record.ID, next); err != nil {
		e.logger.Error("updating record status failed", "id", record.ID, "error", err)
		return false
	}
	record.Status = next
	return true
}

// MarkAsConflicted forces a record to the conflicted status, regardless of
// its current status. Used when an external actor changed the underlying
// entity, making a safe undo impossible. One-way: no un-conflict exists.
func (e *Engine) MarkAsConflicted(ctx context.Context, actionID string) {
	next, err := transition("", EventConflict)
	if err != nil {
		e.logger.Error("status transition rejected", "id", actionID, "error", err)
		return
	}
	if err := e.store.UpdateStatus(ctx, actionID, next); err != nil {
		e.logger.Error("marking action as conflicted failed", "id", actionID, "error", err)
		return
	}
	e.logger.Warn("action marked as conflicted", "id", actionID)
	e.RefreshHistory(ctx)
}

// PurgeContext deletes every record tied to a context. Called when the
// underlying entity is deleted or invalidated out-of-band, so stale undo
// targets cannot resurface. Returns the number of records removed.
func (e *Engine) PurgeContext(ctx context.Context, contextID string) int {
	deleted, err := e.store.PurgeByContext(ctx, contextID)
	if err != nil {
		e.logger.Error("purging context failed", "context_id", contextID, "error", err)
		return 0
	}
	e.logger.Info("context history purged", "context_id", contextID, "count", deleted)
	e.RefreshHistory(ctx)
	return deleted
}

// GetContextHistory returns every record for one context, newest first.
// Read-only; intended for activity panels scoped to a single entity.
func (e *Engine) GetContextHistory(ctx context.Context, contextID string) ([]*Record, error) {
	return e.store.GetByContext(ctx, contextID)
}

// CleanOlderThan removes records older than the given number of days and
// returns how many were deleted.
func (e *Engine) CleanOlderThan(ctx context.Context, days int) (int, error) {
	deleted, err := e.store.CleanOlderThan(ctx, days)
	if err != nil {
		return 0, err
	}
	e.RefreshHistory(ctx)
	return deleted, nil
}

// ClearHistory deletes every record. Debug-only escape hatch.
func (e *Engine) ClearHistory(ctx context.Context) error {
	if err := e.store.ClearAll(ctx); err != nil {
		return err
	}
	e.RefreshHistory(ctx)
	return nil
}

// MarkAllAsRead moves the current user's read marker to the newest record,
// zeroing the unread count.
func (e *Engine) MarkAllAsRead(ctx context.Context) error {
	user, ok := e.users.CurrentUser()
	if !ok {
		return nil
	}

	latest := e.clock.Now()
	if h := e.History(); len(h) > 0 {
		latest = h[0].Timestamp
	}

	if err := e.store.SetLastSeen(ctx, user.ID, latest); err != nil {
		return err
	}
	e.RefreshHistory(ctx)
	return nil
}

// RefreshHistory recomputes the derived state and history snapshot from the
// store. It runs after every mutating operation so the observable state is
// never stale relative to the store; callers may also trigger it directly.
func (e *Engine) RefreshHistory(ctx context.Context) {
	user, ok := e.users.CurrentUser()
	if !ok {
		e.setSnapshot(State{}, nil)
		return
	}

	records, err := e.store.GetByUser(ctx, user.ID, e.maxHistory)
	if err != nil {
		e.logger.Error("refreshing history failed", "error", err)
		return
	}

	lastApplied, err := e.store.GetLastApplied(ctx, user.ID)
	if err != nil {
		e.logger.Error("refreshing history failed", "error", err)
		return
	}

	lastUndone, err := e.store.GetLastUndone(ctx, user.ID)
	if err != nil {
		e.logger.Error("refreshing history failed", "error", err)
		return
	}

	lastSeen, err := e.store.LastSeen(ctx, user.ID)
	if err != nil {
		e.logger.Warn("reading last-seen marker failed", "error", err)
	}

	unread := 0
	for _, r := range records {
		if r.Timestamp.After(lastSeen) {
			unread++
		}
	}

	e.setSnapshot(State{
		CanUndo:      lastApplied != nil,
		CanRedo:      lastUndone != nil,
		HistoryCount: len(records),
		UnreadCount:  unread,
		LastAction:   lastApplied,
	}, records)
}

func (e *Engine) setSnapshot(state State, history []*Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
	e.history = history
}

// State returns the current derived view snapshot.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// History returns the current user's most recent records, newest first,
// capped at the configured maximum.
func (e *Engine) History() []*Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Record, len(e.history))
	copy(out, e.history)
	return out
}

// Processing reports whether an undo or redo is currently in flight. It is
// advisory: integrations use it to disable their affordances, but the
// re-entrancy guard inside Undo/Redo remains the authority.
func (e *Engine) Processing() bool {
	if e.procMu.TryLock() {
		e.procMu.Unlock()
		return false
	}
	return true
}
