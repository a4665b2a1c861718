package app

import (
	"context"
	"os"
	"time"

	"pigmea-go/internal/config"
	"pigmea-go/internal/database"
	"pigmea-go/internal/history"
	"pigmea-go/internal/pedido"
)

// App is the application layer between the CLI and the history engine.
// It constructs all dependencies from config and manages their lifecycle
// on Close.
//
// When the local database cannot be opened the app degrades instead of
// failing: history runs against a NopStore (recording drops, undo/redo
// return false) and pedidos live in memory for the session. Loss of the
// undo log must never block the tool itself.
type App struct {
	cfg     *config.Config
	store   history.Store
	engine  *history.Engine
	service *pedido.Service
	logFile *os.File
}

// configUserProvider exposes the config-file identity as the session user.
type configUserProvider struct {
	user config.UserConfig
}

func (p configUserProvider) CurrentUser() (history.User, bool) {
	if p.user.ID == "" || p.user.Username == "" {
		return history.User{}, false
	}
	return history.User{
		ID:          p.user.ID,
		Username:    p.user.Username,
		DisplayName: p.user.DisplayName,
	}, true
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Undo", "HistoryList").
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, err
	}
	log := &slogAdapter{l: logger.With("op", operation)}

	clock := history.RealClock{}

	var (
		store history.Store
		repo  pedido.Repository
	)

	sqlStore, err := database.NewStoreFromConfig(cfg.Database, clock)
	if err != nil {
		// Config-level problem (unknown type, missing dir): report it.
		logFile.Close()
		return nil, err
	}

	if err := sqlStore.Init(ctx); err != nil {
		log.Warn("local storage unavailable, continuing without history", "error", err)
		store = history.NewNopStore()
		repo = pedido.NewMemoryRepository()
	} else {
		conn, err := sqlStore.Conn()
		if err != nil {
			sqlStore.Close()
			logFile.Close()
			return nil, err
		}
		store = sqlStore
		repo = database.NewPedidoRepository(conn)
	}

	handler := pedido.NewHandler(repo, log)
	engine := history.NewEngine(store, handler, configUserProvider{user: cfg.User}, log,
		clock, history.ActionIDGenerator{}, history.Options{
			MaxHistory:    cfg.History.MaxSize,
			RetentionDays: cfg.History.RetentionDays,
		})
	engine.Init(ctx)

	recorder := pedido.NewRecorder(engine, log)
	service := pedido.NewService(repo, recorder, log)

	return &App{
		cfg:     cfg,
		store:   store,
		engine:  engine,
		service: service,
		logFile: logFile,
	}, nil
}

// Engine returns the history engine.
func (a *App) Engine() *history.Engine { return a.engine }

// Pedidos returns the pedido service.
func (a *App) Pedidos() *pedido.Service { return a.service }

// User returns the configured session user.
func (a *App) User() config.UserConfig { return a.cfg.User }

// Close releases all resources.
func (a *App) Close() error {
	err := a.store.Close()
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}
