package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pigmea-go/internal/config"
	"pigmea-go/internal/pedido"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig("user-1", "maria", t.TempDir())
	cfg.Database.Type = "memory"
	return cfg
}

func TestNewApp(t *testing.T) {
	ctx := context.Background()

	t.Run("wires the full stack", func(t *testing.T) {
		app, err := NewApp(ctx, testConfig(t), "Test")
		if err != nil {
			t.Fatalf("NewApp() error = %v", err)
		}
		defer app.Close()

		if err := app.Pedidos().Create(ctx, &pedido.Pedido{ID: "p1", NumeroPedido: "P-001"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		records := app.Engine().History()
		if len(records) != 1 {
			t.Fatalf("expected 1 history record, got %d", len(records))
		}

		if !app.Engine().Undo(ctx) {
			t.Fatal("expected undo to succeed")
		}
		got, err := app.Pedidos().Get(ctx, "p1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != nil {
			t.Errorf("pedido still present after undo: %+v", got)
		}
	})

	t.Run("rejects bad database config", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Database.Type = "postgres"

		if _, err := NewApp(ctx, cfg, "Test"); err == nil {
			t.Error("NewApp() expected error for unknown database type")
		}
	})

	t.Run("degrades when storage is unavailable", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Database.Type = "sqlite"
		// A regular file where the data directory should be makes the
		// database unopenable.
		blocker := filepath.Join(cfg.BaseDir, "blocker")
		if err := os.WriteFile(blocker, nil, 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		cfg.Database.DataDir = filepath.Join(blocker, "data")

		app, err := NewApp(ctx, cfg, "Test")
		if err != nil {
			t.Fatalf("NewApp() error = %v, want degraded app", err)
		}
		defer app.Close()

		// Pedido commands keep working against the in-memory fallback.
		if err := app.Pedidos().Create(ctx, &pedido.Pedido{ID: "p1"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		// History is disabled: nothing recorded, undo refuses.
		if got := app.Engine().State().HistoryCount; got != 0 {
			t.Errorf("history count = %d, want 0 in degraded mode", got)
		}
		if app.Engine().Undo(ctx) {
			t.Error("expected undo to fail in degraded mode")
		}
	})
}

func TestConfigUserProvider(t *testing.T) {
	t.Run("complete identity", func(t *testing.T) {
		p := configUserProvider{user: config.UserConfig{ID: "u1", Username: "maria", DisplayName: "María"}}
		user, ok := p.CurrentUser()
		if !ok {
			t.Fatal("CurrentUser() ok = false")
		}
		if user.Name() != "María" {
			t.Errorf("Name() = %q, want María", user.Name())
		}
	})

	t.Run("missing identity means no session user", func(t *testing.T) {
		p := configUserProvider{user: config.UserConfig{Username: "maria"}}
		if _, ok := p.CurrentUser(); ok {
			t.Error("CurrentUser() ok = true for incomplete identity")
		}
	})
}
