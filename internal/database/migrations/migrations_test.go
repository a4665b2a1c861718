package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"actions", "read_markers", "pedidos", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckStatus(db)
	if err == nil {
		t.Error("CheckStatus() expected error for fresh database, got nil")
	}
}

func TestCheckStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	err := CheckStatus(db)
	if err != nil {
		t.Errorf("CheckStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after double migration returned error: %v", err)
	}
}

func TestSchema_Actions(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO actions (id, context_id, context_type, action_type, timestamp, user_id, user_name, description)
		VALUES ('a1', 'p1', 'pedido', 'CREATE', '2024-01-15T10:30:00.000000000Z', 'u1', 'Maria', 'Pedido creado')
	`)
	if err != nil {
		t.Fatalf("Failed to insert action: %v", err)
	}

	// Unfilled columns take their defaults
	var payload, status string
	err = db.QueryRow("SELECT payload, status FROM actions WHERE id = 'a1'").Scan(&payload, &status)
	if err != nil {
		t.Fatalf("Failed to retrieve action: %v", err)
	}
	if payload != "{}" {
		t.Errorf("payload default = %q, want {}", payload)
	}
	if status != "applied" {
		t.Errorf("status default = %q, want applied", status)
	}

	// Duplicate id rejected by the primary key
	_, err = db.Exec(`
		INSERT INTO actions (id, context_id, context_type, action_type, timestamp, user_id, user_name, description)
		VALUES ('a1', 'p2', 'pedido', 'CREATE', '2024-01-15T10:31:00.000000000Z', 'u1', 'Maria', 'Duplicado')
	`)
	if err == nil {
		t.Error("Expected primary key violation for duplicate action id, but insert succeeded")
	}
}

func TestSchema_ReadMarkers(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// One marker per user, upserted in place
	_, err := db.Exec(`
		INSERT INTO read_markers (user_id, last_seen) VALUES ('u1', '2024-01-15T10:30:00.000000000Z')
		ON CONFLICT(user_id) DO UPDATE SET last_seen = excluded.last_seen
	`)
	if err != nil {
		t.Fatalf("Failed to insert read marker: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO read_markers (user_id, last_seen) VALUES ('u1', '2024-01-15T11:00:00.000000000Z')
		ON CONFLICT(user_id) DO UPDATE SET last_seen = excluded.last_seen
	`)
	if err != nil {
		t.Fatalf("Failed to upsert read marker: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM read_markers WHERE user_id = 'u1'").Scan(&count); err != nil {
		t.Fatalf("Failed to count read markers: %v", err)
	}
	if count != 1 {
		t.Errorf("read marker count = %d, want 1", count)
	}
}

func TestSchema_Pedidos(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO pedidos (id, secuencia_pedido, numero_pedido, cliente, etapa_actual)
		VALUES ('p1', 1, 'P-001', 'Acme', 'Impresion')
	`)
	if err != nil {
		t.Fatalf("Failed to insert pedido: %v", err)
	}

	var cliente string
	err = db.QueryRow("SELECT cliente FROM pedidos WHERE id = 'p1'").Scan(&cliente)
	if err != nil {
		t.Errorf("Failed to retrieve pedido: %v", err)
	}
	if cliente != "Acme" {
		t.Errorf("Retrieved cliente = %q, want %q", cliente, "Acme")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A second pooled connection would see a different empty database.
	db.SetMaxOpenConns(1)

	return db
}
