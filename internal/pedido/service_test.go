package pedido_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"pigmea-go/internal/history"
	"pigmea-go/internal/pedido"
	"pigmea-go/internal/testutil"
)

type serviceFixture struct {
	service *pedido.Service
	engine  *history.Engine
	repo    *pedido.MemoryRepository
	clock   *testutil.StubClock
}

// newServiceFixture wires the full local stack: memory repository, real
// handler, engine over an in-memory store, recorder, service.
func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	clock := testutil.FixedClock()
	store := testutil.NewTestStore(t, clock)
	repo := pedido.NewMemoryRepository()
	logger := history.NewNopLogger()
	users := testutil.NewStaticUserProvider("user-1", "maria")

	engine := history.NewEngine(store, pedido.NewHandler(repo, logger), users, logger,
		clock, testutil.NewStubIDGenerator(), history.Options{})
	engine.Init(context.Background())

	recorder := pedido.NewRecorder(engine, logger)
	service := pedido.NewService(repo, recorder, logger)

	return &serviceFixture{service: service, engine: engine, repo: repo, clock: clock}
}

func (f *serviceFixture) mustCreate(t *testing.T, ctx context.Context, p *pedido.Pedido) {
	t.Helper()
	if err := f.service.Create(ctx, p); err != nil {
		t.Fatalf("Create(%s) error = %v", p.ID, err)
	}
	f.clock.Advance(time.Second)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	f.mustCreate(t, ctx, &pedido.Pedido{ID: "p1", NumeroPedido: "P-001", Cliente: "Acme"})

	got, err := f.service.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil after Create")
	}

	records := f.engine.History()
	if len(records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(records))
	}
	if records[0].Description != "Pedido creado: P-001 - Acme" {
		t.Errorf("description = %q", records[0].Description)
	}
	if records[0].ContextID != "p1" || records[0].Type != history.ActionCreate {
		t.Errorf("record context/type = %s/%s", records[0].ContextID, records[0].Type)
	}

	if err := f.service.Create(ctx, &pedido.Pedido{ID: "p1"}); err == nil {
		t.Error("Create() expected error for duplicate id")
	}
}

func TestService_Move(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	f.mustCreate(t, ctx, &pedido.Pedido{ID: "p1", NumeroPedido: "P-001", EtapaActual: "Impresion"})

	if err := f.service.Move(ctx, "p1", "Laminado"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	got, _ := f.service.Get(ctx, "p1")
	if got.EtapaActual != "Laminado" {
		t.Errorf("EtapaActual = %q, want Laminado", got.EtapaActual)
	}

	records := f.engine.History()
	if len(records) != 2 {
		t.Fatalf("expected 2 history records, got %d", len(records))
	}
	want := "Pedido actualizado: P-001 (Etapa: Impresion → Laminado)"
	if records[0].Description != want {
		t.Errorf("description = %q, want %q", records[0].Description, want)
	}

	if err := f.service.Move(ctx, "missing", "Laminado"); err == nil {
		t.Error("Move() expected error for unknown pedido")
	}
}

func TestService_UndoRestoresState(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	f.mustCreate(t, ctx, &pedido.Pedido{ID: "p1", NumeroPedido: "P-001", EtapaActual: "Impresion"})
	if err := f.service.Move(ctx, "p1", "Laminado"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	f.clock.Advance(time.Second)

	// Undo the move: the pedido returns to its previous stage.
	if !f.engine.Undo(ctx) {
		t.Fatal("expected undo to succeed")
	}
	got, _ := f.service.Get(ctx, "p1")
	if got.EtapaActual != "Impresion" {
		t.Errorf("EtapaActual after undo = %q, want Impresion", got.EtapaActual)
	}

	// Undo the creation: the pedido disappears.
	if !f.engine.Undo(ctx) {
		t.Fatal("expected second undo to succeed")
	}
	got, _ = f.service.Get(ctx, "p1")
	if got != nil {
		t.Errorf("pedido still present after undoing creation: %+v", got)
	}

	// Redo the creation: it comes back.
	if !f.engine.Redo(ctx) {
		t.Fatal("expected redo to succeed")
	}
	got, _ = f.service.Get(ctx, "p1")
	if got == nil {
		t.Error("pedido missing after redoing creation")
	}
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	f.mustCreate(t, ctx, &pedido.Pedido{ID: "p1", NumeroPedido: "P-001", Cliente: "Acme"})

	if err := f.service.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, _ := f.service.Get(ctx, "p1")
	if got != nil {
		t.Errorf("pedido still present after delete: %+v", got)
	}

	records := f.engine.History()
	if records[0].Description != "Pedido eliminado: P-001 - Acme" {
		t.Errorf("description = %q", records[0].Description)
	}

	// Undoing the deletion brings the snapshot back intact.
	if !f.engine.Undo(ctx) {
		t.Fatal("expected undo to succeed")
	}
	got, _ = f.service.Get(ctx, "p1")
	if got == nil || got.Cliente != "Acme" {
		t.Errorf("restored pedido = %+v, want original", got)
	}

	if err := f.service.Delete(ctx, "missing"); err == nil {
		t.Error("Delete() expected error for unknown pedido")
	}
}

func TestService_BulkDelete(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	f.mustCreate(t, ctx, &pedido.Pedido{ID: "p1", SecuenciaPedido: 1})
	f.mustCreate(t, ctx, &pedido.Pedido{ID: "p2", SecuenciaPedido: 2})

	deleted, err := f.service.BulkDelete(ctx, []string{"p1", "p2", "missing"})
	if err != nil {
		t.Fatalf("BulkDelete() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("BulkDelete() = %d, want 2", deleted)
	}

	records := f.engine.History()
	if len(records) != 3 {
		t.Fatalf("expected 3 history records, got %d", len(records))
	}
	bulk := records[0]
	if bulk.Type != history.ActionBulkDelete {
		t.Errorf("record type = %s, want BULK_DELETE", bulk.Type)
	}
	if bulk.ContextID != "p1" {
		t.Errorf("context id = %q, want first affected id", bulk.ContextID)
	}
	if bulk.Description != "Eliminados 2 pedidos en masa" {
		t.Errorf("description = %q", bulk.Description)
	}

	// Undoing the bulk delete restores both pedidos in one step.
	if !f.engine.Undo(ctx) {
		t.Fatal("expected undo to succeed")
	}
	all, _ := f.service.List(ctx)
	if len(all) != 2 {
		t.Errorf("repository holds %d pedidos after undo, want 2", len(all))
	}

	// Only unknown ids: nothing deleted, nothing recorded.
	f.clock.Advance(time.Second)
	deleted, err = f.service.BulkDelete(ctx, []string{"ghost"})
	if err != nil {
		t.Fatalf("BulkDelete() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("BulkDelete() = %d, want 0", deleted)
	}
}

func TestRecorder_Descriptions(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	recorder := pedido.NewRecorder(f.engine, history.NewNopLogger())

	t.Run("update without tracked changes", func(t *testing.T) {
		p := &pedido.Pedido{ID: "p1", NumeroPedido: "P-001", Observaciones: "a"}
		q := *p
		q.Observaciones = "b"
		recorder.PedidoUpdated(ctx, p, &q)
		f.clock.Advance(time.Second)

		if got := f.engine.History()[0].Description; got != "Pedido actualizado: P-001" {
			t.Errorf("description = %q", got)
		}
	})

	t.Run("update with several tracked changes", func(t *testing.T) {
		p := &pedido.Pedido{ID: "p1", NumeroPedido: "P-001", EtapaActual: "Impresion", Prioridad: "baja"}
		q := *p
		q.EtapaActual = "Laminado"
		q.Prioridad = "alta"
		recorder.PedidoUpdated(ctx, p, &q)
		f.clock.Advance(time.Second)

		want := "Pedido actualizado: P-001 (Etapa: Impresion → Laminado, Prioridad: baja → alta)"
		if got := f.engine.History()[0].Description; got != want {
			t.Errorf("description = %q, want %q", got, want)
		}
	})

	t.Run("cliente update", func(t *testing.T) {
		before := &pedido.Cliente{ID: "c1", Nombre: "Acme"}
		after := &pedido.Cliente{ID: "c1", Nombre: "Acme SA"}
		recorder.ClienteUpdated(ctx, before, after)
		f.clock.Advance(time.Second)

		r := f.engine.History()[0]
		if r.ContextType != history.ContextCliente {
			t.Errorf("context type = %s, want cliente", r.ContextType)
		}
		if !strings.Contains(r.Description, "Acme SA") {
			t.Errorf("description = %q", r.Description)
		}
	})
}
