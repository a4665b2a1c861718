package pedido

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pigmea-go/internal/history"
)

// Recorder builds well-formed action payloads for pedido mutations and
// forwards them to the engine. Thin facade, no state of its own: each
// method is a pure function of its snapshots plus a RecordAction call.
type Recorder struct {
	engine *history.Engine
	logger history.Logger
}

// NewRecorder creates a Recorder forwarding to the given engine.
func NewRecorder(engine *history.Engine, logger history.Logger) *Recorder {
	return &Recorder{engine: engine, logger: logger}
}

// PedidoCreated records the creation of a pedido.
func (r *Recorder) PedidoCreated(ctx context.Context, p *Pedido) {
	after, err := history.Snapshot(p)
	if err != nil {
		r.logger.Error("snapshotting pedido failed", "id", p.ID, "error", err)
		return
	}
	r.engine.RecordAction(ctx, p.ID, history.ContextPedido, history.ActionCreate,
		history.CreatePayload{After: after},
		fmt.Sprintf("Pedido creado: %s - %s", p.NumeroPedido, p.Cliente))
}

// PedidoUpdated records an edit. The description names the fields a user
// cares about when scanning history: stage, priority, and delivery date.
func (r *Recorder) PedidoUpdated(ctx context.Context, before, after *Pedido) {
	beforeSnap, err := history.Snapshot(before)
	if err != nil {
		r.logger.Error("snapshotting pedido failed", "id", before.ID, "error", err)
		return
	}
	afterSnap, err := history.Snapshot(after)
	if err != nil {
		r.logger.Error("snapshotting pedido failed", "id", after.ID, "error", err)
		return
	}

	var changes []string
	if before.EtapaActual != after.EtapaActual {
		changes = append(changes, fmt.Sprintf("Etapa: %s → %s", before.EtapaActual, after.EtapaActual))
	}
	if before.Prioridad != after.Prioridad {
		changes = append(changes, fmt.Sprintf("Prioridad: %s → %s", before.Prioridad, after.Prioridad))
	}
	if before.FechaEntrega != after.FechaEntrega {
		changes = append(changes, fmt.Sprintf("Fecha entrega: %s → %s", before.FechaEntrega, after.FechaEntrega))
	}

	description := fmt.Sprintf("Pedido actualizado: %s", after.NumeroPedido)
	if len(changes) > 0 {
		description = fmt.Sprintf("Pedido actualizado: %s (%s)", after.NumeroPedido, strings.Join(changes, ", "))
	}

	r.engine.RecordAction(ctx, after.ID, history.ContextPedido, history.ActionUpdate,
		history.UpdatePayload{Before: beforeSnap, After: afterSnap}, description)
}

// PedidoDeleted records the deletion of a pedido, keeping the full prior
// snapshot so the deletion can be reversed.
func (r *Recorder) PedidoDeleted(ctx context.Context, p *Pedido) {
	before, err := history.Snapshot(p)
	if err != nil {
		r.logger.Error("snapshotting pedido failed", "id", p.ID, "error", err)
		return
	}
	r.engine.RecordAction(ctx, p.ID, history.ContextPedido, history.ActionDelete,
		history.DeletePayload{Before: before},
		fmt.Sprintf("Pedido eliminado: %s - %s", p.NumeroPedido, p.Cliente))
}

// BulkUpdated records a bulk edit. The context id is the first affected
// pedido, or the bulk sentinel when the list is empty. Snapshots are
// optional; without them the action cannot be undone precisely.
func (r *Recorder) BulkUpdated(ctx context.Context, before, after []*Pedido, description string) {
	ids := make([]string, 0, len(after))
	for _, p := range after {
		ids = append(ids, p.ID)
	}

	beforeSnaps, err := snapshotAll(before)
	if err != nil {
		r.logger.Error("snapshotting pedidos failed", "error", err)
		return
	}
	afterSnaps, err := snapshotAll(after)
	if err != nil {
		r.logger.Error("snapshotting pedidos failed", "error", err)
		return
	}

	r.engine.RecordAction(ctx, bulkContextID(ids), history.ContextPedido, history.ActionBulkUpdate,
		history.BulkUpdatePayload{AffectedIDs: ids, Before: beforeSnaps, After: afterSnaps}, description)
}

// BulkDeleted records a bulk deletion with the full prior snapshots.
func (r *Recorder) BulkDeleted(ctx context.Context, pedidos []*Pedido) {
	ids := make([]string, 0, len(pedidos))
	for _, p := range pedidos {
		ids = append(ids, p.ID)
	}

	before, err := snapshotAll(pedidos)
	if err != nil {
		r.logger.Error("snapshotting pedidos failed", "error", err)
		return
	}

	r.engine.RecordAction(ctx, bulkContextID(ids), history.ContextPedido, history.ActionBulkDelete,
		history.BulkDeletePayload{AffectedIDs: ids, Before: before},
		fmt.Sprintf("Eliminados %d pedidos en masa", len(ids)))
}

// ClienteUpdated records an edit to a customer.
func (r *Recorder) ClienteUpdated(ctx context.Context, before, after *Cliente) {
	beforeSnap, err := history.Snapshot(before)
	if err != nil {
		r.logger.Error("snapshotting cliente failed", "id", before.ID, "error", err)
		return
	}
	afterSnap, err := history.Snapshot(after)
	if err != nil {
		r.logger.Error("snapshotting cliente failed", "id", after.ID, "error", err)
		return
	}
	r.engine.RecordAction(ctx, after.ID, history.ContextCliente, history.ActionUpdate,
		history.UpdatePayload{Before: beforeSnap, After: afterSnap},
		fmt.Sprintf("Cliente actualizado: %s", after.Nombre))
}

// VendedorUpdated records an edit to a salesperson.
func (r *Recorder) VendedorUpdated(ctx context.Context, before, after *Vendedor) {
	beforeSnap, err := history.Snapshot(before)
	if err != nil {
		r.logger.Error("snapshotting vendedor failed", "id", before.ID, "error", err)
		return
	}
	afterSnap, err := history.Snapshot(after)
	if err != nil {
		r.logger.Error("snapshotting vendedor failed", "id", after.ID, "error", err)
		return
	}
	r.engine.RecordAction(ctx, after.ID, history.ContextVendedor, history.ActionUpdate,
		history.UpdatePayload{Before: beforeSnap, After: afterSnap},
		fmt.Sprintf("Vendedor actualizado: %s", after.Nombre))
}

func snapshotAll(pedidos []*Pedido) ([]json.RawMessage, error) {
	if pedidos == nil {
		return nil, nil
	}
	snaps := make([]json.RawMessage, 0, len(pedidos))
	for _, p := range pedidos {
		snap, err := history.Snapshot(p)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func bulkContextID(ids []string) string {
	if len(ids) == 0 {
		return history.BulkContextID
	}
	return ids[0]
}
