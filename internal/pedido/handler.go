package pedido

import (
	"context"
	"encoding/json"
	"fmt"

	"pigmea-go/internal/history"
)

// Handler reverses and reapplies recorded pedido actions against the local
// repository. It is the history.Handler the engine delegates all domain
// effect to: the engine itself never knows what undoing a CREATE means.
type Handler struct {
	repo   Repository
	logger history.Logger
}

// NewHandler creates a Handler operating on the given repository.
func NewHandler(repo Repository, logger history.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Undo reverses the effect of a recorded action: a created pedido is
// deleted, an update is rolled back to its before snapshot, a deleted
// pedido is reinserted. Bulk updates recorded without snapshots cannot be
// reversed and fail, leaving the record applied.
func (h *Handler) Undo(ctx context.Context, record *history.Record) error {
	switch p := record.Payload.(type) {
	case history.CreatePayload:
		created, err := decodePedido(p.After)
		if err != nil {
			return err
		}
		if err := h.repo.Delete(ctx, created.ID); err != nil {
			return fmt.Errorf("removing created pedido: %w", err)
		}

	case history.UpdatePayload:
		before, err := decodePedido(p.Before)
		if err != nil {
			return err
		}
		if err := h.repo.Put(ctx, before); err != nil {
			return fmt.Errorf("restoring previous pedido state: %w", err)
		}

	case history.DeletePayload:
		before, err := decodePedido(p.Before)
		if err != nil {
			return err
		}
		if err := h.repo.Put(ctx, before); err != nil {
			return fmt.Errorf("reinserting deleted pedido: %w", err)
		}

	case history.BulkUpdatePayload:
		if len(p.Before) == 0 {
			return fmt.Errorf("bulk update %s has no snapshots to restore", record.ID)
		}
		if err := h.putAll(ctx, p.Before); err != nil {
			return fmt.Errorf("restoring bulk update: %w", err)
		}

	case history.BulkDeletePayload:
		if err := h.putAll(ctx, p.Before); err != nil {
			return fmt.Errorf("reinserting bulk-deleted pedidos: %w", err)
		}

	default:
		return fmt.Errorf("unsupported payload variant %T", record.Payload)
	}

	h.logger.Debug("action reversed", "id", record.ID, "type", string(record.Type))
	return nil
}

// Redo reapplies the effect of an undone action, symmetric to Undo.
func (h *Handler) Redo(ctx context.Context, record *history.Record) error {
	switch p := record.Payload.(type) {
	case history.CreatePayload:
		created, err := decodePedido(p.After)
		if err != nil {
			return err
		}
		if err := h.repo.Put(ctx, created); err != nil {
			return fmt.Errorf("recreating pedido: %w", err)
		}

	case history.UpdatePayload:
		after, err := decodePedido(p.After)
		if err != nil {
			return err
		}
		if err := h.repo.Put(ctx, after); err != nil {
			return fmt.Errorf("reapplying pedido update: %w", err)
		}

	case history.DeletePayload:
		deleted, err := decodePedido(p.Before)
		if err != nil {
			return err
		}
		if err := h.repo.Delete(ctx, deleted.ID); err != nil {
			return fmt.Errorf("re-deleting pedido: %w", err)
		}

	case history.BulkUpdatePayload:
		if len(p.After) == 0 {
			return fmt.Errorf("bulk update %s has no snapshots to reapply", record.ID)
		}
		if err := h.putAll(ctx, p.After); err != nil {
			return fmt.Errorf("reapplying bulk update: %w", err)
		}

	case history.BulkDeletePayload:
		for _, id := range p.AffectedIDs {
			if err := h.repo.Delete(ctx, id); err != nil {
				return fmt.Errorf("re-deleting pedido %s: %w", id, err)
			}
		}

	default:
		return fmt.Errorf("unsupported payload variant %T", record.Payload)
	}

	h.logger.Debug("action reapplied", "id", record.ID, "type", string(record.Type))
	return nil
}

func (h *Handler) putAll(ctx context.Context, snapshots []json.RawMessage) error {
	for _, raw := range snapshots {
		p, err := decodePedido(raw)
		if err != nil {
			return err
		}
		if err := h.repo.Put(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func decodePedido(raw json.RawMessage) (*Pedido, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("payload snapshot is empty")
	}
	var p Pedido
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding pedido snapshot: %w", err)
	}
	return &p, nil
}

// Compile-time check that Handler implements history.Handler.
var _ history.Handler = (*Handler)(nil)
