package pedido

import "context"

// Repository provides persistence for the local pedido snapshots the
// undo/redo handler operates on.
type Repository interface {
	// Put inserts or replaces a pedido.
	Put(ctx context.Context, p *Pedido) error

	// Get returns a pedido by id, or nil if it does not exist.
	Get(ctx context.Context, id string) (*Pedido, error)

	// Delete removes a pedido. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns all pedidos ordered by sequence number.
	List(ctx context.Context) ([]*Pedido, error)
}
