package pedido

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository. Used in tests and as the
// fallback when local storage is unavailable, so pedido commands keep
// working for the session even without persistence.
type MemoryRepository struct {
	mu      sync.Mutex
	pedidos map[string]Pedido
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{pedidos: make(map[string]Pedido)}
}

func (r *MemoryRepository) Put(_ context.Context, p *Pedido) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pedidos[p.ID] = *p
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Pedido, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pedidos[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pedidos, id)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Pedido, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Pedido, 0, len(r.pedidos))
	for _, p := range r.pedidos {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SecuenciaPedido != out[j].SecuenciaPedido {
			return out[i].SecuenciaPedido < out[j].SecuenciaPedido
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Compile-time check.
var _ Repository = (*MemoryRepository)(nil)
