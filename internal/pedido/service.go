package pedido

import (
	"context"
	"fmt"

	"pigmea-go/internal/history"
)

// Service coordinates pedido mutations with history recording: every
// mutation first lands in the repository, then is recorded write-then-forget
// so history bookkeeping can never block or reverse the primary change.
type Service struct {
	repo     Repository
	recorder *Recorder
	logger   history.Logger
}

// NewService creates a Service with the provided dependencies.
func NewService(repo Repository, recorder *Recorder, logger history.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// Create inserts a new pedido and records the creation.
func (s *Service) Create(ctx context.Context, p *Pedido) error {
	if p.ID == "" {
		return fmt.Errorf("pedido id is required")
	}
	existing, err := s.repo.Get(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("checking for existing pedido: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("pedido already exists: %s", p.ID)
	}

	if err := s.repo.Put(ctx, p); err != nil {
		return fmt.Errorf("creating pedido: %w", err)
	}

	s.recorder.PedidoCreated(ctx, p)
	s.logger.Info("pedido created", "id", p.ID, "numero", p.NumeroPedido)
	return nil
}

// Move advances a pedido to another production stage and records the edit.
func (s *Service) Move(ctx context.Context, id, etapa string) error {
	return s.update(ctx, id, func(p *Pedido) { p.EtapaActual = etapa })
}

// SetPrioridad changes a pedido's priority and records the edit.
func (s *Service) SetPrioridad(ctx context.Context, id, prioridad string) error {
	return s.update(ctx, id, func(p *Pedido) { p.Prioridad = prioridad })
}

// SetFechaEntrega changes a pedido's delivery date and records the edit.
func (s *Service) SetFechaEntrega(ctx context.Context, id, fecha string) error {
	return s.update(ctx, id, func(p *Pedido) { p.FechaEntrega = fecha })
}

func (s *Service) update(ctx context.Context, id string, mutate func(*Pedido)) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("finding pedido: %w", err)
	}
	if current == nil {
		return fmt.Errorf("pedido not found: %s", id)
	}

	before := *current
	mutate(current)

	if err := s.repo.Put(ctx, current); err != nil {
		return fmt.Errorf("updating pedido: %w", err)
	}

	s.recorder.PedidoUpdated(ctx, &before, current)
	return nil
}

// Delete removes a pedido and records the deletion with its full snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("finding pedido: %w", err)
	}
	if current == nil {
		return fmt.Errorf("pedido not found: %s", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting pedido: %w", err)
	}

	s.recorder.PedidoDeleted(ctx, current)
	s.logger.Info("pedido deleted", "id", id)
	return nil
}

// BulkDelete removes several pedidos and records one bulk action covering
// all of them. Unknown ids are skipped. Returns the number deleted.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (int, error) {
	var deleted []*Pedido

	for _, id := range ids {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return len(deleted), fmt.Errorf("finding pedido %s: %w", id, err)
		}
		if current == nil {
			continue
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return len(deleted), fmt.Errorf("deleting pedido %s: %w", id, err)
		}
		deleted = append(deleted, current)
	}

	if len(deleted) > 0 {
		s.recorder.BulkDeleted(ctx, deleted)
		s.logger.Info("pedidos deleted in bulk", "count", len(deleted))
	}
	return len(deleted), nil
}

// Get returns a pedido by id, or nil.
func (s *Service) Get(ctx context.Context, id string) (*Pedido, error) {
	return s.repo.Get(ctx, id)
}

// List returns all pedidos ordered by sequence number.
func (s *Service) List(ctx context.Context) ([]*Pedido, error) {
	return s.repo.List(ctx)
}
