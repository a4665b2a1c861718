package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pigmea-go/internal/pedido"
)

// PedidoRepository implements pedido.Repository on the same SQLite
// database that holds the action log, so snapshots and history share one
// file and one lifecycle.
type PedidoRepository struct {
	db *sql.DB
}

// NewPedidoRepository wraps an open connection. The caller owns the
// connection; Close it via the owning store.
func NewPedidoRepository(db *sql.DB) *PedidoRepository {
	return &PedidoRepository{db: db}
}

const pedidoColumns = `id, secuencia_pedido, numero_pedido, cliente, maquina_impresion, metros,
        fecha, fecha_entrega, etapa_actual, prioridad, tipo_impresion, tiempo_produccion, observaciones`

// Put inserts or replaces a pedido.
func (r *PedidoRepository) Put(ctx context.Context, p *pedido.Pedido) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO pedidos (`+pedidoColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SecuenciaPedido, p.NumeroPedido, p.Cliente, p.MaquinaImpresion, p.Metros,
		p.Fecha, p.FechaEntrega, p.EtapaActual, p.Prioridad, p.TipoImpresion, p.TiempoProduccion, p.Observaciones,
	)
	if err != nil {
		return fmt.Errorf("writing pedido: %w", err)
	}
	return nil
}

// Get returns a pedido by id, or nil if it does not exist.
func (r *PedidoRepository) Get(ctx context.Context, id string) (*pedido.Pedido, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+pedidoColumns+` FROM pedidos WHERE id = ?`, id)

	p, err := scanPedido(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding pedido: %w", err)
	}
	return p, nil
}

// Delete removes a pedido. Deleting an absent id is a no-op.
func (r *PedidoRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pedidos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting pedido: %w", err)
	}
	return nil
}

// List returns all pedidos ordered by sequence number.
func (r *PedidoRepository) List(ctx context.Context) ([]*pedido.Pedido, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+pedidoColumns+` FROM pedidos ORDER BY secuencia_pedido, id`)
	if err != nil {
		return nil, fmt.Errorf("listing pedidos: %w", err)
	}
	defer rows.Close()

	var pedidos []*pedido.Pedido
	for rows.Next() {
		p, err := scanPedido(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pedido: %w", err)
		}
		pedidos = append(pedidos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pedidos: %w", err)
	}
	return pedidos, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPedido(s scanner) (*pedido.Pedido, error) {
	var p pedido.Pedido
	err := s.Scan(&p.ID, &p.SecuenciaPedido, &p.NumeroPedido, &p.Cliente, &p.MaquinaImpresion, &p.Metros,
		&p.Fecha, &p.FechaEntrega, &p.EtapaActual, &p.Prioridad, &p.TipoImpresion, &p.TiempoProduccion, &p.Observaciones)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Compile-time check that PedidoRepository implements pedido.Repository.
var _ pedido.Repository = (*PedidoRepository)(nil)
