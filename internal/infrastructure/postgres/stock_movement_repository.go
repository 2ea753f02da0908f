package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, seq, product_id, type, quantity_delta, reference_id, reason, resulting_quantity, created_at`

// StockMovementRepo implementación del puerto StockMovementRepository sobre
// PostgreSQL. Solo inserta y lee; el trigger de la tabla rechaza todo lo demás.
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento y deja en movement.Seq el número de secuencia
// asignado por la base.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO stock_movements
		   (id, product_id, type, quantity_delta, reference_id, reason, resulting_quantity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING seq`,
		movement.ID, movement.ProductID, movement.Type, movement.QuantityDelta,
		movement.ReferenceID, movement.Reason, movement.ResultingQuantity, movement.CreatedAt,
	).Scan(&movement.Seq)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidReference
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByProduct devuelve el historial completo de un producto en orden de
// commit (seq asignado por la base), el único orden bajo el que los
// resulting_quantity replican como suma corrida.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	return r.list(ctx,
		`SELECT `+movementColumns+`
		 FROM stock_movements WHERE product_id = $1
		 ORDER BY seq`, productID)
}

// ListRecent devuelve los últimos movimientos de todos los productos, los más
// recientes en orden de commit primero.
func (r *StockMovementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.StockMovement, error) {
	return r.list(ctx,
		`SELECT `+movementColumns+`
		 FROM stock_movements
		 ORDER BY seq DESC LIMIT $1`, limit)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.Seq, &m.ProductID, &m.Type, &m.QuantityDelta,
			&m.ReferenceID, &m.Reason, &m.ResultingQuantity, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
