package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera y todas sus líneas; se invoca solo dentro de la
// transacción del motor de stock.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sales (id, customer_id, date, total_amount, payment_method)
		 VALUES ($1, $2, $3, $4, $5)`,
		sale.ID, sale.CustomerID, sale.Date, sale.TotalAmount, sale.PaymentMethod,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidReference
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for _, line := range sale.Lines {
		_, err := r.q.Exec(ctx,
			`INSERT INTO sale_lines (id, sale_id, line_no, product_id, quantity, unit_price, unit_cost)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			line.ID, line.SaleID, line.LineNo, line.ProductID, line.Quantity, line.UnitPrice, line.UnitCost,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrInvalidReference
			}
			return fmt.Errorf("insert sale line %d: %w", line.LineNo, err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas en orden de line_no.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx,
		`SELECT id, customer_id, date, total_amount, payment_method FROM sales WHERE id = $1`, id,
	).Scan(&s.ID, &s.CustomerID, &s.Date, &s.TotalAmount, &s.PaymentMethod)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	lines, err := r.linesFor(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Lines = lines
	return &s, nil
}

func (r *SaleRepo) linesFor(ctx context.Context, saleID string) ([]entity.SaleLine, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, sale_id, line_no, product_id, quantity, unit_price, unit_cost
		 FROM sale_lines WHERE sale_id = $1 ORDER BY line_no`, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.LineNo, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.UnitCost); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// List devuelve ventas en el rango [from, to), las más recientes primero.
func (r *SaleRepo) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	query := `SELECT id, customer_id, date, total_amount, payment_method FROM sales WHERE 1=1`
	var args []any
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND date < $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY date DESC, id LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.Date, &s.TotalAmount, &s.PaymentMethod); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range list {
		lines, err := r.linesFor(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		s.Lines = lines
	}
	return list, nil
}
