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

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación del puerto PurchaseRepository sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create inserta la cabecera y todas sus líneas. El llamador es responsable de
// envolverlo en una transacción; fuera de una tx un fallo parcial dejaría la
// compra a medias.
func (r *PurchaseRepo) Create(ctx context.Context, purchase *entity.Purchase) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO purchases (id, supplier_id, date, total_amount)
		 VALUES ($1, $2, $3, $4)`,
		purchase.ID, purchase.SupplierID, purchase.Date, purchase.TotalAmount,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidReference
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	for _, line := range purchase.Lines {
		_, err := r.q.Exec(ctx,
			`INSERT INTO purchase_lines (id, purchase_id, line_no, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			line.ID, line.PurchaseID, line.LineNo, line.ProductID, line.Quantity, line.UnitPrice,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrInvalidReference
			}
			return fmt.Errorf("insert purchase line %d: %w", line.LineNo, err)
		}
	}
	return nil
}

// GetByID obtiene la compra con sus líneas en orden de line_no.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	var p entity.Purchase
	err := r.q.QueryRow(ctx,
		`SELECT id, supplier_id, date, total_amount FROM purchases WHERE id = $1`, id,
	).Scan(&p.ID, &p.SupplierID, &p.Date, &p.TotalAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	lines, err := r.linesFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Lines = lines
	return &p, nil
}

func (r *PurchaseRepo) linesFor(ctx context.Context, purchaseID string) ([]entity.PurchaseLine, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, purchase_id, line_no, product_id, quantity, unit_price
		 FROM purchase_lines WHERE purchase_id = $1 ORDER BY line_no`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get purchase lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.PurchaseLine
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.LineNo, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// List devuelve compras en el rango [from, to), las más recientes primero.
// from y to en nil abren el extremo correspondiente.
func (r *PurchaseRepo) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.Purchase, error) {
	query := `SELECT id, supplier_id, date, total_amount FROM purchases WHERE 1=1`
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
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		var p entity.Purchase
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.Date, &p.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range list {
		lines, err := r.linesFor(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Lines = lines
	}
	return list, nil
}
