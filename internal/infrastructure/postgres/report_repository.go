package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de solo lectura sobre el ledger.
type ReportRepo struct {
	q Querier
}

func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// CurrentInventory devuelve el inventario valorizado: cada producto con sus
// existencias y su valor a costo de compra.
func (r *ReportRepo) CurrentInventory(ctx context.Context) ([]repository.InventoryLine, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+`, quantity * purchase_price AS value
		 FROM products ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("inventory report: %w", err)
	}
	defer rows.Close()
	var lines []repository.InventoryLine
	for rows.Next() {
		var p entity.Product
		var value decimal.Decimal
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.CategoryID, &p.PurchasePrice,
			&p.SellingPrice, &p.Quantity, &p.MinQuantity, &p.Barcode, &p.CreatedAt,
			&p.UpdatedAt, &value); err != nil {
			return nil, fmt.Errorf("scan inventory line: %w", err)
		}
		lines = append(lines, repository.InventoryLine{
			Product:  &p,
			Quantity: p.Quantity,
			Value:    value,
		})
	}
	return lines, rows.Err()
}

// SalesByPeriod agrega ventas por día o mes en [from, to). Los períodos sin
// ventas no aparecen.
func (r *ReportRepo) SalesByPeriod(ctx context.Context, from, to time.Time, granularity string) ([]repository.SalesBucket, error) {
	rows, err := r.q.Query(ctx,
		`SELECT date_trunc($3, s.date) AS bucket,
		        COALESCE(SUM(l.quantity * l.unit_price), 0) AS revenue,
		        COALESCE(SUM(l.quantity), 0) AS units
		 FROM sales s
		 JOIN sale_lines l ON l.sale_id = s.id
		 WHERE s.date >= $1 AND s.date < $2
		 GROUP BY bucket ORDER BY bucket`,
		from, to, granularity)
	if err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}
	defer rows.Close()
	return scanBuckets(rows)
}

func scanBuckets(rows pgx.Rows) ([]repository.SalesBucket, error) {
	var list []repository.SalesBucket
	for rows.Next() {
		var b repository.SalesBucket
		if err := rows.Scan(&b.Bucket, &b.Revenue, &b.UnitsSold); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// prefixedProductColumns califica productColumns con un alias de tabla para
// consultas con JOIN.
func prefixedProductColumns(alias string) string {
	cols := strings.Split(productColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// Profit calcula ingresos, costo y utilidad de [from, to). El costo sale del
// unit_cost congelado en cada línea al momento de la venta.
func (r *ReportRepo) Profit(ctx context.Context, from, to time.Time) (*repository.ProfitSummary, error) {
	var s repository.ProfitSummary
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(l.quantity * l.unit_price), 0) AS revenue,
		        COALESCE(SUM(l.quantity * l.unit_cost), 0)  AS cost
		 FROM sales s
		 JOIN sale_lines l ON l.sale_id = s.id
		 WHERE s.date >= $1 AND s.date < $2`,
		from, to,
	).Scan(&s.Revenue, &s.Cost)
	if err != nil {
		return nil, fmt.Errorf("profit report: %w", err)
	}
	s.Profit = s.Revenue.Sub(s.Cost)
	return &s, nil
}

// LowStock devuelve los productos con existencias por debajo del mínimo, los
// de mayor déficit primero.
func (r *ReportRepo) LowStock(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE quantity < min_quantity
		 ORDER BY quantity - min_quantity, id`)
	if err != nil {
		return nil, fmt.Errorf("low stock report: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.CategoryID, &p.PurchasePrice,
			&p.SellingPrice, &p.Quantity, &p.MinQuantity, &p.Barcode, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// BestSellers ranking de productos por unidades vendidas en [from, to).
// Empates se resuelven por id para que el orden sea estable.
func (r *ReportRepo) BestSellers(ctx context.Context, from, to time.Time, limit int) ([]repository.BestSeller, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+prefixedProductColumns("p")+`, SUM(l.quantity) AS units
		 FROM sale_lines l
		 JOIN sales s   ON s.id = l.sale_id
		 JOIN products p ON p.id = l.product_id
		 WHERE s.date >= $1 AND s.date < $2
		 GROUP BY p.id
		 ORDER BY units DESC, p.id
		 LIMIT $3`,
		from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("best sellers report: %w", err)
	}
	defer rows.Close()
	var list []repository.BestSeller
	for rows.Next() {
		var p entity.Product
		var units int64
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.CategoryID, &p.PurchasePrice,
			&p.SellingPrice, &p.Quantity, &p.MinQuantity, &p.Barcode, &p.CreatedAt,
			&p.UpdatedAt, &units); err != nil {
			return nil, fmt.Errorf("scan best seller: %w", err)
		}
		list = append(list, repository.BestSeller{Product: &p, UnitsSold: units})
	}
	return list, rows.Err()
}

// Dashboard contadores y totales acumulados para el tablero principal.
func (r *ReportRepo) Dashboard(ctx context.Context) (*repository.DashboardMetrics, error) {
	var m repository.DashboardMetrics
	err := r.q.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM products),
		        (SELECT COUNT(*) FROM suppliers),
		        (SELECT COUNT(*) FROM customers),
		        (SELECT COALESCE(SUM(total_amount), 0) FROM sales),
		        (SELECT COALESCE(SUM(total_amount), 0) FROM purchases)`,
	).Scan(&m.Products, &m.Suppliers, &m.Customers, &m.TotalRevenue, &m.TotalPurchase)
	if err != nil {
		return nil, fmt.Errorf("dashboard metrics: %w", err)
	}
	return &m, nil
}

// PurchaseTotalsByDay agrega compras por día en [from, to).
func (r *ReportRepo) PurchaseTotalsByDay(ctx context.Context, from, to time.Time) ([]repository.SalesBucket, error) {
	rows, err := r.q.Query(ctx,
		`SELECT date_trunc('day', p.date) AS bucket,
		        COALESCE(SUM(l.quantity * l.unit_price), 0) AS total,
		        COALESCE(SUM(l.quantity), 0) AS units
		 FROM purchases p
		 JOIN purchase_lines l ON l.purchase_id = p.id
		 WHERE p.date >= $1 AND p.date < $2
		 GROUP BY bucket ORDER BY bucket`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("purchase totals report: %w", err)
	}
	defer rows.Close()
	return scanBuckets(rows)
}
