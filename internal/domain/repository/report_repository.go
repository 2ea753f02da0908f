package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// Granularidades de agrupación para el reporte de ventas.
const (
	GranularityDay   = "day"
	GranularityMonth = "month"
)

// InventoryLine es una fila del reporte de inventario valorizado.
type InventoryLine struct {
	Product  *entity.Product
	Quantity int64
	Value    decimal.Decimal // Quantity × PurchasePrice
}

// SalesBucket agrega las ventas de un día o mes.
type SalesBucket struct {
	Bucket    time.Time
	Revenue   decimal.Decimal
	UnitsSold int64
}

// ProfitSummary resume ingresos, costo y utilidad de un período.
// Cost sale del unit_cost registrado en cada línea de venta, no del costo actual.
type ProfitSummary struct {
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Profit  decimal.Decimal
}

// BestSeller es una fila del ranking de más vendidos.
type BestSeller struct {
	Product   *entity.Product
	UnitsSold int64
}

// DashboardMetrics contadores y totales acumulados para el tablero.
type DashboardMetrics struct {
	Products      int64
	Suppliers     int64
	Customers     int64
	TotalRevenue  decimal.Decimal
	TotalPurchase decimal.Decimal
}

// ReportRepository consultas de solo lectura sobre el ledger. Nunca muta.
// Los rangos de fechas son [from, to): inicio inclusivo, fin exclusivo.
type ReportRepository interface {
	CurrentInventory(ctx context.Context) ([]InventoryLine, error)
	SalesByPeriod(ctx context.Context, from, to time.Time, granularity string) ([]SalesBucket, error)
	Profit(ctx context.Context, from, to time.Time) (*ProfitSummary, error)
	// LowStock devuelve productos con quantity < min_quantity, los más
	// críticos primero (quantity - min_quantity ascendente).
	LowStock(ctx context.Context) ([]*entity.Product, error)
	BestSellers(ctx context.Context, from, to time.Time, limit int) ([]BestSeller, error)
	Dashboard(ctx context.Context) (*DashboardMetrics, error)
	PurchaseTotalsByDay(ctx context.Context, from, to time.Time) ([]SalesBucket, error)
}
