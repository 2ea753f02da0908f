package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLineDTO fila del inventario valorizado.
type InventoryLineDTO struct {
	Product  ProductResponse `json:"product"`
	Quantity int64           `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// SalesBucketDTO ventas agregadas de un día o mes.
type SalesBucketDTO struct {
	Bucket       time.Time       `json:"bucket"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	UnitsSold    int64           `json:"units_sold"`
}

// ProfitReportDTO resumen de utilidad de un período.
type ProfitReportDTO struct {
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// LowStockLineDTO producto bajo el umbral con su déficit (min_quantity - quantity).
type LowStockLineDTO struct {
	Product ProductResponse `json:"product"`
	Deficit int64           `json:"deficit"`
}

// BestSellerDTO fila del ranking de más vendidos.
type BestSellerDTO struct {
	Product   ProductResponse `json:"product"`
	UnitsSold int64           `json:"units_sold"`
}

// DashboardDTO contadores y totales acumulados.
type DashboardDTO struct {
	Products      int64           `json:"products"`
	Suppliers     int64           `json:"suppliers"`
	Customers     int64           `json:"customers"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalPurchase decimal.Decimal `json:"total_purchase"`
}
