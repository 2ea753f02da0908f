package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLineRequest línea de compra o venta: producto, cantidad y precio unitario.
type DocumentLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RecordPurchaseRequest body para registrar una compra (entrada de stock).
type RecordPurchaseRequest struct {
	SupplierID *string               `json:"supplier_id,omitempty"`
	Date       time.Time             `json:"date"`
	Lines      []DocumentLineRequest `json:"lines"`
}

// RecordSaleRequest body para registrar una venta (salida de stock).
type RecordSaleRequest struct {
	CustomerID    *string               `json:"customer_id,omitempty"`
	Date          time.Time             `json:"date"`
	PaymentMethod string                `json:"payment_method"`
	Lines         []DocumentLineRequest `json:"lines"`
}

// AdjustStockRequest body para un ajuste manual (merma, reconteo, anulación).
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
}

// DocumentLineResponse línea persistida de compra o venta.
type DocumentLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PurchaseResponse compra registrada.
type PurchaseResponse struct {
	ID          string                 `json:"id"`
	SupplierID  *string                `json:"supplier_id,omitempty"`
	Date        time.Time              `json:"date"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	Lines       []DocumentLineResponse `json:"lines"`
}

// SaleResponse venta registrada.
type SaleResponse struct {
	ID            string                 `json:"id"`
	CustomerID    *string                `json:"customer_id,omitempty"`
	Date          time.Time              `json:"date"`
	TotalAmount   decimal.Decimal        `json:"total_amount"`
	PaymentMethod string                 `json:"payment_method"`
	Lines         []DocumentLineResponse `json:"lines"`
}

// MovementResponse movimiento del historial de stock.
type MovementResponse struct {
	ID                string    `json:"id"`
	Seq               int64     `json:"seq"`
	ProductID         string    `json:"product_id"`
	Type              string    `json:"type"`
	QuantityDelta     int64     `json:"quantity_delta"`
	ReferenceID       *string   `json:"reference_id,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	ResultingQuantity int64     `json:"resulting_quantity"`
	CreatedAt         time.Time `json:"created_at"`
}
