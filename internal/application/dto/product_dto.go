package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. InitialQuantity > 0
// genera un movimiento ADJUST de stock inicial.
type CreateProductRequest struct {
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	CategoryID      *string         `json:"category_id,omitempty"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	InitialQuantity int64           `json:"initial_quantity"`
	MinQuantity     int64           `json:"min_quantity"`
	Barcode         string          `json:"barcode,omitempty"`
}

// UpdateProductRequest entrada para editar campos de un producto.
// Quantity queda fuera de esta superficie: solo el motor de stock la modifica.
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	CategoryID    *string          `json:"category_id,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty"`
	MinQuantity   *int64           `json:"min_quantity,omitempty"`
	Barcode       *string          `json:"barcode,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	CategoryID    *string         `json:"category_id,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Quantity      int64           `json:"quantity"`
	MinQuantity   int64           `json:"min_quantity"`
	Barcode       string          `json:"barcode,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FindProductsRequest filtros del listado de productos.
type FindProductsRequest struct {
	NameContains string `query:"name"`
	SKU          string `query:"sku"`
	BelowMinimum bool   `query:"below_minimum"`
}
