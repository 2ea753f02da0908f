package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// Quantity solo cambia a través del motor de stock (compras, ventas, ajustes);
// nunca por edición directa de campos.
type Product struct {
	ID            string
	Name          string
	SKU           string // único, no vacío
	CategoryID    *string
	PurchasePrice decimal.Decimal // costo de compra (>= 0); la última compra lo actualiza
	SellingPrice  decimal.Decimal // precio de venta (>= 0)
	Quantity      int64           // existencias actuales (>= 0, invariante)
	MinQuantity   int64           // umbral de alerta de stock bajo
	Barcode       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BelowMinimum indica si el producto está por debajo de su umbral de alerta.
func (p *Product) BelowMinimum() bool {
	return p.Quantity < p.MinQuantity
}
