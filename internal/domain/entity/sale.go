package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale es la cabecera de una venta (salida de stock). Inmutable tras commit.
type Sale struct {
	ID            string
	CustomerID    *string
	Date          time.Time
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Lines         []SaleLine
}

// SaleLine es una línea de venta. UnitCost captura el costo de compra del
// producto al momento del commit; los reportes de utilidad usan este contexto
// y no el precio vigente, para que cambios posteriores no distorsionen el pasado.
type SaleLine struct {
	ID        string
	SaleID    string
	LineNo    int
	ProductID string
	Quantity  int64           // > 0
	UnitPrice decimal.Decimal // >= 0
	UnitCost  decimal.Decimal
}

// LineTotal devuelve Quantity × UnitPrice.
func (l SaleLine) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice)
}
