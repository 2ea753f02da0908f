package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase es la cabecera de una compra (entrada de stock). Inmutable tras commit:
// las correcciones se hacen con ajustes compensatorios, nunca editando historia.
type Purchase struct {
	ID          string
	SupplierID  *string
	Date        time.Time
	TotalAmount decimal.Decimal // siempre = Σ línea.Quantity × línea.UnitPrice
	Lines       []PurchaseLine
}

// PurchaseLine es una línea de compra. LineNo preserva el orden de aplicación.
type PurchaseLine struct {
	ID         string
	PurchaseID string
	LineNo     int
	ProductID  string
	Quantity   int64           // > 0
	UnitPrice  decimal.Decimal // >= 0
}

// LineTotal devuelve Quantity × UnitPrice.
func (l PurchaseLine) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice)
}
