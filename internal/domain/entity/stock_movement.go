package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN     = "IN"     // entrada por compra
	MovementTypeOUT    = "OUT"    // salida por venta
	MovementTypeADJUST = "ADJUST" // ajuste manual (merma, reconteo, anulación)
)

// StockMovement es un registro inmutable del historial de stock: solo se inserta,
// nunca se actualiza ni se borra. Seq es asignado por la base en orden de commit
// y desempata movimientos con el mismo timestamp.
type StockMovement struct {
	ID                string
	Seq               int64
	ProductID         string
	Type              string
	QuantityDelta     int64   // positivo IN / ajuste al alza, negativo OUT / ajuste a la baja
	ReferenceID       *string // id de compra o venta; nil en ajustes manuales
	Reason            string
	ResultingQuantity int64 // existencias después de aplicar el delta (para auditoría)
	CreatedAt         time.Time
}
