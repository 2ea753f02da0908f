package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para Purchase.
// Create inserta cabecera y líneas como unidad; se invoca solo dentro de la
// transacción del motor de stock.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.Purchase, error)
}

// SaleRepository define el puerto de persistencia para Sale.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.Sale, error)
}

// StockMovementRepository define el puerto para el historial de stock.
// La tabla es de solo inserción: no existen Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve los movimientos de un producto en orden de
	// commit (seq ascendente); bajo ese orden los resulting_quantity
	// replican como suma corrida.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error)
	// ListRecent devuelve los últimos movimientos de todos los productos,
	// seq descendente.
	ListRecent(ctx context.Context, limit int) ([]*entity.StockMovement, error)
}
