package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// ProductFilter filtros de búsqueda de productos. Campos en cero = sin filtro.
type ProductFilter struct {
	NameContains string
	SKU          string
	BelowMinimum bool
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// SetQuantity y SetPurchasePrice solo se usan dentro de transacciones del motor
// de stock, tras GetForUpdate; ningún otro camino modifica Quantity.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) hasta el
	// commit o rollback de la transacción en curso.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Find(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	SetQuantity(ctx context.Context, id string, quantity int64) error
	SetPurchasePrice(ctx context.Context, id string, price decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}
