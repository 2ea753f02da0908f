package stock

import (
	"context"
	"time"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// Queries lecturas sobre compras y ventas ya registradas. Van directo al pool,
// sin transacción: los documentos son inmutables tras el commit.
type Queries struct {
	purchaseRepo repository.PurchaseRepository
	saleRepo     repository.SaleRepository
}

// NewQueries construye las consultas de documentos.
func NewQueries(purchaseRepo repository.PurchaseRepository, saleRepo repository.SaleRepository) *Queries {
	return &Queries{purchaseRepo: purchaseRepo, saleRepo: saleRepo}
}

// GetPurchase devuelve una compra con sus líneas.
func (q *Queries) GetPurchase(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	purchase, err := q.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	return toPurchaseResponse(purchase), nil
}

// ListPurchases devuelve compras del rango [from, to), paginadas.
func (q *Queries) ListPurchases(ctx context.Context, from, to *time.Time, page dto.PageRequest) ([]dto.PurchaseResponse, error) {
	page.DefaultPage()
	purchases, err := q.purchaseRepo.List(ctx, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, *toPurchaseResponse(p))
	}
	return out, nil
}

// GetSale devuelve una venta con sus líneas.
func (q *Queries) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := q.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return toSaleResponse(sale), nil
}

// ListSales devuelve ventas del rango [from, to), paginadas.
func (q *Queries) ListSales(ctx context.Context, from, to *time.Time, page dto.PageRequest) ([]dto.SaleResponse, error) {
	page.DefaultPage()
	sales, err := q.saleRepo.List(ctx, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, *toSaleResponse(s))
	}
	return out, nil
}
