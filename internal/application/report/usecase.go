package report

import (
	"context"
	"time"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// UseCase expone los reportes de solo lectura sobre el ledger. Nunca muta;
// una lectura refleja el estado justo antes o justo después de un commit
// concurrente, jamás uno a medio aplicar.
type UseCase struct {
	repo repository.ReportRepository
}

// NewUseCase construye el caso de uso de reportes.
func NewUseCase(repo repository.ReportRepository) *UseCase {
	return &UseCase{repo: repo}
}

// CurrentInventory inventario valorizado: cantidad × costo de compra por producto.
func (uc *UseCase) CurrentInventory(ctx context.Context) ([]dto.InventoryLineDTO, error) {
	lines, err := uc.repo.CurrentInventory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.InventoryLineDTO{
			Product:  toProductResponse(l.Product),
			Quantity: l.Quantity,
			Value:    l.Value,
		})
	}
	return out, nil
}

// SalesReport ventas agregadas por día o mes dentro de [from, to).
func (uc *UseCase) SalesReport(ctx context.Context, from, to time.Time, granularity string) ([]dto.SalesBucketDTO, error) {
	if granularity != repository.GranularityDay && granularity != repository.GranularityMonth {
		return nil, domain.ErrInvalidInput
	}
	if !to.After(from) {
		return nil, domain.ErrInvalidInput
	}
	buckets, err := uc.repo.SalesByPeriod(ctx, from, to, granularity)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SalesBucketDTO, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dto.SalesBucketDTO{
			Bucket:       b.Bucket,
			TotalRevenue: b.Revenue,
			UnitsSold:    b.UnitsSold,
		})
	}
	return out, nil
}

// ProfitReport ingresos, costo y utilidad de [from, to). El costo usa el
// unit_cost registrado en cada línea al momento de la venta.
func (uc *UseCase) ProfitReport(ctx context.Context, from, to time.Time) (*dto.ProfitReportDTO, error) {
	if !to.After(from) {
		return nil, domain.ErrInvalidInput
	}
	summary, err := uc.repo.Profit(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.ProfitReportDTO{
		Revenue: summary.Revenue,
		Cost:    summary.Cost,
		Profit:  summary.Profit,
	}, nil
}

// LowStockReport productos con quantity < min_quantity, los más críticos primero.
func (uc *UseCase) LowStockReport(ctx context.Context) ([]dto.LowStockLineDTO, error) {
	products, err := uc.repo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockLineDTO, 0, len(products))
	for _, p := range products {
		out = append(out, dto.LowStockLineDTO{
			Product: toProductResponse(p),
			Deficit: p.MinQuantity - p.Quantity,
		})
	}
	return out, nil
}

// BestSellers ranking de unidades vendidas en [from, to); empates por id ascendente.
func (uc *UseCase) BestSellers(ctx context.Context, from, to time.Time, limit int) ([]dto.BestSellerDTO, error) {
	if !to.After(from) {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	sellers, err := uc.repo.BestSellers(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BestSellerDTO, 0, len(sellers))
	for _, s := range sellers {
		out = append(out, dto.BestSellerDTO{
			Product:   toProductResponse(s.Product),
			UnitsSold: s.UnitsSold,
		})
	}
	return out, nil
}

// Dashboard contadores y totales acumulados del negocio.
func (uc *UseCase) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	m, err := uc.repo.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardDTO{
		Products:      m.Products,
		Suppliers:     m.Suppliers,
		Customers:     m.Customers,
		TotalRevenue:  m.TotalRevenue,
		TotalPurchase: m.TotalPurchase,
	}, nil
}

// PurchaseTotals totales diarios de compras dentro de [from, to).
func (uc *UseCase) PurchaseTotals(ctx context.Context, from, to time.Time) ([]dto.SalesBucketDTO, error) {
	if !to.After(from) {
		return nil, domain.ErrInvalidInput
	}
	buckets, err := uc.repo.PurchaseTotalsByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SalesBucketDTO, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dto.SalesBucketDTO{
			Bucket:       b.Bucket,
			TotalRevenue: b.Revenue,
			UnitsSold:    b.UnitsSold,
		})
	}
	return out, nil
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		CategoryID:    p.CategoryID,
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		Quantity:      p.Quantity,
		MinQuantity:   p.MinQuantity,
		Barcode:       p.Barcode,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
