package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/stock"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Quantity se maneja
// exclusivamente vía el motor de stock; aquí solo se tocan los demás campos.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	engine       *stock.Engine
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, engine *stock.Engine) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, engine: engine}
}

func validatePrices(purchase, selling decimal.Decimal) error {
	if purchase.LessThan(decimal.Zero) || selling.LessThan(decimal.Zero) {
		return domain.ErrInvalidPrice
	}
	return nil
}

// Create crea un producto con cantidad cero. Si InitialQuantity > 0, registra
// un ajuste de stock inicial con su movimiento de auditoría.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Name == "" || in.SKU == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validatePrices(in.PurchasePrice, in.SellingPrice); err != nil {
		return nil, err
	}
	if in.InitialQuantity < 0 || in.MinQuantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.CategoryID != nil {
		category, err := uc.categoryRepo.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrInvalidReference
		}
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          in.Name,
		SKU:           in.SKU,
		CategoryID:    in.CategoryID,
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		Quantity:      0,
		MinQuantity:   in.MinQuantity,
		Barcode:       in.Barcode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	if in.InitialQuantity > 0 {
		if _, err := uc.engine.AdjustStock(ctx, dto.AdjustStockRequest{
			ProductID: product.ID,
			Delta:     in.InitialQuantity,
			Reason:    "stock inicial",
		}); err != nil {
			return nil, err
		}
		product.Quantity = in.InitialQuantity
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Find busca productos por nombre, SKU o bajo mínimo. Snapshot consistente al
// momento de la llamada.
func (uc *ProductUseCase) Find(ctx context.Context, in dto.FindProductsRequest) ([]dto.ProductResponse, error) {
	products, err := uc.repo.Find(ctx, repository.ProductFilter{
		NameContains: in.NameContains,
		SKU:          in.SKU,
		BelowMinimum: in.BelowMinimum,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// Update edita campos del producto. Quantity no está en esta superficie.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = *in.Name
	}
	if in.CategoryID != nil {
		category, err := uc.categoryRepo.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrInvalidReference
		}
		product.CategoryID = in.CategoryID
	}
	if in.PurchasePrice != nil {
		if in.PurchasePrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidPrice
		}
		product.PurchasePrice = *in.PurchasePrice
	}
	if in.SellingPrice != nil {
		if in.SellingPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidPrice
		}
		product.SellingPrice = *in.SellingPrice
	}
	if in.MinQuantity != nil {
		if *in.MinQuantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		product.MinQuantity = *in.MinQuantity
	}
	if in.Barcode != nil {
		product.Barcode = *in.Barcode
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete elimina un producto sin historial. Con líneas o movimientos
// históricos la eliminación falla con ErrConflict: la historia se preserva.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
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
