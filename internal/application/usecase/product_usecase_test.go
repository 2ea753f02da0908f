package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/stock"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos para el caso de uso de productos
// ──────────────────────────────────────────────────────────────────────────────

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	// simula la FK de historial: Delete falla para estos ids
	withHistory map[string]bool
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{
		products:    make(map[string]*entity.Product),
		withHistory: make(map[string]bool),
	}
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicateSKU
		}
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProductRepo) Find(_ context.Context, _ repository.ProductFilter) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) SetQuantity(_ context.Context, id string, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id].Quantity = quantity
	return nil
}

func (r *memProductRepo) SetPurchasePrice(_ context.Context, id string, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id].PurchasePrice = price
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.withHistory[id] {
		return domain.ErrConflict
	}
	delete(r.products, id)
	return nil
}

type memCategoryRepo struct {
	categories map[string]*entity.Category
}

func (r *memCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *memCategoryRepo) List(context.Context) ([]*entity.Category, error) { return nil, nil }
func (r *memCategoryRepo) Update(context.Context, *entity.Category) error   { return nil }
func (r *memCategoryRepo) Delete(context.Context, string) error             { return nil }

type memMovementRepo struct {
	mu        sync.Mutex
	seq       int64
	movements []*entity.StockMovement
}

func (r *memMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.Seq = r.seq
	cp := *m
	r.movements = append(r.movements, &cp)
	return nil
}

func (r *memMovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) ListRecent(context.Context, int) ([]*entity.StockMovement, error) {
	return nil, nil
}

type noopPurchaseRepo struct{}

func (noopPurchaseRepo) Create(context.Context, *entity.Purchase) error { return nil }
func (noopPurchaseRepo) GetByID(context.Context, string) (*entity.Purchase, error) {
	return nil, nil
}
func (noopPurchaseRepo) List(context.Context, *time.Time, *time.Time, int, int) ([]*entity.Purchase, error) {
	return nil, nil
}

type noopSaleRepo struct{}

func (noopSaleRepo) Create(context.Context, *entity.Sale) error            { return nil }
func (noopSaleRepo) GetByID(context.Context, string) (*entity.Sale, error) { return nil, nil }
func (noopSaleRepo) List(context.Context, *time.Time, *time.Time, int, int) ([]*entity.Sale, error) {
	return nil, nil
}

type noopPartyRepo[T any] struct{}

func (noopPartyRepo[T]) Create(context.Context, *T) error          { return nil }
func (noopPartyRepo[T]) GetByID(context.Context, string) (*T, error) { return nil, nil }
func (noopPartyRepo[T]) List(context.Context) ([]*T, error)        { return nil, nil }
func (noopPartyRepo[T]) Update(context.Context, *T) error          { return nil }
func (noopPartyRepo[T]) Delete(context.Context, string) error      { return nil }

type memTxRunner struct {
	mu        sync.Mutex
	products  *memProductRepo
	movements *memMovementRepo
}

func (t *memTxRunner) Run(_ context.Context, fn func(
	repository.ProductRepository,
	repository.StockMovementRepository,
	repository.PurchaseRepository,
	repository.SaleRepository,
) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.products, t.movements, noopPurchaseRepo{}, noopSaleRepo{})
}

func newProductUC() (*ProductUseCase, *memProductRepo, *memCategoryRepo, *memMovementRepo) {
	products := newMemProductRepo()
	categories := &memCategoryRepo{categories: make(map[string]*entity.Category)}
	movements := &memMovementRepo{}
	engine := stock.NewEngine(
		&memTxRunner{products: products, movements: movements},
		products,
		noopPartyRepo[entity.Supplier]{},
		noopPartyRepo[entity.Customer]{},
		movements,
	)
	return NewProductUseCase(products, categories, engine), products, categories, movements
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateProduct_SinStockInicial(t *testing.T) {
	uc, _, _, movements := newProductUC()

	out, err := uc.Create(context.Background(), dto.CreateProductRequest{
		Name:          "Café molido 500g",
		SKU:           "CAFE-500",
		PurchasePrice: dec("8.00"),
		SellingPrice:  dec("14.00"),
		MinQuantity:   3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, int64(0), out.Quantity)
	assert.Empty(t, movements.movements, "sin stock inicial no hay movimiento")
}

func TestCreateProduct_ConStockInicial_GeneraAjuste(t *testing.T) {
	uc, products, _, movements := newProductUC()
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateProductRequest{
		Name:            "Azúcar 1kg",
		SKU:             "AZU-1000",
		PurchasePrice:   dec("2.00"),
		SellingPrice:    dec("3.50"),
		InitialQuantity: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), out.Quantity)

	stored, _ := products.GetByID(ctx, out.ID)
	assert.Equal(t, int64(15), stored.Quantity)

	require.Len(t, movements.movements, 1)
	mov := movements.movements[0]
	assert.Equal(t, entity.MovementTypeADJUST, mov.Type)
	assert.Equal(t, int64(15), mov.QuantityDelta)
	assert.Equal(t, "stock inicial", mov.Reason)
}

func TestCreateProduct_SKUDuplicado(t *testing.T) {
	uc, _, _, _ := newProductUC()
	ctx := context.Background()

	base := dto.CreateProductRequest{
		Name: "Harina", SKU: "HAR-01",
		PurchasePrice: dec("1.00"), SellingPrice: dec("2.00"),
	}
	_, err := uc.Create(ctx, base)
	require.NoError(t, err)

	base.Name = "Harina integral"
	_, err = uc.Create(ctx, base)
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestCreateProduct_Invalidos(t *testing.T) {
	uc, _, _, _ := newProductUC()
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.CreateProductRequest
		want error
	}{
		{"sin nombre", dto.CreateProductRequest{SKU: "X"}, domain.ErrInvalidInput},
		{"sin sku", dto.CreateProductRequest{Name: "X"}, domain.ErrInvalidInput},
		{"precio negativo", dto.CreateProductRequest{
			Name: "X", SKU: "X", PurchasePrice: dec("-1"),
		}, domain.ErrInvalidPrice},
		{"stock inicial negativo", dto.CreateProductRequest{
			Name: "X", SKU: "X", InitialQuantity: -5,
		}, domain.ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateProduct_CategoriaInexistente(t *testing.T) {
	uc, _, _, _ := newProductUC()
	catID := "no-existe"

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Té verde", SKU: "TE-01", CategoryID: &catID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestUpdateProduct_NoTocaCantidad(t *testing.T) {
	uc, products, _, _ := newProductUC()
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateProductRequest{
		Name: "Arroz", SKU: "ARR-01",
		PurchasePrice: dec("1.00"), SellingPrice: dec("2.00"),
		InitialQuantity: 20,
	})
	require.NoError(t, err)

	newName := "Arroz premium"
	newPrice := dec("2.50")
	updated, err := uc.Update(ctx, out.ID, dto.UpdateProductRequest{
		Name:         &newName,
		SellingPrice: &newPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, "Arroz premium", updated.Name)
	assert.True(t, updated.SellingPrice.Equal(dec("2.50")))

	stored, _ := products.GetByID(ctx, out.ID)
	assert.Equal(t, int64(20), stored.Quantity, "editar campos no altera existencias")
}

func TestUpdateProduct_Inexistente(t *testing.T) {
	uc, _, _, _ := newProductUC()
	name := "X"
	_, err := uc.Update(context.Background(), "fantasma", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteProduct_ConHistorialFalla(t *testing.T) {
	uc, products, _, _ := newProductUC()
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateProductRequest{
		Name: "Aceite", SKU: "ACE-01",
		PurchasePrice: dec("3.00"), SellingPrice: dec("5.00"),
	})
	require.NoError(t, err)
	products.withHistory[out.ID] = true

	err = uc.Delete(ctx, out.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "con historial el borrado se rechaza")

	stored, _ := products.GetByID(ctx, out.ID)
	assert.NotNil(t, stored, "el producto sigue existiendo")
}

func TestDeleteProduct_SinHistorial(t *testing.T) {
	uc, products, _, _ := newProductUC()
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateProductRequest{
		Name: "Sal", SKU: "SAL-01",
		PurchasePrice: dec("0.50"), SellingPrice: dec("1.00"),
	})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, out.ID))
	stored, _ := products.GetByID(ctx, out.ID)
	assert.Nil(t, stored)
}
