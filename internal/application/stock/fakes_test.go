package stock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// Reproducen la semántica que el motor necesita de la base: GetForUpdate
// devuelve una copia (las mutaciones solo aterrizan vía SetQuantity), y el
// fakeTxRunner serializa las "transacciones" con un mutex, igual que lo hace
// el bloqueo de fila en PostgreSQL.
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entity.Product)}
}

func (r *fakeProductRepo) put(p *entity.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.put(p)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
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

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) Find(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		if filter.BelowMinimum && !p.BelowMinimum() {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.put(p)
	return nil
}

func (r *fakeProductRepo) SetQuantity(_ context.Context, id string, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id].Quantity = quantity
	return nil
}

func (r *fakeProductRepo) SetPurchasePrice(_ context.Context, id string, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id].PurchasePrice = price
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	seq       int64
	movements []*entity.StockMovement
}

func newFakeMovementRepo() *fakeMovementRepo { return &fakeMovementRepo{} }

func (r *fakeMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.Seq = r.seq
	cp := *m
	r.movements = append(r.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *fakeMovementRepo) ListRecent(_ context.Context, limit int) ([]*entity.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.StockMovement, 0, len(r.movements))
	for _, m := range r.movements {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePurchaseRepo struct {
	mu        sync.Mutex
	purchases map[string]*entity.Purchase
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[string]*entity.Purchase)}
}

func (r *fakePurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.Lines = append([]entity.PurchaseLine(nil), p.Lines...)
	r.purchases[p.ID] = &cp
	return nil
}

func (r *fakePurchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePurchaseRepo) List(_ context.Context, _, _ *time.Time, _, _ int) ([]*entity.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Purchase
	for _, p := range r.purchases {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type fakeSaleRepo struct {
	mu    sync.Mutex
	sales map[string]*entity.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[string]*entity.Sale)}
}

func (r *fakeSaleRepo) Create(_ context.Context, s *entity.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.Lines = append([]entity.SaleLine(nil), s.Lines...)
	r.sales[s.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) List(_ context.Context, _, _ *time.Time, _, _ int) ([]*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Sale
	for _, s := range r.sales {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

type fakePartyRepo[T any] struct {
	mu    sync.Mutex
	items map[string]*T
}

func newFakePartyRepo[T any]() *fakePartyRepo[T] {
	return &fakePartyRepo[T]{items: make(map[string]*T)}
}

func (r *fakePartyRepo[T]) put(id string, item *T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id] = item
}

func (r *fakePartyRepo[T]) Create(_ context.Context, _ *T) error { return nil }

func (r *fakePartyRepo[T]) GetByID(_ context.Context, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return item, nil
}

func (r *fakePartyRepo[T]) List(_ context.Context) ([]*T, error) { return nil, nil }
func (r *fakePartyRepo[T]) Update(_ context.Context, _ *T) error { return nil }
func (r *fakePartyRepo[T]) Delete(_ context.Context, _ string) error {
	return nil
}

// fakeTxRunner serializa las transacciones con un mutex: dos llamadas
// concurrentes al motor nunca ven estado intermedio la una de la otra, igual
// que con SELECT FOR UPDATE sobre la misma fila.
type fakeTxRunner struct {
	mu           sync.Mutex
	productRepo  *fakeProductRepo
	movementRepo *fakeMovementRepo
	purchaseRepo *fakePurchaseRepo
	saleRepo     *fakeSaleRepo
}

func (t *fakeTxRunner) Run(_ context.Context, fn func(
	repository.ProductRepository,
	repository.StockMovementRepository,
	repository.PurchaseRepository,
	repository.SaleRepository,
) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.productRepo, t.movementRepo, t.purchaseRepo, t.saleRepo)
}

// testRig agrupa motor y fakes para inspección directa en los tests.
type testRig struct {
	engine       *Engine
	products     *fakeProductRepo
	movements    *fakeMovementRepo
	purchases    *fakePurchaseRepo
	sales        *fakeSaleRepo
	supplierRepo *fakePartyRepo[entity.Supplier]
	customerRepo *fakePartyRepo[entity.Customer]
}

func newTestRig() *testRig {
	products := newFakeProductRepo()
	movements := newFakeMovementRepo()
	purchases := newFakePurchaseRepo()
	sales := newFakeSaleRepo()
	suppliers := newFakePartyRepo[entity.Supplier]()
	customers := newFakePartyRepo[entity.Customer]()
	runner := &fakeTxRunner{
		productRepo:  products,
		movementRepo: movements,
		purchaseRepo: purchases,
		saleRepo:     sales,
	}
	return &testRig{
		engine:       NewEngine(runner, products, suppliers, customers, movements),
		products:     products,
		movements:    movements,
		purchases:    purchases,
		sales:        sales,
		supplierRepo: suppliers,
		customerRepo: customers,
	}
}

// seedProduct crea un producto directo en el repo, sin pasar por el motor.
func (rig *testRig) seedProduct(id string, quantity, minQuantity int64, purchasePrice string) *entity.Product {
	p := &entity.Product{
		ID:            id,
		Name:          "producto " + id,
		SKU:           "SKU-" + id,
		PurchasePrice: decimal.RequireFromString(purchasePrice),
		SellingPrice:  decimal.RequireFromString(purchasePrice).Mul(decimal.NewFromInt(2)),
		Quantity:      quantity,
		MinQuantity:   minQuantity,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	rig.products.put(p)
	return p
}
