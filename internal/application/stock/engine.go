package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// Engine es el único camino por el que cambia Product.Quantity. Cada operación
// corre dentro de una transacción con bloqueo de fila (SELECT FOR UPDATE) sobre
// los productos afectados, de modo que el verificar-y-decrementar de una venta
// no pueda sobregirar stock bajo concurrencia.
type Engine struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	customerRepo repository.CustomerRepository
	movementRepo repository.StockMovementRepository
}

// NewEngine construye el motor de stock.
func NewEngine(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	customerRepo repository.CustomerRepository,
	movementRepo repository.StockMovementRepository,
) *Engine {
	return &Engine{
		txRunner:     txRunner,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		customerRepo: customerRepo,
		movementRepo: movementRepo,
	}
}

// validateLines valida cantidades, precios y existencia de productos antes de
// tocar nada. El error señala el índice de la línea ofensora.
func (e *Engine) validateLines(ctx context.Context, lines []dto.DocumentLineRequest) error {
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	for i, line := range lines {
		if line.ProductID == "" {
			return &domain.LineError{Index: i, Err: domain.ErrInvalidReference}
		}
		if line.Quantity <= 0 {
			return &domain.LineError{Index: i, Err: domain.ErrInvalidQuantity}
		}
		if line.UnitPrice.LessThan(decimal.Zero) {
			return &domain.LineError{Index: i, Err: domain.ErrInvalidPrice}
		}
		product, err := e.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return &domain.LineError{Index: i, Err: domain.ErrInvalidReference}
		}
	}
	return nil
}

// lockProducts bloquea cada producto referenciado (una sola vez, en orden de
// aparición) y devuelve las filas bloqueadas indexadas por id.
func lockProducts(ctx context.Context, productRepo repository.ProductRepository, lines []dto.DocumentLineRequest) (map[string]*entity.Product, error) {
	locked := make(map[string]*entity.Product)
	for i, line := range lines {
		if _, ok := locked[line.ProductID]; ok {
			continue
		}
		product, err := productRepo.GetForUpdate(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			// Borrado entre la validación y el lock: misma falla que la validación.
			return nil, &domain.LineError{Index: i, Err: domain.ErrInvalidReference}
		}
		locked[line.ProductID] = product
	}
	return locked, nil
}

// RecordPurchase registra una compra: cabecera, líneas, un movimiento IN por
// línea y el incremento de existencias, todo como una unidad atómica.
// La última línea de cada producto actualiza además su purchase_price.
func (e *Engine) RecordPurchase(ctx context.Context, in dto.RecordPurchaseRequest) (*dto.PurchaseResponse, error) {
	if err := e.validateLines(ctx, in.Lines); err != nil {
		return nil, err
	}
	if in.SupplierID != nil {
		supplier, err := e.supplierRepo.GetByID(ctx, *in.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, domain.ErrInvalidReference
		}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	purchase := &entity.Purchase{
		ID:          uuid.New().String(),
		SupplierID:  in.SupplierID,
		Date:        date,
		TotalAmount: decimal.Zero,
	}
	for i, line := range in.Lines {
		pl := entity.PurchaseLine{
			ID:         uuid.New().String(),
			PurchaseID: purchase.ID,
			LineNo:     i,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		}
		purchase.TotalAmount = purchase.TotalAmount.Add(pl.LineTotal())
		purchase.Lines = append(purchase.Lines, pl)
	}

	err := e.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.SaleRepository,
	) error {
		locked, err := lockProducts(ctx, productRepo, in.Lines)
		if err != nil {
			return err
		}
		if err := purchaseRepo.Create(ctx, purchase); err != nil {
			return err
		}
		// Líneas repetidas del mismo producto se aplican acumulativamente, en
		// el orden dado, cada una con su propio movimiento de auditoría.
		// El movimiento lleva la hora de commit, no la fecha de negocio del
		// documento: un documento retrofechado no puede reordenar el historial,
		// cuyos resulting_quantity solo replican en orden de commit.
		committedAt := time.Now()
		for _, line := range purchase.Lines {
			product := locked[line.ProductID]
			product.Quantity += line.Quantity
			product.PurchasePrice = line.UnitPrice
			ref := purchase.ID
			mov := &entity.StockMovement{
				ID:                uuid.New().String(),
				ProductID:         line.ProductID,
				Type:              entity.MovementTypeIN,
				QuantityDelta:     line.Quantity,
				ReferenceID:       &ref,
				ResultingQuantity: product.Quantity,
				CreatedAt:         committedAt,
			}
			if err := movementRepo.Create(ctx, mov); err != nil {
				return err
			}
		}
		for id, product := range locked {
			if err := productRepo.SetQuantity(ctx, id, product.Quantity); err != nil {
				return err
			}
			if err := productRepo.SetPurchasePrice(ctx, id, product.PurchasePrice); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase), nil
}

// RecordSale registra una venta. Dentro de la misma transacción re-verifica,
// con la fila bloqueada, que las existencias alcancen para cada línea
// (acumulativo si un producto se repite); cualquier faltante aborta la venta
// completa sin escribir nada.
func (e *Engine) RecordSale(ctx context.Context, in dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	if err := e.validateLines(ctx, in.Lines); err != nil {
		return nil, err
	}
	if in.CustomerID != nil {
		customer, err := e.customerRepo.GetByID(ctx, *in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, domain.ErrInvalidReference
		}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		CustomerID:    in.CustomerID,
		Date:          date,
		TotalAmount:   decimal.Zero,
		PaymentMethod: in.PaymentMethod,
	}

	err := e.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.PurchaseRepository,
		saleRepo repository.SaleRepository,
	) error {
		locked, err := lockProducts(ctx, productRepo, in.Lines)
		if err != nil {
			return err
		}
		// Verificación y decremento sobre la fila bloqueada: dos ventas
		// concurrentes del mismo producto se serializan aquí y la segunda ve
		// la cantidad ya descontada. Líneas repetidas se aplican en orden,
		// acumulativamente, cada una con su propio movimiento.
		sale.Lines = sale.Lines[:0]
		sale.TotalAmount = decimal.Zero
		// Hora de commit en el movimiento; la fecha de negocio queda solo en
		// la cabecera.
		committedAt := time.Now()
		var movements []*entity.StockMovement
		for i, line := range in.Lines {
			product := locked[line.ProductID]
			if product.Quantity < line.Quantity {
				return &domain.InsufficientStockError{
					ProductID: line.ProductID,
					Requested: line.Quantity,
					Available: product.Quantity,
				}
			}
			product.Quantity -= line.Quantity
			sl := entity.SaleLine{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				LineNo:    i,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				UnitCost:  product.PurchasePrice,
			}
			sale.TotalAmount = sale.TotalAmount.Add(sl.LineTotal())
			sale.Lines = append(sale.Lines, sl)
			ref := sale.ID
			movements = append(movements, &entity.StockMovement{
				ID:                uuid.New().String(),
				ProductID:         line.ProductID,
				Type:              entity.MovementTypeOUT,
				QuantityDelta:     -line.Quantity,
				ReferenceID:       &ref,
				ResultingQuantity: product.Quantity,
				CreatedAt:         committedAt,
			})
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		for _, mov := range movements {
			if err := movementRepo.Create(ctx, mov); err != nil {
				return err
			}
		}
		for id, product := range locked {
			if err := productRepo.SetQuantity(ctx, id, product.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// AdjustStock aplica una corrección manual (merma, reconteo, anulación de un
// documento). Rechaza ajustes que dejarían las existencias en negativo.
func (e *Engine) AdjustStock(ctx context.Context, in dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Delta == 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var mov *entity.StockMovement
	err := e.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.PurchaseRepository,
		_ repository.SaleRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		newQuantity := product.Quantity + in.Delta
		if newQuantity < 0 {
			return &domain.InsufficientStockError{
				ProductID: in.ProductID,
				Requested: -in.Delta,
				Available: product.Quantity,
			}
		}
		mov = &entity.StockMovement{
			ID:                uuid.New().String(),
			ProductID:         in.ProductID,
			Type:              entity.MovementTypeADJUST,
			QuantityDelta:     in.Delta,
			Reason:            in.Reason,
			ResultingQuantity: newQuantity,
			CreatedAt:         time.Now(),
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}
		return productRepo.SetQuantity(ctx, in.ProductID, newQuantity)
	})
	if err != nil {
		return nil, err
	}
	return toMovementResponse(mov), nil
}

// MovementHistory devuelve el historial de un producto en orden de commit,
// suficiente para reconstruir Quantity por suma de deltas.
func (e *Engine) MovementHistory(ctx context.Context, productID string) ([]dto.MovementResponse, error) {
	product, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := e.movementRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, *toMovementResponse(m))
	}
	return out, nil
}

// RecentMovements devuelve los últimos movimientos de todos los productos.
func (e *Engine) RecentMovements(ctx context.Context, limit int) ([]dto.MovementResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	movements, err := e.movementRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, *toMovementResponse(m))
	}
	return out, nil
}

func toPurchaseResponse(p *entity.Purchase) *dto.PurchaseResponse {
	resp := &dto.PurchaseResponse{
		ID:          p.ID,
		SupplierID:  p.SupplierID,
		Date:        p.Date,
		TotalAmount: p.TotalAmount,
	}
	for _, l := range p.Lines {
		resp.Lines = append(resp.Lines, dto.DocumentLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal(),
		})
	}
	return resp
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		Date:          s.Date,
		TotalAmount:   s.TotalAmount,
		PaymentMethod: s.PaymentMethod,
	}
	for _, l := range s.Lines {
		resp.Lines = append(resp.Lines, dto.DocumentLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal(),
		})
	}
	return resp
}

func toMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:                m.ID,
		Seq:               m.Seq,
		ProductID:         m.ProductID,
		Type:              m.Type,
		QuantityDelta:     m.QuantityDelta,
		ReferenceID:       m.ReferenceID,
		Reason:            m.Reason,
		ResultingQuantity: m.ResultingQuantity,
		CreatedAt:         m.CreatedAt,
	}
}
