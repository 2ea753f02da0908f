package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-api/internal/application/stock"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// maxTxAttempts presupuesto de reintentos ante conflictos de serialización.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con repos
// atados a la tx. Conflictos transitorios (40001, 40P01) se reintentan hasta
// maxTxAttempts veces; agotado el presupuesto se devuelve domain.ErrTxConflict.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. fn debe ser re-ejecutable: en un reintento nada de la
// ejecución anterior ha aterrizado.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	purchaseRepo repository.PurchaseRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return runWithRetry(maxTxAttempts, func() error {
		return r.runOnce(ctx, fn)
	})
}

// runWithRetry ejecuta runOnce hasta attempts veces mientras el error sea un
// conflicto de serialización; agotado el presupuesto devuelve ErrTxConflict
// envolviendo el último conflicto. Cualquier otro error corta de inmediato.
func runWithRetry(attempts int, runOnce func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := runOnce()
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", domain.ErrTxConflict, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	purchaseRepo repository.PurchaseRepository,
	saleRepo repository.SaleRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewProductRepository(tx),
		NewStockMovementRepository(tx),
		NewPurchaseRepository(tx),
		NewSaleRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
