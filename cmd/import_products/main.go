// import_products carga productos en lote desde un archivo CSV.
//
// Uso: go run ./cmd/import_products -file productos.csv [-latin1]
//
// El CSV debe tener cabecera con al menos sku y nombre; columnas opcionales:
// categoria_id, precio_compra, precio_venta, cantidad, cantidad_minima,
// codigo_barras. Con -latin1 decodifica ISO-8859-1 (exportes de Excel viejos).
// Cada fila con cantidad > 0 genera un movimiento de stock inicial.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/stock"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/infrastructure/csvexport"
	"github.com/jhoicas/stock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/logger"
)

func main() {
	filePath := flag.String("file", "productos.csv", "ruta del CSV de productos")
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1 en vez de UTF-8")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("abrir CSV")
	}
	defer f.Close()

	rows, err := csvexport.ReadProducts(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("parsear CSV")
	}
	if len(rows) == 0 {
		log.Warn().Msg("el CSV no contiene productos")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	engine := stock.NewEngine(txRunner, productRepo, supplierRepo, customerRepo, movementRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, engine)

	var created, skipped int
	for _, row := range rows {
		var categoryID *string
		if row.CategoryID != "" {
			categoryID = &row.CategoryID
		}
		_, err := productUC.Create(ctx, dto.CreateProductRequest{
			Name:            row.Name,
			SKU:             row.SKU,
			CategoryID:      categoryID,
			PurchasePrice:   row.PurchasePrice,
			SellingPrice:    row.SellingPrice,
			InitialQuantity: row.Quantity,
			MinQuantity:     row.MinQuantity,
			Barcode:         row.Barcode,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicateSKU):
			log.Warn().Str("sku", row.SKU).Msg("SKU ya existe, fila omitida")
			skipped++
		default:
			log.Fatal().Err(err).Str("sku", row.SKU).Msg("crear producto")
		}
	}
	log.Info().Int("creados", created).Int("omitidos", skipped).Msg("importación terminada")
}
