package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/report"
	"github.com/jhoicas/stock-api/internal/application/stock"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/internal/infrastructure/pdf"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	CategoryUC  *usecase.CategoryUseCase
	SupplierUC  *usecase.SupplierUseCase
	CustomerUC  *usecase.CustomerUseCase
	StockEngine *stock.Engine
	StockQuery  *stock.Queries
	ReportUC    *report.UseCase
	AuthUC      *auth.UseCase
	ProductRepo repository.ProductRepository
	SaleRepo    repository.SaleRepository
	ReportRepo  repository.ReportRepository
	PDFGen      *pdf.InventoryReportGenerator
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	stockHandler := NewStockHandler(deps.StockEngine, deps.StockQuery)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.Find)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/movements", stockHandler.MovementHistory)

	// Categories (protegido)
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	// Suppliers (protegido)
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	// Customers (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	// Purchases y Sales (protegido)
	purchases := protected.Group("/purchases")
	purchases.Post("/", stockHandler.RecordPurchase)
	purchases.Get("/", stockHandler.ListPurchases)
	purchases.Get("/:id", stockHandler.GetPurchase)

	sales := protected.Group("/sales")
	sales.Post("/", stockHandler.RecordSale)
	sales.Get("/", stockHandler.ListSales)
	sales.Get("/:id", stockHandler.GetSale)

	// Ajustes e historial global (protegido)
	stockGroup := protected.Group("/stock")
	stockGroup.Post("/adjust", stockHandler.AdjustStock)
	stockGroup.Get("/movements", stockHandler.RecentMovements)

	// Reports (protegido)
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/inventory", reportHandler.Inventory)
	reports.Get("/sales", reportHandler.Sales)
	reports.Get("/profit", reportHandler.Profit)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/best-sellers", reportHandler.BestSellers)
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/purchase-totals", reportHandler.PurchaseTotals)

	// Exports (protegido)
	exports := protected.Group("/exports")
	exportHandler := NewExportHandler(deps.ProductRepo, deps.SaleRepo, deps.ReportRepo, deps.PDFGen)
	exports.Get("/products.csv", exportHandler.ProductsCSV)
	exports.Get("/sales.csv", exportHandler.SalesCSV)
	exports.Get("/inventory.pdf", exportHandler.InventoryPDF)
}
