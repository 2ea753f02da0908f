package http

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/internal/infrastructure/csvexport"
	"github.com/jhoicas/stock-api/internal/infrastructure/pdf"
)

// ExportHandler produce descargas CSV y PDF (protegido).
type ExportHandler struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	reportRepo  repository.ReportRepository
	pdfGen      *pdf.InventoryReportGenerator
}

// NewExportHandler construye el handler.
func NewExportHandler(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	reportRepo repository.ReportRepository,
	pdfGen *pdf.InventoryReportGenerator,
) *ExportHandler {
	return &ExportHandler{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		reportRepo:  reportRepo,
		pdfGen:      pdfGen,
	}
}

// ProductsCSV godoc
// @Summary      Exportar catálogo de productos a CSV
// @Tags         exports
// @Security     Bearer
// @Produce      text/csv
// @Success      200  {string}  string
// @Router       /api/exports/products.csv [get]
func (h *ExportHandler) ProductsCSV(c *fiber.Ctx) error {
	products, err := h.productRepo.Find(c.Context(), repository.ProductFilter{})
	if err != nil {
		return domainError(c, err)
	}
	var buf bytes.Buffer
	if err := csvexport.WriteProducts(&buf, products); err != nil {
		return domainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="productos.csv"`)
	return c.Send(buf.Bytes())
}

// SalesCSV godoc
// @Summary      Exportar ventas del rango a CSV
// @Tags         exports
// @Security     Bearer
// @Produce      text/csv
// @Param        from  query  string  false  "Inicio del rango (inclusive)"
// @Param        to    query  string  false  "Fin del rango (exclusivo)"
// @Success      200  {string}  string
// @Router       /api/exports/sales.csv [get]
func (h *ExportHandler) SalesCSV(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "fecha inválida; use RFC 3339 o YYYY-MM-DD"})
	}
	sales, err := h.saleRepo.List(c.Context(), from, to, 10000, 0)
	if err != nil {
		return domainError(c, err)
	}
	var buf bytes.Buffer
	if err := csvexport.WriteSales(&buf, sales); err != nil {
		return domainError(c, err)
	}
	filename := "ventas_" + time.Now().Format("20060102") + ".csv"
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// InventoryPDF godoc
// @Summary      Reporte de inventario valorizado en PDF
// @Tags         exports
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {string}  string
// @Router       /api/exports/inventory.pdf [get]
func (h *ExportHandler) InventoryPDF(c *fiber.Ctx) error {
	lines, err := h.reportRepo.CurrentInventory(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	doc, err := h.pdfGen.Generate(c.Context(), lines)
	if err != nil {
		return domainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="inventario.pdf"`)
	return c.Send(doc)
}
