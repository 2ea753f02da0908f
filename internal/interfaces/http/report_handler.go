package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/report"
)

// ReportHandler expone los reportes de solo lectura (protegido).
type ReportHandler struct {
	uc *report.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// requiredRange lee from/to obligatorios de la query.
func requiredRange(c *fiber.Ctx) (time.Time, time.Time, bool) {
	from, to, err := parseDateRange(c)
	if err != nil || from == nil || to == nil {
		return time.Time{}, time.Time{}, false
	}
	return *from, *to, true
}

// Inventory godoc
// @Summary      Inventario valorizado
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InventoryLineDTO
// @Router       /api/reports/inventory [get]
func (h *ReportHandler) Inventory(c *fiber.Ctx) error {
	out, err := h.uc.CurrentInventory(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Sales godoc
// @Summary      Ventas por período (día o mes)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from         query  string  true   "Inicio del rango (inclusive)"
// @Param        to           query  string  true   "Fin del rango (exclusivo)"
// @Param        granularity  query  string  false  "day o month"  default(day)
// @Success      200  {array}  dto.SalesBucketDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	from, to, ok := requiredRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from y to son requeridos (RFC 3339 o YYYY-MM-DD)"})
	}
	granularity := c.Query("granularity", "day")
	out, err := h.uc.SalesReport(c.Context(), from, to, granularity)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Profit godoc
// @Summary      Utilidad del período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "Inicio del rango (inclusive)"
// @Param        to    query  string  true  "Fin del rango (exclusivo)"
// @Success      200  {object}  dto.ProfitReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/profit [get]
func (h *ReportHandler) Profit(c *fiber.Ctx) error {
	from, to, ok := requiredRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from y to son requeridos (RFC 3339 o YYYY-MM-DD)"})
	}
	out, err := h.uc.ProfitReport(c.Context(), from, to)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos bajo el mínimo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockLineDTO
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStockReport(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// BestSellers godoc
// @Summary      Más vendidos del período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from   query  string  true   "Inicio del rango (inclusive)"
// @Param        to     query  string  true   "Fin del rango (exclusivo)"
// @Param        limit  query  int     false  "Tamaño del ranking"  default(10)
// @Success      200  {array}  dto.BestSellerDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/best-sellers [get]
func (h *ReportHandler) BestSellers(c *fiber.Ctx) error {
	from, to, ok := requiredRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from y to son requeridos (RFC 3339 o YYYY-MM-DD)"})
	}
	out, err := h.uc.BestSellers(c.Context(), from, to, c.QueryInt("limit", 0))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Contadores y totales del negocio
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardDTO
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// PurchaseTotals godoc
// @Summary      Totales diarios de compras
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "Inicio del rango (inclusive)"
// @Param        to    query  string  true  "Fin del rango (exclusivo)"
// @Success      200  {array}  dto.SalesBucketDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/purchase-totals [get]
func (h *ReportHandler) PurchaseTotals(c *fiber.Ctx) error {
	from, to, ok := requiredRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from y to son requeridos (RFC 3339 o YYYY-MM-DD)"})
	}
	out, err := h.uc.PurchaseTotals(c.Context(), from, to)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}
