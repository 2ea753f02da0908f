package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/stock"
)

// StockHandler maneja compras, ventas, ajustes e historial (protegido).
type StockHandler struct {
	engine  *stock.Engine
	queries *stock.Queries
}

// NewStockHandler construye el handler.
func NewStockHandler(engine *stock.Engine, queries *stock.Queries) *StockHandler {
	return &StockHandler{engine: engine, queries: queries}
}

// parseDateRange lee from/to (RFC 3339 o fecha simple) de la query.
// Devuelve nil para los extremos ausentes.
func parseDateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return &t, nil
			}
		}
		return nil, fiber.ErrBadRequest
	}
	if from, err = parse(c.Query("from")); err != nil {
		return nil, nil, err
	}
	if to, err = parse(c.Query("to")); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// RecordPurchase godoc
// @Summary      Registrar compra (entrada de stock)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordPurchaseRequest  true  "Compra con líneas"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *StockHandler) RecordPurchase(c *fiber.Ctx) error {
	var in dto.RecordPurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.engine.RecordPurchase(c.Context(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetPurchase godoc
// @Summary      Obtener compra por ID
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *StockHandler) GetPurchase(c *fiber.Ctx) error {
	out, err := h.queries.GetPurchase(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ListPurchases godoc
// @Summary      Listar compras
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Inicio del rango (inclusive)"
// @Param        to      query  string  false  "Fin del rango (exclusivo)"
// @Param        limit   query  int     false  "Límite"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {array}  dto.PurchaseResponse
// @Router       /api/purchases [get]
func (h *StockHandler) ListPurchases(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "fecha inválida; use RFC 3339 o YYYY-MM-DD"})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	out, err := h.queries.ListPurchases(c.Context(), from, to, page)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// RecordSale godoc
// @Summary      Registrar venta (salida de stock)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordSaleRequest  true  "Venta con líneas"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *StockHandler) RecordSale(c *fiber.Ctx) error {
	var in dto.RecordSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.engine.RecordSale(c.Context(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetSale godoc
// @Summary      Obtener venta por ID
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *StockHandler) GetSale(c *fiber.Ctx) error {
	out, err := h.queries.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ListSales godoc
// @Summary      Listar ventas
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Inicio del rango (inclusive)"
// @Param        to      query  string  false  "Fin del rango (exclusivo)"
// @Param        limit   query  int     false  "Límite"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {array}  dto.SaleResponse
// @Router       /api/sales [get]
func (h *StockHandler) ListSales(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "fecha inválida; use RFC 3339 o YYYY-MM-DD"})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	out, err := h.queries.ListSales(c.Context(), from, to, page)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// AdjustStock godoc
// @Summary      Ajuste manual de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Producto, delta y motivo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjust [post]
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.engine.AdjustStock(c.Context(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MovementHistory godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {array}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *StockHandler) MovementHistory(c *fiber.Ctx) error {
	out, err := h.engine.MovementHistory(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// RecentMovements godoc
// @Summary      Últimos movimientos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(200)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) RecentMovements(c *fiber.Ctx) error {
	out, err := h.engine.RecentMovements(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}
