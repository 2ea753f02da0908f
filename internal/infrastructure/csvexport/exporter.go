// Package csvexport serializa catálogo y ventas a CSV para exportes e
// importación masiva de productos.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// WriteProducts escribe el catálogo como CSV con cabecera.
func WriteProducts(w io.Writer, products []*entity.Product) error {
	cw := csv.NewWriter(w)
	header := []string{"sku", "nombre", "categoria_id", "precio_compra", "precio_venta", "cantidad", "cantidad_minima", "codigo_barras"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv: escribir cabecera: %w", err)
	}
	for _, p := range products {
		categoryID := ""
		if p.CategoryID != nil {
			categoryID = *p.CategoryID
		}
		record := []string{
			p.SKU,
			p.Name,
			categoryID,
			p.PurchasePrice.StringFixed(2),
			p.SellingPrice.StringFixed(2),
			strconv.FormatInt(p.Quantity, 10),
			strconv.FormatInt(p.MinQuantity, 10),
			p.Barcode,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv: escribir producto %s: %w", p.SKU, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSales escribe ventas con sus líneas aplanadas, una fila por línea.
func WriteSales(w io.Writer, sales []*entity.Sale) error {
	cw := csv.NewWriter(w)
	header := []string{"venta_id", "fecha", "cliente_id", "metodo_pago", "linea", "producto_id", "cantidad", "precio_unitario", "costo_unitario", "total_linea"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv: escribir cabecera: %w", err)
	}
	for _, s := range sales {
		customerID := ""
		if s.CustomerID != nil {
			customerID = *s.CustomerID
		}
		for _, l := range s.Lines {
			record := []string{
				s.ID,
				s.Date.Format("2006-01-02 15:04:05"),
				customerID,
				s.PaymentMethod,
				strconv.Itoa(l.LineNo),
				l.ProductID,
				strconv.FormatInt(l.Quantity, 10),
				l.UnitPrice.StringFixed(2),
				l.UnitCost.StringFixed(2),
				l.LineTotal().StringFixed(2),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("csv: escribir venta %s: %w", s.ID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
