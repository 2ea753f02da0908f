package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ProductRow es una fila de producto parseada de un CSV de importación.
type ProductRow struct {
	SKU           string
	Name          string
	CategoryID    string
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	Quantity      int64
	MinQuantity   int64
	Barcode       string
}

// ReadProducts parsea un CSV de productos con el mismo layout que produce
// WriteProducts. Con latin1 en true decodifica ISO-8859-1 (exportes de Excel
// viejos); si no, asume UTF-8. La cabecera es obligatoria.
func ReadProducts(r io.Reader, latin1 bool) ([]ProductRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: leer cabecera: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"sku", "nombre"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("csv: falta la columna %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var products []ProductRow
	for lineNo := 2; ; lineNo++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: línea %d: %w", lineNo, err)
		}
		row := ProductRow{
			SKU:        field(record, "sku"),
			Name:       field(record, "nombre"),
			CategoryID: field(record, "categoria_id"),
			Barcode:    field(record, "codigo_barras"),
		}
		if row.SKU == "" || row.Name == "" {
			return nil, fmt.Errorf("csv: línea %d: sku y nombre son obligatorios", lineNo)
		}
		if row.PurchasePrice, err = parseDecimal(field(record, "precio_compra")); err != nil {
			return nil, fmt.Errorf("csv: línea %d: precio_compra: %w", lineNo, err)
		}
		if row.SellingPrice, err = parseDecimal(field(record, "precio_venta")); err != nil {
			return nil, fmt.Errorf("csv: línea %d: precio_venta: %w", lineNo, err)
		}
		if row.Quantity, err = parseInt(field(record, "cantidad")); err != nil {
			return nil, fmt.Errorf("csv: línea %d: cantidad: %w", lineNo, err)
		}
		if row.MinQuantity, err = parseInt(field(record, "cantidad_minima")); err != nil {
			return nil, fmt.Errorf("csv: línea %d: cantidad_minima: %w", lineNo, err)
		}
		products = append(products, row)
	}
	return products, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	// coma decimal de exportes en español
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
