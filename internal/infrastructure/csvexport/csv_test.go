package csvexport

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWriteProducts_ReadProducts_IdaYVuelta(t *testing.T) {
	catID := "cat-1"
	products := []*entity.Product{
		{
			SKU: "CAFE-500", Name: "Café molido 500g", CategoryID: &catID,
			PurchasePrice: dec("8.00"), SellingPrice: dec("14.50"),
			Quantity: 12, MinQuantity: 3, Barcode: "7701234567890",
		},
		{
			SKU: "AZU-1000", Name: "Azúcar 1kg",
			PurchasePrice: dec("2.10"), SellingPrice: dec("3.50"),
			Quantity: 40, MinQuantity: 10,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProducts(&buf, products))

	rows, err := ReadProducts(&buf, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "CAFE-500", rows[0].SKU)
	assert.Equal(t, "Café molido 500g", rows[0].Name)
	assert.Equal(t, "cat-1", rows[0].CategoryID)
	assert.True(t, rows[0].PurchasePrice.Equal(dec("8.00")))
	assert.True(t, rows[0].SellingPrice.Equal(dec("14.50")))
	assert.Equal(t, int64(12), rows[0].Quantity)
	assert.Equal(t, int64(3), rows[0].MinQuantity)
	assert.Equal(t, "7701234567890", rows[0].Barcode)

	assert.Equal(t, "AZU-1000", rows[1].SKU)
	assert.Empty(t, rows[1].CategoryID)
	assert.Empty(t, rows[1].Barcode)
}

func TestReadProducts_Latin1(t *testing.T) {
	// Simula un CSV exportado en ISO-8859-1 (tildes y eñes).
	utf8CSV := "sku,nombre\nPAN-01,Pan de añejo\n"
	encoded, _, err := transform.String(charmap.ISO8859_1.NewEncoder(), utf8CSV)
	require.NoError(t, err)

	rows, err := ReadProducts(strings.NewReader(encoded), true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pan de añejo", rows[0].Name)
}

func TestReadProducts_ComaDecimal(t *testing.T) {
	in := "sku,nombre,precio_compra,precio_venta\nLEC-01,Leche entera,\"1,25\",\"2,10\"\n"
	rows, err := ReadProducts(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].PurchasePrice.Equal(dec("1.25")))
	assert.True(t, rows[0].SellingPrice.Equal(dec("2.10")))
}

func TestReadProducts_ColumnasOpcionalesAusentes(t *testing.T) {
	in := "sku,nombre\nX-01,Producto mínimo\n"
	rows, err := ReadProducts(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].PurchasePrice.IsZero())
	assert.Zero(t, rows[0].Quantity)
}

func TestReadProducts_FaltaColumnaObligatoria(t *testing.T) {
	in := "nombre,precio_compra\nProducto sin sku,1.00\n"
	_, err := ReadProducts(strings.NewReader(in), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sku")
}

func TestReadProducts_FilaSinSKU(t *testing.T) {
	in := "sku,nombre\n,Sin identificador\n"
	_, err := ReadProducts(strings.NewReader(in), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "línea 2")
}

func TestReadProducts_NumeroInvalidoConLinea(t *testing.T) {
	in := "sku,nombre,cantidad\nA-01,Bueno,5\nB-02,Malo,muchos\n"
	_, err := ReadProducts(strings.NewReader(in), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "línea 3")
}

func TestWriteSales_AplanaLineas(t *testing.T) {
	custID := "cli-1"
	sales := []*entity.Sale{
		{
			ID:            "venta-1",
			CustomerID:    &custID,
			Date:          time.Date(2025, 3, 10, 16, 30, 0, 0, time.UTC),
			PaymentMethod: "efectivo",
			Lines: []entity.SaleLine{
				{LineNo: 1, ProductID: "prod-1", Quantity: 2, UnitPrice: dec("14.50"), UnitCost: dec("8.00")},
				{LineNo: 2, ProductID: "prod-2", Quantity: 1, UnitPrice: dec("3.50"), UnitCost: dec("2.10")},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSales(&buf, sales))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "cabecera + una fila por línea de venta")
	assert.Contains(t, lines[0], "total_linea")
	assert.Contains(t, lines[1], "venta-1")
	assert.Contains(t, lines[1], "29.00")
	assert.Contains(t, lines[2], "3.50")
}
