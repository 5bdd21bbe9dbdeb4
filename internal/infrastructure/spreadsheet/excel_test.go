package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ticashop/backoffice-api/internal/application/dto"
)

func TestWriteSales_RoundTrip(t *testing.T) {
	data, err := New().WriteSales([]dto.SalesReportRow{
		{OrderID: "o-1", Customer: "Comercial Andes", TaxID: "76.543.210-K", Seller: "Ana", Date: time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC), Status: "Enviado", Total: decimal.NewFromInt(11900)},
		{OrderID: "o-2", Customer: "Ferretería Sur", TaxID: "12.345.678-5", Seller: "Luis", Date: time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC), Status: "Enviado", Total: decimal.Zero},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Ventas", f.GetSheetName(0))
	rows, err := f.GetRows("Ventas", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Pedido #", "Cliente", "RUT", "Vendedor", "Fecha", "Estado", "Total"}, rows[0])
	assert.Equal(t, []string{"o-1", "Comercial Andes", "76.543.210-K", "Ana", "02/05/2024 10:30", "Enviado", "11900"}, rows[1])
	assert.Equal(t, "0", rows[2][6])

	width, err := f.GetColWidth("Ventas", "B")
	require.NoError(t, err)
	assert.Equal(t, 30.0, width)

	styleID, err := f.GetCellStyle("Ventas", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.True(t, style.Font.Bold)
	assert.Equal(t, []string{"4472C4"}, style.Fill.Color)
}

func priceBook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadPriceRows(t *testing.T) {
	buf := priceBook(t, [][]any{
		{"Código", "Costo neto", "Precio venta"},
		{"TEC-01", 3200, 5500},
		{"MOU-01", "$1.500", "2.990,50"},
		{"", 1, 2},
		{"CAB-01", "abc", 10},
	})

	rows, errs, err := New().ReadPriceRows(buf)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "TEC-01", rows[0].Code)
	assert.True(t, rows[0].Cost.Equal(decimal.NewFromInt(3200)))
	assert.True(t, rows[1].Cost.Equal(decimal.NewFromInt(1500)))
	assert.True(t, rows[1].Price.Equal(decimal.RequireFromString("2990.5")))

	require.Len(t, errs, 2)
	assert.Equal(t, 4, errs[0].Row)
	assert.Equal(t, 5, errs[1].Row)
	assert.Equal(t, "CAB-01", errs[1].Code)
}

func TestReadPriceRows_ArchivoInvalido(t *testing.T) {
	_, _, err := New().ReadPriceRows(bytes.NewReader([]byte("no es un xlsx")))
	assert.Error(t, err)
}
