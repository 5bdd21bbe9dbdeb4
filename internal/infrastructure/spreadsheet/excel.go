// Package spreadsheet lee y escribe planillas Excel (.xlsx) con excelize.
package spreadsheet

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ports"
)

var (
	_ ports.SalesSheetWriter = (*Excel)(nil)
	_ ports.PriceSheetReader = (*Excel)(nil)
)

const salesSheet = "Ventas"

var (
	salesHeaders = []any{"Pedido #", "Cliente", "RUT", "Vendedor", "Fecha", "Estado", "Total"}
	salesWidths  = []float64{12, 30, 15, 25, 20, 15, 15}
	clpFormat    = `"$"#,##0`
	thousandsDot = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
)

// Excel adaptador de planillas.
type Excel struct{}

// New construye el adaptador.
func New() *Excel { return &Excel{} }

// WriteSales libro con la hoja "Ventas": cabecera con estilo, una fila por pedido y anchos fijos.
func (Excel) WriteSales(rows []dto.SalesReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), salesSheet); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo cabecera: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &clpFormat})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo monto: %w", err)
	}

	if err := f.SetSheetRow(salesSheet, "A1", &salesHeaders); err != nil {
		return nil, fmt.Errorf("excel: cabecera: %w", err)
	}
	if err := f.SetCellStyle(salesSheet, "A1", "G1", header); err != nil {
		return nil, fmt.Errorf("excel: cabecera: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			r.OrderID, r.Customer, r.TaxID, r.Seller,
			r.Date.Format("02/01/2006 15:04"), r.Status, r.Total.Round(0).IntPart(),
		}
		if err := f.SetSheetRow(salesSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", i+2, err)
		}
		totalCell, _ := excelize.CoordinatesToCellName(7, i+2)
		if err := f.SetCellStyle(salesSheet, totalCell, totalCell, amount); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", i+2, err)
		}
	}

	for i, w := range salesWidths {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(salesSheet, colName, colName, w); err != nil {
			return nil, fmt.Errorf("excel: ancho columna %s: %w", colName, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadPriceRows lee la primera hoja: código, costo neto, precio de venta. La fila 1 es cabecera.
// Las filas vacías se ignoran; las ilegibles se informan con su número de fila.
func (Excel) ReadPriceRows(r io.Reader) ([]dto.PriceUpdateRow, []dto.PriceUpdateErr, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("excel: abrir: %w", err)
	}
	defer func() { _ = f.Close() }()

	raw, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("excel: leer filas: %w", err)
	}

	var (
		rows []dto.PriceUpdateRow
		errs []dto.PriceUpdateErr
	)
	for i, cells := range raw {
		n := i + 1
		if n == 1 || blank(cells) {
			continue
		}
		code := cell(cells, 0)
		if code == "" {
			errs = append(errs, dto.PriceUpdateErr{Row: n, Message: "código vacío"})
			continue
		}
		cost, err := parseAmount(cell(cells, 1))
		if err != nil {
			errs = append(errs, dto.PriceUpdateErr{Row: n, Code: code, Message: "costo inválido: " + cell(cells, 1)})
			continue
		}
		price, err := parseAmount(cell(cells, 2))
		if err != nil {
			errs = append(errs, dto.PriceUpdateErr{Row: n, Code: code, Message: "precio inválido: " + cell(cells, 2)})
			continue
		}
		rows = append(rows, dto.PriceUpdateRow{Row: n, Code: code, Cost: cost, Price: price})
	}
	return rows, errs, nil
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseAmount acepta números crudos y montos escritos como "$5.000" o "5.000,50".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case thousandsDot.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	return decimal.NewFromString(s)
}
