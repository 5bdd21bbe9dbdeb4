package ports

import (
	"io"

	"github.com/ticashop/backoffice-api/internal/application/dto"
)

// SalesSheetWriter exporta filas del reporte de ventas a una planilla.
type SalesSheetWriter interface {
	WriteSales(rows []dto.SalesReportRow) ([]byte, error)
}

// PriceSheetReader lee filas (código, costo, precio) para la actualización masiva.
// Las filas ilegibles se devuelven como errores por fila, no como error global.
type PriceSheetReader interface {
	ReadPriceRows(r io.Reader) ([]dto.PriceUpdateRow, []dto.PriceUpdateErr, error)
}
