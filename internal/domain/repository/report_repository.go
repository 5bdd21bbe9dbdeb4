package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesRow fila cruda del reporte de ventas: pedido enviado con su documento.
type SalesRow struct {
	OrderID       string
	CustomerName  string
	CustomerTaxID string
	SellerName    string
	Date          time.Time       // creación del pedido
	Status        string
	DocumentState string          // vacío si el pedido no tiene documento
	Total         decimal.Decimal // total del documento, 0 si no tiene
}

// MarginResult agregados de margen de los pedidos enviados del rango, usando el costo
// congelado en las líneas del documento. Excluye documentos anulados.
type MarginResult struct {
	Revenue decimal.Decimal // suma de subtotales netos
	COGS    decimal.Decimal // suma de cantidad * costo congelado
}

// ReportRepository consultas de solo lectura para reportes.
type ReportRepository interface {
	// SalesRows pedidos en estado Enviado creados en el rango [from, to), más recientes primero.
	SalesRows(ctx context.Context, from, to time.Time) ([]SalesRow, error)
	SalesMargin(ctx context.Context, from, to time.Time) (MarginResult, error)
}
