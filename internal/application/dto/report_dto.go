package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesReportRequest rango de fechas (YYYY-MM-DD, ambos inclusive).
type SalesReportRequest struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// SalesReportRow fila del reporte de ventas.
type SalesReportRow struct {
	OrderID       string          `json:"order_id"`
	Customer      string          `json:"customer"`
	TaxID         string          `json:"tax_id"`
	Seller        string          `json:"seller"`
	Date          time.Time       `json:"date"`
	Status        string          `json:"status"`
	DocumentState string          `json:"document_state,omitempty"`
	Total         decimal.Decimal `json:"total"`
}

// SalesReportResponse estadísticas de ventas del período.
type SalesReportResponse struct {
	From        string           `json:"from,omitempty"`
	To          string           `json:"to,omitempty"`
	Rows        []SalesReportRow `json:"rows"`
	SalesCount  int              `json:"sales_count"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Revenue     decimal.Decimal  `json:"revenue"`      // neto
	COGS        decimal.Decimal  `json:"cogs"`         // costo con precio congelado
	GrossMargin decimal.Decimal  `json:"gross_margin"` // revenue - cogs
	MarginPct   decimal.Decimal  `json:"margin_pct"`
}
