package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssueDocumentRequest body para POST /api/orders/:id/document.
// Modality: "contado" (por defecto) o "plazo" con TermDays ∈ {15,30,45,60,90}.
type IssueDocumentRequest struct {
	Type          string `json:"type" validate:"required,oneof=Boleta Factura"`
	Modality      string `json:"modality" validate:"omitempty,oneof=contado plazo"`
	TermDays      int    `json:"term_days" validate:"omitempty,oneof=15 30 45 60 90"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof='Efectivo' 'Tarjeta de Débito' 'Tarjeta de Crédito' 'Transferencia'"`
	LegalName     string `json:"legal_name" validate:"required_if=Type Factura,max=255"`
	TaxID         string `json:"tax_id" validate:"required_if=Type Factura,max=20"`
	BusinessLine  string `json:"business_line" validate:"max=255"`
	Address       string `json:"address" validate:"max=255"`
	City          string `json:"city" validate:"max=100"`
	District      string `json:"district" validate:"max=100"`
}

// RegisterPaymentRequest body para POST /api/documents/:id/payments.
// Method vacío toma el medio de pago del documento.
type RegisterPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"omitempty,oneof='Efectivo' 'Tarjeta de Débito' 'Tarjeta de Crédito' 'Transferencia'"`
	Reference string          `json:"reference" validate:"max=100"`
	Notes     string          `json:"notes" validate:"max=1000"`
}

// DocumentFilter filtros de listado de documentos.
type DocumentFilter struct {
	Type       string `query:"type" validate:"omitempty,oneof=Boleta Factura"`
	State      string `query:"state"`
	CustomerID string `query:"customer_id"`
	PageRequest
}

// DocumentLineResponse línea congelada del documento.
type DocumentLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// DocumentResponse cabecera de boleta/factura.
type DocumentResponse struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Folio         int64                  `json:"folio"`
	OrderID       string                 `json:"order_id"`
	CustomerID    string                 `json:"customer_id"`
	SellerID      string                 `json:"seller_id"`
	Net           decimal.Decimal        `json:"net"`
	Tax           decimal.Decimal        `json:"tax"`
	Total         decimal.Decimal        `json:"total"`
	State         string                 `json:"state"`
	IssuedAt      time.Time              `json:"issued_at"`
	DueDate       *string                `json:"due_date,omitempty"` // YYYY-MM-DD
	PaymentMethod string                 `json:"payment_method,omitempty"`
	LegalName     string                 `json:"legal_name,omitempty"`
	TaxID         string                 `json:"tax_id,omitempty"`
	BusinessLine  string                 `json:"business_line,omitempty"`
	Address       string                 `json:"address,omitempty"`
	City          string                 `json:"city,omitempty"`
	District      string                 `json:"district,omitempty"`
	Lines         []DocumentLineResponse `json:"lines,omitempty"`
}

// PaymentResponse un abono del ledger.
type PaymentResponse struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
	CreatedBy  string          `json:"created_by"`
}

// DocumentSummaryResponse documento con pagos y proyecciones de saldo.
type DocumentSummaryResponse struct {
	Document    DocumentResponse  `json:"document"`
	Payments    []PaymentResponse `json:"payments"`
	TotalPaid   decimal.Decimal   `json:"total_paid"`
	Outstanding decimal.Decimal   `json:"outstanding"`
	PercentPaid decimal.Decimal   `json:"percent_paid"`
	Overdue     bool              `json:"overdue"`
}

// DocumentListResponse lista paginada de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// RefreshOverdueResponse resultado de la evaluación de vencimientos.
type RefreshOverdueResponse struct {
	Updated int64 `json:"updated"`
}
