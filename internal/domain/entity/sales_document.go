package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento de venta.
const (
	DocumentTypeFactura = "Factura"
	DocumentTypeBoleta  = "Boleta"
)

// Estados del documento de venta.
const (
	DocumentStateIssued    = "Emitida"
	DocumentStatePartial   = "Pago Parcial"
	DocumentStatePaid      = "Pagada"
	DocumentStateOverdue   = "Vencida"
	DocumentStateCancelled = "Anulada"
)

// Medios de pago aceptados.
const (
	PaymentMethodCash     = "Efectivo"
	PaymentMethodDebit    = "Tarjeta de Débito"
	PaymentMethodCredit   = "Tarjeta de Crédito"
	PaymentMethodTransfer = "Transferencia"
)

// PaymentMethods catálogo de medios de pago.
var PaymentMethods = []string{PaymentMethodCash, PaymentMethodDebit, PaymentMethodCredit, PaymentMethodTransfer}

// ValidPaymentMethod indica si m pertenece al catálogo.
func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// SalesDocument cabecera de una boleta o factura emitida desde un pedido.
// Los campos LegalName..District solo se completan para Factura.
type SalesDocument struct {
	ID            string
	Type          string
	Folio         int64
	OrderID       string
	CustomerID    string
	SellerID      string
	Net           decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	State         string
	IssuedAt      time.Time
	DueDate       *time.Time // nil: pago inmediato sin vencimiento
	PaymentMethod string
	LegalName     string // razón social
	TaxID         string // RUT
	BusinessLine  string // giro
	Address       string
	City          string
	District      string // comuna
	Lines         []*DocumentLine
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DocumentLine congela cantidad, precio y costo al momento de crearse.
type DocumentLine struct {
	ID         string
	DocumentID string
	ProductID  string
	Quantity   int64
	UnitPrice  decimal.Decimal
	UnitCost   decimal.Decimal
	Subtotal   decimal.Decimal
}

// Recalc recalcula el subtotal con el precio congelado.
func (l *DocumentLine) Recalc() {
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Line devuelve la línea del producto o nil.
func (d *SalesDocument) Line(productID string) *DocumentLine {
	for _, l := range d.Lines {
		if l.ProductID == productID {
			return l
		}
	}
	return nil
}

// Cancelled indica si el documento está anulado.
func (d *SalesDocument) Cancelled() bool {
	return d.State == DocumentStateCancelled
}
