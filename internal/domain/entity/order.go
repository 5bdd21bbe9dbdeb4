package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido.
const (
	OrderStatusDraft      = "Borrador"
	OrderStatusPending    = "Pendiente"
	OrderStatusProcessing = "Procesando"
	OrderStatusSent       = "Enviado"
)

// Order representa un pedido (carrito) con sus líneas.
type Order struct {
	ID         string
	CustomerID string
	SellerID   string
	SellerName string
	Status     string
	Notes      string
	Lines      []*OrderLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderLine una línea por producto; UnitPrice se captura al agregar el producto.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Recalc recalcula el subtotal a partir de cantidad y precio.
func (l *OrderLine) Recalc() {
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Line devuelve la línea del producto o nil.
func (o *Order) Line(productID string) *OrderLine {
	for _, l := range o.Lines {
		if l.ProductID == productID {
			return l
		}
	}
	return nil
}

// Net suma los subtotales de las líneas.
func (o *Order) Net() decimal.Decimal {
	net := decimal.Zero
	for _, l := range o.Lines {
		net = net.Add(l.Subtotal)
	}
	return net
}

// Editable indica si el estado del pedido admite cambios de líneas.
func (o *Order) Editable() bool {
	return o.Status == OrderStatusDraft || o.Status == OrderStatusPending
}
