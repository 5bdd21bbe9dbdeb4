package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// Stock es la cantidad disponible en unidades; nunca queda negativo.
type Product struct {
	ID          string
	Code        string // código único
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta neto
	Cost        decimal.Decimal // costo neto vigente
	Stock       int64
	MinStock    int64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock indica si el stock llegó al mínimo configurado.
func (p *Product) LowStock() bool {
	return p.Stock <= p.MinStock
}
