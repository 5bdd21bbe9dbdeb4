package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment abono registrado contra un documento. Inmutable una vez creado.
type Payment struct {
	ID         string
	DocumentID string
	Amount     decimal.Decimal
	Method     string
	Reference  string
	Notes      string
	PaidAt     time.Time
	CreatedBy  string
}
