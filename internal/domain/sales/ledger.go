package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// TotalPaid suma los montos de los pagos.
func TotalPaid(payments []*entity.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// Outstanding saldo pendiente = max(total - pagado, 0).
func Outstanding(total, paid decimal.Decimal) decimal.Decimal {
	out := total.Sub(paid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// PercentPaid porcentaje pagado (0 si el total es 0).
func PercentPaid(total, paid decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return paid.Div(total).Mul(hundred)
}

// DeriveState calcula el estado a partir de lo pagado y el vencimiento.
// Nunca deriva Anulada: la anulación es explícita.
func DeriveState(total, paid decimal.Decimal, due *time.Time, today time.Time) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return entity.DocumentStatePaid
	case paid.IsPositive():
		return entity.DocumentStatePartial
	case due != nil && DayBefore(*due, today):
		return entity.DocumentStateOverdue
	default:
		return entity.DocumentStateIssued
	}
}

// IsOverdue vencimiento definido, documento impago o con abonos y hoy posterior al vencimiento.
func IsOverdue(doc *entity.SalesDocument, today time.Time) bool {
	if doc.DueDate == nil {
		return false
	}
	if doc.State != entity.DocumentStateIssued && doc.State != entity.DocumentStatePartial {
		return false
	}
	return DayBefore(*doc.DueDate, today)
}

// CanCancel valida la transición a Anulada.
func CanCancel(state string) error {
	switch state {
	case entity.DocumentStatePaid:
		return domain.ErrCannotCancelPaidDocument
	case entity.DocumentStateCancelled:
		return domain.ErrDocumentCancelled
	}
	return nil
}

// SettledPaid monto pagado efectivo: un documento Pagada sin abonos (pago inmediato)
// se considera cubierto por su total.
func SettledPaid(state string, total, paid decimal.Decimal) decimal.Decimal {
	if state == entity.DocumentStatePaid && paid.LessThan(total) {
		return total
	}
	return paid
}

// CheckPayment valida un abono contra el saldo pendiente.
func CheckPayment(doc *entity.SalesDocument, paid, amount decimal.Decimal) error {
	if doc.Cancelled() {
		return domain.ErrDocumentCancelled
	}
	outstanding := Outstanding(doc.Total, SettledPaid(doc.State, doc.Total, paid))
	if !amount.IsPositive() || amount.GreaterThan(outstanding) {
		return domain.ErrOverpaymentRejected
	}
	return nil
}

// DayBefore indica si la fecha calendario de a es anterior a la de b, cada una en su zona.
// Las fechas DATE leídas de Postgres llegan en UTC y no deben desplazarse.
func DayBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// DateOnly trunca a medianoche conservando la zona horaria.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
