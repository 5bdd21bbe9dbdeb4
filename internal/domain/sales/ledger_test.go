package sales

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestDeriveState(t *testing.T) {
	today := day(2024, 5, 10)
	past := day(2024, 5, 9)
	future := day(2024, 5, 11)

	tests := []struct {
		name string
		paid int64
		due  *time.Time
		want string
	}{
		{"sin pagos y sin vencimiento", 0, nil, entity.DocumentStateIssued},
		{"sin pagos vence hoy", 0, &today, entity.DocumentStateIssued},
		{"sin pagos vencido", 0, &past, entity.DocumentStateOverdue},
		{"sin pagos por vencer", 0, &future, entity.DocumentStateIssued},
		{"abono parcial", 5000, &past, entity.DocumentStatePartial},
		{"pago total", 11900, &past, entity.DocumentStatePaid},
		{"sobrepago", 12000, nil, entity.DocumentStatePaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveState(d(11900), d(tt.paid), tt.due, today))
		})
	}
}

func TestOutstandingYPorcentaje(t *testing.T) {
	assert.True(t, Outstanding(d(11900), d(5000)).Equal(d(6900)))
	assert.True(t, Outstanding(d(11900), d(13000)).IsZero())

	pct := PercentPaid(d(11900), d(5000))
	assert.Equal(t, "42.02", pct.Round(2).StringFixed(2))
	assert.True(t, PercentPaid(decimal.Zero, d(10)).IsZero())
}

func TestTotalPaid(t *testing.T) {
	payments := []*entity.Payment{{Amount: d(5000)}, {Amount: d(6900)}}
	assert.True(t, TotalPaid(payments).Equal(d(11900)))
	assert.True(t, TotalPaid(nil).IsZero())
}

func TestIsOverdue(t *testing.T) {
	due := day(2024, 5, 10)
	doc := &entity.SalesDocument{State: entity.DocumentStateIssued, DueDate: &due}

	assert.False(t, IsOverdue(doc, due))
	assert.True(t, IsOverdue(doc, due.AddDate(0, 0, 1)))

	doc.State = entity.DocumentStatePartial
	assert.True(t, IsOverdue(doc, due.AddDate(0, 0, 1)))

	doc.State = entity.DocumentStatePaid
	assert.False(t, IsOverdue(doc, due.AddDate(0, 0, 1)))

	assert.False(t, IsOverdue(&entity.SalesDocument{State: entity.DocumentStateIssued}, due))
}

func TestCheckPayment(t *testing.T) {
	doc := &entity.SalesDocument{Total: d(11900), State: entity.DocumentStateIssued}

	assert.NoError(t, CheckPayment(doc, d(0), d(11900)))
	assert.ErrorIs(t, CheckPayment(doc, d(11900), d(1)), domain.ErrOverpaymentRejected)
	assert.ErrorIs(t, CheckPayment(doc, d(0), d(0)), domain.ErrOverpaymentRejected)
	assert.ErrorIs(t, CheckPayment(doc, d(0), d(-5)), domain.ErrOverpaymentRejected)

	doc.State = entity.DocumentStateCancelled
	assert.ErrorIs(t, CheckPayment(doc, d(0), d(100)), domain.ErrDocumentCancelled)

	// pago inmediato liquidado: no admite abonos aunque el ledger esté vacío
	doc.State = entity.DocumentStatePaid
	assert.ErrorIs(t, CheckPayment(doc, d(0), d(1)), domain.ErrOverpaymentRejected)
}

func TestSettledPaid(t *testing.T) {
	assert.True(t, SettledPaid(entity.DocumentStatePaid, d(11900), d(0)).Equal(d(11900)))
	assert.True(t, SettledPaid(entity.DocumentStateIssued, d(11900), d(0)).IsZero())
	assert.True(t, SettledPaid(entity.DocumentStatePaid, d(11900), d(12000)).Equal(d(12000)))
}

func TestCanCancel(t *testing.T) {
	assert.ErrorIs(t, CanCancel(entity.DocumentStatePaid), domain.ErrCannotCancelPaidDocument)
	assert.ErrorIs(t, CanCancel(entity.DocumentStateCancelled), domain.ErrDocumentCancelled)
	assert.NoError(t, CanCancel(entity.DocumentStateIssued))
	assert.NoError(t, CanCancel(entity.DocumentStateOverdue))
	assert.NoError(t, CanCancel(entity.DocumentStatePartial))
}

func TestDayBefore_IgnoraZonaHoraria(t *testing.T) {
	santiago := time.FixedZone("CLT", -4*3600)
	due := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC) // DATE leído de Postgres
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, santiago)

	assert.False(t, DayBefore(due, today))
	assert.True(t, DayBefore(due, today.AddDate(0, 0, 1)))
	assert.False(t, DayBefore(today.AddDate(1, 0, 0), due))
	assert.True(t, DayBefore(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), due))
}
