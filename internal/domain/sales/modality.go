package sales

import (
	"fmt"
	"time"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

// Modalidades de pago elegidas al emitir.
const (
	ModalityPayNow       = "contado"
	ModalityInstallments = "plazo"
)

// DefaultTermDays plazo cuando se elige pago a plazo sin indicar días.
const DefaultTermDays = 30

// Políticas de "pago inmediato".
const (
	PayNowSettle   = "settle"    // Pagada, sin vencimiento
	PayNowDueToday = "due_today" // Emitida, vence el día de emisión
)

var allowedTerms = map[int]bool{15: true, 30: true, 45: true, 60: true, 90: true}

// AllowedTerms plazos en días aceptados.
func AllowedTerms() []int { return []int{15, 30, 45, 60, 90} }

// PaymentModality variante PayNow | Installments(days).
type PaymentModality struct {
	Kind string
	Days int
}

// PayNow pago inmediato.
func PayNow() PaymentModality { return PaymentModality{Kind: ModalityPayNow} }

// Installments pago a plazo; days 0 usa el plazo por defecto.
func Installments(days int) PaymentModality {
	return PaymentModality{Kind: ModalityInstallments, Days: days}
}

// ParseModality construye la modalidad desde la entrada del cliente.
func ParseModality(kind string, days int) (PaymentModality, error) {
	switch kind {
	case "", ModalityPayNow:
		return PayNow(), nil
	case ModalityInstallments:
		if days == 0 {
			days = DefaultTermDays
		}
		if !allowedTerms[days] {
			return PaymentModality{}, fmt.Errorf("%w: plazo %d días no permitido", domain.ErrInvalidInput, days)
		}
		return Installments(days), nil
	}
	return PaymentModality{}, fmt.Errorf("%w: modalidad %q desconocida", domain.ErrInvalidInput, kind)
}

// Terms estado inicial y vencimiento que resultan de la modalidad.
type Terms struct {
	State   string
	DueDate *time.Time
}

// ResolveTerms aplica la modalidad a la fecha de emisión según la política configurada.
func ResolveTerms(m PaymentModality, issuedAt time.Time, payNowPolicy string) Terms {
	issueDay := DateOnly(issuedAt)
	if m.Kind == ModalityInstallments {
		days := m.Days
		if days == 0 {
			days = DefaultTermDays
		}
		due := issueDay.AddDate(0, 0, days)
		return Terms{State: entity.DocumentStateIssued, DueDate: &due}
	}
	if payNowPolicy == PayNowDueToday {
		return Terms{State: entity.DocumentStateIssued, DueDate: &issueDay}
	}
	return Terms{State: entity.DocumentStatePaid}
}
