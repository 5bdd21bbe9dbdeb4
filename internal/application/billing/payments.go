package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/sales"
)

// LedgerSummary proyecciones de lectura del ledger de un documento.
type LedgerSummary struct {
	TotalPaid   decimal.Decimal
	Outstanding decimal.Decimal
	PercentPaid decimal.Decimal
	Overdue     bool
}

// Ledger calcula saldo, porcentaje pagado y vencimiento a partir de los pagos.
func Ledger(doc *entity.SalesDocument, payments []*entity.Payment, today time.Time) LedgerSummary {
	paid := sales.TotalPaid(payments)
	effective := sales.SettledPaid(doc.State, doc.Total, paid)
	return LedgerSummary{
		TotalPaid:   paid,
		Outstanding: sales.Outstanding(doc.Total, effective),
		PercentPaid: sales.PercentPaid(doc.Total, effective),
		Overdue:     sales.IsOverdue(doc, today),
	}
}

// RegisterPayment agrega un abono y recalcula el estado del documento en la misma transacción.
// Monto fuera de (0, saldo] -> ErrOverpaymentRejected sin registrar nada.
func (uc *DocumentUseCase) RegisterPayment(ctx context.Context, actorID, documentID string, in dto.RegisterPaymentRequest) (*dto.DocumentSummaryResponse, error) {
	method := strings.TrimSpace(in.Method)
	if method != "" && !entity.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, method)
	}

	var (
		doc      *entity.SalesDocument
		payments []*entity.Payment
	)
	now := uc.now()
	today := uc.issuer.Today(now)
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		var err error
		doc, err = uc.getOrNotFound(ctx, repos, documentID)
		if err != nil {
			return err
		}
		payments, err = repos.Payments.ListByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		paid := sales.TotalPaid(payments)
		if err := sales.CheckPayment(doc, paid, in.Amount); err != nil {
			return err
		}

		if method == "" {
			method = doc.PaymentMethod
		}
		if method == "" {
			method = entity.PaymentMethodCash
		}
		payment := &entity.Payment{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Amount:     in.Amount,
			Method:     method,
			Reference:  in.Reference,
			Notes:      in.Notes,
			PaidAt:     now,
			CreatedBy:  actorID,
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return fmt.Errorf("registrar pago: %w", err)
		}
		payments = append(payments, payment)

		doc.State = sales.DeriveState(doc.Total, paid.Add(in.Amount), doc.DueDate, today)
		doc.UpdatedAt = now
		return repos.Documents.UpdateState(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.PaymentRegistered(method, in.Amount)
	uc.log.Info().
		Str("document_id", doc.ID).
		Str("amount", in.Amount.String()).
		Str("state", doc.State).
		Msg("pago registrado")
	return uc.summary(doc, payments, today), nil
}

// Cancel anula el documento. Pagada -> ErrCannotCancelPaidDocument; Anulada es terminal.
func (uc *DocumentUseCase) Cancel(ctx context.Context, actorID, documentID string) (*dto.DocumentResponse, error) {
	var doc *entity.SalesDocument
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		var err error
		doc, err = uc.getOrNotFound(ctx, repos, documentID)
		if err != nil {
			return err
		}
		if err := sales.CanCancel(doc.State); err != nil {
			return err
		}
		doc.State = entity.DocumentStateCancelled
		doc.UpdatedAt = uc.now()
		return repos.Documents.UpdateState(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.DocumentCancelled(doc.Type)
	uc.log.Info().Str("document_id", doc.ID).Str("actor", actorID).Msg("documento anulado")
	return ToDocumentResponse(doc, true), nil
}

// RefreshOverdue pasa a Vencida los documentos emitidos e impagos cuyo vencimiento ya pasó.
func (uc *DocumentUseCase) RefreshOverdue(ctx context.Context) (int64, error) {
	today := uc.issuer.Today(uc.now())
	var n int64
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		var err error
		n, err = repos.Documents.MarkOverdue(ctx, today)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Info().Int64("updated", n).Msg("documentos vencidos actualizados")
	}
	return n, nil
}

// ListPayments pagos del documento en orden de registro.
func (uc *DocumentUseCase) ListPayments(ctx context.Context, documentID string) ([]dto.PaymentResponse, error) {
	doc, err := uc.repos.Documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	payments, err := uc.repos.Payments.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

func (uc *DocumentUseCase) summary(doc *entity.SalesDocument, payments []*entity.Payment, today time.Time) *dto.DocumentSummaryResponse {
	ledger := Ledger(doc, payments, today)
	out := &dto.DocumentSummaryResponse{
		Document:    *ToDocumentResponse(doc, true),
		Payments:    make([]dto.PaymentResponse, 0, len(payments)),
		TotalPaid:   ledger.TotalPaid,
		Outstanding: ledger.Outstanding,
		PercentPaid: ledger.PercentPaid.Round(2),
		Overdue:     ledger.Overdue,
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, toPaymentResponse(p))
	}
	return out
}
