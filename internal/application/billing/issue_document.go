package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
	"github.com/ticashop/backoffice-api/pkg/logger"
)

// DocumentUseCase emisión de documentos y ledger de pagos.
// Cada operación de escritura es una sola transacción (TxRunner).
type DocumentUseCase struct {
	tx      ports.TxRunner
	repos   ports.Repos
	issuer  *Issuer
	metrics ports.SalesMetrics
	log     *logger.Logger
	now     func() time.Time
}

// NewDocumentUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewDocumentUseCase(tx ports.TxRunner, repos ports.Repos, issuer *Issuer, metrics ports.SalesMetrics, log *logger.Logger) *DocumentUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentUseCase{
		tx:      tx,
		repos:   repos,
		issuer:  issuer,
		metrics: metrics,
		log:     log.Component("billing"),
		now:     time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *DocumentUseCase) WithClock(now func() time.Time) *DocumentUseCase {
	uc.now = now
	return uc
}

// IssueDocument emite la boleta o factura de un pedido: folio por tipo, líneas con costo congelado,
// totales con la tasa configurada y estado/vencimiento según la modalidad de pago.
func (uc *DocumentUseCase) IssueDocument(ctx context.Context, actorID, orderID string, in dto.IssueDocumentRequest) (*dto.DocumentResponse, error) {
	params, err := ParseIssueRequest(&in)
	if err != nil {
		return nil, err
	}

	var doc *entity.SalesDocument
	err = uc.issuer.WithFolioRetry(ctx, params.Type, func() error {
		return uc.tx.Run(ctx, func(repos ports.Repos) error {
			order, err := repos.Orders.GetForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			if order == nil {
				return domain.ErrNotFound
			}
			doc, err = uc.issuer.IssueInTx(ctx, repos, order, actorID, params, uc.now())
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("type", doc.Type).
		Int64("folio", doc.Folio).
		Str("state", doc.State).
		Str("total", doc.Total.String()).
		Msg("documento emitido")
	return ToDocumentResponse(doc, true), nil
}

// GetDocument obtiene un documento con sus líneas.
func (uc *DocumentUseCase) GetDocument(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.repos.Documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return ToDocumentResponse(doc, true), nil
}

// ListDocuments lista documentos por tipo, estado o cliente.
func (uc *DocumentUseCase) ListDocuments(ctx context.Context, f dto.DocumentFilter) (*dto.DocumentListResponse, error) {
	f.DefaultPage()
	list, err := uc.repos.Documents.List(ctx, repository.DocumentFilter{
		Type:       f.Type,
		State:      f.State,
		CustomerID: f.CustomerID,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *ToDocumentResponse(d, false))
	}
	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

// Summary documento con pagos, saldo pendiente, porcentaje pagado y si está vencido.
func (uc *DocumentUseCase) Summary(ctx context.Context, id string) (*dto.DocumentSummaryResponse, error) {
	doc, err := uc.repos.Documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	payments, err := uc.repos.Payments.ListByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.summary(doc, payments, uc.issuer.Today(uc.now())), nil
}

func (uc *DocumentUseCase) getOrNotFound(ctx context.Context, repos ports.Repos, id string) (*entity.SalesDocument, error) {
	doc, err := repos.Documents.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, id)
	}
	return doc, nil
}
