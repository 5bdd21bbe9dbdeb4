package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/sales"
	"github.com/ticashop/backoffice-api/pkg/logger"
)

// maxFolioAttempts intentos de emisión ante colisión de folio.
const maxFolioAttempts = 3

// Issuer reglas de emisión compartidas por la emisión directa y la confirmación de pedidos.
// Todas sus operaciones reciben los repos de la transacción en curso.
type Issuer struct {
	settings Settings
	metrics  ports.SalesMetrics
	log      *logger.Logger
}

// NewIssuer construye el emisor.
func NewIssuer(settings Settings, metrics ports.SalesMetrics, log *logger.Logger) *Issuer {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Issuer{settings: settings, metrics: metrics, log: log}
}

// Settings parámetros vigentes.
func (is *Issuer) Settings() Settings { return is.settings }

// Today fecha actual en la zona horaria del negocio.
func (is *Issuer) Today(now time.Time) time.Time {
	return sales.DateOnly(now.In(is.settings.location()))
}

// IssueParams entrada validada de emisión.
type IssueParams struct {
	Type          string
	Modality      sales.PaymentModality
	PaymentMethod string
	LegalName     string
	TaxID         string
	BusinessLine  string
	Address       string
	City          string
	District      string
}

// DefaultIssueParams boleta al contado en efectivo.
func DefaultIssueParams() IssueParams {
	return IssueParams{
		Type:          entity.DocumentTypeBoleta,
		Modality:      sales.PayNow(),
		PaymentMethod: entity.PaymentMethodCash,
	}
}

// ParseIssueRequest valida la solicitud; los datos de factura se descartan en boletas.
func ParseIssueRequest(in *dto.IssueDocumentRequest) (IssueParams, error) {
	if in == nil {
		return DefaultIssueParams(), nil
	}
	p := IssueParams{
		Type:          in.Type,
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
	}
	switch p.Type {
	case entity.DocumentTypeBoleta, entity.DocumentTypeFactura:
	case "":
		p.Type = entity.DocumentTypeBoleta
	default:
		return IssueParams{}, fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, in.Type)
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = entity.PaymentMethodCash
	}
	if !entity.ValidPaymentMethod(p.PaymentMethod) {
		return IssueParams{}, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, p.PaymentMethod)
	}
	modality, err := sales.ParseModality(in.Modality, in.TermDays)
	if err != nil {
		return IssueParams{}, err
	}
	p.Modality = modality

	if p.Type == entity.DocumentTypeFactura {
		p.LegalName = strings.TrimSpace(in.LegalName)
		p.TaxID = strings.TrimSpace(in.TaxID)
		if p.LegalName == "" || p.TaxID == "" {
			return IssueParams{}, fmt.Errorf("%w: la factura requiere razón social y RUT", domain.ErrInvalidInput)
		}
		p.BusinessLine = in.BusinessLine
		p.Address = in.Address
		p.City = in.City
		p.District = in.District
	}
	return p, nil
}

// IssueInTx emite el documento del pedido dentro de la transacción de repos.
// El pedido debe estar bloqueado por el llamador. Un pedido en Borrador pasa a Pendiente.
func (is *Issuer) IssueInTx(ctx context.Context, repos ports.Repos, order *entity.Order, actorID string, p IssueParams, now time.Time) (*entity.SalesDocument, error) {
	if !order.Editable() {
		return nil, fmt.Errorf("%w: pedido en estado %s", domain.ErrConflict, order.Status)
	}
	if len(order.Lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	existing, err := repos.Documents.GetByOrderIDForUpdate(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDocumentAlreadyIssued
	}

	folio, err := repos.Folios.Next(ctx, p.Type, is.settings.FolioSeed)
	if err != nil {
		return nil, fmt.Errorf("siguiente folio: %w", err)
	}

	issuedAt := now.In(is.settings.location())
	terms := sales.ResolveTerms(p.Modality, issuedAt, is.settings.PayNowPolicy)
	totals := sales.ComputeTotals(order.Net(), is.settings.TaxRate)

	doc := &entity.SalesDocument{
		ID:            uuid.New().String(),
		Type:          p.Type,
		Folio:         folio,
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		SellerID:      actorID,
		Net:           totals.Net,
		Tax:           totals.Tax,
		Total:         totals.Total,
		State:         terms.State,
		IssuedAt:      issuedAt,
		DueDate:       terms.DueDate,
		PaymentMethod: p.PaymentMethod,
		LegalName:     p.LegalName,
		TaxID:         p.TaxID,
		BusinessLine:  p.BusinessLine,
		Address:       p.Address,
		City:          p.City,
		District:      p.District,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if doc.SellerID == "" {
		doc.SellerID = order.SellerID
	}
	for _, ol := range order.Lines {
		product, err := repos.Products.GetByID(ctx, ol.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, ol.ProductID)
		}
		doc.Lines = append(doc.Lines, newDocumentLine(doc.ID, ol, product))
	}

	if err := repos.Documents.Create(ctx, doc); err != nil {
		return nil, err
	}
	if order.Status == entity.OrderStatusDraft {
		order.Status = entity.OrderStatusPending
		order.UpdatedAt = now
		if err := repos.Orders.UpdateStatus(ctx, order); err != nil {
			return nil, err
		}
	}
	is.metrics.DocumentIssued(doc.Type, doc.State)
	return doc, nil
}

// newDocumentLine congela el costo vigente del producto.
func newDocumentLine(documentID string, ol *entity.OrderLine, product *entity.Product) *entity.DocumentLine {
	l := &entity.DocumentLine{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		ProductID:  ol.ProductID,
		Quantity:   ol.Quantity,
		UnitPrice:  ol.UnitPrice,
		UnitCost:   product.Cost,
	}
	l.Recalc()
	return l
}

// EnsureLinesEditable rechaza cambios de líneas cuando el documento ya tiene pagos o está anulado.
func EnsureLinesEditable(order *entity.Order, doc *entity.SalesDocument) error {
	if !order.Editable() {
		return fmt.Errorf("%w: pedido en estado %s", domain.ErrOrderLocked, order.Status)
	}
	if doc == nil {
		return nil
	}
	if doc.State != entity.DocumentStateIssued && doc.State != entity.DocumentStateOverdue {
		return fmt.Errorf("%w: documento %s", domain.ErrOrderLocked, doc.State)
	}
	return nil
}

// SyncLine refleja en el documento el cambio de una línea del pedido.
// ol nil o con cantidad 0 elimina la línea; una línea nueva congela el costo del producto.
func (is *Issuer) SyncLine(ctx context.Context, repos ports.Repos, doc *entity.SalesDocument, productID string, ol *entity.OrderLine, product *entity.Product) error {
	if doc == nil {
		return nil
	}
	dl := doc.Line(productID)
	switch {
	case ol == nil || ol.Quantity == 0:
		if dl == nil {
			return nil
		}
		return repos.Documents.DeleteLine(ctx, dl.ID)
	case dl == nil:
		dl = newDocumentLine(doc.ID, ol, product)
		doc.Lines = append(doc.Lines, dl)
		return repos.Documents.SaveLine(ctx, dl)
	default:
		dl.Quantity = ol.Quantity
		dl.Recalc()
		return repos.Documents.SaveLine(ctx, dl)
	}
}

// ApplyTotals recalcula neto/IVA/total del pedido y los aplica a su documento si existe.
func (is *Issuer) ApplyTotals(ctx context.Context, repos ports.Repos, order *entity.Order, doc *entity.SalesDocument, now time.Time) (sales.Totals, error) {
	totals := sales.ComputeTotals(order.Net(), is.settings.TaxRate)
	if doc == nil {
		return totals, nil
	}
	doc.Net, doc.Tax, doc.Total = totals.Net, totals.Tax, totals.Total
	doc.UpdatedAt = now
	return totals, repos.Documents.UpdateTotals(ctx, doc)
}

// WithFolioRetry reintenta fn (una transacción completa) cuando choca el folio.
func (is *Issuer) WithFolioRetry(ctx context.Context, docType string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxFolioAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrDuplicateFolio) {
			return err
		}
		is.metrics.FolioRetried(docType)
		is.log.Recoverable("duplicate_folio", err).
			Str("doc_type", docType).
			Int("attempt", attempt).
			Msg("folio duplicado, reintentando emisión")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
