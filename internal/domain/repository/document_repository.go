package repository

import (
	"context"
	"time"

	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

// DocumentFilter criterios de listado de documentos de venta.
type DocumentFilter struct {
	Type       string
	State      string
	CustomerID string
	Limit      int
	Offset     int
}

// DocumentRepository persistencia de boletas/facturas y sus líneas.
type DocumentRepository interface {
	// Create inserta cabecera y líneas. Retorna domain.ErrDuplicateFolio si (tipo, folio) ya existe
	// y domain.ErrDocumentAlreadyIssued si el pedido ya tiene documento.
	Create(ctx context.Context, doc *entity.SalesDocument) error
	GetByID(ctx context.Context, id string) (*entity.SalesDocument, error)
	GetForUpdate(ctx context.Context, id string) (*entity.SalesDocument, error)
	// GetByOrderID documento del pedido, o (nil, nil).
	GetByOrderID(ctx context.Context, orderID string) (*entity.SalesDocument, error)
	// GetByOrderIDForUpdate igual que GetByOrderID pero bloquea la fila.
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*entity.SalesDocument, error)
	UpdateTotals(ctx context.Context, doc *entity.SalesDocument) error
	UpdateState(ctx context.Context, doc *entity.SalesDocument) error
	SaveLine(ctx context.Context, line *entity.DocumentLine) error
	DeleteLine(ctx context.Context, lineID string) error
	List(ctx context.Context, filter DocumentFilter) ([]*entity.SalesDocument, error)
	// MarkOverdue pasa a Vencida los documentos Emitida con vencimiento anterior a today.
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

// FolioRepository contador de folios por tipo de documento.
type FolioRepository interface {
	// Next incrementa y devuelve el folio del tipo: mayor entre el último entregado y el
	// máximo folio existente, más uno; seed si la serie está vacía.
	Next(ctx context.Context, docType string, seed int64) (int64, error)
}

// PaymentRepository ledger de pagos (solo inserción).
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByDocument(ctx context.Context, documentID string) ([]*entity.Payment, error)
}
