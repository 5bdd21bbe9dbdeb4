package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

var (
	_ repository.DocumentRepository = (*DocumentRepo)(nil)
	_ repository.FolioRepository    = (*FolioRepo)(nil)
	_ repository.PaymentRepository  = (*PaymentRepo)(nil)
)

const documentColumns = `id, doc_type, folio, order_id, customer_id, seller_id, net, tax, total, state,
	issued_at, due_date, payment_method, legal_name, tax_id, business_line, address, city, district,
	created_at, updated_at`

// DocumentRepo boletas/facturas y sus líneas (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste cabecera y líneas. Los unique de (tipo, folio) y pedido se traducen a errores de dominio.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.SalesDocument) error {
	query := `
		INSERT INTO sales_documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.Type, d.Folio, nullIfEmpty(d.OrderID), d.CustomerID, d.SellerID,
		d.Net, d.Tax, d.Total, d.State, d.IssuedAt, d.DueDate, d.PaymentMethod,
		nullIfEmpty(d.LegalName), nullIfEmpty(d.TaxID), nullIfEmpty(d.BusinessLine),
		nullIfEmpty(d.Address), nullIfEmpty(d.City), nullIfEmpty(d.District),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			switch constraintName(err) {
			case "sales_documents_order_key":
				return domain.ErrDocumentAlreadyIssued
			default:
				return domain.ErrDuplicateFolio
			}
		}
		return fmt.Errorf("insert sales document: %w", err)
	}
	for _, l := range d.Lines {
		if err := r.SaveLine(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func scanDocument(row pgx.Row) (*entity.SalesDocument, error) {
	var (
		d                                                                entity.SalesDocument
		orderID, legalName, taxID, businessLine, address, city, district *string
	)
	err := row.Scan(
		&d.ID, &d.Type, &d.Folio, &orderID, &d.CustomerID, &d.SellerID, &d.Net, &d.Tax, &d.Total, &d.State,
		&d.IssuedAt, &d.DueDate, &d.PaymentMethod, &legalName, &taxID, &businessLine, &address, &city, &district,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.OrderID = derefStr(orderID)
	d.LegalName = derefStr(legalName)
	d.TaxID = derefStr(taxID)
	d.BusinessLine = derefStr(businessLine)
	d.Address = derefStr(address)
	d.City = derefStr(city)
	d.District = derefStr(district)
	return &d, nil
}

func (r *DocumentRepo) get(ctx context.Context, op, where string, arg any) (*entity.SalesDocument, error) {
	d, err := scanDocument(r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM sales_documents WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.loadLines(ctx, []*entity.SalesDocument{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// GetByID obtiene el documento con sus líneas.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.SalesDocument, error) {
	return r.get(ctx, "get sales document", `id = $1`, id)
}

// GetForUpdate obtiene el documento y bloquea la fila.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesDocument, error) {
	return r.get(ctx, "get sales document for update", `id = $1 FOR UPDATE`, id)
}

// GetByOrderID documento del pedido.
func (r *DocumentRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.SalesDocument, error) {
	return r.get(ctx, "get sales document by order", `order_id = $1`, orderID)
}

// GetByOrderIDForUpdate documento del pedido con la fila bloqueada.
func (r *DocumentRepo) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*entity.SalesDocument, error) {
	return r.get(ctx, "get sales document by order for update", `order_id = $1 FOR UPDATE`, orderID)
}

func (r *DocumentRepo) loadLines(ctx context.Context, docs []*entity.SalesDocument) error {
	if len(docs) == 0 {
		return nil
	}
	byID := make(map[string]*entity.SalesDocument, len(docs))
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, product_id, quantity, unit_price, unit_cost, subtotal
		FROM sales_document_lines WHERE document_id = ANY($1) ORDER BY line_no`, ids)
	if err != nil {
		return fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.DocumentLine
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.UnitCost, &l.Subtotal); err != nil {
			return fmt.Errorf("scan document line: %w", err)
		}
		d := byID[l.DocumentID]
		d.Lines = append(d.Lines, &l)
	}
	return rows.Err()
}

// UpdateTotals actualiza neto, IVA y total.
func (r *DocumentRepo) UpdateTotals(ctx context.Context, d *entity.SalesDocument) error {
	return r.exec(ctx, "update document totals",
		`UPDATE sales_documents SET net = $2, tax = $3, total = $4, updated_at = $5 WHERE id = $1`,
		d.ID, d.Net, d.Tax, d.Total, d.UpdatedAt)
}

// UpdateState actualiza el estado del documento.
func (r *DocumentRepo) UpdateState(ctx context.Context, d *entity.SalesDocument) error {
	return r.exec(ctx, "update document state",
		`UPDATE sales_documents SET state = $2, updated_at = $3 WHERE id = $1`,
		d.ID, d.State, d.UpdatedAt)
}

func (r *DocumentRepo) exec(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveLine upsert de la línea; el costo congelado nunca se reescribe.
func (r *DocumentRepo) SaveLine(ctx context.Context, l *entity.DocumentLine) error {
	query := `
		INSERT INTO sales_document_lines (id, document_id, product_id, quantity, unit_price, unit_cost, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET quantity = EXCLUDED.quantity, subtotal = EXCLUDED.subtotal`
	_, err := r.q.Exec(ctx, query, l.ID, l.DocumentID, l.ProductID, l.Quantity, l.UnitPrice, l.UnitCost, l.Subtotal)
	if err != nil {
		return fmt.Errorf("save document line: %w", err)
	}
	return nil
}

// DeleteLine elimina una línea del documento.
func (r *DocumentRepo) DeleteLine(ctx context.Context, lineID string) error {
	return r.exec(ctx, "delete document line", `DELETE FROM sales_document_lines WHERE id = $1`, lineID)
}

// List documentos más recientes primero, sin líneas.
func (r *DocumentRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.SalesDocument, error) {
	var (
		where []string
		args  []any
	)
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("doc_type", f.Type)
	add("state", f.State)
	add("customer_id", f.CustomerID)

	query := `SELECT ` + documentColumns + ` FROM sales_documents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY issued_at DESC, doc_type, folio DESC"
	query, args = paginate(query, args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales documents: %w", err)
	}
	defer rows.Close()
	var list []*entity.SalesDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sales document: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// MarkOverdue pasa a Vencida los documentos Emitida con vencimiento anterior a today.
func (r *DocumentRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	cmd, err := r.q.Exec(ctx, `
		UPDATE sales_documents
		SET state = $1, updated_at = now()
		WHERE state = $2 AND due_date IS NOT NULL AND due_date < $3::date`,
		entity.DocumentStateOverdue, entity.DocumentStateIssued, day,
	)
	if err != nil {
		return 0, fmt.Errorf("mark overdue documents: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// FolioRepo contadores de folio por tipo de documento.
type FolioRepo struct {
	q Querier
}

// NewFolioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFolioRepository(q Querier) *FolioRepo {
	return &FolioRepo{q: q}
}

// Next reserva el siguiente folio del tipo. El upsert bloquea la fila del contador hasta el fin
// de la transacción; el máximo existente cubre documentos cargados fuera del contador.
func (r *FolioRepo) Next(ctx context.Context, docType string, seed int64) (int64, error) {
	const query = `
		INSERT INTO folio_counters (doc_type, last_folio)
		SELECT $1::varchar, COALESCE(MAX(folio) + 1, $2::bigint)
		FROM sales_documents WHERE doc_type = $1::varchar
		ON CONFLICT (doc_type) DO UPDATE
		SET last_folio = GREATEST(
			folio_counters.last_folio,
			COALESCE((SELECT MAX(folio) FROM sales_documents WHERE doc_type = $1::varchar), 0)
		) + 1
		RETURNING last_folio`
	var next int64
	if err := r.q.QueryRow(ctx, query, docType, seed).Scan(&next); err != nil {
		return 0, fmt.Errorf("next folio: %w", err)
	}
	return next, nil
}

// PaymentRepo ledger de pagos (solo inserción).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create registra un pago.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (id, document_id, amount, method, reference, notes, paid_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.DocumentID, p.Amount, p.Method, nullIfEmpty(p.Reference), nullIfEmpty(p.Notes), p.PaidAt, p.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListByDocument pagos del documento en orden de registro.
func (r *PaymentRepo) ListByDocument(ctx context.Context, documentID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, amount, method, reference, notes, paid_at, created_by
		FROM payments WHERE document_id = $1 ORDER BY paid_at, id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var (
			p                entity.Payment
			reference, notes *string
		)
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.Amount, &p.Method, &reference, &notes, &p.PaidAt, &p.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Reference, p.Notes = derefStr(reference), derefStr(notes)
		list = append(list, &p)
	}
	return list, rows.Err()
}
