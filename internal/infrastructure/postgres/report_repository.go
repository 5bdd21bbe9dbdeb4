package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de reportes de ventas sobre PostgreSQL.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// SalesRows pedidos enviados del rango con cliente y documento.
func (r *ReportRepo) SalesRows(ctx context.Context, from, to time.Time) ([]repository.SalesRow, error) {
	const query = `
		SELECT o.id, c.name, c.tax_id, o.seller_name, o.created_at, o.status,
		       COALESCE(d.state, ''), COALESCE(d.total, 0)
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		LEFT JOIN sales_documents d ON d.order_id = o.id
		WHERE o.status = $1 AND o.created_at >= $2 AND o.created_at < $3
		ORDER BY o.created_at DESC, o.id DESC`
	rows, err := r.q.Query(ctx, query, entity.OrderStatusSent, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales rows: %w", err)
	}
	defer rows.Close()
	var list []repository.SalesRow
	for rows.Next() {
		var s repository.SalesRow
		if err := rows.Scan(&s.OrderID, &s.CustomerName, &s.CustomerTaxID, &s.SellerName, &s.Date, &s.Status,
			&s.DocumentState, &s.Total); err != nil {
			return nil, fmt.Errorf("scan sales row: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// SalesMargin ingreso neto y costo congelado de los documentos no anulados del rango.
func (r *ReportRepo) SalesMargin(ctx context.Context, from, to time.Time) (repository.MarginResult, error) {
	const query = `
		SELECT COALESCE(SUM(l.subtotal), 0), COALESCE(SUM(l.quantity * l.unit_cost), 0)
		FROM orders o
		JOIN sales_documents d ON d.order_id = o.id
		JOIN sales_document_lines l ON l.document_id = d.id
		WHERE o.status = $1 AND d.state <> $2 AND o.created_at >= $3 AND o.created_at < $4`
	var res repository.MarginResult
	err := r.q.QueryRow(ctx, query, entity.OrderStatusSent, entity.DocumentStateCancelled, from, to).
		Scan(&res.Revenue, &res.COGS)
	if err != nil {
		return repository.MarginResult{}, fmt.Errorf("sales margin: %w", err)
	}
	return res, nil
}
