package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo auditoría de stock sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento de stock.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, order_id, type, quantity, stock_after, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, nullIfEmpty(m.OrderID), m.Type, m.Quantity, m.StockAfter, m.CreatedAt, nullIfEmpty(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByProduct movimientos del producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query, args := paginate(`
		SELECT id, product_id, order_id, type, quantity, stock_after, created_at, created_by
		FROM stock_movements WHERE product_id = $1
		ORDER BY created_at DESC, id DESC`, []any{productID}, limit, offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var (
			m                  entity.StockMovement
			orderID, createdBy *string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &orderID, &m.Type, &m.Quantity, &m.StockAfter, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.OrderID, m.CreatedBy = derefStr(orderID), derefStr(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
