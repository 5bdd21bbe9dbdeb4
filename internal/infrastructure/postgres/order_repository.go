package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, customer_id, seller_id, seller_name, status, notes, created_at, updated_at`

// OrderRepo pedidos y líneas sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera y las líneas que traiga el pedido.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.CustomerID, o.SellerID, o.SellerName, o.Status, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	for _, l := range o.Lines {
		if err := r.SaveLine(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	if err := row.Scan(&o.ID, &o.CustomerID, &o.SellerID, &o.SellerName, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) get(ctx context.Context, op, query, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.loadLines(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID obtiene el pedido con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, "get order", `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate obtiene el pedido y bloquea la fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, "get order for update", `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

// loadLines carga las líneas de los pedidos en una sola consulta.
func (r *OrderRepo) loadLines(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal
		FROM order_lines WHERE order_id = ANY($1) ORDER BY line_no`, ids)
	if err != nil {
		return fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		o := byID[l.OrderID]
		o.Lines = append(o.Lines, &l)
	}
	return rows.Err()
}

// UpdateStatus actualiza estado y updated_at.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	cmd, err := r.q.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, o.ID, o.Status, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveLine upsert por id de línea; (pedido, producto) es único.
func (r *OrderRepo) SaveLine(ctx context.Context, l *entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET quantity = EXCLUDED.quantity, unit_price = EXCLUDED.unit_price, subtotal = EXCLUDED.subtotal`
	_, err := r.q.Exec(ctx, query, l.ID, l.OrderID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("save order line: %w", err)
	}
	return nil
}

// DeleteLine elimina la línea.
func (r *OrderRepo) DeleteLine(ctx context.Context, lineID string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM order_lines WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("delete order line: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List pedidos más recientes primero, con sus líneas.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
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
	add("seller_id", f.SellerID)
	add("customer_id", f.CustomerID)
	add("status", f.Status)

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	query, args = paginate(query, args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}
