package repository

import (
	"context"

	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

// OrderFilter criterios de listado de pedidos.
type OrderFilter struct {
	SellerID   string
	CustomerID string
	Status     string
	Limit      int
	Offset     int
}

// OrderRepository persistencia de pedidos y sus líneas.
// Las lecturas incluyen las líneas en orden de creación.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila del pedido (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, order *entity.Order) error
	// SaveLine inserta o actualiza la línea (una por producto).
	SaveLine(ctx context.Context, line *entity.OrderLine) error
	DeleteLine(ctx context.Context, lineID string) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
}
