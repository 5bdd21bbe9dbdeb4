package repository

import (
	"context"

	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

// ProductFilter criterios de listado del catálogo.
type ProductFilter struct {
	Search       string // nombre contiene (sin distinguir mayúsculas)
	LowStockOnly bool
	ActiveOnly   bool
	Limit        int
	Offset       int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetByCode devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetForUpdate obtiene el producto y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, productID string, stock int64) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
}
