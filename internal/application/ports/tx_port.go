package ports

import (
	"context"

	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Products  repository.ProductRepository
	Customers repository.CustomerRepository
	Orders    repository.OrderRepository
	Documents repository.DocumentRepository
	Folios    repository.FolioRepository
	Payments  repository.PaymentRepository
	Movements repository.StockMovementRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
