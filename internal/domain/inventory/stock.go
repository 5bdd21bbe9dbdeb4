package inventory

import (
	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

// Reserve descuenta qty del stock disponible del producto (reserva optimista al agregar una línea).
// Solo se valida la cantidad adicional; lo ya reservado por la línea no cuenta.
func Reserve(p *entity.Product, qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	if qty > p.Stock {
		return domain.NewInsufficientStock(p.ID, p.Name, qty, p.Stock)
	}
	p.Stock -= qty
	return nil
}

// Release devuelve qty al stock del producto.
func Release(p *entity.Product, qty int64) {
	if qty > 0 {
		p.Stock += qty
	}
}

// VerifyReservations revisa que la cantidad de cada línea no supere el stock actual del
// producto. Detecta ajustes administrativos hechos entre el agregado y la confirmación.
// Todas las líneas con problema se informan en un único error.
func VerifyReservations(lines []*entity.OrderLine, products map[string]*entity.Product) error {
	var shortages []domain.StockShortage
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			return domain.ErrNotFound
		}
		if l.Quantity > p.Stock {
			shortages = append(shortages, domain.StockShortage{
				ProductID: p.ID, ProductName: p.Name, Requested: l.Quantity, Available: p.Stock,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.InsufficientStockError{Shortages: shortages}
	}
	return nil
}
