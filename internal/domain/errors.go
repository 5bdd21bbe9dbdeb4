package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrDuplicate                = errors.New("recurso duplicado")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrForbidden                = errors.New("acceso denegado")
	ErrConflict                 = errors.New("conflicto con el estado actual")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrOverpaymentRejected      = errors.New("el monto excede el saldo pendiente")
	ErrCannotCancelPaidDocument = errors.New("no se puede anular un documento pagado")
	ErrDuplicateFolio           = errors.New("folio duplicado para el tipo de documento")
	ErrDocumentCancelled        = errors.New("el documento está anulado")
	ErrDocumentAlreadyIssued    = errors.New("el pedido ya tiene un documento asociado")
	ErrOrderLocked              = errors.New("el pedido ya no admite cambios en sus líneas")
	ErrEmptyOrder               = errors.New("el pedido no tiene productos")
)

// StockShortage una línea que no puede cubrirse con el stock disponible.
type StockShortage struct {
	ProductID   string
	ProductName string
	Requested   int64
	Available   int64
}

// InsufficientStockError agrupa todas las líneas sin stock en un solo reporte.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	Shortages []StockShortage
}

// NewInsufficientStock construye el error para una sola línea.
func NewInsufficientStock(productID, name string, requested, available int64) *InsufficientStockError {
	return &InsufficientStockError{Shortages: []StockShortage{{
		ProductID: productID, ProductName: name, Requested: requested, Available: available,
	}}}
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		name := s.ProductName
		if name == "" {
			name = s.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s (solicitado: %d, disponible: %d)", name, s.Requested, s.Available))
	}
	return ErrInsufficientStock.Error() + ": " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
