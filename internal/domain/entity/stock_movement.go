package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeReserve    = "RESERVE"    // línea agregada o aumentada
	MovementTypeRelease    = "RELEASE"    // línea eliminada o disminuida
	MovementTypeAdjustment = "ADJUSTMENT" // edición administrativa
)

// StockMovement registro de auditoría de cada cambio de stock.
// Quantity es negativa para reservas y positiva para devoluciones.
type StockMovement struct {
	ID         string
	ProductID  string
	OrderID    string // vacío en ajustes administrativos
	Type       string
	Quantity   int64
	StockAfter int64
	CreatedAt  time.Time
	CreatedBy  string
}
