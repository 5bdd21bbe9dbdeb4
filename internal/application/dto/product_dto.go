package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code        string          `json:"code" validate:"required,min=1,max=50"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int64           `json:"stock" validate:"min=0"`
	MinStock    int64           `json:"min_stock" validate:"min=0"`
	Active      *bool           `json:"active"`
}

// UpdateProductRequest edición administrativa; solo se aplican los campos presentes.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	Stock       *int64           `json:"stock" validate:"omitempty,min=0"`
	MinStock    *int64           `json:"min_stock" validate:"omitempty,min=0"`
	Active      *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int64           `json:"stock"`
	MinStock    int64           `json:"min_stock"`
	LowStock    bool            `json:"low_stock"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// PriceUpdateRow fila de la planilla de actualización masiva (código, costo neto, precio venta).
type PriceUpdateRow struct {
	Row   int             `json:"row"`
	Code  string          `json:"code"`
	Cost  decimal.Decimal `json:"cost"`
	Price decimal.Decimal `json:"price"`
}

// PriceUpdateResult resultado de la actualización masiva.
type PriceUpdateResult struct {
	Updated int              `json:"updated"`
	Errors  []PriceUpdateErr `json:"errors,omitempty"`
}

// PriceUpdateErr error por fila (no detiene el resto).
type PriceUpdateErr struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StockMovementResponse un movimiento de la auditoría de stock.
type StockMovementResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id,omitempty"`
	Quantity   int64     `json:"quantity"`
	StockAfter int64     `json:"stock_after"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
}

// ProductFilter filtros de GET /api/products.
type ProductFilter struct {
	Search   string `query:"search" validate:"max=100"`
	LowStock bool   `query:"low_stock"`
	PageRequest
}
