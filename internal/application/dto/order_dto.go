package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	Notes      string `json:"notes" validate:"max=1000"`
}

// AddLineRequest body para POST /api/orders/:id/lines.
type AddLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
}

// UpdateLineRequest body para PUT /api/orders/:id/lines/:productId (0 elimina la línea).
type UpdateLineRequest struct {
	Quantity int64 `json:"quantity" validate:"min=0"`
}

// ConfirmOrderRequest body opcional para POST /api/orders/:id/confirm.
// Si el pedido no tiene documento se emite con estos datos (por defecto Boleta al contado).
type ConfirmOrderRequest struct {
	Document *IssueDocumentRequest `json:"document,omitempty"`
}

// OrderFilter filtros de listado.
type OrderFilter struct {
	SellerID   string `query:"seller_id"`
	CustomerID string `query:"customer_id"`
	Status     string `query:"status" validate:"omitempty,oneof=Borrador Pendiente Procesando Enviado"`
	PageRequest
}

// OrderLineResponse línea del pedido.
type OrderLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse pedido con líneas y totales calculados.
type OrderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	SellerID   string              `json:"seller_id"`
	SellerName string              `json:"seller_name,omitempty"`
	Status     string              `json:"status"`
	Notes      string              `json:"notes,omitempty"`
	Lines      []OrderLineResponse `json:"lines"`
	Net        decimal.Decimal     `json:"net"`
	Tax        decimal.Decimal     `json:"tax"`
	Total      decimal.Decimal     `json:"total"`
	DocumentID string              `json:"document_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// ConfirmOrderResponse pedido confirmado y su documento.
type ConfirmOrderResponse struct {
	Order    OrderResponse    `json:"order"`
	Document DocumentResponse `json:"document"`
}
