package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticashop/backoffice-api/internal/application/billing"
	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ordering"
)

// OrderHandler pedidos: carrito, confirmación, envío y emisión del documento.
type OrderHandler struct {
	uc   *ordering.UseCase
	docs *billing.DocumentUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *ordering.UseCase, docs *billing.DocumentUseCase) *OrderHandler {
	return &OrderHandler{uc: uc, docs: docs}
}

// Create godoc
// @Summary      Crear pedido (Borrador) a nombre del usuario autenticado
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Cliente y notas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateOrder(c.UserContext(), GetUserID(c), GetUserName(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        seller_id    query  string  false  "Vendedor"
// @Param        customer_id  query  string  false  "Cliente"
// @Param        status       query  string  false  "Estado"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var f dto.OrderFilter
	if err := bindQuery(c, &f, &f.PageRequest); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddLine godoc
// @Summary      Agregar producto al pedido (descuenta stock)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.AddLineRequest  true  "Producto y cantidad"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines [post]
func (h *OrderHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddLineRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.AddLine(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateLine godoc
// @Summary      Cambiar la cantidad de una línea (0 la elimina)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id         path  string  true  "ID del pedido"
// @Param        productId  path  string  true  "ID del producto"
// @Param        body       body  dto.UpdateLineRequest  true  "Nueva cantidad"
// @Success      200  {object}  dto.OrderResponse
// @Router       /api/orders/{id}/lines/{productId} [put]
func (h *OrderHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.UpdateLineRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.UpdateLine(c.UserContext(), GetUserID(c), c.Params("id"), c.Params("productId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RemoveLine godoc
// @Summary      Quitar producto del pedido (devuelve stock)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id         path  string  true  "ID del pedido"
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.OrderResponse
// @Router       /api/orders/{id}/lines/{productId} [delete]
func (h *OrderHandler) RemoveLine(c *fiber.Ctx) error {
	out, err := h.uc.RemoveLine(c.UserContext(), GetUserID(c), c.Params("id"), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// IssueDocument godoc
// @Summary      Emitir boleta o factura para el pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string  true   "ID del pedido"
// @Param        Idempotency-Key  header  string  false  "Clave de reintento"
// @Param        body             body    dto.IssueDocumentRequest  true  "Tipo, modalidad y datos de factura"
// @Success      201  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/document [post]
func (h *OrderHandler) IssueDocument(c *fiber.Ctx) error {
	var in dto.IssueDocumentRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.docs.IssueDocument(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Confirm godoc
// @Summary      Confirmar pedido (Procesando); emite el documento si falta
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string  true   "ID del pedido"
// @Param        Idempotency-Key  header  string  false  "Clave de reintento"
// @Param        body             body    dto.ConfirmOrderRequest  false  "Documento a emitir"
// @Success      200  {object}  dto.ConfirmOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/confirm [post]
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	var in dto.ConfirmOrderRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return writeError(c, err)
		}
	}
	out, err := h.uc.Confirm(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarkSent godoc
// @Summary      Marcar pedido como Enviado
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/ship [post]
func (h *OrderHandler) MarkSent(c *fiber.Ctx) error {
	out, err := h.uc.MarkSent(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
