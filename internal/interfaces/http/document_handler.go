package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticashop/backoffice-api/internal/application/billing"
	"github.com/ticashop/backoffice-api/internal/application/dto"
)

// DocumentHandler boletas/facturas y su ledger de pagos.
type DocumentHandler struct {
	uc  *billing.DocumentUseCase
	pdf *billing.PDFUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *billing.DocumentUseCase, pdf *billing.PDFUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc, pdf: pdf}
}

// Get godoc
// @Summary      Obtener documento con sus líneas
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetDocument(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        type         query  string  false  "Boleta | Factura"
// @Param        state        query  string  false  "Estado"
// @Param        customer_id  query  string  false  "Cliente"
// @Success      200  {object}  dto.DocumentListResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var f dto.DocumentFilter
	if err := bindQuery(c, &f, &f.PageRequest); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListDocuments(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Estado de pago: pagos, saldo, porcentaje pagado y vencimiento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentSummaryResponse
// @Router       /api/documents/{id}/summary [get]
func (h *DocumentHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RegisterPayment godoc
// @Summary      Registrar un abono
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string  true   "ID del documento"
// @Param        Idempotency-Key  header  string  false  "Clave de reintento"
// @Param        body             body    dto.RegisterPaymentRequest  true  "Monto y medio de pago"
// @Success      201  {object}  dto.DocumentSummaryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/payments [post]
func (h *DocumentHandler) RegisterPayment(c *fiber.Ctx) error {
	var in dto.RegisterPaymentRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RegisterPayment(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListPayments godoc
// @Summary      Pagos del documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {array}  dto.PaymentResponse
// @Router       /api/documents/{id}/payments [get]
func (h *DocumentHandler) ListPayments(c *fiber.Ctx) error {
	out, err := h.uc.ListPayments(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Anular documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Descargar el documento en PDF
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/pdf [get]
func (h *DocumentHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.DocumentPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// RefreshOverdue godoc
// @Summary      Marcar como Vencida los documentos emitidos con vencimiento pasado
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RefreshOverdueResponse
// @Router       /api/documents/refresh-overdue [post]
func (h *DocumentHandler) RefreshOverdue(c *fiber.Ctx) error {
	n, err := h.uc.RefreshOverdue(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RefreshOverdueResponse{Updated: n})
}
