package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorMapping status y código por error de dominio; el orden importa (primer match gana).
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrEmptyOrder, fiber.StatusBadRequest, "EMPTY_ORDER"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrOverpaymentRejected, fiber.StatusUnprocessableEntity, "OVERPAYMENT_REJECTED"},
	{domain.ErrCannotCancelPaidDocument, fiber.StatusConflict, "CANNOT_CANCEL_PAID"},
	{domain.ErrDocumentCancelled, fiber.StatusConflict, "DOCUMENT_CANCELLED"},
	{domain.ErrDocumentAlreadyIssued, fiber.StatusConflict, "DOCUMENT_ALREADY_ISSUED"},
	{domain.ErrOrderLocked, fiber.StatusConflict, "ORDER_LOCKED"},
	{domain.ErrDuplicateFolio, fiber.StatusConflict, "DUPLICATE_FOLIO"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// stockErrorResponse detalle de las líneas sin stock.
type stockErrorResponse struct {
	dto.ErrorResponse
	Shortages []domain.StockShortage `json:"shortages"`
}

// writeError traduce el error de dominio al status y cuerpo HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return badRequest(c, reqErr.code, reqErr.msg)
	}
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(stockErrorResponse{
			ErrorResponse: dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()},
			Shortages:     stockErr.Shortages,
		})
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// requestError cuerpo o parámetros inválidos; siempre 400.
type requestError struct {
	code string
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// bindBody decodifica el JSON y corre las reglas validate de la estructura.
func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{code: "INVALID_BODY", msg: "cuerpo inválido"}
	}
	return validateStruct(out)
}

// bindQuery igual que bindBody para la query; page (opcional) se normaliza antes de validar.
func bindQuery(c *fiber.Ctx, out any, page *dto.PageRequest) error {
	if err := c.QueryParser(out); err != nil {
		return &requestError{code: "INVALID_QUERY", msg: "parámetros inválidos"}
	}
	if page != nil {
		page.DefaultPage()
		if page.Limit > 100 {
			page.Limit = 100
		}
	}
	return validateStruct(out)
}

func validateStruct(out any) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
		}
		return &requestError{code: "VALIDATION", msg: "campos inválidos: " + strings.Join(fields, ", ")}
	}
	return &requestError{code: "VALIDATION", msg: err.Error()}
}
