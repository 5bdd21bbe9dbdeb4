package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/usecase"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler estadísticas de ventas (solo Administrador).
type ReportHandler struct {
	uc *usecase.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Sales godoc
// @Summary      Reporte de ventas del período (pedidos enviados)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde (YYYY-MM-DD), por defecto inicio de mes"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD), por defecto hoy"
// @Success      200  {object}  dto.SalesReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	var req dto.SalesReportRequest
	if err := bindQuery(c, &req, nil); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SalesReport(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SalesXLSX godoc
// @Summary      Exportar el reporte de ventas a Excel
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {file}  binary
// @Router       /api/reports/sales/export [get]
func (h *ReportHandler) SalesXLSX(c *fiber.Ctx) error {
	var req dto.SalesReportRequest
	if err := bindQuery(c, &req, nil); err != nil {
		return writeError(c, err)
	}
	data, filename, err := h.uc.ExportSalesXLSX(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentTypeXLSX)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
