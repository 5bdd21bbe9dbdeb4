package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// ReportUseCase estadísticas de ventas de pedidos enviados y su exportación a Excel.
type ReportUseCase struct {
	repo  repository.ReportRepository
	sheet ports.SalesSheetWriter
	loc   *time.Location
	now   func() time.Time
}

// NewReportUseCase construye el caso de uso. loc es la zona horaria de las fechas del rango.
func NewReportUseCase(repo repository.ReportRepository, sheet ports.SalesSheetWriter, loc *time.Location) *ReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportUseCase{repo: repo, sheet: sheet, loc: loc, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// SalesReport filas, conteo, monto total y margen bruto del período.
func (uc *ReportUseCase) SalesReport(ctx context.Context, req dto.SalesReportRequest) (*dto.SalesReportResponse, error) {
	from, to, err := uc.parsePeriod(req.From, req.To)
	if err != nil {
		return nil, err
	}

	// Filas y margen son consultas independientes.
	type rowsResult struct {
		rows []repository.SalesRow
		err  error
	}
	type marginResult struct {
		margin repository.MarginResult
		err    error
	}
	rowsChan := make(chan rowsResult, 1)
	marginChan := make(chan marginResult, 1)
	go func() {
		rows, err := uc.repo.SalesRows(ctx, from, to)
		rowsChan <- rowsResult{rows, err}
	}()
	go func() {
		m, err := uc.repo.SalesMargin(ctx, from, to)
		marginChan <- marginResult{m, err}
	}()
	rowsRes := <-rowsChan
	marginRes := <-marginChan
	if rowsRes.err != nil {
		return nil, fmt.Errorf("reporte: ventas: %w", rowsRes.err)
	}
	if marginRes.err != nil {
		return nil, fmt.Errorf("reporte: margen: %w", marginRes.err)
	}

	out := &dto.SalesReportResponse{
		From:        from.Format(dateLayout),
		To:          to.AddDate(0, 0, -1).Format(dateLayout),
		Rows:        make([]dto.SalesReportRow, 0, len(rowsRes.rows)),
		TotalAmount: decimal.Zero,
	}
	for _, r := range rowsRes.rows {
		out.Rows = append(out.Rows, dto.SalesReportRow{
			OrderID:       r.OrderID,
			Customer:      r.CustomerName,
			TaxID:         r.CustomerTaxID,
			Seller:        r.SellerName,
			Date:          r.Date,
			Status:        r.Status,
			DocumentState: r.DocumentState,
			Total:         r.Total,
		})
		out.TotalAmount = out.TotalAmount.Add(r.Total)
	}
	out.SalesCount = len(out.Rows)

	m := marginRes.margin
	out.Revenue = m.Revenue
	out.COGS = m.COGS
	out.GrossMargin = m.Revenue.Sub(m.COGS)
	out.MarginPct = decimal.Zero
	if m.Revenue.IsPositive() {
		out.MarginPct = out.GrossMargin.Div(m.Revenue).Mul(hundred).Round(2)
	}
	return out, nil
}

// ExportSalesXLSX mismas filas del reporte como libro Excel.
func (uc *ReportUseCase) ExportSalesXLSX(ctx context.Context, req dto.SalesReportRequest) ([]byte, string, error) {
	report, err := uc.SalesReport(ctx, req)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.sheet.WriteSales(report.Rows)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: exportar: %w", err)
	}
	return data, fmt.Sprintf("ventas_%s_%s.xlsx", report.From, report.To), nil
}

// parsePeriod devuelve el rango semiabierto [from, to+1 día). Sin from usa el primer día
// del mes actual; sin to, hoy.
func (uc *ReportUseCase) parsePeriod(fromStr, toStr string) (from, to time.Time, err error) {
	now := uc.now().In(uc.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)

	if toStr == "" {
		to = today
	} else if to, err = time.ParseInLocation(dateLayout, toStr, uc.loc); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: fecha hasta %q", domain.ErrInvalidInput, toStr)
	}
	if fromStr == "" {
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, uc.loc)
	} else if from, err = time.ParseInLocation(dateLayout, fromStr, uc.loc); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: fecha desde %q", domain.ErrInvalidInput, fromStr)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: la fecha desde es posterior a la fecha hasta", domain.ErrInvalidInput)
	}
	return from, to.AddDate(0, 0, 1), nil
}
