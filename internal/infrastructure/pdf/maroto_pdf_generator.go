// Package pdf genera la representación impresa de boletas y facturas.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa             │  TIPO + N° folio + Fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Razón social / RUT / giro / dirección             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Código | Descripción | P.Unit | Subtotal      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Neto / IVA / TOTAL                                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ESTADO DE PAGO: estado, pagado, saldo + QR de referencia    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/ticashop/backoffice-api/internal/application/billing"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/pkg/money"
)

var _ appbilling.DocumentPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.DocumentPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDocumentPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDocumentPDF(_ context.Context, data appbilling.DocumentPDFData) ([]byte, error) {
	doc := data.Document
	if doc == nil || data.Customer == nil {
		return nil, fmt.Errorf("pdf: documento o cliente vacío")
	}
	company := nonEmpty(data.CompanyName, "Ticashop")

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("%s N° %d", doc.Type, doc.Folio), true).
		WithAuthor(company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(doc, data.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(data.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(paymentRows(data)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y tipo, folio y fecha (der).
func headerRow(doc *entity.SalesDocument, company string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New(strings.ToUpper(doc.Type)+" ELECTRÓNICA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %d", doc.Folio), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+doc.IssuedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: en facturas usa los datos tributarios del documento; en boletas, los del cliente.
func customerRow(doc *entity.SalesDocument, customer *entity.Customer) core.Row {
	name, taxID := customer.Name, customer.TaxID
	detail := fmt.Sprintf("Email: %s   |   Tel: %s", nonEmpty(customer.Email, "-"), nonEmpty(customer.Phone, "-"))
	if doc.Type == entity.DocumentTypeFactura {
		name, taxID = nonEmpty(doc.LegalName, name), nonEmpty(doc.TaxID, taxID)
		detail = fmt.Sprintf("Giro: %s   |   %s, %s, %s",
			nonEmpty(doc.BusinessLine, "-"),
			nonEmpty(doc.Address, "-"),
			nonEmpty(doc.District, "-"),
			nonEmpty(doc.City, "-"),
		)
	}
	return row.New(18).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("RUT: "+taxID, props.Text{Size: 8, Top: 11}),
			text.New(detail, props.Text{Size: 8, Top: 15, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Código", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea del documento.
func tableDetailRows(lines []appbilling.DocumentLineForPDF) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.ProductCode, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money.CLP(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money.CLP(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: neto, IVA y total alineados a la derecha.
func totalsRow(doc *entity.SalesDocument) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Neto:", 1),
			label("IVA:", 6),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 12}),
		),
		col.New(3).Add(
			value(money.CLP(doc.Net), 1),
			value(money.CLP(doc.Tax), 6),
			text.New(money.CLP(doc.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 12}),
		),
	)
}

// paymentRows: estado del ledger, pagos registrados y QR con la referencia del documento.
func paymentRows(data appbilling.DocumentPDFData) []core.Row {
	doc, sum := data.Document, data.Summary
	stateColor := colorPrimary
	if doc.Cancelled() || sum.Overdue || doc.State == entity.DocumentStateOverdue {
		stateColor = colorAlert
	}
	due := "-"
	if doc.DueDate != nil {
		due = doc.DueDate.Format("02/01/2006")
	}

	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("ESTADO DE PAGO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
		row.New(30).Add(
			col.New(8).Add(
				text.New(doc.State, props.Text{Style: fontstyle.Bold, Size: 11, Color: stateColor, Top: 1}),
				text.New("Medio de pago: "+doc.PaymentMethod, props.Text{Size: 8, Top: 8}),
				text.New("Vencimiento: "+due, props.Text{Size: 8, Top: 13}),
				text.New(fmt.Sprintf("Pagado: %s   |   Saldo: %s   |   %s",
					money.CLP(sum.TotalPaid), money.CLP(sum.Outstanding), money.Percent(sum.PercentPaid),
				), props.Text{Size: 8, Top: 18, Color: colorGray}),
			),
			col.New(4).Add(code.NewQr(qrReference(doc), props.Rect{Percent: 90, Center: true})),
		),
	}
	for _, p := range data.Payments {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%s   %s   %s   %s",
				p.PaidAt.Format("02/01/2006"), p.Method, money.CLP(p.Amount), p.Reference,
			), props.Text{Size: 7, Color: colorGray, Left: 2}),
		)))
	}
	return rows
}

// qrReference contenido del QR: tipo, folio, total y fecha de emisión.
func qrReference(doc *entity.SalesDocument) string {
	return fmt.Sprintf("%s|%d|%s|%s", doc.Type, doc.Folio, doc.Total.StringFixed(0), doc.IssuedAt.Format("2006-01-02"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
