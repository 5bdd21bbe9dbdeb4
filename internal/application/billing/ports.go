package billing

import (
	"context"

	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

// DocumentLineForPDF línea del documento con el nombre del producto.
type DocumentLineForPDF struct {
	entity.DocumentLine
	ProductCode string
	ProductName string
}

// DocumentPDFData todo lo que necesita el generador para imprimir un documento.
type DocumentPDFData struct {
	Document    *entity.SalesDocument
	Customer    *entity.Customer
	Lines       []DocumentLineForPDF
	Payments    []*entity.Payment
	Summary     LedgerSummary
	CompanyName string
}

// DocumentPDFGenerator puerto de salida para la representación impresa de boletas y facturas.
type DocumentPDFGenerator interface {
	GenerateDocumentPDF(ctx context.Context, data DocumentPDFData) ([]byte, error)
}
