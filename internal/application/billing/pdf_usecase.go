package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
)

// PDFUseCase genera la representación impresa (PDF) de una boleta o factura.
type PDFUseCase struct {
	documents repository.DocumentRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	payments  repository.PaymentRepository
	generator DocumentPDFGenerator
	issuer    *Issuer
	now       func() time.Time
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	documents repository.DocumentRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	payments repository.PaymentRepository,
	generator DocumentPDFGenerator,
	issuer *Issuer,
) *PDFUseCase {
	return &PDFUseCase{
		documents: documents,
		customers: customers,
		products:  products,
		payments:  payments,
		generator: generator,
		issuer:    issuer,
		now:       time.Now,
	}
}

// DocumentPDF recupera el documento con cliente, líneas y pagos y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el documento o su cliente no existen.
func (uc *PDFUseCase) DocumentPDF(ctx context.Context, documentID string) (pdfBytes []byte, filename string, err error) {
	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener documento: %w", err)
	}
	if doc == nil {
		return nil, "", domain.ErrNotFound
	}

	customer, err := uc.customers.GetByID(ctx, doc.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if customer == nil {
		return nil, "", fmt.Errorf("%w: cliente %s", domain.ErrNotFound, doc.CustomerID)
	}

	lines := make([]DocumentLineForPDF, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		item := DocumentLineForPDF{DocumentLine: *l, ProductName: "Producto " + l.ProductID}
		if product, pErr := uc.products.GetByID(ctx, l.ProductID); pErr == nil && product != nil {
			item.ProductCode = product.Code
			item.ProductName = product.Name
		}
		lines = append(lines, item)
	}

	payments, err := uc.payments.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener pagos: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateDocumentPDF(ctx, DocumentPDFData{
		Document:    doc,
		Customer:    customer,
		Lines:       lines,
		Payments:    payments,
		Summary:     Ledger(doc, payments, uc.issuer.Today(uc.now())),
		CompanyName: uc.issuer.Settings().CompanyName,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("%s_%d.pdf", strings.ToLower(doc.Type), doc.Folio)
	return pdfBytes, filename, nil
}
