package billing

import (
	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

// ToDocumentResponse convierte el documento; withLines incluye el detalle.
func ToDocumentResponse(d *entity.SalesDocument, withLines bool) *dto.DocumentResponse {
	if d == nil {
		return nil
	}
	out := &dto.DocumentResponse{
		ID:            d.ID,
		Type:          d.Type,
		Folio:         d.Folio,
		OrderID:       d.OrderID,
		CustomerID:    d.CustomerID,
		SellerID:      d.SellerID,
		Net:           d.Net,
		Tax:           d.Tax,
		Total:         d.Total,
		State:         d.State,
		IssuedAt:      d.IssuedAt,
		PaymentMethod: d.PaymentMethod,
		LegalName:     d.LegalName,
		TaxID:         d.TaxID,
		BusinessLine:  d.BusinessLine,
		Address:       d.Address,
		City:          d.City,
		District:      d.District,
	}
	if d.DueDate != nil {
		due := d.DueDate.Format("2006-01-02")
		out.DueDate = &due
	}
	if withLines {
		out.Lines = make([]dto.DocumentLineResponse, 0, len(d.Lines))
		for _, l := range d.Lines {
			out.Lines = append(out.Lines, dto.DocumentLineResponse{
				ID:        l.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				UnitCost:  l.UnitCost,
				Subtotal:  l.Subtotal,
			})
		}
	}
	return out
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:         p.ID,
		DocumentID: p.DocumentID,
		Amount:     p.Amount,
		Method:     p.Method,
		Reference:  p.Reference,
		Notes:      p.Notes,
		PaidAt:     p.PaidAt,
		CreatedBy:  p.CreatedBy,
	}
}
