package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/domain"
)

type fakePDF struct {
	got DocumentPDFData
	err error
}

func (f *fakePDF) GenerateDocumentPDF(_ context.Context, data DocumentPDFData) ([]byte, error) {
	f.got = data
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4"), nil
}

func TestDocumentPDF(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	doc := f.issue(t, 2, installments(30))
	_, err := f.uc.RegisterPayment(f.ctx, "u1", doc.ID, dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	gen := &fakePDF{}
	uc := NewPDFUseCase(f.repos.Documents, f.repos.Customers, f.repos.Products, f.repos.Payments, gen, NewIssuer(DefaultSettings(), nil, nil))

	data, name, err := uc.DocumentPDF(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
	assert.Equal(t, "boleta_1000.pdf", name)
	assert.Equal(t, "Comercial Andes", gen.got.Customer.Name)
	require.Len(t, gen.got.Lines, 1)
	assert.Equal(t, "Teclado", gen.got.Lines[0].ProductName)
	assert.Equal(t, "TEC-01", gen.got.Lines[0].ProductCode)
	assert.Len(t, gen.got.Payments, 1)
	assert.True(t, gen.got.Summary.Outstanding.Equal(decimal.NewFromInt(6900)))

	_, _, err = uc.DocumentPDF(f.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	gen.err = errors.New("fuente no disponible")
	_, _, err = uc.DocumentPDF(f.ctx, doc.ID)
	assert.Error(t, err)
}

func TestCustomerUseCase(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	uc := NewCustomerUseCase(f.repos.Customers)

	created, err := uc.Create(f.ctx, dto.CreateCustomerRequest{Name: "  Ferretería Sur ", TaxID: "12.345.678-5"})
	require.NoError(t, err)
	assert.Equal(t, "Ferretería Sur", created.Name)

	_, err = uc.Create(f.ctx, dto.CreateCustomerRequest{Name: "Otra", TaxID: "12.345.678-5"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(f.ctx, dto.CreateCustomerRequest{Name: "", TaxID: "1-9"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.345.678-5", got.TaxID)
	_, err = uc.GetByID(f.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(f.ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = uc.List(f.ctx, "sur", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}
