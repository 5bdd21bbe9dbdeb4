package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
)

func TestStore_RunRollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Repos().Products.Create(ctx, &entity.Product{ID: "p1", Code: "A1", Stock: 10}))

	boom := errors.New("boom")
	err := s.Run(ctx, func(r ports.Repos) error {
		require.NoError(t, r.Products.UpdateStock(ctx, "p1", 3))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Repos().Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Stock)

	require.NoError(t, s.Run(ctx, func(r ports.Repos) error {
		return r.Products.UpdateStock(ctx, "p1", 3)
	}))
	p, _ = s.Repos().Products.GetByID(ctx, "p1")
	assert.Equal(t, int64(3), p.Stock)
}

func TestStore_LecturasDevuelvenCopias(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Repos().Products.Create(ctx, &entity.Product{ID: "p1", Code: "A1", Stock: 10}))

	p, _ := s.Repos().Products.GetByID(ctx, "p1")
	p.Stock = 0

	again, _ := s.Repos().Products.GetByID(ctx, "p1")
	assert.Equal(t, int64(10), again.Stock)
}

func TestProductRepo_CodigoUnico(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p1", Code: "A1"}))
	assert.ErrorIs(t, repos.Products.Create(ctx, &entity.Product{ID: "p2", Code: "A1"}), domain.ErrDuplicate)
	assert.ErrorIs(t, repos.Products.UpdateStock(ctx, "p1", -1), domain.ErrInsufficientStock)
}

func TestProductRepo_StockNoNegativo(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()
	assert.ErrorIs(t, repos.Products.Create(ctx, &entity.Product{ID: "p0", Code: "A0", Stock: -1}), domain.ErrInvalidInput)

	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p1", Code: "A1", Stock: 4}))
	p, err := repos.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	p.Stock = -1
	assert.ErrorIs(t, repos.Products.Update(ctx, p), domain.ErrInvalidInput)

	p, err = repos.Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.Stock)
}

func TestFolioRepo_SeriesIndependientes(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()

	next := func(docType string) int64 {
		f, err := repos.Folios.Next(ctx, docType, 1000)
		require.NoError(t, err)
		return f
	}
	assert.Equal(t, int64(1000), next(entity.DocumentTypeBoleta))
	assert.Equal(t, int64(1000), next(entity.DocumentTypeFactura))
	assert.Equal(t, int64(1001), next(entity.DocumentTypeBoleta))
}

func TestFolioRepo_SeSincronizaConDocumentosExistentes(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()
	require.NoError(t, repos.Documents.Create(ctx, &entity.SalesDocument{ID: "d1", Type: entity.DocumentTypeBoleta, Folio: 1500}))

	f, err := repos.Folios.Next(ctx, entity.DocumentTypeBoleta, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1501), f)
}

func TestDocumentRepo_Unicidad(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()
	require.NoError(t, repos.Documents.Create(ctx, &entity.SalesDocument{ID: "d1", Type: entity.DocumentTypeBoleta, Folio: 1000, OrderID: "o1"}))

	err := repos.Documents.Create(ctx, &entity.SalesDocument{ID: "d2", Type: entity.DocumentTypeBoleta, Folio: 1000, OrderID: "o2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateFolio)

	err = repos.Documents.Create(ctx, &entity.SalesDocument{ID: "d3", Type: entity.DocumentTypeFactura, Folio: 1000, OrderID: "o1"})
	assert.ErrorIs(t, err, domain.ErrDocumentAlreadyIssued)
}

func TestDocumentRepo_MarkOverdue(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()
	today := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	docs := []*entity.SalesDocument{
		{ID: "vencido", Type: "Boleta", Folio: 1, State: entity.DocumentStateIssued, DueDate: &yesterday},
		{ID: "vence-hoy", Type: "Boleta", Folio: 2, State: entity.DocumentStateIssued, DueDate: &today},
		{ID: "parcial", Type: "Boleta", Folio: 3, State: entity.DocumentStatePartial, DueDate: &yesterday},
		{ID: "sin-plazo", Type: "Boleta", Folio: 4, State: entity.DocumentStateIssued},
	}
	for _, d := range docs {
		require.NoError(t, repos.Documents.Create(ctx, d))
	}

	n, err := repos.Documents.MarkOverdue(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	d, _ := repos.Documents.GetByID(ctx, "vencido")
	assert.Equal(t, entity.DocumentStateOverdue, d.State)
	d, _ = repos.Documents.GetByID(ctx, "parcial")
	assert.Equal(t, entity.DocumentStatePartial, d.State)
}

func TestReportRepo_MargenConCostoCongelado(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repos := s.Repos()
	created := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Ferretería Sur", TaxID: "76.111.111-1"}))
	require.NoError(t, repos.Orders.Create(ctx, &entity.Order{ID: "o1", CustomerID: "c1", SellerName: "Ana", Status: entity.OrderStatusSent, CreatedAt: created}))
	require.NoError(t, repos.Orders.Create(ctx, &entity.Order{ID: "o2", CustomerID: "c1", Status: entity.OrderStatusProcessing, CreatedAt: created}))
	require.NoError(t, repos.Documents.Create(ctx, &entity.SalesDocument{
		ID: "d1", Type: "Boleta", Folio: 1000, OrderID: "o1", State: entity.DocumentStatePaid,
		Total: decimal.NewFromInt(11900),
		Lines: []*entity.DocumentLine{{ID: "l1", Quantity: 2, UnitPrice: decimal.NewFromInt(5000), UnitCost: decimal.NewFromInt(3000), Subtotal: decimal.NewFromInt(10000)}},
	}))

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rows, err := s.Reports().SalesRows(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ferretería Sur", rows[0].CustomerName)
	assert.Equal(t, "Ana", rows[0].SellerName)
	assert.True(t, rows[0].Total.Equal(decimal.NewFromInt(11900)))

	m, err := s.Reports().SalesMargin(ctx, from, to)
	require.NoError(t, err)
	assert.True(t, m.Revenue.Equal(decimal.NewFromInt(10000)))
	assert.True(t, m.COGS.Equal(decimal.NewFromInt(6000)))
}
