package billing

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticashop/backoffice-api/internal/application/dto"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/domain"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/domain/sales"
	"github.com/ticashop/backoffice-api/internal/infrastructure/memory"
)

type billingFixture struct {
	ctx   context.Context
	store *memory.Store
	repos ports.Repos
	uc    *DocumentUseCase
	now   time.Time
}

func newBillingFixture(t *testing.T, settings Settings) *billingFixture {
	t.Helper()
	f := &billingFixture{
		ctx:   context.Background(),
		store: memory.NewStore(),
		now:   time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC),
	}
	f.repos = f.store.Repos()
	f.uc = NewDocumentUseCase(f.store, f.repos, NewIssuer(settings, nil, nil), nil, nil).
		WithClock(func() time.Time { return f.now })

	require.NoError(t, f.repos.Customers.Create(f.ctx, &entity.Customer{ID: "c1", Name: "Comercial Andes", TaxID: "76.543.210-K"}))
	require.NoError(t, f.repos.Products.Create(f.ctx, &entity.Product{
		ID: "p1", Code: "TEC-01", Name: "Teclado", Price: decimal.NewFromInt(5000), Cost: decimal.NewFromInt(3000), Stock: 100, Active: true,
	}))
	return f
}

// order crea un pedido en Borrador con qty unidades de p1 a 5000.
func (f *billingFixture) order(t *testing.T, qty int64) string {
	t.Helper()
	id := uuid.New().String()
	line := &entity.OrderLine{ID: uuid.New().String(), OrderID: id, ProductID: "p1", Quantity: qty, UnitPrice: decimal.NewFromInt(5000)}
	line.Recalc()
	require.NoError(t, f.repos.Orders.Create(f.ctx, &entity.Order{
		ID: id, CustomerID: "c1", SellerID: "u1", Status: entity.OrderStatusDraft,
		Lines: []*entity.OrderLine{line}, CreatedAt: f.now,
	}))
	return id
}

func installments(days int) dto.IssueDocumentRequest {
	return dto.IssueDocumentRequest{Type: entity.DocumentTypeBoleta, Modality: sales.ModalityInstallments, TermDays: days}
}

func (f *billingFixture) issue(t *testing.T, qty int64, in dto.IssueDocumentRequest) *dto.DocumentResponse {
	t.Helper()
	doc, err := f.uc.IssueDocument(f.ctx, "u1", f.order(t, qty), in)
	require.NoError(t, err)
	return doc
}

func TestIssue_FoliosPorTipoIndependientes(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	factura := dto.IssueDocumentRequest{Type: entity.DocumentTypeFactura, LegalName: "Andes SpA", TaxID: "76.543.210-K"}

	var boletas []int64
	boletas = append(boletas, f.issue(t, 1, installments(30)).Folio)
	assert.Equal(t, int64(1000), f.issue(t, 1, factura).Folio)
	boletas = append(boletas, f.issue(t, 1, installments(30)).Folio)
	assert.Equal(t, int64(1001), f.issue(t, 1, factura).Folio)
	boletas = append(boletas, f.issue(t, 1, installments(30)).Folio)

	assert.Equal(t, []int64{1000, 1001, 1002}, boletas)
}

func TestIssue_FoliosConcurrentesSinHuecosNiDuplicados(t *testing.T) {
	const n = 20
	f := newBillingFixture(t, DefaultSettings())
	orders := make([]string, n)
	for i := range orders {
		orders[i] = f.order(t, 1)
	}

	var wg sync.WaitGroup
	folios := make(chan int64, n)
	errs := make(chan error, n)
	for _, id := range orders {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			doc, err := f.uc.IssueDocument(f.ctx, "u1", orderID, installments(30))
			if err != nil {
				errs <- err
				return
			}
			folios <- doc.Folio
		}(id)
	}
	wg.Wait()
	close(folios)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	var got []int64
	for folio := range folios {
		got = append(got, folio)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := make([]int64, n)
	for i := range want {
		want[i] = 1000 + int64(i)
	}
	assert.Equal(t, want, got)
}

func TestIssue_TotalesYLineasCongeladas(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	doc := f.issue(t, 2, installments(30))

	assert.True(t, doc.Net.Equal(decimal.NewFromInt(10000)))
	assert.True(t, doc.Tax.Equal(decimal.NewFromInt(1900)))
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(11900)))
	require.Len(t, doc.Lines, 1)
	assert.True(t, doc.Lines[0].UnitCost.Equal(decimal.NewFromInt(3000)))

	p, _ := f.repos.Products.GetByID(f.ctx, "p1")
	p.Cost = decimal.NewFromInt(9999)
	p.Price = decimal.NewFromInt(9999)
	require.NoError(t, f.repos.Products.Update(f.ctx, p))

	again, err := f.uc.GetDocument(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, again.Lines[0].UnitCost.Equal(decimal.NewFromInt(3000)))
	assert.True(t, again.Lines[0].UnitPrice.Equal(decimal.NewFromInt(5000)))
}

func TestIssue_TasaConfigurable(t *testing.T) {
	settings := DefaultSettings()
	settings.TaxRate = decimal.RequireFromString("0.10")
	f := newBillingFixture(t, settings)

	doc := f.issue(t, 2, installments(30))
	assert.True(t, doc.Tax.Equal(decimal.NewFromInt(1000)))
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(11000)))
}

func TestIssue_Modalidades(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())

	doc := f.issue(t, 1, installments(45))
	assert.Equal(t, entity.DocumentStateIssued, doc.State)
	require.NotNil(t, doc.DueDate)
	assert.Equal(t, "2024-06-24", *doc.DueDate)

	doc = f.issue(t, 1, dto.IssueDocumentRequest{Type: entity.DocumentTypeBoleta})
	assert.Equal(t, entity.DocumentStatePaid, doc.State)
	assert.Nil(t, doc.DueDate)

	settings := DefaultSettings()
	settings.PayNowPolicy = sales.PayNowDueToday
	g := newBillingFixture(t, settings)
	doc = g.issue(t, 1, dto.IssueDocumentRequest{Type: entity.DocumentTypeBoleta})
	assert.Equal(t, entity.DocumentStateIssued, doc.State)
	require.NotNil(t, doc.DueDate)
	assert.Equal(t, "2024-05-10", *doc.DueDate)
}

func TestIssue_ValidacionesYUnicidad(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())

	_, err := f.uc.IssueDocument(f.ctx, "u1", f.order(t, 1), dto.IssueDocumentRequest{Type: entity.DocumentTypeFactura})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.IssueDocument(f.ctx, "u1", f.order(t, 1), installments(20))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.IssueDocument(f.ctx, "u1", "no-existe", installments(30))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	orderID := f.order(t, 1)
	doc, err := f.uc.IssueDocument(f.ctx, "u1", orderID, dto.IssueDocumentRequest{
		Type: entity.DocumentTypeBoleta, LegalName: "ignorado", TaxID: "1-9",
	})
	require.NoError(t, err)
	assert.Empty(t, doc.LegalName, "los datos de factura se descartan en boletas")
	assert.Equal(t, entity.PaymentMethodCash, doc.PaymentMethod)

	_, err = f.uc.IssueDocument(f.ctx, "u1", orderID, installments(30))
	assert.ErrorIs(t, err, domain.ErrDocumentAlreadyIssued)

	o, _ := f.repos.Orders.GetByID(f.ctx, orderID)
	assert.Equal(t, entity.OrderStatusPending, o.Status)
}

func TestPagos_TransicionesDeEstado(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	doc := f.issue(t, 2, installments(30))

	sum, err := f.uc.RegisterPayment(f.ctx, "u1", doc.ID, dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatePartial, sum.Document.State)
	assert.True(t, sum.Outstanding.Equal(decimal.NewFromInt(6900)))
	assert.Equal(t, "42.02", sum.PercentPaid.StringFixed(2))
	assert.Equal(t, entity.PaymentMethodCash, sum.Payments[0].Method)

	sum, err = f.uc.RegisterPayment(f.ctx, "u1", doc.ID, dto.RegisterPaymentRequest{
		Amount: decimal.NewFromInt(6900), Method: entity.PaymentMethodTransfer, Reference: "TRX-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatePaid, sum.Document.State)
	assert.True(t, sum.Outstanding.IsZero())
	assert.Len(t, sum.Payments, 2)
}

func TestPagos_SobrepagoRechazadoSinRegistro(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	doc := f.issue(t, 2, installments(30))

	_, err := f.uc.RegisterPayment(f.ctx, "u1", doc.ID, dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(11900)})
	require.NoError(t, err)

	_, err = f.uc.RegisterPayment(f.ctx, "u1", doc.ID, dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrOverpaymentRejected)

	payments, err := f.uc.ListPayments(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	_, err = f.uc.RegisterPayment(f.ctx, "u1", doc.ID, dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(1), Method: "Cheque"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCancel(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())

	paid := f.issue(t, 1, dto.IssueDocumentRequest{Type: entity.DocumentTypeBoleta})
	_, err := f.uc.Cancel(f.ctx, "u1", paid.ID)
	assert.ErrorIs(t, err, domain.ErrCannotCancelPaidDocument)

	doc := f.issue(t, 1, installments(30))
	cancelled, err := f.uc.Cancel(f.ctx, "u1", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStateCancelled, cancelled.State)

	_, err = f.uc.RegisterPayment(f.ctx, "u1", doc.ID, dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, domain.ErrDocumentCancelled)
	_, err = f.uc.Cancel(f.ctx, "u1", doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentCancelled)

	_, err = f.uc.Cancel(f.ctx, "u1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRefreshOverdue(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	doc := f.issue(t, 2, installments(15))
	f.issue(t, 1, installments(60))

	f.now = f.now.AddDate(0, 0, 16)
	n, err := f.uc.RefreshOverdue(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	sum, err := f.uc.Summary(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStateOverdue, sum.Document.State)
	assert.False(t, sum.Overdue, "la proyección solo marca Emitida/Pago Parcial")

	sum, err = f.uc.RegisterPayment(f.ctx, "u1", doc.ID, dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatePartial, sum.Document.State)
	assert.True(t, sum.Overdue)
}

func TestSummary_PagoInmediatoLiquidado(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	doc := f.issue(t, 1, dto.IssueDocumentRequest{Type: entity.DocumentTypeBoleta})

	sum, err := f.uc.Summary(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, sum.TotalPaid.IsZero())
	assert.True(t, sum.Outstanding.IsZero())
	assert.Equal(t, "100.00", sum.PercentPaid.StringFixed(2))

	_, err = f.uc.RegisterPayment(f.ctx, "u1", doc.ID, dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrOverpaymentRejected)
}

// flakyTx falla el primer intento con folio duplicado.
type flakyTx struct {
	inner ports.TxRunner
	calls int
}

func (f *flakyTx) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	f.calls++
	if f.calls == 1 {
		return domain.ErrDuplicateFolio
	}
	return f.inner.Run(ctx, fn)
}

func TestIssue_ReintentaFolioDuplicado(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	tx := &flakyTx{inner: f.store}
	uc := NewDocumentUseCase(tx, f.repos, NewIssuer(DefaultSettings(), nil, nil), nil, nil)

	doc, err := uc.IssueDocument(f.ctx, "u1", f.order(t, 1), installments(30))
	require.NoError(t, err)
	assert.Equal(t, 2, tx.calls)
	assert.Equal(t, int64(1000), doc.Folio)
}

func TestListDocuments_PorTipo(t *testing.T) {
	f := newBillingFixture(t, DefaultSettings())
	f.issue(t, 1, installments(30))
	f.issue(t, 1, dto.IssueDocumentRequest{Type: entity.DocumentTypeFactura, LegalName: "Andes SpA", TaxID: "76.543.210-K"})

	list, err := f.uc.ListDocuments(f.ctx, dto.DocumentFilter{Type: entity.DocumentTypeFactura})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Andes SpA", list.Items[0].LegalName)
}
