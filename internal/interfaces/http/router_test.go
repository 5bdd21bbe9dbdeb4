package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticashop/backoffice-api/internal/application/billing"
	"github.com/ticashop/backoffice-api/internal/application/ordering"
	"github.com/ticashop/backoffice-api/internal/application/usecase"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/infrastructure/cache"
	"github.com/ticashop/backoffice-api/internal/infrastructure/memory"
	"github.com/ticashop/backoffice-api/internal/infrastructure/pdf"
	"github.com/ticashop/backoffice-api/internal/infrastructure/spreadsheet"
	apphttp "github.com/ticashop/backoffice-api/internal/interfaces/http"
	"github.com/ticashop/backoffice-api/internal/observability"
	"github.com/ticashop/backoffice-api/pkg/logger"
)

type apiFixture struct {
	app    *fiber.App
	store  *memory.Store
	mr     *miniredis.Miniredis
	admin  string
	seller string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Comercial Andes", TaxID: "76.543.210-K"}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: "p1", Code: "TEC-01", Name: "Teclado", Price: decimal.NewFromInt(5000), Cost: decimal.NewFromInt(3000), Stock: 10, MinStock: 2, Active: true,
	}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	metrics := observability.NewMetrics()
	log := logger.Nop()
	issuer := billing.NewIssuer(billing.DefaultSettings(), metrics, log)
	docs := billing.NewDocumentUseCase(store, repos, issuer, metrics, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:   usecase.NewProductUseCase(store, repos, log),
		CustomerUC:  billing.NewCustomerUseCase(repos.Customers),
		OrderUC:     ordering.NewUseCase(store, repos, issuer, metrics, log),
		DocumentUC:  docs,
		DocumentPDF: billing.NewPDFUseCase(repos.Documents, repos.Customers, repos.Products, repos.Payments, pdf.NewMarotoPDFGenerator(), issuer),
		ReportUC:    usecase.NewReportUseCase(store.Reports(), spreadsheet.New(), time.UTC),
		Idempotency: cache.NewIdempotencyStore(client, time.Hour),
		Metrics:     metrics,
		Log:         log,
		JWTSecret:   testJWTSecret,
	})

	return &apiFixture{
		app:    app,
		store:  store,
		mr:     mr,
		admin:  tokenForRole(t, entity.RoleAdmin),
		seller: tokenForRole(t, entity.RoleSeller),
	}
}

type call struct {
	method string
	path   string
	token  string
	body   any
	idem   string
}

func (f *apiFixture) do(t *testing.T, c call) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, reader)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	if c.idem != "" {
		req.Header.Set(apphttp.HeaderIdempotencyKey, c.idem)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (f *apiFixture) json(t *testing.T, c call, wantStatus int) map[string]any {
	t.Helper()
	resp, raw := f.do(t, c)
	require.Equal(t, wantStatus, resp.StatusCode, string(raw))
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// orderWithLine crea un pedido con dos teclados y devuelve su ID.
func (f *apiFixture) orderWithLine(t *testing.T) string {
	t.Helper()
	o := f.json(t, call{method: http.MethodPost, path: "/api/orders", token: f.seller, body: map[string]any{"customer_id": "c1"}}, http.StatusCreated)
	id := o["id"].(string)
	o = f.json(t, call{method: http.MethodPost, path: "/api/orders/" + id + "/lines", token: f.seller, body: map[string]any{"product_id": "p1", "quantity": 2}}, http.StatusOK)
	assert.Equal(t, "10000", o["net"])
	assert.Equal(t, "11900", o["total"])
	return id
}

func TestAPI_FlujoCompletoDeVenta(t *testing.T) {
	f := newAPI(t)
	orderID := f.orderWithLine(t)

	issue := call{
		method: http.MethodPost, path: "/api/orders/" + orderID + "/document", token: f.seller, idem: "emitir-1",
		body: map[string]any{"type": "Boleta", "modality": "plazo", "term_days": 30},
	}
	doc := f.json(t, issue, http.StatusCreated)
	assert.Equal(t, float64(1000), doc["folio"])
	assert.Equal(t, entity.DocumentStateIssued, doc["state"])
	docID := doc["id"].(string)

	// el reintento con la misma clave repite la respuesta sin emitir otro documento
	resp, raw := f.do(t, issue)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("Idempotent-Replayed"))
	var replay map[string]any
	require.NoError(t, json.Unmarshal(raw, &replay))
	assert.Equal(t, docID, replay["id"])

	list := f.json(t, call{method: http.MethodGet, path: "/api/documents?type=Boleta", token: f.seller}, http.StatusOK)
	assert.Len(t, list["items"], 1)

	sum := f.json(t, call{
		method: http.MethodPost, path: "/api/documents/" + docID + "/payments", token: f.seller, idem: "pago-1",
		body: map[string]any{"amount": "5000"},
	}, http.StatusCreated)
	assert.Equal(t, "6900", sum["outstanding"])
	assert.Equal(t, entity.DocumentStatePartial, sum["document"].(map[string]any)["state"])

	over := f.json(t, call{
		method: http.MethodPost, path: "/api/documents/" + docID + "/payments", token: f.seller,
		body: map[string]any{"amount": "999999"},
	}, http.StatusUnprocessableEntity)
	assert.Equal(t, "OVERPAYMENT_REJECTED", over["code"])

	resp, raw = f.do(t, call{method: http.MethodGet, path: "/api/documents/" + docID + "/pdf", token: f.seller})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	confirmed := f.json(t, call{method: http.MethodPost, path: "/api/orders/" + orderID + "/confirm", token: f.seller}, http.StatusOK)
	assert.Equal(t, entity.OrderStatusProcessing, confirmed["order"].(map[string]any)["status"])
	sent := f.json(t, call{method: http.MethodPost, path: "/api/orders/" + orderID + "/ship", token: f.seller}, http.StatusOK)
	assert.Equal(t, entity.OrderStatusSent, sent["status"])

	report := f.json(t, call{method: http.MethodGet, path: "/api/reports/sales", token: f.admin}, http.StatusOK)
	assert.Equal(t, float64(1), report["sales_count"])
	assert.Equal(t, "11900", report["total_amount"])

	resp, raw = f.do(t, call{method: http.MethodGet, path: "/api/reports/sales/export", token: f.admin})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ventas_")
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")), "xlsx es un zip")

	resp, raw = f.do(t, call{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "ticashop_documents_issued_total")
	assert.Contains(t, string(raw), "ticashop_payments_total")
}

func TestAPI_StockInsuficienteDetallaLineas(t *testing.T) {
	f := newAPI(t)
	o := f.json(t, call{method: http.MethodPost, path: "/api/orders", token: f.seller, body: map[string]any{"customer_id": "c1"}}, http.StatusCreated)

	out := f.json(t, call{
		method: http.MethodPost, path: "/api/orders/" + o["id"].(string) + "/lines", token: f.seller,
		body: map[string]any{"product_id": "p1", "quantity": 50},
	}, http.StatusConflict)
	assert.Equal(t, "INSUFFICIENT_STOCK", out["code"])
	require.Len(t, out["shortages"], 1)
	shortage := out["shortages"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(50), shortage["Requested"])
	assert.Equal(t, float64(10), shortage["Available"])
}

func TestAPI_Validaciones(t *testing.T) {
	f := newAPI(t)
	orderID := f.orderWithLine(t)

	out := f.json(t, call{
		method: http.MethodPost, path: "/api/orders/" + orderID + "/document", token: f.seller,
		body: map[string]any{"type": "Factura"},
	}, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION", out["code"])

	out = f.json(t, call{
		method: http.MethodPost, path: "/api/orders/" + orderID + "/document", token: f.seller,
		body: map[string]any{"type": "Boleta", "modality": "plazo", "term_days": 20},
	}, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION", out["code"])

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.seller)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out = f.json(t, call{method: http.MethodGet, path: "/api/reports/sales?from=10-05-2024", token: f.admin}, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION", out["code"])

	out = f.json(t, call{method: http.MethodGet, path: "/api/documents/no-existe", token: f.seller}, http.StatusNotFound)
	assert.Equal(t, "NOT_FOUND", out["code"])
}

func TestAPI_PermisosPorRol(t *testing.T) {
	f := newAPI(t)
	product := map[string]any{"code": "MOU-01", "name": "Mouse", "price": "2000", "cost": "1200", "stock": 5}

	f.json(t, call{method: http.MethodPost, path: "/api/products", token: f.seller, body: product}, http.StatusForbidden)
	created := f.json(t, call{method: http.MethodPost, path: "/api/products", token: f.admin, body: product}, http.StatusCreated)
	assert.Equal(t, "MOU-01", created["code"])
	dup := f.json(t, call{method: http.MethodPost, path: "/api/products", token: f.admin, body: product}, http.StatusConflict)
	assert.Equal(t, "DUPLICATE", dup["code"])

	f.json(t, call{method: http.MethodGet, path: "/api/reports/sales", token: f.seller}, http.StatusForbidden)
	f.json(t, call{method: http.MethodPost, path: "/api/documents/refresh-overdue", token: f.seller}, http.StatusForbidden)
	refreshed := f.json(t, call{method: http.MethodPost, path: "/api/documents/refresh-overdue", token: f.admin}, http.StatusOK)
	assert.Equal(t, float64(0), refreshed["updated"])

	list := f.json(t, call{method: http.MethodGet, path: "/api/products?search=mou", token: f.seller}, http.StatusOK)
	assert.Len(t, list["items"], 1)

	resp, _ := f.do(t, call{method: http.MethodGet, path: "/api/products"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_IdempotenciaEnCursoYRedisCaido(t *testing.T) {
	f := newAPI(t)
	orderID := f.orderWithLine(t)
	path := "/api/orders/" + orderID + "/document"

	f.mr.Set("idem:"+testUserID+":POST:"+path+":k-1", "pending")
	out := f.json(t, call{
		method: http.MethodPost, path: path, token: f.seller, idem: "k-1",
		body: map[string]any{"type": "Boleta"},
	}, http.StatusConflict)
	assert.Equal(t, "IDEMPOTENCY_IN_FLIGHT", out["code"])

	// con Redis abajo la emisión sigue sin protección de reintentos
	f.mr.Close()
	doc := f.json(t, call{
		method: http.MethodPost, path: path, token: f.seller, idem: "k-2",
		body: map[string]any{"type": "Boleta"},
	}, http.StatusCreated)
	assert.Equal(t, float64(1000), doc["folio"])
}

func TestAPI_ErrorDeNegocioLiberaLaClave(t *testing.T) {
	f := newAPI(t)
	orderID := f.orderWithLine(t)
	doc := f.json(t, call{
		method: http.MethodPost, path: "/api/orders/" + orderID + "/document", token: f.seller,
		body: map[string]any{"type": "Boleta", "modality": "plazo", "term_days": 15},
	}, http.StatusCreated)
	path := "/api/documents/" + doc["id"].(string) + "/payments"

	f.json(t, call{method: http.MethodPost, path: path, token: f.seller, idem: "p", body: map[string]any{"amount": "50000"}}, http.StatusUnprocessableEntity)
	assert.False(t, f.mr.Exists("idem:"+testUserID+":POST:"+path+":p"))

	sum := f.json(t, call{method: http.MethodPost, path: path, token: f.seller, idem: "p", body: map[string]any{"amount": "11900"}}, http.StatusCreated)
	assert.Equal(t, entity.DocumentStatePaid, sum["document"].(map[string]any)["state"])
}
