package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesCounters(t *testing.T) {
	m := NewMetrics()

	m.DocumentIssued("Boleta", "Pagada")
	m.DocumentIssued("Boleta", "Pagada")
	m.DocumentIssued("Factura", "Emitida")
	m.PaymentRegistered("Efectivo", decimal.NewFromInt(5000))
	m.PaymentRegistered("Efectivo", decimal.NewFromInt(2500))
	m.DocumentCancelled("Factura")
	m.StockRejected("add_line")
	m.FolioRetried("Boleta")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documentsIssued.WithLabelValues("Boleta", "Pagada")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documentsIssued.WithLabelValues("Factura", "Emitida")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.payments.WithLabelValues("Efectivo")))
	assert.Equal(t, 7500.0, testutil.ToFloat64(m.paymentAmount.WithLabelValues("Efectivo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documentsCancelled.WithLabelValues("Factura")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockRejected.WithLabelValues("add_line")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.folioRetries.WithLabelValues("Boleta")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	app.Get("/api/products/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/products/abc", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/products/:id", "GET", "204")))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ticashop_http_requests_total")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotNil(t, m.Registerer())
}
