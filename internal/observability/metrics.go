// Package observability expone métricas Prometheus de la API y del negocio de ventas.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/ticashop/backoffice-api/internal/application/ports"
)

var _ ports.SalesMetrics = (*Metrics)(nil)

// Metrics registry propio con métricas HTTP y contadores de ventas.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	documentsIssued    *prometheus.CounterVec
	documentsCancelled *prometheus.CounterVec
	payments           *prometheus.CounterVec
	paymentAmount      *prometheus.CounterVec
	stockRejected      *prometheus.CounterVec
	folioRetries       *prometheus.CounterVec
}

// NewMetrics inicializa el registry y registra todas las métricas.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticashop_http_requests_total",
			Help: "Peticiones HTTP por ruta, método y código.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ticashop_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		documentsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticashop_documents_issued_total",
			Help: "Documentos de venta emitidos por tipo y estado inicial.",
		}, []string{"type", "state"}),
		documentsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticashop_documents_cancelled_total",
			Help: "Documentos anulados por tipo.",
		}, []string{"type"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticashop_payments_total",
			Help: "Pagos registrados por medio de pago.",
		}, []string{"method"}),
		paymentAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticashop_payments_amount_total",
			Help: "Monto abonado por medio de pago.",
		}, []string{"method"}),
		stockRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticashop_stock_rejections_total",
			Help: "Operaciones rechazadas por stock insuficiente.",
		}, []string{"operation"}),
		folioRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticashop_folio_retries_total",
			Help: "Reintentos de emisión por folio duplicado.",
		}, []string{"type"}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.documentsIssued, m.documentsCancelled,
		m.payments, m.paymentAmount,
		m.stockRejected, m.folioRetries,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer expone el registry para métricas adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Middleware registra conteo y duración de cada petición usando el patrón de ruta de Fiber.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		method := c.Method()
		m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) DocumentIssued(docType, state string) {
	m.documentsIssued.WithLabelValues(docType, state).Inc()
}

func (m *Metrics) PaymentRegistered(method string, amount decimal.Decimal) {
	m.payments.WithLabelValues(method).Inc()
	m.paymentAmount.WithLabelValues(method).Add(amount.InexactFloat64())
}

func (m *Metrics) DocumentCancelled(docType string) {
	m.documentsCancelled.WithLabelValues(docType).Inc()
}

func (m *Metrics) StockRejected(operation string) {
	m.stockRejected.WithLabelValues(operation).Inc()
}

func (m *Metrics) FolioRetried(docType string) {
	m.folioRetries.WithLabelValues(docType).Inc()
}
