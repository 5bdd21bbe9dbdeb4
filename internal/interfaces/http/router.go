package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/ticashop/backoffice-api/internal/application/billing"
	"github.com/ticashop/backoffice-api/internal/application/ordering"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/application/usecase"
	"github.com/ticashop/backoffice-api/internal/domain/entity"
	"github.com/ticashop/backoffice-api/internal/observability"
	"github.com/ticashop/backoffice-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	CustomerUC  *billing.CustomerUseCase
	OrderUC     *ordering.UseCase
	DocumentUC  *billing.DocumentUseCase
	DocumentPDF *billing.PDFUseCase
	ReportUC    *usecase.ReportUseCase
	Idempotency ports.IdempotencyStore // nil = sin protección de reintentos
	Metrics     *observability.Metrics // nil = sin /metrics
	Log         *logger.Logger
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	idem := Idempotency(deps.Idempotency, deps.Log)

	// Products: lectura para todos, escritura solo Administrador
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/movements", productHandler.Movements)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)

	// Customers
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Orders
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.DocumentUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.Get)
	orders.Post("/:id/lines", orderHandler.AddLine)
	orders.Put("/:id/lines/:productId", orderHandler.UpdateLine)
	orders.Delete("/:id/lines/:productId", orderHandler.RemoveLine)
	orders.Post("/:id/document", idem, orderHandler.IssueDocument)
	orders.Post("/:id/confirm", idem, orderHandler.Confirm)
	orders.Post("/:id/ship", orderHandler.MarkSent)

	// Documents y ledger de pagos
	documents := protected.Group("/documents")
	documentHandler := NewDocumentHandler(deps.DocumentUC, deps.DocumentPDF)
	documents.Get("/", documentHandler.List)
	documents.Post("/refresh-overdue", adminOnly, documentHandler.RefreshOverdue)
	documents.Get("/:id", documentHandler.Get)
	documents.Get("/:id/summary", documentHandler.Summary)
	documents.Get("/:id/pdf", documentHandler.PDF)
	documents.Get("/:id/payments", documentHandler.ListPayments)
	documents.Post("/:id/payments", idem, documentHandler.RegisterPayment)
	documents.Post("/:id/cancel", documentHandler.Cancel)

	// Reports (solo Administrador)
	reports := protected.Group("/reports", adminOnly)
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/sales", reportHandler.Sales)
	reports.Get("/sales/export", reportHandler.SalesXLSX)
}
