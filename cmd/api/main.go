package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ticashop/backoffice-api/internal/application/billing"
	"github.com/ticashop/backoffice-api/internal/application/ordering"
	"github.com/ticashop/backoffice-api/internal/application/ports"
	"github.com/ticashop/backoffice-api/internal/application/usecase"
	"github.com/ticashop/backoffice-api/internal/domain/repository"
	"github.com/ticashop/backoffice-api/internal/infrastructure/cache"
	"github.com/ticashop/backoffice-api/internal/infrastructure/memory"
	infrapdf "github.com/ticashop/backoffice-api/internal/infrastructure/pdf"
	"github.com/ticashop/backoffice-api/internal/infrastructure/postgres"
	"github.com/ticashop/backoffice-api/internal/infrastructure/spreadsheet"
	httpRouter "github.com/ticashop/backoffice-api/internal/interfaces/http"
	"github.com/ticashop/backoffice-api/internal/observability"
	"github.com/ticashop/backoffice-api/pkg/config"
	"github.com/ticashop/backoffice-api/pkg/logger"
)

// storage adaptadores de persistencia según STORAGE_DRIVER.
type storage struct {
	tx      ports.TxRunner
	repos   ports.Repos
	reports repository.ReportRepository
	close   func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage {
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("STORAGE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return storage{tx: store, repos: store.Repos(), reports: store.Reports(), close: func() {}}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("migraciones")
	}
	return storage{
		tx:      postgres.NewTxRunner(pool),
		repos:   postgres.NewRepos(pool),
		reports: postgres.NewReportRepository(pool),
		close:   pool.Close,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st := openStorage(ctx, cfg, log)
	defer st.close()

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		client, err := cache.New(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Recoverable("idempotency_store", err).Msg("Redis no disponible, reintentos sin protección")
		} else {
			defer client.Close()
			idem = cache.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
		}
	}

	metrics := observability.NewMetrics()
	loc := cfg.Billing.Location()
	issuer := billing.NewIssuer(billing.Settings{
		TaxRate:      cfg.Billing.TaxRate,
		FolioSeed:    cfg.Billing.FolioSeed,
		PayNowPolicy: cfg.Billing.PayNowPolicy,
		Location:     loc,
		CompanyName:  cfg.Billing.CompanyName,
	}, metrics, log.Component("billing"))

	documentUC := billing.NewDocumentUseCase(st.tx, st.repos, issuer, metrics, log)
	orderUC := ordering.NewUseCase(st.tx, st.repos, issuer, metrics, log)
	productUC := usecase.NewProductUseCase(st.tx, st.repos, log)
	customerUC := billing.NewCustomerUseCase(st.repos.Customers)
	reportUC := usecase.NewReportUseCase(st.reports, spreadsheet.New(), loc)

	// PDF: representación impresa de boletas y facturas
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	documentPDFUC := billing.NewPDFUseCase(
		st.repos.Documents, st.repos.Customers, st.repos.Products, st.repos.Payments, pdfGenerator, issuer,
	)

	// Vencimientos pendientes desde el último arranque; si falla se reintenta vía API.
	if n, err := documentUC.RefreshOverdue(ctx); err != nil {
		log.Recoverable("overdue_refresh", err).Msg("no se pudieron actualizar los vencimientos")
	} else if n > 0 {
		log.Info().Int64("updated", n).Msg("documentos marcados como vencidos")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	const swaggerFile = "./docs/swagger.json"
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Ticashop Back-office API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("sin documentación Swagger")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		CustomerUC:  customerUC,
		OrderUC:     orderUC,
		DocumentUC:  documentUC,
		DocumentPDF: documentPDFUC,
		ReportUC:    reportUC,
		Idempotency: idem,
		Metrics:     metrics,
		Log:         log.Component("http"),
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
