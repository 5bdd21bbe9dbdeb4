// import_prices aplica una planilla de costos y precios sobre el catálogo.
//
// Uso: go run ./cmd/import_prices ruta/precios.xlsx
// Columnas: código, costo neto, precio venta (la primera fila es encabezado).
// Usa la base configurada en el entorno (STORAGE_DRIVER=postgres).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ticashop/backoffice-api/internal/application/usecase"
	"github.com/ticashop/backoffice-api/internal/infrastructure/postgres"
	"github.com/ticashop/backoffice-api/internal/infrastructure/spreadsheet"
	"github.com/ticashop/backoffice-api/pkg/config"
	"github.com/ticashop/backoffice-api/pkg/logger"
	"github.com/ticashop/backoffice-api/pkg/money"
)

const importActor = "import"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: import_prices <planilla.xlsx>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.App.Storage != config.StoragePostgres {
		fmt.Fprintln(os.Stderr, "la importación requiere STORAGE_DRIVER=postgres")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir planilla: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, parseErrs, err := spreadsheet.New().ReadPriceRows(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer planilla: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	uc := usecase.NewProductUseCase(postgres.NewTxRunner(pool), postgres.NewRepos(pool), log.Component("import"))

	res, err := uc.ApplyPriceUpdates(ctx, importActor, rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Aplicar precios: %v\n", err)
		os.Exit(1)
	}

	for _, r := range rows {
		fmt.Printf("%-12s costo %s  precio %s\n", r.Code, money.CLP(r.Cost), money.CLP(r.Price))
	}
	errs := append(parseErrs, res.Errors...)
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "fila %d (%s): %s\n", e.Row, e.Code, e.Message)
	}
	fmt.Printf("Actualizados: %d de %d filas\n", res.Updated, len(rows)+len(parseErrs))
	if len(errs) > 0 {
		os.Exit(1)
	}
}
