package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ticashop/backoffice-api/internal/domain/sales"
)

// Settings parámetros de emisión inyectados desde la configuración.
type Settings struct {
	TaxRate      decimal.Decimal
	FolioSeed    int64
	PayNowPolicy string // sales.PayNowSettle | sales.PayNowDueToday
	Location     *time.Location
	CompanyName  string
}

// DefaultSettings IVA 19%, folios desde 1000, pago inmediato liquida el documento.
func DefaultSettings() Settings {
	return Settings{
		TaxRate:      decimal.RequireFromString("0.19"),
		FolioSeed:    1000,
		PayNowPolicy: sales.PayNowSettle,
		Location:     time.UTC,
	}
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}
