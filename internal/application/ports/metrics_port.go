package ports

import "github.com/shopspring/decimal"

// SalesMetrics contadores de negocio expuestos en /metrics.
type SalesMetrics interface {
	DocumentIssued(docType, state string)
	PaymentRegistered(method string, amount decimal.Decimal)
	DocumentCancelled(docType string)
	StockRejected(operation string)
	FolioRetried(docType string)
}

// NopMetrics implementación vacía (tests, herramientas CLI).
type NopMetrics struct{}

func (NopMetrics) DocumentIssued(string, string)             {}
func (NopMetrics) PaymentRegistered(string, decimal.Decimal) {}
func (NopMetrics) DocumentCancelled(string)                  {}
func (NopMetrics) StockRejected(string)                      {}
func (NopMetrics) FolioRetried(string)                       {}
