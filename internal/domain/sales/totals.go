// Package sales contiene las reglas puras de pedidos, documentos y pagos
// (servicios de dominio sin persistencia).
package sales

import "github.com/shopspring/decimal"

// Totals montos de un documento: neto, IVA y total.
type Totals struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Total decimal.Decimal
}

// ComputeTotals calcula IVA = neto * tasa redondeado a la unidad (redondeo bancario) y total = neto + IVA.
func ComputeTotals(net, rate decimal.Decimal) Totals {
	tax := net.Mul(rate).RoundBank(0)
	return Totals{Net: net, Tax: tax, Total: net.Add(tax)}
}
