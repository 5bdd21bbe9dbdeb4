// Package money formatea montos en pesos chilenos (sin decimales, separador de miles ".").
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("es-CL"))

// CLP formatea un monto redondeado a la unidad: 1190000 -> "$1.190.000".
func CLP(amount decimal.Decimal) string {
	n := amount.Round(0).IntPart()
	if n < 0 {
		return "-$" + printer.Sprintf("%d", -n)
	}
	return "$" + printer.Sprintf("%d", n)
}

// Percent formatea un porcentaje con dos decimales: 42.0168 -> "42,02%".
func Percent(p decimal.Decimal) string {
	return printer.Sprintf("%.2f", p.Round(2).InexactFloat64()) + "%"
}
