package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCLP(t *testing.T) {
	assert.Equal(t, "$1.190.000", CLP(decimal.NewFromInt(1_190_000)))
	assert.Equal(t, "$0", CLP(decimal.Zero))
	assert.Equal(t, "-$1.190.000", CLP(decimal.NewFromInt(-1_190_000)))
	assert.Equal(t, "$1.190.001", CLP(decimal.RequireFromString("1190000.6")))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "42,02%", Percent(decimal.RequireFromString("42.0168")))
	assert.Equal(t, "100,00%", Percent(decimal.NewFromInt(100)))
}
