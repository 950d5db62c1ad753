package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func assertAmount(t *testing.T, want int64, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "%s: expected %d, got %s", field, want, got)
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
