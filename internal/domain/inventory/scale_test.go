package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/kardex-api/internal/domain/inventory"
)

func TestFitsQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"0.0001", true},
		{"12.3400", true},
		{"0.00001", false},
		{"1.23456", false},
		{"99999999999999.9999", true},
		{"100000000000000", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inventory.FitsQuantity(decimal.RequireFromString(tc.in)), tc.in)
	}
}

func TestFitsCost(t *testing.T) {
	assert.True(t, inventory.FitsCost(decimal.RequireFromString("4.123456")))
	assert.False(t, inventory.FitsCost(decimal.RequireFromString("4.1234567")))
	assert.False(t, inventory.FitsCost(decimal.RequireFromString("1000000000000")))
	assert.True(t, inventory.FitsCost(decimal.RequireFromString("-0.5")), "el signo se valida aparte")
}

func TestFitsValue(t *testing.T) {
	assert.True(t, inventory.FitsValue(decimal.RequireFromString("1.23456789")), "solo se valida la magnitud")
	assert.True(t, inventory.FitsValue(decimal.RequireFromString("99999999999999")))
	assert.False(t, inventory.FitsValue(decimal.RequireFromString("100000000000000")))
}
