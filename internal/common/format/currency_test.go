package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0"},
		{"150", "$150"},
		{"1234", "$1,234"},
		{"1234567.89", "$1,234,568"},
		{"2.5", "$2"},
		{"3.5", "$4"},
		{"-150", "$-150"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "1,234.50", Amount(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "0.00", Amount(decimal.Zero))
}
