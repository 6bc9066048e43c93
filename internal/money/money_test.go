package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"999.999", "$1,000.00"},
		{"1234.5", "$1,234.50"},
		{"-1234.5", "-$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-0.001", "$0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatWhole(t *testing.T) {
	assert.Equal(t, "$10,000", FormatWhole(decimal.NewFromInt(10000)))
	assert.Equal(t, "-$250", FormatWhole(decimal.RequireFromString("-249.6")))
}

func TestFormatSigned(t *testing.T) {
	assert.Equal(t, "+$12.00", FormatSigned(decimal.NewFromInt(12)))
	assert.Equal(t, "-$12.00", FormatSigned(decimal.NewFromInt(-12)))
	assert.Equal(t, "$0.00", FormatSigned(decimal.Zero))
}
