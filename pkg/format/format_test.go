package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.Zero, "0"},
		{decimal.NewFromInt(999), "999"},
		{decimal.NewFromInt(20_000_000), "20,000,000"},
		{decimal.NewFromFloat(1234567.89), "1,234,567"},
	}

	for _, tt := range tests {
		if got := Money(tt.in); got != tt.want {
			t.Errorf("Money(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.05, "5%"},
		{0.15, "15%"},
		{0.35, "35%"},
		{0.015, "1.5%"},
	}

	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
