package calculator

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts arrive as free text from form fields, e.g. "20.000.000 đ" or "20,000,000".
// Both '.' and ',' are treated as digit grouping because amounts are whole units.
var amountNoise = strings.NewReplacer(
	".", "", ",", "", " ", "", "\u00a0", "", "_", "",
	"đ", "", "₫", "", "VND", "", "vnd", "",
)

func parseAmount(s string) (decimal.Decimal, bool) {
	cleaned := amountNoise.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d.Truncate(0), true
}

// ParseAmount returns the whole-unit amount in s, or zero when s is blank,
// malformed or negative.
func ParseAmount(s string) decimal.Decimal {
	d, _ := parseAmount(s)
	return d
}

// ParseOptionalAmount returns nil when s is blank or unparseable so the caller can
// fall back to a computed value.
func ParseOptionalAmount(s string) *decimal.Decimal {
	d, ok := parseAmount(s)
	if !ok {
		return nil
	}
	return &d
}

// ParseCount returns the non-negative integer in s, or zero.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParsePercent returns the percentage in s ("7.5", "7,5" or "7.5%"), or zero.
func ParsePercent(s string) float64 {
	cleaned := strings.TrimSuffix(strings.TrimSpace(s), "%")
	cleaned = strings.ReplaceAll(strings.TrimSpace(cleaned), ",", ".")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
