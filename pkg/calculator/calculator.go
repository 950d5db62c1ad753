package calculator

import (
	"io"

	"github.com/mcclellann/paycalc/pkg/rules"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Calculator runs the salary, tax and insurance calculations against a fixed rules
// table. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	rules *rules.Rules
	log   logrus.FieldLogger
}

// New creates a Calculator. A nil rules table means rules.Default(); a nil logger
// discards output.
func New(r *rules.Rules, log logrus.FieldLogger) *Calculator {
	if r == nil {
		r = rules.Default()
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Calculator{rules: r, log: log}
}

// Rules returns the table the calculator was built with.
func (c *Calculator) Rules() *rules.Rules {
	return c.rules
}

func rate(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// mulRate multiplies an amount by a rate and truncates to whole currency units.
func mulRate(amount, r decimal.Decimal) decimal.Decimal {
	return amount.Mul(r).Truncate(0)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// wholeUnits drops any fractional part and clamps at zero.
func wholeUnits(d decimal.Decimal) decimal.Decimal {
	return nonNegative(d.Truncate(0))
}
