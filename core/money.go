/*
Package core provides the domain-agnostic primitives shared by every
financial-item type: fixed-point money, calendar dates, recurrence
schedules, payment/interest specs, and the trigger/predicate language that
gates item and event activation.

Nothing in this package knows about FinancialItem, Config, or Simulator —
those live in the item/config/sim packages and depend on core, never the
other way around.
*/
package core

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DecimalPrecision is the rounding precision (decimal places) applied after
// any operation that cannot be carried out exactly, namely fractional
// exponentiation. Rounding half-away-from-zero is decimal.Decimal's
// default and the mode used throughout.
const DecimalPrecision = 28

// Money is a fixed-point decimal amount. All monetary values in Falculator
// share this single type — there is no currency or unit tag, since a
// simulation is always single-currency.
type Money struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{d: decimal.Zero}

// NewMoney wraps a decimal.Decimal.
func NewMoney(d decimal.Decimal) Money { return Money{d: d} }

// NewMoneyFromFloat constructs a Money from a float64. Use sparingly —
// prefer NewMoneyFromString for config-supplied literals so values are
// exact from the start.
func NewMoneyFromFloat(f float64) Money { return Money{d: decimal.NewFromFloat(f)} }

// NewMoneyFromInt constructs a Money from an integer number of whole units.
func NewMoneyFromInt(i int64) Money { return Money{d: decimal.NewFromInt(i)} }

// MustMoney parses a decimal string, returning Zero on a parse failure.
// Used for constants and test fixtures where the input is known good.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero
	}
	return Money{d: d}
}

// Decimal exposes the underlying decimal.Decimal for callers (e.g. the
// sqlite store) that need to marshal it directly.
func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money         { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money {
	if m.IsNegative() {
		return m.Neg()
	}
	return m
}

// Mul multiplies by a dimensionless decimal scalar (e.g. a count of
// occurrences, or 1/100 of a percentage).
func (m Money) Mul(scalar decimal.Decimal) Money { return Money{d: m.d.Mul(scalar)} }

// MulInt multiplies by a whole-number scalar — used for "amount × n
// occurrences".
func (m Money) MulInt(n int) Money { return Money{d: m.d.Mul(decimal.NewFromInt(int64(n)))} }

// Div divides by a dimensionless decimal scalar.
func (m Money) Div(scalar decimal.Decimal) Money { return Money{d: m.d.Div(scalar)} }

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) GreaterThan(o Money) bool        { return m.d.GreaterThan(o.d) }
func (m Money) GreaterThanOrEqual(o Money) bool { return m.d.GreaterThanOrEqual(o.d) }
func (m Money) LessThan(o Money) bool           { return m.d.LessThan(o.d) }
func (m Money) LessThanOrEqual(o Money) bool    { return m.d.LessThanOrEqual(o.d) }
func (m Money) Equal(o Money) bool              { return m.d.Equal(o.d) }

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

func (m Money) Max(o Money) Money {
	if m.GreaterThan(o) {
		return m
	}
	return o
}

// Float64 returns an approximate float64 value. Used by EventItem's
// Shares unit math (whole units bought or sold per transfer).
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

func (m Money) String() string { return m.d.String() }

// Pow raises m to a (possibly fractional) decimal exponent, as required by
// the percentage/compounding math in AmountFreq.Compute:
// Δ = V × ((1 + amount/100)^n − 1) and the monthly-compounding variant
// Δ = V × ((1 + amount/100)^(n/12) − 1).
//
// Integer exponents (the common case — n whole occurrences) are computed
// by exact repeated-squaring multiplication: no floating point enters the
// calculation, so results are bit-reproducible across platforms.
// Fractional exponents (n/12 when n is not a multiple of 12) have no exact
// decimal representation for a general base, so they go through
// math.Exp(exponent * math.Log(base)) on float64 and are rounded back to
// DecimalPrecision places. float64 carries roughly 15-17 significant
// digits, comfortably above the 12-significant-digit stability this
// calculator targets for any compounding result.
func (m Money) Pow(exponent decimal.Decimal) Money {
	if exponent.IsZero() {
		return NewMoneyFromInt(1)
	}
	if exponent.IsInteger() {
		n := exponent.IntPart()
		return Money{d: integerPow(m.d, n)}
	}
	base, _ := m.d.Float64()
	exp, _ := exponent.Float64()
	result := math.Exp(exp * math.Log(base))
	return Money{d: decimal.NewFromFloat(result).Round(DecimalPrecision)}
}

// integerPow computes base^n exactly via repeated squaring, supporting
// negative n (reciprocal of the positive power).
func integerPow(base decimal.Decimal, n int64) decimal.Decimal {
	if n < 0 {
		return decimal.NewFromInt(1).Div(integerPow(base, -n))
	}
	result := decimal.NewFromInt(1)
	b := base
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(b)
		}
		b = b.Mul(b)
		n >>= 1
	}
	return result
}

// PercentDelta computes V × ((1+rate/100)^exponent − 1), the shared core of
// every percentage-based AmountFreq branch.
func PercentDelta(base Money, ratePercent decimal.Decimal, exponent decimal.Decimal) Money {
	factor := NewMoneyFromInt(1).Add(NewMoney(ratePercent).Div(decimal.NewFromInt(100)))
	grown := factor.Pow(exponent)
	return base.Mul(grown.d.Sub(decimal.NewFromInt(1)))
}

// Rounded returns m rounded to places decimal digits, half away from zero
// (shopspring/decimal's Round). Pow's fractional-exponent path rounds the
// same way.
func (m Money) Rounded(places int32) Money {
	return Money{d: m.d.Round(places)}
}

// MarshalJSON renders Money as a plain decimal string, matching the "load
// any document written by a previous version unchanged" contract
// — a string avoids float round-tripping loss in JSON.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", m.d.String())), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) >= 2 && data[0] == '"' {
		s = string(data[1 : len(data)-1])
	} else {
		s = string(data)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.d = d
	return nil
}
