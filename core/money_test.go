package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/falculator/falculator/core"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := core.MustMoney("100.50")
	b := core.MustMoney("0.50")

	assert.True(t, a.Add(b).Equal(core.MustMoney("101")))
	assert.True(t, a.Sub(b).Equal(core.MustMoney("100")))
	assert.True(t, a.Neg().Equal(core.MustMoney("-100.50")))
	assert.True(t, a.Neg().Abs().Equal(a))
}

func TestMoney_Comparisons(t *testing.T) {
	small := core.MustMoney("1")
	big := core.MustMoney("2")

	assert.True(t, big.GreaterThan(small))
	assert.True(t, small.LessThan(big))
	assert.True(t, small.Equal(core.MustMoney("1")))
	assert.True(t, small.Min(big).Equal(small))
	assert.True(t, small.Max(big).Equal(big))
}

func TestMoney_MustMoney_InvalidStringReturnsZero(t *testing.T) {
	assert.True(t, core.MustMoney("not-a-number").IsZero())
}

func TestMoney_Pow_IntegerExponent(t *testing.T) {
	base := core.MustMoney("1.1")
	result := base.Pow(decimal.NewFromInt(2))
	assert.True(t, result.Equal(core.MustMoney("1.21")))
}

func TestMoney_Pow_ZeroExponentIsOne(t *testing.T) {
	base := core.MustMoney("5")
	assert.True(t, base.Pow(decimal.Zero).Equal(core.NewMoneyFromInt(1)))
}

func TestMoney_Pow_NegativeIntegerExponent(t *testing.T) {
	base := core.MustMoney("2")
	result := base.Pow(decimal.NewFromInt(-1))
	assert.True(t, result.Equal(core.MustMoney("0.5")))
}

func TestPercentDelta_SimpleAnnualGrowth(t *testing.T) {
	// 1000 growing at 10% for one period: delta should be 100.
	delta := core.PercentDelta(core.MustMoney("1000"), decimal.NewFromInt(10), decimal.NewFromInt(1))
	assert.True(t, delta.Equal(core.MustMoney("100")))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	original := core.MustMoney("123.456")
	data, err := original.MarshalJSON()
	assert.NoError(t, err)

	var decoded core.Money
	assert.NoError(t, decoded.UnmarshalJSON(data))
	assert.True(t, original.Equal(decoded))
}

func TestMoney_Rounded(t *testing.T) {
	m := core.MustMoney("1.005")
	assert.Equal(t, "1", m.Rounded(0).String())
}
