package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/falculator/falculator/core"
)

func TestAmountFreq_Compute_FixedAmount(t *testing.T) {
	af := &core.AmountFreq{
		Enabled: true, Amount: core.MustMoney("100"),
		Schedule: core.AmountSchedule{Frequency: core.FreqMonthly},
	}
	prev := core.NewSimDate(2026, time.January, 1)
	curr := core.NewSimDate(2026, time.February, 1)

	delta := af.Compute(prev, curr, core.Zero, nil)
	assert.True(t, delta.Equal(core.MustMoney("100")))
	assert.Equal(t, 1, af.Schedule.TriggerCount)
}

func TestAmountFreq_Compute_Disabled_ReturnsZero(t *testing.T) {
	af := &core.AmountFreq{Enabled: false, Amount: core.MustMoney("100")}
	delta := af.Compute(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2026, time.February, 1), core.Zero, nil)
	assert.True(t, delta.IsZero())
}

func TestAmountFreq_Compute_SimplePercentageOfSource(t *testing.T) {
	af := &core.AmountFreq{
		Enabled: true, Amount: core.MustMoney("10"), IsPercentage: true,
		PercentageBasis: core.BasisSource,
		Schedule:        core.AmountSchedule{Frequency: core.FreqAnnual},
	}
	prev := core.NewSimDate(2026, time.January, 1)
	curr := core.NewSimDate(2027, time.January, 1)

	delta := af.Compute(prev, curr, core.MustMoney("1000"), nil)
	assert.True(t, delta.Equal(core.MustMoney("100")))
}

func TestAmountFreq_Compute_DestinationBasis(t *testing.T) {
	destValue := core.MustMoney("500")
	af := &core.AmountFreq{
		Enabled: true, Amount: core.MustMoney("10"), IsPercentage: true,
		PercentageBasis: core.BasisDestination,
		Schedule:        core.AmountSchedule{Frequency: core.FreqAnnual},
	}
	prev := core.NewSimDate(2026, time.January, 1)
	curr := core.NewSimDate(2027, time.January, 1)

	delta := af.Compute(prev, curr, core.MustMoney("1000"), &destValue)
	assert.True(t, delta.Equal(core.MustMoney("50")))
}

func TestAmountFreq_Sanitize_ForcesMonthlyCompoundingShape(t *testing.T) {
	af := &core.AmountFreq{AnnualRateMonthlyCompounding: true}
	af.Sanitize(false)

	assert.True(t, af.IsPercentage)
	assert.Equal(t, core.FreqMonthly, af.Schedule.Frequency)
	assert.NotNil(t, af.Schedule.DayOfMonth)
	assert.Equal(t, 31, *af.Schedule.DayOfMonth)
}

func TestAmountFreq_Sanitize_DisallowsDestinationUnlessAllowed(t *testing.T) {
	af := &core.AmountFreq{PercentageBasis: core.BasisDestination}
	af.Sanitize(false)
	assert.Equal(t, core.BasisSource, af.PercentageBasis)

	af2 := &core.AmountFreq{PercentageBasis: core.BasisDestination}
	af2.Sanitize(true)
	assert.Equal(t, core.BasisDestination, af2.PercentageBasis)
}

func TestAmountFreq_Sanitize_DefaultsBasisToSource(t *testing.T) {
	af := &core.AmountFreq{}
	af.Sanitize(false)
	assert.Equal(t, core.BasisSource, af.PercentageBasis)
}
