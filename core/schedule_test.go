package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/falculator/falculator/core"
)

func TestAmountSchedule_Monthly_OneOccurrencePerMonth(t *testing.T) {
	sched := core.AmountSchedule{Frequency: core.FreqMonthly}
	prev := core.NewSimDate(2026, time.January, 1)
	curr := core.NewSimDate(2026, time.February, 1)
	assert.Equal(t, 1, sched.Occurrences(prev, curr))
}

func TestAmountSchedule_Monthly_DayOfMonthClampsToShortMonth(t *testing.T) {
	dom := 31
	sched := core.AmountSchedule{Frequency: core.FreqMonthly, DayOfMonth: &dom}
	prev := core.NewSimDate(2026, time.January, 31)
	curr := core.NewSimDate(2026, time.February, 28)
	// February 2026 has 28 days, so the 31st clamps to the 28th and fires
	// exactly once in this window, not zero times.
	assert.Equal(t, 1, sched.Occurrences(prev, curr))
}

func TestAmountSchedule_Daily(t *testing.T) {
	sched := core.AmountSchedule{Frequency: core.FreqDaily}
	prev := core.NewSimDate(2026, time.January, 1)
	curr := core.NewSimDate(2026, time.January, 8)
	assert.Equal(t, 7, sched.Occurrences(prev, curr))
}

func TestAmountSchedule_Weekly_DefaultsToMonday(t *testing.T) {
	sched := core.AmountSchedule{Frequency: core.FreqWeekly}
	prev := core.NewSimDate(2026, time.January, 1) // a Thursday
	curr := core.NewSimDate(2026, time.January, 15)
	assert.Equal(t, 2, sched.Occurrences(prev, curr))
}

func TestAmountSchedule_Annual(t *testing.T) {
	july := time.July
	sched := core.AmountSchedule{Frequency: core.FreqAnnual, MonthOfYear: &july}
	prev := core.NewSimDate(2026, time.January, 1)
	curr := core.NewSimDate(2028, time.January, 1)
	assert.Equal(t, 2, sched.Occurrences(prev, curr))
}

func TestAmountSchedule_TriggerLimit_CapsOccurrences(t *testing.T) {
	sched := core.AmountSchedule{Frequency: core.FreqDaily, TriggerLimit: 3, TriggerCount: 2}
	prev := core.NewSimDate(2026, time.January, 1)
	curr := core.NewSimDate(2026, time.January, 11)
	assert.Equal(t, 1, sched.Occurrences(prev, curr))
}

func TestAmountSchedule_CurrBeforePrev_ReturnsZero(t *testing.T) {
	sched := core.AmountSchedule{Frequency: core.FreqDaily}
	prev := core.NewSimDate(2026, time.January, 10)
	curr := core.NewSimDate(2026, time.January, 1)
	assert.Equal(t, 0, sched.Occurrences(prev, curr))
}

func TestAmountSchedule_Sanitize_ClampsDayOfMonth(t *testing.T) {
	dom := 45
	sched := core.AmountSchedule{DayOfMonth: &dom, TriggerLimit: -5}
	sched.Sanitize()
	assert.Equal(t, 31, *sched.DayOfMonth)
	assert.Equal(t, 0, sched.TriggerLimit)
}

func TestMonthlyCompoundingSchedule(t *testing.T) {
	sched := core.MonthlyCompoundingSchedule()
	assert.Equal(t, core.FreqMonthly, sched.Frequency)
	assert.Equal(t, 31, *sched.DayOfMonth)
}
