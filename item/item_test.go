package item_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/item"
)

func noTax(gross core.Money) (core.Money, core.Money) { return gross, core.Zero }

func TestFinancialItem_EvaluateSelfTrigger_DisabledByUserAlwaysFalse(t *testing.T) {
	fi := &item.FinancialItem{DisabledByUser: true, StartEnabled: true}
	got := fi.EvaluateSelfTrigger(item.SelfTriggerInput{SimDate: core.NewSimDate(2026, time.January, 1)})
	assert.False(t, got)
	assert.False(t, fi.EnabledBySim())
}

func TestFinancialItem_EvaluateSelfTrigger_CreditCardAlwaysEnabled(t *testing.T) {
	fi := &item.FinancialItem{Type: item.TypeCreditCard}
	got := fi.EvaluateSelfTrigger(item.SelfTriggerInput{SimDate: core.NewSimDate(2026, time.January, 1)})
	assert.True(t, got)
}

func TestFinancialItem_EvaluateSelfTrigger_LoanAtZeroDisables(t *testing.T) {
	fi := &item.FinancialItem{Type: item.TypeLoan, Value: core.Zero}
	got := fi.EvaluateSelfTrigger(item.SelfTriggerInput{SimDate: core.NewSimDate(2026, time.January, 1)})
	assert.False(t, got)
}

func TestFinancialItem_EvaluateSelfTrigger_LoanNonZeroAlwaysEnabled(t *testing.T) {
	fi := &item.FinancialItem{Type: item.TypeLoan, Value: core.MustMoney("500")}
	got := fi.EvaluateSelfTrigger(item.SelfTriggerInput{SimDate: core.NewSimDate(2026, time.January, 1)})
	assert.True(t, got)
}

func TestFinancialItem_EvaluateSelfTrigger_OutsideDateRangeDisables(t *testing.T) {
	fi := &item.FinancialItem{
		Type:      item.TypeIncome,
		StartDate: core.NewSimDate(2027, time.January, 1),
		EndDate:   core.NewSimDate(2028, time.January, 1),
	}
	got := fi.EvaluateSelfTrigger(item.SelfTriggerInput{SimDate: core.NewSimDate(2026, time.January, 1)})
	assert.False(t, got)
}

func TestFinancialItem_EvaluateSelfTrigger_NoConditionsHoldsPreviousValue(t *testing.T) {
	fi := &item.FinancialItem{Type: item.TypeIncome, StartEnabled: true}
	date := core.NewSimDate(2026, time.January, 1)

	first := fi.EvaluateSelfTrigger(item.SelfTriggerInput{SimDate: date})
	assert.True(t, first)

	fi.SetEnabledBySim(false)
	second := fi.EvaluateSelfTrigger(item.SelfTriggerInput{SimDate: date.AddMonths(1)})
	assert.False(t, second)
}

func TestFinancialItem_EvaluateSelfTrigger_DefersToTriggerEngineWhenConfigured(t *testing.T) {
	fi := &item.FinancialItem{
		Type: item.TypeIncome,
		SelfTrigger: core.TriggerConditions{
			TriggerMatchType:  core.TriggerMatchAll,
			TriggerMatchValue: true,
			Age:               core.ValueTrigger{Enabled: true, Operator: core.OpGreaterOrEqual, ComparisonValue: core.NewMoneyFromInt(65)},
		},
	}
	got := fi.EvaluateSelfTrigger(item.SelfTriggerInput{SimDate: core.NewSimDate(2026, time.January, 1), Age: 70})
	assert.True(t, got)
}

func TestFinancialItem_ApplyInterest_Savings_TaxesNetAmount(t *testing.T) {
	fi := &item.FinancialItem{
		Type:  item.TypeSavings,
		Value: core.MustMoney("1000"),
		Interest: core.AmountFreq{
			Enabled: true, Amount: core.MustMoney("12"), IsPercentage: true,
			Schedule: core.AmountSchedule{Frequency: core.FreqAnnual},
		},
	}
	withhold := func(gross core.Money) (core.Money, core.Money) {
		tax := gross.Mul(decimal.NewFromFloat(0.5))
		return gross.Sub(tax), tax
	}
	gross, tax := fi.ApplyInterest(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2027, time.January, 1), withhold)
	assert.True(t, gross.Equal(core.MustMoney("120")))
	assert.True(t, tax.Equal(core.MustMoney("60")))
	assert.True(t, fi.Value.Equal(core.MustMoney("1060")))
}

func TestFinancialItem_ApplyInterest_Shares_RoutesThroughUnitPrice(t *testing.T) {
	fi := &item.FinancialItem{
		Type: item.TypeShares,
		ShareDetails: &item.ShareDetails{
			UnitCount: core.NewMoneyFromInt(10), UnitPrice: core.MustMoney("100"),
		},
		Interest: core.AmountFreq{
			Enabled: true, Amount: core.MustMoney("10"), IsPercentage: true,
			Schedule: core.AmountSchedule{Frequency: core.FreqAnnual},
		},
	}
	_, _ = fi.ApplyInterest(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2027, time.January, 1), noTax)
	assert.True(t, fi.ShareDetails.UnitPrice.Equal(core.MustMoney("110")))
	assert.True(t, fi.Value.Equal(core.MustMoney("1100")))
}

func TestFinancialItem_ApplyCashFlow_NetsInAndOut(t *testing.T) {
	fi := &item.FinancialItem{
		Value:   core.MustMoney("1000"),
		CashIn:  core.AmountFreq{Enabled: true, Amount: core.MustMoney("200"), Schedule: core.AmountSchedule{Frequency: core.FreqMonthly}},
		CashOut: core.AmountFreq{Enabled: true, Amount: core.MustMoney("50"), Schedule: core.AmountSchedule{Frequency: core.FreqMonthly}},
	}
	in, out, flow, tax := fi.ApplyCashFlow(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2026, time.February, 1), noTax)
	assert.True(t, in.Equal(core.MustMoney("200")))
	assert.True(t, out.Equal(core.MustMoney("50")))
	assert.True(t, flow.Equal(core.MustMoney("150")))
	assert.True(t, tax.IsZero())
}

func TestFinancialItem_Liquidate_ZeroesValueAndShares(t *testing.T) {
	fi := &item.FinancialItem{
		Value:        core.MustMoney("500"),
		ShareDetails: &item.ShareDetails{UnitCount: core.NewMoneyFromInt(5)},
	}
	fi.SetEnabledBySim(true)

	amount := fi.Liquidate()
	assert.True(t, amount.Equal(core.MustMoney("500")))
	assert.True(t, fi.Value.IsZero())
	assert.True(t, fi.ShareDetails.UnitCount.IsZero())
	assert.False(t, fi.EnabledBySim())
}
