package item_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/item"
)

func TestEventItem_ApplyPush_SharesBuysWholeUnitsLeavesRemainder(t *testing.T) {
	source := &item.FinancialItem{ID: "src00001", Value: core.MustMoney("5000")}
	target := &item.FinancialItem{
		ID:   "tgt00001",
		Type: item.TypeShares,
		ShareDetails: &item.ShareDetails{
			UnitCount: core.Zero, UnitPrice: core.MustMoney("95.50"),
		},
	}
	ev := &item.EventItem{
		ID: "evt00001",
		CashOut: core.AmountFreq{
			Enabled: true, Amount: core.MustMoney("1000"),
			Schedule: core.AmountSchedule{Frequency: core.FreqMonthly},
		},
	}

	fired := ev.Apply(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2026, time.February, 1), source, target)

	require.NotNil(t, fired)
	assert.Equal(t, item.TransferPush, fired.Kind)
	assert.True(t, fired.Amount.Equal(core.MustMoney("955")), "cost of 10 units at 95.50 should be transferred, not the full 1000")
	assert.False(t, fired.SweepToCashFlow, "shares target mutates Value directly; no sweep needed")
	assert.True(t, target.ShareDetails.UnitCount.Equal(core.NewMoneyFromInt(10)))
	assert.True(t, target.Value.Equal(core.MustMoney("955")))
}

func TestEventItem_ApplyPush_LoanOverpaymentCapsAtZero(t *testing.T) {
	source := &item.FinancialItem{ID: "src00001", Value: core.MustMoney("10000")}
	target := &item.FinancialItem{ID: "tgt00001", Type: item.TypeLoan, Value: core.MustMoney("-300")}
	ev := &item.EventItem{
		ID: "evt00001",
		CashOut: core.AmountFreq{
			Enabled: true, Amount: core.MustMoney("500"),
			Schedule: core.AmountSchedule{Frequency: core.FreqMonthly},
		},
	}

	fired := ev.Apply(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2026, time.February, 1), source, target)

	require.NotNil(t, fired)
	assert.True(t, fired.Amount.Equal(core.MustMoney("300")), "payment capped to remaining balance, not the full 500")
	assert.True(t, target.Value.IsZero())
}

func TestEventItem_ApplyPush_LiabilityMovesTowardZeroBelowCap(t *testing.T) {
	source := &item.FinancialItem{ID: "src00001", Value: core.MustMoney("10000")}
	target := &item.FinancialItem{ID: "tgt00001", Type: item.TypeLiability, Value: core.MustMoney("-1000")}
	ev := &item.EventItem{
		ID: "evt00001",
		CashOut: core.AmountFreq{
			Enabled: true, Amount: core.MustMoney("300"),
			Schedule: core.AmountSchedule{Frequency: core.FreqMonthly},
		},
	}

	fired := ev.Apply(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2026, time.February, 1), source, target)

	require.NotNil(t, fired)
	assert.True(t, fired.Amount.Equal(core.MustMoney("300")))
	assert.True(t, target.Value.Equal(core.MustMoney("-700")))
}

func TestEventItem_ApplyPull_SharesSellsCappedAtUnitsHeld(t *testing.T) {
	source := &item.FinancialItem{ID: "src00001", Value: core.Zero}
	target := &item.FinancialItem{
		ID:   "tgt00001",
		Type: item.TypeShares,
		ShareDetails: &item.ShareDetails{
			UnitCount: core.NewMoneyFromInt(5), UnitPrice: core.MustMoney("100"),
		},
	}
	ev := &item.EventItem{
		ID: "evt00001",
		CashIn: core.AmountFreq{
			Enabled: true, Amount: core.MustMoney("1000"),
			Schedule: core.AmountSchedule{Frequency: core.FreqMonthly},
		},
	}

	fired := ev.Apply(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2026, time.February, 1), source, target)

	require.NotNil(t, fired)
	assert.Equal(t, item.TransferPull, fired.Kind)
	assert.True(t, target.ShareDetails.UnitCount.IsZero(), "cannot sell more than the 5 units held")
	assert.True(t, fired.Amount.Equal(core.MustMoney("500")))
}

func TestEventItem_ApplyLiquidate_MovesFullValueAndDisablesTarget(t *testing.T) {
	source := &item.FinancialItem{ID: "src00001"}
	target := &item.FinancialItem{ID: "tgt00001", Value: core.MustMoney("2500")}
	target.SetEnabledBySim(true)
	ev := &item.EventItem{ID: "evt00001", Liquidate: true}

	fired := ev.Apply(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2026, time.February, 1), source, target)

	require.NotNil(t, fired)
	assert.Equal(t, item.TransferLiquidate, fired.Kind)
	assert.True(t, fired.Amount.Equal(core.MustMoney("2500")))
	assert.True(t, target.Value.IsZero())
	assert.False(t, target.EnabledBySim())
}

func TestEventItem_ApplyStateChange_Toggle(t *testing.T) {
	source := &item.FinancialItem{ID: "src00001"}
	target := &item.FinancialItem{ID: "tgt00001"}
	target.SetEnabledBySim(true)
	ev := &item.EventItem{ID: "evt00001", SetStateOnTrigger: true, TargetStateAction: item.ActionToggle}

	fired := ev.Apply(core.NewSimDate(2026, time.January, 1), core.NewSimDate(2026, time.February, 1), source, target)

	require.NotNil(t, fired)
	assert.Equal(t, item.TransferStateChange, fired.Kind)
	assert.False(t, target.EnabledBySim())
}

func TestEventItem_Evaluate_RequiresEnabledAndResolvedTarget(t *testing.T) {
	source := &item.FinancialItem{ID: "src00001"}
	target := &item.FinancialItem{ID: "tgt00001"}

	disabled := &item.EventItem{Enabled: false}
	assert.False(t, disabled.Evaluate(source, target, item.EvalContext{SimDate: core.NewSimDate(2026, time.January, 1)}))

	enabled := &item.EventItem{
		Enabled: true,
		Triggers: core.TriggerConditions{
			TriggerMatchType: core.TriggerMatchAll, TriggerMatchValue: true,
			TargetBalance: core.ValueTrigger{Enabled: true, Operator: core.OpGreaterOrEqual, ComparisonValue: core.MustMoney("100")},
		},
	}
	target.Value = core.MustMoney("500")
	assert.True(t, enabled.Evaluate(source, target, item.EvalContext{SimDate: core.NewSimDate(2026, time.January, 1)}))
}
