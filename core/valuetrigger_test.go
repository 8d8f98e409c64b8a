package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/falculator/falculator/core"
)

func TestValueTrigger_Check_DisabledNeverFires(t *testing.T) {
	vt := core.ValueTrigger{Enabled: false, Operator: core.OpGreaterThan, ComparisonValue: core.Zero}
	assert.False(t, vt.Check(core.MustMoney("1000")))
}

func TestValueTrigger_Check_Operators(t *testing.T) {
	cases := []struct {
		op       core.Operator
		target   string
		value    string
		expected bool
	}{
		{core.OpEqual, "100", "100", true},
		{core.OpNotEqual, "100", "100", false},
		{core.OpGreaterThan, "100", "101", true},
		{core.OpGreaterOrEqual, "100", "100", true},
		{core.OpLessThan, "100", "99", true},
		{core.OpLessOrEqual, "100", "100", true},
	}
	for _, c := range cases {
		vt := core.ValueTrigger{Enabled: true, Operator: c.op, ComparisonValue: core.MustMoney(c.target)}
		assert.Equal(t, c.expected, vt.Check(core.MustMoney(c.value)), "operator %s", c.op)
	}
}

func TestValueTrigger_Check_RespectsTriggerLimit(t *testing.T) {
	vt := core.ValueTrigger{
		Enabled: true, Operator: core.OpGreaterOrEqual, ComparisonValue: core.Zero,
		TriggerLimit: 2, TriggerCount: 2,
	}
	assert.False(t, vt.Check(core.MustMoney("100")))
}

func TestValueTrigger_Record_IncrementsCountAndDate(t *testing.T) {
	vt := &core.ValueTrigger{}
	now := core.NewSimDate(2026, time.March, 1)
	vt.Record(now)
	assert.Equal(t, 1, vt.TriggerCount)
	assert.True(t, vt.LastTriggerDate.Equal(now))
}
