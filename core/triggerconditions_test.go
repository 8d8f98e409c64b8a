package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falculator/falculator/core"
)

func TestTriggerConditions_HasAnyConditions(t *testing.T) {
	assert.False(t, core.TriggerConditions{}.HasAnyConditions())

	withAge := core.TriggerConditions{Age: core.ValueTrigger{Enabled: true}}
	assert.True(t, withAge.HasAnyConditions())

	start := core.NewSimDate(2026, time.January, 1)
	withDate := core.TriggerConditions{StartDate: &start}
	assert.True(t, withDate.HasAnyConditions())
}

func TestTriggerConditions_Evaluate_AgeTrigger_RecordsOnFire(t *testing.T) {
	tc := &core.TriggerConditions{
		TriggerMatchType:  core.TriggerMatchAll,
		TriggerMatchValue: true,
		Age: core.ValueTrigger{
			Enabled: true, Operator: core.OpGreaterOrEqual, ComparisonValue: core.NewMoneyFromInt(65),
		},
	}
	now := core.NewSimDate(2026, time.January, 1)
	fired := tc.Evaluate(core.EvalInput{SimDate: now, Age: 65})
	assert.True(t, fired)
	assert.Equal(t, 1, tc.Age.TriggerCount)
}

func TestTriggerConditions_Evaluate_NoConditionsConfigured_ReturnsFalse(t *testing.T) {
	tc := &core.TriggerConditions{}
	assert.False(t, tc.Evaluate(core.EvalInput{}))
}

func TestTriggerConditions_Evaluate_DateRange(t *testing.T) {
	start := core.NewSimDate(2026, time.January, 1)
	end := core.NewSimDate(2026, time.December, 31)
	tc := &core.TriggerConditions{TriggerMatchType: core.TriggerMatchAll, TriggerMatchValue: true, StartDate: &start, EndDate: &end}

	assert.True(t, tc.Evaluate(core.EvalInput{SimDate: core.NewSimDate(2026, time.June, 1)}))
	assert.False(t, tc.Evaluate(core.EvalInput{SimDate: core.NewSimDate(2027, time.June, 1)}))
}

func TestTriggerConditions_JSON_RoundTrip_NoLegacy(t *testing.T) {
	start := core.NewSimDate(2026, time.January, 1)
	tc := core.TriggerConditions{
		TriggerMatchType: core.TriggerMatchAny,
		Age:              core.ValueTrigger{Enabled: true, Operator: core.OpGreaterOrEqual, ComparisonValue: core.NewMoneyFromInt(18)},
		StartDate:        &start,
	}
	data, err := json.Marshal(tc)
	require.NoError(t, err)

	var decoded core.TriggerConditions
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, core.TriggerMatchAny, decoded.TriggerMatchType)
	assert.True(t, decoded.Age.Enabled)
	assert.False(t, decoded.Legacy.HasAny())
}

func TestTriggerConditions_UnmarshalJSON_CapturesLegacyFields(t *testing.T) {
	doc := `{
		"trigger_match_type": "All",
		"MinAge": 60,
		"MinSavingsEnabled": true,
		"MinSavingsValue": 50000
	}`
	var tc core.TriggerConditions
	require.NoError(t, json.Unmarshal([]byte(doc), &tc))

	require.NotNil(t, tc.Legacy.MinAge)
	assert.Equal(t, 60, *tc.Legacy.MinAge)
	require.NotNil(t, tc.Legacy.MinSavingsEnabled)
	assert.True(t, *tc.Legacy.MinSavingsEnabled)
	require.NotNil(t, tc.Legacy.MinSavingsValue)
	assert.Equal(t, 50000.0, *tc.Legacy.MinSavingsValue)
	assert.True(t, tc.Legacy.HasAny())
}

func TestTriggerConditions_MarshalJSON_NeverEmitsLegacyFields(t *testing.T) {
	tc := core.TriggerConditions{
		Legacy: core.LegacyTriggerFields{MinAge: intPtr(60)},
	}
	data, err := json.Marshal(tc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "MinAge")
}

func intPtr(i int) *int { return &i }
