package core

import "encoding/json"

// TriggerMatchType selects how TriggerConditions aggregates its configured
// condition results.
type TriggerMatchType string

const (
	TriggerMatchAll  TriggerMatchType = "All"
	TriggerMatchAny  TriggerMatchType = "Any"
	TriggerMatchNone TriggerMatchType = "None"
)

var triggerMatchTypeOrdinals = []string{"All", "Any", "None"}

func (t *TriggerMatchType) UnmarshalJSON(data []byte) error {
	s, err := DecodeEnum(data, triggerMatchTypeOrdinals)
	if err != nil {
		return err
	}
	*t = TriggerMatchType(s)
	return nil
}

// TriggerConditions is a composite predicate combining tag rules, a date
// range, and up to four ValueTriggers, aggregated under TriggerMatchType.
type TriggerConditions struct {
	ID                 string           `json:"id,omitempty"`
	TriggerMatchType   TriggerMatchType `json:"trigger_match_type,omitempty"`
	TriggerMatchValue  bool             `json:"trigger_match_value"`
	TagMatchType       TagMatchType     `json:"tag_match_type,omitempty"` // combines the TagRules sublist
	Age                ValueTrigger     `json:"age"`
	LiquidAssets       ValueTrigger     `json:"liquid_assets"`
	MainSavingsBalance ValueTrigger     `json:"main_savings_balance"`
	TargetBalance      ValueTrigger     `json:"target_balance"` // EventItem context only; ignored in SelfTrigger context
	TagRules           []TagPredicate   `json:"tag_rules,omitempty"`
	StartDate          *SimDate         `json:"start_date,omitempty"`
	EndDate            *SimDate         `json:"end_date,omitempty"`

	// Legacy carries deprecated MinAge/MaxAge and Min/MaxEnabled+Min/MaxValue
	// properties a parsed document may still have. Populated only by
	// UnmarshalJSON; never written back out (see MarshalJSON) and never
	// consulted outside Sanitize's migration pass.
	Legacy LegacyTriggerFields `json:"-"`
}

// LegacyTriggerFields captures the deprecated dynamic properties the
// source format once exposed through its property-grid reflection, kept
// around only long enough for Sanitize to migrate them into the current
// ValueTrigger fields (§9 of the design notes). A field is nil when the
// document never set it.
type LegacyTriggerFields struct {
	MinAge *int `json:"MinAge,omitempty"`
	MaxAge *int `json:"MaxAge,omitempty"`

	MinLiquidAssetsEnabled *bool    `json:"MinLiquidAssetsEnabled,omitempty"`
	MinLiquidAssetsValue   *float64 `json:"MinLiquidAssetsValue,omitempty"`
	MaxLiquidAssetsEnabled *bool    `json:"MaxLiquidAssetsEnabled,omitempty"`
	MaxLiquidAssetsValue   *float64 `json:"MaxLiquidAssetsValue,omitempty"`

	MinSavingsEnabled *bool    `json:"MinSavingsEnabled,omitempty"`
	MinSavingsValue   *float64 `json:"MinSavingsValue,omitempty"`
	MaxSavingsEnabled *bool    `json:"MaxSavingsEnabled,omitempty"`
	MaxSavingsValue   *float64 `json:"MaxSavingsValue,omitempty"`
}

// HasAny reports whether any legacy property was present on the parsed
// document, so Sanitize can skip the migration pass entirely for the
// common case of a document that never carried them.
func (l LegacyTriggerFields) HasAny() bool {
	return l.MinAge != nil || l.MaxAge != nil ||
		l.MinLiquidAssetsEnabled != nil || l.MaxLiquidAssetsEnabled != nil ||
		l.MinSavingsEnabled != nil || l.MaxSavingsEnabled != nil
}

// triggerConditionsWire mirrors TriggerConditions for JSON purposes, minus
// the Legacy field (which embeds its own tags directly into the document
// instead of nesting under "Legacy") and minus the UnmarshalJSON method
// that would otherwise recurse.
type triggerConditionsWire struct {
	ID                 string           `json:"id,omitempty"`
	TriggerMatchType   TriggerMatchType `json:"trigger_match_type,omitempty"`
	TriggerMatchValue  bool             `json:"trigger_match_value"`
	TagMatchType       TagMatchType     `json:"tag_match_type,omitempty"`
	Age                ValueTrigger     `json:"age"`
	LiquidAssets       ValueTrigger     `json:"liquid_assets"`
	MainSavingsBalance ValueTrigger     `json:"main_savings_balance"`
	TargetBalance      ValueTrigger     `json:"target_balance"`
	TagRules           []TagPredicate   `json:"tag_rules,omitempty"`
	StartDate          *SimDate         `json:"start_date,omitempty"`
	EndDate            *SimDate         `json:"end_date,omitempty"`
}

// UnmarshalJSON decodes the current fields plus whatever legacy dynamic
// properties the document still carries, so a pre-migration document loads
// without error; Sanitize is what actually migrates them (see
// item.MigrateLegacyAge / item.MigrateLegacyValue).
func (tc *TriggerConditions) UnmarshalJSON(data []byte) error {
	var wire triggerConditionsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var legacy LegacyTriggerFields
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	*tc = TriggerConditions{
		ID:                 wire.ID,
		TriggerMatchType:   wire.TriggerMatchType,
		TriggerMatchValue:  wire.TriggerMatchValue,
		TagMatchType:       wire.TagMatchType,
		Age:                wire.Age,
		LiquidAssets:       wire.LiquidAssets,
		MainSavingsBalance: wire.MainSavingsBalance,
		TargetBalance:      wire.TargetBalance,
		TagRules:           wire.TagRules,
		StartDate:          wire.StartDate,
		EndDate:            wire.EndDate,
		Legacy:             legacy,
	}
	return nil
}

// MarshalJSON writes the current fields only — once migrated, legacy
// properties never leave the deserializer and are erased on every save.
func (tc TriggerConditions) MarshalJSON() ([]byte, error) {
	return json.Marshal(triggerConditionsWire{
		ID:                 tc.ID,
		TriggerMatchType:   tc.TriggerMatchType,
		TriggerMatchValue:  tc.TriggerMatchValue,
		TagMatchType:       tc.TagMatchType,
		Age:                tc.Age,
		LiquidAssets:       tc.LiquidAssets,
		MainSavingsBalance: tc.MainSavingsBalance,
		TargetBalance:      tc.TargetBalance,
		TagRules:           tc.TagRules,
		StartDate:          tc.StartDate,
		EndDate:            tc.EndDate,
	})
}

// HasAnyConditions reports whether any condition is configured, used by
// FinancialItem.EvaluateSelfTrigger to decide whether to
// consult the trigger engine at all.
func (tc TriggerConditions) HasAnyConditions() bool {
	if len(tc.TagRules) > 0 {
		return true
	}
	if tc.StartDate != nil || tc.EndDate != nil {
		return true
	}
	if tc.Age.Enabled || tc.LiquidAssets.Enabled || tc.MainSavingsBalance.Enabled {
		return true
	}
	if tc.TargetBalance.Enabled {
		return true
	}
	return false
}

// EvalInput bundles the sim-wide aggregates TriggerConditions needs to
// evaluate its value triggers.
type EvalInput struct {
	Items              []TaggedItem
	Owner              TaggedItem
	SimDate            SimDate
	Age                int
	LiquidAssets       Money
	MainSavingsBalance Money
	// TargetValue is non-nil only when evaluating in an EventItem context;
	// a nil TargetValue means TargetBalance is ignored even if Enabled.
	TargetValue *Money
	LogWarn     func(string)
}

// Evaluate runs the fixed-order composite evaluation:
// build one bool per configured condition in document order, return false
// if nothing is configured, otherwise combine under
// (TriggerMatchType, TriggerMatchValue) and Record every ValueTrigger that
// was consumed and fired, exactly when the composite result is true.
func (tc *TriggerConditions) Evaluate(in EvalInput) bool {
	var results []bool
	var firedTriggers []*ValueTrigger

	if len(tc.TagRules) > 0 {
		results = append(results, tc.evaluateTagRules(in))
	}
	if tc.StartDate != nil {
		results = append(results, in.SimDate.AfterOrEqual(*tc.StartDate))
	}
	if tc.EndDate != nil {
		results = append(results, in.SimDate.BeforeOrEqual(*tc.EndDate))
	}
	if tc.Age.Enabled {
		ok := tc.Age.Check(NewMoneyFromInt(int64(in.Age)))
		results = append(results, ok)
		if ok {
			firedTriggers = append(firedTriggers, &tc.Age)
		}
	}
	if tc.LiquidAssets.Enabled {
		ok := tc.LiquidAssets.Check(in.LiquidAssets)
		results = append(results, ok)
		if ok {
			firedTriggers = append(firedTriggers, &tc.LiquidAssets)
		}
	}
	if tc.MainSavingsBalance.Enabled {
		ok := tc.MainSavingsBalance.Check(in.MainSavingsBalance)
		results = append(results, ok)
		if ok {
			firedTriggers = append(firedTriggers, &tc.MainSavingsBalance)
		}
	}
	if tc.TargetBalance.Enabled && in.TargetValue != nil {
		ok := tc.TargetBalance.Check(*in.TargetValue)
		results = append(results, ok)
		if ok {
			firedTriggers = append(firedTriggers, &tc.TargetBalance)
		}
	}

	if len(results) == 0 {
		return false
	}

	composite := combine(results, tc.TriggerMatchType, tc.TriggerMatchValue)
	if composite {
		for _, vt := range firedTriggers {
			vt.Record(in.SimDate)
		}
	}
	return composite
}

func (tc TriggerConditions) evaluateTagRules(in EvalInput) bool {
	var results []bool
	for _, rule := range tc.TagRules {
		if !rule.Enabled {
			continue
		}
		results = append(results, rule.Evaluate(in.Items, in.Owner, in.LogWarn))
	}
	if len(results) == 0 {
		return false
	}
	// TagMatchType combines the tag-rule sublist into a single bool using
	// the same All/Any/None semantics a TagPredicate uses against
	// MatchValue=true (every enabled tag rule "fires" or not). An unset
	// TagMatchType combines as All.
	matchType := TriggerMatchType(tc.TagMatchType)
	if matchType == "" {
		matchType = TriggerMatchAll
	}
	return combine(results, matchType, true)
}

func combine(results []bool, matchType TriggerMatchType, matchValue bool) bool {
	matched := 0
	for _, r := range results {
		if r == matchValue {
			matched++
		}
	}
	switch matchType {
	case TriggerMatchAll:
		return matched == len(results)
	case TriggerMatchAny:
		return matched > 0
	case TriggerMatchNone:
		return matched == 0
	default:
		return false
	}
}
