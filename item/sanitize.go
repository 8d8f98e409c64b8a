package item

import (
	"github.com/falculator/falculator/core"
)

// Sanitize enforces the per-item structural invariants: cash_in/cash_out/
// interest are always present and percentage-basis-restricted, interest is
// always a percentage, and each type's own rules (Shares unit math,
// CreditCard forced-enable, Loan's lack of extra structure) hold. Event
// target resolution is left to the config-level pass, which has the full
// item list; everything else an item can fix about itself happens here.
func (fi *FinancialItem) Sanitize(corrections *[]core.SanitizationCorrection) {
	fi.CashIn.Sanitize(false)
	fi.CashOut.Sanitize(false)
	fi.Interest.Sanitize(false)

	if !fi.Interest.IsPercentage {
		fi.Interest.IsPercentage = true
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "interest.is_percentage",
			Message: "interest must be a percentage; forced to true",
		})
	}

	switch fi.Type {
	case TypeShares:
		fi.sanitizeShares(corrections)
	case TypeCreditCard:
		fi.sanitizeCreditCard(corrections)
	}

	migrateLegacyTriggerFields(&fi.SelfTrigger, corrections, fi.ID)

	for i := range fi.Events {
		fi.Events[i].sanitizeAmountFreqs(corrections, fi.ID)
		migrateLegacyTriggerFields(&fi.Events[i].Triggers, corrections, fi.ID)
	}

	if fi.StartDate.After(fi.EndDate) && !fi.EndDate.IsZero() {
		fi.StartDate = fi.EndDate
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "start_date",
			Message: "start_date was after end_date; start_date pulled back to end_date",
		})
	}

	dedupeTags(fi)
}

func (fi *FinancialItem) sanitizeShares(corrections *[]core.SanitizationCorrection) {
	if fi.ShareDetails == nil {
		fi.ShareDetails = &ShareDetails{}
	}
	if fi.ShareDetails.UnitCount.IsNegative() {
		fi.ShareDetails.UnitCount = core.Zero
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "share_details.unit_count",
			Message: "unit_count cannot be negative; reset to 0",
		})
	}
	if fi.CashOut.Enabled {
		fi.CashOut.Enabled = false
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "cash_out.enabled",
			Message: "Shares items cannot have cash_out; disabled",
		})
	}
	if fi.CashIn.Enabled && !fi.CashIn.IsPercentage {
		fi.CashIn.IsPercentage = true
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "cash_in.is_percentage",
			Message: "Shares cash_in must be a percentage; forced to true",
		})
	}

	fi.Value = fi.ShareDetails.UnitCount.Mul(fi.ShareDetails.UnitPrice.Decimal())
	if fi.DisabledByUser {
		fi.Value = core.Zero
	}
}

func (fi *FinancialItem) sanitizeCreditCard(corrections *[]core.SanitizationCorrection) {
	if fi.Value.IsNegative() {
		fi.Value = core.Zero
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "value",
			Message: "CreditCard value cannot be negative; reset to 0",
		})
	}
	if !fi.Interest.Enabled {
		fi.Interest.Enabled = true
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "interest.enabled",
			Message: "CreditCard interest forced enabled",
		})
	}
	if fi.Interest.Amount.IsNegative() {
		fi.Interest.Amount = core.Zero
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "interest.amount",
			Message: "CreditCard interest amount cannot be negative; reset to 0",
		})
	}
	fi.Interest.IsPercentage = true
	fi.Interest.AnnualRateMonthlyCompounding = true
	fi.Interest.Schedule = core.MonthlyCompoundingSchedule()
	if fi.DisabledByUser {
		fi.DisabledByUser = false
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "disabled_by_user",
			Message: "CreditCard items can never be user-disabled; re-enabled",
		})
	}
	if !fi.StartEnabled {
		fi.StartEnabled = true
	}
	fi.IsLiquidAsset = false
	if fi.SelfTrigger.HasAnyConditions() {
		fi.SelfTrigger = core.TriggerConditions{}
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: fi.ID, Field: "self_trigger",
			Message: "CreditCard self_trigger conditions are ignored; cleared",
		})
	}
}

func dedupeTags(fi *FinancialItem) {
	seen := make(map[string]struct{}, len(fi.TagsList))
	out := make([]string, 0, len(fi.TagsList))
	for _, t := range fi.TagsList {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	fi.TagsList = out
}

// sanitizeAmountFreqs relaxes the percentage-basis restriction to allow
// Destination (an EventItem's transfer may target another item), applies
// the compounding-shape rule to both of an EventItem's AmountFreqs, and
// enforces the liquidate/cash-flow mutual exclusion.
func (e *EventItem) sanitizeAmountFreqs(corrections *[]core.SanitizationCorrection, ownerID string) {
	e.CashOut.Sanitize(true)
	e.CashIn.Sanitize(true)

	if e.Liquidate && (e.CashOut.Enabled || e.CashIn.Enabled) {
		e.CashOut.Enabled = false
		e.CashIn.Enabled = false
		*corrections = append(*corrections, core.SanitizationCorrection{
			ItemID: ownerID, Field: "events." + e.ID,
			Message: "liquidate and cash transfer are mutually exclusive; cash transfer disabled",
		})
	}
}

// migrateLegacyTriggerFields folds whatever legacy dynamic properties
// core.TriggerConditions.UnmarshalJSON captured into the current
// age/liquid_assets/main_savings_balance ValueTriggers, then clears
// Legacy so a saved document never carries the deprecated fields again.
// A no-op for the overwhelming majority of documents, which never set
// any of them.
func migrateLegacyTriggerFields(tc *core.TriggerConditions, corrections *[]core.SanitizationCorrection, ownerID string) {
	if !tc.Legacy.HasAny() {
		return
	}
	MigrateLegacyAge(tc, LegacyAgeRange{MinAge: tc.Legacy.MinAge, MaxAge: tc.Legacy.MaxAge}, corrections, ownerID)
	MigrateLegacyValue(&tc.LiquidAssets, LegacyValueRange{
		MinEnabled: tc.Legacy.MinLiquidAssetsEnabled, MinValue: tc.Legacy.MinLiquidAssetsValue,
		MaxEnabled: tc.Legacy.MaxLiquidAssetsEnabled, MaxValue: tc.Legacy.MaxLiquidAssetsValue,
	}, corrections, ownerID, "liquid_assets")
	MigrateLegacyValue(&tc.MainSavingsBalance, LegacyValueRange{
		MinEnabled: tc.Legacy.MinSavingsEnabled, MinValue: tc.Legacy.MinSavingsValue,
		MaxEnabled: tc.Legacy.MaxSavingsEnabled, MaxValue: tc.Legacy.MaxSavingsValue,
	}, corrections, ownerID, "main_savings_balance")
	*corrections = append(*corrections, core.SanitizationCorrection{
		ItemID: ownerID, Field: "trigger_conditions.legacy",
		Message: "legacy MinAge/MaxAge/Min-Max-Enabled/Value properties migrated to value triggers; erased",
	})
	tc.Legacy = core.LegacyTriggerFields{}
}

// LegacyAgeRange captures the deprecated MinAge/MaxAge fields a parsed
// document may still carry; once migrated they never leave the
// deserializer (see LegacyValueRange for the value-trigger counterpart).
type LegacyAgeRange struct {
	MinAge *int
	MaxAge *int
}

// LegacyValueRange captures the deprecated Min/MaxEnabled + Min/MaxValue
// fields attached to a legacy value trigger (liquid assets or main
// savings balance, depending on which property they were read from).
type LegacyValueRange struct {
	MinEnabled *bool
	MinValue   *float64
	MaxEnabled *bool
	MaxValue   *float64
}

// MigrateLegacyAge folds a LegacyAgeRange into tc.Age. The new model has a
// single age ValueTrigger, so when both bounds are present only MinAge
// survives (as GreaterThanOrEqual) — the common "triggers once old enough"
// usage — and the dropped MaxAge bound is reported as a correction rather
// than silently discarded.
func MigrateLegacyAge(tc *core.TriggerConditions, legacy LegacyAgeRange, corrections *[]core.SanitizationCorrection, ownerID string) {
	if legacy.MinAge == nil && legacy.MaxAge == nil {
		return
	}
	switch {
	case legacy.MinAge != nil:
		tc.Age = core.ValueTrigger{
			Enabled:         true,
			Operator:        core.OpGreaterOrEqual,
			ComparisonValue: core.NewMoneyFromInt(int64(*legacy.MinAge)),
		}
		if legacy.MaxAge != nil {
			*corrections = append(*corrections, core.SanitizationCorrection{
				ItemID: ownerID, Field: "self_trigger.age",
				Message: "legacy MaxAge cannot be represented alongside MinAge in the current single-bound age trigger; MaxAge dropped",
			})
		}
	case legacy.MaxAge != nil:
		tc.Age = core.ValueTrigger{
			Enabled:         true,
			Operator:        core.OpLessOrEqual,
			ComparisonValue: core.NewMoneyFromInt(int64(*legacy.MaxAge)),
		}
	}
}

// MigrateLegacyValue folds a LegacyValueRange into target (either
// tc.LiquidAssets or tc.MainSavingsBalance, as resolved by the caller),
// under the same single-bound collapse rule as MigrateLegacyAge.
func MigrateLegacyValue(target *core.ValueTrigger, legacy LegacyValueRange, corrections *[]core.SanitizationCorrection, ownerID, field string) {
	minSet := legacy.MinEnabled != nil && *legacy.MinEnabled && legacy.MinValue != nil
	maxSet := legacy.MaxEnabled != nil && *legacy.MaxEnabled && legacy.MaxValue != nil
	if !minSet && !maxSet {
		return
	}
	switch {
	case minSet:
		*target = core.ValueTrigger{
			Enabled:         true,
			Operator:        core.OpGreaterOrEqual,
			ComparisonValue: core.NewMoneyFromFloat(*legacy.MinValue),
		}
		if maxSet {
			*corrections = append(*corrections, core.SanitizationCorrection{
				ItemID: ownerID, Field: field,
				Message: "legacy max bound cannot be represented alongside the min bound in the current single-bound value trigger; max bound dropped",
			})
		}
	case maxSet:
		*target = core.ValueTrigger{
			Enabled:         true,
			Operator:        core.OpLessOrEqual,
			ComparisonValue: core.NewMoneyFromFloat(*legacy.MaxValue),
		}
	}
}
