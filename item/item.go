package item

import (
	"github.com/falculator/falculator/core"
)

// FinancialItem is one entity in a portfolio: an income, expense, saving,
// asset, liability, loan, shares holding, or credit card. Per-type
// behavior is a handful of branches on Type inside the methods below,
// never a separate struct per type.
type FinancialItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TagsList    []string `json:"tags,omitempty"`
	Type        ItemType `json:"type"`

	Value core.Money `json:"value"`

	CashIn   core.AmountFreq `json:"cash_in"`
	CashOut  core.AmountFreq `json:"cash_out"`
	Interest core.AmountFreq `json:"interest"`

	ShareDetails *ShareDetails `json:"share_details,omitempty"`

	Events      []EventItem            `json:"events,omitempty"`
	SelfTrigger core.TriggerConditions `json:"self_trigger"`

	StartEnabled           bool         `json:"start_enabled"`
	DisabledByUser         bool         `json:"disabled_by_user"`
	enabledBySim           bool
	StartDate              core.SimDate `json:"start_date"`
	EndDate                core.SimDate `json:"end_date"`
	IsMainSavings          bool         `json:"is_main_savings"`
	IsLiquidAsset          bool         `json:"is_liquid_asset"`
	EvalOrder              int          `json:"eval_order"`
	LiquidateSelfOnTrigger bool         `json:"liquidate_self_on_trigger"`

	// hasTickedOnce distinguishes "step 0, use StartEnabled" from every
	// later step, where EnabledBySim retains its previous value absent a
	// trigger (step 7 of the self-trigger algorithm).
	hasTickedOnce bool
}

// ItemID, Tags, and EnabledBySim implement core.TaggedItem so tag
// predicates and trigger evaluation never need to know about
// FinancialItem directly.
func (fi *FinancialItem) ItemID() string     { return fi.ID }
func (fi *FinancialItem) Tags() []string     { return fi.TagsList }
func (fi *FinancialItem) EnabledBySim() bool { return fi.enabledBySim }

// SetEnabledBySim is exported for EventItem state-change actions and for
// the simulator to seed initial state; ordinary self-trigger evaluation
// goes through EvaluateSelfTrigger instead.
func (fi *FinancialItem) SetEnabledBySim(v bool) { fi.enabledBySim = v }

var _ core.TaggedItem = (*FinancialItem)(nil)

// SelfTriggerInput bundles the sim-wide aggregates EvaluateSelfTrigger
// needs beyond the item's own state.
type SelfTriggerInput struct {
	Items              []core.TaggedItem
	SimDate            core.SimDate
	Age                int
	LiquidAssets       core.Money
	MainSavingsBalance core.Money
	LogWarn            func(string)
}

// EvaluateSelfTrigger implements the self-activation algorithm: disabled
// items never run, CreditCards always run, a Loan at exactly zero value
// disables itself, items outside their date range never run (an unset,
// zero StartDate or EndDate leaves that side of the range open), and
// otherwise an item with any configured self-trigger condition defers to
// the composite trigger engine. An item with no configured conditions
// keeps running the way it started: Loans without conditions always run,
// everything else holds its previous EnabledBySim value (or StartEnabled
// on the very first step) since the trigger engine itself would otherwise
// report "false" for an empty condition list.
func (fi *FinancialItem) EvaluateSelfTrigger(in SelfTriggerInput) bool {
	if fi.DisabledByUser {
		fi.enabledBySim = false
		fi.hasTickedOnce = true
		return false
	}

	if fi.Type == TypeCreditCard {
		fi.enabledBySim = true
		fi.hasTickedOnce = true
		return true
	}

	if fi.Type == TypeLoan && fi.Value.IsZero() {
		fi.enabledBySim = false
		fi.hasTickedOnce = true
		return false
	}

	if (!fi.StartDate.IsZero() && fi.StartDate.After(in.SimDate)) ||
		(!fi.EndDate.IsZero() && fi.EndDate.Before(in.SimDate)) {
		fi.enabledBySim = false
		fi.hasTickedOnce = true
		return false
	}

	if fi.SelfTrigger.HasAnyConditions() {
		result := fi.SelfTrigger.Evaluate(core.EvalInput{
			Items:              in.Items,
			Owner:              fi,
			SimDate:            in.SimDate,
			Age:                in.Age,
			LiquidAssets:       in.LiquidAssets,
			MainSavingsBalance: in.MainSavingsBalance,
			TargetValue:        nil, // ignored in a self-trigger context
			LogWarn:            in.LogWarn,
		})
		fi.enabledBySim = result
		fi.hasTickedOnce = true
		return result
	}

	if fi.Type == TypeLoan {
		fi.enabledBySim = true
		fi.hasTickedOnce = true
		return true
	}

	if !fi.hasTickedOnce {
		fi.enabledBySim = fi.StartEnabled
	}
	fi.hasTickedOnce = true
	return fi.enabledBySim
}

// WithholdFunc splits a gross amount into a net amount applied to the
// item and the tax withheld from it, per whatever tax mode the
// simulation run is using.
type WithholdFunc func(gross core.Money) (net, tax core.Money)

// ApplyInterest computes this item's interest delta over (prev, curr] and
// applies it. Shares route the delta through UnitPrice and resync Value
// from UnitCount*UnitPrice afterward instead of touching Value directly.
// Savings interest is gross-taxed via withhold before the net amount is
// added to Value; every other type applies its gross delta untaxed. The
// returned tax is zero except for Savings.
func (fi *FinancialItem) ApplyInterest(prev, curr core.SimDate, withhold WithholdFunc) (interestAmount, taxPaid core.Money) {
	if fi.Type == TypeShares && fi.ShareDetails != nil {
		delta := fi.Interest.Compute(prev, curr, fi.ShareDetails.UnitPrice, nil)
		fi.ShareDetails.UnitPrice = fi.ShareDetails.UnitPrice.Add(delta)
		fi.Value = fi.ShareDetails.UnitCount.Mul(fi.ShareDetails.UnitPrice.Decimal())
		return delta, core.Zero
	}

	gross := fi.Interest.Compute(prev, curr, fi.Value, nil)

	if fi.Type == TypeSavings {
		net, tax := withhold(gross)
		fi.Value = fi.Value.Add(net)
		return gross, tax
	}

	fi.Value = fi.Value.Add(gross)
	return gross, core.Zero
}

// ApplyCashFlow computes this item's own cash_in and cash_out over
// (prev, curr] and folds them into a signed cash-flow delta that the
// simulator later sweeps into main savings. Neither cash_in nor cash_out
// mutates Value directly — only the sweep does. cash_in is taxed via
// withhold; cash_out never is.
func (fi *FinancialItem) ApplyCashFlow(prev, curr core.SimDate, withhold WithholdFunc) (cashIn, cashOut, cashFlow, taxPaid core.Money) {
	grossIn := fi.CashIn.Compute(prev, curr, fi.Value, nil)
	netIn, tax := withhold(grossIn)
	out := fi.CashOut.Compute(prev, curr, fi.Value, nil)

	return grossIn, out, netIn.Sub(out), tax
}

// Liquidate moves this item's full value to main savings and disables it,
// zeroing unit holdings for Shares.
func (fi *FinancialItem) Liquidate() core.Money {
	amount := fi.Value
	fi.Value = core.Zero
	fi.enabledBySim = false
	if fi.ShareDetails != nil {
		fi.ShareDetails.UnitCount = core.Zero
	}
	return amount
}
