package item

import (
	"math"

	"github.com/falculator/falculator/core"
)

// EventItem is a conditional inter-item operation attached to a source
// item: push cash, pull cash, change the target's enabled state, or
// liquidate the target. Apply runs exactly one operation kind per firing,
// checked in the order liquidate, state change, push, pull; Sanitize turns
// off the cash transfers of an event that liquidates.
type EventItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name,omitempty"`

	SetStateOnTrigger bool              `json:"set_state_on_trigger"`
	TargetStateAction TargetStateAction `json:"target_state_action,omitempty"`

	CashOut   core.AmountFreq `json:"cash_out"`
	CashIn    core.AmountFreq `json:"cash_in"`
	Liquidate bool            `json:"liquidate"`

	Triggers core.TriggerConditions `json:"triggers"`
}

// TransferKind classifies what a Fired record describes.
type TransferKind string

const (
	TransferPush        TransferKind = "Push"
	TransferPull        TransferKind = "Pull"
	TransferLiquidate   TransferKind = "Liquidate"
	TransferStateChange TransferKind = "StateChange"
)

// Fired describes one EventItem firing, emitted into the current frame's
// event log. SweepToCashFlow is true for a push whose target is neither
// Loan/Liability nor Shares, and for a pull whose target is not Shares:
// those transfers have nowhere else to land except the source and target
// items' cash_flow accumulators, settled
// through the ordinary main-savings sweep at the end of the tick. When
// false, Apply already mutated target.Value (or target.EnabledBySim)
// directly and the sweep must not touch cash_flow for this firing.
type Fired struct {
	EventID         string
	SourceID        string
	TargetID        string
	Kind            TransferKind
	Amount          core.Money
	SweepToCashFlow bool
}

// EvalContext bundles everything Evaluate/Apply need beyond the event's
// own configuration.
type EvalContext struct {
	Items              []core.TaggedItem
	SimDate            core.SimDate
	Age                int
	LiquidAssets       core.Money
	MainSavingsBalance core.Money
	LogWarn            func(string)
}

// Evaluate reports whether this event should fire this tick: it must be
// enabled, have a resolved target, and its trigger conditions must
// evaluate true, with TargetValue supplied since this is an EventItem
// context (unlike a self-trigger).
func (e *EventItem) Evaluate(source *FinancialItem, target *FinancialItem, ctx EvalContext) bool {
	if !e.Enabled || target == nil {
		return false
	}
	targetValue := target.Value
	return e.Triggers.Evaluate(core.EvalInput{
		Items:              ctx.Items,
		Owner:              source,
		SimDate:            ctx.SimDate,
		Age:                ctx.Age,
		LiquidAssets:       ctx.LiquidAssets,
		MainSavingsBalance: ctx.MainSavingsBalance,
		TargetValue:        &targetValue,
		LogWarn:            ctx.LogWarn,
	})
}

// Apply dispatches to the one active operation kind and returns the
// Fired record produced, mirroring a switch-over-action-type engine:
// each branch owns its own bookkeeping and nothing falls through.
func (e *EventItem) Apply(prev, curr core.SimDate, source, target *FinancialItem) *Fired {
	switch {
	case e.Liquidate:
		return e.applyLiquidate(source, target)
	case e.SetStateOnTrigger:
		return e.applyStateChange(source, target)
	case e.CashOut.Enabled:
		return e.applyPush(prev, curr, source, target)
	case e.CashIn.Enabled:
		return e.applyPull(prev, curr, source, target)
	default:
		return nil
	}
}

func (e *EventItem) applyPush(prev, curr core.SimDate, source, target *FinancialItem) *Fired {
	delta := e.CashOut.Compute(prev, curr, source.Value, &target.Value)
	if delta.IsZero() {
		return nil
	}

	swept := false
	switch target.Type {
	case TypeLoan, TypeLiability:
		delta = capOverpayment(target.Value, delta)
		target.Value = target.Value.Add(delta)
	case TypeShares:
		delta = e.buyShares(target, delta)
	default:
		swept = true
	}

	return &Fired{EventID: e.ID, SourceID: source.ID, TargetID: target.ID, Kind: TransferPush, Amount: delta, SweepToCashFlow: swept}
}

func (e *EventItem) applyPull(prev, curr core.SimDate, source, target *FinancialItem) *Fired {
	delta := e.CashIn.Compute(prev, curr, source.Value, &target.Value)
	if delta.IsZero() {
		return nil
	}

	swept := false
	switch target.Type {
	case TypeShares:
		delta = e.sellShares(target, delta)
	default:
		swept = true
	}

	return &Fired{EventID: e.ID, SourceID: source.ID, TargetID: target.ID, Kind: TransferPull, Amount: delta, SweepToCashFlow: swept}
}

// buyShares converts a cash delta into whole units at the target's
// current unit price, leaving any fractional remainder untransferred.
func (e *EventItem) buyShares(target *FinancialItem, delta core.Money) core.Money {
	if target.ShareDetails == nil || target.ShareDetails.UnitPrice.IsZero() {
		return core.Zero
	}
	units := int64(math.Floor(delta.Float64() / target.ShareDetails.UnitPrice.Float64()))
	if units <= 0 {
		return core.Zero
	}
	cost := target.ShareDetails.UnitPrice.MulInt(int(units))
	target.ShareDetails.UnitCount = target.ShareDetails.UnitCount.Add(core.NewMoneyFromInt(units))
	target.ShareDetails.TotalCostBase = target.ShareDetails.TotalCostBase.Add(cost)
	target.Value = target.ShareDetails.UnitCount.Mul(target.ShareDetails.UnitPrice.Decimal())
	return cost
}

// sellShares converts a cash delta into whole units to sell, capped at
// the units actually held.
func (e *EventItem) sellShares(target *FinancialItem, delta core.Money) core.Money {
	if target.ShareDetails == nil || target.ShareDetails.UnitPrice.IsZero() {
		return core.Zero
	}
	units := int64(math.Ceil(delta.Float64() / target.ShareDetails.UnitPrice.Float64()))
	held := target.ShareDetails.UnitCount.Float64()
	if float64(units) > held {
		units = int64(held)
	}
	if units <= 0 {
		return core.Zero
	}
	proceeds := target.ShareDetails.UnitPrice.MulInt(int(units))
	target.ShareDetails.UnitCount = target.ShareDetails.UnitCount.Sub(core.NewMoneyFromInt(units))
	target.Value = target.ShareDetails.UnitCount.Mul(target.ShareDetails.UnitPrice.Decimal())
	return proceeds
}

// capOverpayment reduces delta, if needed, so that value+delta lands
// exactly on zero instead of crossing it, the mechanism that turns a
// Loan's "value == 0" auto-disable into an exact, deterministic equality.
func capOverpayment(value, delta core.Money) core.Money {
	if value.IsZero() {
		return core.Zero
	}
	result := value.Add(delta)
	crossedUp := value.IsNegative() && result.IsPositive()
	crossedDown := value.IsPositive() && result.IsNegative()
	if crossedUp || crossedDown {
		return value.Neg()
	}
	return delta
}

func (e *EventItem) applyLiquidate(source, target *FinancialItem) *Fired {
	amount := target.Liquidate()
	return &Fired{EventID: e.ID, SourceID: source.ID, TargetID: target.ID, Kind: TransferLiquidate, Amount: amount}
}

func (e *EventItem) applyStateChange(source, target *FinancialItem) *Fired {
	switch e.TargetStateAction {
	case ActionEnable:
		target.SetEnabledBySim(true)
	case ActionDisable:
		target.SetEnabledBySim(false)
	case ActionToggle:
		target.SetEnabledBySim(!target.EnabledBySim())
	}
	return &Fired{EventID: e.ID, SourceID: source.ID, TargetID: target.ID, Kind: TransferStateChange, Amount: core.Zero}
}
