/*
Package sim drives a config.Config through its tick loop and produces the
append-only sequence of SimFrame snapshots a caller consumes. Nothing here
mutates a Config after sanitization except through the Simulator.
*/
package sim

import (
	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/item"
)

// ItemState is a point-in-time snapshot of one item's externally visible
// fields, independent of the live FinancialItem the simulator continues to
// mutate on the next tick. The per-tick amount fields are zero for an item
// that wasn't active this tick.
type ItemState struct {
	ItemID         string
	Name           string
	Type           item.ItemType
	Value          core.Money
	CashInAmount   core.Money
	CashOutAmount  core.Money
	InterestAmount core.Money
	CashFlow       core.Money
	TaxPaid        core.Money
	EnabledBySim   bool
	UnitCount      core.Money
	UnitPrice      core.Money
}

// SimEvent is the frame-local record of one EventItem firing, carried over
// from item.Fired without the SweepToCashFlow bookkeeping detail that only
// the simulator itself needs.
type SimEvent struct {
	EventID  string
	SourceID string
	TargetID string
	Kind     item.TransferKind
	Amount   core.Money
}

// SimFrame is one tick's complete, immutable snapshot: every item's state,
// the tax withheld this tick, and the events that fired. Once appended to a
// Simulator's history it is never mutated again — the append-only-log shape
// used throughout this codebase for anything that accumulates over time,
// specialized here to "whole-portfolio snapshot" rather than "per-transaction
// delta" since every tick recomputes full state instead of replaying deltas.
type SimFrame struct {
	StepIndex    int
	FrameDate    core.SimDate
	ItemStates   []ItemState
	TotalTaxPaid core.Money
	Events       []SimEvent
	Overdrawn    bool
}

func snapshotItem(fi *item.FinancialItem, tick tickAmounts) ItemState {
	st := ItemState{
		ItemID:         fi.ID,
		Name:           fi.Name,
		Type:           fi.Type,
		Value:          fi.Value,
		EnabledBySim:   fi.EnabledBySim(),
		CashInAmount:   tick.cashIn,
		CashOutAmount:  tick.cashOut,
		InterestAmount: tick.interest,
		CashFlow:       tick.cashFlow,
		TaxPaid:        tick.tax,
	}
	if sd := fi.ShareDetails; sd != nil {
		st.UnitCount = sd.UnitCount
		st.UnitPrice = sd.UnitPrice
	}
	return st
}

// tickAmounts bundles the per-item numbers one tick produced, kept
// separately from the live FinancialItem since they don't persist across
// ticks.
type tickAmounts struct {
	cashIn, cashOut, interest, cashFlow, tax core.Money
}
