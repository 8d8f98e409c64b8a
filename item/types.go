/*
Package item implements the one concrete domain the simulation core
understands: portfolios of financial items connected by cash-flow and
event edges. Everything here depends on core, never the other way
around.

KEY CONCEPTS IN THIS FILE (types.go):
  - ItemType: a closed sum of the eight supported item kinds
  - ShareDetails: unit-count/unit-price bookkeeping for Shares items
  - TargetStateAction: the three ways an EventItem can flip a target's
    enabled_by_sim flag
*/
package item

import (
	"github.com/falculator/falculator/core"
)

// ItemType is a closed sum of variants. Per-type behavior (CreditCard
// forced-enable, Loan zero-disable, Shares unit math) lives in
// FinancialItem methods that switch on ItemType, not in per-type structs
// with their own interface implementations — there is one shape of item,
// with a handful of type-gated branches.
type ItemType string

const (
	TypeIncome     ItemType = "Income"
	TypeExpense    ItemType = "Expense"
	TypeSavings    ItemType = "Savings"
	TypeAsset      ItemType = "Asset"
	TypeLiability  ItemType = "Liability"
	TypeLoan       ItemType = "Loan"
	TypeShares     ItemType = "Shares"
	TypeCreditCard ItemType = "CreditCard"
)

// legacy integer encodings accepted on read: ordinal position mirrors
// declaration order above, oldest-first.
var itemTypeOrdinals = []string{
	"Income", "Expense", "Savings", "Asset", "Liability", "Loan", "Shares", "CreditCard",
}

func (t *ItemType) UnmarshalJSON(data []byte) error {
	s, err := core.DecodeEnum(data, itemTypeOrdinals)
	if err != nil {
		return err
	}
	*t = ItemType(s)
	return nil
}

// ShareDetails holds the unit bookkeeping for a Shares item. unit_price is
// the per-unit market value; interest accrual on a Shares item is applied
// to UnitPrice rather than Value directly, and Value is resynced from
// UnitCount * UnitPrice afterward.
type ShareDetails struct {
	UnitCount     core.Money `json:"unit_count"`
	UnitPrice     core.Money `json:"unit_price"`
	TotalCostBase core.Money `json:"total_cost_base"`
}

// TargetStateAction is how a state-change EventItem mutates its target's
// enabled_by_sim flag.
type TargetStateAction string

const (
	ActionEnable  TargetStateAction = "Enable"
	ActionDisable TargetStateAction = "Disable"
	ActionToggle  TargetStateAction = "Toggle"
)

var targetStateActionOrdinals = []string{"Enable", "Disable", "Toggle"}

func (a *TargetStateAction) UnmarshalJSON(data []byte) error {
	s, err := core.DecodeEnum(data, targetStateActionOrdinals)
	if err != nil {
		return err
	}
	*a = TargetStateAction(s)
	return nil
}
