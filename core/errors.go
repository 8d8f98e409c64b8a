/*
errors.go - Centralized error kinds for the simulation core

Grounded directly on generic/errors.go's shape: sentinel errors for
errors.Is() checks, structured types that carry context and Unwrap to a
sentinel, and small classifier helpers. Domain packages (item, config, sim)
wrap these with additional context the way timeoff/ledger.go wraps
generic's sentinels.
*/
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors — use with errors.Is().
var (
	// ErrNoMainSavings is returned when Sanitize finds zero items with
	// IsMainSavings set and cannot synthesize one.
	ErrNoMainSavings = errors.New("no main savings item")

	// ErrMultipleMainSavings is returned when Sanitize finds two or more
	// items with IsMainSavings set.
	ErrMultipleMainSavings = errors.New("multiple main savings items")

	// ErrInvalidTargetReference names an EventItem whose target_id does
	// not resolve or equals the owning item's id. Sanitize reports that
	// case as a SanitizationCorrection and does not return this error.
	ErrInvalidTargetReference = errors.New("event item target reference is invalid")

	// ErrInvalidTagReference names a TagPredicate that references a tag
	// absent from the config's tag union. Sanitize reports that case as a
	// SanitizationCorrection and does not return this error.
	ErrInvalidTagReference = errors.New("tag predicate references an unknown tag")

	// ErrOverdraw names a main-savings value gone negative. Simulator.Run
	// does not return it: with fail_on_overdraw set, the run ends with the
	// last SimFrame flagged Overdrawn and a nil error.
	ErrOverdraw = errors.New("main savings balance overdrawn")

	// ErrCancelled is returned when a simulation run is stopped via
	// cancellation.
	ErrCancelled = errors.New("simulation cancelled")

	// ErrDivideByZero names a zero divisor in unit math. No function in
	// this module returns it: Sanitize does not check Shares unit prices,
	// and an EventItem buying or selling Shares whose unit_price is zero
	// transfers nothing.
	ErrDivideByZero = errors.New("division by zero in percentage or unit math")
)

// SanitizationCorrection is a single auto-corrected issue, logged at WARN
// and surfaced as part of a SanitizationReport diff.
type SanitizationCorrection struct {
	ItemID  string
	Field   string
	Message string
}

func (c SanitizationCorrection) String() string {
	if c.ItemID != "" {
		return fmt.Sprintf("[%s] %s: %s", c.ItemID, c.Field, c.Message)
	}
	return fmt.Sprintf("%s: %s", c.Field, c.Message)
}

// SanitizationFatalError wraps a condition that prevents the simulation
// from starting at all. Sanitize produces it when two or more items are
// marked as main savings.
type SanitizationFatalError struct {
	Reason error
	Detail string
}

func (e *SanitizationFatalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.Reason, e.Detail)
	}
	return e.Reason.Error()
}

func (e *SanitizationFatalError) Unwrap() error { return e.Reason }

// OverdrawError carries the frame date and balance at the moment an
// overdraw terminated a simulation.
type OverdrawError struct {
	At      SimDate
	Balance Money
}

func (e *OverdrawError) Error() string {
	return fmt.Sprintf("overdraw at %s: main savings balance %s", e.At, e.Balance)
}

func (e *OverdrawError) Unwrap() error { return ErrOverdraw }

// IsFatal reports whether err prevents a simulation from starting.
func IsFatal(err error) bool {
	var fatal *SanitizationFatalError
	return errors.As(err, &fatal)
}

// IsRetryable reports whether a caller might reasonably retry after fixing
// transient state. Falculator's core has no retryable error kinds today;
// this exists for symmetry with the other classifier helpers and future
// extension.
func IsRetryable(err error) bool {
	return false
}

// IsOverdraw reports whether err is (or wraps) ErrOverdraw.
func IsOverdraw(err error) bool {
	return errors.Is(err, ErrOverdraw)
}

// IsCancelled reports whether err is (or wraps) ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
