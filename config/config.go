/*
Package config defines the root container for a simulation's inputs: the
portfolio of items, global timing and tax settings, and the normalization
pass (Sanitize) that every other package assumes has already run.
*/
package config

import (
	"time"

	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/item"
)

// StepIncrement is the simulation's tick granularity.
type StepIncrement string

const (
	StepDaily       StepIncrement = "Daily"
	StepWeekly      StepIncrement = "Weekly"
	StepFortnightly StepIncrement = "Fortnightly"
	StepMonthly     StepIncrement = "Monthly"
	StepAnnual      StepIncrement = "Annual"
)

var stepIncrementOrdinals = []string{"Daily", "Weekly", "Fortnightly", "Monthly", "Annual"}

func (si *StepIncrement) UnmarshalJSON(data []byte) error {
	s, err := core.DecodeEnum(data, stepIncrementOrdinals)
	if err != nil {
		return err
	}
	*si = StepIncrement(s)
	return nil
}

// TaxMode selects how interest and cash-in are withheld at each tick.
type TaxMode string

const (
	TaxNone                    TaxMode = "NoTax"
	TaxFlat                    TaxMode = "FlatTax"
	TaxAustralianComprehensive TaxMode = "AustralianComprehensive"
)

var taxModeOrdinals = []string{"NoTax", "FlatTax", "AustralianComprehensive"}

func (t *TaxMode) UnmarshalJSON(data []byte) error {
	s, err := core.DecodeEnum(data, taxModeOrdinals)
	if err != nil {
		return err
	}
	*t = TaxMode(s)
	return nil
}

// LogLevel mirrors core.Level at the configuration boundary, accepted as a
// symbolic name on the wire.
type LogLevel string

const (
	LogDebug LogLevel = "Debug"
	LogInfo  LogLevel = "Info"
	LogWarn  LogLevel = "Warn"
	LogError LogLevel = "Error"
)

var logLevelOrdinals = []string{"Debug", "Info", "Warn", "Error"}

func (l *LogLevel) UnmarshalJSON(data []byte) error {
	s, err := core.DecodeEnum(data, logLevelOrdinals)
	if err != nil {
		return err
	}
	*l = LogLevel(s)
	return nil
}

func (l LogLevel) ToCoreLevel() core.Level {
	switch l {
	case LogDebug:
		return core.LevelDebug
	case LogWarn:
		return core.LevelWarn
	case LogError:
		return core.LevelError
	default:
		return core.LevelInfo
	}
}

// Config is the root container: global settings plus the full item
// portfolio. Created on load and normalized by Sanitize; during a run the
// Simulator updates its items' values, enabled state and counters in place.
type Config struct {
	Version          int                   `json:"version"`
	BirthDate        core.SimDate          `json:"birth_date"`
	SimName          string                `json:"sim_name"`
	YearsToSim       int                   `json:"years_to_sim"`
	StepIncrement    StepIncrement         `json:"step_increment"`
	StartDateIsToday bool                  `json:"start_date_is_today"`
	StartDate        core.SimDate          `json:"start_date"`
	TaxMode          TaxMode               `json:"tax_mode"`
	TaxPercent       core.Money            `json:"tax_percent"`
	EndOfFY          core.SimDate          `json:"end_of_fy"`
	Items            []*item.FinancialItem `json:"items"`
	MainSavingsIdx   int                   `json:"main_savings_idx"`
	LogLevel         LogLevel              `json:"log_level"`
	FailOnOverdraw   bool                  `json:"fail_on_overdraw"`
}

// StepsPerYear returns how many ticks one simulated year takes at this
// Config's StepIncrement, used to size the total run length.
func (si StepIncrement) StepsPerYear() float64 {
	switch si {
	case StepDaily:
		return 365.25
	case StepWeekly:
		return 52
	case StepFortnightly:
		return 26
	case StepMonthly:
		return 12
	case StepAnnual:
		return 1
	default:
		return 12
	}
}

// StepDuration returns the calendar advance one tick makes.
func (si StepIncrement) StepDuration() func(core.SimDate) core.SimDate {
	switch si {
	case StepDaily:
		return func(d core.SimDate) core.SimDate { return d.AddDays(1) }
	case StepWeekly:
		return func(d core.SimDate) core.SimDate { return d.AddDays(7) }
	case StepFortnightly:
		return func(d core.SimDate) core.SimDate { return d.AddDays(14) }
	case StepMonthly:
		return func(d core.SimDate) core.SimDate { return d.AddMonths(1) }
	case StepAnnual:
		return func(d core.SimDate) core.SimDate { return d.AddYears(1) }
	default:
		return func(d core.SimDate) core.SimDate { return d.AddMonths(1) }
	}
}

// TotalSteps returns the number of ticks Sanitize-validated YearsToSim
// and StepIncrement imply, rounding up.
func (c *Config) TotalSteps() int {
	perYear := c.StepIncrement.StepsPerYear()
	total := float64(c.YearsToSim) * perYear
	steps := int(total)
	if float64(steps) < total {
		steps++
	}
	return steps
}

// MainSavings returns the designated main-savings item, valid only after
// Sanitize has run, which guarantees exactly one exists.
func (c *Config) MainSavings() *item.FinancialItem {
	if c.MainSavingsIdx < 0 || c.MainSavingsIdx >= len(c.Items) {
		return nil
	}
	return c.Items[c.MainSavingsIdx]
}

// defaultEndOfFY returns June 30 of the given year, the default fiscal
// year boundary when one isn't configured.
func defaultEndOfFY(year int) core.SimDate {
	return core.NewSimDate(year, time.June, 30)
}
