package core

import "github.com/shopspring/decimal"

// PercentageBasis selects which side's value a percentage AmountFreq is
// computed against.
type PercentageBasis string

const (
	BasisSource      PercentageBasis = "Source"
	BasisDestination PercentageBasis = "Destination" // EventItem AmountFreqs only
	BasisSelf        PercentageBasis = "Self"
)

var percentageBasisOrdinals = []string{"Source", "Destination", "Self"}

func (b *PercentageBasis) UnmarshalJSON(data []byte) error {
	s, err := DecodeEnum(data, percentageBasisOrdinals)
	if err != nil {
		return err
	}
	*b = PercentageBasis(s)
	return nil
}

// AmountFreq is a payment/interest specification: an amount, a
// percentage/fixed flag, a basis, an optional annualized-monthly-
// compounding mode, and the embedded schedule that gates when it fires.
// Grounded on generic.AccrualRate + timeoff.YearlyAccrual's per-frequency
// amount math (generic/accrual.go, timeoff/accrual.go), generalized from
// "days per year" to "money per schedule, fixed-or-percentage".
type AmountFreq struct {
	Enabled                      bool            `json:"enabled"`
	Amount                       Money           `json:"amount"` // a percentage (e.g. 4.5 means 4.5%) when IsPercentage
	IsPercentage                 bool            `json:"is_percentage"`
	PercentageBasis              PercentageBasis `json:"percentage_basis,omitempty"`
	AnnualRateMonthlyCompounding bool            `json:"annual_rate_monthly_compounding"`
	Schedule                     AmountSchedule  `json:"schedule"`
}

// Compute returns the signed delta this AmountFreq produces over
// (prev, curr]: count occurrences in the window, record them against the
// schedule's trigger budget, then apply the fixed, simple-percentage, or
// compounding-percentage branch depending on how this AmountFreq is
// configured. A pointer receiver because this is the one place that
// actually records a schedule's fires, per the "caller records fires
// exactly when the payment produced an effect" contract schedules
// themselves don't implement.
// destValue is nil for FinancialItem's own AmountFreqs (Destination basis
// is only meaningful for a transfer between two items); EventItem supplies
// it.
func (af *AmountFreq) Compute(prev, curr SimDate, sourceValue Money, destValue *Money) Money {
	if !af.Enabled || af.Amount.IsZero() {
		return Zero
	}
	n := af.Schedule.Occurrences(prev, curr)
	if n == 0 {
		return Zero
	}
	af.Schedule.TriggerCount += n

	basis := sourceValue
	if af.PercentageBasis == BasisDestination && destValue != nil {
		basis = *destValue
	}

	if !af.IsPercentage {
		return af.Amount.MulInt(n)
	}

	rate := af.Amount.Decimal()
	if af.AnnualRateMonthlyCompounding {
		exponent := decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(12))
		return PercentDelta(basis, rate, exponent)
	}
	return PercentDelta(basis, rate, decimal.NewFromInt(int64(n)))
}

// Sanitize enforces the structural parts of the basis restriction and compounding shape: a
// percentage-basis restricted to {Source, Self} for FinancialItem-owned
// AmountFreqs (the caller passes allowDestination=true for EventItem's),
// and the Monthly/day-31/no-month shape required whenever
// AnnualRateMonthlyCompounding is set.
func (af *AmountFreq) Sanitize(allowDestination bool) {
	if af.PercentageBasis == "" {
		af.PercentageBasis = BasisSource
	}
	if !allowDestination && af.PercentageBasis == BasisDestination {
		af.PercentageBasis = BasisSource
	}
	if af.AnnualRateMonthlyCompounding {
		af.IsPercentage = true
		af.Schedule = MonthlyCompoundingSchedule()
	}
	af.Schedule.Sanitize()
}
