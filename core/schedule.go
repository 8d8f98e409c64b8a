package core

import "time"

// Frequency enumerates the recurrence granularities a schedule can fire on.
type Frequency string

const (
	FreqDaily       Frequency = "Daily"
	FreqWeekly      Frequency = "Weekly"
	FreqFortnightly Frequency = "Fortnightly"
	FreqMonthly     Frequency = "Monthly"
	FreqAnnual      Frequency = "Annual"
)

var frequencyOrdinals = []string{"Daily", "Weekly", "Fortnightly", "Monthly", "Annual"}

func (f *Frequency) UnmarshalJSON(data []byte) error {
	s, err := DecodeEnum(data, frequencyOrdinals)
	if err != nil {
		return err
	}
	*f = Frequency(s)
	return nil
}

// epochMonday is the fortnightly anchor: weeks where
// (days since epoch Monday) % 14 == 0 are the firing weeks.
var epochMonday = mondayOnOrBefore(time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC))

func mondayOnOrBefore(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // days since Monday
	return t.AddDate(0, 0, -offset)
}

// AmountSchedule is a {frequency, anchor-day, trigger-limit} calendar
// predicate. Grounded on generic.AccrualSchedule's interface shape
// (generic/accrual.go) and timeoff.YearlyAccrual's month-stepping
// implementation (timeoff/accrual.go), adapted from "generate dated
// amounts" to "count firings in an interval" since AmountFreq is a
// separate stage that applies the amount.
type AmountSchedule struct {
	Frequency    Frequency     `json:"frequency"`
	DayOfWeek    *time.Weekday `json:"day_of_week,omitempty"`   // Weekly/Fortnightly anchor; default Monday
	DayOfMonth   *int          `json:"day_of_month,omitempty"`  // Monthly/Annual anchor, 1-31; 31 means "last day of month"
	MonthOfYear  *time.Month   `json:"month_of_year,omitempty"` // Annual anchor
	TriggerLimit int           `json:"trigger_limit,omitempty"` // 0 = unlimited
	TriggerCount int           `json:"trigger_count,omitempty"` // caller-maintained; schedules never mutate this themselves
}

// Occurrences returns the number of times the schedule fires in the
// half-open interval (prev, curr], capped by the remaining trigger budget.
// Schedules do not mutate TriggerCount: the caller records
// fires exactly when the payment/trigger actually produced an effect.
func (s AmountSchedule) Occurrences(prev, curr SimDate) int {
	if curr.Before(prev) {
		return 0
	}
	var n int
	switch s.Frequency {
	case FreqDaily:
		n = s.occurrencesDaily(prev, curr)
	case FreqWeekly:
		n = s.occurrencesWeekly(prev, curr)
	case FreqFortnightly:
		n = s.occurrencesFortnightly(prev, curr)
	case FreqMonthly:
		n = s.occurrencesMonthly(prev, curr)
	case FreqAnnual:
		n = s.occurrencesAnnual(prev, curr)
	default:
		n = 0
	}
	if s.TriggerLimit > 0 {
		remaining := s.TriggerLimit - s.TriggerCount
		if remaining < 0 {
			remaining = 0
		}
		if n > remaining {
			n = remaining
		}
	}
	if n < 0 {
		n = 0
	}
	return n
}

func (s AmountSchedule) occurrencesDaily(prev, curr SimDate) int {
	return DaysBetween(prev, curr)
}

func (s AmountSchedule) weekday() time.Weekday {
	if s.DayOfWeek != nil {
		return *s.DayOfWeek
	}
	return time.Monday
}

func (s AmountSchedule) occurrencesWeekly(prev, curr SimDate) int {
	wd := s.weekday()
	count := 0
	for d := prev.AddDays(1); d.BeforeOrEqual(curr); d = d.AddDays(1) {
		if d.Weekday() == wd {
			count++
		}
	}
	return count
}

func (s AmountSchedule) occurrencesFortnightly(prev, curr SimDate) int {
	wd := s.weekday()
	count := 0
	for d := prev.AddDays(1); d.BeforeOrEqual(curr); d = d.AddDays(1) {
		if d.Weekday() != wd {
			continue
		}
		monday := mondayOnOrBefore(d.Time())
		weeksSinceEpoch := int(monday.Sub(epochMonday).Hours() / 24 / 7)
		if weeksSinceEpoch%2 == 0 {
			count++
		}
	}
	return count
}

func (s AmountSchedule) dayOfMonth() int {
	if s.DayOfMonth != nil {
		return *s.DayOfMonth
	}
	return 31
}

// firingDayOfMonth returns the firing day for a given year/month, applying
// the "min(day_of_month, days_in_that_month)" rule for Monthly schedules.
func firingDayOfMonth(year int, month time.Month, dayOfMonth int) int {
	dim := DaysInMonth(year, month)
	if dayOfMonth > dim {
		return dim
	}
	if dayOfMonth < 1 {
		return 1
	}
	return dayOfMonth
}

func (s AmountSchedule) occurrencesMonthly(prev, curr SimDate) int {
	dom := s.dayOfMonth()
	count := 0
	cursor := StartOfMonth(prev.Year(), prev.Month())
	end := StartOfMonth(curr.Year(), curr.Month())
	for cursor.BeforeOrEqual(end) {
		fireDay := NewSimDate(cursor.Year(), cursor.Month(), firingDayOfMonth(cursor.Year(), cursor.Month(), dom))
		if fireDay.After(prev) && fireDay.BeforeOrEqual(curr) {
			count++
		}
		cursor = cursor.AddMonths(1)
	}
	return count
}

func (s AmountSchedule) occurrencesAnnual(prev, curr SimDate) int {
	dom := s.dayOfMonth()
	month := time.January
	if s.MonthOfYear != nil {
		month = *s.MonthOfYear
	}
	count := 0
	for year := prev.Year(); year <= curr.Year(); year++ {
		fireDay := NewSimDate(year, month, firingDayOfMonth(year, month, dom))
		if fireDay.After(prev) && fireDay.BeforeOrEqual(curr) {
			count++
		}
	}
	return count
}

// Sanitize clamps DayOfMonth into [1,31] and validates MonthOfYear,
// enforcing the structural half of the compounding-shape requirement for AmountFreqs that
// embed this schedule.
func (s *AmountSchedule) Sanitize() {
	if s.DayOfMonth != nil {
		d := *s.DayOfMonth
		if d < 1 {
			d = 1
		}
		if d > 31 {
			d = 31
		}
		s.DayOfMonth = &d
	}
	if s.MonthOfYear != nil {
		m := *s.MonthOfYear
		if m < time.January {
			m = time.January
		}
		if m > time.December {
			m = time.December
		}
		s.MonthOfYear = &m
	}
	if s.TriggerLimit < 0 {
		s.TriggerLimit = 0
	}
}

// MonthlyCompoundingSchedule returns the canonical schedule for an
// AmountFreq with AnnualRateMonthlyCompounding = true:
// Monthly, day_of_month=31, no month_of_year, unlimited.
func MonthlyCompoundingSchedule() AmountSchedule {
	dom := 31
	return AmountSchedule{Frequency: FreqMonthly, DayOfMonth: &dom}
}
