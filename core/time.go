package core

import "time"

// SimDate is a whole-day resolution date — no hour or minute component,
// since every simulation step spans a whole number of calendar days.
type SimDate struct {
	t time.Time
}

// NewSimDate constructs a date, normalizing to midnight UTC.
func NewSimDate(year int, month time.Month, day int) SimDate {
	return SimDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates an arbitrary time.Time to its calendar day.
func FromTime(t time.Time) SimDate {
	return NewSimDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day in UTC.
func Today() SimDate {
	now := time.Now().UTC()
	return NewSimDate(now.Year(), now.Month(), now.Day())
}

func (d SimDate) Time() time.Time { return d.t }

func (d SimDate) Before(o SimDate) bool        { return d.t.Before(o.t) }
func (d SimDate) After(o SimDate) bool         { return d.t.After(o.t) }
func (d SimDate) Equal(o SimDate) bool         { return d.t.Equal(o.t) }
func (d SimDate) BeforeOrEqual(o SimDate) bool { return d.Before(o) || d.Equal(o) }
func (d SimDate) AfterOrEqual(o SimDate) bool  { return d.After(o) || d.Equal(o) }

func (d SimDate) AddDays(n int) SimDate   { return SimDate{t: d.t.AddDate(0, 0, n)} }
func (d SimDate) AddMonths(n int) SimDate { return SimDate{t: d.t.AddDate(0, n, 0)} }
func (d SimDate) AddYears(n int) SimDate  { return SimDate{t: d.t.AddDate(n, 0, 0)} }

func (d SimDate) Year() int             { return d.t.Year() }
func (d SimDate) Month() time.Month     { return d.t.Month() }
func (d SimDate) Day() int              { return d.t.Day() }
func (d SimDate) Weekday() time.Weekday { return d.t.Weekday() }
func (d SimDate) IsZero() bool          { return d.t.IsZero() }

func (d SimDate) String() string { return d.t.Format("2006-01-02") }

func (d SimDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *SimDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*d = SimDate{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = SimDate{t: t}
	return nil
}

// DaysBetween returns the whole number of days from 'from' to 'to'.
func DaysBetween(from, to SimDate) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// DaysInMonth returns the number of days in the given month/year.
func DaysInMonth(year int, month time.Month) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	lastOfThis := firstOfNext.AddDate(0, 0, -1)
	return lastOfThis.Day()
}

func StartOfYear(year int) SimDate { return NewSimDate(year, time.January, 1) }
func EndOfYear(year int) SimDate   { return NewSimDate(year, time.December, 31) }

func StartOfMonth(year int, month time.Month) SimDate { return NewSimDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) SimDate {
	return NewSimDate(year, month, DaysInMonth(year, month))
}

// FloorYears returns the whole number of elapsed years from 'from' to 'to',
// i.e. age in completed years, accounting for whether the anniversary date
// has occurred yet in the current year.
func FloorYears(from, to SimDate) int {
	years := to.Year() - from.Year()
	anniversaryThisYear := NewSimDate(from.Year()+years, from.Month(), minInt(from.Day(), DaysInMonth(from.Year()+years, from.Month())))
	if to.Before(anniversaryThisYear) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// DateRange is a closed interval [Start, End] with a Contains check.
// Grounded on generic.Period (generic/period.go), trimmed to Contains.
type DateRange struct {
	Start SimDate
	End   SimDate
}

func (r DateRange) Contains(d SimDate) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}
