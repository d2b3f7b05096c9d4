// Package dates provides calendar-day date handling for the leave tracker.
// All comparisons are done at day granularity: time-of-day never matters,
// every Date is pinned to UTC midnight.
package dates

import (
	"fmt"
	"time"
)

// Layout is the wire format for dates (ISO calendar date).
const Layout = "2006-01-02"

// =============================================================================
// DATE - Calendar day, normalized to UTC midnight
// =============================================================================

type Date struct {
	t time.Time
}

// New builds a Date from year/month/day.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time.Time to its calendar day.
func FromTime(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Parse parses an ISO calendar date ("2006-01-02").
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParse is Parse for compile-time-known literals; panics on bad input.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current calendar day.
func Today() Date {
	return FromTime(time.Now())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return FromTime(d.t.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return FromTime(d.t.AddDate(0, n, 0)) }
func (d Date) AddYears(n int) Date  { return FromTime(d.t.AddDate(n, 0, 0)) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD"; the zero Date encodes as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", s)
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// InRange reports whether d falls within [start, end], boundaries included.
func InRange(d, start, end Date) bool {
	return d.AfterOrEqual(start) && d.BeforeOrEqual(end)
}

// DaysBetween returns the signed number of calendar days from 'from' to 'to'.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// Month helpers
func StartOfMonth(d Date) Date { return New(d.Year(), d.Month(), 1) }

func EndOfMonth(d Date) Date {
	return New(d.Year(), d.Month(), 1).AddMonths(1).AddDays(-1)
}

// =============================================================================
// PERIOD - Inclusive date interval
// =============================================================================

type Period struct {
	Start Date
	End   Date
}

// Contains reports whether d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return InRange(d, p.Start, p.End)
}

// Days returns every day of the period in order.
func (p Period) Days() []Date {
	var days []Date
	for cur := p.Start; cur.BeforeOrEqual(p.End); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
