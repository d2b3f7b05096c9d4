package absence

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pliniou/Project-Ausencias/dates"
)

// ErrInvalidRange is returned when a leave's end date precedes its start.
var ErrInvalidRange = errors.New("end date before start date")

// CountDays returns the inclusive calendar-day span of [start, end].
// Holidays and weekends are counted; work-day figures are entered separately.
func CountDays(start, end dates.Date) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	return dates.DaysBetween(start, end) + 1, nil
}

// Efficiency returns workDays over calendarDays as a percentage with one
// decimal place. Returns zero when calendarDays is not positive.
func Efficiency(workDays, calendarDays int) decimal.Decimal {
	if calendarDays <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(workDays)).
		Div(decimal.NewFromInt(int64(calendarDays))).
		Mul(decimal.NewFromInt(100)).
		Round(1)
}
