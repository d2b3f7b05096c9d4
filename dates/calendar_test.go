package dates_test

import (
	"testing"
	"time"

	"github.com/pliniou/Project-Ausencias/dates"
)

func TestMonthDays(t *testing.T) {
	days := dates.MonthDays(dates.MustParse("2026-02-14"))
	if len(days) != 28 {
		t.Fatalf("February 2026 has %d days, want 28", len(days))
	}
	if days[0].String() != "2026-02-01" || days[27].String() != "2026-02-28" {
		t.Errorf("unexpected bounds: %s .. %s", days[0], days[27])
	}
}

func TestMonthGrid_AlignsFirstWeekday(t *testing.T) {
	// July 2026 starts on a Wednesday: three leading blanks.
	grid := dates.MonthGrid(dates.MustParse("2026-07-15"))
	if len(grid) != 34 {
		t.Fatalf("grid has %d cells, want 34", len(grid))
	}
	for i := 0; i < 3; i++ {
		if !grid[i].IsZero() {
			t.Errorf("cell %d should be blank", i)
		}
	}
	if grid[3].String() != "2026-07-01" {
		t.Errorf("first day cell = %s", grid[3])
	}
	if grid[3].Weekday() != time.Wednesday {
		t.Errorf("2026-07-01 is %s?", grid[3].Weekday())
	}
}

func TestMonthGrid_NoBlanksWhenMonthStartsSunday(t *testing.T) {
	// March 2026 starts on a Sunday.
	grid := dates.MonthGrid(dates.MustParse("2026-03-01"))
	if len(grid) != 31 {
		t.Fatalf("grid has %d cells, want 31", len(grid))
	}
	if grid[0].IsZero() {
		t.Error("no leading blanks expected")
	}
}

func TestMonthGrid_Deterministic(t *testing.T) {
	a := dates.MonthGrid(dates.MustParse("2026-07-01"))
	b := dates.MonthGrid(dates.MustParse("2026-07-31"))
	if len(a) != len(b) {
		t.Fatal("same month must yield the same grid")
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("cell %d differs: %s vs %s", i, a[i], b[i])
		}
	}
}
