package absence_test

import (
	"testing"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/dates"
)

func TestDeriveStatus(t *testing.T) {
	start := dates.MustParse("2026-03-10")
	end := dates.MustParse("2026-03-20")

	tests := []struct {
		name  string
		today string
		want  absence.LeaveStatus
	}{
		{"before start", "2026-01-01", absence.StatusPlanned},
		{"day before start", "2026-03-09", absence.StatusPlanned},
		{"on start", "2026-03-10", absence.StatusActive},
		{"mid range", "2026-03-15", absence.StatusActive},
		{"on end", "2026-03-20", absence.StatusActive},
		{"day after end", "2026-03-21", absence.StatusEnded},
		{"after end", "2026-03-25", absence.StatusEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := absence.DeriveStatus(start, end, dates.MustParse(tt.today))
			if got != tt.want {
				t.Errorf("DeriveStatus(today=%s) = %s, want %s", tt.today, got, tt.want)
			}
		})
	}
}

func TestDeriveStatus_SingleDayLeave(t *testing.T) {
	day := dates.MustParse("2026-07-01")
	if got := absence.DeriveStatus(day, day, day); got != absence.StatusActive {
		t.Errorf("single-day leave on its own day = %s, want ACTIVE", got)
	}
}

func TestDeriveStatus_PartitionsTime(t *testing.T) {
	// Every day across the range maps to exactly one state and the sequence
	// is PLANNED* ACTIVE+ ENDED*.
	start := dates.MustParse("2026-03-10")
	end := dates.MustParse("2026-03-20")

	prev := absence.StatusPlanned
	for d := start.AddDays(-5); d.BeforeOrEqual(end.AddDays(5)); d = d.AddDays(1) {
		got := absence.DeriveStatus(start, end, d)
		switch prev {
		case absence.StatusActive:
			if got == absence.StatusPlanned {
				t.Fatalf("status went back to PLANNED at %s", d)
			}
		case absence.StatusEnded:
			if got != absence.StatusEnded {
				t.Fatalf("status left ENDED at %s", d)
			}
		}
		prev = got
	}
}

func TestLeaveRefresh(t *testing.T) {
	l := absence.Leave{
		StartDate: dates.MustParse("2026-03-10"),
		EndDate:   dates.MustParse("2026-03-20"),
		Status:    absence.StatusPlanned, // stale
	}
	l.Refresh(dates.MustParse("2026-03-25"))
	if l.Status != absence.StatusEnded {
		t.Errorf("Refresh left status %s, want ENDED", l.Status)
	}
}
