package api

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/dates"
	"github.com/pliniou/Project-Ausencias/store/sqlite"
)

func TestStatusScheduler_RefreshesDriftedRows(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()
	store.SetClock(func() dates.Date { return dates.MustParse("2026-03-01") })

	ctx := context.Background()
	emp, err := store.CreateEmployee(ctx, absence.Employee{
		Name: "Plinio Rodrigues", Role: "ANALISTA", Department: "Jurídico",
		AccrualPeriodStart: dates.MustParse("2026-01-01"),
		AccrualPeriodEnd:   dates.MustParse("2026-12-31"),
		GrantPeriodStart:   dates.MustParse("2027-01-01"),
		GrantPeriodEnd:     dates.MustParse("2028-01-01"),
	})
	if err != nil {
		t.Fatalf("Failed to create employee: %v", err)
	}
	_, err = store.CreateLeave(ctx, absence.Leave{
		EmployeeID: emp.ID,
		Type:       absence.LeaveMedical,
		StartDate:  dates.MustParse("2026-03-10"),
		EndDate:    dates.MustParse("2026-03-12"),
		DaysOff:    3,
	})
	if err != nil {
		t.Fatalf("Failed to create leave: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scheduler := NewStatusScheduler(store, logger)
	scheduler.CheckInterval = time.Hour

	// The leave was PLANNED when written; move the clock past its end.
	store.SetClock(func() dates.Date { return dates.MustParse("2026-04-01") })
	scheduler.RunNow()

	n, err := store.RefreshLeaveStatuses(ctx)
	if err != nil {
		t.Fatalf("RefreshLeaveStatuses: %v", err)
	}
	if n != 0 {
		t.Errorf("scheduler left %d drifted rows", n)
	}
}

func TestStatusScheduler_StartStop(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scheduler := NewStatusScheduler(store, logger)
	scheduler.CheckInterval = 10 * time.Millisecond

	scheduler.Start()
	time.Sleep(30 * time.Millisecond)
	scheduler.Stop() // must not hang or panic
	scheduler.Stop() // repeated Stop is a no-op, not a closed-channel panic
}
