package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/dates"
	"github.com/pliniou/Project-Ausencias/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func fixedToday(s string) func() dates.Date {
	return func() dates.Date { return dates.MustParse(s) }
}

func seedEmployee(t *testing.T, store *sqlite.Store) absence.Employee {
	t.Helper()
	e, err := store.CreateEmployee(context.Background(), absence.Employee{
		Name:               "Plinio Rodrigues",
		Role:               "ANALISTA",
		Department:         "Jurídico Trabalhista",
		Status:             absence.EmployeeActive,
		VacationBalance:    30,
		AccrualPeriodStart: dates.MustParse("2026-01-01"),
		AccrualPeriodEnd:   dates.MustParse("2026-12-31"),
		GrantPeriodStart:   dates.MustParse("2027-01-01"),
		GrantPeriodEnd:     dates.MustParse("2028-01-01"),
	})
	require.NoError(t, err)
	return e
}

func TestEmployeeCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	e := seedEmployee(t, store)
	require.NotEmpty(t, e.ID, "create must assign an id")

	got, err := store.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	newRole := "ASSESSOR SENIOR"
	balance := 20
	updated, err := store.UpdateEmployee(ctx, e.ID, sqlite.EmployeeUpdate{
		Role:            &newRole,
		VacationBalance: &balance,
	})
	require.NoError(t, err)
	assert.Equal(t, "ASSESSOR SENIOR", updated.Role)
	assert.Equal(t, 20, updated.VacationBalance)
	assert.Equal(t, e.Name, updated.Name, "untouched fields must survive a partial update")

	require.NoError(t, store.DeleteEmployee(ctx, e.ID))
	_, err = store.GetEmployee(ctx, e.ID)
	assert.True(t, errors.Is(err, sqlite.ErrNotFound))
}

func TestCreateLeave_SnapshotsEmployeeAndDerivesStatus(t *testing.T) {
	store := newTestStore(t)
	store.SetClock(fixedToday("2026-03-15"))
	ctx := context.Background()

	e := seedEmployee(t, store)
	period := dates.MustParse("2026-01-01")
	l, err := store.CreateLeave(ctx, absence.Leave{
		EmployeeID:         e.ID,
		Type:               absence.LeaveVacation,
		StartDate:          dates.MustParse("2026-03-10"),
		EndDate:            dates.MustParse("2026-03-20"),
		DaysOff:            11,
		AccrualPeriodStart: &period,
	})
	require.NoError(t, err)

	assert.Equal(t, "Plinio Rodrigues", l.EmployeeName)
	assert.Equal(t, "ANALISTA", l.EmployeeRole)
	assert.Equal(t, absence.StatusActive, l.Status)
}

func TestCreateLeave_RejectsInvalidRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	e := seedEmployee(t, store)

	_, err := store.CreateLeave(ctx, absence.Leave{
		EmployeeID: e.ID,
		Type:       absence.LeaveMedical,
		StartDate:  dates.MustParse("2026-03-20"),
		EndDate:    dates.MustParse("2026-03-10"),
		DaysOff:    11,
	})
	assert.True(t, errors.Is(err, absence.ErrInvalidRange))
}

func TestCreateLeave_UnknownEmployee(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateLeave(context.Background(), absence.Leave{
		EmployeeID: "missing",
		Type:       absence.LeaveMedical,
		StartDate:  dates.MustParse("2026-03-10"),
		EndDate:    dates.MustParse("2026-03-11"),
		DaysOff:    2,
	})
	assert.True(t, errors.Is(err, sqlite.ErrNotFound))
}

func TestUpdateLeave_DateChangeRecomputesStatus(t *testing.T) {
	store := newTestStore(t)
	store.SetClock(fixedToday("2026-03-15"))
	ctx := context.Background()
	e := seedEmployee(t, store)

	l, err := store.CreateLeave(ctx, absence.Leave{
		EmployeeID: e.ID,
		Type:       absence.LeaveMedical,
		StartDate:  dates.MustParse("2026-03-10"),
		EndDate:    dates.MustParse("2026-03-20"),
		DaysOff:    11,
	})
	require.NoError(t, err)
	require.Equal(t, absence.StatusActive, l.Status)

	// Move the leave into the future; the cached status must follow.
	start := dates.MustParse("2026-06-01")
	end := dates.MustParse("2026-06-10")
	days := 10
	updated, err := store.UpdateLeave(ctx, l.ID, sqlite.LeaveUpdate{
		StartDate: &start,
		EndDate:   &end,
		DaysOff:   &days,
	})
	require.NoError(t, err)
	assert.Equal(t, absence.StatusPlanned, updated.Status)
}

func TestListVacationsInPeriod_FiltersTypeAndPeriod(t *testing.T) {
	store := newTestStore(t)
	store.SetClock(fixedToday("2026-06-01"))
	ctx := context.Background()
	e := seedEmployee(t, store)

	period := dates.MustParse("2026-01-01")
	otherPeriod := dates.MustParse("2025-01-01")

	mk := func(typ absence.LeaveType, tag *dates.Date, start, end string, days int) {
		t.Helper()
		_, err := store.CreateLeave(ctx, absence.Leave{
			EmployeeID:         e.ID,
			Type:               typ,
			StartDate:          dates.MustParse(start),
			EndDate:            dates.MustParse(end),
			DaysOff:            days,
			AccrualPeriodStart: tag,
		})
		require.NoError(t, err)
	}

	mk(absence.LeaveVacation, &period, "2026-02-01", "2026-02-10", 10)
	mk(absence.LeaveVacation, &otherPeriod, "2025-02-01", "2025-02-10", 10)
	mk(absence.LeaveMedical, nil, "2026-03-01", "2026-03-05", 5)

	got, err := store.ListVacationsInPeriod(ctx, e.ID, period)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].DaysOff)
}

func TestDeleteEmployee_CascadesToLeaves(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	e := seedEmployee(t, store)

	l, err := store.CreateLeave(ctx, absence.Leave{
		EmployeeID: e.ID,
		Type:       absence.LeaveMedical,
		StartDate:  dates.MustParse("2026-03-10"),
		EndDate:    dates.MustParse("2026-03-11"),
		DaysOff:    2,
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteEmployee(ctx, e.ID))

	_, err = store.GetLeave(ctx, l.ID)
	assert.True(t, errors.Is(err, sqlite.ErrNotFound), "leaves must cascade with their employee")
}

func TestRefreshLeaveStatuses(t *testing.T) {
	store := newTestStore(t)
	store.SetClock(fixedToday("2026-03-01"))
	ctx := context.Background()
	e := seedEmployee(t, store)

	_, err := store.CreateLeave(ctx, absence.Leave{
		EmployeeID: e.ID,
		Type:       absence.LeaveMedical,
		StartDate:  dates.MustParse("2026-03-10"),
		EndDate:    dates.MustParse("2026-03-20"),
		DaysOff:    11,
	})
	require.NoError(t, err)

	// The calendar moved on; the cached column drifted.
	store.SetClock(fixedToday("2026-04-01"))
	n, err := store.RefreshLeaveStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A second pass has nothing to do.
	n, err = store.RefreshLeaveStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLeavesOnDay(t *testing.T) {
	store := newTestStore(t)
	store.SetClock(fixedToday("2026-03-15"))
	ctx := context.Background()
	e := seedEmployee(t, store)

	_, err := store.CreateLeave(ctx, absence.Leave{
		EmployeeID: e.ID,
		Type:       absence.LeaveMedical,
		StartDate:  dates.MustParse("2026-03-10"),
		EndDate:    dates.MustParse("2026-03-20"),
		DaysOff:    11,
	})
	require.NoError(t, err)

	got, err := store.ListLeavesOn(ctx, dates.MustParse("2026-03-10"))
	require.NoError(t, err)
	assert.Len(t, got, 1, "start boundary is covered")

	got, err = store.ListLeavesOn(ctx, dates.MustParse("2026-03-21"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEventParticipants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	e1 := seedEmployee(t, store)
	e2, err := store.CreateEmployee(ctx, absence.Employee{
		Name: "Gustavo Henaut", Role: "GERENTE", Department: "Jurídico Trabalhista",
		AccrualPeriodStart: dates.MustParse("2026-06-01"),
		AccrualPeriodEnd:   dates.MustParse("2027-05-31"),
		GrantPeriodStart:   dates.MustParse("2027-06-01"),
		GrantPeriodEnd:     dates.MustParse("2028-06-01"),
	})
	require.NoError(t, err)

	ev, err := store.CreateEvent(ctx, absence.CompanyEvent{
		Date: dates.MustParse("2026-02-10"),
		Name: "Treinamento de Segurança",
		Type: absence.EventTraining,
		Participants: []string{e1.ID, e2.ID},
	})
	require.NoError(t, err)

	events, err := store.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.ElementsMatch(t, []string{e1.ID, e2.ID}, events[0].Participants)

	// Deleting a participant prunes them from the event.
	require.NoError(t, store.DeleteEmployee(ctx, e2.ID))
	events, err = store.ListEvents(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{e1.ID}, events[0].Participants)

	require.NoError(t, store.DeleteEvent(ctx, ev.ID))
}

func TestUserUniqueness(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, sqlite.User{Username: "admin", PasswordHash: "x", Role: "admin"})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, sqlite.User{Username: "admin", PasswordHash: "y", Role: "viewer"})
	assert.True(t, errors.Is(err, sqlite.ErrUsernameTaken))
}
