package absence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/dates"
)

var periodStart = dates.MustParse("2026-01-01")

func vacation(employeeID string, daysOff int, period dates.Date) absence.Leave {
	p := period
	return absence.Leave{
		EmployeeID:         employeeID,
		Type:               absence.LeaveVacation,
		DaysOff:            daysOff,
		AccrualPeriodStart: &p,
	}
}

func TestValidateVacation_FullEntitlementSingleChunk(t *testing.T) {
	// No existing leaves, 30 days in one chunk: satisfies the cap and the
	// 14-day rule trivially.
	d := absence.ValidateVacationRequest("emp-1", 30, periodStart, nil)
	assert.True(t, d.Accepted)
	assert.Equal(t, 0, d.Remaining)
}

func TestValidateVacation_LongChunkAlreadyTaken(t *testing.T) {
	// 16 days taken, 14 more requested: newTotal 30, the 16-day chunk
	// satisfies the long-chunk rule.
	existing := []absence.Leave{vacation("emp-1", 16, periodStart)}
	d := absence.ValidateVacationRequest("emp-1", 14, periodStart, existing)
	assert.True(t, d.Accepted)
}

func TestValidateVacation_MissingLongChunk(t *testing.T) {
	// 10 + 20 = 30 with no chunk >= 14: rejected.
	existing := []absence.Leave{vacation("emp-1", 10, periodStart)}
	d := absence.ValidateVacationRequest("emp-1", 20, periodStart, existing)
	assert.False(t, d.Accepted)
	assert.Equal(t, absence.ReasonMissingLongChunk, d.Reason)
}

func TestValidateVacation_ChunkTooShort(t *testing.T) {
	d := absence.ValidateVacationRequest("emp-1", 4, periodStart, nil)
	assert.False(t, d.Accepted)
	assert.Equal(t, absence.ReasonChunkTooShort, d.Reason)
}

func TestValidateVacation_MinChunkBoundary(t *testing.T) {
	// Exactly 5 days is allowed.
	d := absence.ValidateVacationRequest("emp-1", 5, periodStart, nil)
	assert.True(t, d.Accepted)
}

func TestValidateVacation_QuotaExceeded(t *testing.T) {
	// 25 taken, 10 requested: over the cap, remaining reported as 5.
	existing := []absence.Leave{vacation("emp-1", 25, periodStart)}
	d := absence.ValidateVacationRequest("emp-1", 10, periodStart, existing)
	assert.False(t, d.Accepted)
	assert.Equal(t, absence.ReasonQuotaExceeded, d.Reason)
	assert.Equal(t, 5, d.Remaining)
	assert.Contains(t, d.Message, "Saldo atual: 5 dias")
}

func TestValidateVacation_QuotaBeforeChunkRule(t *testing.T) {
	// Both the cap and the minimum chunk are violated; the cap is surfaced.
	existing := []absence.Leave{vacation("emp-1", 30, periodStart)}
	d := absence.ValidateVacationRequest("emp-1", 3, periodStart, existing)
	assert.Equal(t, absence.ReasonQuotaExceeded, d.Reason)
	assert.Equal(t, 0, d.Remaining)
}

func TestValidateVacation_ExactQuotaNeedsLongChunk(t *testing.T) {
	// Boundary is inclusive: reaching exactly 30 triggers the long-chunk
	// check even though nothing exceeds the cap.
	existing := []absence.Leave{
		vacation("emp-1", 10, periodStart),
		vacation("emp-1", 10, periodStart),
	}
	d := absence.ValidateVacationRequest("emp-1", 10, periodStart, existing)
	assert.False(t, d.Accepted)
	assert.Equal(t, absence.ReasonMissingLongChunk, d.Reason)
}

func TestValidateVacation_BelowQuotaSkipsLongChunkRule(t *testing.T) {
	// Short-of-14 chunks are fine while the total stays under 30.
	existing := []absence.Leave{vacation("emp-1", 10, periodStart)}
	d := absence.ValidateVacationRequest("emp-1", 10, periodStart, existing)
	assert.True(t, d.Accepted)
	assert.Equal(t, 10, d.Remaining)
}

func TestValidateVacation_IgnoresOtherPeriodsAndTypes(t *testing.T) {
	otherPeriod := dates.MustParse("2025-01-01")
	existing := []absence.Leave{
		vacation("emp-1", 30, otherPeriod),                          // different accrual period
		vacation("emp-2", 30, periodStart),                          // different employee
		{EmployeeID: "emp-1", Type: absence.LeaveMedical, DaysOff: 30}, // not vacation
	}
	d := absence.ValidateVacationRequest("emp-1", 30, periodStart, existing)
	assert.True(t, d.Accepted)
}

func TestValidateVacation_Deterministic(t *testing.T) {
	existing := []absence.Leave{vacation("emp-1", 10, periodStart)}
	first := absence.ValidateVacationRequest("emp-1", 20, periodStart, existing)
	second := absence.ValidateVacationRequest("emp-1", 20, periodStart, existing)
	assert.Equal(t, first, second)
}
