package absence

import "github.com/pliniou/Project-Ausencias/dates"

// DeriveStatus classifies a leave relative to today at calendar-day
// granularity. The three states partition time:
//
//	PLANNED  start strictly after today
//	ENDED    end strictly before today
//	ACTIVE   today within [start, end], boundaries included
//
// Pure and total: callers must re-invoke it whenever the date range changes
// and must not trust a stale cached status.
func DeriveStatus(start, end, today dates.Date) LeaveStatus {
	if start.After(today) {
		return StatusPlanned
	}
	if end.Before(today) {
		return StatusEnded
	}
	return StatusActive
}
