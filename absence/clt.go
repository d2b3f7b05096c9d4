/*
clt.go - CLT vacation entitlement rules

PURPOSE:
  Decides whether a proposed VACATION leave may be added for an employee and
  accrual period, given the vacation chunks already recorded against that
  period. Encodes the Brazilian CLT split-vacation constraints:

    1. At most 30 vacation days per accrual period.
    2. No chunk shorter than 5 consecutive calendar days.
    3. Once the 30-day entitlement is fully consumed, at least one chunk in
       the period must be 14 days or longer.

RULE ORDER:
  The cap is checked first, then the minimum chunk, then the long-chunk
  requirement; only the first violated rule is surfaced. The long-chunk rule
  fires only when the cumulative total reaches the 30-day ceiling, so short
  chunks early in the period stay valid as long as a 14+ day chunk exists
  before the quota is exhausted.

FAILURE SEMANTICS:
  Rejection is an expected, user-facing outcome, not a fault. The validator
  returns a Decision value and never an error; it performs no I/O and is
  deterministic for identical inputs. Each call validates a single proposed
  addition against the already-committed total - the caller must persist an
  accepted leave before the next call sees it.
*/
package absence

import (
	"fmt"

	"github.com/pliniou/Project-Ausencias/dates"
)

// Fixed domain constants, not configuration.
const (
	VacationQuotaDays = 30 // max vacation days per accrual period
	MinChunkDays      = 5  // shortest allowed vacation chunk
	LongChunkDays     = 14 // at least one chunk must reach this
)

// RejectReason is the closed set of rejection causes.
type RejectReason string

const (
	ReasonQuotaExceeded    RejectReason = "QUOTA_EXCEEDED"
	ReasonChunkTooShort    RejectReason = "CHUNK_TOO_SHORT"
	ReasonMissingLongChunk RejectReason = "MISSING_LONG_CHUNK"
)

// Decision is the discriminated result of a vacation validation. Callers
// branch on Accepted; Message is surfaced verbatim to the user on rejection.
type Decision struct {
	Accepted  bool
	Reason    RejectReason
	Message   string
	Remaining int // days still available in the period, clamped at zero
}

func accept(remaining int) Decision {
	return Decision{Accepted: true, Remaining: remaining}
}

func reject(reason RejectReason, message string, remaining int) Decision {
	return Decision{Reason: reason, Message: message, Remaining: remaining}
}

// ValidateVacationRequest decides whether proposedDaysOff more vacation days
// may be recorded for the employee against the accrual period starting at
// accrualPeriodStart. existing may be the employee's full leave history: only
// VACATION leaves tagged with the same accrual period are considered.
//
// proposedDaysOff must be a positive day count already computed from the
// date range (end - start + 1); anything else is a caller contract violation.
func ValidateVacationRequest(employeeID string, proposedDaysOff int, accrualPeriodStart dates.Date, existing []Leave) Decision {
	chunks := vacationChunks(employeeID, accrualPeriodStart, existing)

	totalTaken := 0
	for _, c := range chunks {
		totalTaken += c
	}
	newTotal := totalTaken + proposedDaysOff

	remaining := VacationQuotaDays - totalTaken
	if remaining < 0 {
		remaining = 0
	}

	if newTotal > VacationQuotaDays {
		return reject(ReasonQuotaExceeded,
			fmt.Sprintf("Limite de %d dias excedido. Saldo atual: %d dias.", VacationQuotaDays, remaining),
			remaining)
	}

	if proposedDaysOff < MinChunkDays {
		return reject(ReasonChunkTooShort,
			fmt.Sprintf("Nenhum período de férias pode ser inferior a %d dias corridos (CLT).", MinChunkDays),
			remaining)
	}

	// The boundary is inclusive: reaching exactly 30 days already demands a
	// long chunk somewhere in the period.
	if newTotal >= VacationQuotaDays && !hasLongChunk(chunks, proposedDaysOff) {
		return reject(ReasonMissingLongChunk,
			fmt.Sprintf("Pelo menos um dos períodos de férias deve ter %d dias ou mais (CLT).", LongChunkDays),
			remaining)
	}

	return accept(VacationQuotaDays - newTotal)
}

// vacationChunks extracts the day counts of the employee's VACATION leaves
// recorded against the given accrual period. Other employees, other leave
// types and other periods are irrelevant to the rules.
func vacationChunks(employeeID string, accrualPeriodStart dates.Date, existing []Leave) []int {
	var chunks []int
	for _, l := range existing {
		if l.EmployeeID != employeeID || l.Type != LeaveVacation {
			continue
		}
		if l.AccrualPeriodStart == nil || !l.AccrualPeriodStart.Equal(accrualPeriodStart) {
			continue
		}
		chunks = append(chunks, l.DaysOff)
	}
	return chunks
}

func hasLongChunk(chunks []int, proposed int) bool {
	if proposed >= LongChunkDays {
		return true
	}
	for _, c := range chunks {
		if c >= LongChunkDays {
			return true
		}
	}
	return false
}
