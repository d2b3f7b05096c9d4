// Package absence holds the domain model of the leave tracker: employees,
// leave records, holidays and company events, plus the status derivation and
// the CLT vacation rules that decide whether a vacation request is accepted.
package absence

import (
	"github.com/shopspring/decimal"

	"github.com/pliniou/Project-Ausencias/dates"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

// LeaveType classifies a leave record. VACATION is the only type subject to
// the CLT entitlement rules; everything else is tracked for the calendar.
type LeaveType string

const (
	LeaveVacation        LeaveType = "VACATION"
	LeaveMedical         LeaveType = "MEDICAL"
	LeaveMaternity       LeaveType = "MATERNITY"
	LeavePaternity       LeaveType = "PATERNITY"
	LeaveMarriage        LeaveType = "MARRIAGE"
	LeaveBereavement     LeaveType = "BEREAVEMENT"
	LeaveStudy           LeaveType = "STUDY"
	LeaveBloodDonation   LeaveType = "BLOOD_DONATION"
	LeaveCourtAppearance LeaveType = "COURT_APPEARANCE"
	LeaveElectoral       LeaveType = "ELECTORAL"
	LeaveAbsenceExcused  LeaveType = "ABSENCE_EXCUSED"
	LeaveWorkAccident    LeaveType = "WORK_ACCIDENT"
	LeaveDispensation    LeaveType = "DISPENSATION"
	LeaveTimeOff         LeaveType = "TIME_OFF"
	LeaveOther           LeaveType = "OTHER"
)

// LeaveTypes lists every valid leave type.
var LeaveTypes = []LeaveType{
	LeaveVacation, LeaveMedical, LeaveMaternity, LeavePaternity,
	LeaveMarriage, LeaveBereavement, LeaveStudy, LeaveBloodDonation,
	LeaveCourtAppearance, LeaveElectoral, LeaveAbsenceExcused,
	LeaveWorkAccident, LeaveDispensation, LeaveTimeOff, LeaveOther,
}

// Valid reports whether t is one of the known leave types.
func (t LeaveType) Valid() bool {
	for _, known := range LeaveTypes {
		if t == known {
			return true
		}
	}
	return false
}

// LeaveStatus is the temporal state of a leave relative to "today".
// It is always derivable from the date range; see DeriveStatus.
type LeaveStatus string

const (
	StatusPlanned LeaveStatus = "PLANNED"
	StatusActive  LeaveStatus = "ACTIVE"
	StatusEnded   LeaveStatus = "ENDED"
)

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "ACTIVE"
	EmployeeInactive EmployeeStatus = "INACTIVE"
)

type HolidayType string

const (
	HolidayNational  HolidayType = "NATIONAL"
	HolidayState     HolidayType = "STATE"
	HolidayMunicipal HolidayType = "MUNICIPAL"
	HolidayOptional  HolidayType = "OPTIONAL"
)

type EventType string

const (
	EventMeeting     EventType = "MEETING"
	EventTraining    EventType = "TRAINING"
	EventCelebration EventType = "CELEBRATION"
	EventOther       EventType = "OTHER"
)

// =============================================================================
// ENTITIES
// =============================================================================

// Employee is an HR record. The accrual period is the 12-month window in
// which vacation entitlement is earned; the grant period is the window in
// which it must be spent.
type Employee struct {
	ID                 string
	Name               string
	Role               string
	Department         string
	Status             EmployeeStatus
	VacationBalance    int // 0..30
	AccrualPeriodStart dates.Date
	AccrualPeriodEnd   dates.Date
	GrantPeriodStart   dates.Date
	GrantPeriodEnd     dates.Date
}

// Leave is one absence record. EmployeeName and EmployeeRole are snapshots
// taken at creation time so reports stay stable when the employee record
// changes later. Status is a derived view of the date range and is cached
// only for query convenience; never trust it without Refresh.
type Leave struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	EmployeeRole string
	Type         LeaveType
	StartDate    dates.Date
	EndDate      dates.Date

	// DaysOff is the inclusive calendar-day span. WorkDaysOff is entered
	// separately by the user; it is not derived from the holiday calendar.
	DaysOff     int
	WorkDaysOff *int

	// Efficiency is the percentage of work days over calendar days.
	Efficiency *decimal.Decimal

	Status LeaveStatus

	// AccrualPeriodStart links a VACATION leave to the accrual period it
	// draws down. Nil for every other leave type.
	AccrualPeriodStart *dates.Date

	Observations string
}

// Refresh recomputes the cached status from the date range.
func (l *Leave) Refresh(today dates.Date) {
	l.Status = DeriveStatus(l.StartDate, l.EndDate, today)
}

// Covers reports whether the leave spans the given day.
func (l Leave) Covers(day dates.Date) bool {
	return dates.InRange(day, l.StartDate, l.EndDate)
}

// Holiday is a day annotation only: it does not stop leave-day counting.
type Holiday struct {
	ID   string
	Date dates.Date
	Name string
	Type HolidayType
}

// CompanyEvent is a dated company activity with optional participants.
// Participants reference employees; they are not owned by the event.
type CompanyEvent struct {
	ID           string
	Date         dates.Date
	Name         string
	Type         EventType
	Participants []string
}
