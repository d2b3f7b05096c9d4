/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES:
  All dates cross the wire as "YYYY-MM-DD" strings; dates.Date handles the
  (un)marshalling, with null for absent values.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/dates"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Role               string     `json:"role"`
	Department         string     `json:"department"`
	Status             string     `json:"status"`
	VacationBalance    int        `json:"vacation_balance"`
	AccrualPeriodStart dates.Date `json:"accrual_period_start"`
	AccrualPeriodEnd   dates.Date `json:"accrual_period_end"`
	GrantPeriodStart   dates.Date `json:"grant_period_start"`
	GrantPeriodEnd     dates.Date `json:"grant_period_end"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	Name               string     `json:"name"`
	Role               string     `json:"role"`
	Department         string     `json:"department"`
	Status             string     `json:"status,omitempty"`
	VacationBalance    *int       `json:"vacation_balance,omitempty"`
	AccrualPeriodStart dates.Date `json:"accrual_period_start"`
	AccrualPeriodEnd   dates.Date `json:"accrual_period_end"`
	GrantPeriodStart   dates.Date `json:"grant_period_start"`
	GrantPeriodEnd     dates.Date `json:"grant_period_end"`
}

// UpdateEmployeeRequest is a partial update; absent fields stay untouched.
type UpdateEmployeeRequest struct {
	Name               *string     `json:"name,omitempty"`
	Role               *string     `json:"role,omitempty"`
	Department         *string     `json:"department,omitempty"`
	Status             *string     `json:"status,omitempty"`
	VacationBalance    *int        `json:"vacation_balance,omitempty"`
	AccrualPeriodStart *dates.Date `json:"accrual_period_start,omitempty"`
	AccrualPeriodEnd   *dates.Date `json:"accrual_period_end,omitempty"`
	GrantPeriodStart   *dates.Date `json:"grant_period_start,omitempty"`
	GrantPeriodEnd     *dates.Date `json:"grant_period_end,omitempty"`
}

// VacationSummaryDTO summarizes one employee's vacation consumption within
// their current accrual period.
type VacationSummaryDTO struct {
	EmployeeID         string     `json:"employee_id"`
	AccrualPeriodStart dates.Date `json:"accrual_period_start"`
	AccrualPeriodEnd   dates.Date `json:"accrual_period_end"`
	Quota              int        `json:"quota"`
	Taken              int        `json:"taken"`
	Remaining          int        `json:"remaining"`
	HasLongChunk       bool       `json:"has_long_chunk"`
	Chunks             []LeaveDTO `json:"chunks"`
}

// =============================================================================
// LEAVES
// =============================================================================

// LeaveDTO represents a leave record in API responses.
type LeaveDTO struct {
	ID                 string           `json:"id"`
	EmployeeID         string           `json:"employee_id"`
	EmployeeName       string           `json:"employee_name"`
	EmployeeRole       string           `json:"employee_role"`
	Type               string           `json:"type"`
	StartDate          dates.Date       `json:"start_date"`
	EndDate            dates.Date       `json:"end_date"`
	DaysOff            int              `json:"days_off"`
	WorkDaysOff        *int             `json:"work_days_off,omitempty"`
	Efficiency         *decimal.Decimal `json:"efficiency,omitempty"`
	Status             string           `json:"status"`
	AccrualPeriodStart *dates.Date      `json:"accrual_period_start,omitempty"`
	Observations       string           `json:"observations,omitempty"`
}

// CreateLeaveRequest is the request to record a leave. The calendar-day
// count is always computed server-side from the date range.
type CreateLeaveRequest struct {
	EmployeeID         string      `json:"employee_id"`
	Type               string      `json:"type"`
	StartDate          dates.Date  `json:"start_date"`
	EndDate            dates.Date  `json:"end_date"`
	WorkDaysOff        *int        `json:"work_days_off,omitempty"`
	AccrualPeriodStart *dates.Date `json:"accrual_period_start,omitempty"`
	Observations       string      `json:"observations,omitempty"`
}

// UpdateLeaveRequest is a partial update; absent fields stay untouched.
type UpdateLeaveRequest struct {
	Type               *string     `json:"type,omitempty"`
	StartDate          *dates.Date `json:"start_date,omitempty"`
	EndDate            *dates.Date `json:"end_date,omitempty"`
	WorkDaysOff        *int        `json:"work_days_off,omitempty"`
	AccrualPeriodStart *dates.Date `json:"accrual_period_start,omitempty"`
	Observations       *string     `json:"observations,omitempty"`
}

// ValidateVacationRequest asks whether a vacation chunk would be accepted
// without recording anything.
type ValidateVacationRequest struct {
	EmployeeID         string     `json:"employee_id"`
	StartDate          dates.Date `json:"start_date"`
	EndDate            dates.Date `json:"end_date"`
	AccrualPeriodStart dates.Date `json:"accrual_period_start"`
}

// DecisionDTO is the validator verdict. On acceptance only remaining is
// meaningful; on rejection reason/message explain the refusal.
type DecisionDTO struct {
	Accepted  bool   `json:"accepted"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
	Remaining int    `json:"remaining"`
}

// =============================================================================
// HOLIDAYS AND EVENTS
// =============================================================================

type HolidayDTO struct {
	ID   string     `json:"id"`
	Date dates.Date `json:"date"`
	Name string     `json:"name"`
	Type string     `json:"type"`
}

type CreateHolidayRequest struct {
	Date dates.Date `json:"date"`
	Name string     `json:"name"`
	Type string     `json:"type"`
}

type UpdateHolidayRequest struct {
	Date *dates.Date `json:"date,omitempty"`
	Name *string     `json:"name,omitempty"`
	Type *string     `json:"type,omitempty"`
}

type EventDTO struct {
	ID           string     `json:"id"`
	Date         dates.Date `json:"date"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Participants []string   `json:"participants"`
}

type CreateEventRequest struct {
	Date         dates.Date `json:"date"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Participants []string   `json:"participants,omitempty"`
}

type UpdateEventRequest struct {
	Date         *dates.Date `json:"date,omitempty"`
	Name         *string     `json:"name,omitempty"`
	Type         *string     `json:"type,omitempty"`
	Participants *[]string   `json:"participants,omitempty"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// CalendarDTO is one month rendered as a Sunday-aligned grid. Cells before
// the first day of the month carry a null date.
type CalendarDTO struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Cells []CalendarCellDTO `json:"cells"`
}

// CalendarCellDTO annotates one grid cell with everything happening that day.
type CalendarCellDTO struct {
	Date     dates.Date   `json:"date"`
	Weekend  bool         `json:"weekend,omitempty"`
	Holidays []HolidayDTO `json:"holidays,omitempty"`
	Events   []EventDTO   `json:"events,omitempty"`
	Leaves   []LeaveDTO   `json:"leaves,omitempty"`
}

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionDTO struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
}

type UserDTO struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	EmployeeID *string `json:"employee_id,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

type CreateUserRequest struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e absence.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:                 e.ID,
		Name:               e.Name,
		Role:               e.Role,
		Department:         e.Department,
		Status:             string(e.Status),
		VacationBalance:    e.VacationBalance,
		AccrualPeriodStart: e.AccrualPeriodStart,
		AccrualPeriodEnd:   e.AccrualPeriodEnd,
		GrantPeriodStart:   e.GrantPeriodStart,
		GrantPeriodEnd:     e.GrantPeriodEnd,
	}
}

func toEmployeeDTOs(employees []absence.Employee) []EmployeeDTO {
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	return dtos
}

func toLeaveDTO(l absence.Leave) LeaveDTO {
	return LeaveDTO{
		ID:                 l.ID,
		EmployeeID:         l.EmployeeID,
		EmployeeName:       l.EmployeeName,
		EmployeeRole:       l.EmployeeRole,
		Type:               string(l.Type),
		StartDate:          l.StartDate,
		EndDate:            l.EndDate,
		DaysOff:            l.DaysOff,
		WorkDaysOff:        l.WorkDaysOff,
		Efficiency:         l.Efficiency,
		Status:             string(l.Status),
		AccrualPeriodStart: l.AccrualPeriodStart,
		Observations:       l.Observations,
	}
}

func toLeaveDTOs(leaves []absence.Leave) []LeaveDTO {
	dtos := make([]LeaveDTO, len(leaves))
	for i, l := range leaves {
		dtos[i] = toLeaveDTO(l)
	}
	return dtos
}

func toHolidayDTO(h absence.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date, Name: h.Name, Type: string(h.Type)}
}

func toEventDTO(e absence.CompanyEvent) EventDTO {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return EventDTO{ID: e.ID, Date: e.Date, Name: e.Name, Type: string(e.Type), Participants: participants}
}

func toDecisionDTO(d absence.Decision) DecisionDTO {
	return DecisionDTO{
		Accepted:  d.Accepted,
		Reason:    string(d.Reason),
		Message:   d.Message,
		Remaining: d.Remaining,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
