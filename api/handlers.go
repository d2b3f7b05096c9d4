/*
handlers.go - HTTP API handlers for the leave tracker

PURPOSE:
  Exposes the absence domain via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login                Issue a token
    POST   /api/auth/change-password      Change own password
    GET    /api/auth/users                List accounts (admin)
    POST   /api/auth/users                Create account (admin)
    PUT    /api/auth/users/{id}/password  Reset a password (admin)
    DELETE /api/auth/users/{id}           Delete account (admin)

  Employees:
    GET    /api/employees                       List employees
    POST   /api/employees                       Create employee
    GET    /api/employees/{id}                  Get employee
    PUT    /api/employees/{id}                  Partial update
    DELETE /api/employees/{id}                  Delete (cascades leaves)
    GET    /api/employees/{id}/leaves           Leave history
    GET    /api/employees/{id}/vacation-summary Accrual-period summary

  Leaves:
    GET    /api/leaves                  List (filter: status, employee_id, type)
    POST   /api/leaves                  Record a leave (vacation rules enforced)
    POST   /api/leaves/validate         Dry-run the vacation rules
    GET    /api/leaves/active           Leaves covering today
    GET    /api/leaves/planned          Future leaves
    GET    /api/leaves/today            Who is out today
    GET    /api/leaves/{id}             Get leave
    PUT    /api/leaves/{id}             Partial update (rules re-checked)
    DELETE /api/leaves/{id}             Delete leave

  Holidays, Events:     CRUD under /api/holidays and /api/events
  Calendar:             GET /api/calendar/{year}/{month}
  Exports:              GET /api/export/leaves.txt, /api/export/leaves.csv
  Admin:                POST /api/admin/refresh-statuses

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing/invalid credentials
  - 403: Role not allowed
  - 404: Resource not found
  - 409: Conflict (duplicate username)
  - 422: Vacation request rejected by the CLT rules (DecisionDTO body)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/auth"
	"github.com/pliniou/Project-Ausencias/dates"
	"github.com/pliniou/Project-Ausencias/export"
	"github.com/pliniou/Project-Ausencias/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Auth  *auth.Service
}

// NewHandler creates a new handler with the given store and auth service.
func NewHandler(store *sqlite.Store, authService *auth.Service) *Handler {
	return &Handler{Store: store, Auth: authService}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login verifies credentials and returns a signed token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sess, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, SessionDTO{
		Token:     sess.Token,
		UserID:    sess.UserID,
		Username:  sess.Username,
		Role:      sess.Role,
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
	})
}

// ChangePassword changes the password of the authenticated user.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	_, username, _, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token", err)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), username, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Current password is wrong", nil)
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "New password is too short", nil)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to change password", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers returns all accounts. Admin only (enforced in the router).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = UserDTO{
			ID:         u.ID,
			Username:   u.Username,
			Role:       u.Role,
			EmployeeID: u.EmployeeID,
			CreatedAt:  formatTime(u.CreatedAt),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser registers a new account. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	u, err := h.Auth.Register(r.Context(), req.Username, req.Password, req.Role, req.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, "Role must be admin, user or viewer", nil)
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "Password is too short", nil)
		case errors.Is(err, sqlite.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "Username already taken", nil)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, UserDTO{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		EmployeeID: u.EmployeeID,
		CreatedAt:  formatTime(u.CreatedAt),
	})
}

// ResetUserPassword lets an admin set a new password for any account.
func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Auth.ResetPassword(r.Context(), chi.URLParam(r, "id"), req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "Password is too short", nil)
		case errors.Is(err, sqlite.ErrNotFound):
			writeError(w, http.StatusNotFound, "Not found", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to reset password", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser removes an account. Admin only.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, "Failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(employees))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.AccrualPeriodStart.IsZero() || req.AccrualPeriodEnd.IsZero() {
		writeError(w, http.StatusBadRequest, "accrual period is required (YYYY-MM-DD)", nil)
		return
	}

	e := absence.Employee{
		Name:               req.Name,
		Role:               req.Role,
		Department:         req.Department,
		Status:             absence.EmployeeStatus(req.Status),
		VacationBalance:    absence.VacationQuotaDays,
		AccrualPeriodStart: req.AccrualPeriodStart,
		AccrualPeriodEnd:   req.AccrualPeriodEnd,
		GrantPeriodStart:   req.GrantPeriodStart,
		GrantPeriodEnd:     req.GrantPeriodEnd,
	}
	if req.VacationBalance != nil {
		e.VacationBalance = *req.VacationBalance
	}

	created, err := h.Store.CreateEmployee(r.Context(), e)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(created))
}

// UpdateEmployee applies a partial update.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	upd := sqlite.EmployeeUpdate{
		Name:               req.Name,
		Role:               req.Role,
		Department:         req.Department,
		VacationBalance:    req.VacationBalance,
		AccrualPeriodStart: req.AccrualPeriodStart,
		AccrualPeriodEnd:   req.AccrualPeriodEnd,
		GrantPeriodStart:   req.GrantPeriodStart,
		GrantPeriodEnd:     req.GrantPeriodEnd,
	}
	if req.Status != nil {
		status := absence.EmployeeStatus(*req.Status)
		if status != absence.EmployeeActive && status != absence.EmployeeInactive {
			writeError(w, http.StatusBadRequest, "status must be ACTIVE or INACTIVE", nil)
			return
		}
		upd.Status = &status
	}

	updated, err := h.Store.UpdateEmployee(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		h.writeStoreError(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(updated))
}

// DeleteEmployee removes an employee and, via the schema, their leaves and
// event participations.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEmployeeLeaves returns one employee's leave history.
func (h *Handler) ListEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.writeStoreError(w, "Failed to get employee", err)
		return
	}

	leaves, err := h.Store.ListLeavesByEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// GetVacationSummary reports how much of the 30-day entitlement the employee
// has consumed in their current accrual period.
func (h *Handler) GetVacationSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.Store.GetEmployee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "Failed to get employee", err)
		return
	}

	chunks, err := h.Store.ListVacationsInPeriod(ctx, emp.ID, emp.AccrualPeriodStart)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vacations", err)
		return
	}

	taken := 0
	hasLong := false
	for _, c := range chunks {
		taken += c.DaysOff
		if c.DaysOff >= absence.LongChunkDays {
			hasLong = true
		}
	}
	remaining := absence.VacationQuotaDays - taken
	if remaining < 0 {
		remaining = 0
	}

	writeJSON(w, http.StatusOK, VacationSummaryDTO{
		EmployeeID:         emp.ID,
		AccrualPeriodStart: emp.AccrualPeriodStart,
		AccrualPeriodEnd:   emp.AccrualPeriodEnd,
		Quota:              absence.VacationQuotaDays,
		Taken:              taken,
		Remaining:          remaining,
		HasLongChunk:       hasLong,
		Chunks:             toLeaveDTOs(chunks),
	})
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListLeaves returns leaves, optionally filtered by status, employee or type.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var leaves []absence.Leave
	var err error
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		leaves, err = h.Store.ListLeavesByEmployee(ctx, employeeID)
	} else {
		leaves, err = h.Store.ListLeaves(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		leaves = filterLeaves(leaves, func(l absence.Leave) bool {
			return l.Status == absence.LeaveStatus(status)
		})
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		leaves = filterLeaves(leaves, func(l absence.Leave) bool {
			return l.Type == absence.LeaveType(typ)
		})
	}

	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// GetLeave returns a single leave.
func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	l, err := h.Store.GetLeave(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "Failed to get leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(l))
}

// CreateLeave records a leave. Vacation leaves tagged with an accrual period
// pass through the CLT validator first; a rejection is a 422 with the
// decision in the body, not an error.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	leaveType := absence.LeaveType(req.Type)
	if !leaveType.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown leave type %q", req.Type), nil)
		return
	}

	days, err := absence.CountDays(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date", err)
		return
	}

	if leaveType == absence.LeaveVacation {
		if req.AccrualPeriodStart == nil {
			writeError(w, http.StatusBadRequest, "accrual_period_start is required for VACATION leaves", nil)
			return
		}
		decision, err := h.validateVacation(ctx, req.EmployeeID, days, *req.AccrualPeriodStart)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to validate vacation", err)
			return
		}
		if !decision.Accepted {
			writeJSON(w, http.StatusUnprocessableEntity, toDecisionDTO(decision))
			return
		}
	}

	l := absence.Leave{
		EmployeeID:         req.EmployeeID,
		Type:               leaveType,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		DaysOff:            days,
		WorkDaysOff:        req.WorkDaysOff,
		AccrualPeriodStart: req.AccrualPeriodStart,
		Observations:       req.Observations,
	}
	if req.WorkDaysOff != nil {
		eff := absence.Efficiency(*req.WorkDaysOff, days)
		l.Efficiency = &eff
	}

	created, err := h.Store.CreateLeave(ctx, l)
	if err != nil {
		h.writeStoreError(w, "Failed to create leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(created))
}

// UpdateLeave applies a partial update. If the result is a tagged vacation
// and any rule input changed (day count, accrual period, leave type), the CLT
// rules are re-checked against the other chunks in that period.
func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req UpdateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	current, err := h.Store.GetLeave(ctx, id)
	if err != nil {
		h.writeStoreError(w, "Failed to get leave", err)
		return
	}

	// Project the update onto the current record to know what we'd end up with.
	next := current
	if req.Type != nil {
		t := absence.LeaveType(*req.Type)
		if !t.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown leave type %q", *req.Type), nil)
			return
		}
		next.Type = t
	}
	if req.StartDate != nil {
		next.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		next.EndDate = *req.EndDate
	}
	if req.AccrualPeriodStart != nil {
		next.AccrualPeriodStart = req.AccrualPeriodStart
	}

	days, err := absence.CountDays(next.StartDate, next.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date", err)
		return
	}

	sameTag := current.AccrualPeriodStart != nil && next.AccrualPeriodStart != nil &&
		current.AccrualPeriodStart.Equal(*next.AccrualPeriodStart)
	ruleInputsChanged := days != current.DaysOff || next.Type != current.Type || !sameTag

	if next.Type == absence.LeaveVacation && next.AccrualPeriodStart != nil && ruleInputsChanged {
		decision, err := h.validateVacationExcluding(ctx, next.EmployeeID, days, *next.AccrualPeriodStart, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to validate vacation", err)
			return
		}
		if !decision.Accepted {
			writeJSON(w, http.StatusUnprocessableEntity, toDecisionDTO(decision))
			return
		}
	}

	upd := sqlite.LeaveUpdate{
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		WorkDaysOff:        req.WorkDaysOff,
		AccrualPeriodStart: req.AccrualPeriodStart,
		Observations:       req.Observations,
	}
	if req.Type != nil {
		t := absence.LeaveType(*req.Type)
		upd.Type = &t
	}
	upd.DaysOff = &days
	if req.WorkDaysOff != nil {
		eff := absence.Efficiency(*req.WorkDaysOff, days)
		upd.Efficiency = &eff
	}

	updated, err := h.Store.UpdateLeave(ctx, id, upd)
	if err != nil {
		h.writeStoreError(w, "Failed to update leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(updated))
}

// DeleteLeave removes a leave record.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteLeave(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, "Failed to delete leave", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateVacation dry-runs the CLT rules without recording anything.
func (h *Handler) ValidateVacation(w http.ResponseWriter, r *http.Request) {
	var req ValidateVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	days, err := absence.CountDays(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date", err)
		return
	}

	decision, err := h.validateVacation(r.Context(), req.EmployeeID, days, req.AccrualPeriodStart)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to validate vacation", err)
		return
	}
	writeJSON(w, http.StatusOK, toDecisionDTO(decision))
}

// ListActiveLeaves returns leaves currently in progress.
func (h *Handler) ListActiveLeaves(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, absence.StatusActive)
}

// ListPlannedLeaves returns leaves that have not started yet.
func (h *Handler) ListPlannedLeaves(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, absence.StatusPlanned)
}

func (h *Handler) listByStatus(w http.ResponseWriter, r *http.Request, status absence.LeaveStatus) {
	leaves, err := h.Store.ListLeavesByStatus(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// ListLeavesToday returns the leaves covering today.
func (h *Handler) ListLeavesToday(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.Store.ListLeavesOn(r.Context(), dates.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

func (h *Handler) validateVacation(ctx context.Context, employeeID string, days int, periodStart dates.Date) (absence.Decision, error) {
	existing, err := h.Store.ListVacationsInPeriod(ctx, employeeID, periodStart)
	if err != nil {
		return absence.Decision{}, err
	}
	return absence.ValidateVacationRequest(employeeID, days, periodStart, existing), nil
}

func (h *Handler) validateVacationExcluding(ctx context.Context, employeeID string, days int, periodStart dates.Date, excludeID string) (absence.Decision, error) {
	existing, err := h.Store.ListVacationsInPeriod(ctx, employeeID, periodStart)
	if err != nil {
		return absence.Decision{}, err
	}
	kept := existing[:0]
	for _, l := range existing {
		if l.ID != excludeID {
			kept = append(kept, l)
		}
	}
	return absence.ValidateVacationRequest(employeeID, days, periodStart, kept), nil
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = toHolidayDTO(hol)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday records a holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date.IsZero() || req.Name == "" {
		writeError(w, http.StatusBadRequest, "date and name are required", nil)
		return
	}

	created, err := h.Store.CreateHoliday(r.Context(), absence.Holiday{
		Date: req.Date,
		Name: req.Name,
		Type: absence.HolidayType(req.Type),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(created))
}

// UpdateHoliday applies a partial update.
func (h *Handler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	var req UpdateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	upd := sqlite.HolidayUpdate{Date: req.Date, Name: req.Name}
	if req.Type != nil {
		t := absence.HolidayType(*req.Type)
		upd.Type = &t
	}

	if err := h.Store.UpdateHoliday(r.Context(), chi.URLParam(r, "id"), upd); err != nil {
		h.writeStoreError(w, "Failed to update holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// ListEvents returns all company events with their participants.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}
	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEvent records a company event.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date.IsZero() || req.Name == "" {
		writeError(w, http.StatusBadRequest, "date and name are required", nil)
		return
	}

	created, err := h.Store.CreateEvent(r.Context(), absence.CompanyEvent{
		Date:         req.Date,
		Name:         req.Name,
		Type:         absence.EventType(req.Type),
		Participants: req.Participants,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create event", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(created))
}

// UpdateEvent applies a partial update. Passing participants replaces the
// whole set.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	upd := sqlite.EventUpdate{Date: req.Date, Name: req.Name, Participants: req.Participants}
	if req.Type != nil {
		t := absence.EventType(*req.Type)
		upd.Type = &t
	}

	if err := h.Store.UpdateEvent(r.Context(), chi.URLParam(r, "id"), upd); err != nil {
		h.writeStoreError(w, "Failed to update event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent removes an event.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, "Failed to delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALENDAR
// =============================================================================

// GetCalendar renders one month as a Sunday-aligned grid, each day annotated
// with its holidays, events and leaves.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 2200 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month (1-12)", err)
		return
	}

	ref := dates.New(year, time.Month(month), 1)
	grid := dates.MonthGrid(ref)

	holidays, err := h.Store.ListHolidays(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	events, err := h.Store.ListEvents(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}
	leaves, err := h.Store.ListLeaves(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}

	cells := make([]CalendarCellDTO, len(grid))
	for i, day := range grid {
		cell := CalendarCellDTO{Date: day}
		if day.IsZero() {
			cells[i] = cell
			continue
		}
		cell.Weekend = day.IsWeekend()
		for _, hol := range holidays {
			if hol.Date.Equal(day) {
				cell.Holidays = append(cell.Holidays, toHolidayDTO(hol))
			}
		}
		for _, ev := range events {
			if ev.Date.Equal(day) {
				cell.Events = append(cell.Events, toEventDTO(ev))
			}
		}
		for _, l := range leaves {
			if l.Covers(day) {
				cell.Leaves = append(cell.Leaves, toLeaveDTO(l))
			}
		}
		cells[i] = cell
	}

	writeJSON(w, http.StatusOK, CalendarDTO{Year: year, Month: month, Cells: cells})
}

// =============================================================================
// EXPORTS
// =============================================================================

// ExportLeavesTXT downloads the printable report.
func (h *Handler) ExportLeavesTXT(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.exportableLeaves(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="afastamentos.txt"`)
	fmt.Fprint(w, export.LeavesTXT(leaves, time.Now()))
}

// ExportLeavesCSV downloads the spreadsheet export.
func (h *Handler) ExportLeavesCSV(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.exportableLeaves(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}

	out, err := export.LeavesCSV(leaves)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render CSV", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="afastamentos.csv"`)
	fmt.Fprint(w, out)
}

func (h *Handler) exportableLeaves(r *http.Request) ([]absence.Leave, error) {
	leaves, err := h.Store.ListLeaves(r.Context())
	if err != nil {
		return nil, err
	}
	if status := r.URL.Query().Get("status"); status != "" {
		leaves = filterLeaves(leaves, func(l absence.Leave) bool {
			return l.Status == absence.LeaveStatus(status)
		})
	}
	return leaves, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// RefreshStatuses rewrites the cached status column for drifted leaves.
func (h *Handler) RefreshStatuses(w http.ResponseWriter, r *http.Request) {
	n, err := h.Store.RefreshLeaveStatuses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh statuses", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// =============================================================================
// HELPERS
// =============================================================================

func filterLeaves(leaves []absence.Leave, keep func(absence.Leave) bool) []absence.Leave {
	out := leaves[:0]
	for _, l := range leaves {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func (h *Handler) writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, absence.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date", err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
