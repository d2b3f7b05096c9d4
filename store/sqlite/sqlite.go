/*
Package sqlite provides the SQLite-backed repository for the leave tracker.

PURPOSE:
  Single-file embedded persistence for all entity kinds: employees, leaves,
  holidays, company events and login users. The repository is an explicit
  handle with an Open/Close lifecycle; nothing persists implicitly.

ENTITY LIFECYCLE:
  Every entity is created by an explicit Create* call that assigns a fresh
  UUID, mutated by an explicit Update* call (partial field replacement) and
  removed by an explicit Delete* call. The store is the sole owner of entity
  lifetime.

STATUS HANDLING:
  Leave status is a derived view of (start_date, end_date, today). Reads
  recompute it at scan time and never trust the stored column; the column
  exists for reports and is rewritten by RefreshLeaveStatuses, which the
  API scheduler runs periodically.

REFERENTIAL INTEGRITY:
  Deleting an employee cascades to their leave records and to their event
  participation (ON DELETE CASCADE). Events and holidays never cascade to
  employees.

WAL MODE:
  The database is opened with WAL and foreign keys on. A single connection
  is used so ":memory:" databases behave in tests.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/pliniou/Project-Ausencias/absence"
	"github.com/pliniou/Project-Ausencias/dates"
)

// Sentinel errors. Wrap with entity context where useful.
var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Store is the repository handle. Safe for concurrent use.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	clock func() dates.Date
}

// Open opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite gives every pooled connection its own ":memory:" database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, clock: dates.Today}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock overrides the "today" source. Tests only.
func (s *Store) SetClock(clock func() dates.Date) {
	s.clock = clock
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		department TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		vacation_balance INTEGER NOT NULL DEFAULT 30,
		accrual_period_start TEXT NOT NULL,
		accrual_period_end TEXT NOT NULL,
		grant_period_start TEXT NOT NULL,
		grant_period_end TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		employee_name TEXT NOT NULL,
		employee_role TEXT NOT NULL,
		type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days_off INTEGER NOT NULL,
		work_days_off INTEGER,
		efficiency TEXT,
		status TEXT NOT NULL,
		accrual_period_start TEXT,
		observations TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_employee
		ON leaves(employee_id);
	-- Validator feed: vacation chunks per employee and accrual period
	CREATE INDEX IF NOT EXISTS idx_leaves_employee_type_period
		ON leaves(employee_id, type, accrual_period_start);
	CREATE INDEX IF NOT EXISTS idx_leaves_range
		ON leaves(start_date, end_date);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	CREATE TABLE IF NOT EXISTS company_events (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_date ON company_events(date);

	CREATE TABLE IF NOT EXISTS event_participants (
		event_id TEXT NOT NULL REFERENCES company_events(id) ON DELETE CASCADE,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		PRIMARY KEY (event_id, employee_id)
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'user', 'viewer')),
		employee_id TEXT REFERENCES employees(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func newID() string {
	return uuid.NewString()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployee inserts an employee, assigning a fresh ID.
func (s *Store) CreateEmployee(ctx context.Context, e absence.Employee) (absence.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = newID()
	if e.Status == "" {
		e.Status = absence.EmployeeActive
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees
		(id, name, role, department, status, vacation_balance,
		 accrual_period_start, accrual_period_end, grant_period_start, grant_period_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Role, e.Department, e.Status, e.VacationBalance,
		e.AccrualPeriodStart.String(), e.AccrualPeriodEnd.String(),
		e.GrantPeriodStart.String(), e.GrantPeriodEnd.String(), now(),
	)
	if err != nil {
		return absence.Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	return e, nil
}

// GetEmployee returns the employee or ErrNotFound.
func (s *Store) GetEmployee(ctx context.Context, id string) (absence.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEmployee(ctx, id)
}

func (s *Store) getEmployee(ctx context.Context, id string) (absence.Employee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, department, status, vacation_balance,
		       accrual_period_start, accrual_period_end, grant_period_start, grant_period_end
		FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return absence.Employee{}, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return e, err
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]absence.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, department, status, vacation_balance,
		       accrual_period_start, accrual_period_end, grant_period_start, grant_period_end
		FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []absence.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EmployeeUpdate is a partial employee mutation: nil fields stay untouched.
type EmployeeUpdate struct {
	Name               *string
	Role               *string
	Department         *string
	Status             *absence.EmployeeStatus
	VacationBalance    *int
	AccrualPeriodStart *dates.Date
	AccrualPeriodEnd   *dates.Date
	GrantPeriodStart   *dates.Date
	GrantPeriodEnd     *dates.Date
}

// UpdateEmployee applies a partial update and returns the new state.
// Leave snapshots (employee_name/employee_role) are deliberately untouched.
func (s *Store) UpdateEmployee(ctx context.Context, id string, upd EmployeeUpdate) (absence.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getEmployee(ctx, id)
	if err != nil {
		return absence.Employee{}, err
	}

	if upd.Name != nil {
		e.Name = *upd.Name
	}
	if upd.Role != nil {
		e.Role = *upd.Role
	}
	if upd.Department != nil {
		e.Department = *upd.Department
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}
	if upd.VacationBalance != nil {
		e.VacationBalance = *upd.VacationBalance
	}
	if upd.AccrualPeriodStart != nil {
		e.AccrualPeriodStart = *upd.AccrualPeriodStart
	}
	if upd.AccrualPeriodEnd != nil {
		e.AccrualPeriodEnd = *upd.AccrualPeriodEnd
	}
	if upd.GrantPeriodStart != nil {
		e.GrantPeriodStart = *upd.GrantPeriodStart
	}
	if upd.GrantPeriodEnd != nil {
		e.GrantPeriodEnd = *upd.GrantPeriodEnd
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE employees SET name = ?, role = ?, department = ?, status = ?,
		 vacation_balance = ?, accrual_period_start = ?, accrual_period_end = ?,
		 grant_period_start = ?, grant_period_end = ?
		WHERE id = ?`,
		e.Name, e.Role, e.Department, e.Status, e.VacationBalance,
		e.AccrualPeriodStart.String(), e.AccrualPeriodEnd.String(),
		e.GrantPeriodStart.String(), e.GrantPeriodEnd.String(), id,
	)
	if err != nil {
		return absence.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	return e, nil
}

// DeleteEmployee removes the employee; their leaves and event participation
// go with them via the cascade.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "employees", id)
}

func scanEmployee(row interface{ Scan(...any) error }) (absence.Employee, error) {
	var e absence.Employee
	var status, aps, ape, gps, gpe string
	if err := row.Scan(&e.ID, &e.Name, &e.Role, &e.Department, &status, &e.VacationBalance,
		&aps, &ape, &gps, &gpe); err != nil {
		return absence.Employee{}, err
	}
	e.Status = absence.EmployeeStatus(status)

	var err error
	if e.AccrualPeriodStart, err = dates.Parse(aps); err != nil {
		return absence.Employee{}, err
	}
	if e.AccrualPeriodEnd, err = dates.Parse(ape); err != nil {
		return absence.Employee{}, err
	}
	if e.GrantPeriodStart, err = dates.Parse(gps); err != nil {
		return absence.Employee{}, err
	}
	if e.GrantPeriodEnd, err = dates.Parse(gpe); err != nil {
		return absence.Employee{}, err
	}
	return e, nil
}

// =============================================================================
// LEAVES
// =============================================================================

// CreateLeave inserts a leave record. The employee name/role snapshot is
// taken here, the day span is checked against the date range invariant and
// the status cache is derived from today.
func (s *Store) CreateLeave(ctx context.Context, l absence.Leave) (absence.Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, err := s.getEmployee(ctx, l.EmployeeID)
	if err != nil {
		return absence.Leave{}, err
	}

	if _, err := absence.CountDays(l.StartDate, l.EndDate); err != nil {
		return absence.Leave{}, err
	}

	l.ID = newID()
	l.EmployeeName = emp.Name
	l.EmployeeRole = emp.Role
	l.Refresh(s.clock())

	if err := s.insertLeave(ctx, l); err != nil {
		return absence.Leave{}, err
	}
	return l, nil
}

func (s *Store) insertLeave(ctx context.Context, l absence.Leave) error {
	workDays, efficiency, accrual := leaveNullables(l)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaves
		(id, employee_id, employee_name, employee_role, type, start_date, end_date,
		 days_off, work_days_off, efficiency, status, accrual_period_start, observations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.EmployeeID, l.EmployeeName, l.EmployeeRole, l.Type,
		l.StartDate.String(), l.EndDate.String(), l.DaysOff,
		workDays, efficiency, l.Status, accrual, l.Observations, now(),
	)
	if err != nil {
		return fmt.Errorf("insert leave: %w", err)
	}
	return nil
}

// GetLeave returns the leave with a freshly derived status.
func (s *Store) GetLeave(ctx context.Context, id string) (absence.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLeave(ctx, id)
}

func (s *Store) getLeave(ctx context.Context, id string) (absence.Leave, error) {
	row := s.db.QueryRowContext(ctx, selectLeave+` WHERE id = ?`, id)
	l, err := s.scanLeave(row)
	if errors.Is(err, sql.ErrNoRows) {
		return absence.Leave{}, fmt.Errorf("leave %s: %w", id, ErrNotFound)
	}
	return l, err
}

const selectLeave = `
	SELECT id, employee_id, employee_name, employee_role, type, start_date, end_date,
	       days_off, work_days_off, efficiency, accrual_period_start, observations
	FROM leaves`

// ListLeaves returns every leave ordered by start date descending.
func (s *Store) ListLeaves(ctx context.Context) ([]absence.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryLeaves(ctx, selectLeave+` ORDER BY start_date DESC`)
}

// ListLeavesByEmployee returns all leaves for one employee.
func (s *Store) ListLeavesByEmployee(ctx context.Context, employeeID string) ([]absence.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryLeaves(ctx, selectLeave+` WHERE employee_id = ? ORDER BY start_date`, employeeID)
}

// ListVacationsInPeriod returns the employee's VACATION leaves tagged with
// the given accrual period. This is the validator feed.
func (s *Store) ListVacationsInPeriod(ctx context.Context, employeeID string, accrualPeriodStart dates.Date) ([]absence.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryLeaves(ctx,
		selectLeave+` WHERE employee_id = ? AND type = ? AND accrual_period_start = ? ORDER BY start_date`,
		employeeID, absence.LeaveVacation, accrualPeriodStart.String())
}

// ListLeavesByStatus filters on the status derived at scan time, never on
// the cached column.
func (s *Store) ListLeavesByStatus(ctx context.Context, status absence.LeaveStatus) ([]absence.Leave, error) {
	all, err := s.ListLeaves(ctx)
	if err != nil {
		return nil, err
	}
	var out []absence.Leave
	for _, l := range all {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out, nil
}

// ListLeavesOn returns the leaves covering the given day.
func (s *Store) ListLeavesOn(ctx context.Context, day dates.Date) ([]absence.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := day.String()
	return s.queryLeaves(ctx,
		selectLeave+` WHERE start_date <= ? AND end_date >= ? ORDER BY employee_name`, d, d)
}

// LeaveUpdate is a partial leave mutation: nil fields stay untouched.
type LeaveUpdate struct {
	Type               *absence.LeaveType
	StartDate          *dates.Date
	EndDate            *dates.Date
	DaysOff            *int
	WorkDaysOff        *int
	Efficiency         *decimal.Decimal
	AccrualPeriodStart *dates.Date
	Observations       *string
}

// UpdateLeave applies a partial update. Whenever the date range changes the
// status cache is recomputed; it is never accepted from the caller.
func (s *Store) UpdateLeave(ctx context.Context, id string, upd LeaveUpdate) (absence.Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.getLeave(ctx, id)
	if err != nil {
		return absence.Leave{}, err
	}

	if upd.Type != nil {
		l.Type = *upd.Type
	}
	if upd.StartDate != nil {
		l.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		l.EndDate = *upd.EndDate
	}
	if upd.DaysOff != nil {
		l.DaysOff = *upd.DaysOff
	}
	if upd.WorkDaysOff != nil {
		l.WorkDaysOff = upd.WorkDaysOff
	}
	if upd.Efficiency != nil {
		l.Efficiency = upd.Efficiency
	}
	if upd.AccrualPeriodStart != nil {
		l.AccrualPeriodStart = upd.AccrualPeriodStart
	}
	if upd.Observations != nil {
		l.Observations = *upd.Observations
	}

	if _, err := absence.CountDays(l.StartDate, l.EndDate); err != nil {
		return absence.Leave{}, err
	}
	l.Refresh(s.clock())

	workDays, efficiency, accrual := leaveNullables(l)
	_, err = s.db.ExecContext(ctx, `
		UPDATE leaves SET type = ?, start_date = ?, end_date = ?, days_off = ?,
		 work_days_off = ?, efficiency = ?, status = ?, accrual_period_start = ?, observations = ?
		WHERE id = ?`,
		l.Type, l.StartDate.String(), l.EndDate.String(), l.DaysOff,
		workDays, efficiency, l.Status, accrual, l.Observations, id,
	)
	if err != nil {
		return absence.Leave{}, fmt.Errorf("update leave: %w", err)
	}
	return l, nil
}

// DeleteLeave removes a leave record.
func (s *Store) DeleteLeave(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "leaves", id)
}

// RefreshLeaveStatuses rewrites the cached status column for every leave
// whose derived status drifted from the stored one. Returns the number of
// rows touched.
func (s *Store) RefreshLeaveStatuses(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.clock().String()
	res, err := s.db.ExecContext(ctx, `
		UPDATE leaves SET status = CASE
			WHEN start_date > ? THEN 'PLANNED'
			WHEN end_date < ? THEN 'ENDED'
			ELSE 'ACTIVE'
		END
		WHERE status != CASE
			WHEN start_date > ? THEN 'PLANNED'
			WHEN end_date < ? THEN 'ENDED'
			ELSE 'ACTIVE'
		END`,
		today, today, today, today)
	if err != nil {
		return 0, fmt.Errorf("refresh statuses: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *Store) queryLeaves(ctx context.Context, query string, args ...any) ([]absence.Leave, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []absence.Leave
	for rows.Next() {
		l, err := s.scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) scanLeave(row interface{ Scan(...any) error }) (absence.Leave, error) {
	var l absence.Leave
	var typ, start, end string
	var workDays sql.NullInt64
	var efficiency, accrual sql.NullString

	err := row.Scan(&l.ID, &l.EmployeeID, &l.EmployeeName, &l.EmployeeRole, &typ,
		&start, &end, &l.DaysOff, &workDays, &efficiency, &accrual, &l.Observations)
	if err != nil {
		return absence.Leave{}, err
	}
	l.Type = absence.LeaveType(typ)

	if l.StartDate, err = dates.Parse(start); err != nil {
		return absence.Leave{}, err
	}
	if l.EndDate, err = dates.Parse(end); err != nil {
		return absence.Leave{}, err
	}
	if workDays.Valid {
		v := int(workDays.Int64)
		l.WorkDaysOff = &v
	}
	if efficiency.Valid {
		d, err := decimal.NewFromString(efficiency.String)
		if err != nil {
			return absence.Leave{}, fmt.Errorf("leave %s: bad efficiency: %w", l.ID, err)
		}
		l.Efficiency = &d
	}
	if accrual.Valid {
		d, err := dates.Parse(accrual.String)
		if err != nil {
			return absence.Leave{}, err
		}
		l.AccrualPeriodStart = &d
	}

	l.Refresh(s.clock())
	return l, nil
}

func leaveNullables(l absence.Leave) (workDays sql.NullInt64, efficiency, accrual sql.NullString) {
	if l.WorkDaysOff != nil {
		workDays = sql.NullInt64{Int64: int64(*l.WorkDaysOff), Valid: true}
	}
	if l.Efficiency != nil {
		efficiency = sql.NullString{String: l.Efficiency.String(), Valid: true}
	}
	if l.AccrualPeriodStart != nil {
		accrual = sql.NullString{String: l.AccrualPeriodStart.String(), Valid: true}
	}
	return workDays, efficiency, accrual
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) CreateHoliday(ctx context.Context, h absence.Holiday) (absence.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.ID = newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO holidays (id, date, name, type, created_at) VALUES (?, ?, ?, ?, ?)`,
		h.ID, h.Date.String(), h.Name, h.Type, now())
	if err != nil {
		return absence.Holiday{}, fmt.Errorf("insert holiday: %w", err)
	}
	return h, nil
}

func (s *Store) ListHolidays(ctx context.Context) ([]absence.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, date, name, type FROM holidays ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []absence.Holiday
	for rows.Next() {
		var h absence.Holiday
		var date, typ string
		if err := rows.Scan(&h.ID, &date, &h.Name, &typ); err != nil {
			return nil, err
		}
		if h.Date, err = dates.Parse(date); err != nil {
			return nil, err
		}
		h.Type = absence.HolidayType(typ)
		out = append(out, h)
	}
	return out, rows.Err()
}

// HolidayUpdate is a partial holiday mutation.
type HolidayUpdate struct {
	Date *dates.Date
	Name *string
	Type *absence.HolidayType
}

func (s *Store) UpdateHoliday(ctx context.Context, id string, upd HolidayUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, upd.Date.String())
	}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *upd.Type)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE holidays SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update holiday: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("holiday %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "holidays", id)
}

// =============================================================================
// COMPANY EVENTS
// =============================================================================

func (s *Store) CreateEvent(ctx context.Context, e absence.CompanyEvent) (absence.CompanyEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = newID()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return absence.CompanyEvent{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO company_events (id, date, name, type, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Date.String(), e.Name, e.Type, now())
	if err != nil {
		return absence.CompanyEvent{}, fmt.Errorf("insert event: %w", err)
	}
	if err := insertParticipants(ctx, tx, e.ID, e.Participants); err != nil {
		return absence.CompanyEvent{}, err
	}
	if err := tx.Commit(); err != nil {
		return absence.CompanyEvent{}, err
	}
	return e, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]absence.CompanyEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, date, name, type FROM company_events ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []absence.CompanyEvent
	for rows.Next() {
		var e absence.CompanyEvent
		var date, typ string
		if err := rows.Scan(&e.ID, &date, &e.Name, &typ); err != nil {
			return nil, err
		}
		if e.Date, err = dates.Parse(date); err != nil {
			return nil, err
		}
		e.Type = absence.EventType(typ)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Participants, err = s.eventParticipants(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EventUpdate is a partial event mutation. A non-nil Participants replaces
// the whole participant set.
type EventUpdate struct {
	Date         *dates.Date
	Name         *string
	Type         *absence.EventType
	Participants *[]string
}

func (s *Store) UpdateEvent(ctx context.Context, id string, upd EventUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, upd.Date.String())
	}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *upd.Type)
	}
	if len(sets) > 0 {
		args = append(args, id)
		res, err := tx.ExecContext(ctx,
			`UPDATE company_events SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
	}

	if upd.Participants != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_participants WHERE event_id = ?`, id); err != nil {
			return err
		}
		if err := insertParticipants(ctx, tx, id, *upd.Participants); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "company_events", id)
}

func (s *Store) eventParticipants(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id FROM event_participants WHERE event_id = ? ORDER BY employee_id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func insertParticipants(ctx context.Context, tx *sql.Tx, eventID string, participants []string) error {
	for _, employeeID := range participants {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO event_participants (event_id, employee_id) VALUES (?, ?)`,
			eventID, employeeID)
		if err != nil {
			return fmt.Errorf("insert participant %s: %w", employeeID, err)
		}
	}
	return nil
}

// =============================================================================
// USERS
// =============================================================================

// User is a login account. EmployeeID optionally links it to an HR record.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	EmployeeID   *string
	CreatedAt    time.Time
}

func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.ID = newID()
	u.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, employee_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.EmployeeID, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			return User{}, fmt.Errorf("%q: %w", u.Username, ErrUsernameTaken)
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, employee_id, created_at FROM users WHERE username = ?`,
		username)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password_hash, role, employee_id, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteByID(ctx, "users", id)
}

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var employeeID sql.NullString
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &employeeID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return User{}, err
	}
	if employeeID.Valid {
		u.EmployeeID = &employeeID.String
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

// =============================================================================
// SHARED
// =============================================================================

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", strings.TrimSuffix(table, "s"), id, ErrNotFound)
	}
	return nil
}
