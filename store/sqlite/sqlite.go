/*
Package sqlite provides SQLite-backed persistence for organisations, leave
types, balances and submitted leave requests.

PURPOSE:
  Everything the composer reads as its input snapshot (leave types,
  category table, balances, booked requests) and everything a submission
  writes lives here. In production the same patterns apply to PostgreSQL
  with minor dialect differences.

KEY TABLES:
  employees:       Employee records, each belonging to one org
  leave_types:     Per-org leave types with their allocation category
  leave_balances:  Read-only (to the composer) balances, decimal TEXT
  leave_requests:  Submitted items; start_half/end_half mark excluded halves

HALF-DAY COLUMNS:
  start_half = 'pm'  the request starts in the afternoon
  end_half   = 'am'  the request ends at midday
  Older rows may carry 'afternoon' / 'morning'; both spellings are read.

REQUEST LIFECYCLE:
  pending ──approve──▶ approved   (balance is debited)
     │
     ├──reject───▶ rejected
     └──cancel───▶ cancelled
  Only pending and approved requests are returned as booked.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  snap, err := store.Snapshot(ctx, "alice")
  composer := leave.NewComposer(leave.Options{Snapshot: snap})

SEE ALSO:
  - factory/config.go: Org configuration documents persisted by SaveOrgConfig
  - leave/composer.go: Consumer of Snapshot
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
	"github.com/warp/leave-composer/factory"
	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
)

// Request statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Store persists leave data in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_org
		ON employees(org_id);

	CREATE TABLE IF NOT EXISTS leave_types (
		org_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		code TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'other',
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (org_id, id)
	);

	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		leave_type_id TEXT NOT NULL,
		balance TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, leave_type_id)
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		org_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		start_half TEXT,
		end_half TEXT,
		days TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		decided_by TEXT NOT NULL DEFAULT '',
		decided_at TEXT,
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee_status
		ON leave_requests(employee_id, status);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_org_status
		ON leave_requests(org_id, status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// ORG CONFIGURATION
// =============================================================================

// SaveOrgConfig upserts an org's leave types, employees and opening balances
// in one transaction.
func (s *Store) SaveOrgConfig(ctx context.Context, cfg *factory.OrgConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, lt := range cfg.LeaveTypes {
		if err := saveLeaveType(ctx, tx, cfg.OrgID, lt, cfg.Categories.Category(lt.ID), i); err != nil {
			return err
		}
	}
	for _, emp := range cfg.Employees {
		if err := saveEmployee(ctx, tx, Employee{ID: emp.ID, OrgID: cfg.OrgID, Name: emp.Name, Email: emp.Email}); err != nil {
			return err
		}
		for _, b := range emp.Balances {
			if err := setBalance(ctx, tx, emp.ID, b.LeaveTypeID, b.Balance); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

// SaveLeaveType upserts a leave type. New types are appended after existing ones.
func (s *Store) SaveLeaveType(ctx context.Context, orgID string, lt leave.LeaveType, category leave.LeaveCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var position int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM leave_types WHERE org_id = ?", orgID,
	).Scan(&position)
	if err != nil {
		return err
	}
	return saveLeaveType(ctx, s.db, orgID, lt, category, position)
}

func saveLeaveType(ctx context.Context, db execer, orgID string, lt leave.LeaveType, category leave.LeaveCategory, position int) error {
	query := `
		INSERT INTO leave_types (org_id, id, name, code, color, category, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_id, id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			color = excluded.color,
			category = excluded.category
	`
	_, err := db.ExecContext(ctx, query, orgID, lt.ID, lt.Name, lt.Code, lt.Color, string(category), position)
	if err != nil {
		return fmt.Errorf("failed to save leave type %s: %w", lt.ID, err)
	}
	return nil
}

// ListLeaveTypes returns an org's leave types in configuration order together
// with their category table.
func (s *Store) ListLeaveTypes(ctx context.Context, orgID string) ([]leave.LeaveType, leave.CategoryTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listLeaveTypes(ctx, orgID)
}

func (s *Store) listLeaveTypes(ctx context.Context, orgID string) ([]leave.LeaveType, leave.CategoryTable, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, code, color, category FROM leave_types WHERE org_id = ? ORDER BY position, id",
		orgID,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var types []leave.LeaveType
	table := make(leave.CategoryTable)
	for rows.Next() {
		var lt leave.LeaveType
		var category string
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.Code, &lt.Color, &category); err != nil {
			return nil, nil, err
		}
		types = append(types, lt)
		table[lt.ID] = leave.LeaveCategory(category)
	}
	return types, table, rows.Err()
}

// SetCategory remaps a leave type to another allocation category.
func (s *Store) SetCategory(ctx context.Context, orgID, leaveTypeID string, category leave.LeaveCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE leave_types SET category = ? WHERE org_id = ? AND id = ?",
		string(category), orgID, leaveTypeID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrUnknownLeaveType, leaveTypeID)
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// Employee represents an employee record.
type Employee struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveEmployee upserts an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveEmployee(ctx, s.db, emp)
}

func saveEmployee(ctx context.Context, db execer, emp Employee) error {
	query := `
		INSERT INTO employees (id, org_id, name, email, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			org_id = excluded.org_id,
			name = excluded.name,
			email = excluded.email
	`
	_, err := db.ExecContext(ctx, query,
		emp.ID, emp.OrgID, emp.Name, emp.Email,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee %s: %w", emp.ID, err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getEmployee(ctx, id)
}

func (s *Store) getEmployee(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, org_id, name, email, created_at FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.OrgID, &emp.Name, &emp.Email, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: employee %s", generic.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// ListEmployees returns an org's employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context, orgID string) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, org_id, name, email, created_at FROM employees WHERE org_id = ? ORDER BY name",
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.OrgID, &emp.Name, &emp.Email, &createdAt); err != nil {
			return nil, err
		}
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// =============================================================================
// BALANCES
// =============================================================================

// SetBalance overwrites an employee's balance for one leave type.
func (s *Store) SetBalance(ctx context.Context, employeeID, leaveTypeID string, balance generic.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, err := s.getEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if err := s.requireLeaveType(ctx, emp.OrgID, leaveTypeID); err != nil {
		return err
	}
	return setBalance(ctx, s.db, employeeID, leaveTypeID, balance)
}

func setBalance(ctx context.Context, db execer, employeeID, leaveTypeID string, balance generic.Amount) error {
	query := `
		INSERT INTO leave_balances (employee_id, leave_type_id, balance, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id, leave_type_id) DO UPDATE SET
			balance = excluded.balance,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query,
		employeeID, leaveTypeID, balance.Value.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Balances returns an employee's balances with the leave type's name and code.
func (s *Store) Balances(ctx context.Context, employeeID string) ([]leave.LeaveBalanceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances(ctx, employeeID)
}

func (s *Store) balances(ctx context.Context, employeeID string) ([]leave.LeaveBalanceItem, error) {
	query := `
		SELECT b.leave_type_id, t.name, t.code, b.balance
		FROM leave_balances b
		JOIN employees e ON e.id = b.employee_id
		JOIN leave_types t ON t.org_id = e.org_id AND t.id = b.leave_type_id
		WHERE b.employee_id = ?
		ORDER BY t.position, t.id
	`
	rows, err := s.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []leave.LeaveBalanceItem
	for rows.Next() {
		var item leave.LeaveBalanceItem
		var code, balance string
		if err := rows.Scan(&item.LeaveTypeID, &item.Name, &code, &balance); err != nil {
			return nil, err
		}
		if code != "" {
			item.Code = &code
		}
		item.Balance = parseAmount(balance)
		items = append(items, item)
	}
	return items, rows.Err()
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot assembles the composer's input set for one employee.
func (s *Store) Snapshot(ctx context.Context, employeeID string) (leave.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, err := s.getEmployee(ctx, employeeID)
	if err != nil {
		return leave.Snapshot{}, err
	}
	types, table, err := s.listLeaveTypes(ctx, emp.OrgID)
	if err != nil {
		return leave.Snapshot{}, err
	}
	balances, err := s.balances(ctx, employeeID)
	if err != nil {
		return leave.Snapshot{}, err
	}
	booked, err := s.booked(ctx, employeeID)
	if err != nil {
		return leave.Snapshot{}, err
	}

	return leave.Snapshot{
		LeaveTypes: types,
		Booked:     booked,
		Balances:   balances,
		Categories: table,
	}, nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// Request is a submitted leave request item in storage.
type Request struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	OrgID       string          `json:"org_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Range       leave.DateRange `json:"range"`
	Days        generic.Amount  `json:"days"`
	Subject     string          `json:"subject,omitempty"`
	Status      string          `json:"status"`
	DecidedBy   string          `json:"decided_by,omitempty"`
	DecidedAt   *time.Time      `json:"decided_at,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Item converts a stored request back into a booked item.
func (r Request) Item() leave.BookedRequest {
	return leave.BookedRequest{ID: r.ID, Range: r.Range, LeaveTypeID: r.LeaveTypeID}
}

// SubmitRequests persists cart items as pending requests in one transaction.
// Either every item is stored or none is.
func (s *Store) SubmitRequests(ctx context.Context, employeeID, subject string, items []leave.LeaveRequestItem) ([]Request, error) {
	if len(items) == 0 {
		return nil, generic.ErrEmptyCart
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emp, err := s.getEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := item.Range.Validate(); err != nil {
			return nil, err
		}
		if err := s.requireLeaveType(ctx, emp.OrgID, item.LeaveTypeID); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	stored := make([]Request, 0, len(items))
	for _, item := range items {
		r := Request{
			ID:          uuid.NewString(),
			EmployeeID:  emp.ID,
			OrgID:       emp.OrgID,
			LeaveTypeID: item.LeaveTypeID,
			Range:       item.Range,
			Days:        item.Days(),
			Subject:     strings.TrimSpace(subject),
			Status:      StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := insertRequest(ctx, tx, r); err != nil {
			return nil, err
		}
		stored = append(stored, r)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// ImportBooked stores already decided requests, e.g. from another system.
func (s *Store) ImportBooked(ctx context.Context, r Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := r.Range.Validate(); err != nil {
		return err
	}
	if r.Status == "" {
		r.Status = StatusApproved
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	r.Days = r.Range.BusinessDays()
	return insertRequest(ctx, s.db, r)
}

func insertRequest(ctx context.Context, db execer, r Request) error {
	query := `
		INSERT INTO leave_requests (id, employee_id, org_id, leave_type_id, start_date, end_date,
			start_half, end_half, days, subject, status, decided_by, decided_at, reason,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	startHalf, endHalf := halfMarkers(r.Range)
	_, err := db.ExecContext(ctx, query,
		r.ID, r.EmployeeID, r.OrgID, r.LeaveTypeID,
		r.Range.From.String(), r.Range.End().String(),
		startHalf, endHalf, r.Days.Value.String(),
		r.Subject, r.Status, r.DecidedBy, formatTimePtr(r.DecidedAt), r.Reason,
		r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// GetRequest retrieves a request by ID.
func (s *Store) GetRequest(ctx context.Context, id string) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getRequest(ctx, id)
}

func (s *Store) getRequest(ctx context.Context, id string) (*Request, error) {
	requests, err := s.queryRequests(ctx, selectRequests+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w: request %s", generic.ErrEntityNotFound, id)
	}
	return &requests[0], nil
}

// RequestsByEmployee returns all of an employee's requests, newest first.
func (s *Store) RequestsByEmployee(ctx context.Context, employeeID string) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		selectRequests+" WHERE employee_id = ? ORDER BY start_date DESC, created_at DESC",
		employeeID,
	)
}

// PendingRequests returns an org's pending requests, oldest first.
func (s *Store) PendingRequests(ctx context.Context, orgID string) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		selectRequests+" WHERE org_id = ? AND status = ? ORDER BY created_at ASC, start_date ASC",
		orgID, StatusPending,
	)
}

// Booked returns the pending and approved items that block the calendar.
func (s *Store) Booked(ctx context.Context, employeeID string) ([]leave.BookedRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.booked(ctx, employeeID)
}

func (s *Store) booked(ctx context.Context, employeeID string) ([]leave.BookedRequest, error) {
	requests, err := s.queryRequests(ctx,
		selectRequests+" WHERE employee_id = ? AND status IN (?, ?) ORDER BY start_date",
		employeeID, StatusPending, StatusApproved,
	)
	if err != nil {
		return nil, err
	}
	booked := make([]leave.BookedRequest, len(requests))
	for i, r := range requests {
		booked[i] = r.Item()
	}
	return booked, nil
}

// CancelRequest withdraws a pending request.
func (s *Store) CancelRequest(ctx context.Context, id string) (*Request, error) {
	return s.transition(ctx, id, StatusCancelled, "", "")
}

// ApproveRequest approves a pending request and debits the balance.
func (s *Store) ApproveRequest(ctx context.Context, id, decidedBy string) (*Request, error) {
	return s.transition(ctx, id, StatusApproved, decidedBy, "")
}

// RejectRequest rejects a pending request with a reason.
func (s *Store) RejectRequest(ctx context.Context, id, decidedBy, reason string) (*Request, error) {
	return s.transition(ctx, id, StatusRejected, decidedBy, reason)
}

func (s *Store) transition(ctx context.Context, id, status, decidedBy, reason string) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s is %s", generic.ErrRequestNotCancellable, id, r.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var decidedAt *time.Time
	if status != StatusCancelled {
		decidedAt = &now
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = ?, decided_by = ?, decided_at = ?, reason = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, status, decidedBy, formatTimePtr(decidedAt), reason, now.Format(time.RFC3339), id, StatusPending)
	if err != nil {
		return nil, err
	}

	if status == StatusApproved {
		if err := debitBalance(ctx, tx, r.EmployeeID, r.LeaveTypeID, r.Days); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	r.Status = status
	r.DecidedBy = decidedBy
	r.DecidedAt = decidedAt
	r.Reason = reason
	r.UpdatedAt = now
	return r, nil
}

// debitBalance subtracts days from a stored balance. Types without a balance
// row (unpaid, remote) are left alone.
func debitBalance(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, days generic.Amount) error {
	var current string
	err := tx.QueryRowContext(ctx,
		"SELECT balance FROM leave_balances WHERE employee_id = ? AND leave_type_id = ?",
		employeeID, leaveTypeID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return setBalance(ctx, tx, employeeID, leaveTypeID, parseAmount(current).Sub(days))
}

const selectRequests = `
	SELECT id, employee_id, org_id, leave_type_id, start_date, end_date, start_half, end_half,
		days, subject, status, decided_by, decided_at, reason, created_at, updated_at
	FROM leave_requests`

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var r Request
		var startDate, endDate, days, createdAt, updatedAt string
		var startHalf, endHalf, decidedAt sql.NullString
		if err := rows.Scan(
			&r.ID, &r.EmployeeID, &r.OrgID, &r.LeaveTypeID, &startDate, &endDate,
			&startHalf, &endHalf, &days, &r.Subject, &r.Status, &r.DecidedBy,
			&decidedAt, &r.Reason, &createdAt, &updatedAt,
		); err != nil {
			return nil, err
		}

		from, err := generic.ParseDate(startDate)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", r.ID, err)
		}
		to, err := generic.ParseDate(endDate)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", r.ID, err)
		}
		r.Range = leave.Span(from, to, isAfternoon(startHalf.String), isMorning(endHalf.String))
		r.Days = parseAmount(days)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		if decidedAt.Valid {
			t, _ := time.Parse(time.RFC3339, decidedAt.String)
			r.DecidedAt = &t
		}

		requests = append(requests, r)
	}

	return requests, rows.Err()
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset clears all data (for demos and testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"leave_requests", "leave_balances", "employees", "leave_types"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func (s *Store) requireLeaveType(ctx context.Context, orgID, leaveTypeID string) error {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leave_types WHERE org_id = ? AND id = ?", orgID, leaveTypeID,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", generic.ErrUnknownLeaveType, leaveTypeID)
	}
	return nil
}

func halfMarkers(r leave.DateRange) (sql.NullString, sql.NullString) {
	var start, end sql.NullString
	if r.FromHalfDay {
		start = sql.NullString{String: string(leave.PM), Valid: true}
	}
	if r.ToHalfDay {
		end = sql.NullString{String: string(leave.AM), Valid: true}
	}
	return start, end
}

func isAfternoon(marker string) bool {
	part, err := leave.ParseDayPart(marker)
	return err == nil && part == leave.PM
}

func isMorning(marker string) bool {
	part, err := leave.ParseDayPart(marker)
	return err == nil && part == leave.AM
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func parseAmount(value string) generic.Amount {
	return generic.Amount{
		Value: generic.MustParseDecimal(value),
		Unit:  generic.UnitDays,
	}
}
