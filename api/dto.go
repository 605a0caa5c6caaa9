/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the composer's domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Organisation:  LeaveTypeDTO, CreateLeaveTypeRequest, SetCategoryRequest
  Employees:     EmployeeDTO, CreateEmployeeRequest
  Balances:      BalanceDTO, SetBalanceRequest
  Requests:      RequestDTO, DecideRequest
  Calendar:      MonthGridDTO
  Allocation:    AllocateRequest, AllocateResponse
  Sessions:      SessionDTO, CartItemDTO, ClickRequest, ..., CommitResponse
  Scenarios:     ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
	"github.com/warp/leave-composer/store/sqlite"
)

// =============================================================================
// ORGANISATION
// =============================================================================

// LeaveTypeDTO represents a configured leave type.
type LeaveTypeDTO struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Code     string              `json:"code,omitempty"`
	Color    string              `json:"color,omitempty"`
	Category leave.LeaveCategory `json:"category"`
}

// CreateLeaveTypeRequest adds or updates a leave type. An empty category is
// classified from the name and code.
type CreateLeaveTypeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Color    string `json:"color,omitempty"`
	Category string `json:"category,omitempty"`
}

// SetCategoryRequest remaps a leave type.
type SetCategoryRequest struct {
	Category string `json:"category"`
}

// =============================================================================
// EMPLOYEES & BALANCES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	OrgID     string `json:"org_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest creates or updates an employee.
type CreateEmployeeRequest struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// BalanceDTO is one balance line.
type BalanceDTO struct {
	LeaveTypeID string              `json:"leave_type_id"`
	Name        string              `json:"name"`
	Code        *string             `json:"code"`
	Category    leave.LeaveCategory `json:"category"`
	Balance     generic.Amount      `json:"balance"`
}

// SetBalanceRequest overwrites a balance.
type SetBalanceRequest struct {
	Balance generic.Amount `json:"balance"`
}

// =============================================================================
// SUBMITTED REQUESTS
// =============================================================================

// RequestDTO represents a submitted request item.
type RequestDTO struct {
	ID            string              `json:"id"`
	EmployeeID    string              `json:"employee_id"`
	LeaveTypeID   string              `json:"leave_type_id"`
	LeaveTypeName string              `json:"leave_type_name"`
	Category      leave.LeaveCategory `json:"category"`
	Range         leave.DateRange     `json:"range"`
	Days          generic.Amount      `json:"days"`
	Subject       string              `json:"subject,omitempty"`
	Status        string              `json:"status"`
	DecidedBy     string              `json:"decided_by,omitempty"`
	DecidedAt     *time.Time          `json:"decided_at,omitempty"`
	Reason        string              `json:"reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// DecideRequest carries an optional rejection reason.
type DecideRequest struct {
	Reason string `json:"reason,omitempty"`
}

// =============================================================================
// CALENDAR & ALLOCATION
// =============================================================================

// MonthGridDTO is a month as rows of seven cells.
type MonthGridDTO struct {
	Month string            `json:"month"` // YYYY-MM
	Weeks [][]leave.DayCell `json:"weeks"`
}

// AllocateRequest previews an allocation against an employee's balances.
type AllocateRequest struct {
	EmployeeID  string                   `json:"employee_id"`
	Range       leave.DateRange          `json:"range"`
	Cart        []leave.LeaveRequestItem `json:"cart,omitempty"`
	Intelligent bool                     `json:"intelligent"`
	LeaveTypeID string                   `json:"leave_type_id,omitempty"`
}

// AllocateResponse wraps an allocation with a display warning on overflow.
type AllocateResponse struct {
	Allocation leave.Allocation `json:"allocation"`
	Warning    string           `json:"warning,omitempty"`
}

// =============================================================================
// COMPOSER SESSIONS
// =============================================================================

// CreateSessionRequest opens a composer for an employee.
type CreateSessionRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      string `json:"month,omitempty"` // YYYY-MM
}

// ClickRequest is a click on one half of a day.
type ClickRequest struct {
	Date generic.TimePoint `json:"date"`
	Part string            `json:"part"` // am | pm
}

// HoverRequest moves the hover; a null date clears it.
type HoverRequest struct {
	Date *generic.TimePoint `json:"date"`
}

// NavigateRequest moves the calendar by whole months.
type NavigateRequest struct {
	Delta int `json:"delta"`
}

// ModeRequest toggles intelligent allocation.
type ModeRequest struct {
	Intelligent bool `json:"intelligent"`
}

// TypeRequest picks the plain-mode leave type.
type TypeRequest struct {
	LeaveTypeID string `json:"leave_type_id"`
}

// SubmitRequest persists the cart.
type SubmitRequest struct {
	Subject string `json:"subject,omitempty"`
}

// CartItemDTO is a cart item with its leave type resolved for display.
type CartItemDTO struct {
	ID            string              `json:"id"`
	LeaveTypeID   string              `json:"leave_type_id"`
	LeaveTypeName string              `json:"leave_type_name"`
	Color         string              `json:"color,omitempty"`
	Category      leave.LeaveCategory `json:"category"`
	Range         leave.DateRange     `json:"range"`
	Days          generic.Amount      `json:"days"`
}

// SessionDTO is the full render state of a composer session.
type SessionDTO struct {
	ID          string               `json:"id"`
	EmployeeID  string               `json:"employee_id"`
	State       leave.SelectionState `json:"state"`
	Draft       *leave.DateRange     `json:"draft"`
	DraftTypeID string               `json:"draft_type_id,omitempty"`
	Intelligent bool                 `json:"intelligent"`
	Months      []MonthGridDTO       `json:"months"`
	Items       []CartItemDTO        `json:"items"`
	Summary     leave.Summary        `json:"summary"`
	Version     int                  `json:"version"`
}

// CommitResponse reports a commit and the resulting state.
type CommitResponse struct {
	Added    []CartItemDTO  `json:"added"`
	Overflow generic.Amount `json:"overflow"`
	Warning  string         `json:"warning,omitempty"`
	Session  SessionDTO     `json:"session"`
}

// SubmitResponse lists the persisted requests.
type SubmitResponse struct {
	Requests []RequestDTO `json:"requests"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e *sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{ID: e.ID, OrgID: e.OrgID, Name: e.Name, Email: e.Email}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toLeaveTypeDTOs(types []leave.LeaveType, table leave.CategoryTable) []LeaveTypeDTO {
	dtos := make([]LeaveTypeDTO, len(types))
	for i, lt := range types {
		dtos[i] = LeaveTypeDTO{ID: lt.ID, Name: lt.Name, Code: lt.Code, Color: lt.Color, Category: table.Category(lt.ID)}
	}
	return dtos
}

func toRequestDTO(r sqlite.Request, snap leave.Snapshot) RequestDTO {
	dto := RequestDTO{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		LeaveTypeID: r.LeaveTypeID,
		Category:    snap.Categories.Category(r.LeaveTypeID),
		Range:       r.Range,
		Days:        r.Days,
		Subject:     r.Subject,
		Status:      r.Status,
		DecidedBy:   r.DecidedBy,
		DecidedAt:   r.DecidedAt,
		Reason:      r.Reason,
		CreatedAt:   r.CreatedAt,
	}
	if lt, ok := snap.LeaveType(r.LeaveTypeID); ok {
		dto.LeaveTypeName = lt.Name
	}
	return dto
}

func toRequestDTOs(requests []sqlite.Request, snap leave.Snapshot) []RequestDTO {
	dtos := make([]RequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRequestDTO(r, snap)
	}
	return dtos
}

func toCartItemDTOs(items []leave.LeaveRequestItem, snap leave.Snapshot) []CartItemDTO {
	dtos := make([]CartItemDTO, len(items))
	for i, item := range items {
		dto := CartItemDTO{
			ID:          item.ID,
			LeaveTypeID: item.LeaveTypeID,
			Category:    snap.Categories.Category(item.LeaveTypeID),
			Range:       item.Range,
			Days:        item.Days(),
		}
		if lt, ok := snap.LeaveType(item.LeaveTypeID); ok {
			dto.LeaveTypeName = lt.Name
			dto.Color = lt.Color
		}
		dtos[i] = dto
	}
	return dtos
}

func toMonthGridDTO(g leave.MonthGrid) MonthGridDTO {
	return MonthGridDTO{Month: g.Month.Time.Format("2006-01"), Weeks: g.Weeks()}
}
