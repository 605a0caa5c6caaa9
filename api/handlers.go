/*
handlers.go - HTTP API handlers for the leave request composer

PURPOSE:
  Exposes organisation setup, balances, submitted requests and the read-only
  calendar via REST. Composer sessions live in session_handlers.go.

ENDPOINTS:
  Organisation:
    GET    /api/orgs/{org}/leave-types                List leave types
    POST   /api/orgs/{org}/leave-types                Add or update a leave type
    PUT    /api/orgs/{org}/leave-types/{id}/category  Remap a type's category
    POST   /api/orgs/{org}/config                     Import an org config document
    GET    /api/orgs/{org}/requests/pending           Pending requests (HR)

  Employees:
    POST   /api/employees                             Create employee
    GET    /api/employees/{id}                        Get employee
    GET    /api/employees/{id}/balances               Balance lines
    PUT    /api/employees/{id}/balances/{typeID}      Overwrite a balance (HR)
    GET    /api/employees/{id}/requests               Submitted requests
    GET    /api/employees/{id}/calendar?month=        Booked days as a month grid

  Requests:
    POST   /api/requests/{id}/cancel                  Employee cancels a pending request
    POST   /api/requests/{id}/approve                 HR approves
    POST   /api/requests/{id}/reject                  HR rejects

  Allocation:
    POST   /api/allocate                              Stateless allocation preview

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Sessions: Live composer sessions
  - ConfigFactory: JSON to org configuration

ERROR HANDLING:
  Domain errors map to HTTP status through statusFor:
  - 400: Validation errors, invalid input
  - 403: Caller may not act on the resource
  - 404: Resource or session not found
  - 409: Request no longer pending
  - 413: Body over the configured size limit
  - 500: Internal errors (logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - session_handlers.go: Composer session endpoints
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/leave-composer/factory"
	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
	"github.com/warp/leave-composer/logging"
	"github.com/warp/leave-composer/store/sqlite"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *sqlite.Store
	Sessions      *SessionRegistry
	ConfigFactory *factory.ConfigFactory
	Clock         generic.Clock

	// scenarioMu serialises scenario loads and guards currentScenario.
	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store and session registry.
func NewHandler(store *sqlite.Store, sessions *SessionRegistry) *Handler {
	return &Handler{
		Store:         store,
		Sessions:      sessions,
		ConfigFactory: factory.NewConfigFactory(),
		Clock:         generic.Today,
	}
}

// Health reports whether the database answers.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// ORGANISATION HANDLERS
// =============================================================================

// ListLeaveTypes returns an org's leave types in configuration order.
// GET /api/orgs/{org}/leave-types
func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "org")
	claims := ClaimsFrom(r.Context())
	if !claims.unrestricted && claims.OrgID != orgID {
		writeError(w, http.StatusForbidden, "Not a member of this organisation", generic.ErrUnauthorized)
		return
	}

	types, table, err := h.Store.ListLeaveTypes(r.Context(), orgID)
	if err != nil {
		h.fail(w, r, "Failed to list leave types", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveTypeDTOs(types, table))
}

// CreateLeaveType adds or updates a leave type.
// POST /api/orgs/{org}/leave-types
func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "org")
	if !h.requireManage(w, r, orgID) {
		return
	}

	var req CreateLeaveTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	category := leave.Classify(req.Name, req.Code)
	if req.Category != "" {
		c, err := leave.ParseCategory(req.Category)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid category", err)
			return
		}
		category = c
	}

	lt := leave.LeaveType{ID: req.ID, Name: req.Name, Code: req.Code, Color: req.Color}
	if err := h.Store.SaveLeaveType(r.Context(), orgID, lt, category); err != nil {
		h.fail(w, r, "Failed to save leave type", err)
		return
	}

	writeJSON(w, http.StatusCreated, LeaveTypeDTO{
		ID: lt.ID, Name: lt.Name, Code: lt.Code, Color: lt.Color, Category: category,
	})
}

// SetCategory remaps a leave type to another allocation category.
// PUT /api/orgs/{org}/leave-types/{id}/category
func (h *Handler) SetCategory(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "org")
	if !h.requireManage(w, r, orgID) {
		return
	}

	var req SetCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	category, err := leave.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category", err)
		return
	}

	if err := h.Store.SetCategory(r.Context(), orgID, chi.URLParam(r, "id"), category); err != nil {
		h.fail(w, r, "Failed to set category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportConfig stores a whole org configuration document.
// POST /api/orgs/{org}/config
func (h *Handler) ImportConfig(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "org")
	if !h.requireManage(w, r, orgID) {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	cfg, err := h.ConfigFactory.ParseOrgConfig(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid configuration", err)
		return
	}
	if cfg.OrgID != orgID {
		writeError(w, http.StatusBadRequest, "org_id does not match the URL", nil)
		return
	}

	if err := h.Store.SaveOrgConfig(r.Context(), cfg); err != nil {
		h.fail(w, r, "Failed to save configuration", err)
		return
	}

	logging.FromContext(r.Context()).Info("org configuration imported",
		zap.String("org_id", orgID),
		zap.Int("leave_types", len(cfg.LeaveTypes)),
		zap.Int("employees", len(cfg.Employees)))
	writeJSON(w, http.StatusOK, h.ConfigFactory.ToJSON(cfg))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// CreateEmployee creates or updates an employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" || req.OrgID == "" {
		writeError(w, http.StatusBadRequest, "id and org_id are required", nil)
		return
	}
	if !h.requireManage(w, r, req.OrgID) {
		return
	}
	if req.Name == "" {
		req.Name = req.ID
	}

	emp := sqlite.Employee{ID: req.ID, OrgID: req.OrgID, Name: req.Name, Email: req.Email}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.fail(w, r, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(&emp))
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// GetBalances returns an employee's balance lines with their categories.
// GET /api/employees/{id}/balances
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeFor(w, r)
	if !ok {
		return
	}

	snap, err := h.Store.Snapshot(r.Context(), emp.ID)
	if err != nil {
		h.fail(w, r, "Failed to load balances", err)
		return
	}

	dtos := make([]BalanceDTO, len(snap.Balances))
	for i, b := range snap.Balances {
		dtos[i] = BalanceDTO{
			LeaveTypeID: b.LeaveTypeID,
			Name:        b.Name,
			Code:        b.Code,
			Category:    snap.Categories.Category(b.LeaveTypeID),
			Balance:     b.Balance,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SetBalance overwrites one balance.
// PUT /api/employees/{id}/balances/{typeID}
func (h *Handler) SetBalance(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Employee not found", err)
		return
	}
	if !h.requireManage(w, r, emp.OrgID) {
		return
	}

	var req SetBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Balance.IsNegative() {
		writeError(w, http.StatusBadRequest, "Balance cannot be negative", nil)
		return
	}

	typeID := chi.URLParam(r, "typeID")
	if err := h.Store.SetBalance(r.Context(), emp.ID, typeID, req.Balance); err != nil {
		h.fail(w, r, "Failed to set balance", err)
		return
	}

	logging.FromContext(r.Context()).Info("balance adjusted",
		zap.String("employee_id", emp.ID),
		zap.String("leave_type_id", typeID),
		zap.String("balance", req.Balance.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetRequests lists an employee's submitted requests, newest first.
// GET /api/employees/{id}/requests
func (h *Handler) GetRequests(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeFor(w, r)
	if !ok {
		return
	}

	requests, err := h.Store.RequestsByEmployee(r.Context(), emp.ID)
	if err != nil {
		h.fail(w, r, "Failed to list requests", err)
		return
	}
	snap, err := h.orgSnapshot(r.Context(), emp.OrgID)
	if err != nil {
		h.fail(w, r, "Failed to list leave types", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests, snap))
}

// GetCalendar renders booked requests on a month grid.
// GET /api/employees/{id}/calendar?month=YYYY-MM
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employeeFor(w, r)
	if !ok {
		return
	}

	month := h.Clock()
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := generic.ParseMonth(m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (want YYYY-MM)", err)
			return
		}
		month = parsed
	}

	snap, err := h.Store.Snapshot(r.Context(), emp.ID)
	if err != nil {
		h.fail(w, r, "Failed to load calendar", err)
		return
	}

	grid := leave.BuildGrid(leave.GridInput{
		Month:      month,
		Booked:     snap.Booked,
		Categories: snap.Categories,
		Today:      h.Clock(),
	})
	writeJSON(w, http.StatusOK, toMonthGridDTO(grid))
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListPendingRequests returns an org's pending requests, oldest first.
// GET /api/orgs/{org}/requests/pending
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "org")
	if !h.requireManage(w, r, orgID) {
		return
	}

	requests, err := h.Store.PendingRequests(r.Context(), orgID)
	if err != nil {
		h.fail(w, r, "Failed to list pending requests", err)
		return
	}
	snap, err := h.orgSnapshot(r.Context(), orgID)
	if err != nil {
		h.fail(w, r, "Failed to list leave types", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests, snap))
}

// CancelRequest lets an employee withdraw a pending request.
// POST /api/requests/{id}/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Store.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Request not found", err)
		return
	}
	if !ClaimsFrom(r.Context()).CanActFor(req.EmployeeID, req.OrgID) {
		writeError(w, http.StatusForbidden, "Cannot cancel another employee's request", generic.ErrUnauthorized)
		return
	}

	updated, err := h.Store.CancelRequest(r.Context(), req.ID)
	if err != nil {
		h.fail(w, r, "Failed to cancel request", err)
		return
	}
	h.writeRequest(w, r, updated)
}

// ApproveRequest approves a pending request and debits its balance.
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(ctx context.Context, id, by string, _ DecideRequest) (*sqlite.Request, error) {
		return h.Store.ApproveRequest(ctx, id, by)
	})
}

// RejectRequest rejects a pending request with an optional reason.
// POST /api/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(ctx context.Context, id, by string, body DecideRequest) (*sqlite.Request, error) {
		return h.Store.RejectRequest(ctx, id, by, body.Reason)
	})
}

type decision func(ctx context.Context, id, decidedBy string, body DecideRequest) (*sqlite.Request, error)

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, apply decision) {
	req, err := h.Store.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Request not found", err)
		return
	}
	if !h.requireManage(w, r, req.OrgID) {
		return
	}

	var body DecideRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &body) {
		return
	}

	by := ClaimsFrom(r.Context()).EmployeeID()
	updated, err := apply(r.Context(), req.ID, by, body)
	if err != nil {
		h.fail(w, r, "Failed to decide request", err)
		return
	}

	logging.FromContext(r.Context()).Info("request decided",
		zap.String("request_id", updated.ID),
		zap.String("status", updated.Status),
		zap.String("decided_by", by))
	h.writeRequest(w, r, updated)
}

func (h *Handler) writeRequest(w http.ResponseWriter, r *http.Request, req *sqlite.Request) {
	snap, err := h.orgSnapshot(r.Context(), req.OrgID)
	if err != nil {
		h.fail(w, r, "Failed to list leave types", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req, snap))
}

// =============================================================================
// ALLOCATION PREVIEW
// =============================================================================

// Allocate previews how a range would be split against an employee's
// balances and types. Nothing is stored.
// POST /api/allocate
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Range.From.IsZero() {
		writeError(w, http.StatusBadRequest, "range.from is required", generic.ErrInvalidRange)
		return
	}
	if !req.Range.WithinMaxSpan() {
		writeError(w, http.StatusBadRequest, "Range too long",
			fmt.Errorf("%w: more than %d days", generic.ErrInvalidRange, leave.MaxSpanDays))
		return
	}
	for _, item := range req.Cart {
		if err := item.Range.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid cart item", err)
			return
		}
	}

	emp, err := h.Store.GetEmployee(r.Context(), req.EmployeeID)
	if err != nil {
		h.fail(w, r, "Employee not found", err)
		return
	}
	if !ClaimsFrom(r.Context()).CanActFor(emp.ID, emp.OrgID) {
		writeError(w, http.StatusForbidden, "Cannot act for this employee", generic.ErrUnauthorized)
		return
	}

	snap, err := h.Store.Snapshot(r.Context(), emp.ID)
	if err != nil {
		h.fail(w, r, "Failed to load balances", err)
		return
	}
	if req.LeaveTypeID != "" {
		if _, ok := snap.LeaveType(req.LeaveTypeID); !ok {
			h.fail(w, r, "Unknown leave type", fmt.Errorf("%w: %s", generic.ErrUnknownLeaveType, req.LeaveTypeID))
			return
		}
	}

	alloc := leave.Allocate(leave.AllocationInput{
		Range:       req.Range.Closed(),
		Cart:        req.Cart,
		Balances:    snap.Balances,
		LeaveTypes:  snap.LeaveTypes,
		Categories:  snap.Categories,
		Intelligent: req.Intelligent,
		LeaveTypeID: req.LeaveTypeID,
	})

	resp := AllocateResponse{Allocation: alloc}
	if err := alloc.OverflowError(); err != nil {
		resp.Warning = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

// employeeFor loads the {id} employee and checks the caller may see it.
func (h *Handler) employeeFor(w http.ResponseWriter, r *http.Request) (*sqlite.Employee, bool) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Employee not found", err)
		return nil, false
	}
	if !ClaimsFrom(r.Context()).CanActFor(emp.ID, emp.OrgID) {
		writeError(w, http.StatusForbidden, "Cannot act for this employee", generic.ErrUnauthorized)
		return nil, false
	}
	return emp, true
}

func (h *Handler) requireManage(w http.ResponseWriter, r *http.Request, orgID string) bool {
	if !ClaimsFrom(r.Context()).CanManage(orgID) {
		writeError(w, http.StatusForbidden, "HR role required", generic.ErrUnauthorized)
		return false
	}
	return true
}

// orgSnapshot is the part of a snapshot needed to label requests.
func (h *Handler) orgSnapshot(ctx context.Context, orgID string) (leave.Snapshot, error) {
	types, table, err := h.Store.ListLeaveTypes(ctx, orgID)
	if err != nil {
		return leave.Snapshot{}, err
	}
	return leave.Snapshot{LeaveTypes: types, Categories: table}, nil
}

// fail writes err with the status its kind maps to. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, generic.ErrUnauthorized):
		return http.StatusForbidden
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsConflict(err):
		return http.StatusConflict
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody answers 413 when the body exceeds the router's size limit.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
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
