/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with a realistic
	organisation: leave types with their categories, employees, balances and
	already booked requests. Each one exercises a different composer path.

AVAILABLE SCENARIOS:

	fresh-balance:     Plenty of paid leave, empty calendar
	exhausted-balance: A day and a half of paid leave left, so intelligent
	                   mode spills into unpaid leave
	busy-calendar:     Approved and pending half-day bookings next month

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Build an org config document and parse it through the factory
 3. Store it (leave types, employees, balances)
 4. Import booked requests relative to today

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "busy-calendar"}

NOTE:

	Scenarios reset the database, so the load route is only mounted when
	authentication is disabled.

SEE ALSO:
  - handlers.go: Handler context
  - factory/config.go: Org config documents
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/leave-composer/factory"
	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
	"github.com/warp/leave-composer/logging"
	"github.com/warp/leave-composer/store/sqlite"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const demoOrg = "demo"

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-balance",
		Name:        "Fresh Balance",
		Description: "25 days of paid leave and an empty calendar",
	},
	{
		ID:          "exhausted-balance",
		Name:        "Exhausted Balance",
		Description: "1.5 paid days left; intelligent mode splits into unpaid leave",
	},
	{
		ID:          "busy-calendar",
		Name:        "Busy Calendar",
		Description: "Approved and pending half-day bookings next month",
	},
}

// demoLeaveTypes is the org every scenario starts from. Categories are left
// empty so the factory seeds them from names.
var demoLeaveTypes = []factory.LeaveTypeJSON{
	{ID: "cp", Name: "Congés payés", Code: "CP", Color: "#3b82f6"},
	{ID: "ss", Name: "Congé sans solde", Code: "CSS", Color: "#f59e0b"},
	{ID: "tt", Name: "Télétravail", Code: "TT", Color: "#10b981"},
	{ID: "mal", Name: "Maladie", Code: "MAL", Color: "#ef4444"},
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario wipes the database and loads a predefined scenario. The
// router only mounts it while authentication is disabled; the HR check
// covers callers that mount it behind Authenticate themselves.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if !ClaimsFrom(r.Context()).CanManage(demoOrg) {
		writeError(w, http.StatusForbidden, "HR role required", generic.ErrUnauthorized)
		return
	}

	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var load func(ctx context.Context) error
	switch req.ScenarioID {
	case "fresh-balance":
		load = h.loadFreshBalanceScenario
	case "exhausted-balance":
		load = h.loadExhaustedBalanceScenario
	case "busy-calendar":
		load = h.loadBusyCalendarScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	logging.FromContext(ctx).Info("scenario loaded", zap.String("scenario", req.ScenarioID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFreshBalanceScenario(ctx context.Context) error {
	return h.saveDemoOrg(ctx, []factory.EmployeeJSON{
		{ID: "emp-001", Name: "Camille Martin", Email: "camille@example.com",
			Balances: map[string]float64{"cp": 25}},
	})
}

func (h *Handler) loadExhaustedBalanceScenario(ctx context.Context) error {
	if err := h.saveDemoOrg(ctx, []factory.EmployeeJSON{
		{ID: "emp-001", Name: "Camille Martin", Email: "camille@example.com",
			Balances: map[string]float64{"cp": 1.5}},
	}); err != nil {
		return err
	}

	// Already taken earlier this month.
	start := firstWeekday(generic.StartOfMonth(h.Clock().Year(), h.Clock().Month()))
	return h.importBooked(ctx, "emp-001", "cp", leave.Span(start, start.AddDays(1), false, false), sqlite.StatusApproved)
}

func (h *Handler) loadBusyCalendarScenario(ctx context.Context) error {
	if err := h.saveDemoOrg(ctx, []factory.EmployeeJSON{
		{ID: "emp-001", Name: "Camille Martin", Email: "camille@example.com",
			Balances: map[string]float64{"cp": 12}},
		{ID: "emp-002", Name: "Hugo Bernard", Email: "hugo@example.com",
			Balances: map[string]float64{"cp": 3}},
	}); err != nil {
		return err
	}

	next := h.Clock().AddMonths(1)
	monday := generic.StartOfWeek(generic.StartOfMonth(next.Year(), next.Month()).AddDays(7))

	bookings := []struct {
		leaveTypeID string
		rng         leave.DateRange
		status      string
	}{
		// Monday afternoon to Wednesday morning.
		{"cp", leave.Span(monday, monday.AddDays(2), true, true), sqlite.StatusApproved},
		// Remote Thursday morning only.
		{"tt", leave.HalfDay(monday.AddDays(3), leave.AM), sqlite.StatusPending},
		// The following Friday, awaiting approval.
		{"cp", leave.FullDay(monday.AddDays(11)), sqlite.StatusPending},
	}
	for _, b := range bookings {
		if err := h.importBooked(ctx, "emp-001", b.leaveTypeID, b.rng, b.status); err != nil {
			return err
		}
	}
	return h.importBooked(ctx, "emp-002", "mal", leave.FullDay(monday), sqlite.StatusApproved)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) saveDemoOrg(ctx context.Context, employees []factory.EmployeeJSON) error {
	cfg, err := h.ConfigFactory.FromJSON(factory.OrgConfigJSON{
		OrgID:      demoOrg,
		LeaveTypes: demoLeaveTypes,
		Employees:  employees,
	})
	if err != nil {
		return err
	}
	return h.Store.SaveOrgConfig(ctx, cfg)
}

func (h *Handler) importBooked(ctx context.Context, employeeID, leaveTypeID string, rng leave.DateRange, status string) error {
	return h.Store.ImportBooked(ctx, sqlite.Request{
		EmployeeID:  employeeID,
		OrgID:       demoOrg,
		LeaveTypeID: leaveTypeID,
		Range:       rng,
		Status:      status,
	})
}

// firstWeekday returns tp or the next Monday when tp falls on a weekend.
func firstWeekday(tp generic.TimePoint) generic.TimePoint {
	for tp.IsWeekend() {
		tp = tp.AddDays(1)
	}
	return tp
}
