package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
	"github.com/warp/leave-composer/logging"
	"go.uber.org/zap"
)

// =============================================================================
// COMPOSER SESSION ENDPOINTS
// =============================================================================
//
//   POST   /api/sessions                      create for an employee
//   GET    /api/sessions/{sid}                render state
//   DELETE /api/sessions/{sid}                discard
//   POST   /api/sessions/{sid}/click          {date, part}
//   POST   /api/sessions/{sid}/hover          {date|null}
//   POST   /api/sessions/{sid}/navigate       {delta}
//   POST   /api/sessions/{sid}/mode           {intelligent}
//   POST   /api/sessions/{sid}/type           {leave_type_id}
//   POST   /api/sessions/{sid}/commit         draft -> cart
//   POST   /api/sessions/{sid}/cancel         drop the draft
//   POST   /api/sessions/{sid}/submit         persist the cart, end the session
//   DELETE /api/sessions/{sid}/items/{itemID} remove one cart item
//   DELETE /api/sessions/{sid}/items          empty the cart
//
// Every event returns the full SessionDTO so clients re-render from it.

// months rendered side by side
const visibleMonths = 2

// CreateSession opens a composer on the employee's current data.
// POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
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

	var month generic.TimePoint
	if req.Month != "" {
		month, err = generic.ParseMonth(req.Month)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (want YYYY-MM)", err)
			return
		}
	}

	snap, err := h.Store.Snapshot(r.Context(), emp.ID)
	if err != nil {
		h.fail(w, r, "Failed to load employee data", err)
		return
	}

	s := h.Sessions.Create(emp.ID, emp.OrgID, snap, month)
	logging.FromContext(r.Context()).Info("composer session created",
		zap.String("session_id", s.ID),
		zap.String("employee_id", emp.ID))

	var dto SessionDTO
	s.With(func(c *leave.Composer) error {
		dto = sessionDTO(s, c)
		return nil
	})
	writeJSON(w, http.StatusCreated, dto)
}

// GetSession returns the render state.
// GET /api/sessions/{sid}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(c *leave.Composer) error { return nil })
}

// DeleteSession discards a session and its cart.
// DELETE /api/sessions/{sid}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.Sessions.Delete(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Click handles a click on one half of a day.
// POST /api/sessions/{sid}/click
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required", generic.ErrInvalidDate)
		return
	}
	part, err := leave.ParseDayPart(req.Part)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid part (want am or pm)", err)
		return
	}

	h.withSession(w, r, func(c *leave.Composer) error {
		c.Click(req.Date, part)
		return nil
	})
}

// Hover moves the preview hover.
// POST /api/sessions/{sid}/hover
func (h *Handler) Hover(w http.ResponseWriter, r *http.Request) {
	var req HoverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.withSession(w, r, func(c *leave.Composer) error {
		c.Hover(req.Date)
		return nil
	})
}

// Navigate moves the calendar anchor.
// POST /api/sessions/{sid}/navigate
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.withSession(w, r, func(c *leave.Composer) error {
		c.Navigate(req.Delta)
		return nil
	})
}

// SetMode toggles intelligent allocation.
// POST /api/sessions/{sid}/mode
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.withSession(w, r, func(c *leave.Composer) error {
		c.SetIntelligentMode(req.Intelligent)
		return nil
	})
}

// SetType chooses the plain-mode leave type.
// POST /api/sessions/{sid}/type
func (h *Handler) SetType(w http.ResponseWriter, r *http.Request) {
	var req TypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.withSession(w, r, func(c *leave.Composer) error {
		return c.SetDraftType(req.LeaveTypeID)
	})
}

// Cancel drops the draft.
// POST /api/sessions/{sid}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(c *leave.Composer) error {
		c.Cancel()
		return nil
	})
}

// Commit allocates the draft into the cart.
// POST /api/sessions/{sid}/commit
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var resp CommitResponse
	s.With(func(c *leave.Composer) error {
		result := c.Commit()
		resp.Added = toCartItemDTOs(result.Added, c.Snapshot())
		resp.Overflow = result.Allocation.Overflow
		if err := result.Allocation.OverflowError(); err != nil {
			resp.Warning = err.Error()
			logging.FromContext(r.Context()).Warn("commit overflowed balances",
				zap.String("session_id", s.ID),
				zap.String("requested", result.Allocation.Requested.String()),
				zap.String("overflow", result.Allocation.Overflow.String()))
		}
		resp.Session = sessionDTO(s, c)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

// RemoveItem deletes one cart item.
// DELETE /api/sessions/{sid}/items/{itemID}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	h.withSession(w, r, func(c *leave.Composer) error {
		if !c.Remove(itemID) {
			return generic.ErrEntityNotFound
		}
		return nil
	})
}

// ClearItems empties the cart.
// DELETE /api/sessions/{sid}/items
func (h *Handler) ClearItems(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(c *leave.Composer) error {
		c.Clear()
		return nil
	})
}

// Submit persists the cart as pending requests and ends the session.
// POST /api/sessions/{sid}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	var resp SubmitResponse
	err := s.With(func(c *leave.Composer) error {
		stored, err := h.Store.SubmitRequests(r.Context(), s.EmployeeID, req.Subject, c.Items())
		if err != nil {
			return err
		}
		resp.Requests = toRequestDTOs(stored, c.Snapshot())
		c.Clear()
		return nil
	})
	if err != nil {
		h.fail(w, r, "Failed to submit requests", err)
		return
	}

	h.Sessions.Delete(s.ID)
	logging.FromContext(r.Context()).Info("leave requests submitted",
		zap.String("session_id", s.ID),
		zap.String("employee_id", s.EmployeeID),
		zap.Int("items", len(resp.Requests)))
	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

// session loads {sid} and checks it belongs to the caller.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s, err := h.Sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.fail(w, r, "Session not found", err)
		return nil, false
	}
	if !ClaimsFrom(r.Context()).CanActFor(s.EmployeeID, s.OrgID) {
		writeError(w, http.StatusForbidden, "Session belongs to another employee", generic.ErrUnauthorized)
		return nil, false
	}
	return s, true
}

// withSession applies one event and responds with the new state.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, event func(c *leave.Composer) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var dto SessionDTO
	err := s.With(func(c *leave.Composer) error {
		if err := event(c); err != nil {
			return err
		}
		dto = sessionDTO(s, c)
		return nil
	})
	if err != nil {
		h.fail(w, r, "Event rejected", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// sessionDTO renders a composer. Callers hold the session.
func sessionDTO(s *Session, c *leave.Composer) SessionDTO {
	months := make([]MonthGridDTO, visibleMonths)
	for i := range months {
		months[i] = toMonthGridDTO(c.Grid(i))
	}
	return SessionDTO{
		ID:          s.ID,
		EmployeeID:  s.EmployeeID,
		State:       c.State(),
		Draft:       c.Draft(),
		DraftTypeID: c.DraftType(),
		Intelligent: c.IntelligentMode(),
		Months:      months,
		Items:       toCartItemDTOs(c.Items(), c.Snapshot()),
		Summary:     c.Summary(),
		Version:     s.Version(),
	}
}
