package leave

import (
	"fmt"

	"github.com/warp/leave-composer/generic"
)

// =============================================================================
// COMPOSER - Ties selection, allocation and the cart together
// =============================================================================
//
// One Composer serves one employee composing one request. Every method runs
// synchronously in response to a single interaction event; nothing blocks
// and nothing runs in the background. Inputs arrive as a Snapshot that the
// caller replaces wholesale between cycles.

// Options configures a Composer.
type Options struct {
	Snapshot Snapshot

	// Sequence generates cart item ids. Defaults to "draft-N".
	Sequence IDSequence

	// OnChange receives the cart contents after every change.
	OnChange func([]LeaveRequestItem)

	// Clock supplies "today". Defaults to generic.Today.
	Clock generic.Clock

	// Month anchors the calendar. Defaults to the current month.
	Month generic.TimePoint
}

type Composer struct {
	snapshot    Snapshot
	selection   Selection
	cart        *Cart
	clock       generic.Clock
	month       generic.TimePoint
	hover       *generic.TimePoint
	intelligent bool
	draftTypeID string
}

// NewComposer creates a composer with an empty draft and cart.
func NewComposer(opts Options) *Composer {
	clock := opts.Clock
	if clock == nil {
		clock = generic.Today
	}
	month := opts.Month
	if month.IsZero() {
		month = clock()
	}

	c := &Composer{
		cart:  NewCart(opts.Sequence, opts.OnChange),
		clock: clock,
		month: generic.StartOfMonth(month.Year(), month.Month()),
	}
	c.Refresh(opts.Snapshot)
	return c
}

// Refresh replaces the input snapshot. The draft type survives when it is
// still configured, otherwise it resets to the first configured type.
func (c *Composer) Refresh(s Snapshot) {
	if s.Categories == nil {
		s.Categories = SeedCategoryTable(nil, s.LeaveTypes, s.Balances)
	}
	c.snapshot = s
	if _, ok := s.LeaveType(c.draftTypeID); !ok {
		c.draftTypeID = ""
		if len(s.LeaveTypes) > 0 {
			c.draftTypeID = s.LeaveTypes[0].ID
		}
	}
}

// Snapshot returns the current inputs.
func (c *Composer) Snapshot() Snapshot { return c.snapshot }

// =============================================================================
// INTERACTION EVENTS
// =============================================================================

// Click handles a click on the morning or afternoon half of date. Weekend
// clicks change nothing and return false.
func (c *Composer) Click(date generic.TimePoint, part DayPart) bool {
	return c.selection.Click(date, part)
}

// Hover records the hovered date for preview shading; nil clears it.
// Weekend dates are ignored.
func (c *Composer) Hover(date *generic.TimePoint) {
	if date != nil && date.IsWeekend() {
		return
	}
	if date == nil {
		c.hover = nil
		return
	}
	d := *date
	c.hover = &d
}

// Navigate moves the calendar anchor by delta months.
func (c *Composer) Navigate(delta int) {
	c.month = c.month.AddMonths(delta)
}

// Month is the first day of the anchor month.
func (c *Composer) Month() generic.TimePoint { return c.month }

// SetIntelligentMode toggles automatic category allocation.
func (c *Composer) SetIntelligentMode(on bool) { c.intelligent = on }

// IntelligentMode reports whether automatic allocation is on.
func (c *Composer) IntelligentMode() bool { return c.intelligent }

// SetDraftType chooses the leave type for plain-mode commits.
func (c *Composer) SetDraftType(id string) error {
	if _, ok := c.snapshot.LeaveType(id); !ok {
		return fmt.Errorf("%w: %s", generic.ErrUnknownLeaveType, id)
	}
	c.draftTypeID = id
	return nil
}

// DraftType is the type a plain-mode commit would use.
func (c *Composer) DraftType() string { return c.draftTypeID }

// Draft returns a copy of the in-progress range, nil when there is none.
func (c *Composer) Draft() *DateRange { return c.selection.Draft() }

// State reports the selection state.
func (c *Composer) State() SelectionState { return c.selection.State() }

// Cancel discards the draft. The cart is untouched.
func (c *Composer) Cancel() {
	c.selection.Reset()
	c.hover = nil
}

// =============================================================================
// ALLOCATION & CART
// =============================================================================

// CommitResult reports what a commit added.
type CommitResult struct {
	Added      []LeaveRequestItem `json:"added"`
	Allocation Allocation         `json:"allocation"`
}

func (c *Composer) allocationInput(r DateRange) AllocationInput {
	return AllocationInput{
		Range:       r,
		Cart:        c.cart.Items(),
		Balances:    c.snapshot.Balances,
		LeaveTypes:  c.snapshot.LeaveTypes,
		Categories:  c.snapshot.Categories,
		Intelligent: c.intelligent,
		LeaveTypeID: c.draftTypeID,
	}
}

// Preview allocates the current draft without committing it.
func (c *Composer) Preview() (Allocation, bool) {
	draft := c.selection.Draft()
	if draft == nil {
		return Allocation{}, false
	}
	return Allocate(c.allocationInput(draft.Closed())), true
}

// Commit allocates the draft into the cart and clears the draft. A draft
// with no end commits its start day alone. When allocation yields nothing
// (no leave types configured) the draft is kept.
func (c *Composer) Commit() CommitResult {
	draft := c.selection.Draft()
	if draft == nil {
		return CommitResult{}
	}

	alloc := Allocate(c.allocationInput(draft.Closed()))
	if len(alloc.Items) == 0 {
		return CommitResult{Allocation: alloc}
	}

	added := c.cart.Add(alloc.Items...)
	c.selection.Reset()
	c.hover = nil
	return CommitResult{Added: added, Allocation: alloc}
}

// Remove deletes a cart item by id.
func (c *Composer) Remove(id string) bool { return c.cart.Remove(id) }

// Clear empties the cart.
func (c *Composer) Clear() { c.cart.Clear() }

// Items returns the cart contents.
func (c *Composer) Items() []LeaveRequestItem { return c.cart.Items() }

// =============================================================================
// RENDERING
// =============================================================================

// Grid renders the anchor month shifted by offset months (0 and 1 for a
// two-month view). Booked requests and cart items are both shown as booked.
func (c *Composer) Grid(offset int) MonthGrid {
	booked := make([]LeaveRequestItem, 0, len(c.snapshot.Booked)+c.cart.Len())
	booked = append(booked, c.snapshot.Booked...)
	booked = append(booked, c.cart.Items()...)

	in := GridInput{
		Month:      c.month.AddMonths(offset),
		Draft:      c.selection.Draft(),
		Booked:     booked,
		Categories: c.snapshot.Categories,
		Today:      c.clock(),
	}
	if c.selection.State() == StateStartSelected {
		in.Hover = c.hover
	}
	return BuildGrid(in)
}

// Summary is the side panel: totals, usage and the intelligent-mode proposal.
type Summary struct {
	TotalDays       generic.Amount                   `json:"total_days"`
	DraftDays       generic.Amount                   `json:"draft_days"`
	PaidCapacity    generic.Amount                   `json:"paid_capacity"`
	RemainingPaid   generic.Amount                   `json:"remaining_paid"`
	Usage           map[LeaveCategory]generic.Amount `json:"usage"`
	Proposal        map[LeaveCategory]generic.Amount `json:"proposal,omitempty"`
	Overflow        generic.Amount                   `json:"overflow"`
	SuggestedTypeID string                           `json:"suggested_type_id,omitempty"`
}

// Summary computes the current totals.
func (c *Composer) Summary() Summary {
	items := c.cart.Items()
	s := Summary{
		TotalDays:     c.cart.TotalDays(),
		DraftDays:     generic.ZeroDays(),
		PaidCapacity:  PaidCapacity(c.snapshot.Balances, c.snapshot.Categories),
		RemainingPaid: RemainingPaid(c.snapshot.Balances, items, c.snapshot.Categories),
		Usage:         UsageByCategory(items, c.snapshot.Categories),
		Overflow:      generic.ZeroDays(),
	}

	if draft := c.selection.Draft(); draft != nil {
		s.DraftDays = draft.Closed().BusinessDays()
	}

	if c.intelligent {
		if alloc, ok := c.Preview(); ok {
			s.Proposal = alloc.Breakdown()
			s.Overflow = alloc.Overflow
		}
		days := s.DraftDays
		if !days.IsPositive() {
			days = generic.Days(1)
		}
		s.SuggestedTypeID = SuggestType(days, c.allocationInput(DateRange{}))
	}
	return s
}
