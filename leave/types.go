// Package leave implements the interactive leave-request composer: day
// occupancy, month grids, the range selection state machine, balance-aware
// allocation and the request cart. Everything here is pure and synchronous;
// persistence and identity live with the caller.
package leave

import (
	"fmt"

	"github.com/warp/leave-composer/generic"
)

// =============================================================================
// DAY PARTS
// =============================================================================

// DayPart is the half of a day a click landed on.
type DayPart string

const (
	AM DayPart = "am"
	PM DayPart = "pm"
)

// ParseDayPart accepts "am"/"morning" and "pm"/"afternoon".
func ParseDayPart(s string) (DayPart, error) {
	switch s {
	case "am", "morning":
		return AM, nil
	case "pm", "afternoon":
		return PM, nil
	}
	return "", fmt.Errorf("invalid day part %q", s)
}

// =============================================================================
// LEAVE TYPES & BALANCES
// =============================================================================

// LeaveType is a leave type configured for an organisation.
type LeaveType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code,omitempty"`
	Color string `json:"color,omitempty"`
}

// LeaveBalanceItem is a read-only snapshot of an employee's balance for one type.
type LeaveBalanceItem struct {
	LeaveTypeID string         `json:"leave_type_id"`
	Name        string         `json:"name"`
	Code        *string        `json:"code"`
	Balance     generic.Amount `json:"balance"`
}

// =============================================================================
// REQUEST ITEMS
// =============================================================================

// LeaveRequestItem is one range assigned to one leave type.
type LeaveRequestItem struct {
	ID          string    `json:"id"`
	Range       DateRange `json:"range"`
	LeaveTypeID string    `json:"leave_type_id"`
}

// Days is the item's business-day count.
func (i LeaveRequestItem) Days() generic.Amount {
	return i.Range.BusinessDays()
}

// BookedRequest is an already persisted pending or approved request. It only
// ever blocks or colours calendar days.
type BookedRequest = LeaveRequestItem

// Snapshot is the immutable input set for one interaction cycle. Callers
// refresh it wholesale, never incrementally.
type Snapshot struct {
	LeaveTypes []LeaveType
	Booked     []BookedRequest
	Balances   []LeaveBalanceItem
	Categories CategoryTable
}

// LeaveType looks up a configured type by id.
func (s Snapshot) LeaveType(id string) (LeaveType, bool) {
	for _, lt := range s.LeaveTypes {
		if lt.ID == id {
			return lt, true
		}
	}
	return LeaveType{}, false
}
