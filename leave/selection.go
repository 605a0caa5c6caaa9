package leave

import "github.com/warp/leave-composer/generic"

// =============================================================================
// RANGE SELECTION STATE MACHINE
// =============================================================================
//
//   Empty ──click──▶ StartSelected ──click on/after start──▶ RangeComplete
//                      │    ▲                                   │
//                      └────┘ click before start (restart)      │
//                      ▲                                        │
//                      └──────────── any click ─────────────────┘
//
//   Reset (commit or cancel) returns to Empty from any state.

// SelectionState names where the draft is.
type SelectionState string

const (
	StateEmpty         SelectionState = "empty"
	StateStartSelected SelectionState = "start_selected"
	StateRangeComplete SelectionState = "range_complete"
)

// Selection holds the draft range being picked.
type Selection struct {
	draft *DateRange
}

// State reports the current state.
func (s *Selection) State() SelectionState {
	switch {
	case s.draft == nil:
		return StateEmpty
	case s.draft.IsOpen():
		return StateStartSelected
	default:
		return StateRangeComplete
	}
}

// Draft returns a copy of the draft, nil when Empty.
func (s *Selection) Draft() *DateRange {
	if s.draft == nil {
		return nil
	}
	d := *s.draft
	if d.To != nil {
		to := *d.To
		d.To = &to
	}
	return &d
}

// Click applies a click on one half of date. Weekend clicks are ignored and
// reported as false. A second click before the start, or MaxSpanDays or more
// after it, starts a new draft.
func (s *Selection) Click(date generic.TimePoint, part DayPart) bool {
	if date.IsWeekend() {
		return false
	}

	if s.State() == StateStartSelected && !date.Before(s.draft.From) &&
		generic.DaysBetween(s.draft.From, date) < MaxSpanDays {
		s.complete(date, part)
		return true
	}

	s.start(date, part)
	return true
}

// start begins a fresh draft. A lone AM click defaults to morning only and a
// lone PM click to afternoon only.
func (s *Selection) start(date generic.TimePoint, part DayPart) {
	s.draft = &DateRange{
		From:        date,
		FromHalfDay: part == PM,
		ToHalfDay:   part == AM,
	}
}

func (s *Selection) complete(date generic.TimePoint, part DayPart) {
	to := date
	s.draft.To = &to
	s.draft.ToHalfDay = part == AM

	// PM then AM on the same day would cover nothing; the last click wins.
	if s.draft.IsSingleDay() && s.draft.FromHalfDay && s.draft.ToHalfDay {
		s.draft.FromHalfDay = false
	}
}

// Reset discards the draft.
func (s *Selection) Reset() {
	s.draft = nil
}
