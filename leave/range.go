package leave

import (
	"fmt"

	"github.com/warp/leave-composer/generic"
)

// =============================================================================
// DATE RANGE - Half-day precise span of calendar dates
// =============================================================================

// MaxSpanDays bounds the calendar length of one range, a year including
// a leap day.
const MaxSpanDays = 366

// DateRange is a span of dates with half-day boundaries.
//
// To == nil means only the start has been picked so far. FromHalfDay excludes
// the start day's morning (the range begins at midday); ToHalfDay excludes the
// end day's afternoon (the range ends at midday).
type DateRange struct {
	From        generic.TimePoint  `json:"from"`
	To          *generic.TimePoint `json:"to"`
	FromHalfDay bool               `json:"from_half_day"`
	ToHalfDay   bool               `json:"to_half_day"`
}

// Span builds a closed range.
func Span(from, to generic.TimePoint, fromHalfDay, toHalfDay bool) DateRange {
	return DateRange{From: from, To: &to, FromHalfDay: fromHalfDay, ToHalfDay: toHalfDay}
}

// HalfDay builds a closed single-day range covering one half.
func HalfDay(day generic.TimePoint, part DayPart) DateRange {
	return Span(day, day, part == PM, part == AM)
}

// FullDay builds a closed single-day range covering the whole day.
func FullDay(day generic.TimePoint) DateRange {
	return Span(day, day, false, false)
}

// End is the last day of the range; the start day while the end is unset.
func (r DateRange) End() generic.TimePoint {
	if r.To != nil {
		return *r.To
	}
	return r.From
}

// WithinMaxSpan reports whether From..End covers at most MaxSpanDays dates.
func (r DateRange) WithinMaxSpan() bool {
	return generic.DaysBetween(r.From, r.End()) < MaxSpanDays
}

// IsOpen reports whether only the start has been picked.
func (r DateRange) IsOpen() bool { return r.To == nil }

// IsSingleDay reports whether start and end fall on the same date.
func (r DateRange) IsSingleDay() bool { return r.From.Equal(r.End()) }

// Contains reports whether day lies within [From, End].
func (r DateRange) Contains(day generic.TimePoint) bool {
	return day.AfterOrEqual(r.From) && day.BeforeOrEqual(r.End())
}

// Closed returns the range with To set, defaulting to a single day.
func (r DateRange) Closed() DateRange {
	end := r.End()
	r.To = &end
	return r
}

// Normalize returns a closed range that always covers at least one half day.
//
// An end before the start collapses to a single day at From. A single day
// with both halves excluded keeps the end flag (morning only), because the
// end flag is always the one set by the most recent click.
func (r DateRange) Normalize() DateRange {
	r = r.Closed()
	if r.To.Before(r.From) {
		from := r.From
		r.To = &from
	}
	if r.IsSingleDay() && r.FromHalfDay && r.ToHalfDay {
		r.FromHalfDay = false
	}
	return r
}

// Validate rejects ranges that Normalize would have to repair.
func (r DateRange) Validate() error {
	if r.To == nil {
		return fmt.Errorf("%w: missing end date", generic.ErrInvalidRange)
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("%w: end %s before start %s", generic.ErrInvalidRange, r.To, r.From)
	}
	if !r.WithinMaxSpan() {
		return fmt.Errorf("%w: %s spans more than %d days", generic.ErrInvalidRange, r, MaxSpanDays)
	}
	if r.IsSingleDay() && r.FromHalfDay && r.ToHalfDay {
		return fmt.Errorf("%w: zero-duration half day on %s", generic.ErrInvalidRange, r.From)
	}
	return nil
}

// BusinessDays counts Monday-Friday dates in the range minus half-day
// deductions, floored at zero. A half-day flag only deducts when its boundary
// day is itself a weekday.
func (r DateRange) BusinessDays() generic.Amount {
	end := r.End()
	halves := 2 * generic.CountWorkdays(r.From, end)
	if halves == 0 {
		return generic.ZeroDays()
	}
	if r.FromHalfDay && r.From.IsWorkday() {
		halves--
	}
	if r.ToHalfDay && end.IsWorkday() {
		halves--
	}
	if halves < 0 {
		halves = 0
	}
	return generic.HalfDays(halves)
}

func (r DateRange) String() string {
	s := r.From.String()
	if r.FromHalfDay {
		s += " (PM)"
	}
	if r.To == nil {
		return s
	}
	s += " - " + r.To.String()
	if r.ToHalfDay {
		s += " (AM)"
	}
	return s
}

// =============================================================================
// HALF-DAY SLOTS
// =============================================================================

// Slot is one bookable half of a weekday.
type Slot struct {
	Date generic.TimePoint
	Part DayPart
}

// Slots expands the range into its ordered half-day slots, skipping weekends
// and the halves excluded by the boundary flags.
func (r DateRange) Slots() []Slot {
	end := r.End()
	var slots []Slot
	for day := r.From; day.BeforeOrEqual(end); day = day.AddDays(1) {
		if day.IsWeekend() {
			continue
		}
		if !(day.Equal(r.From) && r.FromHalfDay) {
			slots = append(slots, Slot{Date: day, Part: AM})
		}
		if !(day.Equal(end) && r.ToHalfDay) {
			slots = append(slots, Slot{Date: day, Part: PM})
		}
	}
	return slots
}

// RangeFromSlots builds the range spanning first..last.
func RangeFromSlots(first, last Slot) DateRange {
	return Span(first.Date, last.Date, first.Part == PM, last.Part == AM)
}
