package leave

import "github.com/warp/leave-composer/generic"

// =============================================================================
// CALENDAR DAY MODEL
// =============================================================================

// Occupancy is how much of one calendar day a range covers.
type Occupancy struct {
	AM bool `json:"am"`
	PM bool `json:"pm"`

	// FullyInRange marks days strictly between the start and end days.
	FullyInRange bool `json:"fully_in_range"`
}

// Any reports whether either half is covered.
func (o Occupancy) Any() bool { return o.AM || o.PM }

// OccupancyOf computes which halves of day the range covers.
func OccupancyOf(r DateRange, day generic.TimePoint) Occupancy {
	if !r.Contains(day) {
		return Occupancy{}
	}

	isStart := day.Equal(r.From)
	isEnd := day.Equal(r.End())

	switch {
	case isStart && isEnd:
		return Occupancy{AM: !r.FromHalfDay, PM: !r.ToHalfDay}
	case isStart:
		return Occupancy{AM: !r.FromHalfDay, PM: true}
	case isEnd:
		return Occupancy{AM: true, PM: !r.ToHalfDay}
	default:
		return Occupancy{AM: true, PM: true, FullyInRange: true}
	}
}

// BookedOccupancy is the OR-combination of several booked ranges on one day.
type BookedOccupancy struct {
	AM          bool
	PM          bool
	LeaveTypeID string
}

// CombineBooked ORs the occupancy of every booked item on day. Booked items
// are expected not to overlap on the same half; when they do, the last
// matching item names the type.
func CombineBooked(items []LeaveRequestItem, day generic.TimePoint) BookedOccupancy {
	var b BookedOccupancy
	for _, item := range items {
		occ := OccupancyOf(item.Range, day)
		if !occ.Any() {
			continue
		}
		b.LeaveTypeID = item.LeaveTypeID
		b.AM = b.AM || occ.AM
		b.PM = b.PM || occ.PM
	}
	return b
}
