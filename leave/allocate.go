/*
allocate.go - Balance-aware allocation of a date range to leave types

PURPOSE:
  Turns a finalized draft range into request items. In plain mode the whole
  range goes to the chosen type. In intelligent mode the range's business days
  are drawn greedily from categories in a fixed order:

    paid (remaining balance) ──▶ unpaid (unlimited) ──▶ remote (unlimited)

  Sickness and other types are never assigned automatically.

SPLITTING:
  When more than one segment results, the range is expanded into half-day
  slots (weekdays only, boundary halves excluded) and cut contiguously:

    Mon..Fri, paid 3 / unpaid 2
    slots: Mon-am Mon-pm Tue-am Tue-pm Wed-am Wed-pm | Thu-am Thu-pm Fri-am Fri-pm
    items: Mon..Wed (paid)                           | Thu..Fri (unpaid)

OVERFLOW:
  Days no category can cover go to the paid type (or the first configured
  type) and are reported in Allocation.Overflow. Nothing here returns an error.

PURITY:
  Allocate is a function of its input. Items carry no id; the cart assigns ids
  on insertion, so re-running an allocation after toggling modes is safe.
*/
package leave

import (
	"github.com/warp/leave-composer/generic"
)

// AllocationInput is everything one allocation depends on.
type AllocationInput struct {
	Range      DateRange
	Cart       []LeaveRequestItem
	Balances   []LeaveBalanceItem
	LeaveTypes []LeaveType
	Categories CategoryTable

	Intelligent bool

	// LeaveTypeID is the explicit choice used when Intelligent is false.
	// Empty falls back to the first configured type.
	LeaveTypeID string
}

// Segment is a quantity of days assigned to one leave type.
type Segment struct {
	LeaveTypeID string         `json:"leave_type_id"`
	Category    LeaveCategory  `json:"category"`
	Days        generic.Amount `json:"days"`
	Fallback    bool           `json:"fallback,omitempty"`
}

// Allocation is the result of Allocate.
type Allocation struct {
	Requested generic.Amount     `json:"requested"`
	Segments  []Segment          `json:"segments"`
	Items     []LeaveRequestItem `json:"items"`

	// Overflow is the number of days no balance or unlimited category covered.
	Overflow generic.Amount `json:"overflow"`
}

// OverflowError returns a *generic.OverflowError when days overflowed.
func (a Allocation) OverflowError() error {
	if !a.Overflow.IsPositive() {
		return nil
	}
	return &generic.OverflowError{Requested: a.Requested, Overflow: a.Overflow}
}

// Breakdown sums segment days per category.
func (a Allocation) Breakdown() map[LeaveCategory]generic.Amount {
	out := make(map[LeaveCategory]generic.Amount, len(Categories))
	for _, c := range Categories {
		out[c] = generic.ZeroDays()
	}
	for _, seg := range a.Segments {
		out[seg.Category] = out[seg.Category].Add(seg.Days)
	}
	return out
}

// Allocate converts a range into request items.
func Allocate(in AllocationInput) Allocation {
	rng := in.Range.Normalize()
	needed := rng.BusinessDays()

	if !in.Intelligent {
		return allocateExplicit(in, rng, needed)
	}

	result := Allocation{Requested: needed, Overflow: generic.ZeroDays()}
	if !needed.IsPositive() {
		return result
	}

	dist := planCategories(in, needed)
	result.Overflow = dist.Overflow

	for _, alloc := range dist.Allocations {
		if !alloc.Amount.IsPositive() {
			continue
		}
		// Overflow falling back onto the paid type extends the paid segment.
		if n := len(result.Segments); n > 0 && result.Segments[n-1].LeaveTypeID == alloc.Key {
			result.Segments[n-1].Days = result.Segments[n-1].Days.Add(alloc.Amount)
			result.Segments[n-1].Fallback = result.Segments[n-1].Fallback || alloc.Fallback
			continue
		}
		result.Segments = append(result.Segments, Segment{
			LeaveTypeID: alloc.Key,
			Category:    in.Categories.Category(alloc.Key),
			Days:        alloc.Amount,
			Fallback:    alloc.Fallback,
		})
	}

	switch len(result.Segments) {
	case 0:
		return result
	case 1:
		result.Items = []LeaveRequestItem{{Range: rng, LeaveTypeID: result.Segments[0].LeaveTypeID}}
		return result
	}

	result.Items = splitBySlots(rng, result.Segments)
	return result
}

func allocateExplicit(in AllocationInput, rng DateRange, needed generic.Amount) Allocation {
	typeID := in.LeaveTypeID
	if typeID == "" && len(in.LeaveTypes) > 0 {
		typeID = in.LeaveTypes[0].ID
	}
	if typeID == "" {
		return Allocation{Requested: needed, Overflow: needed}
	}
	return Allocation{
		Requested: needed,
		Segments: []Segment{{
			LeaveTypeID: typeID,
			Category:    in.Categories.Category(typeID),
			Days:        needed,
		}},
		Items:    []LeaveRequestItem{{Range: rng, LeaveTypeID: typeID}},
		Overflow: generic.ZeroDays(),
	}
}

// planCategories runs the paid -> unpaid -> remote greedy plan.
func planCategories(in AllocationInput, needed generic.Amount) *generic.Distribution {
	paidID, hasPaid := in.Categories.FirstOfCategory(in.LeaveTypes, CategoryPaid)
	unpaidID, hasUnpaid := in.Categories.FirstOfCategory(in.LeaveTypes, CategoryUnpaid)
	remoteID, hasRemote := in.Categories.FirstOfCategory(in.LeaveTypes, CategoryRemote)

	var buckets []generic.Bucket
	if hasPaid {
		// Only whole half days can be booked against a fractional balance.
		remaining := RemainingPaid(in.Balances, in.Cart, in.Categories).FloorHalfDays()
		buckets = append(buckets, generic.Bucket{Key: paidID, Label: string(CategoryPaid), Priority: 1, Capacity: &remaining})
	}
	if hasUnpaid {
		buckets = append(buckets, generic.Bucket{Key: unpaidID, Label: string(CategoryUnpaid), Priority: 2})
	}
	if hasRemote {
		buckets = append(buckets, generic.Bucket{Key: remoteID, Label: string(CategoryRemote), Priority: 3})
	}

	distributor := &generic.CapacityDistributor{}
	switch {
	case hasPaid:
		distributor.Fallback = &generic.Bucket{Key: paidID, Label: string(CategoryPaid)}
	case len(in.LeaveTypes) > 0:
		first := in.LeaveTypes[0].ID
		distributor.Fallback = &generic.Bucket{Key: first, Label: string(in.Categories.Category(first))}
	}

	return distributor.Distribute(buckets, needed)
}

// splitBySlots cuts the range's half-day slots contiguously, segment by
// segment. Segments that find no slots left are clipped or skipped.
func splitBySlots(rng DateRange, segments []Segment) []LeaveRequestItem {
	slots := rng.Slots()
	var items []LeaveRequestItem
	idx := 0

	for _, seg := range segments {
		count := seg.Days.HalfDayUnits()
		if count <= 0 || idx >= len(slots) {
			continue
		}
		end := min(idx+count, len(slots))
		segSlots := slots[idx:end]
		idx = end

		items = append(items, LeaveRequestItem{
			Range:       RangeFromSlots(segSlots[0], segSlots[len(segSlots)-1]),
			LeaveTypeID: seg.LeaveTypeID,
		})
	}
	return items
}

// =============================================================================
// CAPACITY & USAGE
// =============================================================================

// PaidCapacity sums the non-negative balances of paid types.
func PaidCapacity(balances []LeaveBalanceItem, table CategoryTable) generic.Amount {
	total := generic.ZeroDays()
	for _, b := range balances {
		if table.Category(b.LeaveTypeID) != CategoryPaid {
			continue
		}
		total = total.Add(b.Balance.NonNegative())
	}
	return total
}

// UsageByCategory sums cart days per category.
func UsageByCategory(items []LeaveRequestItem, table CategoryTable) map[LeaveCategory]generic.Amount {
	usage := make(map[LeaveCategory]generic.Amount, len(Categories))
	for _, c := range Categories {
		usage[c] = generic.ZeroDays()
	}
	for _, item := range items {
		c := table.Category(item.LeaveTypeID)
		usage[c] = usage[c].Add(item.Days())
	}
	return usage
}

// RemainingPaid is paid capacity minus paid days already in the cart, floored at zero.
func RemainingPaid(balances []LeaveBalanceItem, cart []LeaveRequestItem, table CategoryTable) generic.Amount {
	used := UsageByCategory(cart, table)[CategoryPaid]
	return PaidCapacity(balances, table).Sub(used).NonNegative()
}

// SuggestType picks the type intelligent mode would favour for a draft of
// days: paid when the remaining balance covers it, else unpaid, else remote,
// else paid anyway. Empty when nothing suitable is configured.
func SuggestType(days generic.Amount, in AllocationInput) string {
	paidID, hasPaid := in.Categories.FirstOfCategory(in.LeaveTypes, CategoryPaid)
	if hasPaid && !RemainingPaid(in.Balances, in.Cart, in.Categories).LessThan(days) {
		return paidID
	}
	if id, ok := in.Categories.FirstOfCategory(in.LeaveTypes, CategoryUnpaid); ok {
		return id
	}
	if id, ok := in.Categories.FirstOfCategory(in.LeaveTypes, CategoryRemote); ok {
		return id
	}
	return paidID
}
