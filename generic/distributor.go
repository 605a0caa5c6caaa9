/*
distributor.go - Greedy distribution of a quantity across capacity buckets

PURPOSE:
  A request for N days may have to be drawn from several sources. Each source
  (bucket) has a priority and either a finite remaining capacity or no limit.
  The distributor drains buckets in priority order and reports what could not
  be covered.

EXAMPLE:
  Buckets: paid (capacity 3, priority 1), unpaid (unlimited, priority 2)
  Request: 5 days
  Result:  paid 3, unpaid 2, overflow 0

  Buckets: paid (capacity 3)            and a fallback bucket "paid"
  Request: 5 days
  Result:  paid 3, paid 2 (fallback), overflow 2

PRIORITY ORDERING:
  Lower priority number = drained first. Equal priorities keep input order.

SEE ALSO:
  - leave/allocate.go: Builds paid/unpaid/remote buckets from balances
*/
package generic

import "sort"

// Bucket is one source a quantity can be drawn from.
type Bucket struct {
	Key      string
	Label    string
	Priority int

	// Capacity is the remaining quantity; nil means unlimited.
	Capacity *Amount
}

// BucketAllocation is the amount drawn from a single bucket.
type BucketAllocation struct {
	Key    string
	Label  string
	Amount Amount

	// Fallback marks the allocation made to the fallback bucket for the
	// quantity no regular bucket could cover.
	Fallback bool
}

// Distribution describes how a requested quantity is split across buckets.
type Distribution struct {
	TotalRequested Amount
	Allocations    []BucketAllocation

	// Overflow is the quantity regular buckets could not cover. When a
	// fallback bucket exists it is also allocated there.
	Overflow Amount

	// Unassigned is what remains with no bucket at all (no fallback configured).
	Unassigned Amount
}

// IsSatisfiable reports whether regular buckets covered the whole request.
func (d *Distribution) IsSatisfiable() bool {
	return d.Overflow.IsZero()
}

// CapacityDistributor determines how to split a quantity across buckets.
type CapacityDistributor struct {
	// Fallback receives any overflow. Optional.
	Fallback *Bucket
}

// Distribute splits requested across buckets by priority.
func (cd *CapacityDistributor) Distribute(buckets []Bucket, requested Amount) *Distribution {
	ordered := make([]Bucket, len(buckets))
	copy(ordered, buckets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	var allocations []BucketAllocation
	remaining := requested.NonNegative()

	for _, b := range ordered {
		if remaining.IsZero() {
			break
		}

		available := remaining
		if b.Capacity != nil {
			available = b.Capacity.NonNegative()
		}
		if available.IsZero() {
			continue
		}

		// Take min(remaining, available)
		toTake := remaining.Min(available)
		allocations = append(allocations, BucketAllocation{
			Key:    b.Key,
			Label:  b.Label,
			Amount: toTake,
		})
		remaining = remaining.Sub(toTake)
	}

	dist := &Distribution{
		TotalRequested: requested,
		Overflow:       remaining,
		Unassigned:     remaining.Zero(),
	}

	if remaining.IsPositive() {
		if cd.Fallback != nil {
			allocations = append(allocations, BucketAllocation{
				Key:      cd.Fallback.Key,
				Label:    cd.Fallback.Label,
				Amount:   remaining,
				Fallback: true,
			})
		} else {
			dist.Unassigned = remaining
		}
	}

	dist.Allocations = allocations
	return dist
}
