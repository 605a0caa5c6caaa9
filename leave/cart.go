package leave

import (
	"fmt"

	"github.com/warp/leave-composer/generic"
)

// =============================================================================
// ID SEQUENCE
// =============================================================================

// IDSequence hands out item ids unique within one cart.
type IDSequence interface {
	Next() string
}

// CounterSequence yields "<prefix>-0", "<prefix>-1", ...
type CounterSequence struct {
	Prefix string
	next   int
}

// NewCounterSequence starts a counter at zero.
func NewCounterSequence(prefix string) *CounterSequence {
	return &CounterSequence{Prefix: prefix}
}

func (c *CounterSequence) Next() string {
	id := fmt.Sprintf("%s-%d", c.Prefix, c.next)
	c.next++
	return id
}

// =============================================================================
// REQUEST CART
// =============================================================================

// Cart is the ordered list of finalized items awaiting submission. It holds
// only leave type ids; names and colours are looked up by the caller.
// A cart has a single owner and is not safe for concurrent use.
type Cart struct {
	items    []LeaveRequestItem
	seq      IDSequence
	onChange func([]LeaveRequestItem)
}

// NewCart creates an empty cart. onChange may be nil.
func NewCart(seq IDSequence, onChange func([]LeaveRequestItem)) *Cart {
	if seq == nil {
		seq = NewCounterSequence("draft")
	}
	return &Cart{seq: seq, onChange: onChange}
}

// Add appends items in order, assigning fresh ids, and returns them.
func (c *Cart) Add(items ...LeaveRequestItem) []LeaveRequestItem {
	if len(items) == 0 {
		return nil
	}
	added := make([]LeaveRequestItem, len(items))
	for i, item := range items {
		item.ID = c.seq.Next()
		added[i] = item
	}
	c.items = append(c.items, added...)
	c.notify()
	return added
}

// Remove deletes the item with id. Unknown ids are a no-op.
func (c *Cart) Remove(id string) bool {
	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			c.notify()
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	if len(c.items) == 0 {
		return
	}
	c.items = nil
	c.notify()
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []LeaveRequestItem {
	out := make([]LeaveRequestItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of items.
func (c *Cart) Len() int { return len(c.items) }

// TotalDays sums business days over all items, recomputed on every call.
func (c *Cart) TotalDays() generic.Amount {
	total := generic.ZeroDays()
	for _, item := range c.items {
		total = total.Add(item.Days())
	}
	return total
}

func (c *Cart) notify() {
	if c.onChange != nil {
		c.onChange(c.Items())
	}
}
