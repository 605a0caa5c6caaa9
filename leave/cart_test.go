package leave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-composer/leave"
)

func TestCart_AddAssignsSequentialIDs(t *testing.T) {
	cart := leave.NewCart(leave.NewCounterSequence("item"), nil)

	added := cart.Add(
		leave.LeaveRequestItem{Range: leave.FullDay(mar(10)), LeaveTypeID: "cp"},
		leave.LeaveRequestItem{Range: leave.FullDay(mar(11)), LeaveTypeID: "ss"},
	)
	more := cart.Add(leave.LeaveRequestItem{Range: leave.FullDay(mar(12)), LeaveTypeID: "cp"})

	require.Len(t, added, 2)
	assert.Equal(t, "item-0", added[0].ID)
	assert.Equal(t, "item-1", added[1].ID)
	assert.Equal(t, "item-2", more[0].ID)

	items := cart.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"cp", "ss", "cp"}, []string{items[0].LeaveTypeID, items[1].LeaveTypeID, items[2].LeaveTypeID})
}

func TestCart_DefaultSequence(t *testing.T) {
	cart := leave.NewCart(nil, nil)
	added := cart.Add(leave.LeaveRequestItem{Range: leave.FullDay(mar(10)), LeaveTypeID: "cp"})
	assert.Equal(t, "draft-0", added[0].ID)
}

func TestCart_Remove(t *testing.T) {
	cart := leave.NewCart(nil, nil)
	added := cart.Add(
		leave.LeaveRequestItem{Range: leave.FullDay(mar(10)), LeaveTypeID: "cp"},
		leave.LeaveRequestItem{Range: leave.FullDay(mar(11)), LeaveTypeID: "ss"},
		leave.LeaveRequestItem{Range: leave.FullDay(mar(12)), LeaveTypeID: "tt"},
	)

	assert.True(t, cart.Remove(added[1].ID))
	assert.False(t, cart.Remove(added[1].ID), "second removal is a no-op")
	assert.False(t, cart.Remove("unknown"))

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, added[0].ID, items[0].ID)
	assert.Equal(t, added[2].ID, items[1].ID)
}

func TestCart_TotalDays(t *testing.T) {
	cart := leave.NewCart(nil, nil)
	assertDays(t, "0", cart.TotalDays())

	cart.Add(
		leave.LeaveRequestItem{Range: leave.Span(mar(10), mar(14), false, true), LeaveTypeID: "cp"},
		leave.LeaveRequestItem{Range: leave.HalfDay(mar(17), leave.PM), LeaveTypeID: "tt"},
	)
	assertDays(t, "5", cart.TotalDays())

	cart.Clear()
	assertDays(t, "0", cart.TotalDays())
	assert.Equal(t, 0, cart.Len())
}

func TestCart_OnChange(t *testing.T) {
	// GIVEN: a cart with a change listener
	var snapshots [][]leave.LeaveRequestItem
	cart := leave.NewCart(nil, func(items []leave.LeaveRequestItem) {
		snapshots = append(snapshots, items)
	})

	// WHEN: items are added, removed and cleared
	added := cart.Add(
		leave.LeaveRequestItem{Range: leave.FullDay(mar(10)), LeaveTypeID: "cp"},
		leave.LeaveRequestItem{Range: leave.FullDay(mar(11)), LeaveTypeID: "cp"},
	)
	cart.Remove("unknown")
	cart.Remove(added[0].ID)
	cart.Clear()
	cart.Clear()

	// THEN: one notification per effective change, each with the full contents
	require.Len(t, snapshots, 3)
	assert.Len(t, snapshots[0], 2)
	assert.Len(t, snapshots[1], 1)
	assert.Empty(t, snapshots[2])
}

func TestCart_ItemsIsACopy(t *testing.T) {
	cart := leave.NewCart(nil, nil)
	cart.Add(leave.LeaveRequestItem{Range: leave.FullDay(mar(10)), LeaveTypeID: "cp"})

	items := cart.Items()
	items[0].LeaveTypeID = "changed"

	assert.Equal(t, "cp", cart.Items()[0].LeaveTypeID)
}
