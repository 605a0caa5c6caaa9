package leave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
)

func newTestComposer(t *testing.T, balance float64, onChange func([]leave.LeaveRequestItem)) *leave.Composer {
	t.Helper()
	return leave.NewComposer(leave.Options{
		Snapshot: leave.Snapshot{
			LeaveTypes: []leave.LeaveType{paidType, unpaidType, remoteType, sickType},
			Balances:   paidBalance(balance),
			Booked: []leave.BookedRequest{
				{ID: "req-1", Range: leave.HalfDay(mar(20), leave.AM), LeaveTypeID: "cp"},
			},
		},
		OnChange: onChange,
		Clock:    func() generic.TimePoint { return mar(5) },
	})
}

func TestComposer_Defaults(t *testing.T) {
	c := newTestComposer(t, 3, nil)

	assert.Equal(t, mar(1), c.Month())
	assert.Equal(t, "cp", c.DraftType())
	assert.Equal(t, leave.StateEmpty, c.State())
	assert.False(t, c.IntelligentMode())

	// Categories are seeded from names when the snapshot carries none
	assert.Equal(t, leave.CategoryUnpaid, c.Snapshot().Categories.Category("ss"))
	assert.Equal(t, leave.CategorySickness, c.Snapshot().Categories.Category("mal"))
}

func TestComposer_PlainCommit(t *testing.T) {
	var changes int
	c := newTestComposer(t, 3, func([]leave.LeaveRequestItem) { changes++ })
	require.NoError(t, c.SetDraftType("tt"))

	c.Click(mar(10), leave.AM)
	c.Click(mar(14), leave.AM)
	res := c.Commit()

	require.Len(t, res.Added, 1)
	assert.Equal(t, "draft-0", res.Added[0].ID)
	assert.Equal(t, "tt", res.Added[0].LeaveTypeID)
	assertDays(t, "4.5", res.Added[0].Days())
	assert.Equal(t, leave.StateEmpty, c.State())
	assert.Equal(t, 1, changes)
}

func TestComposer_IntelligentCommitSplits(t *testing.T) {
	// GIVEN: 3 paid days and intelligent mode
	c := newTestComposer(t, 3, nil)
	c.SetIntelligentMode(true)

	// WHEN: a full week is committed
	c.Click(mar(10), leave.AM)
	c.Click(mar(14), leave.PM)
	res := c.Commit()

	// THEN: paid then unpaid
	require.Len(t, res.Added, 2)
	assert.Equal(t, "cp", res.Added[0].LeaveTypeID)
	assert.Equal(t, "ss", res.Added[1].LeaveTypeID)
	assert.Equal(t, []string{"draft-0", "draft-1"}, []string{res.Added[0].ID, res.Added[1].ID})

	// WHEN: another day is committed, the paid balance is already spent
	c.Click(mar(17), leave.AM)
	c.Click(mar(17), leave.PM)
	res = c.Commit()
	require.Len(t, res.Added, 1)
	assert.Equal(t, "ss", res.Added[0].LeaveTypeID)

	s := c.Summary()
	assertDays(t, "6", s.TotalDays)
	assertDays(t, "3", s.PaidCapacity)
	assertDays(t, "0", s.RemainingPaid)
	assertDays(t, "3", s.Usage[leave.CategoryPaid])
	assertDays(t, "3", s.Usage[leave.CategoryUnpaid])
	assert.Equal(t, "ss", s.SuggestedTypeID)
}

func TestComposer_LoneStartCommitsSingleHalf(t *testing.T) {
	c := newTestComposer(t, 3, nil)

	c.Click(mar(11), leave.PM)
	res := c.Commit()

	require.Len(t, res.Added, 1)
	assert.Equal(t, leave.HalfDay(mar(11), leave.PM), res.Added[0].Range)
	assertDays(t, "0.5", res.Added[0].Days())
}

func TestComposer_CommitWithoutDraft(t *testing.T) {
	c := newTestComposer(t, 3, nil)
	res := c.Commit()
	assert.Empty(t, res.Added)
	assert.Empty(t, c.Items())
}

func TestComposer_CommitWithoutTypesKeepsDraft(t *testing.T) {
	c := leave.NewComposer(leave.Options{Clock: func() generic.TimePoint { return mar(5) }})

	c.Click(mar(10), leave.AM)
	res := c.Commit()

	assert.Empty(t, res.Added)
	assertDays(t, "0.5", res.Allocation.Overflow)
	assert.Equal(t, leave.StateStartSelected, c.State())
}

func TestComposer_SetDraftTypeUnknown(t *testing.T) {
	c := newTestComposer(t, 3, nil)
	assert.ErrorIs(t, c.SetDraftType("nope"), generic.ErrUnknownLeaveType)
	assert.Equal(t, "cp", c.DraftType())
}

func TestComposer_RefreshKeepsOrResetsDraftType(t *testing.T) {
	c := newTestComposer(t, 3, nil)
	require.NoError(t, c.SetDraftType("tt"))

	c.Refresh(leave.Snapshot{LeaveTypes: []leave.LeaveType{unpaidType, remoteType}})
	assert.Equal(t, "tt", c.DraftType())

	c.Refresh(leave.Snapshot{LeaveTypes: []leave.LeaveType{unpaidType}})
	assert.Equal(t, "ss", c.DraftType())
}

func TestComposer_GridShowsCartAsBooked(t *testing.T) {
	c := newTestComposer(t, 3, nil)
	c.Click(mar(12), leave.AM)
	c.Click(mar(12), leave.PM)
	c.Commit()

	grid := c.Grid(0)
	byDate := cellsByDate(grid)

	assert.True(t, byDate[mar(12)].Booked.AM)
	assert.True(t, byDate[mar(12)].Booked.PM)
	assert.True(t, byDate[mar(20)].Booked.AM)
	assert.False(t, byDate[mar(20)].Booked.PM)
	assert.True(t, byDate[mar(5)].IsToday)

	next := c.Grid(1)
	assert.Equal(t, generic.NewTimePoint(2025, 4, 1), next.Month)
}

func TestComposer_HoverOnlyWhileStartSelected(t *testing.T) {
	c := newTestComposer(t, 3, nil)

	c.Click(mar(10), leave.AM)
	c.Hover(ptr(mar(12)))
	assert.True(t, cellsByDate(c.Grid(0))[mar(11)].InRange)

	// Weekend hover is ignored, the previous hover stays
	c.Hover(ptr(mar(15)))
	assert.True(t, cellsByDate(c.Grid(0))[mar(12)].InRange)

	c.Hover(nil)
	assert.False(t, cellsByDate(c.Grid(0))[mar(11)].InRange)

	c.Hover(ptr(mar(12)))
	c.Cancel()
	assert.Equal(t, leave.StateEmpty, c.State())
	assert.False(t, cellsByDate(c.Grid(0))[mar(11)].InRange)
}

func TestComposer_Navigate(t *testing.T) {
	c := newTestComposer(t, 3, nil)
	c.Navigate(-3)
	assert.Equal(t, generic.NewTimePoint(2024, 12, 1), c.Month())
	c.Navigate(2)
	assert.Equal(t, generic.NewTimePoint(2025, 2, 1), c.Month())
}

func TestComposer_PreviewDoesNotCommit(t *testing.T) {
	c := newTestComposer(t, 1, nil)
	c.SetIntelligentMode(true)

	_, ok := c.Preview()
	assert.False(t, ok)

	c.Click(mar(10), leave.AM)
	c.Click(mar(11), leave.PM)
	alloc, ok := c.Preview()
	require.True(t, ok)
	assert.Len(t, alloc.Items, 2)
	assert.Empty(t, c.Items())

	s := c.Summary()
	assertDays(t, "2", s.DraftDays)
	assertDays(t, "1", s.Proposal[leave.CategoryPaid])
	assertDays(t, "1", s.Proposal[leave.CategoryUnpaid])
	assertDays(t, "0", s.Overflow)
}

func TestComposer_RemoveAndClear(t *testing.T) {
	c := newTestComposer(t, 10, nil)
	c.Click(mar(10), leave.AM)
	c.Click(mar(10), leave.PM)
	first := c.Commit().Added[0]
	c.Click(mar(11), leave.AM)
	c.Click(mar(11), leave.PM)
	c.Commit()

	assert.True(t, c.Remove(first.ID))
	assert.Len(t, c.Items(), 1)
	c.Clear()
	assert.Empty(t, c.Items())
}
