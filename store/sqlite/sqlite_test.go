package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-composer/factory"
	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
)

func day(d int) generic.TimePoint {
	return generic.NewTimePoint(2025, time.March, d)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg, err := factory.NewConfigFactory().ParseOrgConfig(`{
		"org_id": "acme",
		"leave_types": [
			{"id": "cp", "name": "Congés payés", "code": "CP"},
			{"id": "ss", "name": "Congé sans solde"},
			{"id": "tt", "name": "Télétravail", "category": "remote"}
		],
		"employees": [
			{"id": "alice", "name": "Alice", "balances": {"cp": 10}},
			{"id": "bob", "name": "Bob"}
		]
	}`)
	require.NoError(t, err)
	require.NoError(t, store.SaveOrgConfig(context.Background(), cfg))
	return store
}

func TestSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snap, err := store.Snapshot(ctx, "alice")
	require.NoError(t, err)

	require.Len(t, snap.LeaveTypes, 3)
	assert.Equal(t, []string{"cp", "ss", "tt"}, []string{snap.LeaveTypes[0].ID, snap.LeaveTypes[1].ID, snap.LeaveTypes[2].ID})
	assert.Equal(t, leave.CategoryPaid, snap.Categories.Category("cp"))
	assert.Equal(t, leave.CategoryRemote, snap.Categories.Category("tt"))

	require.Len(t, snap.Balances, 1)
	assert.Equal(t, "Congés payés", snap.Balances[0].Name)
	require.NotNil(t, snap.Balances[0].Code)
	assert.Equal(t, "CP", *snap.Balances[0].Code)
	assert.Equal(t, "10", snap.Balances[0].Balance.String())
	assert.Empty(t, snap.Booked)
}

func TestSnapshot_UnknownEmployee(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Snapshot(context.Background(), "nobody")
	assert.ErrorIs(t, err, generic.ErrEntityNotFound)
}

func TestSubmitRequests_RoundTripsHalfDays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN: a cart with a half-day boundary on each side
	items := []leave.LeaveRequestItem{
		{ID: "draft-0", Range: leave.Span(day(10), day(12), true, false), LeaveTypeID: "cp"},
		{ID: "draft-1", Range: leave.Span(day(13), day(14), false, true), LeaveTypeID: "ss"},
	}

	// WHEN
	stored, err := store.SubmitRequests(ctx, "alice", "  Spring break ", items)
	require.NoError(t, err)

	// THEN: both are pending, booked, and read back with their half flags
	require.Len(t, stored, 2)
	assert.NotEqual(t, "draft-0", stored[0].ID)
	assert.Equal(t, StatusPending, stored[0].Status)
	assert.Equal(t, "Spring break", stored[0].Subject)
	assert.Equal(t, "2.5", stored[0].Days.String())

	booked, err := store.Booked(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, booked, 2)
	assert.Equal(t, items[0].Range, booked[0].Range)
	assert.Equal(t, items[1].Range, booked[1].Range)
	assert.Equal(t, "ss", booked[1].LeaveTypeID)
}

func TestSubmitRequests_AllOrNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SubmitRequests(ctx, "alice", "", nil)
	assert.ErrorIs(t, err, generic.ErrEmptyCart)

	_, err = store.SubmitRequests(ctx, "alice", "", []leave.LeaveRequestItem{
		{Range: leave.FullDay(day(10)), LeaveTypeID: "cp"},
		{Range: leave.FullDay(day(11)), LeaveTypeID: "bonus"},
	})
	assert.ErrorIs(t, err, generic.ErrUnknownLeaveType)

	_, err = store.SubmitRequests(ctx, "alice", "", []leave.LeaveRequestItem{
		{Range: leave.Span(day(12), day(10), false, false), LeaveTypeID: "cp"},
	})
	assert.ErrorIs(t, err, generic.ErrInvalidRange)

	requests, err := store.RequestsByEmployee(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestApproveRequest_DebitsBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stored, err := store.SubmitRequests(ctx, "alice", "", []leave.LeaveRequestItem{
		{Range: leave.Span(day(10), day(12), false, true), LeaveTypeID: "cp"},
		{Range: leave.FullDay(day(13)), LeaveTypeID: "ss"},
	})
	require.NoError(t, err)

	pending, err := store.PendingRequests(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	approved, err := store.ApproveRequest(ctx, stored[0].ID, "hr-1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "hr-1", approved.DecidedBy)
	require.NotNil(t, approved.DecidedAt)

	// Unpaid has no balance row and stays without one
	_, err = store.ApproveRequest(ctx, stored[1].ID, "hr-1")
	require.NoError(t, err)

	balances, err := store.Balances(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "7.5", balances[0].Balance.String())

	booked, err := store.Booked(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, booked, 2, "approved requests still block the calendar")
}

func TestTransitions_OnlyFromPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stored, err := store.SubmitRequests(ctx, "bob", "", []leave.LeaveRequestItem{
		{Range: leave.FullDay(day(10)), LeaveTypeID: "tt"},
		{Range: leave.FullDay(day(11)), LeaveTypeID: "tt"},
	})
	require.NoError(t, err)

	rejected, err := store.RejectRequest(ctx, stored[0].ID, "hr-1", "team offsite")
	require.NoError(t, err)
	assert.Equal(t, "team offsite", rejected.Reason)

	_, err = store.CancelRequest(ctx, stored[0].ID)
	assert.ErrorIs(t, err, generic.ErrRequestNotCancellable)
	assert.True(t, generic.IsConflict(err))

	cancelled, err := store.CancelRequest(ctx, stored[1].ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.DecidedAt)

	booked, err := store.Booked(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, booked, "rejected and cancelled requests free the calendar")

	_, err = store.ApproveRequest(ctx, "missing", "hr-1")
	assert.ErrorIs(t, err, generic.ErrEntityNotFound)
}

func TestSetCategoryAndBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetCategory(ctx, "acme", "ss", leave.CategoryOther))
	_, table, err := store.ListLeaveTypes(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, leave.CategoryOther, table.Category("ss"))

	err = store.SetCategory(ctx, "acme", "nope", leave.CategoryPaid)
	assert.ErrorIs(t, err, generic.ErrUnknownLeaveType)

	require.NoError(t, store.SetBalance(ctx, "bob", "cp", generic.Days(4.5)))
	balances, err := store.Balances(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "4.5", balances[0].Balance.String())

	assert.ErrorIs(t, store.SetBalance(ctx, "bob", "nope", generic.Days(1)), generic.ErrUnknownLeaveType)
	assert.ErrorIs(t, store.SetBalance(ctx, "nobody", "cp", generic.Days(1)), generic.ErrEntityNotFound)
}

func TestSaveLeaveType_AppendsInOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLeaveType(ctx, "acme", leave.LeaveType{ID: "mal", Name: "Maladie"}, leave.CategorySickness))

	types, table, err := store.ListLeaveTypes(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, types, 4)
	assert.Equal(t, "mal", types[3].ID)
	assert.Equal(t, leave.CategorySickness, table.Category("mal"))
}

func TestImportBooked_LegacyMarkers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Rows written by older clients spell the halves out
	_, err := store.db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, employee_id, org_id, leave_type_id, start_date, end_date,
			start_half, end_half, days, status, created_at, updated_at)
		VALUES ('legacy', 'alice', 'acme', 'cp', '2025-03-17', '2025-03-18', 'afternoon', 'morning', '1', 'approved', '', '')
	`)
	require.NoError(t, err)

	require.NoError(t, store.ImportBooked(ctx, Request{
		EmployeeID:  "alice",
		OrgID:       "acme",
		LeaveTypeID: "tt",
		Range:       leave.HalfDay(day(20), leave.PM),
	}))

	booked, err := store.Booked(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, booked, 2)
	assert.Equal(t, leave.Span(day(17), day(18), true, true), booked[0].Range)
	assert.Equal(t, leave.HalfDay(day(20), leave.PM), booked[1].Range)
}

func TestImportBooked_RejectsInvalidRanges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rng  leave.DateRange
	}{
		{"open", leave.DateRange{From: day(10)}},
		{"backwards", leave.Span(day(12), day(10), false, false)},
		{"over a year", leave.Span(day(10), day(10).AddDays(leave.MaxSpanDays), false, false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ImportBooked(ctx, Request{EmployeeID: "alice", OrgID: "acme", LeaveTypeID: "cp", Range: tt.rng})
			assert.ErrorIs(t, err, generic.ErrInvalidRange)
		})
	}

	booked, err := store.Booked(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, booked)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Reset(ctx))

	employees, err := store.ListEmployees(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, employees)
}
