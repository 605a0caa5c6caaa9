package leave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-composer/leave"
)

func TestSelection_StartThenComplete(t *testing.T) {
	var s leave.Selection
	assert.Equal(t, leave.StateEmpty, s.State())
	assert.Nil(t, s.Draft())

	// GIVEN: a morning click on Monday
	require.True(t, s.Click(mar(10), leave.AM))
	assert.Equal(t, leave.StateStartSelected, s.State())
	draft := s.Draft()
	assert.Equal(t, mar(10), draft.From)
	assert.Nil(t, draft.To)
	assert.False(t, draft.FromHalfDay)
	assert.True(t, draft.ToHalfDay)

	// WHEN: an afternoon click on Friday
	require.True(t, s.Click(mar(14), leave.PM))

	// THEN: the full week is selected
	assert.Equal(t, leave.StateRangeComplete, s.State())
	draft = s.Draft()
	require.NotNil(t, draft.To)
	assert.Equal(t, mar(14), *draft.To)
	assert.False(t, draft.FromHalfDay)
	assert.False(t, draft.ToHalfDay)
	assertDays(t, "5", draft.BusinessDays())
}

func TestSelection_AfternoonStartMorningEnd(t *testing.T) {
	var s leave.Selection
	s.Click(mar(10), leave.PM)
	s.Click(mar(12), leave.AM)

	draft := s.Draft()
	assert.True(t, draft.FromHalfDay)
	assert.True(t, draft.ToHalfDay)
	assertDays(t, "2", draft.BusinessDays())
}

func TestSelection_EarlierClickRestarts(t *testing.T) {
	// GIVEN: Tuesday afternoon selected as start
	var s leave.Selection
	s.Click(mar(11), leave.PM)

	// WHEN: Monday morning is clicked
	s.Click(mar(10), leave.AM)

	// THEN: Monday becomes the new start, still open
	assert.Equal(t, leave.StateStartSelected, s.State())
	draft := s.Draft()
	assert.Equal(t, mar(10), draft.From)
	assert.False(t, draft.FromHalfDay)
	assert.Nil(t, draft.To)
}

func TestSelection_FarClickRestarts(t *testing.T) {
	// GIVEN: Monday selected as start
	var s leave.Selection
	s.Click(mar(10), leave.AM)

	// WHEN: a weekday more than a year later is clicked
	far := mar(10).AddDays(leave.MaxSpanDays + 1)
	require.True(t, far.IsWorkday())
	s.Click(far, leave.AM)

	// THEN: it becomes the new start instead of completing the range
	assert.Equal(t, leave.StateStartSelected, s.State())
	assert.Equal(t, far, s.Draft().From)
}

func TestSelection_WeekendClickIsNoop(t *testing.T) {
	var s leave.Selection
	assert.False(t, s.Click(mar(15), leave.AM))
	assert.Equal(t, leave.StateEmpty, s.State())

	s.Click(mar(14), leave.AM)
	before := s.Draft()
	assert.False(t, s.Click(mar(16), leave.PM))
	assert.Equal(t, before, s.Draft())
	assert.Equal(t, leave.StateStartSelected, s.State())
}

func TestSelection_SameDayHalves(t *testing.T) {
	tests := []struct {
		name        string
		first       leave.DayPart
		second      leave.DayPart
		fromHalfDay bool
		toHalfDay   bool
		days        string
	}{
		{"morning then afternoon is a full day", leave.AM, leave.PM, false, false, "1"},
		{"morning twice is morning only", leave.AM, leave.AM, false, true, "0.5"},
		{"afternoon twice is afternoon only", leave.PM, leave.PM, true, false, "0.5"},
		{"afternoon then morning keeps the morning", leave.PM, leave.AM, false, true, "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s leave.Selection
			s.Click(mar(12), tt.first)
			s.Click(mar(12), tt.second)

			draft := s.Draft()
			assert.Equal(t, leave.StateRangeComplete, s.State())
			assert.Equal(t, tt.fromHalfDay, draft.FromHalfDay)
			assert.Equal(t, tt.toHalfDay, draft.ToHalfDay)
			assertDays(t, tt.days, draft.BusinessDays())
			assert.NoError(t, draft.Validate())
		})
	}
}

func TestSelection_ClickAfterCompleteStartsOver(t *testing.T) {
	var s leave.Selection
	s.Click(mar(10), leave.AM)
	s.Click(mar(12), leave.PM)

	s.Click(mar(20), leave.PM)

	assert.Equal(t, leave.StateStartSelected, s.State())
	assert.Equal(t, mar(20), s.Draft().From)
	assert.True(t, s.Draft().FromHalfDay)
}

func TestSelection_DraftIsACopy(t *testing.T) {
	var s leave.Selection
	s.Click(mar(10), leave.AM)
	s.Click(mar(12), leave.PM)

	d := s.Draft()
	*d.To = mar(28)
	d.FromHalfDay = true

	assert.Equal(t, mar(12), *s.Draft().To)
	assert.False(t, s.Draft().FromHalfDay)
}

func TestSelection_Reset(t *testing.T) {
	var s leave.Selection
	s.Click(mar(10), leave.AM)
	s.Reset()
	assert.Equal(t, leave.StateEmpty, s.State())
	assert.Nil(t, s.Draft())
}
