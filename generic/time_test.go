package generic_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-composer/generic"
)

func date(y int, m time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(y, m, d)
}

func TestStartOfWeek_IsMonday(t *testing.T) {
	tests := []struct {
		name string
		in   generic.TimePoint
		want generic.TimePoint
	}{
		{"monday stays", date(2025, time.March, 10), date(2025, time.March, 10)},
		{"wednesday", date(2025, time.March, 12), date(2025, time.March, 10)},
		{"sunday belongs to previous week", date(2025, time.March, 16), date(2025, time.March, 10)},
		{"across month boundary", date(2025, time.March, 1), date(2025, time.February, 24)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generic.StartOfWeek(tt.in))
			assert.Equal(t, time.Sunday, generic.EndOfWeek(tt.in).Weekday())
		})
	}
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, date(2024, time.February, 29), generic.EndOfMonth(2024, time.February))
	assert.Equal(t, date(2025, time.February, 28), generic.EndOfMonth(2025, time.February))
	assert.Equal(t, date(2025, time.December, 31), generic.EndOfMonth(2025, time.December))
}

func TestCountWorkdays(t *testing.T) {
	tests := []struct {
		name     string
		from, to generic.TimePoint
		want     int
	}{
		{"single weekday", date(2025, time.March, 10), date(2025, time.March, 10), 1},
		{"mon to fri", date(2025, time.March, 10), date(2025, time.March, 14), 5},
		{"weekend only", date(2025, time.March, 15), date(2025, time.March, 16), 0},
		{"fri to mon", date(2025, time.March, 14), date(2025, time.March, 17), 2},
		{"three weeks", date(2025, time.March, 3), date(2025, time.March, 23), 15},
		{"reversed", date(2025, time.March, 14), date(2025, time.March, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generic.CountWorkdays(tt.from, tt.to))
		})
	}
}

func TestTimePoint_JSON(t *testing.T) {
	tp := date(2025, time.March, 10)
	data, err := json.Marshal(tp)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-10"`, string(data))

	var back generic.TimePoint
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(tp))

	err = json.Unmarshal([]byte(`"10/03/2025"`), &back)
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

func TestParseMonth(t *testing.T) {
	tp, err := generic.ParseMonth("2025-02")
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.February, 1), tp)

	_, err = generic.ParseMonth("2025-13")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}
