package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMonthGrid_LeapFebruary(t *testing.T) {
	ref := time.Date(2024, 2, 17, 15, 30, 0, 0, time.UTC)

	cells := BuildMonthGrid(ref)

	// 2024-02-01 is a Thursday.
	require.Len(t, cells, 4+29)
	for i := 0; i < 4; i++ {
		assert.True(t, cells[i].Empty, "cell %d should be padding", i)
		assert.Equal(t, 0, cells[i].Day())
	}
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), cells[4].Date)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), cells[len(cells)-1].Date)
}

func TestBuildMonthGrid_NoPaddingWhenFirstIsSunday(t *testing.T) {
	// 2026-11-01 is a Sunday.
	cells := BuildMonthGrid(time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC))

	require.Len(t, cells, 30)
	assert.False(t, cells[0].Empty)
	assert.Equal(t, 1, cells[0].Day())
}

func TestBuildMonthGrid_AllMonths(t *testing.T) {
	for y := 1999; y <= 2030; y++ {
		for m := time.January; m <= time.December; m++ {
			ref := time.Date(y, m, 15, 12, 0, 0, 0, time.UTC)
			cells := BuildMonthGrid(ref)

			first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
			padding := int(first.Weekday())
			days := DaysInMonth(y, m)

			require.Len(t, cells, padding+days, "%d-%02d", y, m)
			assert.GreaterOrEqual(t, padding, 0)
			assert.LessOrEqual(t, padding, 6)

			for i, c := range cells {
				if i < padding {
					assert.True(t, c.Empty)
					continue
				}
				assert.False(t, c.Empty)
				assert.Equal(t, i-padding+1, c.Day())
				assert.Equal(t, m, c.Date.Month())
			}
		}
	}
}

func TestBuildMonthGridFrom_MondayStart(t *testing.T) {
	tests := []struct {
		name    string
		ref     time.Time
		padding int
	}{
		// 2026-10-01 is a Thursday: Mon, Tue, Wed before it.
		{name: "thursday first", ref: time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC), padding: 3},
		// 2026-11-01 is a Sunday: last column.
		{name: "sunday first", ref: time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC), padding: 6},
		// 2026-06-01 is a Monday.
		{name: "monday first", ref: time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC), padding: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := BuildMonthGridFrom(tt.ref, time.Monday)
			assert.Equal(t, tt.padding, PaddingCount(tt.ref, time.Monday))
			require.Len(t, cells, tt.padding+DaysInMonth(tt.ref.Year(), tt.ref.Month()))
			assert.False(t, cells[tt.padding].Empty)
			assert.Equal(t, 1, cells[tt.padding].Day())
		})
	}
}

func TestBuildMonthGrid_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	cells := BuildMonthGrid(time.Date(2026, 10, 19, 23, 0, 0, 0, loc))

	for _, c := range cells {
		if c.Empty {
			continue
		}
		assert.Equal(t, loc, c.Date.Location())
		assert.Equal(t, 0, c.Date.Hour())
	}
}

func TestWeekdayNames(t *testing.T) {
	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, WeekdayNames(time.Sunday))
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, WeekdayNames(time.Monday))
}
