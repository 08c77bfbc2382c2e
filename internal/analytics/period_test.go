package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitralis/atelier-manager/internal/entity"
)

func TestResolvePeriod_RangesAreAdjacent(t *testing.T) {
	now := time.Date(2026, 8, 25, 14, 30, 12, 0, time.UTC)

	for _, period := range []entity.Period{
		entity.PeriodToday, entity.PeriodWeek, entity.PeriodMonth, entity.PeriodYear,
	} {
		bounds := ResolvePeriod(period, now)

		assert.True(t, bounds.Previous.End.Equal(bounds.Current.Start), "period %s", period)
		assert.True(t, bounds.Current.End.Equal(now), "period %s", period)
		assert.False(t, bounds.Current.IsEmpty(), "period %s", period)
		assert.False(t, bounds.Previous.IsEmpty(), "period %s", period)

		// half-open: the shared boundary belongs to current only
		boundary := bounds.Current.Start
		assert.True(t, bounds.Current.Contains(boundary), "period %s", period)
		assert.False(t, bounds.Previous.Contains(boundary), "period %s", period)
	}
}

func TestResolvePeriod_Today(t *testing.T) {
	now := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)
	bounds := ResolvePeriod(entity.PeriodToday, now)

	require.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), bounds.Current.Start)
	require.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), bounds.Previous.Start)
	require.Equal(t, bounds.Current.Start, bounds.Previous.End)
}

func TestResolvePeriod_MonthStartsOnFirst(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	bounds := ResolvePeriod(entity.PeriodMonth, now)

	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), bounds.Current.Start)
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), bounds.Previous.Start)
}

func TestResolvePeriod_YearCrossesIntoPreviousYear(t *testing.T) {
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	bounds := ResolvePeriod(entity.PeriodYear, now)

	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), bounds.Current.Start)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), bounds.Previous.Start)
}

func TestResolvePeriod_UnknownTagYieldsEmptyRanges(t *testing.T) {
	bounds := ResolvePeriod(entity.Period("quarter"), time.Now())

	assert.True(t, bounds.Current.IsEmpty())
	assert.True(t, bounds.Previous.IsEmpty())
}
