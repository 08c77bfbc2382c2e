package analytics

import (
	"time"

	"github.com/vitralis/atelier-manager/internal/entity"
)

// ResolvePeriod maps a named period onto a current/previous pair of half-open
// date ranges. All boundaries derive from the single now value passed in, so
// one call stays internally consistent even while the clock advances. An
// unknown tag yields two empty [today, today) ranges; callers treat that as
// "no data", never as an error.
func ResolvePeriod(period entity.Period, now time.Time) entity.PeriodBounds {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case entity.PeriodToday:
		return entity.PeriodBounds{
			Current:  entity.DateRange{Start: startOfDay, End: now},
			Previous: entity.DateRange{Start: startOfDay.AddDate(0, 0, -1), End: startOfDay},
		}
	case entity.PeriodWeek:
		start := startOfDay.AddDate(0, 0, -6)
		return entity.PeriodBounds{
			Current:  entity.DateRange{Start: start, End: now},
			Previous: entity.DateRange{Start: start.AddDate(0, 0, -7), End: start},
		}
	case entity.PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return entity.PeriodBounds{
			Current:  entity.DateRange{Start: start, End: now},
			Previous: entity.DateRange{Start: start.AddDate(0, -1, 0), End: start},
		}
	case entity.PeriodYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return entity.PeriodBounds{
			Current:  entity.DateRange{Start: start, End: now},
			Previous: entity.DateRange{Start: start.AddDate(-1, 0, 0), End: start},
		}
	}

	empty := entity.DateRange{Start: startOfDay, End: startOfDay}
	return entity.PeriodBounds{Current: empty, Previous: empty}
}
