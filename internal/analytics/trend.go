package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitralis/atelier-manager/internal/entity"
)

// RevenueRecord is one completed transaction feeding the trend series.
type RevenueRecord struct {
	Timestamp time.Time
	Amount    decimal.Decimal
	Cost      decimal.Decimal
	HasCost   bool
}

// bucketKey pairs a bucket's label with its represented instant. Sorting goes
// by the instant: month "2" must land after month "1" even where the labels
// would compare the other way around.
type bucketKey struct {
	start time.Time
	label string
}

func bucketFor(period entity.Period, t time.Time) bucketKey {
	switch period {
	case entity.PeriodToday:
		start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
		return bucketKey{start: start, label: fmt.Sprintf("%02d:00", t.Hour())}
	case entity.PeriodYear:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return bucketKey{start: start, label: start.Format("2006-01")}
	default:
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return bucketKey{start: start, label: start.Format("2006-01-02")}
	}
}

// BuildTrend groups records into chronological buckets whose granularity
// follows the period: hourly for today, daily for week and month, monthly for
// year. Profit per record is amount minus cost, estimating cost as
// costRatio × amount when none is recorded. Buckets without records are not
// synthesized; callers wanting a dense series fill gaps themselves.
func BuildTrend(period entity.Period, records []RevenueRecord, costRatio decimal.Decimal) []entity.TrendPoint {
	type agg struct {
		key     bucketKey
		revenue decimal.Decimal
		orders  int
		profit  decimal.Decimal
	}
	buckets := map[time.Time]*agg{}
	for _, r := range records {
		key := bucketFor(period, r.Timestamp)
		b, ok := buckets[key.start]
		if !ok {
			b = &agg{key: key, revenue: decimal.Zero, profit: decimal.Zero}
			buckets[key.start] = b
		}
		cost := r.Cost
		if !r.HasCost {
			cost = r.Amount.Mul(costRatio)
		}
		b.revenue = b.revenue.Add(r.Amount)
		b.profit = b.profit.Add(r.Amount.Sub(cost))
		b.orders++
	}

	points := make([]*agg, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, b)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].key.start.Before(points[j].key.start)
	})

	out := make([]entity.TrendPoint, len(points))
	for i, b := range points {
		out[i] = entity.TrendPoint{
			Date:    b.key.label,
			Revenue: b.revenue.Round(2),
			Orders:  b.orders,
			Profit:  b.profit.Round(2),
		}
	}
	return out
}
