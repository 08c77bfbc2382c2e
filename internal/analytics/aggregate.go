package analytics

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/vitralis/atelier-manager/internal/dependency"
	"github.com/vitralis/atelier-manager/internal/entity"
)

type AggregateKind int

const (
	KindCount AggregateKind = iota + 1
	KindSum
	KindCountSum
)

type AggregateResult struct {
	Count int
	Sum   decimal.Decimal
}

// RangeQuery describes one range-restricted aggregate over a collection.
// FallbackTimeField, when set, substitutes for TimeField on records that do
// not carry it (products keep an updatedAt only after the first edit).
type RangeQuery struct {
	Collection        string
	TimeField         string
	FallbackTimeField string
	Range             entity.DateRange
	Kind              AggregateKind
	SumField          string
	Extra             []entity.Filter
}

// rangeAggregator is one strategy for executing a RangeQuery.
type rangeAggregator interface {
	aggregate(ctx context.Context, q RangeQuery) (AggregateResult, error)
}

// serverAggregate asks the store to compute the aggregate. It refuses
// queries with a fallback time field: no server-side expression can branch
// per record between two timestamp fields.
type serverAggregate struct {
	db dependency.Records
}

func (s serverAggregate) aggregate(ctx context.Context, q RangeQuery) (AggregateResult, error) {
	if q.FallbackTimeField != "" {
		return AggregateResult{}, fmt.Errorf("time field fallback: %w", dependency.ErrUnsupported)
	}
	filters := append(append([]entity.Filter{}, q.Extra...), entity.RangeFilters(q.TimeField, q.Range)...)

	res := AggregateResult{Sum: decimal.Zero}
	if q.Kind == KindCount || q.Kind == KindCountSum {
		count, err := s.db.Count(ctx, q.Collection, filters)
		if err != nil {
			return AggregateResult{}, err
		}
		res.Count = count
	}
	if q.Kind == KindSum || q.Kind == KindCountSum {
		sum, err := s.db.SumField(ctx, q.Collection, q.SumField, filters)
		if err != nil {
			return AggregateResult{}, err
		}
		res.Sum = sum
	}
	return res, nil
}

// scanAndFilter fetches the collection and accumulates in process. Equality
// filters are pushed down as an indexed pre-filter where the store can use
// them, but every predicate is re-applied client-side so both strategies
// agree on any record set.
type scanAndFilter struct {
	db dependency.Records
}

func (s scanAndFilter) aggregate(ctx context.Context, q RangeQuery) (AggregateResult, error) {
	var pre []entity.Filter
	for _, f := range q.Extra {
		if f.Op == entity.OpEq {
			pre = append(pre, f)
		}
	}
	records, err := s.db.Scan(ctx, q.Collection, pre...)
	if err != nil {
		// retry unfiltered, the pre-filter itself may be the unsupported part
		records, err = s.db.Scan(ctx, q.Collection)
		if err != nil {
			return AggregateResult{}, fmt.Errorf("fallback scan %s: %w", q.Collection, err)
		}
	}

	res := AggregateResult{Sum: decimal.Zero}
	for _, rec := range records {
		if !entity.MatchAll(rec, q.Extra) {
			continue
		}
		ts, ok := rec.Time(timeFields(q)...)
		if !ok || !q.Range.Contains(ts) {
			continue
		}
		res.Count++
		if q.SumField != "" {
			res.Sum = res.Sum.Add(rec.Num(q.SumField))
		}
	}
	return res, nil
}

func timeFields(q RangeQuery) []string {
	if q.FallbackTimeField != "" {
		return []string{q.TimeField, q.FallbackTimeField}
	}
	return []string{q.TimeField}
}

// Aggregator prefers the server-computed aggregate and transparently falls
// back to a client-side scan on any failure: unsupported shapes, quota and
// transient errors all land on the same degraded path. Only a failure of the
// fallback fetch itself propagates.
type Aggregator struct {
	primary  rangeAggregator
	fallback rangeAggregator
}

func NewAggregator(db dependency.Records) *Aggregator {
	return &Aggregator{
		primary:  serverAggregate{db: db},
		fallback: scanAndFilter{db: db},
	}
}

func (a *Aggregator) Aggregate(ctx context.Context, q RangeQuery) (AggregateResult, error) {
	if q.Range.IsEmpty() {
		return AggregateResult{Sum: decimal.Zero}, nil
	}
	res, err := a.primary.aggregate(ctx, q)
	if err == nil {
		return res, nil
	}
	slog.Default().WarnContext(ctx, "server aggregate failed, scanning",
		slog.String("collection", q.Collection),
		slog.String("err", err.Error()),
	)
	return a.fallback.aggregate(ctx, q)
}
