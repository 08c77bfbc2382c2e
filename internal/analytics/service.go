package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vitralis/atelier-manager/internal/dependency"
	"github.com/vitralis/atelier-manager/internal/entity"
)

const (
	collectionOrders   = "orders"
	collectionQuotes   = "quotes"
	collectionUsers    = "users"
	collectionProducts = "products"
	collectionMedia    = "media"
	collectionReviews  = "productReviews"

	galleryRelation = "gallery"

	defaultActivityLimit   = 10
	dashboardActivityLimit = 8
	maxActivityLimit       = 50
	defaultTopProducts     = 5
)

// fulfilledStatuses are the order states counted as realized revenue.
var fulfilledStatuses = []string{"completed", "shipped", "delivered", "paid"}

type Config struct {
	// DefaultCostRatio estimates cost of goods as a share of revenue for
	// orders that carry no recorded cost. Must be in (0, 1).
	DefaultCostRatio float64 `mapstructure:"default_cost_ratio"`
	ActivityLimit    int     `mapstructure:"activity_limit"`
}

// Service assembles the dashboard read models from the record store. Every
// public method has a total contract: orchestration failures are logged and
// degrade to documented defaults, they never reach the caller as errors.
type Service struct {
	db       dependency.Records
	agg      *Aggregator
	currency *CurrencyResolver

	costRatio     decimal.Decimal
	activityLimit int
	now           func() time.Time
}

func New(cfg Config, db dependency.Records, settings dependency.Settings) *Service {
	ratio := cfg.DefaultCostRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.7
	}
	limit := cfg.ActivityLimit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return &Service{
		db:            db,
		agg:           NewAggregator(db),
		currency:      NewCurrencyResolver(settings),
		costRatio:     decimal.NewFromFloat(ratio),
		activityLimit: limit,
		now:           time.Now,
	}
}

var _ dependency.Analytics = (*Service)(nil)

// allTime is a range wide enough to cover every stored record.
func (s *Service) allTime() entity.DateRange {
	return entity.DateRange{Start: time.Unix(0, 0).UTC(), End: s.now()}
}

func (s *Service) GetDashboardSnapshot(ctx context.Context) *entity.DashboardSnapshot {
	code := s.currency.Resolve(ctx)
	snap := &entity.DashboardSnapshot{
		CurrencyCode: code,
		Orders:       entity.OrdersSummary{Revenue: decimal.Zero},
		Activity:     []entity.ActivityItem{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.agg.Aggregate(gctx, RangeQuery{
			Collection: collectionProducts, TimeField: "createdAt",
			Range: s.allTime(), Kind: KindCount,
		})
		snap.TotalProducts = res.Count
		return err
	})
	g.Go(func() error {
		res, err := s.agg.Aggregate(gctx, RangeQuery{
			Collection: collectionOrders, TimeField: "createdAt",
			Range: s.allTime(), Kind: KindCount,
		})
		snap.Orders.Total = res.Count
		return err
	})
	g.Go(func() error {
		res, err := s.agg.Aggregate(gctx, RangeQuery{
			Collection: collectionOrders, TimeField: "createdAt",
			Range: s.allTime(), Kind: KindCount,
			Extra: []entity.Filter{entity.Eq("status", "pending")},
		})
		snap.Orders.Pending = res.Count
		return err
	})
	g.Go(func() error {
		res, err := s.agg.Aggregate(gctx, RangeQuery{
			Collection: collectionOrders, TimeField: "createdAt",
			Range: s.allTime(), Kind: KindSum, SumField: "total",
			Extra: []entity.Filter{entity.In("status", fulfilledStatuses...)},
		})
		snap.Orders.Revenue = res.Sum
		return err
	})
	g.Go(func() error {
		res, err := s.agg.Aggregate(gctx, RangeQuery{
			Collection: collectionMedia, TimeField: "createdAt",
			Range: s.allTime(), Kind: KindCount,
			Extra: []entity.Filter{entity.Eq("relatedType", galleryRelation)},
		})
		snap.GalleryCount = res.Count
		return err
	})
	g.Go(func() error {
		res, err := s.agg.Aggregate(gctx, RangeQuery{
			Collection: collectionUsers, TimeField: "createdAt",
			Range: s.allTime(), Kind: KindCount,
		})
		snap.TotalUsers = res.Count
		return err
	})
	g.Go(func() error {
		res, err := s.agg.Aggregate(gctx, RangeQuery{
			Collection: collectionReviews, TimeField: "createdAt",
			Range: s.allTime(), Kind: KindCount,
			Extra: []entity.Filter{entity.Eq("status", "pending")},
		})
		snap.PendingReviews = res.Count
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Default().ErrorContext(ctx, "dashboard snapshot degraded to zeros",
			slog.String("err", err.Error()),
		)
		return &entity.DashboardSnapshot{
			CurrencyCode: code,
			Orders:       entity.OrdersSummary{Revenue: decimal.Zero},
			Activity:     []entity.ActivityItem{},
		}
	}

	snap.Activity = s.RecentActivity(ctx, dashboardActivityLimit)
	return snap
}

// periodTotals is one reporting window's raw counters before comparison.
type periodTotals struct {
	orders          AggregateResult
	newUsers        int
	productsUpdated int
	galleryUploads  int
}

func (s *Service) GetAnalyticsSnapshot(ctx context.Context, period entity.Period) *entity.AnalyticsSnapshot {
	bounds := ResolvePeriod(period, s.now())
	code := s.currency.Resolve(ctx)

	var cur, prev periodTotals
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range []struct {
		r entity.DateRange
		t *periodTotals
	}{
		{bounds.Current, &cur},
		{bounds.Previous, &prev},
	} {
		r, t := w.r, w.t
		g.Go(func() error {
			res, err := s.agg.Aggregate(gctx, RangeQuery{
				Collection: collectionOrders, TimeField: "createdAt",
				Range: r, Kind: KindCountSum, SumField: "total",
			})
			t.orders = res
			return err
		})
		g.Go(func() error {
			res, err := s.agg.Aggregate(gctx, RangeQuery{
				Collection: collectionUsers, TimeField: "createdAt",
				Range: r, Kind: KindCount,
			})
			t.newUsers = res.Count
			return err
		})
		g.Go(func() error {
			res, err := s.agg.Aggregate(gctx, RangeQuery{
				Collection: collectionProducts, TimeField: "updatedAt",
				FallbackTimeField: "createdAt",
				Range:             r, Kind: KindCount,
			})
			t.productsUpdated = res.Count
			return err
		})
		g.Go(func() error {
			res, err := s.agg.Aggregate(gctx, RangeQuery{
				Collection: collectionMedia, TimeField: "createdAt",
				Range: r, Kind: KindCount,
				Extra: []entity.Filter{entity.Eq("relatedType", galleryRelation)},
			})
			t.galleryUploads = res.Count
			return err
		})
	}

	if err := g.Wait(); err != nil {
		slog.Default().ErrorContext(ctx, "analytics snapshot degraded to zeros",
			slog.String("period", string(period)),
			slog.String("err", err.Error()),
		)
		cur, prev = periodTotals{}, periodTotals{}
	}

	return &entity.AnalyticsSnapshot{
		Period:       period,
		CurrencyCode: code,
		Metrics:      buildMetrics(cur, prev),
		Activity:     s.RecentActivity(ctx, s.activityLimit),
	}
}

func buildMetrics(cur, prev periodTotals) []entity.AnalyticsMetric {
	metric := func(key string, format entity.MetricFormat, c, p decimal.Decimal) entity.AnalyticsMetric {
		return entity.AnalyticsMetric{
			Key:              key,
			Format:           format,
			CurrentValue:     c,
			PreviousValue:    p,
			ChangePercentage: ChangePercentage(c, p),
		}
	}
	avg := func(t periodTotals) decimal.Decimal {
		if t.orders.Count == 0 {
			return decimal.Zero
		}
		return t.orders.Sum.Div(decimal.NewFromInt(int64(t.orders.Count))).Round(2)
	}
	fromInt := func(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

	return []entity.AnalyticsMetric{
		metric("totalOrders", entity.FormatNumber, fromInt(cur.orders.Count), fromInt(prev.orders.Count)),
		metric("revenue", entity.FormatCurrency, cur.orders.Sum.Round(2), prev.orders.Sum.Round(2)),
		metric("averageOrder", entity.FormatCurrency, avg(cur), avg(prev)),
		metric("newUsers", entity.FormatNumber, fromInt(cur.newUsers), fromInt(prev.newUsers)),
		metric("productsUpdated", entity.FormatNumber, fromInt(cur.productsUpdated), fromInt(prev.productsUpdated)),
		metric("galleryUploads", entity.FormatNumber, fromInt(cur.galleryUploads), fromInt(prev.galleryUploads)),
	}
}

// scanRange fetches a collection and keeps records matching the extra filters
// whose timestamp under timeField falls inside r.
func (s *Service) scanRange(ctx context.Context, collection, timeField string, r entity.DateRange, extra ...entity.Filter) ([]entity.Record, error) {
	var pre []entity.Filter
	for _, f := range extra {
		if f.Op == entity.OpEq {
			pre = append(pre, f)
		}
	}
	records, err := s.db.Scan(ctx, collection, pre...)
	if err != nil {
		records, err = s.db.Scan(ctx, collection)
		if err != nil {
			return nil, err
		}
	}
	out := records[:0]
	for _, rec := range records {
		if !entity.MatchAll(rec, extra) {
			continue
		}
		ts, ok := rec.Time(timeField)
		if !ok || !r.Contains(ts) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Service) GetRevenueTrend(ctx context.Context, period entity.Period) []entity.TrendPoint {
	bounds := ResolvePeriod(period, s.now())
	if bounds.Current.IsEmpty() {
		return []entity.TrendPoint{}
	}

	records, err := s.scanRange(ctx, collectionOrders, "createdAt", bounds.Current,
		entity.In("status", fulfilledStatuses...))
	if err != nil {
		slog.Default().ErrorContext(ctx, "revenue trend degraded to empty",
			slog.String("period", string(period)),
			slog.String("err", err.Error()),
		)
		return []entity.TrendPoint{}
	}

	revenue := make([]RevenueRecord, 0, len(records))
	for _, rec := range records {
		ts, _ := rec.Time("createdAt")
		revenue = append(revenue, RevenueRecord{
			Timestamp: ts,
			Amount:    rec.Num("total"),
			Cost:      rec.Num("cost"),
			HasCost:   rec.Has("cost"),
		})
	}
	return BuildTrend(period, revenue, s.costRatio)
}

func isFulfilled(status string) bool {
	for _, s := range fulfilledStatuses {
		if strings.EqualFold(status, s) {
			return true
		}
	}
	return false
}

func (s *Service) GetGeographicData(ctx context.Context, period entity.Period) []entity.GeoDataPoint {
	bounds := ResolvePeriod(period, s.now())
	rng := bounds.Current

	orders, err := s.db.Scan(ctx, collectionOrders)
	if err != nil {
		slog.Default().ErrorContext(ctx, "geographic data degraded to empty",
			slog.String("err", err.Error()),
		)
		return []entity.GeoDataPoint{}
	}
	quotes, err := s.db.Scan(ctx, collectionQuotes)
	if err != nil {
		slog.Default().WarnContext(ctx, "quotes unavailable, counting orders as interest",
			slog.String("err", err.Error()),
		)
		quotes = nil
	}
	// With no quote records at all, each order stands in for its own quote so
	// the interest column is never uniformly zero on transacting stores.
	hasQuotes := len(quotes) > 0

	points := map[string]*entity.GeoDataPoint{}
	point := func(code string) *entity.GeoDataPoint {
		p, ok := points[code]
		if !ok {
			p = &entity.GeoDataPoint{
				Country:     CountryNameOf(code),
				CountryCode: code,
				Region:      RegionOf(code),
				Revenue:     decimal.Zero,
			}
			points[code] = p
		}
		return p
	}

	for _, rec := range quotes {
		ts, ok := rec.Time("createdAt")
		if !ok || !rng.Contains(ts) {
			continue
		}
		code := ExtractCountryCode(rec)
		if code == "" {
			continue
		}
		point(code).Quotes++
	}
	for _, rec := range orders {
		ts, ok := rec.Time("createdAt")
		if !ok || !rng.Contains(ts) {
			continue
		}
		code := ExtractCountryCode(rec)
		if code == "" {
			continue
		}
		p := point(code)
		if !hasQuotes {
			p.Quotes++
		}
		if isFulfilled(rec.Str("status")) {
			p.Conversions++
			p.Revenue = p.Revenue.Add(rec.Num("total"))
		}
	}

	out := make([]entity.GeoDataPoint, 0, len(points))
	for _, p := range points {
		p.Revenue = p.Revenue.Round(2)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quotes != out[j].Quotes {
			return out[i].Quotes > out[j].Quotes
		}
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	return out
}

func (s *Service) GetTopProducts(ctx context.Context, period entity.Period, limit int) []entity.TopProduct {
	if limit <= 0 {
		limit = defaultTopProducts
	}
	bounds := ResolvePeriod(period, s.now())
	if bounds.Current.IsEmpty() {
		return []entity.TopProduct{}
	}

	orders, err := s.scanRange(ctx, collectionOrders, "createdAt", bounds.Current,
		entity.In("status", fulfilledStatuses...))
	if err != nil {
		slog.Default().ErrorContext(ctx, "top products degraded to empty",
			slog.String("err", err.Error()),
		)
		return []entity.TopProduct{}
	}

	totals := map[string]*entity.TopProduct{}
	for _, order := range orders {
		items, ok := order["items"].([]any)
		if !ok {
			continue
		}
		for _, raw := range items {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			item := entity.Record(m)
			name := item.Str("name", "title")
			key := item.Str("productId", "id")
			if key == "" {
				key = name
			}
			if key == "" {
				continue
			}
			qty := item.Int("quantity")
			if qty <= 0 {
				qty = 1
			}
			line := item.Num("total")
			if !item.Has("total") {
				line = item.Num("price").Mul(decimal.NewFromInt(int64(qty)))
			}

			p, ok := totals[key]
			if !ok {
				p = &entity.TopProduct{ProductId: item.Str("productId", "id"), Name: name, Revenue: decimal.Zero}
				totals[key] = p
			}
			if p.Name == "" {
				p.Name = name
			}
			p.Units += qty
			p.Revenue = p.Revenue.Add(line)
		}
	}

	out := make([]entity.TopProduct, 0, len(totals))
	for _, p := range totals {
		p.Revenue = p.Revenue.Round(2)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
