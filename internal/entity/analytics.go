package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is a named reporting window used for period-over-period comparison.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r DateRange) IsEmpty() bool {
	return !r.Start.Before(r.End)
}

// PeriodBounds holds the current range and the range immediately preceding it.
type PeriodBounds struct {
	Current  DateRange
	Previous DateRange
}

type MetricFormat string

const (
	FormatNumber   MetricFormat = "number"
	FormatCurrency MetricFormat = "currency"
)

// AnalyticsMetric is one dashboard figure with its comparison value.
// ChangePercentage is nil exactly when the previous value is zero and the
// current one is not (growth from zero has no defined percentage).
type AnalyticsMetric struct {
	Key              string          `json:"key"`
	Format           MetricFormat    `json:"format"`
	CurrentValue     decimal.Decimal `json:"currentValue"`
	PreviousValue    decimal.Decimal `json:"previousValue"`
	ChangePercentage *float64        `json:"changePercentage"`
}

type Region string

const (
	RegionLATAM Region = "LATAM"
	RegionEU    Region = "EU"
	RegionAPAC  Region = "APAC"
	RegionNA    Region = "NA"
	RegionMENA  Region = "MENA"
	RegionOther Region = "OTHER"
)

// GeoDataPoint aggregates interest and transactional activity per country,
// keyed by the uppercase ISO-3166-1 alpha-2 code.
type GeoDataPoint struct {
	Country     string          `json:"country"`
	CountryCode string          `json:"countryCode"`
	Region      Region          `json:"region"`
	Quotes      int             `json:"quotes"`
	Conversions int             `json:"conversions"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type ActivityType string

const (
	ActivityOrder   ActivityType = "order"
	ActivityProduct ActivityType = "product"
	ActivityGallery ActivityType = "gallery"
	ActivityUser    ActivityType = "user"
)

// ActivityItem is an ephemeral feed entry derived fresh from a source record.
type ActivityItem struct {
	Id          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
	EntityId    string       `json:"entityId"`
}

// TrendPoint is one chronological revenue bucket. Profit is an estimate:
// revenue minus recorded cost, with cost defaulting to a configured share of
// revenue when the record carries none.
type TrendPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
	Profit  decimal.Decimal `json:"profit"`
}

type OrdersSummary struct {
	Total   int             `json:"total"`
	Pending int             `json:"pending"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardSnapshot is the point-in-time read model for the admin landing page.
type DashboardSnapshot struct {
	CurrencyCode   string         `json:"currencyCode"`
	TotalProducts  int            `json:"totalProducts"`
	Orders         OrdersSummary  `json:"orders"`
	GalleryCount   int            `json:"galleryCount"`
	TotalUsers     int            `json:"totalUsers"`
	PendingReviews int            `json:"pendingReviews"`
	Activity       []ActivityItem `json:"activity"`
}

// AnalyticsSnapshot is the period read model: comparison metrics plus the
// shared recent-activity feed.
type AnalyticsSnapshot struct {
	Period       Period            `json:"period"`
	CurrencyCode string            `json:"currencyCode"`
	Metrics      []AnalyticsMetric `json:"metrics"`
	Activity     []ActivityItem    `json:"activity"`
}

type TopProduct struct {
	ProductId string          `json:"productId"`
	Name      string          `json:"name"`
	Revenue   decimal.Decimal `json:"revenue"`
	Units     int             `json:"units"`
}
