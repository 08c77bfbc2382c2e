package dependency

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/vitralis/atelier-manager/internal/entity"
)

var (
	// ErrUnsupported marks a server-side aggregate the store cannot run for
	// the given filter shape. Callers recover by scanning client-side.
	ErrUnsupported = errors.New("aggregate capability unsupported")

	ErrNotFound = errors.New("record not found")
)

type (
	// Records is the record store capability the engine is built against.
	// Every record is a loosely typed document; a collection that does not
	// exist reads as empty, not as an error.
	Records interface {
		// Count returns a server-side exact count of matching records.
		Count(ctx context.Context, collection string, filters []entity.Filter) (int, error)
		// SumField returns a server-side sum of a numeric field over matching records.
		SumField(ctx context.Context, collection, field string, filters []entity.Filter) (decimal.Decimal, error)
		// Scan fetches matching records for client-side computation.
		Scan(ctx context.Context, collection string, filters ...entity.Filter) ([]entity.Record, error)
		// Recent fetches up to limit records ordered descending by timeField.
		Recent(ctx context.Context, collection, timeField string, limit int) ([]entity.Record, error)
		// Get fetches a single record by id, ErrNotFound when absent.
		Get(ctx context.Context, collection, id string) (entity.Record, error)
		// Insert stores a document, generating an id when none is given.
		Insert(ctx context.Context, collection, id string, doc entity.Record) (string, error)
		Close()
	}

	Settings interface {
		DisplayCurrency(ctx context.Context) (string, error)
		SetDisplayCurrency(ctx context.Context, code string) error
	}

	// Analytics produces the dashboard read models. All methods have a total
	// contract: on orchestration failure they return documented defaults and
	// log, they never propagate.
	Analytics interface {
		GetDashboardSnapshot(ctx context.Context) *entity.DashboardSnapshot
		GetAnalyticsSnapshot(ctx context.Context, period entity.Period) *entity.AnalyticsSnapshot
		GetRevenueTrend(ctx context.Context, period entity.Period) []entity.TrendPoint
		GetGeographicData(ctx context.Context, period entity.Period) []entity.GeoDataPoint
		GetTopProducts(ctx context.Context, period entity.Period, limit int) []entity.TopProduct
	}
)
