package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitralis/atelier-manager/internal/dependency"
	"github.com/vitralis/atelier-manager/internal/entity"
)

func newTestDB(t *testing.T) *MYSQLStore {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}
	db, err := New(context.Background(), Config{
		DSN:         dsn,
		Automigrate: true,
	})
	require.NoError(t, err)

	_, err = db.db.ExecContext(context.Background(), "DELETE FROM document")
	require.NoError(t, err)

	return db
}

func TestRecords_CountSumScan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	orders := []entity.Record{
		{"status": "completed", "total": 100, "createdAt": now.Format(time.RFC3339)},
		{"status": "pending", "total": 50, "createdAt": now.Add(time.Hour).Format(time.RFC3339)},
		{"status": "completed", "total": 25.5, "createdAt": now.Add(-48 * time.Hour).Format(time.RFC3339)},
	}
	for _, o := range orders {
		_, err := db.Insert(ctx, "orders", "", o)
		require.NoError(t, err)
	}

	rng := entity.DateRange{Start: now.Add(-time.Hour), End: now.Add(2 * time.Hour)}
	filters := append([]entity.Filter{entity.Eq("status", "completed")}, entity.RangeFilters("createdAt", rng)...)

	cnt, err := db.Count(ctx, "orders", filters)
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)

	sum, err := db.SumField(ctx, "orders", "total", filters)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(100)), sum.String())

	recs, err := db.Scan(ctx, "orders", entity.Eq("status", "completed"))
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	// an absent collection reads as empty, not as an error
	recs, err = db.Scan(ctx, "quotes")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecords_RecentAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := db.Insert(ctx, "products", "", entity.Record{
			"name":      "vase",
			"updatedAt": base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
		require.NoError(t, err)
	}

	recs, err := db.Recent(ctx, "products", "updatedAt", 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	first, _ := recs[0].Time("updatedAt")
	last, _ := recs[2].Time("updatedAt")
	assert.True(t, first.After(last))

	id, err := db.Insert(ctx, "users", "", entity.Record{"email": "anna@example.com"})
	require.NoError(t, err)
	rec, err := db.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", rec.Str("email"))

	_, err = db.Get(ctx, "users", "nope")
	assert.ErrorIs(t, err, dependency.ErrNotFound)
}

func TestSettings_DisplayCurrency(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.DisplayCurrency(ctx)
	assert.Error(t, err)

	require.NoError(t, db.SetDisplayCurrency(ctx, "eur"))
	code, err := db.DisplayCurrency(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EUR", code)
}

func TestFilterSQL_UnsupportedShapes(t *testing.T) {
	_, _, err := filterSQL([]entity.Filter{entity.Eq("total; DROP TABLE document", 1)})
	assert.ErrorIs(t, err, dependency.ErrUnsupported)

	_, _, err = filterSQL([]entity.Filter{{Field: "status", Op: entity.FilterOp("like"), Value: "x"}})
	assert.ErrorIs(t, err, dependency.ErrUnsupported)
}
