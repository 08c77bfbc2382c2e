package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitralis/atelier-manager/internal/entity"
)

func newTestService(db *fakeRecords, settings *fakeSettings) *Service {
	svc := New(Config{}, db, settings)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestRecentActivity_MergesSortedDescending(t *testing.T) {
	base := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	db := newFakeRecords()
	db.add(collectionOrders, entity.Record{
		"id": "o1", "orderNumber": "A-100", "status": "completed", "total": 42.5,
		"createdAt": base.Add(3 * time.Hour),
	})
	db.add(collectionProducts, entity.Record{
		"id": "p1", "name": "Float Glass", "thickness": "6mm",
		"updatedAt": base.Add(1 * time.Hour),
	})
	db.add(collectionMedia, entity.Record{
		"id": "m1", "relatedType": "gallery", "alt": "Showroom install",
		"createdAt": base.Add(2 * time.Hour),
	})
	db.add(collectionUsers, entity.Record{
		"id": "u1", "email": "ana@example.com",
		"createdAt": base,
	})

	svc := newTestService(db, &fakeSettings{code: "EUR"})
	feed := svc.RecentActivity(context.Background(), 10)

	require.Len(t, feed, 4)
	assert.Equal(t, entity.ActivityOrder, feed[0].Type)
	assert.Equal(t, entity.ActivityGallery, feed[1].Type)
	assert.Equal(t, entity.ActivityProduct, feed[2].Type)
	assert.Equal(t, entity.ActivityUser, feed[3].Type)

	assert.Contains(t, feed[0].Description, "A-100")
	assert.Contains(t, feed[0].Description, "Completed")
	assert.Contains(t, feed[0].Description, "EUR")
	assert.Contains(t, feed[2].Description, "6mm")
	assert.Equal(t, "Showroom install", feed[1].Description)
	assert.Equal(t, "ana@example.com", feed[3].Description)
}

func TestRecentActivity_CapsAtLimit(t *testing.T) {
	base := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	db := newFakeRecords()
	for i := 0; i < 20; i++ {
		db.add(collectionOrders, entity.Record{
			"id": "o", "status": "pending", "total": 1.0,
			"createdAt": base.Add(time.Duration(i) * time.Minute),
		})
	}

	svc := newTestService(db, &fakeSettings{code: "USD"})
	feed := svc.RecentActivity(context.Background(), 5)
	assert.Len(t, feed, 5)
}

func TestRecentActivity_OneSourceFailingDoesNotBlockOthers(t *testing.T) {
	base := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	db := newFakeRecords()
	db.add(collectionUsers, entity.Record{"id": "u1", "name": "Leo", "createdAt": base})
	db.recentErr[collectionOrders] = errors.New("index missing")

	svc := newTestService(db, &fakeSettings{code: "USD"})
	feed := svc.RecentActivity(context.Background(), 10)

	require.Len(t, feed, 1)
	assert.Equal(t, entity.ActivityUser, feed[0].Type)
}

func TestRecentActivity_FiltersNonGalleryMedia(t *testing.T) {
	base := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	db := newFakeRecords()
	db.add(collectionMedia,
		entity.Record{"id": "m1", "relatedType": "gallery", "createdAt": base},
		entity.Record{"id": "m2", "relatedType": "product", "createdAt": base.Add(time.Minute)},
		entity.Record{"id": "m3", "createdAt": base.Add(2 * time.Minute)}, // untagged counts as gallery
	)

	svc := newTestService(db, &fakeSettings{code: "USD"})
	feed := svc.RecentActivity(context.Background(), 10)

	require.Len(t, feed, 2)
	ids := []string{feed[0].Id, feed[1].Id}
	assert.ElementsMatch(t, []string{"m1", "m3"}, ids)
}
