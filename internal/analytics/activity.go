package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vitralis/atelier-manager/internal/entity"
)

var titleCaser = cases.Title(language.English)

// activitySource describes one record kind feeding the merged feed: where to
// fetch it, which timestamp orders it (with a simpler fallback field when the
// primary query fails), and how to phrase a record for humans.
type activitySource struct {
	collection    string
	kind          entity.ActivityType
	primaryField  string
	fallbackField string
	describe      func(p *message.Printer, currency string, rec entity.Record) string
}

func activitySources() []activitySource {
	return []activitySource{
		{
			collection:    collectionOrders,
			kind:          entity.ActivityOrder,
			primaryField:  "createdAt",
			fallbackField: "updatedAt",
			describe: func(p *message.Printer, currency string, rec entity.Record) string {
				number := rec.Str("orderNumber", "number")
				if number == "" {
					number = rec.ID()
				}
				status := titleCaser.String(strings.ToLower(rec.Str("status")))
				if status == "" {
					status = "Placed"
				}
				amount, _ := rec.Num("total").Round(2).Float64()
				return fmt.Sprintf("Order %s · %s · %s", number, status, p.Sprintf("%s %.2f", currency, amount))
			},
		},
		{
			collection:    collectionProducts,
			kind:          entity.ActivityProduct,
			primaryField:  "updatedAt",
			fallbackField: "createdAt",
			describe: func(_ *message.Printer, _ string, rec entity.Record) string {
				name := rec.Str("name", "title")
				if name == "" {
					name = "Product"
				}
				if spec := rec.Str("thickness", "thicknessSpec"); spec != "" {
					return fmt.Sprintf("%s (%s) updated", name, spec)
				}
				return fmt.Sprintf("%s updated", name)
			},
		},
		{
			collection:    collectionMedia,
			kind:          entity.ActivityGallery,
			primaryField:  "createdAt",
			fallbackField: "uploadedAt",
			describe: func(_ *message.Printer, _ string, rec entity.Record) string {
				if text := rec.Str("alt", "caption"); text != "" {
					return text
				}
				return "New gallery image"
			},
		},
		{
			collection:    collectionUsers,
			kind:          entity.ActivityUser,
			primaryField:  "createdAt",
			fallbackField: "registeredAt",
			describe: func(_ *message.Printer, _ string, rec entity.Record) string {
				if who := rec.Str("name", "displayName", "email"); who != "" {
					return who
				}
				return "New user"
			},
		},
	}
}

// RecentActivity merges the most recent records of all four kinds into one
// feed, sorted by timestamp descending and capped at limit. Each kind is
// fetched independently; one failing source never blocks the other three.
func (s *Service) RecentActivity(ctx context.Context, limit int) []entity.ActivityItem {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	currency := s.currency.Resolve(ctx)
	printer := message.NewPrinter(language.English)

	sources := activitySources()
	parts := make([][]entity.ActivityItem, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src activitySource) {
			defer wg.Done()
			parts[i] = s.fetchActivity(ctx, src, printer, currency, limit)
		}(i, src)
	}
	wg.Wait()

	var merged []entity.ActivityItem
	for _, part := range parts {
		merged = append(merged, part...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func (s *Service) fetchActivity(ctx context.Context, src activitySource, printer *message.Printer, currency string, limit int) []entity.ActivityItem {
	records, err := s.db.Recent(ctx, src.collection, src.primaryField, limit)
	if err != nil {
		records, err = s.db.Recent(ctx, src.collection, src.fallbackField, limit)
	}
	if err != nil {
		slog.Default().WarnContext(ctx, "activity source unavailable",
			slog.String("collection", src.collection),
			slog.String("err", err.Error()),
		)
		return nil
	}

	items := make([]entity.ActivityItem, 0, len(records))
	for _, rec := range records {
		if src.kind == entity.ActivityGallery && !isGalleryMedia(rec) {
			continue
		}
		ts, ok := rec.Time(src.primaryField, src.fallbackField, "createdAt")
		if !ok {
			ts = time.Time{}
		}
		id := rec.ID()
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, entity.ActivityItem{
			Id:          id,
			Type:        src.kind,
			Description: src.describe(printer, currency, rec),
			Timestamp:   ts,
			EntityId:    rec.ID(),
		})
	}
	return items
}

func isGalleryMedia(rec entity.Record) bool {
	tag := rec.Str("relatedType", "relation", "type")
	return tag == "" || strings.EqualFold(tag, galleryRelation)
}
