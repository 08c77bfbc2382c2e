package analytics

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vitralis/atelier-manager/internal/dependency"
	"github.com/vitralis/atelier-manager/internal/entity"
)

// fakeRecords is an in-memory Records with per-collection error injection,
// shared by the aggregator and service tests.
type fakeRecords struct {
	mu        sync.Mutex
	data      map[string][]entity.Record
	countErr  map[string]error
	sumErr    map[string]error
	scanErr   map[string]error
	recentErr map[string]error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		data:      map[string][]entity.Record{},
		countErr:  map[string]error{},
		sumErr:    map[string]error{},
		scanErr:   map[string]error{},
		recentErr: map[string]error{},
	}
}

func (f *fakeRecords) add(collection string, recs ...entity.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[collection] = append(f.data[collection], recs...)
}

func (f *fakeRecords) Count(_ context.Context, collection string, filters []entity.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.countErr[collection]; err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range f.data[collection] {
		if entity.MatchAll(rec, filters) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRecords) SumField(_ context.Context, collection, field string, filters []entity.Filter) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sumErr[collection]; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, rec := range f.data[collection] {
		if entity.MatchAll(rec, filters) {
			sum = sum.Add(rec.Num(field))
		}
	}
	return sum, nil
}

func (f *fakeRecords) Scan(_ context.Context, collection string, filters ...entity.Filter) ([]entity.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.scanErr[collection]; err != nil {
		return nil, err
	}
	var out []entity.Record
	for _, rec := range f.data[collection] {
		if entity.MatchAll(rec, filters) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRecords) Recent(_ context.Context, collection, timeField string, limit int) ([]entity.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.recentErr[collection]; err != nil {
		return nil, err
	}
	var out []entity.Record
	for _, rec := range f.data[collection] {
		if _, ok := rec.Time(timeField); ok {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i].Time(timeField)
		tj, _ := out[j].Time(timeField)
		return ti.After(tj)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecords) Get(_ context.Context, collection, id string) (entity.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.data[collection] {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, dependency.ErrNotFound
}

func (f *fakeRecords) Insert(_ context.Context, collection, id string, doc entity.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[collection] = append(f.data[collection], doc)
	return id, nil
}

func (f *fakeRecords) Close() {}

type fakeSettings struct {
	mu    sync.Mutex
	code  string
	err   error
	calls int
}

func (f *fakeSettings) DisplayCurrency(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.code, nil
}

func (f *fakeSettings) SetDisplayCurrency(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code = code
	return nil
}

func (f *fakeSettings) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
