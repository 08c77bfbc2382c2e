package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyResolver_CachesFirstResult(t *testing.T) {
	settings := &fakeSettings{code: "eur"}
	resolver := NewCurrencyResolver(settings)

	assert.Equal(t, "EUR", resolver.Resolve(context.Background()))
	assert.Equal(t, "EUR", resolver.Resolve(context.Background()))
	assert.Equal(t, 1, settings.callCount())
}

func TestCurrencyResolver_ConcurrentCallersShareOneFetch(t *testing.T) {
	settings := &fakeSettings{code: "GBP"}
	resolver := NewCurrencyResolver(settings)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = resolver.Resolve(context.Background())
		}(i)
	}
	wg.Wait()

	for _, code := range results {
		assert.Equal(t, "GBP", code)
	}
	// singleflight collapses in-flight callers, later ones hit the cache
	assert.LessOrEqual(t, settings.callCount(), 2)
	require.GreaterOrEqual(t, settings.callCount(), 1)
}

func TestCurrencyResolver_FailureFallsBackWithoutPoisoning(t *testing.T) {
	settings := &fakeSettings{err: errors.New("settings store down")}
	resolver := NewCurrencyResolver(settings)

	assert.Equal(t, DefaultCurrency, resolver.Resolve(context.Background()))
	assert.Equal(t, DefaultCurrency, resolver.Resolve(context.Background()))
	assert.Equal(t, 2, settings.callCount())

	settings.mu.Lock()
	settings.err = nil
	settings.code = "chf"
	settings.mu.Unlock()

	assert.Equal(t, "CHF", resolver.Resolve(context.Background()))
	assert.Equal(t, "CHF", resolver.Resolve(context.Background()))
	assert.Equal(t, 3, settings.callCount())
}

func TestCurrencyResolver_ResetForcesRefetch(t *testing.T) {
	settings := &fakeSettings{code: "USD"}
	resolver := NewCurrencyResolver(settings)

	resolver.Resolve(context.Background())
	resolver.Reset()
	resolver.Resolve(context.Background())
	assert.Equal(t, 2, settings.callCount())
}
