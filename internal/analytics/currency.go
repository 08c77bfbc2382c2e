package analytics

import (
	"context"
	"strings"
	"sync"

	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/vitralis/atelier-manager/internal/dependency"
)

// DefaultCurrency is returned whenever the settings lookup fails.
const DefaultCurrency = "USD"

// CurrencyResolver caches the display currency for the process lifetime.
// Concurrent first callers share one settings fetch; a failed fetch hands
// every waiter the default without poisoning later attempts.
type CurrencyResolver struct {
	settings dependency.Settings
	group    singleflight.Group

	mu   sync.RWMutex
	code string
}

func NewCurrencyResolver(settings dependency.Settings) *CurrencyResolver {
	return &CurrencyResolver{settings: settings}
}

func (c *CurrencyResolver) Resolve(ctx context.Context) string {
	c.mu.RLock()
	code := c.code
	c.mu.RUnlock()
	if code != "" {
		return code
	}

	v, err, _ := c.group.Do("display-currency", func() (any, error) {
		code, err := c.settings.DisplayCurrency(ctx)
		if err != nil {
			return nil, err
		}
		code = strings.ToUpper(strings.TrimSpace(code))
		c.mu.Lock()
		c.code = code
		c.mu.Unlock()
		return code, nil
	})
	if err != nil {
		slog.Default().WarnContext(ctx, "currency lookup failed, using default",
			slog.String("default", DefaultCurrency),
			slog.String("err", err.Error()),
		)
		return DefaultCurrency
	}
	return v.(string)
}

// Reset drops the cached value so the next Resolve fetches again.
func (c *CurrencyResolver) Reset() {
	c.mu.Lock()
	c.code = ""
	c.mu.Unlock()
}
