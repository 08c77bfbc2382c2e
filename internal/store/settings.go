package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitralis/atelier-manager/internal/dependency"
	"github.com/vitralis/atelier-manager/internal/entity"
)

const (
	settingsCollection = "settings"
	settingsDocId      = "general"
)

type settingsStore struct {
	*MYSQLStore
}

// Settings returns an object implementing the Settings interface
func (ms *MYSQLStore) Settings() dependency.Settings {
	return &settingsStore{
		MYSQLStore: ms,
	}
}

func (ms *MYSQLStore) DisplayCurrency(ctx context.Context) (string, error) {
	rec, err := ms.Get(ctx, settingsCollection, settingsDocId)
	if err != nil {
		if errors.Is(err, dependency.ErrNotFound) {
			return "", fmt.Errorf("settings document missing: %w", err)
		}
		return "", fmt.Errorf("failed to read settings: %w", err)
	}
	code := strings.ToUpper(strings.TrimSpace(rec.Str("currencyCode", "currency")))
	if code == "" {
		return "", fmt.Errorf("settings document has no currency code")
	}
	return code, nil
}

func (ms *MYSQLStore) SetDisplayCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fmt.Errorf("empty currency code")
	}
	rec, err := ms.Get(ctx, settingsCollection, settingsDocId)
	if err != nil {
		if !errors.Is(err, dependency.ErrNotFound) {
			return fmt.Errorf("failed to read settings: %w", err)
		}
		rec = entity.Record{}
	}
	rec["currencyCode"] = code
	if _, err := ms.Insert(ctx, settingsCollection, settingsDocId, rec); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
