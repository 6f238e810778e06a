package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iwvelando/rental-quote/internal/tariff"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"go.uber.org/zap"
)

// OverrideStore persists the tariff override mapping as one JSON value.
type OverrideStore struct {
	kv     KV
	logger *zap.Logger
}

// NewOverrideStore wraps kv.
func NewOverrideStore(kv KV, logger *zap.Logger) *OverrideStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverrideStore{kv: kv, logger: logger}
}

// Load returns the persisted overrides. Missing data yields empty overrides.
// Unreadable or malformed data is logged and discarded: the empty mapping is
// returned together with the error so callers can tell the operator.
func (s *OverrideStore) Load(ctx context.Context) (tariff.Overrides, error) {
	raw, found, err := s.kv.Get(ctx, constants.KeyTariffOverrides)
	if err != nil {
		s.logger.Error("failed to read tariff overrides",
			zap.String("op", "store.OverrideStore.Load"),
			zap.Error(err),
		)
		return tariff.Overrides{}, fmt.Errorf("failed to read tariff overrides: %w", err)
	}
	if !found || raw == "" {
		return tariff.Overrides{}, nil
	}

	var overrides tariff.Overrides
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		s.logger.Warn("discarding malformed tariff overrides",
			zap.String("op", "store.OverrideStore.Load"),
			zap.Error(err),
		)
		return tariff.Overrides{}, fmt.Errorf("malformed tariff overrides: %w", err)
	}
	if err := overrides.Validate(); err != nil {
		s.logger.Warn("discarding invalid tariff overrides",
			zap.String("op", "store.OverrideStore.Load"),
			zap.Error(err),
		)
		return tariff.Overrides{}, fmt.Errorf("invalid tariff overrides: %w", err)
	}
	return overrides, nil
}

// Save replaces the persisted mapping with overrides.
func (s *OverrideStore) Save(ctx context.Context, overrides tariff.Overrides) error {
	data, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("failed to encode tariff overrides: %w", err)
	}
	if err := s.kv.Set(ctx, constants.KeyTariffOverrides, string(data)); err != nil {
		s.logger.Error("failed to save tariff overrides",
			zap.String("op", "store.OverrideStore.Save"),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save tariff overrides: %w", err)
	}
	s.logger.Debug("tariff overrides saved",
		zap.String("op", "store.OverrideStore.Save"),
		zap.Bool("summer", overrides.Summer != nil),
		zap.Bool("autumn", overrides.Autumn != nil),
	)
	return nil
}
