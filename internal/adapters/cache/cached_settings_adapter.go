package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/providers"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
)

const (
	settingsCacheKey = "settings"
	settingsTTL      = 300 // 5 minutes
)

// CachedSettingsAdapter wraps a SettingsProvider with a read-through cache
type CachedSettingsAdapter struct {
	adapter providers.SettingsProvider
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedSettingsAdapter creates a new cached settings adapter
func NewCachedSettingsAdapter(adapter providers.SettingsProvider, cache providers.CacheProvider, metrics *observability.Metrics) providers.SettingsProvider {
	return &CachedSettingsAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// Get returns settings from cache, falling back to the store
func (a *CachedSettingsAdapter) Get(ctx context.Context) (*entities.Settings, error) {
	logger := observability.LoggerFromContext(ctx)

	cached, err := a.cache.Get(ctx, settingsCacheKey)
	if err == nil {
		var settings entities.Settings
		if err := json.Unmarshal(cached, &settings); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, settingsCacheKey)
			return &settings, nil
		}
		logger.Warn().Err(err).Msg("Discarding undecodable cached settings")
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		logger.Warn().Err(err).Msg("Settings cache unavailable")
	}
	observability.RecordCacheMiss(ctx, a.metrics, settingsCacheKey)

	settings, err := a.adapter.Get(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(settings); err == nil {
		if err := a.cache.Set(ctx, settingsCacheKey, data, settingsTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache settings")
		}
	}
	return settings, nil
}

// Put writes through to the store and invalidates the cached copy
func (a *CachedSettingsAdapter) Put(ctx context.Context, settings *entities.Settings) error {
	if err := a.adapter.Put(ctx, settings); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, settingsCacheKey); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to invalidate cached settings")
	}
	return nil
}
