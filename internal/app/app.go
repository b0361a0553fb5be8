// Package app assembles the stores, engine and services shared by the API server and the
// backoffice CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/collectionsdesk/internal/adapters/cache"
	"github.com/zatekoja/collectionsdesk/internal/adapters/database"
	"github.com/zatekoja/collectionsdesk/internal/adapters/document"
	appservices "github.com/zatekoja/collectionsdesk/internal/application/services"
	"github.com/zatekoja/collectionsdesk/internal/domain/providers"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/mongo"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/redis"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	queryservices "github.com/zatekoja/collectionsdesk/internal/query/services"
	"github.com/zatekoja/collectionsdesk/pkg/config"
	"github.com/zatekoja/collectionsdesk/pkg/secrets"
)

const cacheKeyPrefix = "collectionsdesk:"

// App holds the wired services
type App struct {
	Engine       *queryservices.InteractionQueryService
	Customers    *appservices.CustomerService
	Settings     *appservices.SettingsService
	LiveSessions *appservices.LiveSessionService

	closers []func(context.Context) error
}

// stores is the storage side of one backend
type stores struct {
	customers repositories.CustomerRepository
	executor  repositories.InteractionJoinExecutor
	settings  providers.SettingsProvider
}

// New connects to the configured backend and builds the services on top of it
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*App, error) {
	a := &App{}

	var (
		s   *stores
		err error
	)
	switch cfg.Engine.StoreBackend {
	case config.StoreBackendPostgres:
		s, err = a.openPostgres(ctx, cfg, metrics)
	default:
		s, err = a.openMongo(ctx, cfg, metrics)
	}
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}

	settings := s.settings
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			// settings reads still work uncached
			log.Warn().Err(err).Msg("Redis unavailable, settings served without cache")
		} else {
			a.closers = append(a.closers, func(context.Context) error { return redisClient.Close() })
			settings = cache.NewCachedSettingsAdapter(settings, cache.NewRedisAdapter(redisClient, cacheKeyPrefix), metrics)
			log.Info().Msg("Settings provider wrapped with Redis cache")
		}
	}

	a.Engine = queryservices.NewInteractionQueryService(s.customers, s.executor, cfg.Engine.QueryTimeout, metrics)
	a.Customers = appservices.NewCustomerService(s.customers, s.executor)
	var cipher appservices.SecretCipher
	if cfg.LiveSession.SecretKey != "" {
		c, err := secrets.NewCipher(cfg.LiveSession.SecretKey)
		if err != nil {
			a.Close(context.Background())
			return nil, fmt.Errorf("invalid SETTINGS_ENCRYPTION_KEY: %w", err)
		}
		cipher = c
	} else {
		log.Warn().Msg("SETTINGS_ENCRYPTION_KEY not set, live session secret cannot be stored or used")
	}

	a.Settings = appservices.NewSettingsService(settings, cipher)
	a.LiveSessions = appservices.NewLiveSessionService(a.Settings, cfg.LiveSession.TokenTTL)

	return a, nil
}

func (a *App) openMongo(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*stores, error) {
	client, err := mongo.NewClient(ctx, &cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	customers := document.NewCustomerAdapter(client.Customers(), metrics)

	var executor repositories.InteractionJoinExecutor
	switch cfg.Engine.JoinStrategy {
	case config.JoinStrategyInProcess:
		executor = queryservices.NewInProcessJoinExecutor(
			document.NewInteractionLogAdapter(client.Interactions(), metrics),
			customers,
			metrics,
		)
	default:
		executor = document.NewPipelineJoinExecutor(client.Interactions(), cfg.Mongo.CustomersCollection, metrics)
	}

	log.Info().
		Str("database", cfg.Mongo.Database).
		Str("join_strategy", cfg.Engine.JoinStrategy).
		Msg("Document store ready")

	return &stores{
		customers: customers,
		executor:  executor,
		settings:  document.NewSettingsAdapter(client.Settings()),
	}, nil
}

func (a *App) openPostgres(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*stores, error) {
	client, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })

	if err := database.ApplySchema(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	if cfg.Engine.JoinStrategy != config.JoinStrategyPipeline {
		log.Info().Str("join_strategy", cfg.Engine.JoinStrategy).Msg("Join strategy ignored, relational store always joins in SQL")
	}

	return &stores{
		customers: database.NewCustomerAdapter(client),
		executor:  database.NewInteractionAdapter(client, metrics),
		settings:  database.NewSettingsAdapter(client),
	}, nil
}

// Close releases every connection opened by New, newest first
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
