package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/providers"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

// SettingsAdapter keeps the single app_settings row
type SettingsAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSettingsAdapter creates a new settings adapter
func NewSettingsAdapter(client *postgres.Client) providers.SettingsProvider {
	return &SettingsAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Get returns the stored settings, or empty settings when none were saved
func (a *SettingsAdapter) Get(ctx context.Context) (*entities.Settings, error) {
	query, args, err := a.db.Select("api_url", "livekit_host", "livekit_api_key", "livekit_api_secret").
		From("app_settings").
		Where(goqu.Ex{"id": 1}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	settings := &entities.Settings{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&settings.APIURL,
		&settings.LiveKitHost,
		&settings.LiveKitAPIKey,
		&settings.LiveKitAPISecret,
	)
	if err == sql.ErrNoRows {
		return &entities.Settings{}, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to load settings", err)
	}
	return settings, nil
}

// Put upserts the settings row
func (a *SettingsAdapter) Put(ctx context.Context, settings *entities.Settings) error {
	record := goqu.Record{
		"api_url":            settings.APIURL,
		"livekit_host":       settings.LiveKitHost,
		"livekit_api_key":    settings.LiveKitAPIKey,
		"livekit_api_secret": settings.LiveKitAPISecret,
	}

	query, args, err := a.db.Insert("app_settings").
		Rows(goqu.Record{
			"id":                 1,
			"api_url":            settings.APIURL,
			"livekit_host":       settings.LiveKitHost,
			"livekit_api_key":    settings.LiveKitAPIKey,
			"livekit_api_secret": settings.LiveKitAPISecret,
		}).
		OnConflict(goqu.DoUpdate("id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStoreUnavailableError("failed to save settings", err)
	}
	return nil
}
