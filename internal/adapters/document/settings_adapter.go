package document

import (
	"context"
	"errors"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/providers"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsAdapter keeps the single settings document of the settings collection
type SettingsAdapter struct {
	coll *mongo.Collection
}

// NewSettingsAdapter creates a new settings adapter
func NewSettingsAdapter(coll *mongo.Collection) providers.SettingsProvider {
	return &SettingsAdapter{coll: coll}
}

// Get returns the stored settings, or empty settings when none were saved
func (a *SettingsAdapter) Get(ctx context.Context) (*entities.Settings, error) {
	var settings entities.Settings
	err := a.coll.FindOne(ctx, bson.D{}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &entities.Settings{}, nil
	}
	if err != nil {
		return nil, storeError("failed to load settings", err)
	}
	return &settings, nil
}

// Put upserts the settings document
func (a *SettingsAdapter) Put(ctx context.Context, settings *entities.Settings) error {
	_, err := a.coll.UpdateOne(ctx,
		bson.D{},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "apiUrl", Value: settings.APIURL},
			{Key: "livekit_host", Value: settings.LiveKitHost},
			{Key: "livekit_api_key", Value: settings.LiveKitAPIKey},
			{Key: "livekit_api_secret", Value: settings.LiveKitAPISecret},
		}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return storeError("failed to save settings", err)
	}
	return nil
}
