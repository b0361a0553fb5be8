package providers

import (
	"context"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
)

// SettingsProvider stores the single application settings document
type SettingsProvider interface {
	// Get returns the stored settings, or an empty document when none was saved
	Get(ctx context.Context) (*entities.Settings, error)

	// Put replaces the stored settings
	Put(ctx context.Context, settings *entities.Settings) error
}
