package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/providers"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

// SecretCipher seals the live session secret before it reaches the store
type SecretCipher interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// SettingsService manages the application settings document. The live session secret
// is stored sealed by cipher; without a cipher it can be neither set nor used.
type SettingsService struct {
	provider providers.SettingsProvider
	cipher   SecretCipher
}

// NewSettingsService creates a new settings service. cipher may be nil.
func NewSettingsService(provider providers.SettingsProvider, cipher SecretCipher) *SettingsService {
	return &SettingsService{provider: provider, cipher: cipher}
}

func errNoCipher() error {
	return apperrors.NewNotConfiguredError("settings encryption key is not configured")
}

// Get returns the settings with the secret masked.
func (s *SettingsService) Get(ctx context.Context) (*entities.Settings, error) {
	settings, err := s.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	masked := settings.Masked()
	return &masked, nil
}

// Update stores a client update. A new secret is sealed before it is stored; a
// masked or empty one keeps the stored secret.
func (s *SettingsService) Update(ctx context.Context, update entities.Settings) (*entities.Settings, error) {
	update.APIURL = strings.TrimSpace(update.APIURL)
	update.LiveKitHost = strings.TrimSpace(update.LiveKitHost)
	update.LiveKitAPIKey = strings.TrimSpace(update.LiveKitAPIKey)

	if err := validateURL("apiUrl", update.APIURL, "http", "https"); err != nil {
		return nil, err
	}
	if err := validateURL("livekit_host", update.LiveKitHost, "ws", "wss", "http", "https"); err != nil {
		return nil, err
	}

	if update.SubmitsSecret() {
		if s.cipher == nil {
			return nil, errNoCipher()
		}
		sealed, err := s.cipher.Seal(update.LiveKitAPISecret)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to seal live session secret", err)
		}
		update.LiveKitAPISecret = sealed
	}

	current, err := s.provider.Get(ctx)
	if err != nil {
		return nil, err
	}

	merged := current.MergeUpdate(update)
	if err := s.provider.Put(ctx, &merged); err != nil {
		return nil, err
	}

	masked := merged.Masked()
	return &masked, nil
}

// RequireLiveKit returns the settings with the secret opened, or NOT_CONFIGURED when
// the live session server is not fully configured or its secret cannot be opened.
func (s *SettingsService) RequireLiveKit(ctx context.Context) (*entities.Settings, error) {
	settings, err := s.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.LiveKitConfigured() {
		return nil, apperrors.NewNotConfiguredError("live session server configuration is missing or invalid")
	}
	if s.cipher == nil {
		return nil, errNoCipher()
	}

	secret, err := s.cipher.Open(settings.LiveKitAPISecret)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Stored live session secret could not be opened")
		return nil, apperrors.NewNotConfiguredError("stored live session secret is unreadable, enter it again")
	}

	opened := *settings
	opened.LiveKitAPISecret = secret
	return &opened, nil
}

func validateURL(field, value string, schemes ...string) error {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" {
		return apperrors.NewValidationError(field + " must be an absolute URL")
	}
	for _, scheme := range schemes {
		if strings.EqualFold(u.Scheme, scheme) {
			return nil
		}
	}
	return apperrors.NewValidationError(field + " must use one of: " + strings.Join(schemes, ", "))
}
