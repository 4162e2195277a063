package driving

import "github.com/custodia-labs/docgate/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves current settings from defaults, the config file and
	// environment overrides, in that order.
	Get() (*domain.GatewaySettings, error)

	// Set stores a single configuration key after checking it is known.
	Set(key, value string) error

	// Lookup returns the raw stored value for key.
	Lookup(key string) (string, bool)

	// Keys returns every configuration key docgate understands.
	Keys() []string

	// Path returns the configuration file path.
	Path() string

	// GetDefaults returns default settings.
	GetDefaults() domain.GatewaySettings
}
