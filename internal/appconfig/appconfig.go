// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mgearhart/foliolab/internal/corpus"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path used before configs moved under config/.
	legacyConfigPath = "config.json"
	// defaultRequestTimeout is the default timeout for provider HTTP requests.
	defaultRequestTimeout = 600 * time.Second
	// defaultOffloadTimeout is how long callers wait on the background host.
	defaultOffloadTimeout = 8 * time.Second
	// defaultTopK is the retrieval depth when the config omits it.
	defaultTopK = 4
)

// ErrNotFound reports that no configuration file exists at any searched path.
var ErrNotFound = errors.New("config file not found")

// Config represents the top-level application configuration.
type Config struct {
	CorpusDir          string          `json:"corpusDir"`
	Sources            []corpus.Source `json:"sources"`
	TopK               int             `json:"topK,omitempty"`
	ContextTokenLimit  int             `json:"contextTokenLimit,omitempty"`
	TimeoutSeconds     int             `json:"timeout,omitempty"`
	OffloadTimeoutSecs int             `json:"offloadTimeout,omitempty"`
	SettingsPath       string          `json:"settingsPath,omitempty"`
	LogFile            string          `json:"logFile,omitempty"`
	Debug              bool            `json:"debug"`
	ConfigPath         string          `json:"-"`
}

// RequestTimeout returns the timeout for provider HTTP requests, falling
// back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OffloadTimeout returns the caller-side deadline for background host
// round-trips.
func (c Config) OffloadTimeout() time.Duration {
	if c.OffloadTimeoutSecs <= 0 {
		return defaultOffloadTimeout
	}
	return time.Duration(c.OffloadTimeoutSecs) * time.Second
}

// RetrievalTopK returns the configured retrieval depth.
func (c Config) RetrievalTopK() int {
	if c.TopK <= 0 {
		return defaultTopK
	}
	return c.TopK
}

// Load reads the application configuration from the specified path, with
// fallback to the legacy location.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		if len(config.Sources) == 0 {
			return Config{}, errors.New("config must name at least one corpus source")
		}
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				if len(config.Sources) == 0 {
					return Config{}, errors.New("config must name at least one corpus source")
				}
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q): %w", DefaultConfigPath, legacyConfigPath, ErrNotFound)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q: %w", path, ErrNotFound)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
