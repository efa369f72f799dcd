// internal/settings/settings.go
// Package settings persists user preferences for the provider gateway: API
// keys, the default provider, and the self-hosted server's base URL and
// model. It replaces ambient global state with an explicit store that is
// loaded once and written back on explicit save.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Well-known setting keys.
const (
	KeyProvider    = "provider"
	KeyOllamaBase  = "ollama_base_url"
	KeyOllamaModel = "ollama_model"
)

// APIKeyFor returns the settings key holding a provider's API key.
func APIKeyFor(provider string) string {
	return provider + "_api_key"
}

// DefaultOllamaBase is used when no base URL has been saved.
const DefaultOllamaBase = "http://localhost:11434"

// Store is the key/value settings contract injected into the gateway and
// the CLI. Absent keys read as empty strings.
type Store interface {
	Get(key string) string
	Set(key, value string)
	Clear(key string)
	Save() error
}

// FileStore is a Store backed by a YAML file, with environment variables
// (optionally loaded from .env) overriding saved API keys.
type FileStore struct {
	v    *viper.Viper
	path string
}

// Open loads settings from path, creating an empty store when the file does
// not exist yet. A .env file next to the working directory is folded into
// the process environment first, so keys like GROQ_API_KEY can live outside
// the settings file.
func Open(path string) (*FileStore, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	}
	return &FileStore{v: v, path: path}, nil
}

// DefaultPath places the settings file under the user config directory,
// falling back to the working directory when that cannot be resolved.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "foliolab", "settings.yaml")
	}
	return "settings.yaml"
}

// Get returns the stored value for key. API-key lookups consult the
// environment first (GROQ_API_KEY style), then the file.
func (s *FileStore) Get(key string) string {
	if strings.HasSuffix(key, "_api_key") {
		if env := os.Getenv(strings.ToUpper(key)); env != "" {
			return env
		}
	}
	val := strings.TrimSpace(s.v.GetString(key))
	if val == "" && key == KeyOllamaBase {
		return DefaultOllamaBase
	}
	return val
}

// Set stores a trimmed value in memory; Save persists it.
func (s *FileStore) Set(key, value string) {
	s.v.Set(key, strings.TrimSpace(value))
}

// Clear removes a key by blanking it; absent and empty are equivalent reads.
func (s *FileStore) Clear(key string) {
	s.v.Set(key, "")
}

// Save writes the settings file, creating parent directories as needed.
func (s *FileStore) Save() error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings %s: %w", s.path, err)
	}
	return nil
}
