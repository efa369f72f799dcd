// internal/commands/session.go
package foliolab

import (
	"context"
	"fmt"

	"github.com/mgearhart/foliolab/internal/appconfig"
	"github.com/mgearhart/foliolab/internal/corpus"
	"github.com/mgearhart/foliolab/internal/offload"
	"github.com/mgearhart/foliolab/internal/providerfactory"
	"github.com/mgearhart/foliolab/internal/providers"
	"github.com/mgearhart/foliolab/internal/settings"
	"github.com/mgearhart/foliolab/internal/textindex"
)

// openStore opens the settings store, preferring the path named in the
// config file over the per-user default location.
func openStore() (*settings.FileStore, error) {
	path := settings.DefaultPath()
	if cfg := GetConfig(); cfg != nil && cfg.SettingsPath != "" {
		path = cfg.SettingsPath
	}
	return settings.Open(path)
}

// resolveGenerator builds the provider named by the flag override, then the
// settings store, then the local ollama fallback, in that order.
func resolveGenerator(override string, store settings.Store, cfg *appconfig.Config) (providers.Generator, error) {
	name := override
	if name == "" {
		name = store.Get(settings.KeyProvider)
	}
	if name == "" {
		name = providerfactory.Ollama
	}
	return providerfactory.New(name, store, cfg.RequestTimeout())
}

// buildIndex extracts the configured corpus and builds the retrieval index
// on the background host, returning the chunks and the index generation.
func buildIndex(ctx context.Context, cfg *appconfig.Config, host *offload.Host) ([]textindex.Chunk, uint64, error) {
	chunks, err := corpus.Extract(cfg.CorpusDir, cfg.Sources)
	if err != nil {
		return nil, 0, err
	}
	generation, err := host.Build(ctx, chunks)
	if err != nil {
		return nil, 0, fmt.Errorf("index build: %w", err)
	}
	return chunks, generation, nil
}
