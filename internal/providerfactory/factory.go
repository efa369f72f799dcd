// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"time"

	"github.com/mgearhart/foliolab/internal/providers"
	"github.com/mgearhart/foliolab/internal/providers/gemini"
	"github.com/mgearhart/foliolab/internal/providers/ollama"
	"github.com/mgearhart/foliolab/internal/providers/openaicompat"
	"github.com/mgearhart/foliolab/internal/settings"
)

// Names of the supported providers, the closed set the factory dispatches
// over.
const (
	Groq       = "groq"
	OpenRouter = "openrouter"
	Gemini     = "gemini"
	Ollama     = "ollama"
)

// DiscoveryTimeout bounds model-listing calls, which should feel instant
// against a local server.
const DiscoveryTimeout = 5 * time.Second

// Known lists every supported provider name.
func Known() []string {
	return []string{Groq, OpenRouter, Gemini, Ollama}
}

// New configures the named provider from the settings store. Key and model
// validation happens inside the provider on first use, so construction never
// performs I/O.
func New(name string, store settings.Store, timeout time.Duration) (providers.Generator, error) {
	apiKey := store.Get(settings.APIKeyFor(name))
	switch name {
	case Groq:
		return openaicompat.NewGroq(apiKey, timeout), nil
	case OpenRouter:
		return openaicompat.NewOpenRouter(apiKey, timeout), nil
	case Gemini:
		return gemini.New(apiKey, timeout), nil
	case Ollama:
		return ollama.New(store.Get(settings.KeyOllamaBase), store.Get(settings.KeyOllamaModel), apiKey, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (known: %v)", name, Known())
	}
}
