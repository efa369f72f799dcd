package settings

import (
	"path/filepath"
	"testing"
)

func TestOpenMissingFile(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got := store.Get("groq_api_key"); got != "" {
		t.Fatalf("absent key should read empty, got %q", got)
	}
	if got := store.Get(KeyOllamaBase); got != DefaultOllamaBase {
		t.Fatalf("ollama base default: %q", got)
	}
}

func TestSetSaveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	store.Set(KeyProvider, "ollama")
	store.Set(KeyOllamaModel, "  llama3.1:8b  ")
	if err := store.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Get(KeyProvider); got != "ollama" {
		t.Fatalf("provider: %q", got)
	}
	if got := reloaded.Get(KeyOllamaModel); got != "llama3.1:8b" {
		t.Fatalf("model not trimmed: %q", got)
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "from-env")
	store, err := Open(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	store.Set(APIKeyFor("openrouter"), "from-file")
	if got := store.Get(APIKeyFor("openrouter")); got != "from-env" {
		t.Fatalf("env should win: %q", got)
	}
}

func TestClear(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	store.Set(APIKeyFor("gemini"), "secret")
	store.Clear(APIKeyFor("gemini"))
	if got := store.Get(APIKeyFor("gemini")); got != "" {
		t.Fatalf("cleared key should read empty, got %q", got)
	}
}
