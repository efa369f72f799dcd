// internal/providerfactory/factory_test.go
package providerfactory

import (
	"testing"
	"time"

	"github.com/mgearhart/foliolab/internal/providers"
	"github.com/mgearhart/foliolab/internal/settings"
)

type mapStore map[string]string

func (m mapStore) Get(key string) string { return m[key] }
func (m mapStore) Set(key, value string) { m[key] = value }
func (m mapStore) Clear(key string) { delete(m, key) }
func (m mapStore) Save() error { return nil }

var _ settings.Store = mapStore{}

func TestNewKnownProviders(t *testing.T) {
	store := mapStore{
		settings.KeyOllamaBase:  "http://localhost:11434",
		settings.KeyOllamaModel: "llama3.1:8b",
	}
	for _, name := range Known() {
		p, err := New(name, store, time.Second)
		if err != nil {
			t.Fatalf("New(%s) error: %v", name, err)
		}
		if p.Name() != name {
			t.Fatalf("provider name mismatch: %s vs %s", p.Name(), name)
		}
	}
}

func TestNewRejectsUnknown(t *testing.T) {
	if _, err := New("mystery", mapStore{}, time.Second); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestOllamaImplementsModelLister(t *testing.T) {
	p, err := New(Ollama, mapStore{settings.KeyOllamaModel: "m"}, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(providers.ModelLister); !ok {
		t.Fatal("ollama provider must support model discovery")
	}
}
