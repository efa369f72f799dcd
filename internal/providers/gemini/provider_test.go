// internal/providers/gemini/provider_test.go
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mgearhart/foliolab/internal/providers"
)

const candidateBody = `{"candidates":[{"content":{"parts":[{"text":"full answer"}]}}]}`

func TestGenerate(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	var capturedKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		capturedBody = body
		_, _ = w.Write([]byte(candidateBody))
	}))
	defer server.Close()

	p := NewWithEndpoint(server.URL, "g-key", 5*time.Second)
	got, err := p.Generate(context.Background(), providers.GenerateRequest{Prompt: "q", System: "sys"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if got != "full answer" {
		t.Fatalf("unexpected content: %q", got)
	}
	if capturedKey != "g-key" {
		t.Fatalf("api key must travel as query parameter, got %q", capturedKey)
	}

	var payload map[string]any
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	contents, ok := payload["contents"].([]any)
	if !ok || len(contents) != 1 {
		t.Fatalf("expected one content turn, got %v", payload["contents"])
	}
	turn := contents[0].(map[string]any)
	parts := turn["parts"].([]any)
	text := parts[0].(map[string]any)["text"].(string)
	if !strings.Contains(text, "System: sys") || !strings.Contains(text, "q") {
		t.Fatalf("system framing not folded into user turn: %q", text)
	}
	if _, ok := payload["generationConfig"]; !ok {
		t.Fatalf("missing generationConfig")
	}
}

func TestMissingKeyShortCircuits(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	p := NewWithEndpoint(server.URL, "", 5*time.Second)
	if _, err := p.Generate(context.Background(), providers.GenerateRequest{Prompt: "q"}); !errors.Is(err, providers.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("transport called %d times, want 0", calls.Load())
	}
}

func TestGenerateNon2xx(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewWithEndpoint(server.URL, "g-key", 5*time.Second)
	_, err := p.Generate(context.Background(), providers.GenerateRequest{Prompt: "q"})
	if err == nil || !strings.Contains(err.Error(), "gemini") || !strings.Contains(err.Error(), "429") {
		t.Fatalf("error should carry provider and status: %v", err)
	}
}

// TestGenerateStreamEmulated verifies streaming is one batch call delivered
// through a single callback invocation.
func TestGenerateStreamEmulated(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateBody))
	}))
	defer server.Close()

	p := NewWithEndpoint(server.URL, "g-key", 5*time.Second)
	var deliveries []string
	err := p.GenerateStream(context.Background(), providers.GenerateRequest{Prompt: "q"}, func(delta string) error {
		deliveries = append(deliveries, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("GenerateStream error: %v", err)
	}
	if len(deliveries) != 1 || deliveries[0] != "full answer" {
		t.Fatalf("expected one full delivery, got %v", deliveries)
	}
}

func TestGenerateNoContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p := NewWithEndpoint(server.URL, "g-key", 5*time.Second)
	if _, err := p.Generate(context.Background(), providers.GenerateRequest{Prompt: "q"}); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}
