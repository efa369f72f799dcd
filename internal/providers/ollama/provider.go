// internal/providers/ollama/provider.go
// Package ollama provides a Generator backed by a self-hosted Ollama server.
// The API key is optional (attached as a bearer token only when present) but
// the model name is required before any request goes out.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mgearhart/foliolab/internal/logging"
	"github.com/mgearhart/foliolab/internal/providers"
)

// DefaultBaseURL is where a local Ollama server listens out of the box.
const DefaultBaseURL = "http://localhost:11434"

// Provider implements providers.Generator and providers.ModelLister against
// the Ollama HTTP API.
type Provider struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// New constructs a Provider. An empty baseURL falls back to DefaultBaseURL;
// a trailing slash is trimmed so endpoint joins stay clean.
func New(baseURL, model, apiKey string, timeout time.Duration) *Provider {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Provider{
		baseURL: base,
		model:   strings.TrimSpace(model),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider.
func (p *Provider) Name() string { return "ollama" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChunk struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (p *Provider) chat(ctx context.Context, req providers.GenerateRequest, stream bool) (*http.Response, error) {
	if p.model == "" {
		return nil, providers.ErrMissingModel
	}

	var messages []message
	if req.System != "" {
		messages = append(messages, message{Role: "system", Content: req.System})
	}
	messages = append(messages, message{Role: "user", Content: req.Prompt})
	payload := map[string]any{
		"model":    p.model,
		"messages": messages,
		"stream":   stream,
		"options": map[string]any{
			"temperature": req.TemperatureOrDefault(),
			"num_predict": req.MaxTokensOrDefault(),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("APP->LLM", p.Name(), p.model, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		logging.LogRequest("LLM->APP", p.Name(), p.model, raw)
		return nil, fmt.Errorf("ollama: /api/chat returned %s", resp.Status)
	}
	return resp, nil
}

// Generate performs a whole-response chat call.
func (p *Provider) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	resp, err := p.chat(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogRequest("LLM->APP", p.Name(), p.model, raw)

	var parsed chatChunk
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if parsed.Message.Content == "" {
		return "", fmt.Errorf("ollama: returned no content")
	}
	return parsed.Message.Content, nil
}

// GenerateStream reads the newline-delimited JSON chat stream: each complete
// line carries a partial message.content delta, with done:true marking the
// end. Partial trailing data is buffered across reads by the line reader and
// a line that fails to parse is dropped without aborting the stream.
func (p *Provider) GenerateStream(ctx context.Context, req providers.GenerateRequest, onToken providers.TokenFunc) error {
	resp, err := p.chat(ctx, req, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var chunk chatChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}
		if chunk.Message.Content != "" {
			if err := onToken(chunk.Message.Content); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
}

// ListModels queries the discovery endpoint for installed model names. Any
// network or parse failure yields an empty list; discovery never fails the
// caller.
func (p *Provider) ListModels(ctx context.Context) []string {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil
	}
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var parsed tagsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	var names []string
	for _, m := range parsed.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names
}
