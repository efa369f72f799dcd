// internal/providers/openaicompat/provider.go
// Package openaicompat provides a Generator backed by hosted
// OpenAI-compatible chat-completion endpoints.
package openaicompat

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

// Endpoint and default model presets for the supported hosted backends.
const (
	GroqEndpoint        = "https://api.groq.com/openai/v1/chat/completions"
	GroqDefaultModel    = "llama-3.1-8b-instant"
	OpenRouterEndpoint  = "https://openrouter.ai/api/v1/chat/completions"
	OpenRouterDefaultModel = "meta-llama/llama-3.1-8b-instruct"
)

// Provider implements providers.Generator against one chat-completions
// endpoint. A missing key fails fast before any request is issued.
type Provider struct {
	name     string
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// New constructs a Provider for an arbitrary OpenAI-compatible endpoint.
func New(name, endpoint, model, apiKey string, timeout time.Duration) *Provider {
	return &Provider{
		name:     name,
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewGroq constructs a Provider preset for Groq's hosted API.
func NewGroq(apiKey string, timeout time.Duration) *Provider {
	return New("groq", GroqEndpoint, GroqDefaultModel, apiKey, timeout)
}

// NewOpenRouter constructs a Provider preset for OpenRouter's hosted API.
func NewOpenRouter(apiKey string, timeout time.Duration) *Provider {
	return New("openrouter", OpenRouterEndpoint, OpenRouterDefaultModel, apiKey, timeout)
}

// Name identifies the provider.
func (p *Provider) Name() string { return p.name }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta   message `json:"delta"`
		Message message `json:"message"`
	} `json:"choices"`
}

func (p *Provider) buildPayload(req providers.GenerateRequest, stream bool) map[string]any {
	var messages []message
	if req.System != "" {
		messages = append(messages, message{Role: "system", Content: req.System})
	}
	messages = append(messages, message{Role: "user", Content: req.Prompt})
	payload := map[string]any{
		"model":       p.model,
		"messages":    messages,
		"temperature": req.TemperatureOrDefault(),
		"max_tokens":  req.MaxTokensOrDefault(),
	}
	if stream {
		payload["stream"] = true
	}
	return payload
}

func (p *Provider) post(ctx context.Context, payload map[string]any, stream bool) (*http.Response, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return nil, providers.ErrMissingAPIKey
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("APP->LLM", p.name, p.model, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		logging.LogRequest("LLM->APP", p.name, p.model, raw)
		return nil, fmt.Errorf("%s: chat completions returned %s", p.name, resp.Status)
	}
	return resp, nil
}

// Generate performs a whole-response chat completion.
func (p *Provider) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	resp, err := p.post(ctx, p.buildPayload(req, false), false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogRequest("LLM->APP", p.name, p.model, raw)

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: returned no content", p.name)
	}
	return parsed.Choices[0].Message.Content, nil
}

// GenerateStream performs a streaming chat completion, parsing SSE-style
// "data:" lines terminated by the [DONE] sentinel. Lines are reassembled
// from whatever chunk boundaries the transport produces; a malformed payload
// line is skipped without aborting the stream.
func (p *Provider) GenerateStream(ctx context.Context, req providers.GenerateRequest, onToken providers.TokenFunc) error {
	resp, err := p.post(ctx, p.buildPayload(req, true), true)
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
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return nil
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			delta = chunk.Choices[0].Message.Content
		}
		if delta == "" {
			continue
		}
		if err := onToken(delta); err != nil {
			return err
		}
	}
}
