// internal/providers/gemini/provider.go
// Package gemini provides a Generator backed by the Google Generative
// Language API. The API has no browser-portable streaming transport, so the
// streaming variant is emulated: one batch call delivered as a single token.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mgearhart/foliolab/internal/logging"
	"github.com/mgearhart/foliolab/internal/providers"
)

// DefaultEndpoint targets the Gemini 1.5 Flash generateContent method. The
// API key travels as a query parameter, not a header.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// Provider implements providers.Generator over the contents/parts envelope.
type Provider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// New constructs a Provider against DefaultEndpoint.
func New(apiKey string, timeout time.Duration) *Provider {
	return NewWithEndpoint(DefaultEndpoint, apiKey, timeout)
}

// NewWithEndpoint constructs a Provider against a custom endpoint.
func NewWithEndpoint(endpoint, apiKey string, timeout time.Duration) *Provider {
	return &Provider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider.
func (p *Provider) Name() string { return "gemini" }

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate performs a whole-response call. The system framing is folded into
// the user turn since the envelope has no dedicated system role here.
func (p *Provider) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return "", providers.ErrMissingAPIKey
	}

	text := req.Prompt
	if req.System != "" {
		text = fmt.Sprintf("System: %s\n\n%s", req.System, req.Prompt)
	}
	payload := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": text}},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     req.TemperatureOrDefault(),
			"maxOutputTokens": req.MaxTokensOrDefault(),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	logging.LogRequest("APP->LLM", p.Name(), "", body)

	endpoint := p.endpoint + "?key=" + url.QueryEscape(p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: generateContent returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogRequest("LLM->APP", p.Name(), "", raw)

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 ||
		parsed.Candidates[0].Content.Parts[0].Text == "" {
		return "", fmt.Errorf("gemini: returned no content")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateStream emulates streaming with one batch call delivered through a
// single onToken invocation.
func (p *Provider) GenerateStream(ctx context.Context, req providers.GenerateRequest, onToken providers.TokenFunc) error {
	full, err := p.Generate(ctx, req)
	if err != nil {
		return err
	}
	return onToken(full)
}
