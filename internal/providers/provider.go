// internal/providers/provider.go

// Package providers defines the interfaces for interacting with different
// text-generation backends. It provides a common abstraction for batch and
// streamed answer retrieval regardless of the underlying provider
// implementation (hosted chat-completion APIs or a local inference server).
package providers

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned before any network I/O when a hosted provider
// is invoked without a configured key.
var ErrMissingAPIKey = errors.New("missing API key for selected provider")

// ErrMissingModel is returned before any network I/O when the self-hosted
// provider has no model configured.
var ErrMissingModel = errors.New("no model configured")

// GenerateRequest carries the question, optional system framing, and
// generation parameters. Zero-valued parameters take provider defaults.
type GenerateRequest struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
}

// TokenFunc receives incremental answer text during a stream, in transport
// arrival order. Returning an error aborts the stream.
type TokenFunc func(delta string) error

// Generator is the capability every provider implements: a whole-response
// call plus an incrementally streamed variant. Providers without a native
// streaming transport emulate the latter with a single delivery.
type Generator interface {
	// Name identifies the provider in errors and logs.
	Name() string
	// Generate performs a whole-response call.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	// GenerateStream delivers the response incrementally through onToken and
	// returns once the transport signals completion.
	GenerateStream(ctx context.Context, req GenerateRequest, onToken TokenFunc) error
}

// ModelLister is the optional discovery capability. Implementations never
// propagate failure; discovery is best effort.
type ModelLister interface {
	ListModels(ctx context.Context) []string
}

const (
	// DefaultTemperature applies when GenerateRequest.Temperature is zero.
	DefaultTemperature = 0.5
	// DefaultMaxTokens applies when GenerateRequest.MaxTokens is zero.
	DefaultMaxTokens = 160
)

// TemperatureOrDefault resolves the effective sampling temperature.
func (r GenerateRequest) TemperatureOrDefault() float64 {
	if r.Temperature <= 0 {
		return DefaultTemperature
	}
	return r.Temperature
}

// MaxTokensOrDefault resolves the effective output token cap.
func (r GenerateRequest) MaxTokensOrDefault() int {
	if r.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return r.MaxTokens
}
