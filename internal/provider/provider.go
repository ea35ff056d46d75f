// Package provider constructs the LLM backend used for summary and question
// generation. Supported backends: OpenAI (default), Azure OpenAI, Ollama.
package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
)

const (
	// DefaultMaxTokens caps generated output. Summaries and question sets are
	// short-form; 1024 tokens is ample.
	DefaultMaxTokens = 1024

	// DefaultTemperature keeps generation close to the retrieved material.
	DefaultTemperature float32 = 0.2
)

// Config holds provider-level configuration resolved from the config file
// and environment.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// Model is the model name or deployment ID (e.g. "gpt-4o-mini", "llama3").
	Model string

	// BaseURL overrides the default API endpoint (required for Ollama and Azure).
	BaseURL string

	// APIKey is the authentication credential for the selected provider.
	APIKey string

	// AzureAPIVersion is the Azure OpenAI REST API version (Azure only).
	AzureAPIVersion string

	// MaxTokens caps the number of tokens the model may generate per response.
	// Defaults to DefaultMaxTokens if zero.
	MaxTokens int

	// Temperature controls response randomness. Defaults to
	// DefaultTemperature if zero.
	Temperature float32
}

// Validate checks that the config names a known backend with the credentials
// that backend requires. Called at startup so operators get a clear error
// before the first generation request.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("provider: an API key is required for the openai backend")
		}
	case BackendAzure:
		if c.APIKey == "" {
			return fmt.Errorf("provider: an API key is required for the azure backend")
		}
		if c.BaseURL == "" {
			return fmt.Errorf("provider: an Azure endpoint is required for the azure backend")
		}
		if c.Model == "" {
			return fmt.Errorf("provider: a deployment name is required for the azure backend")
		}
	case BackendOllama:
		// BaseURL defaults to the local daemon.
	default:
		return fmt.Errorf("provider: unknown backend %q, valid values: openai, azure, ollama", c.Backend)
	}
	return nil
}

// New constructs a ChatModel from the given config, delegating to the
// matching backend factory.
func New(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendOpenAI
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendOpenAI:
		return newOpenAI(ctx, cfg)
	case BackendAzure:
		return newAzure(ctx, cfg)
	case BackendOllama:
		return newOllama(ctx, cfg)
	}
	// Unreachable after Validate.
	return nil, fmt.Errorf("provider: unknown backend %q", cfg.Backend)
}
