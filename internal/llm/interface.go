// internal/llm/interface.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownProvider is returned for names that were never registered.
var ErrUnknownProvider = errors.New("unknown model provider")

// CompletionRequest is the provider-neutral completion input.
type CompletionRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float32 `json:"temperature,omitempty"`
	Model        string  `json:"model,omitempty"`
	// JSONMode asks the backend for a JSON object when it supports it.
	JSONMode bool `json:"json_mode,omitempty"`
}

// CompletionResponse is the provider-neutral completion output.
type CompletionResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	TokensUsed   int    `json:"tokens_used,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// Provider is implemented by every model backend.
type Provider interface {
	// Initialize configures the provider. Keys are backend specific.
	Initialize(config map[string]string) error

	GetName() string

	GetSupportedModels() []string

	// CompleteText sends one prompt and returns the whole answer. It must
	// honor ctx cancellation.
	CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// APIError is a non-2xx answer from a backend.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// ProviderFactory builds an uninitialized provider.
type ProviderFactory func() Provider

var (
	mu        sync.RWMutex
	providers = make(map[string]ProviderFactory)
)

// Register adds a provider factory. Backends call it from init.
func Register(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// IsRegistered reports whether name has a factory.
func IsRegistered(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := providers[name]
	return ok
}

// GetProvider creates and initializes the named provider.
func GetProvider(name string, config map[string]string) (Provider, error) {
	mu.RLock()
	factory, exists := providers[name]
	mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", name, err)
	}
	return provider, nil
}

// ListProviders returns the registered names, sorted.
func ListProviders() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSupportedModelsForProvider returns the advertised models of name.
func GetSupportedModelsForProvider(name string) []string {
	mu.RLock()
	factory, exists := providers[name]
	mu.RUnlock()
	if !exists {
		return []string{}
	}
	return factory().GetSupportedModels()
}
