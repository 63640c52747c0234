package factory

import (
	"fmt"
	"strings"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

// Factory creates LLM clients based on configuration
type Factory struct{}

// New creates a new client factory
func New() *Factory {
	return &Factory{}
}

// CreateClient creates an LLM client based on the configuration.
// An empty provider selects llm.DefaultProvider.
func (f *Factory) CreateClient(config llm.ClientConfig) (llm.Client, error) {
	provider := config.Provider
	if provider == "" {
		provider = llm.DefaultProvider
	}
	provider = strings.ToLower(provider)

	if config.Model == "" {
		return nil, &llm.Error{
			Code:    "missing_model",
			Message: "model is required",
			Type:    "validation_error",
		}
	}

	constructor, exists := GetProvider(provider)
	if !exists {
		return nil, &llm.Error{
			Code:    "unsupported_provider",
			Message: fmt.Sprintf("unsupported provider: %s (available: %s)", provider, strings.Join(ListProviders(), ", ")),
			Type:    "validation_error",
		}
	}

	config.Provider = provider
	return constructor(config)
}
