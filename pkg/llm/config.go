// Client configuration
package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultProvider is used when a configuration names no provider
const DefaultProvider = "openai"

// DefaultTimeout bounds a whole request, streaming included
const DefaultTimeout = 5 * time.Minute

// ClientConfig holds configuration for creating LLM clients
type ClientConfig struct {
	Provider string            `json:"provider" yaml:"provider"` // openai, deepseek, openrouter, mock
	Model    string            `json:"model" yaml:"model"`
	APIKey   string            `json:"api_key,omitempty" yaml:"-"`
	BaseURL  string            `json:"base_url,omitempty" yaml:"base_url"`
	Timeout  time.Duration     `json:"timeout,omitempty" yaml:"timeout"`
	Extra    map[string]string `json:"extra,omitempty" yaml:"extra"` // Provider-specific configs
}

// parseTimeoutFromEnv parses timeout from environment variable with fallback to default
func parseTimeoutFromEnv(envVar string, defaultTimeout time.Duration) time.Duration {
	if timeoutStr := os.Getenv(envVar); timeoutStr != "" {
		if timeoutSecs, err := strconv.Atoi(timeoutStr); err == nil && timeoutSecs > 0 {
			return time.Duration(timeoutSecs) * time.Second
		}
	}
	return defaultTimeout
}

// ConfigFromEnv builds an OpenAI-compatible client configuration whose API key
// is read from the environment variable named by envVar. The timeout may be
// overridden in seconds through SYNBAD_TIMEOUT.
func ConfigFromEnv(envVar, baseURL, model string) (ClientConfig, error) {
	if envVar == "" {
		return ClientConfig{}, fmt.Errorf("no API key environment variable given")
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return ClientConfig{}, fmt.Errorf("environment variable %s is not set", envVar)
	}

	return ClientConfig{
		Provider: DefaultProvider,
		Model:    model,
		APIKey:   apiKey,
		BaseURL:  baseURL,
		Timeout:  parseTimeoutFromEnv("SYNBAD_TIMEOUT", DefaultTimeout),
	}, nil
}
