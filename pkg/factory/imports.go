package factory

import (
	"github.com/synthetic-lab/synbad/pkg/llm"
	"github.com/synthetic-lab/synbad/pkg/providers/deepseek"
	"github.com/synthetic-lab/synbad/pkg/providers/mock"
	"github.com/synthetic-lab/synbad/pkg/providers/openai"
	"github.com/synthetic-lab/synbad/pkg/providers/openrouter"
)

func init() {
	// Any OpenAI-compatible endpoint, selected with BaseURL
	RegisterProvider("openai", func(config llm.ClientConfig) (llm.Client, error) {
		return openai.NewClient(config)
	})

	RegisterProvider("openrouter", func(config llm.ClientConfig) (llm.Client, error) {
		return openrouter.NewClient(config)
	})

	RegisterProvider("deepseek", func(config llm.ClientConfig) (llm.Client, error) {
		return deepseek.NewClient(config)
	})

	// Offline provider for smoke runs
	RegisterProvider("mock", func(config llm.ClientConfig) (llm.Client, error) {
		return mock.NewClient(config.Model, "mock")
	})
}
