// Package factory registers the available providers and creates clients for them.
//
// Importing the package registers the openai, openrouter, deepseek and mock
// providers. The openai provider speaks to any OpenAI-compatible endpoint and
// is the default.
//
// Example usage:
//
//	client, err := factory.New().CreateClient(llm.ClientConfig{
//	    Provider: "openai",
//	    BaseURL:  "https://api.synthetic.new/openai/v1",
//	    Model:    "hf:zai-org/GLM-4.6",
//	    APIKey:   os.Getenv("SYNTHETIC_API_KEY"),
//	})
package factory
