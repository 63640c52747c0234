// Package deepseek provides an LLM client for DeepSeek models.
//
// Streamed deltas arrive through the typed deepseek-go SDK and are mapped onto
// llm.WireDelta. The SDK decodes into plain strings, so an empty field is
// reported as absent; reasoning text from deepseek-reasoner is carried as
// reasoning content.
//
// Usage:
//
//	config := llm.ClientConfig{
//	    Provider: "deepseek",
//	    APIKey:   "your-api-key",
//	    Model:    "deepseek-reasoner",
//	}
//	client, err := factory.New().CreateClient(config)
package deepseek
