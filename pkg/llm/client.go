// Client interfaces
package llm

import "context"

// Client defines the core interface that all LLM clients must implement
type Client interface {
	// ChatCompletion performs a non-streaming chat completion request
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// StreamChatCompletion performs a streaming chat completion request.
	// The returned channel carries delta events followed by exactly one done
	// or error event, and is closed by the transport when the stream ends.
	StreamChatCompletion(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error)

	// GetModelInfo returns information about the model being used
	GetModelInfo() ModelInfo

	// Close cleans up any resources used by the client
	Close() error
}
