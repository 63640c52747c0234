// Core request and response types
package llm

// Reasoning effort levels
const (
	ReasoningEffortLow    = "low"
	ReasoningEffortMedium = "medium"
	ReasoningEffortHigh   = "high"
)

// Finish reasons reported by providers
const (
	FinishReasonStop      = "stop"
	FinishReasonLength    = "length"
	FinishReasonToolCalls = "tool_calls"
)

// ChatRequest represents a chat completion request (provider-agnostic)
type ChatRequest struct {
	Model             string      `json:"model,omitempty"`
	Messages          []Message   `json:"messages"`
	Tools             []Tool      `json:"tools,omitempty"`
	ToolChoice        *ToolChoice `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool       `json:"parallel_tool_calls,omitempty"`
	Temperature       *float32    `json:"temperature,omitempty"`
	TopP              *float32    `json:"top_p,omitempty"`
	MaxTokens         *int        `json:"max_tokens,omitempty"`
	Seed              *int        `json:"seed,omitempty"`
	Stop              []string    `json:"stop,omitempty"`
	ReasoningEffort   string      `json:"reasoning_effort,omitempty"`
	Stream            bool        `json:"stream,omitempty"`
}

// ChatResponse represents a chat completion response (provider-agnostic)
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage,omitempty"`
}

// Choice represents a single response choice
type Choice struct {
	Index        int              `json:"index"`
	Message      AssembledMessage `json:"message"`
	FinishReason string           `json:"finish_reason,omitempty"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AssembledMessage is the assistant message of a completion: returned directly by
// a non-streaming call, or reconstructed from a stream by a DeltaAccumulator.
// A nil field means the provider never sent it; an empty string means it was sent empty.
type AssembledMessage struct {
	Content          *string    `json:"content,omitempty"`
	ReasoningContent *string    `json:"reasoning_content,omitempty"`
	ToolCalls        []ToolCall `json:"tool_calls,omitempty"`
}

// HasToolCalls checks if the message contains any tool calls
func (m AssembledMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// GetText returns the content, or "" when none was sent
func (m AssembledMessage) GetText() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// AsMessage returns the assistant Message equivalent of the assembled result
func (m AssembledMessage) AsMessage() Message {
	msg := Message{
		Role:             RoleAssistant,
		ToolCalls:        m.ToolCalls,
		ReasoningContent: m.ReasoningContent,
	}
	if m.Content != nil {
		msg.Content = TextContent(*m.Content)
	}
	return msg
}

// FirstMessage returns the message of the first choice, or false when there is none
func (r ChatResponse) FirstMessage() (AssembledMessage, bool) {
	if len(r.Choices) == 0 {
		return AssembledMessage{}, false
	}
	return r.Choices[0].Message, true
}

// GetToolCalls returns all tool calls from all choices in the response
func (r ChatResponse) GetToolCalls() []ToolCall {
	var allToolCalls []ToolCall
	for _, choice := range r.Choices {
		allToolCalls = append(allToolCalls, choice.Message.ToolCalls...)
	}
	return allToolCalls
}
