package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

// DefaultReply is the text of unscripted responses
const DefaultReply = "This is a mock response."

// Client implements the llm.Client interface for testing
type Client struct {
	mu sync.Mutex

	modelInfo         llm.ModelInfo
	responses         []llm.ChatResponse
	errors            []error
	streamResponses   [][]llm.StreamEvent
	callLog           []llm.ChatRequest
	latencySimulation time.Duration
}

// NewClient creates a new mock LLM client for testing
func NewClient(modelName, provider string) (*Client, error) {
	return &Client{
		modelInfo: llm.ModelInfo{
			Name:              modelName,
			Provider:          provider,
			SupportsTools:     true,
			SupportsStreaming: true,
		},
	}, nil
}

// ChatCompletion returns the next queued error or response, or a canned reply
func (m *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := m.begin(ctx, req); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.errors) > 0 {
		err := m.errors[0]
		m.errors = m.errors[1:]
		return nil, err
	}

	if len(m.responses) > 0 {
		resp := m.responses[0]
		m.responses = m.responses[1:]
		return &resp, nil
	}

	return m.defaultResponse(req), nil
}

// StreamChatCompletion replays the next queued stream script. A queued error
// is delivered as an error event. Without a script, the canned reply is
// streamed word by word.
func (m *Client) StreamChatCompletion(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	if err := m.begin(ctx, req); err != nil {
		return nil, err
	}

	m.mu.Lock()
	var events []llm.StreamEvent
	switch {
	case len(m.errors) > 0:
		err := m.errors[0]
		m.errors = m.errors[1:]
		events = []llm.StreamEvent{llm.NewErrorEvent(toLLMError(err))}
	case len(m.streamResponses) > 0:
		events = m.streamResponses[0]
		m.streamResponses = m.streamResponses[1:]
	default:
		events = ResponseToStream(m.defaultResponse(req))
	}
	m.mu.Unlock()

	return sendStreamEvents(ctx, events), nil
}

// GetModelInfo returns information about the model
func (m *Client) GetModelInfo() llm.ModelInfo {
	return m.modelInfo
}

// Close cleans up resources
func (m *Client) Close() error {
	return nil
}

// begin records the request and simulates latency
func (m *Client) begin(ctx context.Context, req llm.ChatRequest) error {
	m.mu.Lock()
	m.callLog = append(m.callLog, req)
	latency := m.latencySimulation
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// defaultResponse answers with the canned reply, calling the first offered
// tool with empty arguments when tools are present
func (m *Client) defaultResponse(req llm.ChatRequest) *llm.ChatResponse {
	msg := llm.AssembledMessage{
		Content:          llm.String(DefaultReply),
		ReasoningContent: llm.String("The user wants a reply."),
	}
	finishReason := llm.FinishReasonStop

	if len(req.Tools) > 0 {
		msg.Content = nil
		msg.ToolCalls = []llm.ToolCall{{
			ID:   fmt.Sprintf("call-%d", len(m.callLog)),
			Type: llm.ToolTypeFunction,
			Function: llm.ToolCallFunction{
				Name:      req.Tools[0].Function.Name,
				Arguments: "{}",
			},
		}}
		finishReason = llm.FinishReasonToolCalls
	}

	return &llm.ChatResponse{
		ID:    fmt.Sprintf("mock-%d", len(m.callLog)),
		Model: m.modelInfo.Name,
		Choices: []llm.Choice{{
			Message:      msg,
			FinishReason: finishReason,
		}},
	}
}

// sendStreamEvents delivers events over a channel that is closed afterwards
func sendStreamEvents(ctx context.Context, events []llm.StreamEvent) <-chan llm.StreamEvent {
	ch := make(chan llm.StreamEvent, len(events))

	go func() {
		defer close(ch)
		for _, event := range events {
			select {
			case <-ctx.Done():
				return
			case ch <- event:
			}
		}
	}()

	return ch
}

func toLLMError(err error) *llm.Error {
	if llmErr, ok := err.(*llm.Error); ok {
		return llmErr
	}
	return &llm.Error{
		Code:    "mock_error",
		Message: err.Error(),
		Type:    "simulation_error",
	}
}

// Test helper methods

// AddResponse queues a response for ChatCompletion
func (m *Client) AddResponse(response llm.ChatResponse) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
	return m
}

// AddError queues an error, consumed by the next call of either kind
func (m *Client) AddError(err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
	return m
}

// GetCallLog returns all requests made to this mock client
func (m *Client) GetCallLog() []llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.ChatRequest(nil), m.callLog...)
}

// GetLastCall returns the most recent request made to this mock client
func (m *Client) GetLastCall() *llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.callLog) == 0 {
		return nil
	}
	last := m.callLog[len(m.callLog)-1]
	return &last
}

// Reset clears all queued responses, errors, streams, and the call log
func (m *Client) Reset() *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = nil
	m.errors = nil
	m.streamResponses = nil
	m.callLog = nil
	return m
}

// WithSimpleResponse queues a plain text response
func (m *Client) WithSimpleResponse(content string) *Client {
	return m.WithMessage(llm.AssembledMessage{Content: llm.String(content)}, llm.FinishReasonStop)
}

// WithReasoningResponse queues a response carrying reasoning content
func (m *Client) WithReasoningResponse(reasoning, content string) *Client {
	return m.WithMessage(llm.AssembledMessage{
		Content:          llm.String(content),
		ReasoningContent: llm.String(reasoning),
	}, llm.FinishReasonStop)
}

// WithToolCall queues a response with a single tool call
func (m *Client) WithToolCall(toolName string, args map[string]any) *Client {
	return m.WithMessage(llm.AssembledMessage{
		ToolCalls: []llm.ToolCall{NewToolCall("call-"+toolName, toolName, args)},
	}, llm.FinishReasonToolCalls)
}

// WithMessage queues a response whose single choice carries msg
func (m *Client) WithMessage(msg llm.AssembledMessage, finishReason string) *Client {
	return m.AddResponse(llm.ChatResponse{
		ID:    fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Model: m.modelInfo.Name,
		Choices: []llm.Choice{{
			Message:      msg,
			FinishReason: finishReason,
		}},
	})
}

// WithError queues an *llm.Error
func (m *Client) WithError(code, message, errorType string) *Client {
	return m.AddError(&llm.Error{
		Code:    code,
		Message: message,
		Type:    errorType,
	})
}

// WithLatency configures simulated latency for requests
func (m *Client) WithLatency(duration time.Duration) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySimulation = duration
	return m
}

// WithStreamResponse queues a stream script, replayed as is
func (m *Client) WithStreamResponse(events []llm.StreamEvent) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamResponses = append(m.streamResponses, events)
	return m
}

// WithRawStream queues a stream built from raw chat.completion.chunk
// documents, decoded the way a network transport decodes them
func (m *Client) WithRawStream(chunks ...string) (*Client, error) {
	events, err := EventsFromChunks(chunks...)
	if err != nil {
		return m, err
	}
	return m.WithStreamResponse(events), nil
}

// Stream script helpers

// NewToolCall builds a complete tool call with JSON-encoded arguments
func NewToolCall(id, name string, args map[string]any) llm.ToolCall {
	argsJSON := "{}"
	if len(args) > 0 {
		if data, err := json.Marshal(args); err == nil {
			argsJSON = string(data)
		}
	}
	return llm.ToolCall{
		ID:   id,
		Type: llm.ToolTypeFunction,
		Function: llm.ToolCallFunction{
			Name:      name,
			Arguments: argsJSON,
		},
	}
}

// EventsFromChunks decodes raw chunk documents into delta events followed by
// a done event carrying the last finish reason seen
func EventsFromChunks(chunks ...string) ([]llm.StreamEvent, error) {
	events := make([]llm.StreamEvent, 0, len(chunks)+1)
	finishReason := ""
	for i, chunk := range chunks {
		delta, reason, err := llm.ParseChunk([]byte(chunk))
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if reason != "" {
			finishReason = reason
		}
		if delta != nil {
			events = append(events, llm.NewDeltaEvent(delta))
		}
	}
	return append(events, llm.NewDoneEvent(finishReason)), nil
}

// CreateWordByWordStream creates a streaming response that sends words individually
func CreateWordByWordStream(text string) []llm.StreamEvent {
	words := strings.SplitAfter(text, " ")
	events := make([]llm.StreamEvent, 0, len(words)+1)

	for _, word := range words {
		events = append(events, llm.NewDeltaEvent(&llm.WireDelta{Content: llm.String(word)}))
	}

	return append(events, llm.NewDoneEvent(llm.FinishReasonStop))
}

// CreateToolCallStream streams optional text followed by one tool call per
// entry of calls. Each call's name and arguments are split across fragments
// that share its index, as providers do.
func CreateToolCallStream(initialText string, calls ...llm.ToolCall) []llm.StreamEvent {
	var events []llm.StreamEvent
	if initialText != "" {
		events = CreateWordByWordStream(initialText)
		events = events[:len(events)-1]
	}

	for i, call := range calls {
		name, args := call.Function.Name, call.Function.Arguments
		nameCut, argsCut := len(name)/2, len(args)/2

		events = append(events,
			llm.NewDeltaEvent(&llm.WireDelta{ToolCalls: []llm.ToolCallFragment{{
				Index:     i,
				ID:        llm.String(call.ID),
				Name:      llm.String(name[:nameCut]),
				Arguments: llm.String(""),
			}}}),
			llm.NewDeltaEvent(&llm.WireDelta{ToolCalls: []llm.ToolCallFragment{{
				Index:     i,
				Name:      llm.String(name[nameCut:]),
				Arguments: llm.String(args[:argsCut]),
			}}}),
			llm.NewDeltaEvent(&llm.WireDelta{ToolCalls: []llm.ToolCallFragment{{
				Index:     i,
				Arguments: llm.String(args[argsCut:]),
			}}}),
		)
	}

	return append(events, llm.NewDoneEvent(llm.FinishReasonToolCalls))
}

// ResponseToStream converts the first choice of resp into an equivalent
// stream: reasoning, then content word by word, then tool calls
func ResponseToStream(resp *llm.ChatResponse) []llm.StreamEvent {
	msg, ok := resp.FirstMessage()
	if !ok {
		return []llm.StreamEvent{llm.NewDoneEvent("")}
	}

	var events []llm.StreamEvent
	if msg.ReasoningContent != nil {
		events = append(events, llm.NewDeltaEvent(&llm.WireDelta{Reasoning: msg.ReasoningContent}))
	}
	if msg.Content != nil {
		words := CreateWordByWordStream(*msg.Content)
		events = append(events, words[:len(words)-1]...)
	}
	if len(msg.ToolCalls) > 0 {
		calls := CreateToolCallStream("", msg.ToolCalls...)
		events = append(events, calls[:len(calls)-1]...)
	}

	return append(events, llm.NewDoneEvent(resp.Choices[0].FinishReason))
}

// Test assertion helpers

// AssertCallCount verifies the number of calls made
func (m *Client) AssertCallCount(expected int) bool {
	return len(m.GetCallLog()) == expected
}

// AssertToolWasOffered checks if any request offered the named tool
func (m *Client) AssertToolWasOffered(toolName string) bool {
	for _, call := range m.GetCallLog() {
		for _, tool := range call.Tools {
			if tool.Function.Name == toolName {
				return true
			}
		}
	}
	return false
}
