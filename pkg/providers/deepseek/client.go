package deepseek

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cohesion-org/deepseek-go"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

// Client implements the llm.Client interface for DeepSeek
type Client struct {
	client   *deepseek.Client
	model    string
	provider string
}

// NewClient creates a new DeepSeek client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for DeepSeek",
			Type:    "authentication_error",
		}
	}

	if config.Model == "" {
		return nil, &llm.Error{
			Code:    "missing_model",
			Message: "model is required for DeepSeek client",
			Type:    "validation_error",
		}
	}

	var opts []deepseek.Option
	if config.BaseURL != "" {
		if config.BaseURL == "http://" || config.BaseURL == "https://" {
			return nil, &llm.Error{
				Code:    "invalid_base_url",
				Message: "base URL cannot be just a protocol",
				Type:    "validation_error",
			}
		}
		opts = append(opts, deepseek.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, deepseek.WithTimeout(config.Timeout))
	}

	var client *deepseek.Client
	if len(opts) > 0 {
		var err error
		client, err = deepseek.NewClientWithOptions(config.APIKey, opts...)
		if err != nil {
			return nil, &llm.Error{
				Code:    "client_creation_error",
				Message: "Failed to create DeepSeek client: " + err.Error(),
				Type:    "configuration_error",
			}
		}
	} else {
		client = deepseek.NewClient(config.APIKey)
	}

	return &Client{
		client:   client,
		model:    config.Model,
		provider: "deepseek",
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	deepseekReq := deepseek.ChatCompletionRequest{
		Model:    c.modelFor(req),
		Messages: convertMessages(req.Messages),
		Tools:    convertTools(req.Tools),
		Stop:     req.Stop,
	}
	if req.ToolChoice != nil {
		deepseekReq.ToolChoice = req.ToolChoice.Value()
	}
	if req.Temperature != nil {
		deepseekReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		deepseekReq.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		deepseekReq.TopP = *req.TopP
	}

	resp, err := c.client.CreateChatCompletion(ctx, &deepseekReq)
	if err != nil {
		return nil, convertError(err)
	}

	return convertResponse(resp), nil
}

// StreamChatCompletion performs a streaming chat completion request
func (c *Client) StreamChatCompletion(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	deepseekReq := deepseek.StreamChatCompletionRequest{
		Model:    c.modelFor(req),
		Messages: convertMessages(req.Messages),
		Tools:    convertTools(req.Tools),
		Stop:     req.Stop,
		Stream:   true,
	}
	if req.ToolChoice != nil {
		deepseekReq.ToolChoice = req.ToolChoice.Value()
	}
	if req.Temperature != nil {
		deepseekReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		deepseekReq.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		deepseekReq.TopP = *req.TopP
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, &deepseekReq)
	if err != nil {
		return nil, convertError(err)
	}

	ch := make(chan llm.StreamEvent, 10)

	go func() {
		defer close(ch)
		defer func() { _ = stream.Close() }()

		send := func(event llm.StreamEvent) bool {
			select {
			case ch <- event:
				return true
			case <-ctx.Done():
				return false
			}
		}

		finishReason := ""
		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				send(llm.NewDoneEvent(finishReason))
				return
			}
			if err != nil {
				send(llm.NewErrorEvent(convertError(err)))
				return
			}
			if response == nil || len(response.Choices) == 0 {
				continue
			}

			choice := response.Choices[0]
			if choice.FinishReason != "" {
				finishReason = choice.FinishReason
			}

			delta := &llm.WireDelta{
				Content:          llm.NonEmpty(choice.Delta.Content),
				ReasoningContent: llm.NonEmpty(choice.Delta.ReasoningContent),
			}
			for _, tc := range choice.Delta.ToolCalls {
				delta.ToolCalls = append(delta.ToolCalls, llm.ToolCallFragment{
					Index:     tc.Index,
					ID:        llm.NonEmpty(tc.ID),
					Name:      llm.NonEmpty(tc.Function.Name),
					Arguments: llm.NonEmpty(tc.Function.Arguments),
				})
			}
			if delta.IsEmpty() {
				continue
			}
			if !send(llm.NewDeltaEvent(delta)) {
				return
			}
		}
	}()

	return ch, nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:              c.model,
		Provider:          c.provider,
		SupportsTools:     true,
		SupportsStreaming: true,
	}
}

// Close cleans up resources
func (c *Client) Close() error {
	// The deepseek-go client manages its own HTTP client internally.
	c.client = nil
	return nil
}

func (c *Client) modelFor(req llm.ChatRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

// convertMessages converts our messages to DeepSeek format. DeepSeek takes
// plain string content, so array-form bodies are flattened to their text.
func convertMessages(messages []llm.Message) []deepseek.ChatCompletionMessage {
	converted := make([]deepseek.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		deepseekMsg := deepseek.ChatCompletionMessage{
			Role:       string(msg.Role),
			Content:    msg.GetText(),
			ToolCallID: msg.ToolCallID,
		}
		for i, tc := range msg.ToolCalls {
			deepseekMsg.ToolCalls = append(deepseekMsg.ToolCalls, deepseek.ToolCall{
				Index: i, // DeepSeek requires an index
				ID:    tc.ID,
				Type:  tc.Type,
				Function: deepseek.ToolCallFunction{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		converted = append(converted, deepseekMsg)
	}
	return converted
}

func convertTools(tools []llm.Tool) []deepseek.Tool {
	if len(tools) == 0 {
		return nil
	}

	converted := make([]deepseek.Tool, len(tools))
	for i, tool := range tools {
		converted[i] = deepseek.Tool{
			Type: tool.Type,
			Function: deepseek.Function{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  convertToolParameters(tool.Function.Parameters),
			},
		}
	}
	return converted
}

// convertToolParameters maps a JSON Schema object onto DeepSeek's typed
// parameters. Only type, properties and required survive.
func convertToolParameters(params any) *deepseek.FunctionParameters {
	if params == nil {
		return nil
	}

	paramMap, ok := params.(map[string]any)
	if !ok {
		return &deepseek.FunctionParameters{Type: "object"}
	}

	result := &deepseek.FunctionParameters{Type: "object"}
	if typeStr, ok := paramMap["type"].(string); ok {
		result.Type = typeStr
	}
	if propsMap, ok := paramMap["properties"].(map[string]any); ok {
		result.Properties = propsMap
	}

	switch required := paramMap["required"].(type) {
	case []string:
		result.Required = required
	case []any:
		for _, item := range required {
			if str, ok := item.(string); ok {
				result.Required = append(result.Required, str)
			}
		}
	}

	return result
}

func convertResponse(resp *deepseek.ChatCompletionResponse) *llm.ChatResponse {
	chatResp := &llm.ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, choice := range resp.Choices {
		msg := llm.AssembledMessage{
			ReasoningContent: llm.NonEmpty(choice.Message.ReasoningContent),
		}
		for _, tc := range choice.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				ID:   tc.ID,
				Type: tc.Type,
				Function: llm.ToolCallFunction{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		if choice.Message.Content != "" || len(msg.ToolCalls) == 0 {
			msg.Content = llm.String(choice.Message.Content)
		}

		chatResp.Choices = append(chatResp.Choices, llm.Choice{
			Index:        choice.Index,
			Message:      msg,
			FinishReason: choice.FinishReason,
		})
	}

	return chatResp
}

// convertError classifies DeepSeek errors by message, since the SDK does not
// expose a typed API error
func convertError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()
	lower := strings.ToLower(errorMsg)

	code := "api_error"
	errorType := "api_error"
	statusCode := 0

	switch {
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") || strings.Contains(lower, "authentication"):
		code, errorType, statusCode = "authentication_error", "authentication_error", 401
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests"):
		code, errorType, statusCode = "rate_limit_error", "rate_limit_error", 429
	case strings.Contains(lower, "model") && strings.Contains(lower, "not found"):
		code, errorType, statusCode = "model_not_found", "model_error", 404
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		code, errorType, statusCode = "timeout_error", "network_error", 408
	case strings.Contains(lower, "validation") || strings.Contains(lower, "invalid"):
		code, errorType, statusCode = "validation_error", "validation_error", 400
	}

	return &llm.Error{
		Code:       code,
		Message:    errorMsg,
		Type:       errorType,
		StatusCode: statusCode,
	}
}
