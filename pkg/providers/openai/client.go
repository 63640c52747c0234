package openai

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

// Client implements the llm.Client interface for OpenAI and any endpoint
// speaking the OpenAI chat completions protocol
type Client struct {
	client   *openai.Client
	model    string
	provider string
	baseURL  string
}

// NewClient creates a new OpenAI client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for OpenAI",
			Type:    "authentication_error",
		}
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	clientConfig.HTTPClient = &capturingDoer{next: clientConfig.HTTPClient}

	return &Client{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    config.Model,
		provider: "openai",
		baseURL:  config.BaseURL,
	}, nil
}

// ChatCompletion performs a chat completion request.
//
// The response body is also decoded with llm.ParseCompletion, so the choice
// messages resolve reasoning and optional text exactly as a streamed response
// would. The typed SDK response only supplies metadata and usage.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	openaiReq := c.convertRequest(req)
	openaiReq.Stream = false

	body := &responseBody{}
	resp, err := c.client.CreateChatCompletion(withResponseBody(ctx, body), openaiReq)
	if err != nil {
		return nil, c.convertError(err)
	}

	chatResp := c.convertResponse(resp)
	if messages, err := llm.ParseCompletion(body.data); err == nil {
		for i := range chatResp.Choices {
			if i < len(messages) && messages[i] != nil {
				chatResp.Choices[i].Message = *messages[i]
			}
		}
	}
	return chatResp, nil
}

// StreamChatCompletion performs a streaming chat completion request.
//
// Chunks are read raw and decoded with llm.ParseChunk rather than through the
// SDK's typed structs, so that a field sent empty stays distinguishable from a
// field never sent, and reasoning text under either field name survives.
func (c *Client) StreamChatCompletion(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	openaiReq := c.convertRequest(req)
	openaiReq.Stream = true

	stream, err := c.client.CreateChatCompletionStream(ctx, openaiReq)
	if err != nil {
		return nil, c.convertError(err)
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
			raw, err := stream.RecvRaw()
			if errors.Is(err, io.EOF) {
				send(llm.NewDoneEvent(finishReason))
				return
			}
			if err != nil {
				send(llm.NewErrorEvent(c.convertError(err)))
				return
			}

			delta, reason, err := llm.ParseChunk(raw)
			if err != nil {
				send(llm.NewErrorEvent(&llm.Error{
					Code:    "invalid_chunk",
					Message: err.Error(),
					Type:    "stream_error",
				}))
				return
			}
			if reason != "" {
				finishReason = reason
			}
			if delta == nil {
				continue
			}
			if !send(llm.NewDeltaEvent(delta)) {
				return
			}
		}
	}()

	return ch, nil
}

// GetModelInfo returns information about the model being used
func (c *Client) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:              c.model,
		Provider:          c.provider,
		SupportsTools:     true,
		SupportsStreaming: true,
	}
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	// OpenAI client doesn't require explicit cleanup
	return nil
}

// convertRequest converts our ChatRequest to OpenAI format
func (c *Client) convertRequest(req llm.ChatRequest) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:           model,
		Messages:        convertMessages(req.Messages),
		Stop:            req.Stop,
		Seed:            req.Seed,
		ReasoningEffort: req.ReasoningEffort,
	}

	// Handle optional pointer fields
	if req.Temperature != nil {
		openaiReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		openaiReq.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		openaiReq.TopP = *req.TopP
	}
	if req.ToolChoice != nil {
		openaiReq.ToolChoice = req.ToolChoice.Value()
	}
	if req.ParallelToolCalls != nil {
		openaiReq.ParallelToolCalls = *req.ParallelToolCalls
	}

	for _, tool := range req.Tools {
		openaiTool := openai.Tool{
			Type: openai.ToolType(tool.Type),
			Function: &openai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		}
		if tool.Function.Strict != nil {
			openaiTool.Function.Strict = *tool.Function.Strict
		}
		openaiReq.Tools = append(openaiReq.Tools, openaiTool)
	}

	return openaiReq
}

// convertMessages converts our messages to OpenAI format
func convertMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))

	for _, msg := range messages {
		openaiMsg := openai.ChatCompletionMessage{
			Role:       string(msg.Role),
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}

		for _, tc := range msg.ToolCalls {
			openaiMsg.ToolCalls = append(openaiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolType(tc.Type),
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		if msg.FunctionCall != nil {
			openaiMsg.FunctionCall = &openai.FunctionCall{
				Name:      msg.FunctionCall.Name,
				Arguments: msg.FunctionCall.Arguments,
			}
		}

		if msg.ReasoningContent != nil {
			openaiMsg.ReasoningContent = *msg.ReasoningContent
		}

		switch {
		case msg.Content == nil:
		case msg.Content.IsParts() && msg.Role == llm.RoleUser:
			openaiMsg.MultiContent = convertParts(msg.Content.Parts)
		default:
			// only user messages carry images, so other roles collapse to text
			openaiMsg.Content = msg.Content.String()
		}

		openaiMessages = append(openaiMessages, openaiMsg)
	}

	return openaiMessages
}

func convertParts(parts []llm.ContentPart) []openai.ChatMessagePart {
	openaiParts := make([]openai.ChatMessagePart, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case llm.ContentPartText:
			openaiParts = append(openaiParts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: part.Text,
			})
		case llm.ContentPartImageURL:
			if part.ImageURL == nil {
				continue
			}
			openaiParts = append(openaiParts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    part.ImageURL.URL,
					Detail: openai.ImageURLDetail(part.ImageURL.Detail),
				},
			})
		}
	}
	return openaiParts
}

// convertResponse converts OpenAI response to our format
func (c *Client) convertResponse(resp openai.ChatCompletionResponse) *llm.ChatResponse {
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
		chatResp.Choices = append(chatResp.Choices, llm.Choice{
			Index:        choice.Index,
			Message:      convertMessage(choice.Message),
			FinishReason: string(choice.FinishReason),
		})
	}

	return chatResp
}

// convertMessage converts an OpenAI message to an assembled message. The typed
// SDK cannot tell an empty string from a missing field, so empty content is
// only reported as present when the message has no tool calls.
func convertMessage(msg openai.ChatCompletionMessage) llm.AssembledMessage {
	var out llm.AssembledMessage

	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: llm.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	if msg.Content != "" || len(out.ToolCalls) == 0 {
		out.Content = llm.String(msg.Content)
	}
	if msg.ReasoningContent != "" {
		out.ReasoningContent = llm.String(msg.ReasoningContent)
	}

	return out
}

// convertError converts OpenAI error to our format
func (c *Client) convertError(err error) *llm.Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := "unknown"
		if apiErr.Code != nil {
			if codeStr, ok := apiErr.Code.(string); ok {
				code = codeStr
			}
		}
		return &llm.Error{
			Code:       code,
			Message:    apiErr.Message,
			Type:       apiErr.Type,
			StatusCode: apiErr.HTTPStatusCode,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &llm.Error{
			Code:       "request_error",
			Message:    reqErr.Error(),
			Type:       "api_error",
			StatusCode: reqErr.HTTPStatusCode,
		}
	}

	// Generic error
	return &llm.Error{
		Code:    "unknown_error",
		Message: err.Error(),
		Type:    "api_error",
	}
}

type responseBodyKey struct{}

// responseBody receives the raw body of a non-streamed response
type responseBody struct {
	data []byte
}

func withResponseBody(ctx context.Context, body *responseBody) context.Context {
	return context.WithValue(ctx, responseBodyKey{}, body)
}

// capturingDoer copies the response body of requests whose context carries a
// responseBody, leaving the SDK free to decode it as usual
type capturingDoer struct {
	next openai.HTTPDoer
}

func (d *capturingDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil {
		return resp, err
	}

	body, ok := req.Context().Value(responseBodyKey{}).(*responseBody)
	if !ok {
		return resp, nil
	}

	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	body.data = data
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}
