package openrouter

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/revrost/go-openrouter"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

// Client implements the llm.Client interface for OpenRouter
type Client struct {
	client   *openrouter.Client
	model    string
	provider string
}

// NewClient creates a new OpenRouter client. Extra may carry "site_url" and
// "app_name", sent as OpenRouter's attribution headers.
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for OpenRouter",
			Type:    "authentication_error",
		}
	}

	clientConfig := openrouter.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Extra != nil {
		if siteURL, ok := config.Extra["site_url"]; ok {
			clientConfig.HttpReferer = siteURL
		}
		if appName, ok := config.Extra["app_name"]; ok {
			clientConfig.XTitle = appName
		}
	}

	return &Client{
		client:   openrouter.NewClientWithConfig(*clientConfig),
		model:    config.Model,
		provider: "openrouter",
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	openrouterReq := c.convertRequest(req)
	openrouterReq.Stream = false

	resp, err := c.client.CreateChatCompletion(ctx, openrouterReq)
	if err != nil {
		return nil, convertError(err)
	}

	return convertResponse(resp), nil
}

// StreamChatCompletion performs a streaming chat completion request
func (c *Client) StreamChatCompletion(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	openrouterReq := c.convertRequest(req)
	openrouterReq.Stream = true

	stream, err := c.client.CreateChatCompletionStream(ctx, openrouterReq)
	if err != nil {
		return nil, convertError(err)
	}

	ch := make(chan llm.StreamEvent, 10)

	go func() {
		defer close(ch)
		defer stream.Close()

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
			if err != nil {
				if errors.Is(err, io.EOF) {
					send(llm.NewDoneEvent(finishReason))
					return
				}
				send(llm.NewErrorEvent(convertError(err)))
				return
			}
			if len(response.Choices) == 0 {
				continue
			}

			choice := response.Choices[0]
			if choice.FinishReason != "" {
				finishReason = string(choice.FinishReason)
			}

			delta := &llm.WireDelta{
				Content:          llm.NonEmpty(choice.Delta.Content),
				ReasoningContent: llm.NonEmpty(choice.Delta.ReasoningContent),
				Reasoning:        choice.Delta.Reasoning,
			}
			for _, tc := range choice.Delta.ToolCalls {
				fragment := llm.ToolCallFragment{
					ID:        llm.NonEmpty(tc.ID),
					Name:      llm.NonEmpty(tc.Function.Name),
					Arguments: llm.NonEmpty(tc.Function.Arguments),
				}
				if tc.Index != nil {
					fragment.Index = *tc.Index
				}
				delta.ToolCalls = append(delta.ToolCalls, fragment)
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
	return nil
}

func (c *Client) convertRequest(req llm.ChatRequest) openrouter.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	openrouterReq := openrouter.ChatCompletionRequest{
		Model:    model,
		Messages: convertMessages(req.Messages),
		Stop:     req.Stop,
		Seed:     req.Seed,
	}
	if req.ToolChoice != nil {
		openrouterReq.ToolChoice = req.ToolChoice.Value()
	}
	if req.ParallelToolCalls != nil {
		openrouterReq.ParallelToolCalls = *req.ParallelToolCalls
	}
	if req.ReasoningEffort != "" {
		effort := req.ReasoningEffort
		enabled := true
		openrouterReq.Reasoning = &openrouter.ChatCompletionReasoning{Effort: &effort, Enabled: &enabled}
	}
	if req.Temperature != nil {
		openrouterReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		openrouterReq.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		openrouterReq.TopP = *req.TopP
	}

	for _, tool := range req.Tools {
		fn := &openrouter.FunctionDefinition{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  tool.Function.Parameters,
		}
		if tool.Function.Strict != nil {
			fn.Strict = *tool.Function.Strict
		}
		openrouterReq.Tools = append(openrouterReq.Tools, openrouter.Tool{
			Type:     openrouter.ToolType(tool.Type),
			Function: fn,
		})
	}

	return openrouterReq
}

func convertMessages(messages []llm.Message) []openrouter.ChatCompletionMessage {
	converted := make([]openrouter.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		openrouterMsg := openrouter.ChatCompletionMessage{
			Role:       string(msg.Role),
			ToolCallID: msg.ToolCallID,
		}

		for _, tc := range msg.ToolCalls {
			openrouterMsg.ToolCalls = append(openrouterMsg.ToolCalls, openrouter.ToolCall{
				ID:   tc.ID,
				Type: openrouter.ToolType(tc.Type),
				Function: openrouter.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		switch {
		case msg.Content == nil:
			openrouterMsg.Content = openrouter.Content{Text: ""}
		case msg.Content.IsParts() && msg.Role == llm.RoleUser:
			openrouterMsg.Content = openrouter.Content{Multi: convertParts(msg.Content.Parts)}
		default:
			openrouterMsg.Content = openrouter.Content{Text: msg.Content.String()}
		}

		converted = append(converted, openrouterMsg)
	}
	return converted
}

func convertParts(parts []llm.ContentPart) []openrouter.ChatMessagePart {
	converted := make([]openrouter.ChatMessagePart, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case llm.ContentPartText:
			converted = append(converted, openrouter.ChatMessagePart{
				Type: openrouter.ChatMessagePartTypeText,
				Text: part.Text,
			})
		case llm.ContentPartImageURL:
			if part.ImageURL == nil {
				continue
			}
			converted = append(converted, openrouter.ChatMessagePart{
				Type:     openrouter.ChatMessagePartTypeImageURL,
				ImageURL: &openrouter.ChatMessageImageURL{URL: part.ImageURL.URL},
			})
		}
	}
	return converted
}

func convertResponse(resp openrouter.ChatCompletionResponse) *llm.ChatResponse {
	response := &llm.ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
	}
	if resp.Usage != nil {
		response.Usage = llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	for _, choice := range resp.Choices {
		var msg llm.AssembledMessage
		for _, tc := range choice.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				Function: llm.ToolCallFunction{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		if text := choice.Message.Content.Text; text != "" || len(msg.ToolCalls) == 0 {
			msg.Content = llm.String(text)
		}
		reasoning := llm.WireDelta{
			ReasoningContent: choice.Message.ReasoningContent,
			Reasoning:        choice.Message.Reasoning,
		}
		msg.ReasoningContent = reasoning.ReasoningFragment()

		response.Choices = append(response.Choices, llm.Choice{
			Index:        choice.Index,
			Message:      msg,
			FinishReason: string(choice.FinishReason),
		})
	}

	return response
}

// convertError converts OpenRouter errors to our standardized Error format
func convertError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	var apiErr *openrouter.APIError
	if errors.As(err, &apiErr) {
		return convertAPIError(apiErr)
	}

	var reqErr *openrouter.RequestError
	if errors.As(err, &reqErr) {
		code, errorType := classifyStatus(reqErr.HTTPStatusCode)
		return &llm.Error{
			Code:       code,
			Message:    reqErr.Error(),
			Type:       errorType,
			StatusCode: reqErr.HTTPStatusCode,
		}
	}

	if converted := convertCommonError(err); converted != nil {
		return converted
	}

	return &llm.Error{
		Code:    "openrouter_error",
		Message: err.Error(),
		Type:    "api_error",
	}
}

func convertAPIError(apiErr *openrouter.APIError) *llm.Error {
	errorCode, errorType := classifyStatus(apiErr.HTTPStatusCode)

	if apiErr.Code != nil {
		if codeStr, ok := apiErr.Code.(string); ok && codeStr != "" {
			errorCode = codeStr
		}
	}

	messageLower := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(messageLower, "rate limit") || strings.Contains(messageLower, "too many requests"):
		errorType, errorCode = "rate_limit_error", "rate_limit_exceeded"
	case strings.Contains(messageLower, "context") && strings.Contains(messageLower, "length"):
		errorType, errorCode = "validation_error", "context_length_exceeded"
	case strings.Contains(messageLower, "model") && strings.Contains(messageLower, "not found"):
		errorType, errorCode = "model_error", "model_not_found"
	}

	return &llm.Error{
		Code:       errorCode,
		Message:    apiErr.Message,
		Type:       errorType,
		StatusCode: apiErr.HTTPStatusCode,
	}
}

// classifyStatus maps an HTTP status to an error code and type
func classifyStatus(status int) (code, errorType string) {
	switch {
	case status == 400:
		return "bad_request", "validation_error"
	case status == 401:
		return "invalid_api_key", "authentication_error"
	case status == 403:
		return "insufficient_permissions", "authentication_error"
	case status == 404:
		return "model_not_found", "model_error"
	case status == 429:
		return "rate_limit_exceeded", "rate_limit_error"
	case status >= 500:
		return "server_error", "api_error"
	case status >= 400:
		return "client_error", "validation_error"
	default:
		return "openrouter_api_error", "api_error"
	}
}

// convertCommonError handles transport errors that carry no API payload
func convertCommonError(err error) *llm.Error {
	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	switch {
	case strings.Contains(errMsgLower, "connection refused") ||
		strings.Contains(errMsgLower, "no such host") ||
		strings.Contains(errMsgLower, "network is unreachable"):
		return &llm.Error{Code: "connection_error", Message: errMsg, Type: "network_error"}
	case strings.Contains(errMsgLower, "timeout") || strings.Contains(errMsgLower, "deadline exceeded"):
		return &llm.Error{Code: "timeout_error", Message: errMsg, Type: "network_error"}
	case strings.Contains(errMsgLower, "context canceled"):
		return &llm.Error{Code: "request_canceled", Message: errMsg, Type: "network_error"}
	}
	return nil
}
