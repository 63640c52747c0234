package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

// sseServer replays chunks as a server-sent event stream and records the last
// request body it received
func sseServer(t *testing.T, chunks []string, lastBody *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastBody != nil {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, lastBody))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(llm.ClientConfig{APIKey: "test-key", BaseURL: baseURL, Model: "test-model"})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(llm.ClientConfig{Model: "gpt-4o-mini"})
	require.Error(t, err)

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "missing_api_key", llmErr.Code)
}

func TestStreamChatCompletion_AssemblesToolCallsAndReasoning(t *testing.T) {
	chunks := []string{
		`{"choices":[{"index":0,"delta":{"role":"assistant","reasoning":"thinking"}}]}`,
		`{"choices":[{"index":0,"delta":{"reasoning_content":" harder","reasoning":"ignored"}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"t1","type":"function","function":{"name":"get_","arguments":""}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"name":"weather","arguments":"{\"location\":"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"Paris\"}"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
		`{"choices":[],"usage":{"prompt_tokens":3,"completion_tokens":5,"total_tokens":8}}`,
	}

	var body map[string]any
	server := sseServer(t, chunks, &body)
	defer server.Close()

	client := newTestClient(t, server.URL)
	events, err := client.StreamChatCompletion(context.Background(), llm.ChatRequest{
		Messages:   []llm.Message{llm.NewTextMessage(llm.RoleUser, "What's the weather in Paris?")},
		ToolChoice: &llm.ToolChoice{Mode: llm.ToolChoiceAuto},
	})
	require.NoError(t, err)

	msg, finishReason, err := llm.Assemble(context.Background(), events)
	require.NoError(t, err)

	assert.Equal(t, llm.FinishReasonToolCalls, finishReason)
	assert.Nil(t, msg.Content)
	require.NotNil(t, msg.ReasoningContent)
	assert.Equal(t, "thinking harder", *msg.ReasoningContent)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, llm.ToolCall{
		ID:   "t1",
		Type: llm.ToolTypeFunction,
		Function: llm.ToolCallFunction{
			Name:      "get_weather",
			Arguments: `{"location":"Paris"}`,
		},
	}, msg.ToolCalls[0])
	require.NoError(t, msg.Validate())

	assert.Equal(t, "test-model", body["model"])
	assert.Equal(t, true, body["stream"])
	assert.Equal(t, "auto", body["tool_choice"])
}

func TestStreamChatCompletion_EmptyContentIsPresent(t *testing.T) {
	server := sseServer(t, []string{
		`{"choices":[{"index":0,"delta":{"role":"assistant","content":""}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
	}, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)
	events, err := client.StreamChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
	})
	require.NoError(t, err)

	msg, finishReason, err := llm.Assemble(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, llm.FinishReasonStop, finishReason)
	require.NotNil(t, msg.Content)
	assert.Equal(t, "", *msg.Content)
	assert.Nil(t, msg.ReasoningContent)
	assert.Nil(t, msg.ToolCalls)
}

func TestChatCompletion_ConvertsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"model": "test-model",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"reasoning_content": "need weather",
					"tool_calls": [{"id": "gw1", "type": "function", "function": {"name": "get_weather", "arguments": "{}"}}]
				}
			}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 2, "total_tokens": 3}
		}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	resp, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "weather?")},
	})
	require.NoError(t, err)

	msg, ok := resp.FirstMessage()
	require.True(t, ok)
	assert.Nil(t, msg.Content)
	require.NotNil(t, msg.ReasoningContent)
	assert.Equal(t, "need weather", *msg.ReasoningContent)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "get_weather", msg.ToolCalls[0].Function.Name)
	assert.Equal(t, 3, resp.Usage.TotalTokens)
	assert.Equal(t, llm.FinishReasonToolCalls, resp.Choices[0].FinishReason)
}

func TestChatCompletion_ReasoningFieldNames(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "reasoning", message: `{"role":"assistant","content":"2","reasoning":"peano"}`, want: "peano"},
		{name: "reasoning_content", message: `{"role":"assistant","content":"2","reasoning_content":"peano"}`, want: "peano"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				data, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				require.NoError(t, json.Unmarshal(data, &body))
				w.Header().Set("Content-Type", "application/json")
				_, _ = fmt.Fprintf(w, `{"id":"c1","model":"test-model","choices":[{"index":0,"finish_reason":"stop","message":%s}]}`, tt.message)
			}))
			defer server.Close()

			parallel := true
			client := newTestClient(t, server.URL)
			resp, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
				Messages:          []llm.Message{llm.NewTextMessage(llm.RoleUser, "What is 1+1?")},
				ToolChoice:        &llm.ToolChoice{Mode: llm.ToolChoiceAuto},
				ParallelToolCalls: &parallel,
			})
			require.NoError(t, err)

			msg, ok := resp.FirstMessage()
			require.True(t, ok)
			require.NotNil(t, msg.Content)
			assert.Equal(t, "2", *msg.Content)
			require.NotNil(t, msg.ReasoningContent)
			assert.Equal(t, tt.want, *msg.ReasoningContent)

			assert.Equal(t, "auto", body["tool_choice"])
			assert.Equal(t, true, body["parallel_tool_calls"])
		})
	}
}

func TestChatCompletion_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit","code":"rate_limit_exceeded"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
	})
	require.Error(t, err)

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "rate_limit_exceeded", llmErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, llmErr.StatusCode)
}

func TestConvertMessages(t *testing.T) {
	reasoning := "Because it does"
	messages := []llm.Message{
		llm.NewPartsMessage(llm.RoleUser, llm.TextPart("look"), llm.ImageURLPart("https://example.com/a.png")),
		{Role: llm.RoleAssistant, Content: llm.TextContent("ok"), ReasoningContent: &reasoning},
		llm.NewToolCallMessage(llm.ToolCall{ID: "gw1", Type: llm.ToolTypeFunction, Function: llm.ToolCallFunction{Name: "get_weather", Arguments: "{}"}}),
		llm.NewToolResultMessage("gw1", "sunny"),
	}

	converted := convertMessages(messages)
	require.Len(t, converted, 4)

	assert.Empty(t, converted[0].Content)
	require.Len(t, converted[0].MultiContent, 2)
	assert.Equal(t, "https://example.com/a.png", converted[0].MultiContent[1].ImageURL.URL)

	assert.Equal(t, "ok", converted[1].Content)
	assert.Equal(t, reasoning, converted[1].ReasoningContent)

	require.Len(t, converted[2].ToolCalls, 1)
	assert.Equal(t, "get_weather", converted[2].ToolCalls[0].Function.Name)

	assert.Equal(t, "gw1", converted[3].ToolCallID)
	assert.Equal(t, "sunny", converted[3].Content)
}
