package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient("test-model", "mock")
	require.NoError(t, err)
	return client
}

func userRequest(text string) llm.ChatRequest {
	return llm.ChatRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, text)},
	}
}

func TestChatCompletion_Scripted(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	client.WithSimpleResponse("first").
		WithToolCall("get_weather", map[string]any{"location": "Paris"}).
		WithError("rate_limit", "slow down", "rate_limit_error")

	resp, err := client.ChatCompletion(ctx, userRequest("hi"))
	require.NoError(t, err)
	msg, ok := resp.FirstMessage()
	require.True(t, ok)
	assert.Equal(t, "first", msg.GetText())

	resp, err = client.ChatCompletion(ctx, userRequest("weather?"))
	require.NoError(t, err)
	calls := resp.GetToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "get_weather", calls[0].Function.Name)
	assert.JSONEq(t, `{"location":"Paris"}`, calls[0].Function.Arguments)
	assert.Equal(t, llm.FinishReasonToolCalls, resp.Choices[0].FinishReason)

	_, err = client.ChatCompletion(ctx, userRequest("again"))
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "rate_limit", llmErr.Code)

	assert.True(t, client.AssertCallCount(3))
	last := client.GetLastCall()
	require.NotNil(t, last)
	assert.Equal(t, "again", last.Messages[0].GetText())
}

func TestChatCompletion_Default(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	resp, err := client.ChatCompletion(ctx, userRequest("hi"))
	require.NoError(t, err)
	msg, _ := resp.FirstMessage()
	assert.Equal(t, DefaultReply, msg.GetText())
	require.NotNil(t, msg.ReasoningContent)

	req := userRequest("weather?")
	req.Tools = []llm.Tool{llm.NewFunctionTool("get_weather", "", nil)}
	resp, err = client.ChatCompletion(ctx, req)
	require.NoError(t, err)
	msg, _ = resp.FirstMessage()
	assert.Nil(t, msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "get_weather", msg.ToolCalls[0].Function.Name)
	assert.NoError(t, msg.Validate())
	assert.True(t, client.AssertToolWasOffered("get_weather"))
	assert.False(t, client.AssertToolWasOffered("read"))
}

func TestStreamChatCompletion_WordByWord(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	client.WithStreamResponse(CreateWordByWordStream("Sky is blue"))

	events, err := client.StreamChatCompletion(ctx, userRequest("color?"))
	require.NoError(t, err)

	msg, finishReason, err := llm.Assemble(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, "Sky is blue", msg.GetText())
	assert.Equal(t, llm.FinishReasonStop, finishReason)
}

func TestStreamChatCompletion_ToolCalls(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	client.WithStreamResponse(CreateToolCallStream("Checking.",
		NewToolCall("call-1", "get_weather", map[string]any{"location": "Paris"}),
		NewToolCall("call-2", "get_time", nil),
	))

	events, err := client.StreamChatCompletion(ctx, userRequest("weather and time?"))
	require.NoError(t, err)

	msg, finishReason, err := llm.Assemble(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, llm.FinishReasonToolCalls, finishReason)
	assert.Equal(t, "Checking.", msg.GetText())
	require.Len(t, msg.ToolCalls, 2)
	assert.Equal(t, "call-1", msg.ToolCalls[0].ID)
	assert.Equal(t, "get_weather", msg.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"location":"Paris"}`, msg.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "get_time", msg.ToolCalls[1].Function.Name)
	assert.Equal(t, "{}", msg.ToolCalls[1].Function.Arguments)
}

func TestStreamChatCompletion_RawChunks(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	_, err := client.WithRawStream(
		`{"choices":[{"index":0,"delta":{"role":"assistant","content":""}}]}`,
		`{"choices":[{"index":0,"delta":{"reasoning":"hmm"}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		`{"choices":[],"usage":{"total_tokens":3}}`,
	)
	require.NoError(t, err)

	events, err := client.StreamChatCompletion(ctx, userRequest("hi"))
	require.NoError(t, err)

	msg, finishReason, err := llm.Assemble(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, llm.FinishReasonStop, finishReason)
	require.NotNil(t, msg.Content)
	assert.Equal(t, "", *msg.Content)
	require.NotNil(t, msg.ReasoningContent)
	assert.Equal(t, "hmm", *msg.ReasoningContent)

	_, err = client.WithRawStream("not json")
	assert.Error(t, err)
}

func TestStreamChatCompletion_Default(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	events, err := client.StreamChatCompletion(ctx, userRequest("hi"))
	require.NoError(t, err)

	msg, finishReason, err := llm.Assemble(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, DefaultReply, msg.GetText())
	assert.NotNil(t, msg.ReasoningContent)
	assert.Equal(t, llm.FinishReasonStop, finishReason)
}

func TestStreamChatCompletion_Error(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	client.WithError("server_error", "boom", "api_error")

	events, err := client.StreamChatCompletion(ctx, userRequest("hi"))
	require.NoError(t, err)

	_, _, err = llm.Assemble(ctx, events)
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
}

func TestLatencyHonoursContext(t *testing.T) {
	client := newTestClient(t)
	client.WithLatency(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.ChatCompletion(ctx, userRequest("hi"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	client.WithSimpleResponse("scripted")
	_, err := client.ChatCompletion(ctx, userRequest("hi"))
	require.NoError(t, err)

	client.Reset().WithSimpleResponse("a")
	client.Reset()
	assert.Empty(t, client.GetCallLog())
	assert.Nil(t, client.GetLastCall())

	resp, err := client.ChatCompletion(ctx, userRequest("hi"))
	require.NoError(t, err)
	msg, _ := resp.FirstMessage()
	assert.Equal(t, DefaultReply, msg.GetText())
}
