package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventChannel(events ...StreamEvent) <-chan StreamEvent {
	ch := make(chan StreamEvent, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}

func TestAssemble(t *testing.T) {
	msg, finishReason, err := Assemble(context.Background(), eventChannel(
		NewDeltaEvent(&WireDelta{Content: String("Sky")}),
		NewDeltaEvent(nil),
		NewDeltaEvent(&WireDelta{Content: String(" is")}),
		NewDeltaEvent(&WireDelta{Content: String(" blue")}),
		NewDoneEvent(FinishReasonStop),
	))
	require.NoError(t, err)
	assert.Equal(t, "Sky is blue", msg.GetText())
	assert.Equal(t, FinishReasonStop, finishReason)
}

func TestAssemble_IgnoresDeltasAfterDone(t *testing.T) {
	msg, _, err := Assemble(context.Background(), eventChannel(
		NewDeltaEvent(&WireDelta{Content: String("a")}),
		NewDoneEvent(FinishReasonStop),
		NewDeltaEvent(&WireDelta{Content: String("b")}),
	))
	require.NoError(t, err)
	assert.Equal(t, "a", msg.GetText())
}

func TestAssemble_Failures(t *testing.T) {
	t.Run("error event discards partial state", func(t *testing.T) {
		msg, _, err := Assemble(context.Background(), eventChannel(
			NewDeltaEvent(&WireDelta{Content: String("partial")}),
			NewErrorEvent(&Error{Code: "stream_error", Message: "connection reset"}),
		))
		assert.Nil(t, msg)
		var llmErr *Error
		require.ErrorAs(t, err, &llmErr)
		assert.Equal(t, "stream_error", llmErr.Code)
	})

	t.Run("closed without done", func(t *testing.T) {
		msg, _, err := Assemble(context.Background(), eventChannel(
			NewDeltaEvent(&WireDelta{ToolCalls: []ToolCallFragment{{Index: 0, Name: String("get_")}}}),
		))
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, ErrIncompleteStream)
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// never closed, so only the context can end the wait
		events := make(chan StreamEvent)
		msg, _, err := Assemble(ctx, events)
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAssemble_CancelledWhileClosing(t *testing.T) {
	// both the context and the channel are ready; the outcome must not depend on select order
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		events := make(chan StreamEvent, 1)
		events <- NewDeltaEvent(&WireDelta{Content: String("partial")})
		close(events)

		msg, _, err := Assemble(ctx, events)
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, msg)
	}
}
