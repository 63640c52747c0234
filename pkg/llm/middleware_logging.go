package llm

import (
	"context"
	"log/slog"
)

// LoggingMiddleware records requests, responses and a summary of each stream
// event. Message bodies are never logged, only their sizes.
type LoggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware creates a logging middleware. A nil logger falls back to slog.Default().
func NewLoggingMiddleware(logger *slog.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingMiddleware{logger: logger}
}

func (m *LoggingMiddleware) Name() string { return "logging" }

func (m *LoggingMiddleware) ProcessRequest(ctx context.Context, req *ChatRequest) (*ChatRequest, error) {
	m.logger.DebugContext(ctx, "chat request",
		"model", req.Model,
		"messages", len(req.Messages),
		"tools", len(req.Tools),
		"stream", req.Stream,
	)
	return req, nil
}

func (m *LoggingMiddleware) ProcessResponse(ctx context.Context, req *ChatRequest, resp *ChatResponse, err error) (*ChatResponse, error) {
	switch {
	case err != nil:
		m.logger.WarnContext(ctx, "chat request failed", "model", req.Model, "error", err)
	case resp != nil:
		m.logger.DebugContext(ctx, "chat response",
			"model", resp.Model,
			"choices", len(resp.Choices),
			"tool_calls", len(resp.GetToolCalls()),
			"total_tokens", resp.Usage.TotalTokens,
		)
	}
	return resp, err
}

func (m *LoggingMiddleware) ProcessStreamEvent(ctx context.Context, req *ChatRequest, event StreamEvent) (StreamEvent, error) {
	switch {
	case event.IsError():
		m.logger.WarnContext(ctx, "stream error", "model", req.Model, "error", event.Error)
	case event.IsDone():
		m.logger.DebugContext(ctx, "stream done", "model", req.Model, "finish_reason", event.FinishReason)
	case event.IsDelta() && event.Delta != nil:
		attrs := []any{"tool_call_fragments", len(event.Delta.ToolCalls)}
		if event.Delta.Content != nil {
			attrs = append(attrs, "content_bytes", len(*event.Delta.Content))
		}
		if reasoning := event.Delta.ReasoningFragment(); reasoning != nil {
			attrs = append(attrs, "reasoning_bytes", len(*reasoning))
		}
		m.logger.DebugContext(ctx, "stream delta", attrs...)
	}
	return event, nil
}
