// Package llm provides abstractions for Large Language Model clients
// stream.go defines types for streaming chat completions

package llm

// Stream event types
const (
	EventTypeDelta = "delta"
	EventTypeDone  = "done"
	EventTypeError = "error"
)

// StreamEvent represents a single event in the streaming response
type StreamEvent struct {
	Type         string     `json:"type"` // "delta", "done", "error"
	Delta        *WireDelta `json:"delta,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Error        *Error     `json:"error,omitempty"`
}

// WireDelta is the incremental update carried by one streamed chunk.
// Every field is optional: nil means "no update of that kind on this event",
// never "clear the prior value".
type WireDelta struct {
	Content *string `json:"content,omitempty"`
	// Reasoning text arrives under either of two field names depending on the
	// provider. ReasoningContent wins when both are present.
	ReasoningContent *string            `json:"reasoning_content,omitempty"`
	Reasoning        *string            `json:"reasoning,omitempty"`
	ToolCalls        []ToolCallFragment `json:"tool_calls,omitempty"`
}

// ToolCallFragment is a partial update to the tool call in slot Index
type ToolCallFragment struct {
	Index     int     `json:"index"`
	ID        *string `json:"id,omitempty"`
	Name      *string `json:"name,omitempty"`
	Arguments *string `json:"arguments,omitempty"`
}

// reasoningFields lists the wire names reasoning text may arrive under, in
// precedence order
var reasoningFields = []struct {
	name  string
	value func(*WireDelta) *string
}{
	{"reasoning_content", func(d *WireDelta) *string { return d.ReasoningContent }},
	{"reasoning", func(d *WireDelta) *string { return d.Reasoning }},
}

// ReasoningFragment returns the reasoning text of this delta resolved through
// the field precedence list, or nil when no reasoning field is present
func (d *WireDelta) ReasoningFragment() *string {
	if d == nil {
		return nil
	}
	for _, field := range reasoningFields {
		if v := field.value(d); v != nil {
			return v
		}
	}
	return nil
}

// IsEmpty reports whether the delta carries no update at all
func (d *WireDelta) IsEmpty() bool {
	return d == nil || (d.Content == nil && d.ReasoningFragment() == nil && len(d.ToolCalls) == 0)
}

// IsDelta returns true if this is a delta event
func (e StreamEvent) IsDelta() bool {
	return e.Type == EventTypeDelta
}

// IsDone returns true if this is a done event
func (e StreamEvent) IsDone() bool {
	return e.Type == EventTypeDone
}

// IsError returns true if this is an error event
func (e StreamEvent) IsError() bool {
	return e.Type == EventTypeError && e.Error != nil
}

// NewDeltaEvent creates a new delta stream event. A nil delta models a chunk
// that only conveyed stream metadata.
func NewDeltaEvent(delta *WireDelta) StreamEvent {
	return StreamEvent{
		Type:  EventTypeDelta,
		Delta: delta,
	}
}

// NewDoneEvent creates a new done stream event
func NewDoneEvent(finishReason string) StreamEvent {
	return StreamEvent{
		Type:         EventTypeDone,
		FinishReason: finishReason,
	}
}

// NewErrorEvent creates a new error stream event
func NewErrorEvent(err *Error) StreamEvent {
	return StreamEvent{
		Type:  EventTypeError,
		Error: err,
	}
}

// String returns a pointer to s, for building optional wire fields
func String(s string) *string {
	return &s
}

// NonEmpty returns a pointer to s, or nil when s is empty. Typed SDKs that
// decode into plain strings cannot report an empty field as present.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
