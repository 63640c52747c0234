package llm

import "strings"

// DeltaAccumulator folds the wire deltas of one streamed completion, in arrival
// order, into the message a non-streaming call would have returned.
//
// Only one tool call is buffered at a time: fragments of a given call are
// assumed to arrive contiguously, and a fragment whose index differs from the
// active one closes the active call. Index values are compared for equality
// only, so tool calls come out in the order their slots were opened.
//
// A DeltaAccumulator is owned by a single stream consumer and is not safe for
// concurrent use.
type DeltaAccumulator struct {
	content          optionalText
	reasoningContent optionalText
	finished         []ToolCall

	activeIndex int
	active      *toolCallBuffer
}

// toolCallBuffer collects the fragments of the active tool call
type toolCallBuffer struct {
	id        *string
	name      optionalText
	arguments optionalText
}

// optionalText is an append-only string that distinguishes "never written"
// from "written empty"
type optionalText struct {
	set bool
	buf strings.Builder
}

// NewDeltaAccumulator creates an accumulator for one stream
func NewDeltaAccumulator() *DeltaAccumulator {
	return &DeltaAccumulator{}
}

// Absorb applies one wire delta. It never fails: a nil delta or absent fields
// are no-ops.
func (a *DeltaAccumulator) Absorb(delta *WireDelta) {
	if delta == nil {
		return
	}

	if delta.Content != nil {
		a.content.append(*delta.Content)
	}

	if reasoning := delta.ReasoningFragment(); reasoning != nil {
		a.reasoningContent.append(*reasoning)
	}

	for _, fragment := range delta.ToolCalls {
		a.absorbToolCall(fragment)
	}
}

func (a *DeltaAccumulator) absorbToolCall(fragment ToolCallFragment) {
	switch {
	case a.active == nil:
		a.activeIndex = fragment.Index
		a.active = &toolCallBuffer{}
	case fragment.Index != a.activeIndex:
		a.finished = append(a.finished, a.active.toolCall())
		a.activeIndex = fragment.Index
		a.active = &toolCallBuffer{}
	}

	if fragment.ID != nil {
		id := *fragment.ID
		a.active.id = &id
	}
	if fragment.Name != nil {
		a.active.name.append(*fragment.Name)
	}
	if fragment.Arguments != nil {
		a.active.arguments.append(*fragment.Arguments)
	}
}

// Finalize flushes the pending tool call and returns the assembled message.
// It must be called exactly once, after the stream has ended; calling it
// early would close an in-progress tool call as though it were complete.
func (a *DeltaAccumulator) Finalize() AssembledMessage {
	toolCalls := a.finished
	if a.active != nil {
		toolCalls = append(toolCalls, a.active.toolCall())
	}

	msg := AssembledMessage{
		Content:          a.content.value(),
		ReasoningContent: a.reasoningContent.value(),
	}
	if len(toolCalls) > 0 {
		msg.ToolCalls = toolCalls
	}
	return msg
}

// toolCall converts the buffer into a finalized call. Fields that never
// received a fragment are left empty rather than synthesized.
func (b *toolCallBuffer) toolCall() ToolCall {
	call := ToolCall{Type: ToolTypeFunction}
	if b.id != nil {
		call.ID = *b.id
	}
	call.Function.Name = b.name.buf.String()
	call.Function.Arguments = b.arguments.buf.String()
	return call
}

func (t *optionalText) append(fragment string) {
	t.set = true
	t.buf.WriteString(fragment)
}

// value returns the accumulated text, or nil when nothing was ever appended
func (t *optionalText) value() *string {
	if !t.set {
		return nil
	}
	s := t.buf.String()
	return &s
}
