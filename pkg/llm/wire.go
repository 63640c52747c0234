package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type jsonObject map[string]json.RawMessage

// ParseChunk decodes one streamed chat.completion.chunk document and returns
// the delta of its first choice together with that choice's finish reason.
//
// Decoding is tolerant: a field holding an unexpected JSON type is treated as
// absent, and a tool call fragment without a usable integer index is given
// index 0. The returned delta is nil when the chunk carries no choice or no
// delta object, as with usage-only chunks. An error is returned only when the
// document is not JSON at all.
func ParseChunk(data []byte) (*WireDelta, string, error) {
	var chunk jsonObject
	if err := json.Unmarshal(data, &chunk); err != nil {
		var anything any
		if json.Unmarshal(data, &anything) != nil {
			return nil, "", fmt.Errorf("decode chunk: %w", err)
		}
		// valid JSON, but not an object
		return nil, "", nil
	}

	choice := firstObject(chunk["choices"])
	if choice == nil {
		return nil, "", nil
	}

	finishReason := ""
	if reason := stringField(choice, "finish_reason"); reason != nil {
		finishReason = *reason
	}

	deltaObj := object(choice["delta"])
	if deltaObj == nil {
		return nil, finishReason, nil
	}

	delta := &WireDelta{
		Content:          stringField(deltaObj, "content"),
		ReasoningContent: stringField(deltaObj, "reasoning_content"),
		Reasoning:        stringField(deltaObj, "reasoning"),
	}

	var rawCalls []json.RawMessage
	if raw, ok := deltaObj["tool_calls"]; ok && json.Unmarshal(raw, &rawCalls) == nil {
		for _, rawCall := range rawCalls {
			call := object(rawCall)
			if call == nil {
				continue
			}
			fragment := ToolCallFragment{
				ID: stringField(call, "id"),
			}
			if index := intField(call, "index"); index != nil {
				fragment.Index = *index
			}
			if fn := object(call["function"]); fn != nil {
				fragment.Name = stringField(fn, "name")
				fragment.Arguments = stringField(fn, "arguments")
			}
			delta.ToolCalls = append(delta.ToolCalls, fragment)
		}
	}

	return delta, finishReason, nil
}

// ParseCompletion decodes a non-streamed chat.completion document and returns
// the message of every choice, in choice order. Content and reasoning keep the
// absent-vs-empty distinction, and reasoning resolves through the same field
// precedence as streamed deltas. A choice without a message object yields a
// nil entry.
func ParseCompletion(data []byte) ([]*AssembledMessage, error) {
	var doc jsonObject
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}

	var choices []json.RawMessage
	if raw, ok := doc["choices"]; !ok || json.Unmarshal(raw, &choices) != nil {
		return nil, nil
	}

	messages := make([]*AssembledMessage, 0, len(choices))
	for _, rawChoice := range choices {
		msgObj := object(object(rawChoice)["message"])
		if msgObj == nil {
			messages = append(messages, nil)
			continue
		}

		fields := WireDelta{
			Content:          stringField(msgObj, "content"),
			ReasoningContent: stringField(msgObj, "reasoning_content"),
			Reasoning:        stringField(msgObj, "reasoning"),
		}
		msg := &AssembledMessage{
			Content:          fields.Content,
			ReasoningContent: fields.ReasoningFragment(),
		}

		var rawCalls []json.RawMessage
		if raw, ok := msgObj["tool_calls"]; ok && json.Unmarshal(raw, &rawCalls) == nil {
			for _, rawCall := range rawCalls {
				call := object(rawCall)
				if call == nil {
					continue
				}
				toolCall := ToolCall{Type: ToolTypeFunction}
				if id := stringField(call, "id"); id != nil {
					toolCall.ID = *id
				}
				if fn := object(call["function"]); fn != nil {
					if name := stringField(fn, "name"); name != nil {
						toolCall.Function.Name = *name
					}
					if args := stringField(fn, "arguments"); args != nil {
						toolCall.Function.Arguments = *args
					}
				}
				msg.ToolCalls = append(msg.ToolCalls, toolCall)
			}
		}

		messages = append(messages, msg)
	}

	return messages, nil
}

// object decodes raw as a JSON object, returning nil for anything else
func object(raw json.RawMessage) jsonObject {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var obj jsonObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

// firstObject returns the first element of a JSON array when it is an object
func firstObject(raw json.RawMessage) jsonObject {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || len(items) == 0 {
		return nil
	}
	return object(items[0])
}

func stringField(obj jsonObject, name string) *string {
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func intField(obj jsonObject, name string) *int {
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
