// Message types and functionality
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message represents a single chat message. The legal combination of fields
// depends on Role; see Validate.
type Message struct {
	Role             MessageRole   `json:"role"`
	Content          *Content      `json:"content,omitempty"`
	Name             string        `json:"name,omitempty"`
	ToolCalls        []ToolCall    `json:"tool_calls,omitempty"`
	ToolCallID       string        `json:"tool_call_id,omitempty"`
	FunctionCall     *FunctionCall `json:"function_call,omitempty"`
	ReasoningContent *string       `json:"reasoning_content,omitempty"`
}

// MessageRole defines the role of a message sender
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
	// RoleFunction is the legacy function-result role
	RoleFunction MessageRole = "function"
)

// IsValidRole checks if the given role is one of the closed set of message roles
func IsValidRole(role MessageRole) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool, RoleFunction:
		return true
	default:
		return false
	}
}

// Content part types
const (
	ContentPartText     = "text"
	ContentPartImageURL = "image_url"
	ContentPartRefusal  = "refusal"
)

// Content is a message body: either a plain string or an ordered list of parts.
// A nil Parts slice selects the string form.
type Content struct {
	Text  string
	Parts []ContentPart
}

// ContentPart is one element of an array-form message body
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
	Refusal  string    `json:"refusal,omitempty"`
}

// ImageURL holds an image reference for multimodal content
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// MarshalJSON always emits the payload field of text and refusal parts, so an
// empty text part stays well-formed
func (p ContentPart) MarshalJSON() ([]byte, error) {
	switch p.Type {
	case ContentPartText:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{p.Type, p.Text})
	case ContentPartRefusal:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Refusal string `json:"refusal"`
		}{p.Type, p.Refusal})
	}
	type plain ContentPart
	return json.Marshal(plain(p))
}

// TextContent creates string-form content
func TextContent(text string) *Content {
	return &Content{Text: text}
}

// PartsContent creates array-form content
func PartsContent(parts ...ContentPart) *Content {
	if parts == nil {
		parts = []ContentPart{}
	}
	return &Content{Parts: parts}
}

// TextPart creates a text content part
func TextPart(text string) ContentPart {
	return ContentPart{Type: ContentPartText, Text: text}
}

// ImageURLPart creates an image_url content part
func ImageURLPart(url string) ContentPart {
	return ContentPart{Type: ContentPartImageURL, ImageURL: &ImageURL{URL: url}}
}

// IsParts reports whether the content uses the array form
func (c *Content) IsParts() bool {
	return c != nil && c.Parts != nil
}

// String returns the textual body: the string form as is, or the text and
// refusal parts joined in order
func (c *Content) String() string {
	if c == nil {
		return ""
	}
	if !c.IsParts() {
		return c.Text
	}

	var b strings.Builder
	for _, part := range c.Parts {
		switch part.Type {
		case ContentPartText:
			b.WriteString(part.Text)
		case ContentPartRefusal:
			b.WriteString(part.Refusal)
		}
	}
	return b.String()
}

// MarshalJSON encodes the content as a JSON string or array
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON decodes a JSON string or array of parts
func (c *Content) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = Content{Text: text}
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content must be a string or an array of parts: %w", err)
	}
	if parts == nil {
		parts = []ContentPart{}
	}
	*c = Content{Parts: parts}
	return nil
}

// NewTextMessage creates a message with string content
func NewTextMessage(role MessageRole, text string) Message {
	return Message{
		Role:    role,
		Content: TextContent(text),
	}
}

// NewPartsMessage creates a message with array-form content
func NewPartsMessage(role MessageRole, parts ...ContentPart) Message {
	return Message{
		Role:    role,
		Content: PartsContent(parts...),
	}
}

// NewToolCallMessage creates an assistant message that only carries tool calls
func NewToolCallMessage(toolCalls ...ToolCall) Message {
	return Message{
		Role:      RoleAssistant,
		ToolCalls: toolCalls,
	}
}

// NewToolResultMessage creates a tool-result message answering the given tool call
func NewToolResultMessage(toolCallID, text string) Message {
	return Message{
		Role:       RoleTool,
		Content:    TextContent(text),
		ToolCallID: toolCallID,
	}
}

// GetText returns the textual body of the message, or "" when it has none
func (m Message) GetText() string {
	return m.Content.String()
}

// HasToolCalls checks if the message contains any tool calls
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// GetToolCallByName returns the first tool call with the specified name
func (m Message) GetToolCallByName(name string) (*ToolCall, bool) {
	for i := range m.ToolCalls {
		if m.ToolCalls[i].Function.Name == name {
			return &m.ToolCalls[i], true
		}
	}
	return nil, false
}
