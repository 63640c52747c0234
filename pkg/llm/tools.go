// Tool and tool call types and functionality
package llm

import (
	"encoding/json"
	"fmt"
)

// ToolTypeFunction is the only tool type chat completions define
const ToolTypeFunction = "function"

// Tool represents a function tool that can be called by the LLM
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction defines the function specification for a tool
type ToolFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
	Strict      *bool  `json:"strict,omitempty"`
}

// ToolCall represents a tool call made by the LLM.
// A call assembled from a stream that never received an id carries an empty ID,
// which is omitted when serialized.
type ToolCall struct {
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction represents the function call details
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// FunctionCall is the legacy single function call carried by assistant messages
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool choice modes
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceNone     = "none"
	ToolChoiceRequired = "required"
)

// ToolChoice selects how the model may use tools. Either Mode is set
// ("auto", "none", "required") or Function names the one function to call.
type ToolChoice struct {
	Mode     string
	Function string
}

// NewFunctionTool creates a function tool
func NewFunctionTool(name, description string, parameters any) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: ToolFunction{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// MarshalJSON encodes the choice as a bare mode string or as a function selector
func (c ToolChoice) MarshalJSON() ([]byte, error) {
	if c.Function != "" {
		return json.Marshal(map[string]any{
			"type":     ToolTypeFunction,
			"function": map[string]string{"name": c.Function},
		})
	}
	return json.Marshal(c.Mode)
}

// UnmarshalJSON accepts either encoding produced by MarshalJSON
func (c *ToolChoice) UnmarshalJSON(data []byte) error {
	var mode string
	if err := json.Unmarshal(data, &mode); err == nil {
		*c = ToolChoice{Mode: mode}
		return nil
	}

	var fn struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &fn); err != nil {
		return fmt.Errorf("invalid tool_choice: %w", err)
	}
	*c = ToolChoice{Function: fn.Function.Name}
	return nil
}

// Value returns the choice in the shape OpenAI-compatible SDKs accept for their
// untyped tool_choice fields
func (c ToolChoice) Value() any {
	if c.Function != "" {
		return map[string]any{
			"type":     ToolTypeFunction,
			"function": map[string]string{"name": c.Function},
		}
	}
	return c.Mode
}
