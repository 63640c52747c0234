package llm

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// contractDocument maps each message role to the JSON Schema of its variant
//
//go:embed contract.json
var contractDocument []byte

var (
	contractOnce    sync.Once
	contractSchemas map[MessageRole]*jsonschema.Schema
	contractErr     error
)

// loadContract compiles the per-role schemas once per process
func loadContract() (map[MessageRole]*jsonschema.Schema, error) {
	contractOnce.Do(func() {
		var variants map[string]json.RawMessage
		if err := json.Unmarshal(contractDocument, &variants); err != nil {
			contractErr = fmt.Errorf("decode message contract: %w", err)
			return
		}

		schemas := make(map[MessageRole]*jsonschema.Schema, len(variants))
		for role, doc := range variants {
			compiler := jsonschema.NewCompiler()
			schema, err := compiler.Compile(doc)
			if err != nil {
				contractErr = fmt.Errorf("compile %s message schema: %w", role, err)
				return
			}
			schemas[MessageRole(role)] = schema
		}
		contractSchemas = schemas
	})
	return contractSchemas, contractErr
}

// ValidateMessageJSON checks one encoded chat message against the variant of
// its role. It returns a *ContractError when the message is malformed.
func ValidateMessageJSON(data []byte) error {
	schemas, err := loadContract()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &ContractError{Detail: fmt.Sprintf("not valid JSON: %v", err)}
	}
	obj, ok := instance.(map[string]any)
	if !ok {
		return &ContractError{Detail: "message must be a JSON object"}
	}

	roleName, _ := obj["role"].(string)
	role := MessageRole(roleName)
	schema, ok := schemas[role]
	if !ok {
		return &ContractError{Detail: fmt.Sprintf("unknown role %q", roleName)}
	}

	result := schema.Validate(obj)
	if !result.IsValid() {
		return &ContractError{Role: role, Detail: fmt.Sprintf("%s", result.Error())}
	}
	return nil
}

// Validate checks the message against the variant of its role
func (m Message) Validate() error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return ValidateMessageJSON(data)
}

// Validate checks the assembled message against the assistant variant: content
// may only be absent when at least one tool call is present, and every tool
// call needs an id, a name and arguments.
func (m AssembledMessage) Validate() error {
	return m.AsMessage().Validate()
}

// Validate checks the request-level rules: every message satisfies the
// contract, tools are named functions, and the tool choice and reasoning
// effort take known values.
func (r ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return &ContractError{Detail: "request has no messages"}
	}
	for i, msg := range r.Messages {
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}

	for i, tool := range r.Tools {
		if tool.Type != ToolTypeFunction {
			return fmt.Errorf("tool %d: unsupported type %q", i, tool.Type)
		}
		if tool.Function.Name == "" {
			return fmt.Errorf("tool %d: function name is required", i)
		}
	}

	if r.ToolChoice != nil && r.ToolChoice.Function == "" {
		switch r.ToolChoice.Mode {
		case ToolChoiceAuto, ToolChoiceNone, ToolChoiceRequired:
		default:
			return fmt.Errorf("unsupported tool_choice %q", r.ToolChoice.Mode)
		}
	}

	switch r.ReasoningEffort {
	case "", ReasoningEffortLow, ReasoningEffortMedium, ReasoningEffortHigh:
	default:
		return fmt.Errorf("unsupported reasoning_effort %q", r.ReasoningEffort)
	}

	return nil
}
