// Error types and handling
package llm

import (
	"errors"
	"fmt"
)

// ErrIncompleteStream is returned when an event stream closes before the
// transport signalled completion
var ErrIncompleteStream = errors.New("stream ended before completion")

// Error represents a standardized LLM error
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// ContractError reports a message that does not satisfy the message shape contract
type ContractError struct {
	Role   MessageRole
	Detail string
}

func (e *ContractError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("invalid message: %s", e.Detail)
	}
	return fmt.Sprintf("invalid %s message: %s", e.Role, e.Detail)
}
