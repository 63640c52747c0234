package evals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

func lookup(t *testing.T, name string) Eval {
	t.Helper()
	evals, err := Select(name, false)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	return evals[0]
}

func call(name, arguments string) llm.ToolCall {
	return llm.ToolCall{
		ID:   "call-1",
		Type: llm.ToolTypeFunction,
		Function: llm.ToolCallFunction{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func TestEvalChecks(t *testing.T) {
	tests := []struct {
		eval string
		name string
		msg  llm.AssembledMessage
		pass bool
	}{
		{
			eval: "tools/simple-tool",
			name: "paris",
			msg:  llm.AssembledMessage{ToolCalls: []llm.ToolCall{call("get_weather", `{"location":"Paris, France"}`)}},
			pass: true,
		},
		{
			eval: "tools/simple-tool",
			name: "no tool call",
			msg:  llm.AssembledMessage{Content: llm.String("It is sunny in Paris")},
		},
		{
			eval: "tools/simple-tool",
			name: "two calls",
			msg: llm.AssembledMessage{ToolCalls: []llm.ToolCall{
				call("get_weather", `{"location":"Paris"}`),
				call("get_weather", `{"location":"Paris"}`),
			}},
		},
		{
			eval: "tools/simple-tool",
			name: "wrong city",
			msg:  llm.AssembledMessage{ToolCalls: []llm.ToolCall{call("get_weather", `{"location":"London"}`)}},
		},
		{
			eval: "tools/simple-tool",
			name: "truncated arguments",
			msg:  llm.AssembledMessage{ToolCalls: []llm.ToolCall{call("get_weather", `{"location":"Par`)}},
		},
		{
			eval: "tools/multi-turn-tools",
			name: "las vegas among several",
			msg: llm.AssembledMessage{ToolCalls: []llm.ToolCall{
				call("get_weather", `{"location":"Paris, Texas"}`),
				call("get_weather", `{"location":"Las Vegas, NV"}`),
			}},
			pass: true,
		},
		{
			eval: "tools/multi-turn-tools",
			name: "repeats paris",
			msg:  llm.AssembledMessage{ToolCalls: []llm.ToolCall{call("get_weather", `{"location":"Paris, Texas"}`)}},
		},
		{
			eval: "tools/tool-dash-underscore",
			name: "exact name",
			msg: llm.AssembledMessage{
				Content:   llm.String(""),
				ToolCalls: []llm.ToolCall{call("get-weather__v1", `{"location":"paris"}`)},
			},
			pass: true,
		},
		{
			eval: "tools/tool-dash-underscore",
			name: "normalized name",
			msg:  llm.AssembledMessage{ToolCalls: []llm.ToolCall{call("get_weather__v1", `{"location":"paris"}`)}},
		},
		{
			eval: "tools/tool-dash-underscore",
			name: "call leaked into content",
			msg: llm.AssembledMessage{
				Content:   llm.String(`<tool>get_weather(location="paris")</tool>`),
				ToolCalls: []llm.ToolCall{call("get-weather__v1", `{"location":"paris"}`)},
			},
		},
		{
			eval: "tools/tool-path-corruption",
			name: "intact path",
			msg:  llm.AssembledMessage{ToolCalls: []llm.ToolCall{call("read", `{"filePath":"/development/evals/reasoning/Scratch/reasoning-claude-tool-call.ts"}`)}},
			pass: true,
		},
		{
			eval: "tools/tool-path-corruption",
			name: "corrupted path",
			msg:  llm.AssembledMessage{ToolCalls: []llm.ToolCall{call("read", `{"filePath":"/development/evals/reasoning/scratch/reasoning-claude-tool-call.ts"}`)}},
		},
		{
			eval: "tools/tool-path-corruption",
			name: "path not a string",
			msg:  llm.AssembledMessage{ToolCalls: []llm.ToolCall{call("read", `{"filePath":["/development"]}`)}},
		},
		{
			eval: "reasoning/reasoning-parsing",
			name: "empty reasoning is present",
			msg:  llm.AssembledMessage{Content: llm.String("2"), ReasoningContent: llm.String("")},
			pass: true,
		},
		{
			eval: "reasoning/reasoning-parsing",
			name: "no reasoning",
			msg:  llm.AssembledMessage{Content: llm.String("2")},
		},
		{
			eval: "reasoning/multiturn-reasoning-parsing",
			name: "reasoning",
			msg:  llm.AssembledMessage{Content: llm.String("Peano"), ReasoningContent: llm.String("deeper")},
			pass: true,
		},
		{
			eval: "reasoning/reasoning-claude-tool-call",
			name: "one call",
			msg:  llm.AssembledMessage{ToolCalls: []llm.ToolCall{call("Bash", `{"command":"git status"}`)}},
			pass: true,
		},
		{
			eval: "reasoning/reasoning-claude-tool-call",
			name: "call only inside reasoning",
			msg:  llm.AssembledMessage{ReasoningContent: llm.String(`Bash({"command":"git status"})`), Content: llm.String("")},
		},
		{
			eval: "reasoning/response-in-reasoning",
			name: "reasoning and content",
			msg:  llm.AssembledMessage{ReasoningContent: llm.String("greet"), Content: llm.String("Hi!")},
			pass: true,
		},
		{
			eval: "reasoning/response-in-reasoning",
			name: "reasoning and tool call",
			msg: llm.AssembledMessage{
				ReasoningContent: llm.String("explore first"),
				ToolCalls:        []llm.ToolCall{call("task", `{"description":"explore","prompt":"look","subagent_type":"explore"}`)},
			},
			pass: true,
		},
		{
			eval: "reasoning/response-in-reasoning",
			name: "answer swallowed by reasoning",
			msg:  llm.AssembledMessage{ReasoningContent: llm.String("Hi!")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.eval+"/"+tt.name, func(t *testing.T) {
			err := lookup(t, tt.eval).Test(tt.msg)
			if tt.pass {
				assert.NoError(t, err)
				return
			}
			var assertErr *AssertionError
			assert.ErrorAs(t, err, &assertErr)
		})
	}
}
