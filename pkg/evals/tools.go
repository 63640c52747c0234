package evals

import (
	"regexp"
	"strings"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

type weatherArgs struct {
	Location string `json:"location" required:"true" description:"City name"`
}

type readArgs struct {
	FilePath string `json:"filePath" required:"true" description:"Path to file to read"`
}

const weatherDescription = "Get current weather for a location"

const corruptiblePath = "/development/evals/reasoning/Scratch/reasoning-claude-tool-call.ts"

var (
	parisPattern    = regexp.MustCompile(`paris`)
	lasVegasPattern = regexp.MustCompile(`las vegas`)
	leakedToolName  = regexp.MustCompile(`get_weather`)
)

func init() {
	register(GroupTools, "simple-tool", llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "What's the weather in Paris?"),
		},
		Tools:             []llm.Tool{llm.MustFunctionToolFromStruct("get_weather", weatherDescription, weatherArgs{})},
		ParallelToolCalls: boolPtr(true),
		ToolChoice:        &llm.ToolChoice{Mode: llm.ToolChoiceAuto},
	}, func(msg llm.AssembledMessage) error {
		return singleWeatherCall(msg, "get_weather")
	})

	register(GroupTools, "multi-turn-tools", llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "What's the weather in Paris?"),
			llm.NewToolCallMessage(weatherCall("gw1", `{"location":"Paris, France"}`)),
			llm.NewToolResultMessage("gw1", "The weather in Paris is 24 degrees Celsius"),
			llm.NewTextMessage(llm.RoleAssistant, "I've looked up the weather in Paris, and it's a comfy 24 degrees Celsius today."),
			llm.NewTextMessage(llm.RoleUser, "I meant Paris, Texas"),
			llm.NewToolCallMessage(weatherCall("gw2", `{"location":"Paris, Texas"}`)),
			llm.NewToolResultMessage("gw2", "The weather in Paris, Texas is 34 degrees Celsius"),
			llm.NewTextMessage(llm.RoleAssistant, "I've looked up the weather in Paris, Texas and it's a scorching 24 degrees Celsius today."),
			llm.NewTextMessage(llm.RoleUser, "How about Las Vegas"),
		},
		Tools:             []llm.Tool{llm.MustFunctionToolFromStruct("get_weather", weatherDescription, weatherArgs{})},
		ParallelToolCalls: boolPtr(true),
		ToolChoice:        &llm.ToolChoice{Mode: llm.ToolChoiceAuto},
	}, func(msg llm.AssembledMessage) error {
		if err := IsNotEmpty(msg.ToolCalls, "tool_calls"); err != nil {
			return err
		}
		if err := GTE(len(msg.ToolCalls), 1, "tool call count"); err != nil {
			return err
		}
		for _, call := range msg.ToolCalls {
			if call.Type != llm.ToolTypeFunction || call.Function.Name != "get_weather" {
				continue
			}
			args, err := ParseArguments(call.Function.Arguments)
			if err != nil {
				continue
			}
			if location, ok := args["location"].(string); ok && lasVegasPattern.MatchString(strings.ToLower(location)) {
				return nil
			}
		}
		return &AssertionError{
			Message: "at least one tool call must be get_weather({ location: 'las vegas' })",
			Actual:  msg.ToolCalls,
		}
	})

	register(GroupTools, "tool-dash-underscore", llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "What's the weather in Paris?"),
		},
		Tools:      []llm.Tool{llm.MustFunctionToolFromStruct("get-weather__v1", weatherDescription, weatherArgs{})},
		ToolChoice: &llm.ToolChoice{Mode: llm.ToolChoiceAuto},
	}, func(msg llm.AssembledMessage) error {
		if err := singleWeatherCall(msg, "get-weather__v1"); err != nil {
			return err
		}
		// the call must not leak into the text
		return DoesNotMatch(msg.GetText(), leakedToolName)
	})

	readTool := llm.MustFunctionToolFromStruct("read", "The read tool", readArgs{})
	readTool.Function.Strict = boolPtr(true)

	register(GroupTools, "tool-path-corruption", llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "Read and summarize the file "+corruptiblePath),
		},
		Tools: []llm.Tool{readTool},
	}, func(msg llm.AssembledMessage) error {
		call, err := singleCall(msg, "read")
		if err != nil {
			return err
		}
		args, err := ParseArguments(call.Function.Arguments)
		if err != nil {
			return err
		}
		return StringContains(args["filePath"], corruptiblePath)
	})
}

// singleCall checks that msg carries exactly one function call named name
func singleCall(msg llm.AssembledMessage, name string) (llm.ToolCall, error) {
	if err := IsNotEmpty(msg.ToolCalls, "tool_calls"); err != nil {
		return llm.ToolCall{}, err
	}
	call := msg.ToolCalls[0]
	return call, Check(
		Equal(len(msg.ToolCalls), 1, "tool call count"),
		Equal(call.Type, llm.ToolTypeFunction, "tool call type"),
		Equal(call.Function.Name, name, "tool name"),
	)
}

// singleWeatherCall checks for one weather call whose location mentions Paris
func singleWeatherCall(msg llm.AssembledMessage, name string) error {
	call, err := singleCall(msg, name)
	if err != nil {
		return err
	}
	args, err := ParseArguments(call.Function.Arguments)
	if err != nil {
		return err
	}
	location, ok := args["location"].(string)
	if !ok {
		return &AssertionError{Message: "expected a string location argument", Actual: args["location"]}
	}
	return Matches(strings.ToLower(location), parisPattern)
}

func weatherCall(id, arguments string) llm.ToolCall {
	return llm.ToolCall{
		ID:   id,
		Type: llm.ToolTypeFunction,
		Function: llm.ToolCallFunction{
			Name:      "get_weather",
			Arguments: arguments,
		},
	}
}

func boolPtr(b bool) *bool { return &b }

func float32Ptr(f float32) *float32 { return &f }

func intPtr(i int) *int { return &i }
