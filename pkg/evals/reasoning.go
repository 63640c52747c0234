package evals

import (
	"github.com/synthetic-lab/synbad/pkg/llm"
)

type bashArgs struct {
	Command         string  `json:"command" required:"true" description:"The command to execute"`
	Timeout         float64 `json:"timeout,omitempty" description:"Optional timeout in milliseconds (max 600000)"`
	Description     string  `json:"description,omitempty"`
	RunInBackground bool    `json:"run_in_background,omitempty" description:"Set to true to run this command in the background. Use BashOutput to read the output later."`
}

type taskArgs struct {
	Description  string `json:"description" required:"true" description:"A short (3-5 words) description of the task"`
	Prompt       string `json:"prompt" required:"true" description:"The task for the agent to perform"`
	SubagentType string `json:"subagent_type" required:"true" description:"The type of specialized agent to use for this task"`
	SessionID    string `json:"session_id,omitempty" description:"Existing Task session to continue"`
}

const bashDescription = "Executes a given bash command in a persistent shell session with optional timeout, ensuring proper handling and security measures."

const bashCommandDescription = `Clear, concise description of what this command does in 5-10 words, in active voice. Examples:
Input: ls
Output: List files in current directory

Input: git status
Output: Show working tree status

Input: npm install
Output: Install package dependencies

Input: mkdir foo
Output: Create directory 'foo'`

const taskDescription = `Launch a new agent to handle complex, multi-step tasks autonomously.

Available agent types and the tools they have access to:
- general: General-purpose agent for researching complex questions and executing multi-step tasks. Use this agent to execute multiple units of work in parallel.
- explore: Fast agent specialized for exploring codebases. Use this when you need to quickly find files by patterns (eg. "src/components/**/*.tsx"), search code for keywords (eg. "API endpoints"), or answer questions about the codebase (eg. "how do API endpoints work?"). When calling this agent, specify the desired thoroughness level: "quick" for basic searches, "medium" for moderate exploration, or "very thorough" for comprehensive analysis across multiple locations and naming conventions.
- code-reviewer: Expert code review specialist. Proactively reviews code for quality, security, and maintainability. Use immediately after writing or modifying code.

When using the Task tool, you must specify a subagent_type parameter to select which agent type to use.

When to use the Task tool:
- When you are instructed to execute custom slash commands. Use the Task tool with the slash command invocation as the entire prompt. The slash command can take arguments. For example: Task(description="Check the file", prompt="/check-file path/to/file.py")

When NOT to use the Task tool:
- If you want to read a specific file path, use the Read or Glob tool instead of the Task tool, to find the match more quickly
- If you are searching for a specific class definition like "class Foo", use the Glob tool instead, to find the match more quickly
- If you are searching for code within a specific file or set of 2-3 files, use the Read tool instead of the Task tool, to find the match more quickly
- Other tasks that are not related to the agent descriptions above


Usage notes:
1. Launch multiple agents concurrently whenever possible, to maximize performance; to do that, use a single message with multiple tool uses
2. When the agent is done, it will return a single message back to you. The result returned by the agent is not visible to the user. To show the user the result, you should send a text message back to the user with a concise summary of the result.
3. Each agent invocation is stateless unless you provide a session_id. Your prompt should contain a highly detailed task description for the agent to perform autonomously and you should specify exactly what information the agent should return back to you in its final and only message to you.
4. The agent's outputs should generally be trusted
5. Clearly tell the agent whether you expect it to write code or just to do research (search, file reads, web fetches, etc.), since it is not aware of the user's intent
6. If the agent description mentions that it should be used proactively, then you should try your best to use it without the user having to ask for it first. Use your judgement.

`

const agentSystemPrompt = "You are Claude Code, Anthropic's official CLI for Claude.\n\nYou are an interactive CLI tool that helps users with software engineering tasks. Use the instructions below and the tools available to you to assist the user."

func init() {
	register(GroupReasoning, "reasoning-parsing", llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "Why does 1+1=2?"),
		},
	}, hasReasoning)

	register(GroupReasoning, "multiturn-reasoning-parsing", llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "Why does 1+1=2?"),
			{
				Role:             llm.RoleAssistant,
				ReasoningContent: llm.String("Because it does"),
				Content:          llm.TextContent("Consider the successor function"),
			},
			llm.NewTextMessage(llm.RoleUser, "please explain that much more deeply"),
		},
	}, hasReasoning)

	bashTool := llm.MustFunctionToolFromStruct("Bash", bashDescription, bashArgs{})
	describeProperty(bashTool, "description", bashCommandDescription)

	register(GroupReasoning, "reasoning-claude-tool-call", llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleSystem, agentSystemPrompt),
			llm.NewPartsMessage(llm.RoleUser, llm.TextPart("run a quick git status for me. put the tool call inside your thinking")),
		},
		MaxTokens:       intPtr(32000),
		Temperature:     float32Ptr(1),
		ReasoningEffort: llm.ReasoningEffortHigh,
		Tools:           []llm.Tool{bashTool},
	}, func(msg llm.AssembledMessage) error {
		if err := IsNotEmpty(msg.ToolCalls, "tool_calls"); err != nil {
			return err
		}
		return Equal(len(msg.ToolCalls), 1, "tool call count")
	})

	register(GroupReasoning, "response-in-reasoning", llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleSystem, "When I ask you to add a feature or resolve a problem: ALWAYS start the project explorer sub-agent to build complete understanding"),
			llm.NewPartsMessage(llm.RoleUser, llm.TextPart("Hello")),
		},
		Temperature: float32Ptr(1),
		Tools:       []llm.Tool{llm.MustFunctionToolFromStruct("task", taskDescription, taskArgs{})},
		ToolChoice:  &llm.ToolChoice{Mode: llm.ToolChoiceAuto},
	}, func(msg llm.AssembledMessage) error {
		if err := hasReasoning(msg); err != nil {
			return err
		}
		// the answer must not be swallowed by the reasoning
		return Or(
			func() error { return IsNotNil(msg.Content, "content") },
			func() error { return IsNotEmpty(msg.ToolCalls, "tool_calls") },
		)
	})
}

func hasReasoning(msg llm.AssembledMessage) error {
	return IsNotNil(msg.ReasoningContent, "reasoning_content")
}

// describeProperty sets the description of one parameter of a reflected tool
func describeProperty(tool llm.Tool, property, description string) {
	params, ok := tool.Function.Parameters.(map[string]any)
	if !ok {
		return
	}
	props, ok := params["properties"].(map[string]any)
	if !ok {
		return
	}
	if prop, ok := props[property].(map[string]any); ok {
		prop["description"] = description
	}
}
