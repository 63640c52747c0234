// Package llm provides the provider-agnostic chat-completion types used by synbad.
//
// The main components include:
//
// - Client interface: non-streaming and streaming chat completions
// - Wire deltas: the incremental updates of a streamed completion (WireDelta, ToolCallFragment)
// - DeltaAccumulator: folds wire deltas into the message a non-streaming call returns
// - Message shape contract: role-tagged message variants validated against an embedded JSON Schema
// - Middleware: request and stream-event hooks around any Client
// - Error handling: standardized error types
//
// Provider implementations are located in separate packages under /pkg/providers/
// to maintain clean separation of concerns and avoid import cycles.
package llm
