// Package openai provides an llm.Client for OpenAI and OpenAI-compatible
// inference providers.
//
// Streaming responses are decoded chunk by chunk with llm.ParseChunk, which
// preserves the difference between empty and absent fields and accepts
// reasoning text under both "reasoning_content" and "reasoning". The stream
// ends with a done event carrying the last finish reason the provider sent.
package openai
