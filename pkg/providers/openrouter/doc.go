// Package openrouter provides an LLM client for OpenRouter built on the typed
// go-openrouter SDK.
//
// The typed stream exposes content and tool call fragments only, with empty
// strings standing for absent fields. Evals that inspect reasoning text should
// target OpenRouter through the openai provider and its base URL instead,
// which decodes raw chunks.
package openrouter
