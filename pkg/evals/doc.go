// Package evals holds the built-in evals and the runner that executes them
// against an llm.Client.
//
// An eval is a fixed chat request plus a test over the assistant message the
// provider returns. Evals are named "<group>/<name>", for example
// "tools/simple-tool"; the reasoning group only makes sense for reasoning
// models and can be skipped.
package evals
