// Package mock provides a scripted llm.Client for tests and offline runs.
//
// Responses, stream event scripts, raw chunk scripts and errors are queued
// with the With* helpers and consumed in order; every request is recorded in a
// call log. When nothing is queued the client answers with a short canned
// reply, calling the first offered tool if there is one.
package mock
