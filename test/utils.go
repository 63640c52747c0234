// Package test holds integration tests that talk to a real inference provider.
//
// They are skipped unless SYNBAD_API_KEY is set. SYNBAD_BASE_URL, SYNBAD_MODEL
// and SYNBAD_PROVIDER select the endpoint, model and client implementation.
package test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/synthetic-lab/synbad/pkg/factory"
	"github.com/synthetic-lab/synbad/pkg/llm"
)

const defaultTestModel = "gpt-4o-mini"

// createTestClient creates a client from the SYNBAD_* environment, skipping
// the test when no API key is configured
func createTestClient(t *testing.T) llm.Client {
	t.Helper()
	return createTestClientWithTimeout(t, 0)
}

// createTestClientWithTimeout is createTestClient with a custom timeout
func createTestClientWithTimeout(t *testing.T, timeout time.Duration) llm.Client {
	t.Helper()

	if os.Getenv("SYNBAD_API_KEY") == "" {
		t.Skip("SYNBAD_API_KEY not set, skipping integration test")
	}

	model := os.Getenv("SYNBAD_MODEL")
	if model == "" {
		model = defaultTestModel
	}
	config, err := llm.ConfigFromEnv("SYNBAD_API_KEY", os.Getenv("SYNBAD_BASE_URL"), model)
	require.NoError(t, err)
	if provider := os.Getenv("SYNBAD_PROVIDER"); provider != "" {
		config.Provider = provider
	}
	if timeout > 0 {
		config.Timeout = timeout
	}

	client, err := factory.New().CreateClient(config)
	require.NoError(t, err, "Failed to create LLM client")
	require.NotNil(t, client, "Client should not be nil")

	info := client.GetModelInfo()
	t.Logf("Using %s provider with model %s", info.Provider, info.Name)

	return client
}

// weatherTool is the tool used by the tool-calling tests
func weatherTool() llm.Tool {
	type weatherArgs struct {
		Location string `json:"location" required:"true" description:"City name"`
	}
	return llm.MustFunctionToolFromStruct("get_weather", "Get current weather for a location", weatherArgs{})
}
