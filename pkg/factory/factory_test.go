package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthetic-lab/synbad/pkg/llm"
)

func TestCreateClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   llm.ClientConfig
		wantCode string
	}{
		{
			name:     "missing model",
			config:   llm.ClientConfig{Provider: "mock"},
			wantCode: "missing_model",
		},
		{
			name:     "unsupported provider",
			config:   llm.ClientConfig{Provider: "unsupported", Model: "some-model"},
			wantCode: "unsupported_provider",
		},
		{
			name:   "mock provider",
			config: llm.ClientConfig{Provider: "mock", Model: "test-model"},
		},
		{
			name:   "provider name is case insensitive",
			config: llm.ClientConfig{Provider: "MOCK", Model: "test-model"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := New().CreateClient(tt.config)
			if tt.wantCode != "" {
				var llmErr *llm.Error
				require.ErrorAs(t, err, &llmErr)
				assert.Equal(t, tt.wantCode, llmErr.Code)
				assert.Equal(t, "validation_error", llmErr.Type)
				return
			}

			require.NoError(t, err)
			defer client.Close()
			assert.Equal(t, "test-model", client.GetModelInfo().Name)
		})
	}
}

func TestDefaultProviderIsOpenAI(t *testing.T) {
	t.Parallel()

	// the openai constructor rejects a missing key, which proves it was selected
	_, err := New().CreateClient(llm.ClientConfig{Model: "gpt-4o"})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "missing_api_key", llmErr.Code)
}

func TestListProviders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"deepseek", "mock", "openai", "openrouter"}, ListProviders())
}

func TestMockClientStreams(t *testing.T) {
	t.Parallel()

	client, err := New().CreateClient(llm.ClientConfig{Provider: "mock", Model: "test-model"})
	require.NoError(t, err)

	ctx := context.Background()
	events, err := client.StreamChatCompletion(ctx, llm.ChatRequest{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
	})
	require.NoError(t, err)

	msg, _, err := llm.Assemble(ctx, events)
	require.NoError(t, err)
	assert.NoError(t, msg.Validate())
}
