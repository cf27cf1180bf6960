package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestNewWithoutAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := New()
	assert.ErrorIs(t, err, ErrNotSetAuth)
}

func TestNewWithOptions(t *testing.T) {
	llm, err := New(
		WithAPIKey("test-key"),
		WithModel(ModelNameGPT4o),
	)
	require.NoError(t, err)
	assert.Equal(t, ModelNameGPT4o, llm.model)
}

func TestGetModelString(t *testing.T) {
	llm, err := New(WithAPIKey("test-key"), WithModel(ModelNameGPT4oMini))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", llm.getModelString(llms.CallOptions{}))
	// Per-call model overrides the default.
	assert.Equal(t, "gpt-4o", llm.getModelString(llms.CallOptions{Model: "gpt-4o"}))
}

func TestConvertMessages(t *testing.T) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: "You are a helpful assistant."}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: "hi"}},
		},
		{
			Role: llms.ChatMessageTypeAI,
			Parts: []llms.ContentPart{
				llms.ToolCall{
					ID:   "call-1",
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      "lookup",
						Arguments: `{"q":"weather"}`,
					},
				},
			},
		},
		{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{ToolCallID: "call-1", Name: "lookup", Content: "sunny"},
			},
		},
	}

	converted := convertMessages(messages)
	require.Len(t, converted, 4)

	assert.Equal(t, "system", converted[0].Role)
	assert.Equal(t, "You are a helpful assistant.", converted[0].Content)

	assert.Equal(t, "user", converted[1].Role)

	assert.Equal(t, "assistant", converted[2].Role)
	require.Len(t, converted[2].ToolCalls, 1)
	assert.Equal(t, "lookup", converted[2].ToolCalls[0].Function.Name)

	assert.Equal(t, "tool", converted[3].Role)
	assert.Equal(t, "call-1", converted[3].ToolCallID)
	assert.Equal(t, "sunny", converted[3].Content)
}

func TestConvertTools(t *testing.T) {
	tools := []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "create_surface",
				Description: "Create a UI surface",
				Parameters: map[string]any{
					"type": "object",
				},
			},
		},
		{Type: "function"}, // nil Function is skipped
	}

	converted := convertTools(tools)
	require.Len(t, converted, 1)
	assert.Equal(t, "create_surface", converted[0].Function.Name)

	assert.Nil(t, convertTools(nil))
}
