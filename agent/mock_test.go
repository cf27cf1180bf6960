package agent

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/agentkit-go/agentkit/agui"
)

// mockTurn is one scripted model response.
type mockTurn struct {
	content   string
	toolCalls []llms.ToolCall
	err       error
}

// MockModel is a simple mock for llms.Model
type MockModel struct {
	turns     []mockTurn
	callCount int
}

func (m *MockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	turn := mockTurn{content: "default response"}
	if m.callCount < len(m.turns) {
		turn = m.turns[m.callCount]
	}
	m.callCount++

	if turn.err != nil {
		return nil, turn.err
	}

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	// If streaming function is provided, call it with chunks
	if opts.StreamingFunc != nil && turn.content != "" {
		words := strings.Split(turn.content, " ")
		for i, word := range words {
			chunk := word
			if i < len(words)-1 {
				chunk += " "
			}
			if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: turn.content, ToolCalls: turn.toolCalls},
		},
	}, nil
}

func (m *MockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

// collectEmitter gathers emitted events for assertions.
type collectEmitter struct {
	events []agui.Event
}

func (c *collectEmitter) emit(ev agui.Event) {
	c.events = append(c.events, ev)
}

func (c *collectEmitter) ofType(t agui.EventType) []agui.Event {
	var out []agui.Event
	for _, ev := range c.events {
		if ev.EventType() == t {
			out = append(out, ev)
		}
	}
	return out
}

func (c *collectEmitter) streamedText() string {
	var sb strings.Builder
	for _, ev := range c.events {
		if tc, ok := ev.(agui.TextMessageContent); ok {
			sb.WriteString(tc.Delta)
		}
	}
	return sb.String()
}
