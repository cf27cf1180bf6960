package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/agentkit-go/agentkit/a2ui"
	"github.com/agentkit-go/agentkit/agui"
)

func decodeA2UIEvents(t *testing.T, c *collectEmitter) []a2ui.ServerMessage {
	t.Helper()

	var out []a2ui.ServerMessage
	for _, ev := range c.ofType(agui.EventA2UI) {
		msg, err := a2ui.DecodeServerMessage(ev.(agui.A2UI).Message)
		require.NoError(t, err)
		out = append(out, msg)
	}
	return out
}

func TestUIAgentBuildsSurface(t *testing.T) {
	model := &MockModel{turns: []mockTurn{
		{toolCalls: []llms.ToolCall{
			{
				ID:   "call-1",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name: "create_surface",
					Arguments: `{
						"surfaceId": "main",
						"components": [
							{"id": "root", "type": "Column", "props": {"children": {"children": ["title"]}}},
							{"id": "title", "type": "Text", "props": {"text": {"path": "/title/value"}}}
						]
					}`,
				},
			},
			{
				ID:   "call-2",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      "update_data",
					Arguments: `{"surfaceId": "main", "data": {"title": {"value": "Hello"}}}`,
				},
			},
			{
				ID:   "call-3",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      "begin_rendering",
					Arguments: `{"surfaceId": "main", "rootComponentId": "root"}`,
				},
			},
		}},
		{content: "Here is your form."},
	}}

	manager := a2ui.NewSurfaceManager()
	a, err := NewUIAgent(model, manager)
	require.NoError(t, err)
	assert.Equal(t, "ui", a.ID())

	var c collectEmitter
	reply, err := a.Run(context.Background(), RunInput{RunID: "r1", Prompt: "make a form"}, c.emit)
	require.NoError(t, err)
	assert.Equal(t, "Here is your form.", reply)

	msgs := decodeA2UIEvents(t, &c)
	require.Len(t, msgs, 3)
	assert.Equal(t, a2ui.MessageSurfaceUpdate, msgs[0].MessageType())
	assert.Equal(t, a2ui.MessageDataModelUpdate, msgs[1].MessageType())
	assert.Equal(t, a2ui.MessageBeginRendering, msgs[2].MessageType())

	// Local state mirrors what was sent.
	assert.True(t, manager.IsRendering("main"))
	value, ok := manager.Get("main", "/title/value")
	require.True(t, ok)
	assert.Equal(t, "Hello", value)
}

func TestUIAgentScopedDataUpdates(t *testing.T) {
	manager := a2ui.NewSurfaceManager()
	a, err := NewUIAgent(&MockModel{}, manager)
	require.NoError(t, err)

	var c collectEmitter
	err = a.pushData("r1", "main", map[string]map[string]any{
		"name":  {"value": "Ada"},
		"email": {"value": "ada@example.com"},
	}, c.emit)
	require.NoError(t, err)

	msgs := decodeA2UIEvents(t, &c)
	require.Len(t, msgs, 2)

	// One update per owning component, never merged at a shared parent.
	first := msgs[0].(a2ui.DataModelUpdate)
	second := msgs[1].(a2ui.DataModelUpdate)
	assert.Equal(t, "/email", first.Path)
	assert.Equal(t, "/name", second.Path)
	require.Len(t, first.Contents, 1)
	assert.Equal(t, "value", first.Contents[0].Key)
}

func TestUIAgentPublishSurface(t *testing.T) {
	manager := a2ui.NewSurfaceManager()
	a, err := NewUIAgent(&MockModel{}, manager)
	require.NoError(t, err)

	components := []a2ui.Component{
		{ID: "root", Type: "Column", Props: map[string]a2ui.PropValue{
			"children": a2ui.ChildrenValue("greeting"),
		}},
		{ID: "greeting", Type: "Text", Props: map[string]a2ui.PropValue{
			"text": a2ui.PathValue("/greeting/text"),
		}},
	}

	var c collectEmitter
	err = a.PublishSurface("r1", "card", components, map[string]map[string]any{
		"greeting": {"text": "Welcome"},
	}, "root", c.emit)
	require.NoError(t, err)

	msgs := decodeA2UIEvents(t, &c)
	require.Len(t, msgs, 3)
	assert.Equal(t, a2ui.MessageSurfaceUpdate, msgs[0].MessageType())
	assert.Equal(t, a2ui.MessageBeginRendering, msgs[2].MessageType())

	assert.True(t, manager.IsRendering("card"))
	value, ok := manager.Get("card", "/greeting/text")
	require.True(t, ok)
	assert.Equal(t, "Welcome", value)
}

func TestUIAgentUnknownTool(t *testing.T) {
	model := &MockModel{turns: []mockTurn{
		{toolCalls: []llms.ToolCall{{
			ID:           "call-1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: "explode", Arguments: `{}`},
		}}},
		{content: "sorry"},
	}}

	a, err := NewUIAgent(model, a2ui.NewSurfaceManager())
	require.NoError(t, err)

	var c collectEmitter
	reply, err := a.Run(context.Background(), RunInput{RunID: "r1", Prompt: "x"}, c.emit)
	require.NoError(t, err)
	assert.Equal(t, "sorry", reply)

	ends := c.ofType(agui.EventToolCallEnd)
	require.Len(t, ends, 1)
	assert.NotEmpty(t, ends[0].(agui.ToolCallEnd).Error)
}
