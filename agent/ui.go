package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/agentkit-go/agentkit/a2ui"
	"github.com/agentkit-go/agentkit/agui"
	"github.com/agentkit-go/agentkit/graph"
)

const uiSystemPrompt = "You build user interfaces by calling tools. " +
	"First create a surface with its full component tree, then fill in its " +
	"data, then begin rendering. Finish with a short confirmation sentence."

// UIAgent drives client surfaces over the a2ui protocol. The model plans
// with tool calls; each applied tool call is mirrored to the client as an
// a2ui event.
type UIAgent struct {
	opts     Options
	model    llms.Model
	surfaces *a2ui.SurfaceManager
	runnable *graph.Runnable
}

// NewUIAgent creates a UI agent sharing the given surface manager.
func NewUIAgent(model llms.Model, surfaces *a2ui.SurfaceManager, opts ...Option) (*UIAgent, error) {
	o := applyOptions(Options{
		ID:           "ui",
		SystemPrompt: uiSystemPrompt,
		MaxSteps:     24,
	}, opts)

	a := &UIAgent{opts: o, model: model, surfaces: surfaces}

	workflow := graph.NewStateGraph()
	workflow.AddNode("plan", "Model plans surface changes", a.planNode)
	workflow.AddNode("apply", "Apply planned changes to surfaces", a.applyNode)
	workflow.AddConditionalEdge("plan", func(ctx context.Context, state graph.State) string {
		if calls, ok := state["tool_calls"].([]llms.ToolCall); ok && len(calls) > 0 {
			return "apply"
		}
		return graph.END
	})
	workflow.AddEdge("apply", "plan")
	workflow.SetEntryPoint("plan")
	workflow.SetMaxSteps(o.MaxSteps)

	runnable, err := workflow.Compile()
	if err != nil {
		return nil, err
	}
	a.runnable = runnable
	return a, nil
}

// ID returns the agent's registry ID.
func (a *UIAgent) ID() string {
	return a.opts.ID
}

// Surfaces returns the surface manager the agent writes to.
func (a *UIAgent) Surfaces() *a2ui.SurfaceManager {
	return a.surfaces
}

// Run executes one UI-building run.
func (a *UIAgent) Run(ctx context.Context, input RunInput, emit Emitter) (string, error) {
	messageID := uuid.NewString()
	emit(agui.NewTextMessageStart(input.RunID, messageID))

	state, err := runGraph(ctx, a.runnable, graph.State{
		"messages":   buildMessages(a.opts.SystemPrompt, input),
		"run_id":     input.RunID,
		"message_id": messageID,
		"emit":       emit,
	}, a.opts.Logger)
	if err != nil {
		return "", err
	}

	emit(agui.NewTextMessageEnd(input.RunID, messageID))

	reply, _ := state["reply"].(string)
	return reply, nil
}

func (a *UIAgent) planNode(ctx context.Context, state graph.State) (graph.State, error) {
	messages := state["messages"].([]llms.MessageContent)
	runID := state["run_id"].(string)
	messageID := state["message_id"].(string)
	emit := state["emit"].(Emitter)

	resp, err := a.model.GenerateContent(ctx, messages,
		llms.WithTools(uiToolDefinitions()),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			emit(agui.NewTextMessageContent(runID, messageID, string(chunk)))
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}
	choice := resp.Choices[0]

	aiMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		aiMsg.Parts = append(aiMsg.Parts, llms.TextPart(choice.Content))
	}
	for _, tc := range choice.ToolCalls {
		aiMsg.Parts = append(aiMsg.Parts, tc)
	}

	return graph.State{
		"messages":   append(messages, aiMsg),
		"tool_calls": choice.ToolCalls,
		"reply":      choice.Content,
	}, nil
}

func (a *UIAgent) applyNode(ctx context.Context, state graph.State) (graph.State, error) {
	messages := state["messages"].([]llms.MessageContent)
	calls := state["tool_calls"].([]llms.ToolCall)
	runID := state["run_id"].(string)
	emit := state["emit"].(Emitter)

	for _, call := range calls {
		if call.FunctionCall == nil {
			continue
		}
		name := call.FunctionCall.Name
		emit(agui.NewToolCallStart(runID, call.ID, name, call.FunctionCall.Arguments))

		result := "ok"
		errMsg := ""
		if err := a.applyCall(runID, name, call.FunctionCall.Arguments, emit); err != nil {
			a.opts.Logger.Warn("ui tool %s failed: %v", name, err)
			errMsg = err.Error()
			result = "error: " + errMsg
		}
		emit(agui.NewToolCallEnd(runID, call.ID, result, errMsg))

		messages = append(messages, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{ToolCallID: call.ID, Name: name, Content: result},
			},
		})
	}

	return graph.State{
		"messages":   messages,
		"tool_calls": []llms.ToolCall{},
	}, nil
}

func (a *UIAgent) applyCall(runID, name, arguments string, emit Emitter) error {
	switch name {
	case "create_surface":
		var args struct {
			SurfaceID  string           `json:"surfaceId"`
			Components []a2ui.Component `json:"components"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return fmt.Errorf("invalid create_surface arguments: %w", err)
		}
		return a.push(runID, a2ui.SurfaceUpdate{SurfaceID: args.SurfaceID, Components: args.Components}, emit)

	case "update_data":
		var args struct {
			SurfaceID string                    `json:"surfaceId"`
			Data      map[string]map[string]any `json:"data"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return fmt.Errorf("invalid update_data arguments: %w", err)
		}
		return a.pushData(runID, args.SurfaceID, args.Data, emit)

	case "begin_rendering":
		var args struct {
			SurfaceID       string `json:"surfaceId"`
			RootComponentID string `json:"rootComponentId"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return fmt.Errorf("invalid begin_rendering arguments: %w", err)
		}
		return a.push(runID, a2ui.BeginRendering{SurfaceID: args.SurfaceID, RootComponentID: args.RootComponentID}, emit)

	case "delete_surface":
		var args struct {
			SurfaceID string `json:"surfaceId"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return fmt.Errorf("invalid delete_surface arguments: %w", err)
		}
		return a.push(runID, a2ui.DeleteSurface{SurfaceID: args.SurfaceID}, emit)

	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// pushData emits one dataModelUpdate per component so each update stays
// scoped to the subtree that component owns.
func (a *UIAgent) pushData(runID, surfaceID string, data map[string]map[string]any, emit Emitter) error {
	componentIDs := make([]string, 0, len(data))
	for id := range data {
		componentIDs = append(componentIDs, id)
	}
	sort.Strings(componentIDs)

	for _, componentID := range componentIDs {
		values := data[componentID]
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		contents := make([]a2ui.KeyValue, 0, len(keys))
		for _, key := range keys {
			contents = append(contents, a2ui.KeyValue{Key: key, Value: values[key]})
		}

		msg := a2ui.DataModelUpdate{
			SurfaceID: surfaceID,
			Path:      "/" + componentID,
			Contents:  contents,
		}
		if err := a.push(runID, msg, emit); err != nil {
			return err
		}
	}
	return nil
}

// push applies the message locally and mirrors it to the client.
func (a *UIAgent) push(runID string, msg a2ui.ServerMessage, emit Emitter) error {
	if err := a.surfaces.Apply(msg); err != nil {
		return err
	}
	encoded, err := a2ui.EncodeServerMessage(msg)
	if err != nil {
		return err
	}
	emit(agui.NewA2UI(runID, encoded))
	return nil
}

// PublishSurface pushes a fully populated surface: the component tree, one
// data update per component, then the render signal. Data is keyed by the
// component that owns it.
func (a *UIAgent) PublishSurface(runID, surfaceID string, components []a2ui.Component, data map[string]map[string]any, rootComponentID string, emit Emitter) error {
	if err := a.push(runID, a2ui.SurfaceUpdate{SurfaceID: surfaceID, Components: components}, emit); err != nil {
		return err
	}
	if err := a.pushData(runID, surfaceID, data, emit); err != nil {
		return err
	}
	return a.push(runID, a2ui.BeginRendering{SurfaceID: surfaceID, RootComponentID: rootComponentID}, emit)
}

func uiToolDefinitions() []llms.Tool {
	componentSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":    map[string]any{"type": "string"},
			"type":  map[string]any{"type": "string"},
			"props": map[string]any{"type": "object"},
		},
		"required": []string{"id", "type"},
	}

	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "create_surface",
				Description: "Create or update a surface with its component tree.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"surfaceId":  map[string]any{"type": "string"},
						"components": map[string]any{"type": "array", "items": componentSchema},
					},
					"required": []string{"surfaceId", "components"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "update_data",
				Description: "Set data values, grouped by the component that owns them.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"surfaceId": map[string]any{"type": "string"},
						"data": map[string]any{
							"type":        "object",
							"description": "componentId -> {key: value}",
						},
					},
					"required": []string{"surfaceId", "data"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "begin_rendering",
				Description: "Signal that the surface is complete and may be shown.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"surfaceId":       map[string]any{"type": "string"},
						"rootComponentId": map[string]any{"type": "string"},
					},
					"required": []string{"surfaceId", "rootComponentId"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "delete_surface",
				Description: "Remove a surface from the client.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"surfaceId": map[string]any{"type": "string"},
					},
					"required": []string{"surfaceId"},
				},
			},
		},
	}
}
