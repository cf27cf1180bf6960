package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/agentkit-go/agentkit/agui"
	"github.com/agentkit-go/agentkit/graph"
)

// ChatAgent is a conversational agent. It streams assistant tokens as
// textMessage events and can call tools mid-run.
type ChatAgent struct {
	opts     Options
	model    llms.Model
	runnable *graph.Runnable
}

// NewChatAgent creates a chat agent backed by the given model.
func NewChatAgent(model llms.Model, opts ...Option) (*ChatAgent, error) {
	o := applyOptions(Options{
		ID:       "chat",
		MaxSteps: 16,
	}, opts)

	a := &ChatAgent{opts: o, model: model}

	workflow := graph.NewStateGraph()
	workflow.AddNode("generate", "Model call with streaming", a.generateNode)
	workflow.AddNode("tools", "Tool execution", a.toolsNode)
	workflow.AddConditionalEdge("generate", func(ctx context.Context, state graph.State) string {
		if calls, ok := state["tool_calls"].([]llms.ToolCall); ok && len(calls) > 0 {
			return "tools"
		}
		return graph.END
	})
	workflow.AddEdge("tools", "generate")
	workflow.SetEntryPoint("generate")
	workflow.SetMaxSteps(o.MaxSteps)

	runnable, err := workflow.Compile()
	if err != nil {
		return nil, err
	}
	a.runnable = runnable
	return a, nil
}

// ID returns the agent's registry ID.
func (a *ChatAgent) ID() string {
	return a.opts.ID
}

// Run executes one conversational turn.
func (a *ChatAgent) Run(ctx context.Context, input RunInput, emit Emitter) (string, error) {
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

func (a *ChatAgent) generateNode(ctx context.Context, state graph.State) (graph.State, error) {
	messages := state["messages"].([]llms.MessageContent)
	runID := state["run_id"].(string)
	messageID := state["message_id"].(string)
	emit := state["emit"].(Emitter)

	callOpts := []llms.CallOption{
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			emit(agui.NewTextMessageContent(runID, messageID, string(chunk)))
			return nil
		}),
	}
	if defs := toolDefinitions(a.opts.Tools); len(defs) > 0 {
		callOpts = append(callOpts, llms.WithTools(defs))
	}

	resp, err := a.model.GenerateContent(ctx, messages, callOpts...)
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

func (a *ChatAgent) toolsNode(ctx context.Context, state graph.State) (graph.State, error) {
	messages := state["messages"].([]llms.MessageContent)
	calls := state["tool_calls"].([]llms.ToolCall)
	runID := state["run_id"].(string)
	emit := state["emit"].(Emitter)

	for _, call := range calls {
		if call.FunctionCall == nil {
			continue
		}
		name := call.FunctionCall.Name
		args := call.FunctionCall.Arguments
		emit(agui.NewToolCallStart(runID, call.ID, name, args))

		result, err := executeTool(ctx, a.opts.Tools, name, args)
		errMsg := ""
		if err != nil {
			a.opts.Logger.Warn("tool %s failed: %v", name, err)
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

// buildMessages assembles the model input from the system prompt, the
// thread history and the new prompt.
func buildMessages(systemPrompt string, input RunInput) []llms.MessageContent {
	var messages []llms.MessageContent
	if systemPrompt != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		})
	}
	for _, msg := range input.History {
		role := llms.ChatMessageTypeHuman
		if msg.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(input.Prompt)},
	})
	return messages
}

func toolDefinitions(ts []tools.Tool) []llms.Tool {
	var defs []llms.Tool
	for _, t := range ts {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"input": map[string]any{
							"type":        "string",
							"description": "The input query for the tool",
						},
					},
					"required":             []string{"input"},
					"additionalProperties": false,
				},
			},
		})
	}
	return defs
}

func executeTool(ctx context.Context, ts []tools.Tool, name, arguments string) (string, error) {
	var t tools.Tool
	for _, candidate := range ts {
		if candidate.Name() == name {
			t = candidate
			break
		}
	}
	if t == nil {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	input := arguments
	var parsed struct {
		Input string `json:"input"`
	}
	if err := json.Unmarshal([]byte(arguments), &parsed); err == nil && parsed.Input != "" {
		input = parsed.Input
	}

	return t.Call(ctx, input)
}
