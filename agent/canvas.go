package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tmc/langchaingo/llms"

	"github.com/agentkit-go/agentkit/agui"
	"github.com/agentkit-go/agentkit/graph"
)

const canvasSystemPrompt = "You are a writing assistant. Produce a complete, " +
	"well-structured markdown document that fulfills the user's request. " +
	"Start with a level-one heading that titles the document."

// CanvasAgent writes markdown documents. The generated markdown is rendered
// to sanitized HTML and streamed to the client as an artifact event.
type CanvasAgent struct {
	opts     Options
	model    llms.Model
	policy   *bluemonday.Policy
	runnable *graph.Runnable
}

// NewCanvasAgent creates a canvas agent backed by the given model.
func NewCanvasAgent(model llms.Model, opts ...Option) (*CanvasAgent, error) {
	o := applyOptions(Options{
		ID:           "canvas",
		SystemPrompt: canvasSystemPrompt,
	}, opts)

	a := &CanvasAgent{
		opts:   o,
		model:  model,
		policy: bluemonday.UGCPolicy(),
	}

	workflow := graph.NewStateGraph()
	workflow.AddNode("generate", "Draft the markdown document", a.generateNode)
	workflow.AddNode("render", "Render markdown to sanitized HTML", a.renderNode)
	workflow.AddEdge("generate", "render")
	workflow.AddEdge("render", graph.END)
	workflow.SetEntryPoint("generate")

	runnable, err := workflow.Compile()
	if err != nil {
		return nil, err
	}
	a.runnable = runnable
	return a, nil
}

// ID returns the agent's registry ID.
func (a *CanvasAgent) ID() string {
	return a.opts.ID
}

// Run generates a document and emits it as an artifact.
func (a *CanvasAgent) Run(ctx context.Context, input RunInput, emit Emitter) (string, error) {
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

	reply, _ := state["markdown"].(string)
	return reply, nil
}

func (a *CanvasAgent) generateNode(ctx context.Context, state graph.State) (graph.State, error) {
	messages := state["messages"].([]llms.MessageContent)
	runID := state["run_id"].(string)
	messageID := state["message_id"].(string)
	emit := state["emit"].(Emitter)

	resp, err := a.model.GenerateContent(ctx, messages,
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

	return graph.State{"markdown": resp.Choices[0].Content}, nil
}

func (a *CanvasAgent) renderNode(ctx context.Context, state graph.State) (graph.State, error) {
	md := state["markdown"].(string)
	runID := state["run_id"].(string)
	emit := state["emit"].(Emitter)

	html := a.RenderHTML(md)
	title := documentTitle(md)

	artifactID := uuid.NewString()
	emit(agui.NewArtifact(runID, artifactID, title, md, html))

	return graph.State{"artifact_id": artifactID}, nil
}

// RenderHTML converts markdown to HTML and strips unsafe markup.
func (a *CanvasAgent) RenderHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	rendered := markdown.ToHTML([]byte(md), p, renderer)
	return string(a.policy.SanitizeBytes(rendered))
}

// documentTitle returns the first heading, or a default.
func documentTitle(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if trimmed := strings.TrimLeft(line, "# "); strings.HasPrefix(line, "#") && trimmed != "" {
			return trimmed
		}
	}
	return "Untitled document"
}
