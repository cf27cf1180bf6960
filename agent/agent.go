// Package agent provides graph-driven agents that stream their output as
// agui events: a chat agent, a markdown canvas agent and a generative UI
// agent that drives surfaces over the a2ui protocol.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/tools"

	"github.com/agentkit-go/agentkit/agui"
	"github.com/agentkit-go/agentkit/graph"
	"github.com/agentkit-go/agentkit/log"
	"github.com/agentkit-go/agentkit/store"
)

// Emitter receives events produced during a run.
type Emitter func(agui.Event)

// RunInput carries everything an agent needs for one run.
type RunInput struct {
	RunID    string
	ThreadID string
	Prompt   string
	History  []*store.Message
}

// Agent executes one run, streaming events through emit, and returns the
// final assistant text.
type Agent interface {
	ID() string
	Run(ctx context.Context, input RunInput, emit Emitter) (string, error)
}

// Options configures an agent.
type Options struct {
	ID           string
	SystemPrompt string
	Tools        []tools.Tool
	MaxSteps     int
	Logger       log.Logger
}

// Option is a function that configures agent options.
type Option func(*Options)

// WithID sets the agent's registry ID.
func WithID(id string) Option {
	return func(o *Options) {
		o.ID = id
	}
}

// WithSystemPrompt sets the system prompt prepended to every run.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithTools sets the tools the agent may call.
func WithTools(ts []tools.Tool) Option {
	return func(o *Options) {
		o.Tools = ts
	}
}

// WithMaxSteps caps the agent's reasoning loop.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func applyOptions(defaults Options, opts []Option) Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = log.GetDefaultLogger()
	}
	return o
}

// runGraph executes a compiled graph through its streaming interface,
// logging each node transition, and returns the final state. Cancelling
// ctx stops the run after the in-flight node.
func runGraph(ctx context.Context, r *graph.Runnable, state graph.State, logger log.Logger) (graph.State, error) {
	res := r.Stream(ctx, state)
	defer res.Cancel()

	for ev := range res.Events {
		if ev.Error != nil {
			logger.Debug("node %s failed: %v", ev.NodeName, ev.Error)
			continue
		}
		logger.Debug("node %s complete", ev.NodeName)
	}
	if err := <-res.Errors; err != nil {
		return nil, err
	}
	return <-res.Result, nil
}

// Registry maps agent IDs to agents, safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent, replacing any agent with the same ID.
func (r *Registry) Register(a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.ID()] = a
}

// Get returns the agent with the given ID.
func (r *Registry) Get(id string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent not found: %s", id)
	}
	return a, nil
}

// IDs returns the registered agent IDs.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	return ids
}
