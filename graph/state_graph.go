package graph

import (
	"context"
	"fmt"
)

// DefaultMaxSteps bounds a single run; agents are short loops, so a run that
// takes this many steps is stuck in a condition cycle.
const DefaultMaxSteps = 64

// StateGraph is a state-based graph: nodes transform a shared state map and
// edges pick the next node, either statically or through a condition
// evaluated against the state after each step.
type StateGraph struct {
	// nodes is a map of node names to their corresponding Node objects
	nodes map[string]Node

	// edges is a slice of Edge objects representing the connections between nodes
	edges []Edge

	// conditionalEdges maps a "from" node to a function deriving the next node
	conditionalEdges map[string]func(ctx context.Context, state State) string

	// entryPoint is the name of the entry point node in the graph
	entryPoint string

	// maxSteps bounds one run; zero means DefaultMaxSteps
	maxSteps int
}

// NewStateGraph creates a new instance of StateGraph.
func NewStateGraph() *StateGraph {
	return &StateGraph{
		nodes:            make(map[string]Node),
		conditionalEdges: make(map[string]func(ctx context.Context, state State) string),
	}
}

// AddNode adds a new node to the state graph with the given name, description and function
func (g *StateGraph) AddNode(name string, description string, fn NodeFunc) {
	g.nodes[name] = Node{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes
func (g *StateGraph) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds a conditional edge where the target node is determined at runtime
func (g *StateGraph) AddConditionalEdge(from string, condition func(ctx context.Context, state State) string) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the entry point node name for the state graph
func (g *StateGraph) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetMaxSteps bounds the number of node executions per run.
func (g *StateGraph) SetMaxSteps(n int) {
	g.maxSteps = n
}

// Runnable represents a compiled state graph that can be invoked.
type Runnable struct {
	graph *StateGraph
}

// Compile compiles the state graph and returns a Runnable instance
func (g *StateGraph) Compile() (*Runnable, error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}
	return &Runnable{graph: g}, nil
}

// Invoke executes the compiled state graph with the given input state and
// returns the final state once END is reached.
func (r *Runnable) Invoke(ctx context.Context, initialState State) (State, error) {
	return r.run(ctx, initialState, nil)
}

// run executes the graph, invoking observe after every node execution when
// it is non-nil. The state map is copied once up front so callers keep their
// input untouched.
func (r *Runnable) run(ctx context.Context, initialState State, observe func(node string, state State, err error)) (State, error) {
	state := make(State, len(initialState))
	for k, v := range initialState {
		state[k] = v
	}

	maxSteps := r.graph.maxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	current := r.graph.entryPoint
	for step := 0; current != END; step++ {
		if step >= maxSteps {
			return state, fmt.Errorf("%w: %d", ErrMaxStepsExceeded, maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return state, fmt.Errorf("%w: %s", ErrNodeNotFound, current)
		}

		update, err := node.Function(ctx, state)
		if observe != nil {
			observe(current, state, err)
		}
		if err != nil {
			return state, fmt.Errorf("error in node %s: %w", current, err)
		}
		for k, v := range update {
			state[k] = v
		}

		current, err = r.nextNode(ctx, current, state)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

// nextNode determines the next node via the conditional edge if present,
// falling back to the first static edge.
func (r *Runnable) nextNode(ctx context.Context, from string, state State) (string, error) {
	if condition, ok := r.graph.conditionalEdges[from]; ok {
		next := condition(ctx, state)
		if next == "" {
			return "", fmt.Errorf("conditional edge returned empty next node from %s", from)
		}
		return next, nil
	}
	for _, edge := range r.graph.edges {
		if edge.From == from {
			return edge.To, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, from)
}
