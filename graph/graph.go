// Package graph provides the state-graph runner that orchestrates agent
// turns: named nodes transforming a shared state map, connected by static and
// conditional edges, executed until END.
package graph

import (
	"context"
	"errors"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrMaxStepsExceeded is returned when a run does not reach END within the
	// configured step budget, guarding against condition loops.
	ErrMaxStepsExceeded = errors.New("max steps exceeded")
)

// State is the mutable state flowing through a graph run.
type State = map[string]any

// NodeFunc transforms the state. The returned map is merged key-by-key into
// the current state; returning nil leaves the state unchanged.
type NodeFunc func(ctx context.Context, state State) (State, error)

// Node represents a node in the graph.
type Node struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function is the function associated with the node.
	Function NodeFunc
}

// Edge represents an edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}
