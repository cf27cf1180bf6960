package graph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentkit-go/agentkit/graph"
)

func TestStateGraph_LinearFlow(t *testing.T) {
	t.Parallel()

	g := graph.NewStateGraph()
	g.AddNode("first", "sets a", func(ctx context.Context, state graph.State) (graph.State, error) {
		return graph.State{"a": 1}, nil
	})
	g.AddNode("second", "sets b", func(ctx context.Context, state graph.State) (graph.State, error) {
		return graph.State{"b": state["a"].(int) + 1}, nil
	})
	g.SetEntryPoint("first")
	g.AddEdge("first", "second")
	g.AddEdge("second", graph.END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), graph.State{})
	require.NoError(t, err)
	assert.Equal(t, 1, result["a"])
	assert.Equal(t, 2, result["b"])
}

func TestStateGraph_ConditionalEdge(t *testing.T) {
	t.Parallel()

	g := graph.NewStateGraph()
	g.AddNode("count", "increments", func(ctx context.Context, state graph.State) (graph.State, error) {
		n, _ := state["n"].(int)
		return graph.State{"n": n + 1}, nil
	})
	g.SetEntryPoint("count")
	g.AddConditionalEdge("count", func(ctx context.Context, state graph.State) string {
		if state["n"].(int) >= 3 {
			return graph.END
		}
		return "count"
	})

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), graph.State{})
	require.NoError(t, err)
	assert.Equal(t, 3, result["n"])
}

func TestStateGraph_CompileErrors(t *testing.T) {
	t.Parallel()

	g := graph.NewStateGraph()
	_, err := g.Compile()
	assert.ErrorIs(t, err, graph.ErrEntryPointNotSet)

	g.SetEntryPoint("missing")
	_, err = g.Compile()
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestStateGraph_NoOutgoingEdge(t *testing.T) {
	t.Parallel()

	g := graph.NewStateGraph()
	g.AddNode("lonely", "", func(ctx context.Context, state graph.State) (graph.State, error) {
		return nil, nil
	})
	g.SetEntryPoint("lonely")

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), graph.State{})
	assert.ErrorIs(t, err, graph.ErrNoOutgoingEdge)
}

func TestStateGraph_NodeErrorWrapped(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	g := graph.NewStateGraph()
	g.AddNode("fail", "", func(ctx context.Context, state graph.State) (graph.State, error) {
		return nil, boom
	})
	g.SetEntryPoint("fail")
	g.AddEdge("fail", graph.END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), graph.State{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fail")
}

func TestStateGraph_MaxStepsGuard(t *testing.T) {
	t.Parallel()

	g := graph.NewStateGraph()
	g.AddNode("loop", "", func(ctx context.Context, state graph.State) (graph.State, error) {
		return nil, nil
	})
	g.SetEntryPoint("loop")
	g.AddEdge("loop", "loop")
	g.SetMaxSteps(5)

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), graph.State{})
	assert.ErrorIs(t, err, graph.ErrMaxStepsExceeded)
}

func TestStateGraph_InputStateUntouched(t *testing.T) {
	t.Parallel()

	g := graph.NewStateGraph()
	g.AddNode("mutate", "", func(ctx context.Context, state graph.State) (graph.State, error) {
		return graph.State{"added": true}, nil
	})
	g.SetEntryPoint("mutate")
	g.AddEdge("mutate", graph.END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	input := graph.State{"orig": 1}
	_, err = runnable.Invoke(context.Background(), input)
	require.NoError(t, err)
	_, leaked := input["added"]
	assert.False(t, leaked)
}

func TestStateGraph_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	g := graph.NewStateGraph()
	g.AddNode("step", "", func(ctx context.Context, state graph.State) (graph.State, error) {
		cancel() // cancel mid-run; the next step must not start
		return graph.State{"ran": true}, nil
	})
	g.SetEntryPoint("step")
	g.AddEdge("step", "step")

	runnable, err := g.Compile()
	require.NoError(t, err)

	state, err := runnable.Invoke(ctx, graph.State{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, true, state["ran"], "state applied before cancellation stays valid")
}
