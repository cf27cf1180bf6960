package graph

import (
	"context"
	"time"
)

// NodeEvent labels what happened at a node during a streamed run.
type NodeEvent string

const (
	NodeEventComplete NodeEvent = "node_complete"
	NodeEventError    NodeEvent = "node_error"
)

// StreamEvent is emitted after each node execution during a streamed run.
type StreamEvent struct {
	Timestamp time.Time
	NodeName  string
	Event     NodeEvent
	State     State
	Error     error
}

// StreamResult contains the channels returned by streaming execution.
type StreamResult struct {
	// Events channel receives StreamEvent objects in real-time
	Events <-chan StreamEvent

	// Result channel receives the final state when execution completes
	Result <-chan State

	// Errors channel receives any error that ends the run
	Errors <-chan error

	// Done channel is closed when streaming is complete
	Done <-chan struct{}

	// Cancel function can be called to stop streaming
	Cancel context.CancelFunc
}

// Stream executes the graph in a goroutine, emitting one event per node
// execution. Cancellation stops the run after the in-flight node; state
// applied so far stays valid since each step is a single map merge.
func (r *Runnable) Stream(ctx context.Context, initialState State) *StreamResult {
	eventChan := make(chan StreamEvent, 64)
	resultChan := make(chan State, 1)
	errorChan := make(chan error, 1)
	doneChan := make(chan struct{})

	streamCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer func() {
			close(eventChan)
			close(resultChan)
			close(errorChan)
			close(doneChan)
		}()

		observe := func(node string, state State, err error) {
			evt := StreamEvent{
				Timestamp: time.Now(),
				NodeName:  node,
				Event:     NodeEventComplete,
				State:     state,
				Error:     err,
			}
			if err != nil {
				evt.Event = NodeEventError
			}
			select {
			case eventChan <- evt:
			case <-streamCtx.Done():
			}
		}

		result, err := r.run(streamCtx, initialState, observe)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- result
	}()

	return &StreamResult{
		Events: eventChan,
		Result: resultChan,
		Errors: errorChan,
		Done:   doneChan,
		Cancel: cancel,
	}
}
