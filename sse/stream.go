package sse

import (
	"context"
	"time"

	"github.com/agentkit-go/agentkit/agui"
)

// DefaultKeepAliveInterval is how often a comment frame is written when no
// event has been sent, to keep intermediary proxies from closing the stream.
const DefaultKeepAliveInterval = 15 * time.Second

// StreamEvents drains events from the channel and writes each one as an SSE
// data frame, interleaving keep-alive comments while the channel is quiet.
// It returns when the channel is closed, the context is cancelled, or a
// write fails. The writer must have been started before calling.
func StreamEvents(ctx context.Context, w *Writer, events <-chan agui.Event) error {
	return streamEvents(ctx, w, events, DefaultKeepAliveInterval)
}

func streamEvents(ctx context.Context, w *Writer, events <-chan agui.Event, keepAlive time.Duration) error {
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := w.WriteData(ev); err != nil {
				return err
			}
		case <-ticker.C:
			if err := w.WriteComment("keep-alive"); err != nil {
				return err
			}
		}
	}
}
