// AgentKit - Agent-Driven User Interfaces in Go
//
// AgentKit is a Go toolkit for building agent backends that stream their
// output to rich clients: token-by-token chat, rendered documents, and
// fully agent-driven user interfaces described over the A2UI protocol.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/agentkit-go/agentkit
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/agentkit-go/agentkit/agent"
//		"github.com/agentkit-go/agentkit/agui"
//		"github.com/agentkit-go/agentkit/llms/openai"
//	)
//
//	func main() {
//		model, _ := openai.New()
//
//		chat, _ := agent.NewChatAgent(model)
//
//		reply, _ := chat.Run(context.Background(), agent.RunInput{
//			RunID:    "run-1",
//			ThreadID: "thread-1",
//			Prompt:   "What is the capital of France?",
//		}, func(ev agui.Event) {
//			fmt.Printf("%s\n", ev.Type)
//		})
//
//		fmt.Println(reply)
//	}
//
// # Package Structure
//
// a2ui/
// The A2UI protocol core: surface state (component graphs plus a
// path-addressed data model), the server and client message codec, the
// surface lifecycle manager, and the action resolver that routes user
// actions back to handlers.
//
//	manager := a2ui.NewSurfaceManager()
//	manager.Apply(a2ui.SurfaceUpdate{
//		SurfaceID:  "main",
//		Components: components,
//	})
//
// agui/
// The streaming event envelope shared by every agent: run lifecycle,
// text message deltas, tool call progress, artifacts, and embedded
// A2UI frames.
//
// agent/
// Agent implementations built on the graph engine:
//   - ChatAgent: streaming chat with a tool loop
//   - CanvasAgent: renders markdown documents to sanitized HTML artifacts
//   - UIAgent: drives A2UI surfaces through planning and tool calls
//
// graph/
// The state graph engine agents are built on: nodes, conditional edges,
// compilation and invocation.
//
// server/
// The HTTP layer: thread and agent REST endpoints, the SSE run endpoint,
// and the surface action endpoint.
//
// store/
// Thread, message and surface persistence:
//   - Memory: in-process, for tests and development
//   - SQLite: lightweight, file-based storage
//   - PostgreSQL: scalable relational database
//   - Redis: high-performance in-memory storage
//
// Example:
//
//	threads, _ := sqlite.NewSqliteThreadStore(sqlite.SqliteOptions{
//		Path: "agentkit.db",
//	})
//
// llms/openai/
// An OpenAI-backed model implementing the langchaingo llms.Model
// interface with streaming and tool calling.
//
// tool/
// Tools agents can call, such as web page fetching.
//
// config/
// Environment-based server configuration.
//
// log/
// Logging utilities with a pluggable backend.
//
// # Running the Server
//
// The agentkit-server command wires everything together:
//
//	OPENAI_API_KEY=sk-... STORE_BACKEND=sqlite agentkit-server
//
// Configuration is read from environment variables, see the config
// package for the full list.
//
// # License
//
// This project is licensed under the MIT License - see the LICENSE file for details.
package agentkit // import "github.com/agentkit-go/agentkit"
