// Package agui defines the AG-UI event envelope: the agent-lifecycle and
// text-streaming events written to the client alongside A2UI surface
// messages. These follow the AG-UI convention of a type-tagged JSON object
// per event.
package agui

import "encoding/json"

// EventType tags each AG-UI event.
type EventType string

const (
	EventRunStarted         EventType = "runStarted"
	EventRunFinished        EventType = "runFinished"
	EventRunError           EventType = "runError"
	EventTextMessageStart   EventType = "textMessageStart"
	EventTextMessageContent EventType = "textMessageContent"
	EventTextMessageEnd     EventType = "textMessageEnd"
	EventToolCallStart      EventType = "toolCallStart"
	EventToolCallEnd        EventType = "toolCallEnd"
	EventArtifact           EventType = "artifact"
	// EventA2UI wraps an encoded A2UI server message so surface updates ride
	// the same ordered stream as the run lifecycle.
	EventA2UI EventType = "a2ui"
)

// Event is implemented by every AG-UI event struct.
type Event interface {
	EventType() EventType
}

// RunStarted signals that an agent run has begun.
type RunStarted struct {
	Type     EventType `json:"type"`
	RunID    string    `json:"runId"`
	ThreadID string    `json:"threadId,omitempty"`
	AgentID  string    `json:"agentId,omitempty"`
}

func (RunStarted) EventType() EventType { return EventRunStarted }

// NewRunStarted creates a runStarted event.
func NewRunStarted(runID, threadID, agentID string) RunStarted {
	return RunStarted{Type: EventRunStarted, RunID: runID, ThreadID: threadID, AgentID: agentID}
}

// RunFinished signals that an agent run completed normally.
type RunFinished struct {
	Type  EventType `json:"type"`
	RunID string    `json:"runId"`
}

func (RunFinished) EventType() EventType { return EventRunFinished }

// NewRunFinished creates a runFinished event.
func NewRunFinished(runID string) RunFinished {
	return RunFinished{Type: EventRunFinished, RunID: runID}
}

// RunError signals that an agent run failed. The stream ends after this
// event; the client surfaces it as a generic agent-run error.
type RunError struct {
	Type  EventType `json:"type"`
	RunID string    `json:"runId"`
	Error string    `json:"error"`
}

func (RunError) EventType() EventType { return EventRunError }

// NewRunError creates a runError event.
func NewRunError(runID, message string) RunError {
	return RunError{Type: EventRunError, RunID: runID, Error: message}
}

// TextMessageStart opens an assistant message.
type TextMessageStart struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"runId"`
	MessageID string    `json:"messageId"`
	Role      string    `json:"role"`
}

func (TextMessageStart) EventType() EventType { return EventTextMessageStart }

// NewTextMessageStart creates a textMessageStart event for an assistant message.
func NewTextMessageStart(runID, messageID string) TextMessageStart {
	return TextMessageStart{Type: EventTextMessageStart, RunID: runID, MessageID: messageID, Role: "assistant"}
}

// TextMessageContent carries one streamed text chunk.
type TextMessageContent struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"runId"`
	MessageID string    `json:"messageId"`
	Delta     string    `json:"delta"`
}

func (TextMessageContent) EventType() EventType { return EventTextMessageContent }

// NewTextMessageContent creates a textMessageContent event.
func NewTextMessageContent(runID, messageID, delta string) TextMessageContent {
	return TextMessageContent{Type: EventTextMessageContent, RunID: runID, MessageID: messageID, Delta: delta}
}

// TextMessageEnd closes an assistant message.
type TextMessageEnd struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"runId"`
	MessageID string    `json:"messageId"`
}

func (TextMessageEnd) EventType() EventType { return EventTextMessageEnd }

// NewTextMessageEnd creates a textMessageEnd event.
func NewTextMessageEnd(runID, messageID string) TextMessageEnd {
	return TextMessageEnd{Type: EventTextMessageEnd, RunID: runID, MessageID: messageID}
}

// ToolCallStart signals a tool invocation by the agent.
type ToolCallStart struct {
	Type   EventType `json:"type"`
	RunID  string    `json:"runId"`
	CallID string    `json:"callId"`
	Name   string    `json:"name"`
	Args   string    `json:"args,omitempty"` // JSON-encoded arguments
}

func (ToolCallStart) EventType() EventType { return EventToolCallStart }

// NewToolCallStart creates a toolCallStart event.
func NewToolCallStart(runID, callID, name, args string) ToolCallStart {
	return ToolCallStart{Type: EventToolCallStart, RunID: runID, CallID: callID, Name: name, Args: args}
}

// ToolCallEnd carries the result of a tool invocation.
type ToolCallEnd struct {
	Type   EventType `json:"type"`
	RunID  string    `json:"runId"`
	CallID string    `json:"callId"`
	Result string    `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`
}

func (ToolCallEnd) EventType() EventType { return EventToolCallEnd }

// NewToolCallEnd creates a toolCallEnd event.
func NewToolCallEnd(runID, callID, result, errMsg string) ToolCallEnd {
	return ToolCallEnd{Type: EventToolCallEnd, RunID: runID, CallID: callID, Result: result, Error: errMsg}
}

// Artifact carries a generated artifact (canvas output): the source markdown
// and a sanitized HTML preview.
type Artifact struct {
	Type       EventType `json:"type"`
	RunID      string    `json:"runId"`
	ArtifactID string    `json:"artifactId"`
	Title      string    `json:"title,omitempty"`
	Markdown   string    `json:"markdown"`
	HTML       string    `json:"html"`
}

func (Artifact) EventType() EventType { return EventArtifact }

// NewArtifact creates an artifact event.
func NewArtifact(runID, artifactID, title, markdown, html string) Artifact {
	return Artifact{Type: EventArtifact, RunID: runID, ArtifactID: artifactID, Title: title, Markdown: markdown, HTML: html}
}

// A2UI wraps one encoded A2UI server message.
type A2UI struct {
	Type    EventType       `json:"type"`
	RunID   string          `json:"runId"`
	Message json.RawMessage `json:"message"`
}

func (A2UI) EventType() EventType { return EventA2UI }

// NewA2UI creates an a2ui passthrough event from an already-encoded A2UI
// server message.
func NewA2UI(runID string, encoded []byte) A2UI {
	return A2UI{Type: EventA2UI, RunID: runID, Message: json.RawMessage(encoded)}
}
