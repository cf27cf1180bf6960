package a2ui

import (
	"encoding/json"
	"fmt"
)

// MessageType is the discriminator tag carried by every protocol message.
type MessageType string

const (
	// Server to client.
	MessageSurfaceUpdate   MessageType = "surfaceUpdate"
	MessageDataModelUpdate MessageType = "dataModelUpdate"
	MessageBeginRendering  MessageType = "beginRendering"
	MessageDeleteSurface   MessageType = "deleteSurface"

	// Client to server.
	MessageUserAction   MessageType = "userAction"
	MessageErrorMessage MessageType = "errorMessage"
)

// ServerMessage is one of the four server-to-client message kinds.
type ServerMessage interface {
	MessageType() MessageType
	// Surface returns the surface id the message addresses.
	Surface() string
}

// SurfaceUpdate declares or extends a surface's component set. Components are
// merged into the surface's component map by id; an existing id is replaced
// by the incoming component wholesale.
type SurfaceUpdate struct {
	SurfaceID  string      `json:"surfaceId"`
	Components []Component `json:"components"`
}

func (SurfaceUpdate) MessageType() MessageType { return MessageSurfaceUpdate }
func (m SurfaceUpdate) Surface() string        { return m.SurfaceID }

// DataModelUpdate merges contents into the data-model subtree rooted at Path.
// Producers emitting data for several components in one batch must issue one
// DataModelUpdate per owning component path; a single update at a shared
// ancestor path conflates sibling components' keys.
type DataModelUpdate struct {
	SurfaceID string     `json:"surfaceId"`
	Path      string     `json:"path"`
	Contents  []KeyValue `json:"contents"`
}

func (DataModelUpdate) MessageType() MessageType { return MessageDataModelUpdate }
func (m DataModelUpdate) Surface() string        { return m.SurfaceID }

// BeginRendering reveals a surface: it sets the root component and enables
// rendering. Sent once the surface is fully populated, so the client shows
// the whole tree atomically.
type BeginRendering struct {
	SurfaceID       string `json:"surfaceId"`
	RootComponentID string `json:"rootComponentId"`
}

func (BeginRendering) MessageType() MessageType { return MessageBeginRendering }
func (m BeginRendering) Surface() string        { return m.SurfaceID }

// DeleteSurface tears a surface down. Terminal for the surface id.
type DeleteSurface struct {
	SurfaceID string `json:"surfaceId"`
}

func (DeleteSurface) MessageType() MessageType { return MessageDeleteSurface }
func (m DeleteSurface) Surface() string        { return m.SurfaceID }

// UserAction is the client-to-server record of an explicit user-triggered
// action. Context holds resolved literal values only; path references are
// resolved before the record is constructed.
type UserAction struct {
	Name              string         `json:"name"`
	SurfaceID         string         `json:"surfaceId"`
	SourceComponentID string         `json:"sourceComponentId"`
	Timestamp         string         `json:"timestamp"`
	Context           map[string]any `json:"context,omitempty"`
}

// ErrorMessage is the client-to-server report of a client-side failure.
type ErrorMessage struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// envelope is the superset wire shape used for decoding; the type tag picks
// which fields are meaningful.
type envelope struct {
	Type            MessageType     `json:"type"`
	SurfaceID       string          `json:"surfaceId,omitempty"`
	Components      []Component     `json:"components,omitempty"`
	Path            string          `json:"path,omitempty"`
	Contents        []KeyValue      `json:"contents,omitempty"`
	RootComponentID string          `json:"rootComponentId,omitempty"`
	Name            string          `json:"name,omitempty"`
	SourceComponent string          `json:"sourceComponentId,omitempty"`
	Timestamp       string          `json:"timestamp,omitempty"`
	Context         map[string]any  `json:"context,omitempty"`
	Message         string          `json:"message,omitempty"`
	Detail          string          `json:"detail,omitempty"`
}

// EncodeServerMessage encodes msg as a single JSON object tagged with its
// message type. The codec carries no business logic; it only shapes bytes.
func EncodeServerMessage(msg ServerMessage) ([]byte, error) {
	env := envelope{Type: msg.MessageType(), SurfaceID: msg.Surface()}
	switch m := msg.(type) {
	case SurfaceUpdate:
		env.Components = m.Components
	case DataModelUpdate:
		env.Path = m.Path
		env.Contents = m.Contents
	case BeginRendering:
		env.RootComponentID = m.RootComponentID
	case DeleteSurface:
		// Surface id only.
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessageType, msg)
	}
	return json.Marshal(env)
}

// DecodeServerMessage decodes one server-to-client message. An unrecognized
// type tag returns an error wrapping ErrUnknownMessageType; callers should
// log and skip rather than abort, since new kinds are added over time.
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode server message: %w", err)
	}
	switch env.Type {
	case MessageSurfaceUpdate, MessageDataModelUpdate, MessageBeginRendering, MessageDeleteSurface:
		if env.SurfaceID == "" {
			return nil, ErrMissingSurfaceID
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
	switch env.Type {
	case MessageSurfaceUpdate:
		return SurfaceUpdate{SurfaceID: env.SurfaceID, Components: env.Components}, nil
	case MessageDataModelUpdate:
		return DataModelUpdate{SurfaceID: env.SurfaceID, Path: env.Path, Contents: env.Contents}, nil
	case MessageBeginRendering:
		return BeginRendering{SurfaceID: env.SurfaceID, RootComponentID: env.RootComponentID}, nil
	case MessageDeleteSurface:
		return DeleteSurface{SurfaceID: env.SurfaceID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}

// EncodeUserAction encodes a userAction client message.
func EncodeUserAction(a UserAction) ([]byte, error) {
	return json.Marshal(envelope{
		Type:            MessageUserAction,
		SurfaceID:       a.SurfaceID,
		Name:            a.Name,
		SourceComponent: a.SourceComponentID,
		Timestamp:       a.Timestamp,
		Context:         a.Context,
	})
}

// DecodeClientMessage decodes one client-to-server message, returning either
// a UserAction or an ErrorMessage. An unrecognized type tag returns an error
// wrapping ErrUnknownMessageType.
func DecodeClientMessage(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode client message: %w", err)
	}
	switch env.Type {
	case MessageUserAction:
		if env.SurfaceID == "" {
			return nil, ErrMissingSurfaceID
		}
		return UserAction{
			Name:              env.Name,
			SurfaceID:         env.SurfaceID,
			SourceComponentID: env.SourceComponent,
			Timestamp:         env.Timestamp,
			Context:           env.Context,
		}, nil
	case MessageErrorMessage:
		return ErrorMessage{Message: env.Message, Detail: env.Detail}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}
