package a2ui

import (
	"encoding/json"
	"fmt"
)

// PropKind discriminates the four shapes a component property can take.
type PropKind int

const (
	// PropLiteral is a plain JSON value.
	PropLiteral PropKind = iota
	// PropPath is a reference into the surface's data model.
	PropPath
	// PropChildren is an ordered list of child component ids.
	PropChildren
	// PropAction declares a named user action with a context spec.
	PropAction
)

// PropValue is a closed union over the ways a component property can be
// declared: a literal value, a data-model path reference, a list of child
// component ids, or an action declaration. Use the constructor functions
// rather than filling the struct by hand.
type PropValue struct {
	Kind     PropKind
	Literal  any
	Path     string
	Children []string
	Action   *ActionSpec
}

// ActionSpec declares a user action emitted by a component. Context maps
// context keys to values resolved at dispatch time; path references inside it
// resolve against the same surface's data model.
type ActionSpec struct {
	Name    string
	Context map[string]PropValue
}

// LiteralValue returns a PropValue holding a plain value.
func LiteralValue(v any) PropValue {
	return PropValue{Kind: PropLiteral, Literal: v}
}

// PathValue returns a PropValue referencing a data-model path.
func PathValue(path string) PropValue {
	return PropValue{Kind: PropPath, Path: path}
}

// ChildrenValue returns a PropValue listing child component ids.
func ChildrenValue(ids ...string) PropValue {
	return PropValue{Kind: PropChildren, Children: ids}
}

// ActionValue returns a PropValue declaring a user action.
func ActionValue(name string, context map[string]PropValue) PropValue {
	return PropValue{Kind: PropAction, Action: &ActionSpec{Name: name, Context: context}}
}

// propValueWire is the JSON shape of a non-literal PropValue.
type propValueWire struct {
	Literal  *json.RawMessage      `json:"literal,omitempty"`
	Path     string                `json:"path,omitempty"`
	Children []string              `json:"children,omitempty"`
	Action   *actionSpecWire       `json:"action,omitempty"`
}

type actionSpecWire struct {
	Name    string               `json:"name"`
	Context map[string]PropValue `json:"context,omitempty"`
}

// MarshalJSON encodes the PropValue as a single-key object keyed by its kind:
// {"literal": v}, {"path": "/a/b"}, {"children": [...]}, or {"action": {...}}.
func (p PropValue) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PropLiteral:
		return json.Marshal(map[string]any{"literal": p.Literal})
	case PropPath:
		return json.Marshal(map[string]any{"path": p.Path})
	case PropChildren:
		children := p.Children
		if children == nil {
			children = []string{}
		}
		return json.Marshal(map[string]any{"children": children})
	case PropAction:
		if p.Action == nil {
			return nil, fmt.Errorf("%w: action prop without spec", ErrInvalidPropValue)
		}
		return json.Marshal(map[string]any{"action": actionSpecWire{
			Name:    p.Action.Name,
			Context: p.Action.Context,
		}})
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrInvalidPropValue, p.Kind)
	}
}

// UnmarshalJSON decodes a PropValue. A bare scalar, array or object without
// any of the union keys is accepted as a literal, since producers routinely
// emit plain values for literal props.
func (p *PropValue) UnmarshalJSON(data []byte) error {
	var wire propValueWire
	if err := json.Unmarshal(data, &wire); err == nil {
		switch {
		case wire.Literal != nil:
			var v any
			if err := json.Unmarshal(*wire.Literal, &v); err != nil {
				return err
			}
			*p = PropValue{Kind: PropLiteral, Literal: v}
			return nil
		case wire.Path != "":
			*p = PropValue{Kind: PropPath, Path: wire.Path}
			return nil
		case wire.Children != nil:
			*p = PropValue{Kind: PropChildren, Children: wire.Children}
			return nil
		case wire.Action != nil:
			*p = PropValue{Kind: PropAction, Action: &ActionSpec{
				Name:    wire.Action.Name,
				Context: wire.Action.Context,
			}}
			return nil
		}
	}

	// Fall back to a literal of any JSON shape.
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPropValue, data)
	}
	*p = PropValue{Kind: PropLiteral, Literal: v}
	return nil
}

// Component is a typed node in a surface's UI tree. Props map property names
// to PropValues; child references may point at components that have not
// arrived yet, as components can arrive in any order across surfaceUpdate
// messages.
type Component struct {
	ID    string               `json:"id"`
	Type  string               `json:"type"`
	Props map[string]PropValue `json:"props,omitempty"`
}
