package a2ui

import (
	"sync"
	"time"

	"github.com/agentkit-go/agentkit/log"
)

// WildcardSurface registers a handler for actions from every surface.
const WildcardSurface = "*"

// ActionHandler receives a resolved UserAction. Handlers run synchronously on
// the dispatching goroutine; fan-out reaches every registered handler, not
// just the first match.
type ActionHandler func(action UserAction)

// ActionResolver resolves a component's declared action context against the
// surface's data model and dispatches the resulting UserAction.
//
// Handlers are surface-scoped: registering against a surface id ties the
// handler to that surface's lifetime, and deleting the surface drops its
// handlers. Resolved actions are additionally published on an outbound
// channel consumed by the transport layer.
type ActionResolver struct {
	mu       sync.Mutex
	surfaces *SurfaceManager
	handlers map[string][]ActionHandler
	out      chan UserAction
	logger   log.Logger
}

// NewActionResolver creates a resolver bound to a surface manager. The
// outbound channel is buffered; if no transport consumes it, dispatch still
// reaches registered handlers and the channel publication is dropped.
func NewActionResolver(surfaces *SurfaceManager) *ActionResolver {
	r := &ActionResolver{
		surfaces: surfaces,
		handlers: make(map[string][]ActionHandler),
		out:      make(chan UserAction, 64),
		logger:   surfaces.logger,
	}
	surfaces.registerDeleteHook(r.dropSurface)
	return r
}

// RegisterHandler registers a handler for actions originating from surfaceID,
// or from any surface when surfaceID is WildcardSurface. The registration is
// dropped automatically when the surface is deleted.
func (r *ActionResolver) RegisterHandler(surfaceID string, handler ActionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[surfaceID] = append(r.handlers[surfaceID], handler)
}

// dropSurface removes all handlers scoped to a deleted surface.
func (r *ActionResolver) dropSurface(surfaceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, surfaceID)
}

// Actions returns the outbound channel of resolved user actions. The channel
// is intended for a single consumer: the transport forwarding actions to the
// agent layer.
func (r *ActionResolver) Actions() <-chan UserAction {
	return r.out
}

// ResolveContext resolves a declared context spec to literal values:
//
//   - a literal passes through unchanged
//   - a path reference reads the surface's data model; an unresolvable path
//     is silently omitted from the result (observed protocol behavior, kept
//     as-is rather than signaled as an error)
//   - a child list passes through as the id slice
//   - a nested action spec resolves to its recursively resolved context
func (r *ActionResolver) ResolveContext(surfaceID string, spec map[string]PropValue) map[string]any {
	resolved := make(map[string]any, len(spec))
	for key, pv := range spec {
		switch pv.Kind {
		case PropLiteral:
			resolved[key] = pv.Literal
		case PropPath:
			if v, ok := r.surfaces.Get(surfaceID, pv.Path); ok {
				resolved[key] = v
			} else {
				r.logger.Debug("a2ui: context path %s unresolved on surface %s", pv.Path, surfaceID)
			}
		case PropChildren:
			resolved[key] = pv.Children
		case PropAction:
			if pv.Action != nil {
				resolved[key] = r.ResolveContext(surfaceID, pv.Action.Context)
			}
		}
	}
	return resolved
}

// Dispatch delivers an already-constructed action, preserving its timestamp.
// Used for actions arriving over the wire from a client.
func (r *ActionResolver) Dispatch(action UserAction) {
	if action.Timestamp == "" {
		action.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	r.mu.Lock()
	handlers := make([]ActionHandler, 0, len(r.handlers[action.SurfaceID])+len(r.handlers[WildcardSurface]))
	handlers = append(handlers, r.handlers[action.SurfaceID]...)
	handlers = append(handlers, r.handlers[WildcardSurface]...)
	r.mu.Unlock()

	for _, h := range handlers {
		h(action)
	}

	select {
	case r.out <- action:
	default:
		r.logger.Warn("a2ui: action channel full, %s from surface %s not forwarded", action.Name, action.SurfaceID)
	}
}

// HandleComponentAction constructs a UserAction with a fresh timestamp from
// an already-resolved context, dispatches it to every handler registered for
// the surface plus wildcard handlers, and publishes it on the outbound
// channel. It returns the constructed action.
func (r *ActionResolver) HandleComponentAction(surfaceID, sourceComponentID, name string, resolvedContext map[string]any) UserAction {
	action := UserAction{
		Name:              name,
		SurfaceID:         surfaceID,
		SourceComponentID: sourceComponentID,
		Timestamp:         time.Now().UTC().Format(time.RFC3339Nano),
		Context:           resolvedContext,
	}
	r.Dispatch(action)
	return action
}

// TriggerAction resolves a component's declared action and dispatches it in
// one step. It looks up the component's prop by name, resolves the context
// spec against the surface's data model, and hands off to
// HandleComponentAction. Unknown components or props with no action spec
// dispatch an action with an empty context.
func (r *ActionResolver) TriggerAction(surfaceID, componentID, propName string) UserAction {
	var spec *ActionSpec
	if snap, ok := r.surfaces.Snapshot(surfaceID); ok {
		if comp, ok := snap.Components[componentID]; ok {
			if pv, ok := comp.Props[propName]; ok && pv.Kind == PropAction {
				spec = pv.Action
			}
		}
	}
	if spec == nil {
		r.logger.Debug("a2ui: no action spec at %s.%s on surface %s", componentID, propName, surfaceID)
		return r.HandleComponentAction(surfaceID, componentID, propName, map[string]any{})
	}
	return r.HandleComponentAction(surfaceID, componentID, spec.Name, r.ResolveContext(surfaceID, spec.Context))
}
