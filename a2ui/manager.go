package a2ui

import (
	"fmt"
	"sync"

	"github.com/agentkit-go/agentkit/log"
)

// SurfaceManager coordinates the lifecycle of all active surfaces:
// Absent -> Populating -> Rendering -> Deleted. It applies server messages in
// arrival order and exposes snapshots and data-model access for the renderer
// and the action resolver.
//
// The coordinator is tolerant by design: duplicate beginRendering, updates to
// a deleted surface and messages for unknown surfaces are no-ops or
// auto-creation, never hard errors, because the transport has no
// request/response error channel back to the producer mid-stream.
type SurfaceManager struct {
	mu       sync.RWMutex
	surfaces map[string]*Surface
	deleted  map[string]bool
	onDelete []func(surfaceID string)
	logger   log.Logger
}

// SurfaceManagerOption configures a SurfaceManager.
type SurfaceManagerOption func(*SurfaceManager)

// WithLogger sets the logger used for protocol no-op reporting.
func WithLogger(logger log.Logger) SurfaceManagerOption {
	return func(m *SurfaceManager) {
		m.logger = logger
	}
}

// NewSurfaceManager creates an empty manager.
func NewSurfaceManager(opts ...SurfaceManagerOption) *SurfaceManager {
	m := &SurfaceManager{
		surfaces: make(map[string]*Surface),
		deleted:  make(map[string]bool),
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply dispatches one server message to the matching lifecycle operation.
// Tolerated protocol no-ops (duplicate beginRendering, writes to deleted
// surfaces) return nil; only a message of unknown kind is an error.
func (m *SurfaceManager) Apply(msg ServerMessage) error {
	switch t := msg.(type) {
	case SurfaceUpdate:
		m.ApplySurfaceUpdate(t.SurfaceID, t.Components)
	case DataModelUpdate:
		m.ApplyDataModelUpdate(t.SurfaceID, t.Path, t.Contents)
	case BeginRendering:
		m.ApplyBeginRendering(t.SurfaceID, t.RootComponentID)
	case DeleteSurface:
		m.ApplyDeleteSurface(t.SurfaceID)
	default:
		m.logger.Warn("a2ui: skipping message of unknown kind %T", msg)
		return fmt.Errorf("%w: %T", ErrUnknownMessageType, msg)
	}
	return nil
}

// surface returns the surface for id, creating it if it has never been seen.
// Writes to a deleted surface return nil; the caller drops the message.
// Auto-creation on first write is deliberate: the protocol does not guarantee
// that surfaceUpdate arrives before dataModelUpdate for the same surface.
func (m *SurfaceManager) surface(id string) *Surface {
	if m.deleted[id] {
		return nil
	}
	s, ok := m.surfaces[id]
	if !ok {
		s = newSurface(id)
		m.surfaces[id] = s
	}
	return s
}

// ApplySurfaceUpdate merges components into the surface's component map.
// The map is never replaced wholesale; an incoming component with an existing
// id replaces that component only.
func (m *SurfaceManager) ApplySurfaceUpdate(surfaceID string, components []Component) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.surface(surfaceID)
	if s == nil {
		m.logger.Debug("a2ui: surfaceUpdate for deleted surface %s dropped", surfaceID)
		return
	}
	for _, c := range components {
		if c.ID == "" {
			m.logger.Warn("a2ui: component without id in surfaceUpdate for %s skipped", surfaceID)
			continue
		}
		s.components[c.ID] = c
	}
}

// ApplyDataModelUpdate merges contents into the subtree at path. The update
// is applied even if no component references the path yet; producers may send
// data before the owning component's surfaceUpdate.
func (m *SurfaceManager) ApplyDataModelUpdate(surfaceID, path string, contents []KeyValue) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.surface(surfaceID)
	if s == nil {
		m.logger.Debug("a2ui: dataModelUpdate for deleted surface %s dropped", surfaceID)
		return
	}
	s.data.Merge(path, contents)
}

// ApplyBeginRendering sets the root component and enables rendering.
// Re-applying is a no-op; rendering is monotonic until deletion. The root
// component may arrive fractionally later; the renderer shows nothing until
// the root resolves.
func (m *SurfaceManager) ApplyBeginRendering(surfaceID, rootComponentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.surface(surfaceID)
	if s == nil {
		m.logger.Debug("a2ui: beginRendering for deleted surface %s dropped", surfaceID)
		return
	}
	if s.rendering {
		m.logger.Debug("a2ui: duplicate beginRendering for surface %s already in %s state", surfaceID, s.state())
		return
	}
	if _, ok := s.components[rootComponentID]; !ok {
		m.logger.Debug("a2ui: beginRendering root %s not yet present on surface %s", rootComponentID, surfaceID)
	}
	s.rootComponentID = rootComponentID
	s.rendering = true
}

// ApplyDeleteSurface discards the surface and all its components and data,
// and notifies deletion hooks so surface-scoped action handlers are dropped.
// Terminal: later writes to the same id are dropped.
func (m *SurfaceManager) ApplyDeleteSurface(surfaceID string) {
	m.mu.Lock()
	hooks := m.onDelete
	_, existed := m.surfaces[surfaceID]
	delete(m.surfaces, surfaceID)
	m.deleted[surfaceID] = true
	m.mu.Unlock()

	if !existed {
		m.logger.Debug("a2ui: deleteSurface for unknown surface %s", surfaceID)
	}
	for _, hook := range hooks {
		hook(surfaceID)
	}
}

// SetOwningMessage records the chat message a surface is grouped under.
func (m *SurfaceManager) SetOwningMessage(surfaceID, messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.surface(surfaceID); s != nil {
		s.owningMessageID = messageID
	}
}

// Get reads a data-model value for a surface. It returns (nil, false) for
// missing paths, unknown surfaces and deleted surfaces alike.
func (m *SurfaceManager) Get(surfaceID, path string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.surfaces[surfaceID]
	if !ok {
		return nil, false
	}
	return s.data.Get(path)
}

// SetValueAtPath writes a data-model value directly. This is the two-way
// binding entry point used by input components mirroring local edits; it
// never dispatches an action.
func (m *SurfaceManager) SetValueAtPath(surfaceID, path string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.surface(surfaceID)
	if s == nil {
		m.logger.Debug("a2ui: setValueAtPath for deleted surface %s dropped", surfaceID)
		return
	}
	s.data.Set(path, value)
}

// IsRendering reports whether the surface exists and has rendering enabled.
func (m *SurfaceManager) IsRendering(surfaceID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.surfaces[surfaceID]
	return ok && s.rendering
}

// Snapshot returns a point-in-time copy of the surface for rendering.
func (m *SurfaceManager) Snapshot(surfaceID string) (SurfaceSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.surfaces[surfaceID]
	if !ok {
		return SurfaceSnapshot{}, false
	}
	return s.snapshot(), true
}

// SurfaceIDs returns the ids of all live surfaces.
func (m *SurfaceManager) SurfaceIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.surfaces))
	for id := range m.surfaces {
		ids = append(ids, id)
	}
	return ids
}

// registerDeleteHook adds a hook invoked after a surface is deleted.
func (m *SurfaceManager) registerDeleteHook(hook func(surfaceID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDelete = append(m.onDelete, hook)
}
