package a2ui

// surfaceState labels the lifecycle state of a surface, used for logging.
// A deleted surface is removed from the manager entirely; only its id is
// remembered so late writes can be dropped.
type surfaceState string

const (
	statePopulating surfaceState = "populating"
	stateRendering  surfaceState = "rendering"
)

// Surface is a server-declared unit of renderable UI state: a component map,
// a data model, and a rendering flag. A surface with rendering disabled must
// not be presented even if components exist; this lets a producer populate a
// surface fully before revealing it atomically.
type Surface struct {
	id              string
	owningMessageID string
	components      map[string]Component
	data            *DataModel
	rootComponentID string
	rendering       bool
}

func newSurface(id string) *Surface {
	return &Surface{
		id:         id,
		components: make(map[string]Component),
		data:       NewDataModel(),
	}
}

func (s *Surface) state() surfaceState {
	if s.rendering {
		return stateRendering
	}
	return statePopulating
}

// SurfaceSnapshot is a point-in-time copy of a surface, sufficient for the
// renderer collaborator to render or re-render.
type SurfaceSnapshot struct {
	ID              string               `json:"id"`
	OwningMessageID string               `json:"owningMessageId,omitempty"`
	Components      map[string]Component `json:"components"`
	DataModel       map[string]any       `json:"dataModel"`
	RootComponentID string               `json:"rootComponentId,omitempty"`
	IsRendering     bool                 `json:"isRendering"`
}

func (s *Surface) snapshot() SurfaceSnapshot {
	comps := make(map[string]Component, len(s.components))
	for id, c := range s.components {
		comps[id] = c
	}
	return SurfaceSnapshot{
		ID:              s.id,
		OwningMessageID: s.owningMessageID,
		Components:      comps,
		DataModel:       s.data.Snapshot(),
		RootComponentID: s.rootComponentID,
		IsRendering:     s.rendering,
	}
}
