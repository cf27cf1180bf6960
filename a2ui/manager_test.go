package a2ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentkit-go/agentkit/log"
)

// Scenario: populate, update data, reveal.
func TestSurfaceLifecycle_PopulateThenRender(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	m.ApplySurfaceUpdate("s1", []Component{
		{ID: "chk1", Type: "Checkbox", Props: map[string]PropValue{
			"value": PathValue("/form/agreed"),
		}},
	})
	m.ApplyDataModelUpdate("s1", "/form", []KeyValue{{Key: "agreed", Value: false}})
	m.ApplyBeginRendering("s1", "chk1")

	v, ok := m.Get("s1", "/form/agreed")
	require.True(t, ok)
	assert.Equal(t, false, v)
	assert.True(t, m.IsRendering("s1"))

	snap, ok := m.Snapshot("s1")
	require.True(t, ok)
	assert.Equal(t, "chk1", snap.RootComponentID)
}

// Scenario: two components in one batch each own their own path prefix.
func TestSurfaceLifecycle_ScopedUpdatesDoNotCollide(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	m.ApplyDataModelUpdate("s1", "/ui/barA", []KeyValue{{Key: "data", Value: []int{1, 2}}})
	m.ApplyDataModelUpdate("s1", "/ui/barB", []KeyValue{{Key: "data", Value: []int{3, 4}}})

	a, ok := m.Get("s1", "/ui/barA/data")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, a)

	b, ok := m.Get("s1", "/ui/barB/data")
	require.True(t, ok)
	assert.Equal(t, []int{3, 4}, b)
}

func TestSurfaceLifecycle_DataBeforeComponents(t *testing.T) {
	t.Parallel()

	// Producers may send dataModelUpdate before the owning surfaceUpdate;
	// the data is stored regardless of component existence.
	m := NewSurfaceManager()
	m.ApplyDataModelUpdate("s1", "/chart", []KeyValue{{Key: "title", Value: "Q3"}})

	v, ok := m.Get("s1", "/chart/title")
	require.True(t, ok)
	assert.Equal(t, "Q3", v)

	m.ApplySurfaceUpdate("s1", []Component{{ID: "chart", Type: "BarChart"}})
	snap, _ := m.Snapshot("s1")
	assert.Contains(t, snap.Components, "chart")
}

func TestSurfaceLifecycle_RenderingIsMonotonic(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	m.ApplySurfaceUpdate("s1", []Component{{ID: "root", Type: "Column"}})
	m.ApplyBeginRendering("s1", "root")

	// Live updates after rendering begins do not restart the lifecycle.
	m.ApplySurfaceUpdate("s1", []Component{{ID: "extra", Type: "Text"}})
	m.ApplyDataModelUpdate("s1", "/live", []KeyValue{{Key: "tick", Value: 1}})

	assert.True(t, m.IsRendering("s1"))
	snap, _ := m.Snapshot("s1")
	assert.Contains(t, snap.Components, "extra")
}

func TestSurfaceLifecycle_DuplicateBeginRenderingIsNoOp(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	m.ApplySurfaceUpdate("s1", []Component{{ID: "root", Type: "Column"}})
	m.ApplyBeginRendering("s1", "root")
	m.ApplyBeginRendering("s1", "root")

	assert.True(t, m.IsRendering("s1"))
	snap, _ := m.Snapshot("s1")
	assert.Equal(t, "root", snap.RootComponentID)
}

func TestSurfaceLifecycle_DeleteIsTerminal(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	m.ApplyDataModelUpdate("s1", "/form", []KeyValue{{Key: "agreed", Value: true}})
	m.ApplyDeleteSurface("s1")

	_, ok := m.Get("s1", "/form/agreed")
	assert.False(t, ok)

	// Writes after deletion are dropped, not resurrected.
	m.ApplyDataModelUpdate("s1", "/form", []KeyValue{{Key: "agreed", Value: true}})
	_, ok = m.Get("s1", "/form/agreed")
	assert.False(t, ok)

	m.ApplyBeginRendering("s1", "root")
	assert.False(t, m.IsRendering("s1"))
}

func TestSurfaceLifecycle_ComponentReplacedWholesale(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	m.ApplySurfaceUpdate("s1", []Component{{ID: "c1", Type: "Text", Props: map[string]PropValue{
		"text": LiteralValue("old"),
		"bold": LiteralValue(true),
	}}})
	m.ApplySurfaceUpdate("s1", []Component{{ID: "c1", Type: "Text", Props: map[string]PropValue{
		"text": LiteralValue("new"),
	}}})

	snap, _ := m.Snapshot("s1")
	c1 := snap.Components["c1"]
	assert.Equal(t, "new", c1.Props["text"].Literal)
	_, hasBold := c1.Props["bold"]
	assert.False(t, hasBold, "second update replaces the component, props are not merged")
}

func TestSurfaceLifecycle_ApplyDispatch(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	m.Apply(SurfaceUpdate{SurfaceID: "s1", Components: []Component{{ID: "c1", Type: "Text"}}})
	m.Apply(DataModelUpdate{SurfaceID: "s1", Path: "/d", Contents: []KeyValue{{Key: "k", Value: 1}}})
	m.Apply(BeginRendering{SurfaceID: "s1", RootComponentID: "c1"})

	assert.True(t, m.IsRendering("s1"))
	v, _ := m.Get("s1", "/d/k")
	assert.Equal(t, 1, v)

	m.Apply(DeleteSurface{SurfaceID: "s1"})
	_, ok := m.Snapshot("s1")
	assert.False(t, ok)
}

type bogusMessage struct{}

func (bogusMessage) MessageType() MessageType { return MessageType("bogus") }
func (bogusMessage) Surface() string          { return "s1" }

func TestSurfaceLifecycle_ApplyResult(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	require.NoError(t, m.Apply(SurfaceUpdate{SurfaceID: "s1", Components: []Component{{ID: "root", Type: "Column"}}}))
	require.NoError(t, m.Apply(BeginRendering{SurfaceID: "s1", RootComponentID: "root"}))

	// Tolerated no-ops stay nil: duplicate beginRendering, writes after delete.
	require.NoError(t, m.Apply(BeginRendering{SurfaceID: "s1", RootComponentID: "root"}))
	require.NoError(t, m.Apply(DeleteSurface{SurfaceID: "s1"}))
	require.NoError(t, m.Apply(DataModelUpdate{SurfaceID: "s1", Path: "/d", Contents: []KeyValue{{Key: "k", Value: 1}}}))

	assert.ErrorIs(t, m.Apply(bogusMessage{}), ErrUnknownMessageType)
}

func TestSurfaceLifecycle_DuplicateBeginRenderingLogsState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := NewSurfaceManager(WithLogger(log.NewCustomLogger(&buf, log.LogLevelDebug)))
	m.ApplySurfaceUpdate("s1", []Component{{ID: "root", Type: "Column"}})
	m.ApplyBeginRendering("s1", "root")
	m.ApplyBeginRendering("s1", "root")

	assert.Contains(t, buf.String(), "already in rendering state")
}

func TestSurfaceManager_SetValueAtPath(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	m.ApplySurfaceUpdate("s1", []Component{{ID: "input", Type: "TextField"}})

	m.SetValueAtPath("s1", "/form/email", "a@b.com")

	v, ok := m.Get("s1", "/form/email")
	require.True(t, ok)
	assert.Equal(t, "a@b.com", v)
}

func TestSurfaceManager_SurfaceIDs(t *testing.T) {
	t.Parallel()

	m := NewSurfaceManager()
	m.ApplySurfaceUpdate("s1", nil)
	m.ApplySurfaceUpdate("s2", nil)
	m.ApplyDeleteSurface("s1")

	ids := m.SurfaceIDs()
	assert.Equal(t, []string{"s2"}, ids)
}
