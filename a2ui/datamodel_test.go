package a2ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataModel_MergeKeepsSiblings(t *testing.T) {
	t.Parallel()

	m := NewDataModel()
	m.Set("/p/k1", "keep")

	m.Merge("/p", []KeyValue{{Key: "k2", Value: 42}})

	v, ok := m.Get("/p/k1")
	assert.True(t, ok)
	assert.Equal(t, "keep", v)

	v, ok = m.Get("/p/k2")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestDataModel_PathIsolation(t *testing.T) {
	t.Parallel()

	m := NewDataModel()
	m.Merge("/ui/c1", []KeyValue{{Key: "x", Value: "one"}})
	m.Merge("/ui/c2", []KeyValue{{Key: "x", Value: "two"}})

	v1, ok := m.Get("/ui/c1/x")
	assert.True(t, ok)
	assert.Equal(t, "one", v1)

	v2, ok := m.Get("/ui/c2/x")
	assert.True(t, ok)
	assert.Equal(t, "two", v2)

	// Overwriting one leaf never disturbs the sibling subtree.
	m.Set("/ui/c1/x", "changed")
	v2, _ = m.Get("/ui/c2/x")
	assert.Equal(t, "two", v2)
}

func TestDataModel_GetMissingPath(t *testing.T) {
	t.Parallel()

	m := NewDataModel()

	_, ok := m.Get("/does/not/exist")
	assert.False(t, ok)

	// Traversing through a scalar leaf is also just a miss.
	m.Set("/a", "scalar")
	_, ok = m.Get("/a/b/c")
	assert.False(t, ok)
}

func TestDataModel_EmptySegmentsIgnored(t *testing.T) {
	t.Parallel()

	m := NewDataModel()
	m.Set("/a//b/", true)

	v, ok := m.Get("/a/b")
	assert.True(t, ok)
	assert.Equal(t, true, v)
}

func TestDataModel_SetAutoVivifies(t *testing.T) {
	t.Parallel()

	m := NewDataModel()
	m.Set("/deep/nested/leaf", 1)

	v, ok := m.Get("/deep/nested/leaf")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// Intermediate nodes are maps.
	mid, ok := m.Get("/deep/nested")
	assert.True(t, ok)
	assert.IsType(t, map[string]any{}, mid)
}

func TestDataModel_SetIdempotent(t *testing.T) {
	t.Parallel()

	m := NewDataModel()
	m.Set("/x", "v")
	m.Set("/x", "v")

	v, ok := m.Get("/x")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestDataModel_RootGet(t *testing.T) {
	t.Parallel()

	m := NewDataModel()
	m.Set("/k", 1)

	root, ok := m.Get("/")
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"k": 1}, root)
}

func TestDataModel_SnapshotIsDetached(t *testing.T) {
	t.Parallel()

	m := NewDataModel()
	m.Set("/form/email", "a@b.com")

	snap := m.Snapshot()
	m.Set("/form/email", "changed")

	form := snap["form"].(map[string]any)
	assert.Equal(t, "a@b.com", form["email"])
}
