package a2ui

import "strings"

// KeyValue is a single entry of a dataModelUpdate's contents.
type KeyValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// DataModel is a recursive tree of scalar leaves and maps, addressed by
// slash-delimited paths ("/a/b/c") rooted at "/". Empty path segments are
// ignored, so "/a//b/" addresses the same node as "/a/b".
//
// DataModel is not safe for concurrent use; the SurfaceManager serializes
// access per surface.
type DataModel struct {
	root map[string]any
}

// NewDataModel returns an empty data model.
func NewDataModel() *DataModel {
	return &DataModel{root: make(map[string]any)}
}

// splitPath splits a slash-delimited path into its non-empty segments.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// Get traverses the tree along path and returns the value at the leaf.
// A missing segment anywhere along the way yields (nil, false); Get never
// fails. The empty path ("/" or "") returns the whole root map.
func (m *DataModel) Get(path string) (any, bool) {
	segs := splitPath(path)
	var cur any = m.root
	for _, seg := range segs {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes value at path, creating intermediate map nodes as needed.
// An existing non-map node along the way is replaced by a map. Setting the
// empty path is a no-op: the root map itself is never replaced.
func (m *DataModel) Set(path string, value any) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return
	}
	node := m.vivify(segs[:len(segs)-1])
	node[segs[len(segs)-1]] = value
}

// Merge sets path/key = value for each entry of contents, creating the
// subtree at path if absent. Sibling keys at path that are not mentioned in
// contents are left untouched; Merge never replaces the subtree wholesale.
func (m *DataModel) Merge(path string, contents []KeyValue) {
	node := m.vivify(splitPath(path))
	for _, kv := range contents {
		node[kv.Key] = kv.Value
	}
}

// vivify walks segs from the root, creating (or overwriting non-map nodes
// with) intermediate maps, and returns the map at the end of the walk.
func (m *DataModel) vivify(segs []string) map[string]any {
	node := m.root
	for _, seg := range segs {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	return node
}

// Snapshot returns a deep copy of the tree for the renderer collaborator.
// Scalar leaves and slices are shared; map nodes are copied.
func (m *DataModel) Snapshot() map[string]any {
	return copyTree(m.root)
}

func copyTree(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		if child, ok := v.(map[string]any); ok {
			out[k] = copyTree(child)
		} else {
			out[k] = v
		}
	}
	return out
}
