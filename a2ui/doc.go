// Package a2ui implements the A2UI protocol: a declarative, data-bound UI
// surface shared between an agent backend and a rendering client.
//
// A surface is a set of components (a DAG keyed by component id) plus a
// JSON-Pointer-addressed data model. The server drives a surface through four
// message kinds (surfaceUpdate, dataModelUpdate, beginRendering,
// deleteSurface); the client reports back with userAction and errorMessage.
//
// The package is split along the protocol's seams:
//
//   - message.go: the wire codec for all six message kinds
//   - component.go: components and the PropValue union
//   - datamodel.go: the path-addressed data model tree
//   - surface.go / manager.go: the surface lifecycle state machine
//   - action.go: user-action context resolution and dispatch
//
// Basic usage:
//
//	m := a2ui.NewSurfaceManager()
//	m.ApplySurfaceUpdate("s1", []a2ui.Component{
//		{ID: "chk1", Type: "Checkbox", Props: map[string]a2ui.PropValue{
//			"value": a2ui.PathValue("/form/agreed"),
//		}},
//	})
//	m.ApplyDataModelUpdate("s1", "/form", []a2ui.KeyValue{{Key: "agreed", Value: false}})
//	m.ApplyBeginRendering("s1", "chk1")
//
// All lifecycle operations are tolerant: duplicate beginRendering, updates to
// deleted surfaces and unknown message kinds are logged no-ops, because the
// SSE transport offers no error channel back to the producer mid-stream.
package a2ui
