package a2ui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeSurfaceUpdate(t *testing.T) {
	t.Parallel()

	msg := SurfaceUpdate{
		SurfaceID: "s1",
		Components: []Component{
			{ID: "chk1", Type: "Checkbox", Props: map[string]PropValue{
				"value": PathValue("/form/agreed"),
				"label": LiteralValue("I agree"),
			}},
		},
	}

	data, err := EncodeServerMessage(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "surfaceUpdate", raw["type"])
	assert.Equal(t, "s1", raw["surfaceId"])

	decoded, err := DecodeServerMessage(data)
	require.NoError(t, err)

	su, ok := decoded.(SurfaceUpdate)
	require.True(t, ok)
	require.Len(t, su.Components, 1)
	assert.Equal(t, "chk1", su.Components[0].ID)
	assert.Equal(t, PropPath, su.Components[0].Props["value"].Kind)
	assert.Equal(t, "/form/agreed", su.Components[0].Props["value"].Path)
	assert.Equal(t, "I agree", su.Components[0].Props["label"].Literal)
}

func TestEncodeDecodeDataModelUpdate(t *testing.T) {
	t.Parallel()

	msg := DataModelUpdate{
		SurfaceID: "s1",
		Path:      "/ui/barA",
		Contents:  []KeyValue{{Key: "data", Value: []any{1, 2}}},
	}

	data, err := EncodeServerMessage(msg)
	require.NoError(t, err)

	decoded, err := DecodeServerMessage(data)
	require.NoError(t, err)

	du, ok := decoded.(DataModelUpdate)
	require.True(t, ok)
	assert.Equal(t, "/ui/barA", du.Path)
	require.Len(t, du.Contents, 1)
	assert.Equal(t, "data", du.Contents[0].Key)
}

func TestEncodeDecodeBeginRenderingAndDelete(t *testing.T) {
	t.Parallel()

	data, err := EncodeServerMessage(BeginRendering{SurfaceID: "s1", RootComponentID: "root"})
	require.NoError(t, err)
	decoded, err := DecodeServerMessage(data)
	require.NoError(t, err)
	br, ok := decoded.(BeginRendering)
	require.True(t, ok)
	assert.Equal(t, "root", br.RootComponentID)

	data, err = EncodeServerMessage(DeleteSurface{SurfaceID: "s1"})
	require.NoError(t, err)
	decoded, err = DecodeServerMessage(data)
	require.NoError(t, err)
	_, ok = decoded.(DeleteSurface)
	assert.True(t, ok)
}

func TestDecodeUnknownType(t *testing.T) {
	t.Parallel()

	_, err := DecodeServerMessage([]byte(`{"type":"futureKind","surfaceId":"s1"}`))
	assert.ErrorIs(t, err, ErrUnknownMessageType)

	// Unknown type without a surface id is still reported as unknown type,
	// not as a missing id.
	_, err = DecodeServerMessage([]byte(`{"type":"futureKind"}`))
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestDecodeMissingSurfaceID(t *testing.T) {
	t.Parallel()

	_, err := DecodeServerMessage([]byte(`{"type":"surfaceUpdate"}`))
	assert.ErrorIs(t, err, ErrMissingSurfaceID)
}

func TestDecodeClientMessage(t *testing.T) {
	t.Parallel()

	action := UserAction{
		Name:              "submit",
		SurfaceID:         "s1",
		SourceComponentID: "btn1",
		Timestamp:         "2026-01-02T03:04:05Z",
		Context:           map[string]any{"email": "a@b.com"},
	}
	data, err := EncodeUserAction(action)
	require.NoError(t, err)

	decoded, err := DecodeClientMessage(data)
	require.NoError(t, err)
	got, ok := decoded.(UserAction)
	require.True(t, ok)
	assert.Equal(t, action, got)

	decoded, err = DecodeClientMessage([]byte(`{"type":"errorMessage","message":"render failed","detail":"missing root"}`))
	require.NoError(t, err)
	em, ok := decoded.(ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, "render failed", em.Message)
	assert.Equal(t, "missing root", em.Detail)

	_, err = DecodeClientMessage([]byte(`{"type":"mystery"}`))
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestPropValueJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pv   PropValue
		want string
	}{
		{"literal", LiteralValue("x"), `{"literal":"x"}`},
		{"path", PathValue("/a/b"), `{"path":"/a/b"}`},
		{"children", ChildrenValue("c1", "c2"), `{"children":["c1","c2"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.pv)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back PropValue
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.pv.Kind, back.Kind)
		})
	}
}

func TestPropValueActionJSON(t *testing.T) {
	t.Parallel()

	pv := ActionValue("submit", map[string]PropValue{
		"email": PathValue("/form/email"),
		"tag":   LiteralValue("x"),
	})

	data, err := json.Marshal(pv)
	require.NoError(t, err)

	var back PropValue
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, PropAction, back.Kind)
	require.NotNil(t, back.Action)
	assert.Equal(t, "submit", back.Action.Name)
	assert.Equal(t, PropPath, back.Action.Context["email"].Kind)
	assert.Equal(t, "x", back.Action.Context["tag"].Literal)
}

func TestPropValueBareLiteralDecode(t *testing.T) {
	t.Parallel()

	var pv PropValue
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &pv))
	assert.Equal(t, PropLiteral, pv.Kind)
	assert.Equal(t, "hello", pv.Literal)

	require.NoError(t, json.Unmarshal([]byte(`[1,2,3]`), &pv))
	assert.Equal(t, PropLiteral, pv.Kind)
}
