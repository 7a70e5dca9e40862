package idcodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalBytesKeyOrderIndependence(t *testing.T) {
	a := map[string]any{"b": 1, "a": 2, "c": []any{1, 2, 3}}
	b := map[string]any{"c": []any{1, 2, 3}, "a": 2, "b": 1}

	ca, err := CanonicalBytes(a)
	require.NoError(t, err)
	cb, err := CanonicalBytes(b)
	require.NoError(t, err)
	require.Equal(t, string(ca), string(cb))
	require.Equal(t, `{"a":2,"b":1,"c":[1,2,3]}`, string(ca))
}

func TestCanonicalBytesPreservesArrayOrder(t *testing.T) {
	a := map[string]any{"xs": []any{3, 1, 2}}
	out, err := CanonicalBytes(a)
	require.NoError(t, err)
	require.Equal(t, `{"xs":[3,1,2]}`, string(out))
}

func TestCanonicalBytesNestedObjects(t *testing.T) {
	type inner struct {
		Z int `json:"z"`
		A int `json:"a"`
	}
	type outer struct {
		Inner inner  `json:"inner"`
		Name  string `json:"name"`
	}
	out, err := CanonicalBytes(outer{Inner: inner{Z: 1, A: 2}, Name: "x"})
	require.NoError(t, err)
	require.Equal(t, `{"inner":{"a":2,"z":1},"name":"x"}`, string(out))
}

func TestContentIDDeterministic(t *testing.T) {
	a := map[string]any{"from": "alice", "to": "bob", "score": 80}
	b := map[string]any{"to": "bob", "score": 80, "from": "alice"}

	idA, err := ContentID(a)
	require.NoError(t, err)
	idB, err := ContentID(b)
	require.NoError(t, err)
	require.Equal(t, idA, idB)
	require.True(t, len(idA) > len(ContentIDPrefix))
	require.Equal(t, ContentIDPrefix, idA[:len(ContentIDPrefix)])
}

func TestContentIDChangesWithContent(t *testing.T) {
	idA, err := ContentID(map[string]any{"x": 1})
	require.NoError(t, err)
	idB, err := ContentID(map[string]any{"x": 2})
	require.NoError(t, err)
	require.NotEqual(t, idA, idB)
}
