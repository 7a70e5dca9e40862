package evidenceblob

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStorePutGetRoundTrip(t *testing.T) {
	store := NewMemStore()
	id, err := store.Put([]byte("hello evidence"))
	require.NoError(t, err)
	require.True(t, store.Has(id))

	got, err := store.Get(id)
	require.NoError(t, err)
	require.Equal(t, "hello evidence", string(got))
}

func TestMemStorePutIdempotent(t *testing.T) {
	store := NewMemStore()
	id1, err := store.Put([]byte("same bytes"))
	require.NoError(t, err)
	id2, err := store.Put([]byte("same bytes"))
	require.NoError(t, err)
	require.Equal(t, id1, id2)
}

func TestMemStoreGetMissingReturnsNotFound(t *testing.T) {
	store := NewMemStore()
	id, err := store.Put([]byte("x"))
	require.NoError(t, err)

	other := NewMemStore()
	_, err = other.Get(id)
	require.True(t, IsNotFound(err))
}

func TestFSStorePutGetRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	id, err := store.Put([]byte("disk evidence"))
	require.NoError(t, err)
	require.True(t, store.Has(id))

	got, err := store.Get(id)
	require.NoError(t, err)
	require.Equal(t, "disk evidence", string(got))
}

func TestFSStorePutTwiceSameBytesOK(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	id1, err := store.Put([]byte("repeat"))
	require.NoError(t, err)
	id2, err := store.Put([]byte("repeat"))
	require.NoError(t, err)
	require.Equal(t, id1, id2)
}
