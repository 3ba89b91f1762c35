package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	_, ok, err := store.Load(ctx, "account", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "account", "bob@example.com", "abc123"))

	sum, ok, err := store.Load(ctx, "account", "bob@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", sum)
}

func TestFileStoreKindsAreIsolated(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "account", "bob@example.com", "aaa"))
	require.NoError(t, store.Save(ctx, "alias", "bob@example.com", "bbb"))

	sum, ok, err := store.Load(ctx, "alias", "bob@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bbb", sum)
}

func TestFileStoreDelete(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "account", "bob@example.com", "abc"))
	require.NoError(t, store.Delete(ctx, "account", "bob@example.com"))

	_, ok, err := store.Load(ctx, "account", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "account", "bob@example.com"))
}

func TestFileStoreList(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	listed, err := store.List(ctx, "account")
	require.NoError(t, err)
	assert.Empty(t, listed)

	require.NoError(t, store.Save(ctx, "account", "bob@example.com", "aaa"))
	require.NoError(t, store.Save(ctx, "account", "carol@example.com", "bbb"))
	require.NoError(t, store.Save(ctx, "alias", "sales@example.com", "ccc"))

	listed, err = store.List(ctx, "account")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"bob@example.com":   "aaa",
		"carol@example.com": "bbb",
	}, listed)
}

func TestFileStoreOverwrite(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "spam", "@example.com", "old"))
	require.NoError(t, store.Save(ctx, "spam", "@example.com", "new"))

	sum, _, err := store.Load(ctx, "spam", "@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new", sum)
}
