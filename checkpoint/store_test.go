package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	saved := &Checkpoint{
		Collection:     "songs",
		EmbeddingModel: "all-minilm",
		Committed:      1700,
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx, "songs")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "songs", loaded.Collection)
	assert.Equal(t, "all-minilm", loaded.EmbeddingModel)
	assert.Equal(t, uint64(1700), loaded.Committed)
	assert.WithinDuration(t, time.Now().UTC(), loaded.UpdatedAt, time.Minute)
}

func TestStore_LoadMissing(t *testing.T) {
	store := openTestStore(t)

	loaded, err := store.Load(context.Background(), "never-ingested")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, &Checkpoint{Collection: "songs", Committed: 100}))
	require.NoError(t, store.Save(ctx, &Checkpoint{Collection: "songs", Committed: 200}))

	loaded, err := store.Load(ctx, "songs")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, uint64(200), loaded.Committed)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, &Checkpoint{Collection: "songs", Committed: 100}))
	require.NoError(t, store.Clear(ctx, "songs"))

	loaded, err := store.Load(ctx, "songs")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_IsolatedPerCollection(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, &Checkpoint{Collection: "songs", Committed: 10}))
	require.NoError(t, store.Save(ctx, &Checkpoint{Collection: "podcasts", Committed: 99}))

	loaded, err := store.Load(ctx, "songs")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, uint64(10), loaded.Committed)
}
