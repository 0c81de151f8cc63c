package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestSQLiteStoreEmpty(t *testing.T) {
	store, _ := openTestSQLite(t)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{}, got)
	assert.False(t, got.Complete())
	assert.Equal(t, "sqlite", store.Name())
	assert.True(t, Writable(store))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, path := openTestSQLite(t)

	require.NoError(t, store.Save(ctx, engine.Settings{APIKey: " AIzaKEY ", ChannelID: "UC123"}))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{APIKey: "AIzaKEY", ChannelID: "UC123"}, got)

	require.NoError(t, store.Save(ctx, engine.Settings{APIKey: "AIzaNEW", ChannelID: "UC123"}))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AIzaNEW", got.APIKey)

	// Values survive reopening the file.
	require.NoError(t, store.Close())
	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{APIKey: "AIzaNEW", ChannelID: "UC123"}, got)
}

func TestSQLiteStoreClearedFieldLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestSQLite(t)

	require.NoError(t, store.Save(ctx, engine.Settings{APIKey: "k", ChannelID: "c"}))
	require.NoError(t, store.Save(ctx, Merge(engine.Settings{APIKey: "k", ChannelID: "c"}, engine.Settings{}, FieldAPIKey)))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{ChannelID: "c"}, got)
	assert.False(t, got.Complete())
}

func TestSQLiteStoreSeed(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestSQLite(t)

	require.NoError(t, store.Save(ctx, engine.Settings{ChannelID: "UCdb"}))
	require.NoError(t, Seed(ctx, store, engine.Settings{APIKey: "env-key", ChannelID: "UCenv"}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{APIKey: "env-key", ChannelID: "UCdb"}, got)
}

func TestSQLiteStoreCountsMetrics(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestSQLite(t)
	before := engine.GetMetrics()

	require.NoError(t, store.Save(ctx, engine.Settings{APIKey: "k", ChannelID: "c"}))
	_, err := store.Load(ctx)
	require.NoError(t, err)

	after := engine.GetMetrics()
	assert.Equal(t, int64(1), after["settings_writes"]-before["settings_writes"])
	assert.Equal(t, int64(1), after["settings_reads"]-before["settings_reads"])
}
