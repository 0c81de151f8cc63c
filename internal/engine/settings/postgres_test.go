//go:build integration

package settings

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := ConnectPostgres(ctx, dbURL)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.pool.Exec(ctx, `DELETE FROM embed_options`)
	require.NoError(t, err)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{}, got)

	require.NoError(t, store.Save(ctx, engine.Settings{APIKey: "AIzaKEY", ChannelID: "UC123"}))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Settings{APIKey: "AIzaKEY", ChannelID: "UC123"}, got)

	require.NoError(t, Seed(ctx, store, engine.Settings{APIKey: "env", ChannelID: "UCenv"}))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AIzaKEY", got.APIKey, "seed must not overwrite stored values")

	// Migrations are idempotent.
	again, err := ConnectPostgres(ctx, dbURL)
	require.NoError(t, err)
	again.Close()
}
