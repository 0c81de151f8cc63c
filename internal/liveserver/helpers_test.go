package liveserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
	"github.com/anatolykoptev/go_ytlive/internal/engine/settings"
	"github.com/anatolykoptev/go_ytlive/internal/engine/sources"
	"github.com/stretchr/testify/require"
)

const (
	liveBody    = `{"items":[{"id":{"kind":"youtube#video","videoId":"live123"}}]}`
	notLiveBody = `{"items":[]}`
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeYouTube answers every search with body.
func fakeYouTube(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newTestService(t *testing.T, apiBase string, store settings.Store) *Service {
	t.Helper()
	embedder := &sources.LiveEmbedder{
		Settings: store,
		Getter:   engine.HTTPGetter{Client: &http.Client{Timeout: 2 * time.Second}},
		Meta:     engine.Meta{Name: "YouTube Live Perma Embed", Version: "1.2.3", SettingsURL: "/settings"},
		SiteURL:  "https://example.com",
		APIBase:  apiBase,
		Timeout:  2 * time.Second,
		Logger:   quietLogger,
	}
	return New(embedder, store)
}

func newSQLiteStore(t *testing.T, s engine.Settings) *settings.SQLiteStore {
	t.Helper()
	store, err := settings.OpenSQLite(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	if s != (engine.Settings{}) {
		require.NoError(t, store.Save(t.Context(), s))
	}
	return store
}
