// go_ytlive: YouTube live stream embed server.
//
// Resolves the configured channel's current live broadcast through the YouTube
// Data API and renders an embeddable player. Exposes the embed as an MCP tool
// (youtube_live_embed) and over HTTP (/embed), plus a small settings page.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_ytlive/internal/engine"
	"github.com/anatolykoptev/go_ytlive/internal/engine/settings"
	"github.com/anatolykoptev/go_ytlive/internal/engine/sources"
	"github.com/anatolykoptev/go_ytlive/internal/liveserver"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const sourceURL = "https://github.com/anatolykoptev/go_ytlive"

var version = "dev"

func main() {
	_ = godotenv.Load()
	initLogger(env.Str("LOG_LEVEL", "info"))

	mcpPort := env.Str("MCP_PORT", "8893")
	httpAddr := env.Str("HTTP_ADDR", ":8894")

	initEngine()

	store, closeStore := openStore(context.Background())
	defer closeStore()

	embedder := sources.NewLiveEmbedder(store)
	svc := liveserver.New(embedder, store)

	slog.Info("starting go_ytlive",
		slog.String("mcp_port", mcpPort),
		slog.String("http_addr", httpAddr),
		slog.String("settings_store", store.Name()),
	)

	if httpAddr != "off" {
		go serveHTTP(httpAddr, svc)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytlive",
		Version: version,
	}, nil)
	svc.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytlive",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 30 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func initEngine() {
	siteURL := strings.TrimRight(env.Str("SITE_URL", "http://localhost:8894"), "/")
	fetchTimeout := env.Duration("FETCH_TIMEOUT", engine.DefaultFetchTimeout)

	engine.Init(engine.Config{
		PluginName:     env.Str("PLUGIN_NAME", engine.DefaultPluginName),
		PluginVersion:  version,
		SiteURL:        siteURL,
		SettingsURL:    env.Str("SETTINGS_URL", siteURL+"/settings"),
		YouTubeAPIBase: env.Str("YOUTUBE_API_BASE", engine.DefaultYouTubeAPIBase),
		FetchTimeout:   fetchTimeout,
		HTTPClient:     engine.NewFetchClient(fetchTimeout),
	})
}

// openStore picks the settings backend: PostgreSQL, then SQLite, then env.
// Environment credentials seed empty fields of a database store.
func openStore(ctx context.Context) (settings.Store, func()) {
	envSettings := engine.Settings{
		APIKey:    env.Str("YOUTUBE_API_KEY", ""),
		ChannelID: env.Str("YOUTUBE_CHANNEL_ID", ""),
	}
	fallback := func() (settings.Store, func()) {
		return settings.NewEnvStore(envSettings), func() {}
	}

	var (
		store   settings.Store
		closeFn func()
	)
	if dbURL := env.Str("DATABASE_URL", ""); dbURL != "" {
		connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pg, err := settings.ConnectPostgres(connCtx, dbURL)
		if err != nil {
			slog.Warn("settings postgres init failed, using environment", slog.Any("error", err))
			return fallback()
		}
		store, closeFn = pg, pg.Close
	} else if path := env.Str("SETTINGS_DB", ""); path != "" {
		if path == "default" {
			path = settings.DefaultSQLitePath()
		}
		lite, err := settings.OpenSQLite(path)
		if err != nil {
			slog.Warn("settings sqlite init failed, using environment", slog.Any("error", err))
			return fallback()
		}
		store, closeFn = lite, func() { _ = lite.Close() }
		slog.Info("settings sqlite opened", slog.String("path", path))
	} else {
		return fallback()
	}

	if err := settings.Seed(ctx, store, envSettings); err != nil {
		slog.Warn("settings seed failed", slog.Any("error", err))
	}
	return store, closeFn
}

func serveHTTP(addr string, svc *liveserver.Service) {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: addr,
		Handler: svc.Router(liveserver.RouterOptions{
			AdminPassword:  env.Str("ADMIN_PASSWORD", ""),
			TrustedOrigins: siteOrigins(engine.Cfg.SiteURL),
			Author:         env.Str("PLUGIN_AUTHOR", "anatolykoptev"),
			AuthorURL:      env.Str("PLUGIN_AUTHOR_URL", "https://github.com/anatolykoptev"),
			SourceURL:      sourceURL,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	slog.Info("embed http listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("embed http failed", slog.Any("error", err))
	}
}

// siteOrigins reduces the public site URL to the scheme://host form the
// settings cross-origin check accepts.
func siteOrigins(siteURL string) []string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	return []string{u.Scheme + "://" + u.Host}
}
