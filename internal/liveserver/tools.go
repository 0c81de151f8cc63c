package liveserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
	"github.com/anatolykoptev/go_ytlive/internal/engine/settings"
	"github.com/anatolykoptev/go_ytlive/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Service exposes the live embed over MCP and HTTP.
type Service struct {
	embedder *sources.LiveEmbedder
	store    settings.Store
	meta     engine.Meta
}

// New wires a Service around an embedder and the store it reads from.
func New(embedder *sources.LiveEmbedder, store settings.Store) *Service {
	return &Service{embedder: embedder, store: store, meta: embedder.Meta}
}

// EmbedOutput is the structured result of youtube_live_embed.
type EmbedOutput struct {
	Status  engine.LiveStatus `json:"status"`
	VideoID string            `json:"video_id,omitempty"`
	HTML    string            `json:"html"`
	Text    string            `json:"text"`
}

// SettingsView is what callers may see of the stored settings.
type SettingsView struct {
	APIKey     string `json:"api_key"` // masked
	ChannelID  string `json:"channel_id"`
	Configured bool   `json:"configured"`
	Backend    string `json:"backend"`
	Writable   bool   `json:"writable"`
}

// SettingsSetInput is the input for youtube_live_settings_set.
type SettingsSetInput struct {
	APIKey    string   `json:"api_key,omitempty" jsonschema:"YouTube Data API key. Empty keeps the stored value"`
	ChannelID string   `json:"channel_id,omitempty" jsonschema:"YouTube channel ID (UC...). Empty keeps the stored value"`
	Clear     []string `json:"clear,omitempty" jsonschema:"Fields to clear before applying the update: api_key, channel_id"`
}

// RegisterTools registers the live embed tools on the given MCP server:
// youtube_live_embed, youtube_live_settings_get, youtube_live_settings_set.
func (s *Service) RegisterTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_live_embed",
		Description: "Render an embeddable player for the configured YouTube channel's current live stream. Returns an iframe when live, otherwise a status paragraph (not live, settings missing, or lookup failed). Pass width and height together for a fixed-size player; omit both for a responsive 16:9 player.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.EmbedRequest) (*mcp.CallToolResult, EmbedOutput, error) {
		return nil, s.Embed(ctx, input), nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_live_settings_get",
		Description: "Show the live embed settings: masked API key, channel ID, whether both are configured, and which store backs them.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, *SettingsView, error) {
		view, err := s.Settings(ctx)
		if err != nil {
			return nil, nil, err
		}
		return nil, view, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_live_settings_set",
		Description: "Update the YouTube API key and/or channel ID used by the live embed. Empty fields keep their stored value; list a field in clear to erase it. Fails when settings come from the environment.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SettingsSetInput) (*mcp.CallToolResult, *SettingsView, error) {
		if input.APIKey == "" && input.ChannelID == "" && len(input.Clear) == 0 {
			return nil, nil, errors.New("api_key, channel_id or clear is required")
		}
		view, err := s.UpdateSettings(ctx, engine.Settings{APIKey: input.APIKey, ChannelID: input.ChannelID}, input.Clear...)
		if err != nil {
			return nil, nil, err
		}
		return nil, view, nil
	})
}

// Embed resolves and renders the live player for req.
func (s *Service) Embed(ctx context.Context, req engine.EmbedRequest) EmbedOutput {
	e := s.embedder.Embed(ctx, req)
	return EmbedOutput{
		Status:  e.Status,
		VideoID: e.VideoID,
		HTML:    e.HTML,
		Text:    engine.PlainText(e),
	}
}

// Settings returns the masked view of the stored settings.
func (s *Service) Settings(ctx context.Context) (*SettingsView, error) {
	cur, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return s.view(cur), nil
}

// UpdateSettings clears the named fields, merges update into the stored
// settings and saves them.
func (s *Service) UpdateSettings(ctx context.Context, update engine.Settings, clearFields ...string) (*SettingsView, error) {
	if !settings.Writable(s.store) {
		return nil, settings.ErrReadOnly
	}
	if err := settings.CheckFields(clearFields); err != nil {
		return nil, err
	}
	cur, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	merged := settings.Merge(cur, update, clearFields...)
	if err := s.store.Save(ctx, merged); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return s.view(merged), nil
}

func (s *Service) view(cur engine.Settings) *SettingsView {
	return &SettingsView{
		APIKey:     cur.MaskedAPIKey(),
		ChannelID:  cur.ChannelID,
		Configured: cur.Complete(),
		Backend:    s.store.Name(),
		Writable:   settings.Writable(s.store),
	}
}
