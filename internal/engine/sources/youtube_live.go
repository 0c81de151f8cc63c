package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"
)

// YouTube live lookup: one Data API v3 search call per embed, no cache, no retry.

// maxLoggedBody caps the response body written to the diagnostic log.
const maxLoggedBody = 2048

// SettingsLoader is the read side of a settings store.
type SettingsLoader interface {
	Load(ctx context.Context) (engine.Settings, error)
}

// LiveEmbedder resolves the configured channel's live video and renders it.
// Safe for concurrent use; it holds no mutable state.
type LiveEmbedder struct {
	Settings SettingsLoader
	Getter   engine.Getter
	Meta     engine.Meta
	SiteURL  string
	APIBase  string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewLiveEmbedder builds an embedder from the engine configuration.
func NewLiveEmbedder(settings SettingsLoader) *LiveEmbedder {
	return &LiveEmbedder{
		Settings: settings,
		Getter:   engine.HTTPGetter{Client: engine.Cfg.HTTPClient},
		Meta:     engine.Cfg.Meta(),
		SiteURL:  engine.Cfg.SiteURL,
		APIBase:  engine.Cfg.YouTubeAPIBase,
		Timeout:  engine.Cfg.FetchTimeout,
		Logger:   slog.Default(),
	}
}

// Embed loads settings, resolves the live video and renders the result.
// It always produces markup; failures are logged, never returned.
func (e *LiveEmbedder) Embed(ctx context.Context, req engine.EmbedRequest) engine.Embed {
	res := e.resolveFromStore(ctx)
	if res.Status == engine.StatusFetchError {
		e.logFailure(res.Failure)
	}
	engine.IncrEmbed(res.Status)
	return engine.Embed{
		Status:  res.Status,
		VideoID: res.VideoID,
		HTML:    engine.RenderLive(res, req, e.Meta),
	}
}

func (e *LiveEmbedder) resolveFromStore(ctx context.Context) engine.LiveResult {
	if e.Settings == nil {
		return engine.Misconfigured()
	}
	s, err := e.Settings.Load(ctx)
	if err != nil {
		e.logger().Warn("youtube live: settings unavailable", slog.Any("error", err))
		return engine.Misconfigured()
	}
	return e.Resolve(ctx, s)
}

// Resolve determines whether the channel in s is live right now.
func (e *LiveEmbedder) Resolve(ctx context.Context, s engine.Settings) engine.LiveResult {
	s = s.Trimmed()
	if !s.Complete() {
		return engine.Misconfigured()
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = engine.DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	getter := e.Getter
	if getter == nil {
		getter = engine.HTTPGetter{}
	}
	headers := map[string]string{}
	if e.SiteURL != "" {
		headers["Referer"] = e.SiteURL
	}

	resp, err := getter.Get(ctx, LiveSearchURL(e.APIBase, s), headers)
	if err != nil {
		f := engine.FetchFailure{Message: redactKey(err.Error(), s.APIKey), Reason: engine.TransportReason(err), Err: err}
		if resp != nil {
			f.Code = resp.StatusCode
			f.Body = string(resp.Body)
		}
		return engine.FetchFailed(f)
	}
	return interpretLiveSearch(resp)
}

// redactKey removes the API key from transport errors, which quote the request URL.
func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
}

// LiveSearchURL builds the search request. Parameter order is fixed so the
// request line is byte-for-byte predictable.
func LiveSearchURL(apiBase string, s engine.Settings) string {
	base := strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if base == "" {
		base = engine.DefaultYouTubeAPIBase
	}
	params := []string{
		"key=" + url.QueryEscape(s.APIKey),
		"channelId=" + url.QueryEscape(s.ChannelID),
		"part=snippet",
		"type=video",
		"eventType=live",
		"order=date",
		"maxResults=1",
	}
	return base + "/search?" + strings.Join(params, "&")
}

// interpretLiveSearch maps an HTTP response onto a LiveResult.
// Non-2xx statuses and unexpected shapes are fetch errors, not "not live".
func interpretLiveSearch(resp *engine.Response) engine.LiveResult {
	body := string(resp.Body)

	if err := checkStatus(resp); err != nil {
		f := engine.FetchFailure{Code: resp.StatusCode, Message: resp.Status, Body: body, Reason: "status", Err: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			f.Message = apiErr.Message
		}
		return engine.FetchFailed(f)
	}

	var result youtube.SearchListResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return engine.FetchFailed(engine.FetchFailure{
			Code:    resp.StatusCode,
			Message: "decode youtube search response: " + err.Error(),
			Body:    body,
			Reason:  "decode",
			Err:     err,
		})
	}

	if len(result.Items) == 0 {
		return engine.NotLive()
	}

	first := result.Items[0]
	if first == nil || first.Id == nil || strings.TrimSpace(first.Id.VideoId) == "" {
		return engine.FetchFailed(engine.FetchFailure{
			Code:    resp.StatusCode,
			Message: "youtube search response: first item has no videoId",
			Body:    body,
			Reason:  "shape",
		})
	}
	return engine.Live(strings.TrimSpace(first.Id.VideoId))
}

// checkStatus reuses googleapi's error parsing so the API's own message
// ("API key not valid", "quota exceeded", ...) lands in the log.
func checkStatus(resp *engine.Response) error {
	return googleapi.CheckResponse(&http.Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       io.NopCloser(bytes.NewReader(resp.Body)),
	})
}

// logFailure writes the single diagnostic record for a failed lookup.
func (e *LiveEmbedder) logFailure(f *engine.FetchFailure) {
	if f == nil {
		f = &engine.FetchFailure{}
	}
	e.logger().Error("youtube live search failed",
		slog.String("plugin", e.Meta.Name),
		slog.Int("code", f.Code),
		slog.String("message", f.Message),
		slog.String("body", engine.TruncateRunes(f.Body, maxLoggedBody, "...")),
		slog.String("reason", f.Reason),
	)
}

func (e *LiveEmbedder) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
