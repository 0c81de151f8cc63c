package liveserver

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/anatolykoptev/go_ytlive/internal/engine"
	"github.com/anatolykoptev/go_ytlive/internal/engine/settings"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Help links shown next to the settings fields.
const (
	apiKeyHelpURL    = "https://youtu.be/ZCfrNvu6nMc"
	channelIDHelpURL = "https://support.google.com/youtube/answer/3250431"
	adminUser        = "admin"
)

// RouterOptions configures the HTTP surface.
type RouterOptions struct {
	AdminPassword  string   // empty leaves /settings unregistered
	TrustedOrigins []string // extra origins allowed to POST /settings, e.g. the public site URL
	Author         string   // footer credit on the settings page
	AuthorURL      string
	SourceURL      string // footer link on the settings page
	Logger         *slog.Logger
}

type settingsPage struct {
	Meta             engine.Meta
	View             *SettingsView
	Updated          bool
	Error            string
	WritesEnabled    bool
	APIKeyHelpURL    string
	ChannelIDHelpURL string
	Author           string
	AuthorURL        string
	SourceURL        string
}

// Router builds the gin engine serving /embed, /embed.json and /health, plus
// /settings when an admin password is configured.
func (s *Service) Router(opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/health", s.handleHealth)
	r.GET("/embed", s.handleEmbedHTML)
	r.GET("/embed.json", s.handleEmbedJSON)

	if opts.AdminPassword == "" {
		logger.Info("settings page disabled: ADMIN_PASSWORD not set")
		return r
	}
	h := &settingsHandler{svc: s, opts: opts}
	admin := r.Group("/settings",
		gin.BasicAuth(gin.Accounts{adminUser: opts.AdminPassword}),
		crossOriginGuard(opts.TrustedOrigins, logger, h.forbidden),
	)
	admin.GET("", h.show)
	admin.POST("", h.save)
	return r
}

func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "go_ytlive",
		"version": s.meta.Version,
	})
}

func embedRequest(c *gin.Context) engine.EmbedRequest {
	return engine.EmbedRequest{
		Width:  c.Query("width"),
		Height: c.Query("height"),
	}
}

// handleEmbedHTML always answers 200: the fragment itself carries the status.
func (s *Service) handleEmbedHTML(c *gin.Context) {
	out := s.embedder.Embed(c.Request.Context(), embedRequest(c))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out.HTML))
}

func (s *Service) handleEmbedJSON(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, s.Embed(c.Request.Context(), embedRequest(c)))
}

type settingsHandler struct {
	svc  *Service
	opts RouterOptions
}

func (h *settingsHandler) page(c *gin.Context, status int, p settingsPage) {
	p.Meta = h.svc.meta
	p.WritesEnabled = settings.Writable(h.svc.store)
	p.APIKeyHelpURL = apiKeyHelpURL
	p.ChannelIDHelpURL = channelIDHelpURL
	p.Author = h.opts.Author
	p.AuthorURL = h.opts.AuthorURL
	p.SourceURL = h.opts.SourceURL
	if p.View == nil {
		if view, err := h.svc.Settings(c.Request.Context()); err == nil {
			p.View = view
		} else {
			p.View = &SettingsView{Backend: h.svc.store.Name()}
			if p.Error == "" {
				p.Error = "Settings could not be loaded."
			}
		}
	}
	c.HTML(status, "settings.html", p)
}

func (h *settingsHandler) show(c *gin.Context) {
	h.page(c, http.StatusOK, settingsPage{Updated: c.Query("updated") == "1"})
}

func (h *settingsHandler) save(c *gin.Context) {
	update := engine.Settings{
		APIKey:    c.PostForm("api_key"),
		ChannelID: c.PostForm("channel_id"),
	}
	_, err := h.svc.UpdateSettings(c.Request.Context(), update, c.PostFormArray("clear")...)
	switch {
	case errors.Is(err, settings.ErrUnknownField):
		h.page(c, http.StatusBadRequest, settingsPage{Error: "Unknown settings field."})
	case errors.Is(err, settings.ErrReadOnly):
		h.page(c, http.StatusMethodNotAllowed, settingsPage{Error: "Settings are read-only: they come from the environment."})
	case err != nil:
		slog.Error("settings: save failed", slog.Any("error", err))
		h.page(c, http.StatusInternalServerError, settingsPage{Error: "Settings could not be saved. Check error logs for more details."})
	default:
		c.Redirect(http.StatusSeeOther, "/settings?updated=1")
	}
}

func (h *settingsHandler) forbidden(c *gin.Context) {
	h.page(c, http.StatusForbidden, settingsPage{Error: "Cross-origin settings updates are not allowed."})
}
