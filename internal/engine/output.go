package engine

import (
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// Fixed iframe attributes, matching YouTube's own share dialog.
const (
	embedBaseURL        = "https://www.youtube.com/embed/"
	watchBaseURL        = "https://www.youtube.com/watch?v="
	embedTitle          = "YouTube video player"
	embedAllow          = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"
	embedReferrerPolicy = "strict-origin-when-cross-origin"
	responsiveStyle     = "aspect-ratio: 16 / 9; width: 100%;"

	notLiveMessage = "Stream is not live right now."
)

// RenderLive turns a resolution result into markup.
// It is pure: identical inputs always produce identical output.
func RenderLive(res LiveResult, req EmbedRequest, meta Meta) string {
	switch res.Status {
	case StatusLive:
		return renderIframe(res.VideoID, req)
	case StatusNotLive:
		return renderNode(paragraph(textNode(notLiveMessage)))
	case StatusMisconfigured:
		link := element("a",
			attr("href", SanitizeURL(meta.SettingsURL)),
			attr("rel", "nofollow"),
		)
		link.AppendChild(textNode("plugin settings"))
		return renderNode(paragraph(
			textNode(meta.Name+" settings are missing. Please configure "),
			link,
			textNode("."),
		))
	default:
		return renderNode(paragraph(textNode(
			meta.Name + " could not retrieve YouTube data. Check error logs for more details.",
		)))
	}
}

// renderIframe builds the player tag. Sizing is either fixed (width and height
// attributes) or responsive (inline aspect-ratio style), never both.
func renderIframe(videoID string, req EmbedRequest) string {
	var attrs []html.Attribute
	if req.Fixed() {
		attrs = append(attrs, attr("width", req.Width), attr("height", req.Height))
	} else {
		attrs = append(attrs, attr("style", responsiveStyle))
	}
	attrs = append(attrs,
		attr("src", embedBaseURL+videoID),
		attr("title", embedTitle),
		attr("frameborder", "0"),
		attr("allow", embedAllow),
		attr("referrerpolicy", embedReferrerPolicy),
		attr("allowfullscreen", ""),
	)
	return renderNode(element("iframe", attrs...))
}

// PlainText renders a Markdown version of an embed for clients that cannot show HTML.
func PlainText(e Embed) string {
	if e.Status == StatusLive {
		return "Live now: " + watchBaseURL + url.QueryEscape(e.VideoID)
	}
	md, err := htmltomarkdown.ConvertString(e.HTML)
	if err != nil {
		return CleanHTML(e.HTML)
	}
	return strings.TrimSpace(md)
}

// SanitizeURL keeps http(s) and relative URLs and drops everything else,
// so a settings link can never carry a javascript: or data: payload.
func SanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "", "http", "https":
		return u.String()
	}
	return ""
}

// --- x/net/html helpers ---

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func paragraph(children ...*html.Node) *html.Node {
	p := element("p")
	for _, c := range children {
		p.AppendChild(c)
	}
	return p
}

// renderNode serializes n. html.Render escapes attribute values and text,
// which is what keeps call-site and API input from breaking out of the markup.
func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}
