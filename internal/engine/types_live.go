package engine

import "strings"

// --- Settings and request types ---

// Settings are the channel credentials persisted by a settings store.
// Either field may be empty; see Complete.
type Settings struct {
	APIKey    string `json:"api_key"`
	ChannelID string `json:"channel_id"`
}

// Complete reports whether both credentials are present.
func (s Settings) Complete() bool {
	return strings.TrimSpace(s.APIKey) != "" && strings.TrimSpace(s.ChannelID) != ""
}

// Trimmed returns s with surrounding whitespace removed from both fields.
func (s Settings) Trimmed() Settings {
	return Settings{
		APIKey:    strings.TrimSpace(s.APIKey),
		ChannelID: strings.TrimSpace(s.ChannelID),
	}
}

// MaskedAPIKey hides all but the last four characters of the API key.
func (s Settings) MaskedAPIKey() string {
	key := strings.TrimSpace(s.APIKey)
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// EmbedRequest carries the shortcode-style sizing attributes.
// Fixed sizing applies only when both values are non-empty.
type EmbedRequest struct {
	Width  string `json:"width,omitempty" jsonschema:"Player width in pixels. Requires height; omit both for responsive 16:9 sizing"`
	Height string `json:"height,omitempty" jsonschema:"Player height in pixels. Requires width; omit both for responsive 16:9 sizing"`
}

// Fixed reports whether the request asks for explicit width and height.
func (r EmbedRequest) Fixed() bool {
	return r.Width != "" && r.Height != ""
}

// Meta is static plugin metadata used in rendered messages.
type Meta struct {
	Name        string
	Version     string
	SettingsURL string
}

// --- Resolution result ---

// LiveStatus tags the variant held by a LiveResult.
type LiveStatus string

const (
	StatusLive          LiveStatus = "live"
	StatusNotLive       LiveStatus = "not_live"
	StatusFetchError    LiveStatus = "fetch_error"
	StatusMisconfigured LiveStatus = "misconfigured"
)

// FetchFailure holds diagnostics for a failed API call. Never shown to visitors.
type FetchFailure struct {
	Code    int    // HTTP status code, 0 when no response was received
	Message string // status text, API error message or transport error
	Body    string // raw response body, if any
	Reason  string // timeout, dns, connection, status, decode, shape, ...
	Err     error
}

// LiveResult is the outcome of one live video resolution.
// Only the fields belonging to Status are set.
type LiveResult struct {
	Status  LiveStatus
	VideoID string
	Failure *FetchFailure
}

// Live returns a result for a channel that is streaming videoID.
func Live(videoID string) LiveResult {
	return LiveResult{Status: StatusLive, VideoID: videoID}
}

// NotLive returns a result for a channel without an active broadcast.
func NotLive() LiveResult {
	return LiveResult{Status: StatusNotLive}
}

// Misconfigured returns a result for missing credentials.
func Misconfigured() LiveResult {
	return LiveResult{Status: StatusMisconfigured}
}

// FetchFailed returns a result for a transport, status or decode failure.
func FetchFailed(f FetchFailure) LiveResult {
	return LiveResult{Status: StatusFetchError, Failure: &f}
}

// Embed is the rendered output of one resolve-and-render call.
type Embed struct {
	Status  LiveStatus `json:"status"`
	VideoID string     `json:"video_id,omitempty"`
	HTML    string     `json:"html"`
}
