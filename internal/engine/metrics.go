package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	EmbedRequests  atomic.Int64
	FetchRequests  atomic.Int64
	LiveHits       atomic.Int64
	NotLive        atomic.Int64
	FetchErrors    atomic.Int64
	Misconfigured  atomic.Int64
	SettingsReads  atomic.Int64
	SettingsWrites atomic.Int64
}

var metricKeys = []string{
	"embed_requests", "fetch_requests",
	"live_hits", "not_live", "fetch_errors", "misconfigured",
	"settings_reads", "settings_writes",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"embed_requests":  metrics.EmbedRequests.Load(),
		"fetch_requests":  metrics.FetchRequests.Load(),
		"live_hits":       metrics.LiveHits.Load(),
		"not_live":        metrics.NotLive.Load(),
		"fetch_errors":    metrics.FetchErrors.Load(),
		"misconfigured":   metrics.Misconfigured.Load(),
		"settings_reads":  metrics.SettingsReads.Load(),
		"settings_writes": metrics.SettingsWrites.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// IncrEmbed counts one resolve-and-render call and its outcome.
func IncrEmbed(status LiveStatus) {
	metrics.EmbedRequests.Add(1)
	switch status {
	case StatusLive:
		metrics.LiveHits.Add(1)
	case StatusNotLive:
		metrics.NotLive.Add(1)
	case StatusFetchError:
		metrics.FetchErrors.Add(1)
	case StatusMisconfigured:
		metrics.Misconfigured.Add(1)
	}
}

// Incrementors for the settings sub-package.
func IncrSettingsRead()  { metrics.SettingsReads.Add(1) }
func IncrSettingsWrite() { metrics.SettingsWrites.Add(1) }
