// Package common holds configuration and shared helpers for the extraction pipeline
package common

import "time"

// Config carries the read-only settings consumed across the pipeline. It is
// built once per process (or per request for library callers) and passed down
// explicitly; strategies never mutate it.
type Config struct {
	// MirrorInstances lists API-compatible read-only mirrors queried by the
	// mirror strategy, in no particular order.
	MirrorInstances []string

	// UserAgents is the identity pool rotated across outbound requests.
	UserAgents []string

	// ProxyURLs lists optional proxy endpoints for the proxied transcript
	// strategy. Empty means user-agent rotation only.
	ProxyURLs []string

	// YouTubeAPIKey enables metadata enrichment through the YouTube Data API
	// when set.
	YouTubeAPIKey string

	// OpenAIAPIKey enables the remote speech-to-text backend when set.
	OpenAIAPIKey string

	// WhisperBinary is the local speech-to-text executable tried before the
	// remote backend. Empty disables the local path.
	WhisperBinary string

	// WhisperModel selects the local model size (base, small, ...).
	WhisperModel string

	// TempDir is where audio and subtitle artifacts live between download
	// and parse. Defaults to the OS temp dir.
	TempDir string

	// MirrorTimeout bounds each mirror HTTP call.
	MirrorTimeout time.Duration

	// ExtractTimeout bounds info and subtitle calls to the video-extraction
	// backend. Audio downloads are bounded only by the request context since
	// they run as long as the media is large.
	ExtractTimeout time.Duration
}

// DefaultConfig returns the stock configuration. The mirror list matches the
// public Invidious instances the service shipped with; operators override it
// as instances come and go.
func DefaultConfig() Config {
	return Config{
		MirrorInstances: []string{
			"https://invidious.snopyta.org",
			"https://invidious.kavin.rocks",
			"https://vid.puffyan.us",
			"https://invidious.namazso.eu",
			"https://yt.artemislena.eu",
			"https://invidious.flokinet.to",
			"https://invidious.projectsegfau.lt",
			"https://y.com.sb",
			"https://invidious.slipfox.xyz",
		},
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64; rv:123.0) Gecko/20100101 Firefox/123.0",
			"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:123.0) Gecko/20100101 Firefox/123.0",
			"Mozilla/5.0 (Windows NT 10.0; rv:123.0) Gecko/20100101 Firefox/123.0",
		},
		WhisperModel:   "base",
		MirrorTimeout:  15 * time.Second,
		ExtractTimeout: 30 * time.Second,
	}
}
