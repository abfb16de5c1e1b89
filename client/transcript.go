package client

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog/log"

	"github.com/contentpipe/yttranscript/model"
)

// TranscriptClient lists and fetches caption tracks through YouTube's player
// response and timedtext endpoints. It implements TranscriptLister.
type TranscriptClient struct {
	yt         *youtube.Client
	httpClient *http.Client
}

// identityTransport pins a User-Agent on every outbound request.
type identityTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *identityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewTranscriptClient builds a lister with the default network identity.
func NewTranscriptClient() *TranscriptClient {
	return newTranscriptClient(&http.Client{Timeout: 30 * time.Second})
}

// NewTranscriptClientWithIdentity builds a lister whose outbound calls go
// through the given proxy (when non-empty) and carry the given user agent.
// This is the rotation point for the proxied strategy variant.
func NewTranscriptClientWithIdentity(proxyURL, userAgent string) (*TranscriptClient, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
		}
		transport.Proxy = http.ProxyURL(parsed)
	}
	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &identityTransport{base: transport, userAgent: userAgent},
	}
	return newTranscriptClient(httpClient), nil
}

func newTranscriptClient(httpClient *http.Client) *TranscriptClient {
	return &TranscriptClient{
		yt:         &youtube.Client{HTTPClient: httpClient},
		httpClient: httpClient,
	}
}

// ListTracks enumerates the caption tracks advertised in the video's player
// response.
func (c *TranscriptClient) ListTracks(ctx context.Context, videoID string) ([]model.CaptionTrack, error) {
	video, err := c.yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player response for %s: %w", videoID, err)
	}

	tracks := make([]model.CaptionTrack, 0, len(video.CaptionTracks))
	for _, t := range video.CaptionTracks {
		tracks = append(tracks, model.CaptionTrack{
			LanguageCode: t.LanguageCode,
			Label:        t.Name.SimpleText,
			URL:          t.BaseURL,
			Format:       model.FormatUnknown,
			Generated:    t.Kind == "asr",
			Translatable: t.IsTranslatable,
		})
	}

	log.Debug().Str("video_id", videoID).Int("track_count", len(tracks)).Msg("Listed caption tracks")
	return tracks, nil
}

// PlayerInfo exposes the player response metadata for the metadata fetcher's
// fallback path.
func (c *TranscriptClient) PlayerInfo(ctx context.Context, videoID string) (*model.VideoInfo, error) {
	video, err := c.yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player response for %s: %w", videoID, err)
	}

	info := &model.VideoInfo{
		ID:              video.ID,
		Title:           video.Title,
		Uploader:        video.Author,
		DurationSeconds: int64(video.Duration / time.Second),
		ViewCount:       int64(video.Views),
		Description:     video.Description,
	}
	if !video.PublishDate.IsZero() {
		info.UploadDate = video.PublishDate.Format("20060102")
	}
	if n := len(video.Thumbnails); n > 0 {
		info.ThumbnailURL = video.Thumbnails[n-1].URL
	}
	return info, nil
}

// timedtext is the XML body served by a caption track's base URL.
type timedtext struct {
	XMLName xml.Name        `xml:"transcript"`
	Entries []timedtextText `xml:"text"`
}

type timedtextText struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

// FetchTrack downloads a track's timed text and joins the entries with single
// spaces. A non-empty translateTo adds the tlang parameter, which YouTube
// honors for translatable tracks.
func (c *TranscriptClient) FetchTrack(ctx context.Context, track model.CaptionTrack, translateTo string) (string, error) {
	trackURL := track.URL
	if trackURL == "" {
		return "", fmt.Errorf("caption track %s has no URL", track.LanguageCode)
	}
	if translateTo != "" {
		sep := "?"
		if strings.Contains(trackURL, "?") {
			sep = "&"
		}
		trackURL += sep + "tlang=" + url.QueryEscape(translateTo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build timedtext request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("timedtext request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read timedtext body: %w", err)
	}

	var doc timedtext
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("failed to parse timedtext XML: %w", err)
	}

	parts := make([]string, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		text := strings.TrimSpace(html.UnescapeString(entry.Body))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
