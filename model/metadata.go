// Package model contains the data records shared across the extraction pipeline
package model

// VideoMetadata is the descriptive record returned alongside every transcript
// request. SourceURL is always populated; every other field degrades to its
// zero value rather than making the record unusable.
type VideoMetadata struct {
	Title           string `json:"title"`
	Author          string `json:"author,omitempty"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	Views           int64  `json:"views,omitempty"`
	PublishDate     string `json:"publish_date,omitempty"`
	VideoID         string `json:"video_id,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	SourceURL       string `json:"source_url"`
	Error           string `json:"error,omitempty"`
}

// MinimalMetadata builds the degraded record used when every metadata source
// has failed. The title placeholder matches what downstream consumers key on.
func MinimalMetadata(sourceURL string, err error) VideoMetadata {
	md := VideoMetadata{
		Title:     "Unknown",
		SourceURL: sourceURL,
	}
	if err != nil {
		md.Error = err.Error()
	}
	return md
}

// VideoInfo is the structured result of an info-only call to the
// video-extraction backend. Fields are filled one by one with defaults
// instead of trusting ad hoc key presence in the backend's output.
type VideoInfo struct {
	ID              string
	Title           string
	Uploader        string
	DurationSeconds int64
	ViewCount       int64
	UploadDate      string
	ThumbnailURL    string
	Description     string

	// Subtitles holds manual tracks keyed by language code,
	// AutomaticCaptions the auto-generated ones.
	Subtitles         map[string][]CaptionTrack
	AutomaticCaptions map[string][]CaptionTrack
}

// Metadata converts the extraction backend's info record into the caller-facing
// metadata shape.
func (vi *VideoInfo) Metadata(sourceURL string) VideoMetadata {
	title := vi.Title
	if title == "" {
		title = "Unknown"
	}
	return VideoMetadata{
		Title:           title,
		Author:          vi.Uploader,
		DurationSeconds: vi.DurationSeconds,
		Views:           vi.ViewCount,
		PublishDate:     vi.UploadDate,
		VideoID:         vi.ID,
		ThumbnailURL:    vi.ThumbnailURL,
		SourceURL:       sourceURL,
	}
}
