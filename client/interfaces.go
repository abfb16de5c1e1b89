// Package client wraps the external backends the pipeline depends on:
// the video-extraction tool, the transcript-listing endpoint and the
// speech-to-text engines. Strategies consume these through interfaces so
// tests can substitute stubs.
package client

import (
	"context"

	"github.com/contentpipe/yttranscript/model"
)

// InfoExtractor is the video-extraction backend boundary. The production
// implementation shells out to yt-dlp; every method is safe to call with a
// URL the backend has never seen.
type InfoExtractor interface {
	// ExtractInfo runs an info-only extraction: no media is downloaded.
	ExtractInfo(ctx context.Context, url string) (*model.VideoInfo, error)

	// DownloadSubtitles fetches manual and auto-generated subtitle tracks for
	// the preferred languages. Files land at destBase.<lang>.<ext> and the
	// ones that materialized are reported back.
	DownloadSubtitles(ctx context.Context, url, destBase string, langs []string) ([]model.SubtitleFile, error)

	// DownloadAudio fetches best-available audio to destPath. The caller owns
	// the resulting file.
	DownloadAudio(ctx context.Context, url, destPath string) error
}

// TranscriptLister is the transcript-listing backend boundary: it enumerates
// the caption tracks of a video and fetches one track as flat text,
// optionally translated.
type TranscriptLister interface {
	// ListTracks returns the available caption tracks for a video ID.
	ListTracks(ctx context.Context, videoID string) ([]model.CaptionTrack, error)

	// FetchTrack retrieves a track's timed text and flattens it. A non-empty
	// translateTo requests translation when the track supports it.
	FetchTrack(ctx context.Context, track model.CaptionTrack, translateTo string) (string, error)
}

// Transcriber is the speech-to-text boundary: audio file path in,
// recognized text out.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)

	// Available reports whether the backend is usable with the current
	// configuration (binary installed, credential present).
	Available() bool
}
