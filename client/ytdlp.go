package client

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog/log"

	"github.com/contentpipe/yttranscript/model"
)

// subtitle extensions yt-dlp may write, in the order we look for them.
var subtitleExtensions = []string{"vtt", "srt", "ttml", "srv1", "srv2", "srv3"}

// YtdlpExtractor drives the yt-dlp binary. It implements InfoExtractor.
type YtdlpExtractor struct {
	userAgent string
	proxyURL  string
	timeout   time.Duration
}

// NewYtdlpExtractor builds an extractor carrying the given outbound identity.
// Both identity arguments may be empty; a zero timeout leaves invocations
// bounded only by the caller's context.
func NewYtdlpExtractor(userAgent, proxyURL string, timeout time.Duration) *YtdlpExtractor {
	return &YtdlpExtractor{userAgent: userAgent, proxyURL: proxyURL, timeout: timeout}
}

func (e *YtdlpExtractor) boundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *YtdlpExtractor) newCommand() *ytdlp.Command {
	dl := ytdlp.New().NoPlaylist()
	if e.userAgent != "" {
		dl = dl.UserAgent(e.userAgent)
	}
	if e.proxyURL != "" {
		dl = dl.Proxy(e.proxyURL)
	}
	return dl
}

// ExtractInfo runs an info-only extraction and converts the duck-typed JSON
// payload into the strict VideoInfo record field by field.
func (e *YtdlpExtractor) ExtractInfo(ctx context.Context, url string) (*model.VideoInfo, error) {
	ctx, cancel := e.boundContext(ctx)
	defer cancel()

	dl := e.newCommand().SkipDownload().PrintJSON()

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp info extraction failed: %w", err)
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("yt-dlp returned no info for %s", url)
	}

	info := infos[0]
	vi := &model.VideoInfo{
		ID:                info.ID,
		Title:             derefString(info.Title),
		Uploader:          derefString(info.Uploader),
		UploadDate:        derefString(info.UploadDate),
		ThumbnailURL:      derefString(info.Thumbnail),
		Description:       derefString(info.Description),
		Subtitles:         convertSubtitleMap(info.Subtitles),
		AutomaticCaptions: convertSubtitleMap(info.AutomaticCaptions),
	}
	if info.Duration != nil {
		vi.DurationSeconds = int64(*info.Duration)
	}
	if info.ViewCount != nil {
		vi.ViewCount = int64(*info.ViewCount)
	}

	log.Debug().Str("video_id", vi.ID).Str("title", vi.Title).Msg("Extracted video info")
	return vi, nil
}

// DownloadSubtitles asks yt-dlp for manual and auto-generated tracks in the
// preferred languages without touching the media streams, then reports which
// files materialized at destBase.<lang>.<ext>.
func (e *YtdlpExtractor) DownloadSubtitles(ctx context.Context, url, destBase string, langs []string) ([]model.SubtitleFile, error) {
	ctx, cancel := e.boundContext(ctx)
	defer cancel()

	dl := e.newCommand().
		SkipDownload().
		WriteSubs().
		WriteAutoSubs().
		SubLangs(strings.Join(langs, ",")).
		Output(destBase)

	if _, err := dl.Run(ctx, url); err != nil {
		return nil, fmt.Errorf("yt-dlp subtitle download failed: %w", err)
	}

	var files []model.SubtitleFile
	for _, ext := range subtitleExtensions {
		for _, lang := range langs {
			path := fmt.Sprintf("%s.%s.%s", destBase, lang, ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			files = append(files, model.SubtitleFile{
				Path:         path,
				LanguageCode: lang,
				Format:       model.FormatFromExtension(ext),
			})
		}
	}

	log.Debug().Str("url", url).Int("file_count", len(files)).Msg("Subtitle download finished")
	return files, nil
}

// DownloadAudio fetches the best available audio track as mp3 at destPath.
func (e *YtdlpExtractor) DownloadAudio(ctx context.Context, url, destPath string) error {
	// yt-dlp appends the extension itself, so the template drops it.
	template := strings.TrimSuffix(destPath, ".mp3")

	dl := e.newCommand().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("mp3").
		Output(template)

	if _, err := dl.Run(ctx, url); err != nil {
		return fmt.Errorf("yt-dlp audio download failed: %w", err)
	}

	if _, err := os.Stat(destPath); err != nil {
		return fmt.Errorf("audio file missing after download: %w", err)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func convertSubtitleMap(subs map[string][]*ytdlp.ExtractedSubtitle) map[string][]model.CaptionTrack {
	if len(subs) == 0 {
		return nil
	}
	out := make(map[string][]model.CaptionTrack, len(subs))
	for lang, tracks := range subs {
		converted := make([]model.CaptionTrack, 0, len(tracks))
		for _, t := range tracks {
			if t == nil {
				continue
			}
			converted = append(converted, model.CaptionTrack{
				LanguageCode: lang,
				URL:          t.URL,
				Format:       model.FormatFromExtension(path.Ext(t.URL)),
			})
		}
		out[lang] = converted
	}
	return out
}
