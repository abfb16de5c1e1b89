package strategy

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/contentpipe/yttranscript/captions"
	"github.com/contentpipe/yttranscript/client"
	"github.com/contentpipe/yttranscript/common"
	"github.com/contentpipe/yttranscript/model"
)

// minDescriptionChars gates the description fallback: anything shorter reads
// like boilerplate and is not worth returning as content.
const minDescriptionChars = 200

// subtitleLanguages are the codes requested from the extraction backend, in
// preference order.
var subtitleLanguages = []string{"en", "en-US", "en-GB", "en-CA", "en-AU"}

// SubtitleDownload acquires text through the video-extraction backend: first
// subtitle files, then audio fed to speech-to-text, then the video
// description. As a last resort it synthesizes a stub from the metadata so
// the pipeline always has something to fall back on.
type SubtitleDownload struct {
	extractor   client.InfoExtractor
	transcriber client.Transcriber
	tempDir     string
}

// NewSubtitleDownload wires the extraction backend and an optional
// speech-to-text engine (nil disables the audio phase).
func NewSubtitleDownload(extractor client.InfoExtractor, transcriber client.Transcriber, tempDir string) *SubtitleDownload {
	return &SubtitleDownload{extractor: extractor, transcriber: transcriber, tempDir: tempDir}
}

func (s *SubtitleDownload) Name() string {
	return "subtitle_download"
}

// Attempt works through the phases in order, keeping whatever metadata the
// info call produced even when it errors.
func (s *SubtitleDownload) Attempt(ctx context.Context, videoID, url string) model.AcquisitionResult {
	info, err := s.extractor.ExtractInfo(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Info extraction failed, continuing with empty record")
		info = &model.VideoInfo{}
	}

	if text, ok := s.trySubtitles(ctx, url); ok {
		return model.Success(text)
	}
	if text, ok := s.tryAudio(ctx, url); ok {
		return model.Success(text)
	}

	description := strings.TrimSpace(info.Description)
	title := info.Title
	if title == "" {
		title = "Unknown"
	}
	if len(description) > minDescriptionChars {
		log.Debug().Str("url", url).Int("chars", len(description)).Msg("Falling back to video description")
		return model.Success(fmt.Sprintf("Title: %s\n\nDescription: %s", title, description))
	}

	author := info.Uploader
	if author == "" {
		author = "Unknown"
	}
	return model.Success(fmt.Sprintf("Title: %s\nAuthor: %s\n\nUnable to extract content from this YouTube video.", title, author))
}

// trySubtitles downloads caption files and parses the first English one that
// yields enough text. All downloaded files are removed before returning.
func (s *SubtitleDownload) trySubtitles(ctx context.Context, url string) (string, bool) {
	destBase := common.TempSubtitleBase(s.tempDir)
	files, err := s.extractor.DownloadSubtitles(ctx, url, destBase, subtitleLanguages)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("Subtitle download failed")
		return "", false
	}
	defer func() {
		for _, f := range files {
			common.RemoveQuietly(f.Path)
		}
	}()

	for _, f := range orderEnglishFirst(files) {
		raw, err := os.ReadFile(f.Path)
		if err != nil {
			log.Debug().Err(err).Str("path", f.Path).Msg("Failed to read subtitle file")
			continue
		}
		text := captions.Parse(string(raw), f.Format)
		if len(text) >= captions.MinCaptionChars {
			log.Debug().
				Str("url", url).
				Str("language", f.LanguageCode).
				Int("chars", len(text)).
				Msg("Parsed subtitle file")
			return text, true
		}
	}
	return "", false
}

// tryAudio downloads the audio track and runs it through speech-to-text.
// The audio file is removed whether transcription succeeds or not.
func (s *SubtitleDownload) tryAudio(ctx context.Context, url string) (string, bool) {
	if s.transcriber == nil || !s.transcriber.Available() {
		return "", false
	}

	audioPath := common.TempAudioPath(s.tempDir)
	defer common.RemoveQuietly(audioPath)

	if err := s.extractor.DownloadAudio(ctx, url, audioPath); err != nil {
		log.Debug().Err(err).Str("url", url).Msg("Audio download failed")
		return "", false
	}

	text, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Speech-to-text failed")
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	log.Debug().Str("url", url).Int("chars", len(text)).Msg("Transcribed audio")
	return text, true
}

// orderEnglishFirst keeps the backend's order within each group but parses
// plain en files before regional variants and everything else.
func orderEnglishFirst(files []model.SubtitleFile) []model.SubtitleFile {
	out := make([]model.SubtitleFile, 0, len(files))
	for _, f := range files {
		if strings.EqualFold(f.LanguageCode, "en") {
			out = append(out, f)
		}
	}
	for _, f := range files {
		if !strings.EqualFold(f.LanguageCode, "en") {
			out = append(out, f)
		}
	}
	return out
}
