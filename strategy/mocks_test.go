package strategy

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/contentpipe/yttranscript/model"
)

// MockInfoExtractor stubs the video-extraction backend.
type MockInfoExtractor struct {
	mock.Mock
}

func (m *MockInfoExtractor) ExtractInfo(ctx context.Context, url string) (*model.VideoInfo, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoInfo), args.Error(1)
}

func (m *MockInfoExtractor) DownloadSubtitles(ctx context.Context, url, destBase string, langs []string) ([]model.SubtitleFile, error) {
	args := m.Called(ctx, url, destBase, langs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SubtitleFile), args.Error(1)
}

func (m *MockInfoExtractor) DownloadAudio(ctx context.Context, url, destPath string) error {
	args := m.Called(ctx, url, destPath)
	return args.Error(0)
}

// MockTranscriptLister stubs the transcript-listing backend.
type MockTranscriptLister struct {
	mock.Mock
}

func (m *MockTranscriptLister) ListTracks(ctx context.Context, videoID string) ([]model.CaptionTrack, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaptionTrack), args.Error(1)
}

func (m *MockTranscriptLister) FetchTrack(ctx context.Context, track model.CaptionTrack, translateTo string) (string, error) {
	args := m.Called(ctx, track, translateTo)
	return args.String(0), args.Error(1)
}

// MockTranscriber stubs the speech-to-text backend.
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	args := m.Called(ctx, audioPath)
	return args.String(0), args.Error(1)
}

func (m *MockTranscriber) Available() bool {
	args := m.Called()
	return args.Bool(0)
}
