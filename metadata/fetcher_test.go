package metadata

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
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

// MockPlayerInfo stubs the player-response fallback.
type MockPlayerInfo struct {
	mock.Mock
}

func (m *MockPlayerInfo) PlayerInfo(ctx context.Context, videoID string) (*model.VideoInfo, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoInfo), args.Error(1)
}

func shortenRetries(t *testing.T) {
	t.Helper()
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })
}

const testURL = "https://www.youtube.com/watch?v=vid12345678"

func TestFetchSuccess(t *testing.T) {
	extractor := new(MockInfoExtractor)
	extractor.On("ExtractInfo", mock.Anything, testURL).Return(&model.VideoInfo{
		ID:       "vid12345678",
		Title:    "A Title",
		Uploader: "A Channel",
	}, nil).Once()

	f := NewFetcher(extractor, nil, nil)
	md := f.Fetch(context.Background(), testURL)

	assert.Equal(t, "A Title", md.Title)
	assert.Equal(t, "A Channel", md.Author)
	assert.Equal(t, testURL, md.SourceURL)
	assert.Empty(t, md.Error)
	extractor.AssertExpectations(t)
}

func TestFetchRetriesBeforeSucceeding(t *testing.T) {
	shortenRetries(t)

	extractor := new(MockInfoExtractor)
	extractor.On("ExtractInfo", mock.Anything, testURL).Return(nil, fmt.Errorf("transient error")).Twice()
	extractor.On("ExtractInfo", mock.Anything, testURL).Return(&model.VideoInfo{Title: "Eventually"}, nil).Once()

	f := NewFetcher(extractor, nil, nil)
	md := f.Fetch(context.Background(), testURL)

	assert.Equal(t, "Eventually", md.Title)
	extractor.AssertExpectations(t)
}

func TestFetchFallsBackToPlayerInfo(t *testing.T) {
	shortenRetries(t)

	extractor := new(MockInfoExtractor)
	extractor.On("ExtractInfo", mock.Anything, testURL).Return(nil, fmt.Errorf("backend down"))

	player := new(MockPlayerInfo)
	player.On("PlayerInfo", mock.Anything, "vid12345678").Return(&model.VideoInfo{Title: "From Player"}, nil)

	f := NewFetcher(extractor, player, nil)
	md := f.Fetch(context.Background(), testURL)

	assert.Equal(t, "From Player", md.Title)
	player.AssertExpectations(t)
}

func TestFetchDegradesToMinimalRecord(t *testing.T) {
	shortenRetries(t)

	extractor := new(MockInfoExtractor)
	extractor.On("ExtractInfo", mock.Anything, testURL).Return(nil, fmt.Errorf("video unavailable"))

	player := new(MockPlayerInfo)
	player.On("PlayerInfo", mock.Anything, "vid12345678").Return(nil, fmt.Errorf("also down"))

	f := NewFetcher(extractor, player, nil)
	md := f.Fetch(context.Background(), testURL)

	assert.Equal(t, "Unknown", md.Title)
	assert.Equal(t, testURL, md.SourceURL)
	assert.Contains(t, md.Error, "video unavailable")
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"PT4M13S", 253, true},
		{"PT1H2M3S", 3723, true},
		{"PT45S", 45, true},
		{"PT2H", 7200, true},
		{"P1DT2H", 0, false},
		{"garbage", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseISODuration(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
