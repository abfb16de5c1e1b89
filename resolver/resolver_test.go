package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

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

func TestMatchID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"watch with list param first", "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url with params", "https://youtu.be/dQw4w9WgXcQ?si=abc123", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"old embed", "https://www.youtube.com/v/dQw4w9WgXcQ?version=3", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"not a video url", "https://www.youtube.com/channel/UC123", ""},
		{"unrelated site", "https://example.com/watch?v=nope", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchID(tt.url))
		})
	}
}

func TestResolvePatternMatchSkipsExtractor(t *testing.T) {
	extractor := new(MockInfoExtractor)
	r := New(extractor)

	id, err := r.Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", id)
	extractor.AssertNotCalled(t, "ExtractInfo", mock.Anything, mock.Anything)
}

func TestResolveFallsBackToExtractor(t *testing.T) {
	url := "https://www.youtube.com/live/someStream"
	extractor := new(MockInfoExtractor)
	extractor.On("ExtractInfo", mock.Anything, url).Return(&model.VideoInfo{ID: "liveVideoID"}, nil)

	r := New(extractor)
	id, err := r.Resolve(context.Background(), url)

	require.NoError(t, err)
	assert.Equal(t, "liveVideoID", id)
	extractor.AssertExpectations(t)
}

func TestResolveFailsWhenNothingMatches(t *testing.T) {
	url := "https://example.com/not-a-video"
	extractor := new(MockInfoExtractor)
	extractor.On("ExtractInfo", mock.Anything, url).Return(nil, fmt.Errorf("unsupported URL"))

	r := New(extractor)
	_, err := r.Resolve(context.Background(), url)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "could not extract video ID")
}

func TestResolveNilExtractor(t *testing.T) {
	r := New(nil)
	_, err := r.Resolve(context.Background(), "https://example.com/whatever")
	assert.Error(t, err)
}
