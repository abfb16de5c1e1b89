package metadata

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/contentpipe/yttranscript/model"
)

// Enricher overlays official Data API fields onto an already-populated
// record. It is optional and every failure is logged and ignored.
type Enricher struct {
	service *ytapi.Service
	apiKey  string
}

// NewEnricher creates an enricher for the given API key.
func NewEnricher(apiKey string) (*Enricher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}
	return &Enricher{apiKey: apiKey}, nil
}

// Connect establishes the YouTube service.
func (e *Enricher) Connect(ctx context.Context) error {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}
	service, err := ytapi.NewService(ctx, option.WithAPIKey(e.apiKey), option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create YouTube service: %w", err)
	}
	e.service = service
	return nil
}

// Enrich fills view counts, publish dates and exact durations from the
// videos.list endpoint when the record carries a video ID.
func (e *Enricher) Enrich(ctx context.Context, md *model.VideoMetadata) {
	if md.VideoID == "" {
		return
	}
	if e.service == nil {
		if err := e.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("Data API enrichment skipped, connection failed")
			return
		}
	}

	call := e.service.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(md.VideoID).
		Context(ctx)
	response, err := call.Do()
	if err != nil {
		log.Warn().Err(err).Str("video_id", md.VideoID).Msg("Data API enrichment failed")
		return
	}
	if len(response.Items) == 0 {
		log.Warn().Str("video_id", md.VideoID).Msg("Video not found via Data API")
		return
	}

	item := response.Items[0]
	if item.Snippet != nil {
		if item.Snippet.Title != "" {
			md.Title = item.Snippet.Title
		}
		if item.Snippet.ChannelTitle != "" {
			md.Author = item.Snippet.ChannelTitle
		}
		if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			md.PublishDate = publishedAt.Format("2006-01-02")
		}
	}
	if item.Statistics != nil {
		md.Views = int64(item.Statistics.ViewCount)
	}
	if item.ContentDetails != nil {
		if seconds, ok := parseISODuration(item.ContentDetails.Duration); ok {
			md.DurationSeconds = seconds
		}
	}
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the API's ISO 8601 duration (e.g. PT4M13S) to
// seconds.
func parseISODuration(s string) (int64, bool) {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	var total int64
	for i, mult := range []int64{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return 0, false
		}
		total += n * mult
	}
	return total, true
}
