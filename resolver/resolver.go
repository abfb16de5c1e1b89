// Package resolver turns YouTube URLs of any supported shape into canonical
// 11-character video IDs.
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/contentpipe/yttranscript/client"
)

// URL shapes recognized without network access. The captured segment may
// still carry trailing query parameters, stripped below.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtu\.be/([^?&/\s]+)`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([^?&/\s]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^?&/\s]+)`),
	regexp.MustCompile(`youtube\.com/v/([^?&/\s]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([^?&/\s]+)`),
}

// Resolver extracts video IDs, falling back to an info-only call against the
// video-extraction backend for URL shapes the patterns miss.
type Resolver struct {
	extractor client.InfoExtractor
}

// New builds a resolver. The extractor may be nil, which disables the
// fallback path.
func New(extractor client.InfoExtractor) *Resolver {
	return &Resolver{extractor: extractor}
}

// Resolve returns the video ID for url, or an error when neither pattern
// matching nor the extractor fallback can identify one. No network call is
// made unless every pattern misses.
func (r *Resolver) Resolve(ctx context.Context, url string) (string, error) {
	if id := MatchID(url); id != "" {
		return id, nil
	}

	if r.extractor != nil {
		info, err := r.extractor.ExtractInfo(ctx, url)
		if err == nil && info.ID != "" {
			log.Debug().Str("url", url).Str("video_id", info.ID).Msg("Resolved video ID via extractor")
			return info.ID, nil
		}
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Extractor fallback failed during ID resolution")
		}
	}

	return "", fmt.Errorf("could not extract video ID from URL: %s", url)
}

// MatchID runs only the pure pattern match. Empty means no pattern applied.
func MatchID(url string) string {
	for _, re := range idPatterns {
		m := re.FindStringSubmatch(url)
		if len(m) < 2 {
			continue
		}
		id := m[1]
		// Strip trailing query parameters from the captured segment.
		if i := strings.IndexAny(id, "?&"); i >= 0 {
			id = id[:i]
		}
		if id != "" {
			return id
		}
	}
	return ""
}
