// Package metadata retrieves descriptive video records independently of
// transcript acquisition.
package metadata

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/contentpipe/yttranscript/client"
	"github.com/contentpipe/yttranscript/model"
	"github.com/contentpipe/yttranscript/resolver"
)

const fetchAttempts = 3

// retryDelay is a variable so tests can shorten the wait.
var retryDelay = 2 * time.Second

// playerInfoClient is the player-response fallback used when the extraction
// backend is down entirely.
type playerInfoClient interface {
	PlayerInfo(ctx context.Context, videoID string) (*model.VideoInfo, error)
}

// Fetcher produces a usable VideoMetadata for every URL, degrading to a
// minimal record instead of failing.
type Fetcher struct {
	extractor client.InfoExtractor
	player    playerInfoClient
	enricher  *Enricher
}

// NewFetcher wires the primary extractor, an optional player-response
// fallback and an optional Data API enricher (both may be nil).
func NewFetcher(extractor client.InfoExtractor, player playerInfoClient, enricher *Enricher) *Fetcher {
	return &Fetcher{extractor: extractor, player: player, enricher: enricher}
}

// Fetch never returns an error: any failure yields a minimal record with the
// title placeholder, the source URL and an error annotation.
func (f *Fetcher) Fetch(ctx context.Context, url string) model.VideoMetadata {
	info, err := f.extractWithRetry(ctx, url)
	if err != nil && f.player != nil {
		if id := resolver.MatchID(url); id != "" {
			var playerErr error
			info, playerErr = f.player.PlayerInfo(ctx, id)
			if playerErr != nil {
				log.Warn().Err(playerErr).Str("video_id", id).Msg("Player response fallback failed")
				info = nil
			}
		}
	}

	if info == nil {
		log.Warn().Err(err).Str("url", url).Msg("All metadata sources failed, returning minimal record")
		return model.MinimalMetadata(url, err)
	}

	md := info.Metadata(url)
	if f.enricher != nil {
		f.enricher.Enrich(ctx, &md)
	}
	return md
}

func (f *Fetcher) extractWithRetry(ctx context.Context, url string) (*model.VideoInfo, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		info, err := f.extractor.ExtractInfo(ctx, url)
		if err == nil {
			return info, nil
		}
		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", fetchAttempts).
			Msg("Metadata extraction attempt failed")
		if attempt < fetchAttempts {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}
