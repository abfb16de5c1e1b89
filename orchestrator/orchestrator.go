// Package orchestrator runs the acquisition strategies in priority order and
// settles on the best transcript a video yields.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/contentpipe/yttranscript/client"
	"github.com/contentpipe/yttranscript/common"
	"github.com/contentpipe/yttranscript/metadata"
	"github.com/contentpipe/yttranscript/model"
	"github.com/contentpipe/yttranscript/resolver"
	"github.com/contentpipe/yttranscript/strategy"
)

// MinTranscriptChars is the acceptance gate: a candidate at least this long
// short-circuits the remaining strategies.
const MinTranscriptChars = 500

// urlResolver narrows the resolver to what Process needs.
type urlResolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// metadataFetcher narrows the metadata fetcher likewise.
type metadataFetcher interface {
	Fetch(ctx context.Context, url string) model.VideoMetadata
}

// Extractor coordinates ID resolution, metadata retrieval and the strategy
// chain. Process never fails: every input yields a metadata record, and every
// resolvable URL yields text.
type Extractor struct {
	resolver   urlResolver
	metadata   metadataFetcher
	strategies []strategy.Strategy
}

// New assembles an extractor from explicit parts, mainly for tests.
func New(res urlResolver, md metadataFetcher, strategies []strategy.Strategy) *Extractor {
	return &Extractor{resolver: res, metadata: md, strategies: strategies}
}

// NewFromConfig wires the production strategy chain: direct transcript API,
// proxied transcript API when proxies are configured, the video-extraction
// backend, then the mirror instances.
func NewFromConfig(cfg common.Config) *Extractor {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	agents := common.NewIdentityPool(cfg.UserAgents, rng)
	instances := common.NewIdentityPool(cfg.MirrorInstances, rng)

	extractor := client.NewYtdlpExtractor(agents.Pick(), "", cfg.ExtractTimeout)
	transcripts := client.NewTranscriptClient()

	strategies := []strategy.Strategy{
		strategy.NewTranscriptAPI(transcripts),
	}
	if proxied := strategy.NewProxiedTranscriptAPI(cfg.ProxyURLs, agents); proxied != nil {
		strategies = append(strategies, proxied)
	}
	strategies = append(strategies,
		strategy.NewSubtitleDownload(extractor, buildTranscriber(cfg), cfg.TempDir),
		strategy.NewMirror(instances, agents, cfg.MirrorTimeout),
	)

	var enricher *metadata.Enricher
	if cfg.YouTubeAPIKey != "" {
		var err error
		enricher, err = metadata.NewEnricher(cfg.YouTubeAPIKey)
		if err != nil {
			log.Warn().Err(err).Msg("Metadata enrichment disabled")
		}
	}

	return &Extractor{
		resolver:   resolver.New(extractor),
		metadata:   metadata.NewFetcher(extractor, transcripts, enricher),
		strategies: strategies,
	}
}

// buildTranscriber chains the configured speech-to-text backends. Nil means
// the audio phase is disabled entirely.
func buildTranscriber(cfg common.Config) client.Transcriber {
	var backends []client.Transcriber
	if cfg.WhisperBinary != "" {
		backends = append(backends, client.NewLocalWhisper(cfg.WhisperBinary, cfg.WhisperModel))
	}
	if cfg.OpenAIAPIKey != "" {
		backends = append(backends, client.NewOpenAIWhisper(cfg.OpenAIAPIKey))
	}
	if len(backends) == 0 {
		return nil
	}
	return client.NewFallbackTranscriber(backends...)
}

// Process acquires transcript text and metadata for a single video URL. It
// runs the strategies in order, accepts the first candidate that clears the
// length gate, and otherwise keeps the longest partial. When every strategy
// comes up empty it synthesizes a stub from the metadata. The one case with
// no text at all is a URL whose video ID cannot be resolved: the strategies
// need an ID, so Process returns an empty transcript with the metadata
// record.
func (e *Extractor) Process(ctx context.Context, url string) (string, model.VideoMetadata) {
	md := e.metadata.Fetch(ctx, url)

	videoID := md.VideoID
	if videoID == "" {
		var err error
		videoID, err = e.resolver.Resolve(ctx, url)
		if err != nil {
			log.Error().Err(err).Str("url", url).Msg("Video ID resolution failed")
			return "", md
		}
		md.VideoID = videoID
	}

	var best model.AcquisitionResult
	for _, s := range e.strategies {
		result := s.Attempt(ctx, videoID, url)

		switch result.Status {
		case model.StatusSuccess:
			if result.Chars() >= MinTranscriptChars {
				log.Info().
					Str("video_id", videoID).
					Str("strategy", s.Name()).
					Int("chars", result.Chars()).
					Msg("Transcript accepted")
				return result.Text, md
			}
			if result.Chars() > best.Chars() {
				best = result
			}
			log.Debug().
				Str("video_id", videoID).
				Str("strategy", s.Name()).
				Int("chars", result.Chars()).
				Msg("Keeping short candidate, trying next strategy")
		case model.StatusEmpty:
			log.Debug().Str("video_id", videoID).Str("strategy", s.Name()).Msg("Strategy found nothing")
		case model.StatusFailed:
			log.Warn().
				Str("video_id", videoID).
				Str("strategy", s.Name()).
				Str("reason", result.Reason).
				Msg("Strategy failed")
		}

		if ctx.Err() != nil {
			break
		}
	}

	if best.Usable() {
		log.Info().
			Str("video_id", videoID).
			Int("chars", best.Chars()).
			Msg("No strategy cleared the length gate, returning best partial")
		return best.Text, md
	}

	log.Warn().Str("video_id", videoID).Msg("All strategies exhausted, synthesizing stub")
	return stubText(md), md
}

// stubText builds the fixed last-resort record from whatever metadata is
// available.
func stubText(md model.VideoMetadata) string {
	title := md.Title
	if title == "" {
		title = "Unknown"
	}
	author := md.Author
	if author == "" {
		author = "Unknown"
	}
	return fmt.Sprintf("Title: %s\nAuthor: %s\n\nUnable to extract content from this YouTube video.", title, author)
}
