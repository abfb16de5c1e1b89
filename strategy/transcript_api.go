package strategy

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/contentpipe/yttranscript/client"
	"github.com/contentpipe/yttranscript/common"
	"github.com/contentpipe/yttranscript/model"
)

// exactEnglishCodes is the third preference level: specific regional codes
// accepted when no plain English track exists.
var exactEnglishCodes = map[string]bool{
	"en":    true,
	"en-us": true,
	"en-gb": true,
}

// TranscriptAPI acquires text through the transcript-listing endpoint. The
// direct variant uses one lister with the default identity; the proxied
// variant carries one lister per proxy, each pinned to a rotated user agent.
type TranscriptAPI struct {
	name    string
	listers []client.TranscriptLister
}

// NewTranscriptAPI builds the direct variant.
func NewTranscriptAPI(lister client.TranscriptLister) *TranscriptAPI {
	return &TranscriptAPI{name: "transcript_api", listers: []client.TranscriptLister{lister}}
}

// NewProxiedTranscriptAPI builds the proxied variant: one lister per
// configured proxy, each paired with a user agent picked from the pool. With
// no proxies configured the variant still rotates user agents, which is often
// enough to get past per-identity rate limits.
func NewProxiedTranscriptAPI(proxyURLs []string, agents *common.IdentityPool) *TranscriptAPI {
	var listers []client.TranscriptLister
	for _, proxy := range proxyURLs {
		lister, err := client.NewTranscriptClientWithIdentity(proxy, agents.Pick())
		if err != nil {
			log.Warn().Err(err).Str("proxy", proxy).Msg("Skipping unusable proxy")
			continue
		}
		listers = append(listers, lister)
	}
	if len(listers) == 0 && !agents.Empty() {
		if lister, err := client.NewTranscriptClientWithIdentity("", agents.Pick()); err == nil {
			listers = append(listers, lister)
		}
	}
	if len(listers) == 0 {
		return nil
	}
	return &TranscriptAPI{name: "transcript_api_proxied", listers: listers}
}

func (s *TranscriptAPI) Name() string {
	return s.name
}

// Attempt lists the video's caption tracks and works down the preference
// ladder, so a fetch failure at one level falls through to the next instead
// of sinking the whole strategy.
func (s *TranscriptAPI) Attempt(ctx context.Context, videoID, url string) model.AcquisitionResult {
	var lastErr error
	for _, lister := range s.listers {
		tracks, err := lister.ListTracks(ctx, videoID)
		if err != nil {
			lastErr = err
			log.Debug().Err(err).Str("video_id", videoID).Str("strategy", s.name).Msg("Track listing failed")
			continue
		}
		if len(tracks) == 0 {
			return model.Empty()
		}

		candidates := rankTracks(tracks)
		if len(candidates) == 0 {
			return model.Empty()
		}

		for _, c := range candidates {
			text, err := lister.FetchTrack(ctx, c.track, c.translateTo)
			if err != nil {
				lastErr = err
				log.Debug().Err(err).Str("video_id", videoID).Str("language", c.track.LanguageCode).Msg("Track fetch failed, trying next candidate")
				continue
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}

			log.Debug().
				Str("video_id", videoID).
				Str("strategy", s.name).
				Str("language", c.track.LanguageCode).
				Bool("translated", c.translateTo != "").
				Int("chars", len(text)).
				Msg("Transcript fetched")
			return model.Success(text)
		}
	}

	if lastErr == nil {
		return model.Empty()
	}
	return model.Failed(lastErr)
}

// candidate pairs a track with the translation target to request, empty when
// the track is already English.
type candidate struct {
	track       model.CaptionTrack
	translateTo string
}

// rankTracks applies the preference order: manual English, auto-generated
// English, exact regional English codes, any translatable track translated
// to English, then whatever is left untranslated as a last resort. Each
// track appears at most once, at its highest level.
func rankTracks(tracks []model.CaptionTrack) []candidate {
	var out []candidate
	taken := make(map[string]bool, len(tracks))

	add := func(t model.CaptionTrack, translateTo string) {
		key := t.LanguageCode + "|" + t.URL
		if taken[key] {
			return
		}
		taken[key] = true
		out = append(out, candidate{track: t, translateTo: translateTo})
	}

	for _, t := range tracks {
		if t.IsEnglish() && !t.Generated {
			add(t, "")
		}
	}
	for _, t := range tracks {
		if t.IsEnglish() && t.Generated {
			add(t, "")
		}
	}
	for _, t := range tracks {
		if exactEnglishCodes[strings.ToLower(t.LanguageCode)] {
			add(t, "")
		}
	}
	for _, t := range tracks {
		if t.Translatable && !t.IsEnglish() {
			add(t, "en")
		}
	}
	for _, t := range tracks {
		add(t, "")
	}
	return out
}
