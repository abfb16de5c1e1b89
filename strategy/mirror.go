package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/contentpipe/yttranscript/captions"
	"github.com/contentpipe/yttranscript/common"
	"github.com/contentpipe/yttranscript/model"
)

const (
	// captionFetchRetries is how many extra times a caption payload fetch is
	// retried before giving up on that track.
	captionFetchRetries = 2
	captionRetryDelay   = 2 * time.Second
	instanceDelay       = 2 * time.Second
)

// identityDelay is a variable so tests can shorten the wait between
// same-instance attempts.
var identityDelay = time.Second

// mirrorCaption is one entry of an instance's caption listing. The captions
// endpoint serves a bare JSON array; the same shape appears embedded in the
// video record.
type mirrorCaption struct {
	Label        string `json:"label"`
	LanguageCode string `json:"languageCode"`
	URL          string `json:"url"`
}

// mirrorVideo is the subset of an instance's video record the fallback needs.
type mirrorVideo struct {
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Description string          `json:"description"`
	Captions    []mirrorCaption `json:"captions"`
}

// Mirror queries API-compatible read-only mirror instances. Per instance it
// tries the captions endpoint, then the video record's embedded caption list,
// then the video description, repeating the sequence under each user agent in
// turn so one blocked identity does not sink the whole instance.
type Mirror struct {
	instances  *common.IdentityPool
	userAgents *common.IdentityPool
	httpClient *http.Client
}

// NewMirror builds the strategy over the configured instance list. The
// timeout bounds each individual HTTP call.
func NewMirror(instances, userAgents *common.IdentityPool, timeout time.Duration) *Mirror {
	return &Mirror{
		instances:  instances,
		userAgents: userAgents,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *Mirror) Name() string {
	return "mirror_api"
}

// Attempt walks the shuffled (instance, identity) pairs until one yields
// captions or a usable description.
func (s *Mirror) Attempt(ctx context.Context, videoID, url string) model.AcquisitionResult {
	if s.instances.Empty() {
		return model.Failed(fmt.Errorf("no mirror instances configured"))
	}

	var lastErr error
	for i, instance := range s.instances.Shuffled() {
		if i > 0 {
			if err := sleepCtx(ctx, instanceDelay); err != nil {
				return model.Failed(err)
			}
		}

		agents := s.userAgents.Shuffled()
		if len(agents) == 0 {
			agents = []string{""}
		}
		for j, agent := range agents {
			if j > 0 {
				if err := sleepCtx(ctx, identityDelay); err != nil {
					return model.Failed(err)
				}
			}

			text, err := s.tryInstance(ctx, instance, agent, videoID)
			if err != nil {
				lastErr = err
				log.Debug().Err(err).Str("instance", instance).Str("video_id", videoID).Msg("Mirror attempt failed")
				continue
			}
			if text != "" {
				return model.Success(text)
			}
			// The instance answered but had nothing usable. Its catalog
			// does not change with the identity, so move on.
			break
		}
	}

	log.Warn().Str("video_id", videoID).Msg("All mirror instances failed")
	if lastErr == nil {
		return model.Empty()
	}
	return model.Failed(lastErr)
}

// tryInstance runs the three steps against a single instance under one
// pinned user agent. Empty string with nil error means the instance answered
// but had nothing usable.
func (s *Mirror) tryInstance(ctx context.Context, instance, agent, videoID string) (string, error) {
	listURL := fmt.Sprintf("%s/api/v1/captions/%s", instance, videoID)
	body, listErr := s.get(ctx, listURL, agent)
	if listErr == nil {
		var list []mirrorCaption
		if err := json.Unmarshal(body, &list); err == nil {
			if text := s.fetchCaptions(ctx, instance, agent, list); text != "" {
				return text, nil
			}
		} else {
			log.Debug().Err(err).Str("instance", instance).Msg("Unexpected caption list payload")
		}
	}

	videoURL := fmt.Sprintf("%s/api/v1/videos/%s", instance, videoID)
	body, err := s.get(ctx, videoURL, agent)
	if err != nil {
		if listErr != nil {
			return "", listErr
		}
		return "", err
	}

	var video mirrorVideo
	if err := json.Unmarshal(body, &video); err != nil {
		return "", fmt.Errorf("failed to parse video record from %s: %w", instance, err)
	}

	if text := s.fetchCaptions(ctx, instance, agent, video.Captions); text != "" {
		return text, nil
	}

	description := strings.TrimSpace(video.Description)
	if len(description) > minDescriptionChars {
		title := video.Title
		if title == "" {
			title = "Unknown"
		}
		log.Debug().Str("instance", instance).Int("chars", len(description)).Msg("Using mirror video description")
		return fmt.Sprintf("Title: %s\n\nDescription: %s", title, description), nil
	}
	return "", nil
}

// fetchCaptions tries the listed tracks in English-first order and returns
// the first payload that parses to enough text.
func (s *Mirror) fetchCaptions(ctx context.Context, instance, agent string, list []mirrorCaption) string {
	for _, caption := range orderMirrorCaptions(list) {
		if caption.URL == "" {
			continue
		}
		captionURL := caption.URL
		if strings.HasPrefix(captionURL, "/") {
			captionURL = instance + captionURL
		}

		var payload []byte
		fetch := func() error {
			var fetchErr error
			payload, fetchErr = s.get(ctx, captionURL, agent)
			return fetchErr
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(captionRetryDelay), captionFetchRetries), ctx)
		if err := backoff.Retry(fetch, policy); err != nil {
			log.Debug().Err(err).Str("caption_url", captionURL).Msg("Caption payload fetch failed")
			continue
		}

		text := captions.Parse(string(payload), captionURLFormat(captionURL))
		if len(text) >= captions.MinCaptionChars {
			log.Debug().
				Str("instance", instance).
				Str("label", caption.Label).
				Int("chars", len(text)).
				Msg("Fetched captions from mirror")
			return text
		}
	}
	return ""
}

func (s *Mirror) get(ctx context.Context, rawURL, agent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build mirror request: %w", err)
	}
	if agent != "" {
		req.Header.Set("User-Agent", agent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mirror request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror returned status %d for %s", resp.StatusCode, rawURL)
	}
	return io.ReadAll(resp.Body)
}

// orderMirrorCaptions puts English tracks ahead of the rest, keeping the
// instance's order within each group.
func orderMirrorCaptions(list []mirrorCaption) []mirrorCaption {
	out := make([]mirrorCaption, 0, len(list))
	for _, c := range list {
		if strings.HasPrefix(strings.ToLower(c.LanguageCode), "en") {
			out = append(out, c)
		}
	}
	for _, c := range list {
		if !strings.HasPrefix(strings.ToLower(c.LanguageCode), "en") {
			out = append(out, c)
		}
	}
	return out
}

// captionURLFormat infers the payload markup from the track URL.
func captionURLFormat(captionURL string) model.CaptionFormat {
	lower := strings.ToLower(captionURL)
	switch {
	case strings.HasSuffix(lower, ".vtt") || strings.Contains(lower, "format=vtt"):
		return model.FormatVTT
	case strings.HasSuffix(lower, ".srt") || strings.Contains(lower, "format=srt"):
		return model.FormatSRT
	default:
		return model.FormatUnknown
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
