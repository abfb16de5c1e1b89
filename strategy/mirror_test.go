package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentpipe/yttranscript/common"
	"github.com/contentpipe/yttranscript/model"
)

func newPool(values ...string) *common.IdentityPool {
	return common.NewIdentityPool(values, rand.New(rand.NewSource(1)))
}

func mirrorCaptionBody() string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for i := 0; i < 15; i++ {
		b.WriteString("00:00:01.000 --> 00:00:02.000\n")
		fmt.Fprintf(&b, "caption line %d pulled from a mirror instance\n\n", i)
	}
	return b.String()
}

func TestMirrorFetchesCaptions(t *testing.T) {
	var sawUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/captions/vid12345678"):
			sawUserAgent = r.Header.Get("User-Agent")
			json.NewEncoder(w).Encode([]mirrorCaption{
				{Label: "English", LanguageCode: "en", URL: "/captiondata/vid12345678?format=vtt"},
			})
		case strings.HasPrefix(r.URL.Path, "/captiondata/"):
			fmt.Fprint(w, mirrorCaptionBody())
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := NewMirror(newPool(server.URL), newPool("test-agent/1.0"), 5*time.Second)
	result := s.Attempt(context.Background(), "vid12345678", "")

	require.Equal(t, model.StatusSuccess, result.Status)
	assert.Contains(t, result.Text, "caption line 0 pulled from a mirror instance")
	assert.Equal(t, "test-agent/1.0", sawUserAgent)
}

func TestMirrorFallsBackToVideoRecord(t *testing.T) {
	description := strings.Repeat("an in-depth look at something interesting ", 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/captions/"):
			http.Error(w, "not found", http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/api/v1/videos/"):
			json.NewEncoder(w).Encode(mirrorVideo{Title: "Mirror Title", Description: description})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := NewMirror(newPool(server.URL), newPool("test-agent/1.0"), 5*time.Second)
	result := s.Attempt(context.Background(), "vid12345678", "")

	require.Equal(t, model.StatusSuccess, result.Status)
	assert.True(t, strings.HasPrefix(result.Text, "Title: Mirror Title\n\nDescription: "))
}

func TestMirrorUsesEmbeddedCaptionsFromVideoRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/captions/"):
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		case strings.HasPrefix(r.URL.Path, "/api/v1/videos/"):
			json.NewEncoder(w).Encode(mirrorVideo{
				Title: "Mirror Title",
				Captions: []mirrorCaption{
					{Label: "English (auto)", LanguageCode: "en", URL: "/captiondata/auto?format=vtt"},
				},
			})
		case strings.HasPrefix(r.URL.Path, "/captiondata/"):
			fmt.Fprint(w, mirrorCaptionBody())
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := NewMirror(newPool(server.URL), newPool("test-agent/1.0"), 5*time.Second)
	result := s.Attempt(context.Background(), "vid12345678", "")

	require.Equal(t, model.StatusSuccess, result.Status)
	assert.Contains(t, result.Text, "mirror instance")
}

func shortenIdentityDelay(t *testing.T) {
	t.Helper()
	prev := identityDelay
	identityDelay = time.Millisecond
	t.Cleanup(func() { identityDelay = prev })
}

func TestMirrorRetriesInstanceUnderNextIdentity(t *testing.T) {
	shortenIdentityDelay(t)

	// The first pass over the instance is blocked outright; the retry under
	// a fresh user agent gets through.
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests <= 2 {
			http.Error(w, "blocked", http.StatusForbidden)
			return
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/captions/"):
			json.NewEncoder(w).Encode([]mirrorCaption{
				{Label: "English", LanguageCode: "en", URL: "/captiondata/x?format=vtt"},
			})
		case strings.HasPrefix(r.URL.Path, "/captiondata/"):
			fmt.Fprint(w, mirrorCaptionBody())
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := NewMirror(newPool(server.URL), newPool("agent-a/1.0", "agent-b/1.0"), 5*time.Second)
	result := s.Attempt(context.Background(), "vid12345678", "")

	require.Equal(t, model.StatusSuccess, result.Status)
	assert.Contains(t, result.Text, "mirror instance")
}

func TestMirrorMovesToNextInstance(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer dead.Close()

	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/captions/"):
			json.NewEncoder(w).Encode([]mirrorCaption{
				{Label: "English", LanguageCode: "en", URL: "/captiondata/x?format=vtt"},
			})
		case strings.HasPrefix(r.URL.Path, "/captiondata/"):
			fmt.Fprint(w, mirrorCaptionBody())
		default:
			http.NotFound(w, r)
		}
	}))
	defer alive.Close()

	s := NewMirror(newPool(dead.URL, alive.URL), newPool("test-agent/1.0"), 5*time.Second)
	result := s.Attempt(context.Background(), "vid12345678", "")

	assert.Equal(t, model.StatusSuccess, result.Status)
}

func TestMirrorAllInstancesFail(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer dead.Close()

	s := NewMirror(newPool(dead.URL), newPool("test-agent/1.0"), 2*time.Second)
	result := s.Attempt(context.Background(), "vid12345678", "")

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.NotEmpty(t, result.Reason)
}

func TestMirrorNoInstancesConfigured(t *testing.T) {
	s := NewMirror(newPool(), newPool("test-agent/1.0"), time.Second)
	result := s.Attempt(context.Background(), "vid12345678", "")

	assert.Equal(t, model.StatusFailed, result.Status)
}

func TestOrderMirrorCaptions(t *testing.T) {
	list := []mirrorCaption{
		{LanguageCode: "de"},
		{LanguageCode: "en-GB"},
		{LanguageCode: "fr"},
		{LanguageCode: "en"},
	}
	ordered := orderMirrorCaptions(list)
	assert.Equal(t, []string{"en-GB", "en", "de", "fr"}, []string{
		ordered[0].LanguageCode, ordered[1].LanguageCode, ordered[2].LanguageCode, ordered[3].LanguageCode,
	})
}

func TestCaptionURLFormat(t *testing.T) {
	assert.Equal(t, model.FormatVTT, captionURLFormat("https://x/y.vtt"))
	assert.Equal(t, model.FormatVTT, captionURLFormat("https://x/caption?format=vtt&lang=en"))
	assert.Equal(t, model.FormatSRT, captionURLFormat("https://x/y.srt"))
	assert.Equal(t, model.FormatUnknown, captionURLFormat("https://x/caption?lang=en"))
}
