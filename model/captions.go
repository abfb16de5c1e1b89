package model

import "strings"

// CaptionFormat identifies the markup of a subtitle payload.
type CaptionFormat int

const (
	FormatUnknown CaptionFormat = iota
	FormatVTT
	FormatSRT
)

// FormatFromExtension maps a subtitle file extension or URL suffix to a
// caption format. Anything unrecognized parses generically.
func FormatFromExtension(ext string) CaptionFormat {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "vtt":
		return FormatVTT
	case "srt":
		return FormatSRT
	default:
		return FormatUnknown
	}
}

// CaptionTrack describes a single language/format variant of timed subtitle
// data. Tracks are transient: fetched, parsed and discarded per attempt.
type CaptionTrack struct {
	LanguageCode string
	Label        string
	URL          string
	Format       CaptionFormat

	// Generated marks auto-generated (ASR) tracks.
	Generated bool

	// Translatable marks tracks the backend can translate to another language.
	Translatable bool
}

// IsEnglish reports whether the track carries an English language code
// (en, en-US, en-GB and friends).
func (t CaptionTrack) IsEnglish() bool {
	return strings.HasPrefix(strings.ToLower(t.LanguageCode), "en")
}

// SubtitleFile is a subtitle track that the extraction backend has
// materialized on disk.
type SubtitleFile struct {
	Path         string
	LanguageCode string
	Format       CaptionFormat
}
