// Package captions flattens timed subtitle markup into plain prose.
//
// The parsers are pure text-in/text-out functions shared by every acquisition
// strategy that ends up holding raw WebVTT, SRT or unidentified caption data.
package captions

import (
	"regexp"
	"strings"

	"github.com/contentpipe/yttranscript/model"
)

// MinCaptionChars is the advancement gate callers apply to parser output.
// A shorter result means "no usable captions here", not a parse error.
const MinCaptionChars = 100

var (
	// Timestamp lines start with MM:SS or HH:MM:SS, optionally followed by
	// cue arrows and positioning metadata.
	timestampRe = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?`)

	// Standalone cue arrows on their own line.
	cueArrowRe = regexp.MustCompile(`^-->$`)

	// SRT index lines are bare integers.
	indexRe = regexp.MustCompile(`^\d+$`)

	// Inline markup (<c>, <i>, <00:00:01.000> word timings) inside VTT cues.
	tagRe = regexp.MustCompile(`<[^>]+>`)

	// VTT metadata lines such as "Kind: captions" and "Language: en".
	metadataRe = regexp.MustCompile(`^(Kind|Language|NOTE|STYLE|REGION)\b`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Parse dispatches on the format hint.
func Parse(raw string, format model.CaptionFormat) string {
	switch format {
	case model.FormatVTT:
		return ParseVTT(raw)
	case model.FormatSRT:
		return ParseSRT(raw)
	default:
		return ParseGeneric(raw)
	}
}

// ParseVTT flattens a WebVTT payload: the WEBVTT header, metadata, timestamp
// and cue-arrow lines are dropped, inline tags stripped, and the remaining
// cue text joined with single spaces. Consecutive duplicate lines collapse,
// since auto-generated tracks repeat text across overlapping cues.
func ParseVTT(raw string) string {
	var lines []string
	prev := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" || strings.HasPrefix(line, "WEBVTT") {
			continue
		}
		if metadataRe.MatchString(line) || timestampRe.MatchString(line) || cueArrowRe.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(tagRe.ReplaceAllString(line, ""))
		if line == "" || line == prev {
			continue
		}
		lines = append(lines, line)
		prev = line
	}
	return strings.Join(lines, " ")
}

// ParseSRT flattens an SRT payload: bare-integer index lines, timestamp lines
// and cue arrows are dropped, the rest joined with single spaces.
func ParseSRT(raw string) string {
	var lines []string
	prev := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" || indexRe.MatchString(line) {
			continue
		}
		if timestampRe.MatchString(line) || cueArrowRe.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(tagRe.ReplaceAllString(line, ""))
		if line == "" || line == prev {
			continue
		}
		lines = append(lines, line)
		prev = line
	}
	return strings.Join(lines, " ")
}

// ParseGeneric collapses all whitespace runs to single spaces. Used for
// formats we do not recognize.
func ParseGeneric(raw string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))
}
