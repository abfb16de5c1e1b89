// Package strategy implements the ordered transcript acquisition attempts.
// Each strategy is self-contained: it converts every internal failure into an
// AcquisitionResult so the pipeline can move on to the next one.
package strategy

import (
	"context"

	"github.com/contentpipe/yttranscript/model"
)

// Strategy is a single way of obtaining transcript text for a video.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Attempt tries to acquire transcript text for the video. It never
	// returns an error; failures are folded into the result.
	Attempt(ctx context.Context, videoID, url string) model.AcquisitionResult
}
