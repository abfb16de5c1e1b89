package model

// AcquisitionStatus tags the outcome of a single strategy attempt.
type AcquisitionStatus int

const (
	// StatusFailed means the attempt hit an error (network, parse, backend).
	StatusFailed AcquisitionStatus = iota
	// StatusEmpty means the attempt ran cleanly but produced nothing usable.
	StatusEmpty
	// StatusSuccess means the attempt produced candidate text.
	StatusSuccess
)

// AcquisitionResult is the tagged variant every strategy returns. Strategies
// convert all internal failures into a result value; nothing escapes the
// attempt boundary as an error or panic.
type AcquisitionResult struct {
	Status AcquisitionStatus
	Text   string
	Reason string
}

// Success wraps non-empty candidate text.
func Success(text string) AcquisitionResult {
	if text == "" {
		return Empty()
	}
	return AcquisitionResult{Status: StatusSuccess, Text: text}
}

// Empty marks a clean run with no usable content.
func Empty() AcquisitionResult {
	return AcquisitionResult{Status: StatusEmpty}
}

// Failed records why an attempt could not complete.
func Failed(err error) AcquisitionResult {
	r := AcquisitionResult{Status: StatusFailed}
	if err != nil {
		r.Reason = err.Error()
	}
	return r
}

// Chars reports the candidate length used by acceptance gates.
func (r AcquisitionResult) Chars() int {
	return len(r.Text)
}

// Usable reports whether the result carries any candidate text at all.
func (r AcquisitionResult) Usable() bool {
	return r.Status == StatusSuccess && r.Text != ""
}
