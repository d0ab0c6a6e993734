package filter

import "errors"

// ErrInsufficientData is returned whenever a filtering stage needs more
// points than a run currently holds — a short window, a run emptied by an
// upstream trim, or a stencil wider than the remaining samples.
var ErrInsufficientData = errors.New("insufficient data")
