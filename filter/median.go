package filter

import (
	"fmt"
	"sort"

	"github.com/nasa-jpl/sysid-core/dataset"
)

// ApplyMedianFilter replaces each interior point's velocity with the median
// of the window centered on it, discarding the (window-1)/2 points at each
// end rather than zero-padding them. window must be odd and >= 3.
func ApplyMedianFilter(run dataset.TestRun, window int) (dataset.TestRun, error) {
	if window < 3 || window%2 == 0 {
		return nil, fmt.Errorf("median filter window must be odd and >= 3, got %d", window)
	}
	if len(run) < window {
		return nil, fmt.Errorf("%d points, window %d: %w", len(run), window, ErrInsufficientData)
	}

	half := (window - 1) / 2
	out := make(dataset.TestRun, 0, len(run)-2*half)
	scratch := make([]float64, window)
	for i := half; i < len(run)-half; i++ {
		for j := 0; j < window; j++ {
			scratch[j] = run[i-half+j].Velocity
		}
		sort.Float64s(scratch)

		pt := run[i]
		pt.Velocity = scratch[half]
		out = append(out, pt)
	}
	return out, nil
}
