// Package trackwidth estimates the effective track width of a differential
// drivetrain from wheel displacements and the heading change they produced
// during an angular (rotate-in-place) test.
package trackwidth

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroHeadingChange is returned when the observed heading change is
// vanishingly small — the test produced no usable rotation to measure
// against.
var ErrZeroHeadingChange = errors.New("zero heading change")

const headingEpsilon = 1e-9

// CalculateTrackWidth returns the track width implied by left/right wheel
// displacements and the corresponding heading change: the wheels together
// swept (|leftDelta| + |rightDelta|) of arc length around a circle of
// diameter equal to the track width, over |headingDelta| radians.
func CalculateTrackWidth(leftDelta, rightDelta, headingDelta float64) (float64, error) {
	if math.Abs(headingDelta) < headingEpsilon {
		return 0, fmt.Errorf("heading delta %v: %w", headingDelta, ErrZeroHeadingChange)
	}
	return (math.Abs(leftDelta) + math.Abs(rightDelta)) / math.Abs(headingDelta), nil
}
