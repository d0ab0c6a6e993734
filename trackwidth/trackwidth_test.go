package trackwidth

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateTrackWidth(t *testing.T) {
	got, err := CalculateTrackWidth(1.0, -1.0, 1.0)
	if err != nil {
		t.Fatalf("CalculateTrackWidth: %v", err)
	}
	if math.Abs(got-2.0) > 1e-12 {
		t.Fatalf("got %v, want 2.0", got)
	}
}

// The sign of leftDelta, rightDelta, and headingDelta must not affect the
// magnitude of the estimate — only the magnitudes of the deltas matter.
func TestCalculateTrackWidthSignInvariant(t *testing.T) {
	base, err := CalculateTrackWidth(1.0, -1.0, 1.0)
	if err != nil {
		t.Fatalf("CalculateTrackWidth: %v", err)
	}
	flipped, err := CalculateTrackWidth(-1.0, 1.0, -1.0)
	if err != nil {
		t.Fatalf("CalculateTrackWidth: %v", err)
	}
	if math.Abs(base-flipped) > 1e-12 {
		t.Fatalf("sign flip changed the result: base=%v flipped=%v", base, flipped)
	}
}

func TestCalculateTrackWidthZeroHeadingChange(t *testing.T) {
	if _, err := CalculateTrackWidth(1.0, 1.0, 0); !errors.Is(err, ErrZeroHeadingChange) {
		t.Fatalf("got %v, want ErrZeroHeadingChange", err)
	}
}
