package util_test

import (
	"testing"
	"time"

	"github.com/nasa-jpl/sysid-core/util"
)

func TestSecsToDuration(t *testing.T) {
	var dur time.Duration = 123456789
	secs := dur.Seconds()
	out := util.SecsToDuration(secs)
	if out != dur {
		t.Errorf("expected SecsToDuration to round trip, output %v != expected %v", out, dur)
	}
}

func TestSecsToDurationZero(t *testing.T) {
	if out := util.SecsToDuration(0); out != 0 {
		t.Errorf("expected 0, got %v", out)
	}
}
