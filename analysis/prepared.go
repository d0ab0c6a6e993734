package analysis

import (
	"time"

	"github.com/nasa-jpl/sysid-core/dataset"
)

// prepared bundles one mechanism's conditioned datasets: the raw (unfiltered
// acceleration) and filtered (median-filtered velocity) views, keyed by test
// direction, plus the bookkeeping the feedback stage and the HTTP/CLI
// surfaces need. A prepare* function returns one of these rather than
// mutating fields shared across calls, so re-running PrepareData (after an
// OverrideUnits, say) can never see a half-updated manager.
type prepared struct {
	Raw      map[dataset.Direction]dataset.Dataset
	Filtered map[dataset.Direction]dataset.Dataset

	// StartTimes holds the filtered slow-forward, slow-backward,
	// fast-forward, fast-backward run start timestamps, in that order.
	StartTimes [4]time.Duration

	MinDuration float64
	MaxDuration float64

	// TrackWidth is non-nil only for the angular drivetrain family.
	TrackWidth *float64
}

func cloneRun(run dataset.TestRun) dataset.TestRun {
	out := make(dataset.TestRun, len(run))
	copy(out, run)
	return out
}

func startTime(run dataset.TestRun) time.Duration {
	if len(run) == 0 {
		return 0
	}
	return run[0].T
}
