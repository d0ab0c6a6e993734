package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/nasa-jpl/sysid-core/dataset"
	"github.com/nasa-jpl/sysid-core/filter"
	"github.com/nasa-jpl/sysid-core/jsonlog"
	"github.com/nasa-jpl/sysid-core/trackwidth"
	"github.com/nasa-jpl/sysid-core/util"
)

// prepareAngular conditions the four canonical runs of an angular
// drivetrain (rotate-in-place) experiment. Unlike the other families, no
// median filter is applied — the gyro heading rate is already smooth
// compared to encoder velocity — so a single acceleration pass produces
// both the "raw" and the published dataset; track width is derived from
// the raw slow-forward run's endpoint wheel and heading deltas. Grounded on
// AnalysisManager::PrepareAngularDrivetrainData, with the known
// minStepTime/maxStepTime argument swap on the backward step trim
// corrected rather than reproduced (see DESIGN.md).
func prepareAngular(doc jsonlog.Document, settings *Settings, factor float64) (prepared, error) {
	sf := parseAngularRows(doc.SlowForward)
	sb := parseAngularRows(doc.SlowBackward)
	ff := parseAngularRows(doc.FastForward)
	fb := parseAngularRows(doc.FastBackward)

	filter.TrimQuasistaticData(&sf, settings.MotionThreshold)
	filter.TrimQuasistaticData(&sb, settings.MotionThreshold)

	maxStepTime := maxDuration(ff, fb)

	window := settings.WindowSize
	var err error
	if sf, err = filter.ComputeAcceleration(sf, window); err != nil {
		return prepared{}, fmt.Errorf("prepare angular: slow-forward: %w", err)
	}
	if sb, err = filter.ComputeAcceleration(sb, window); err != nil {
		return prepared{}, fmt.Errorf("prepare angular: slow-backward: %w", err)
	}
	if ff, err = filter.ComputeAcceleration(ff, window); err != nil {
		return prepared{}, fmt.Errorf("prepare angular: fast-forward: %w", err)
	}
	if fb, err = filter.ComputeAcceleration(fb, window); err != nil {
		return prepared{}, fmt.Errorf("prepare angular: fast-backward: %w", err)
	}

	minDuration := math.Inf(1)
	if minDuration, err = filter.TrimStepVoltageData(&ff, window, &settings.StepTestDuration, minDuration, maxStepTime); err != nil {
		return prepared{}, fmt.Errorf("prepare angular: step trim forward: %w", err)
	}
	if minDuration, err = filter.TrimStepVoltageData(&fb, window, &settings.StepTestDuration, minDuration, maxStepTime); err != nil {
		return prepared{}, fmt.Errorf("prepare angular: step trim backward: %w", err)
	}

	width, err := angularTrackWidth(doc.SlowForward, factor)
	if err != nil {
		return prepared{}, fmt.Errorf("prepare angular: track width: %w", err)
	}

	filtered := map[dataset.Direction]dataset.Dataset{
		dataset.Forward:  {Quasistatic: sf, Dynamic: ff},
		dataset.Backward: {Quasistatic: sb, Dynamic: fb},
		dataset.Combined: {Quasistatic: dataset.Concat(sf, sb), Dynamic: dataset.Concat(ff, fb)},
	}

	return prepared{
		Raw:         filtered,
		Filtered:    filtered,
		StartTimes:  [4]time.Duration{startTime(sf), startTime(sb), startTime(ff), startTime(fb)},
		MinDuration: minDuration,
		MaxDuration: maxStepTime,
		TrackWidth:  &width,
	}, nil
}

// parseAngularRows turns raw 9-column rows into angle/angular-rate points:
// Position holds the gyro heading, Velocity the angular rate, and Voltage
// is doubled (both drivetrain sides driven together) and sign-aligned to
// the angular rate rather than to velocity in encoder units.
func parseAngularRows(rows [][]float64) dataset.TestRun {
	run := make(dataset.TestRun, len(rows))
	for i, r := range rows {
		run[i] = dataset.PreparedData{
			T:        util.SecsToDuration(r[0]),
			Voltage:  2 * math.Copysign(r[colLVoltage], r[colAngularRate]),
			Position: r[colAngle],
			Velocity: r[colAngularRate],
		}
	}
	return run
}

// angularTrackWidth derives the track width from the endpoints of the raw
// slow-forward run: the wheels swept (|leftDelta| + |rightDelta|) of arc
// length while the gyro heading changed by headingDelta.
func angularTrackWidth(rows [][]float64, factor float64) (float64, error) {
	if len(rows) < 2 {
		return 0, fmt.Errorf("slow-forward run has %d rows, need at least 2", len(rows))
	}
	first, last := rows[0], rows[len(rows)-1]
	left := (last[colLPos] - first[colLPos]) * factor
	right := (last[colRPos] - first[colRPos]) * factor
	heading := last[colAngle] - first[colAngle]
	return trackwidth.CalculateTrackWidth(left, right, heading)
}
