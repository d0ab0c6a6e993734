package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/nasa-jpl/sysid-core/dataset"
	"github.com/nasa-jpl/sysid-core/filter"
	"github.com/nasa-jpl/sysid-core/jsonlog"
)

// prepareLinearDrivetrain runs the general-mechanism pipeline independently
// over the left and right channels of a linear drivetrain experiment, then
// publishes both the side-merged Forward/Backward/Combined datasets and the
// Left*/Right*-qualified per-side datasets, grounded on AnalysisManager::
// PrepareLinearDrivetrainData.
func prepareLinearDrivetrain(doc jsonlog.Document, settings *Settings, factor float64) (prepared, error) {
	side, err := prepareDrivetrainSide(doc, settings, factor, colLVoltage, colLPos, colLVel)
	if err != nil {
		return prepared{}, fmt.Errorf("prepare linear drivetrain: left: %w", err)
	}
	other, err := prepareDrivetrainSide(doc, settings, factor, colRVoltage, colRPos, colRVel)
	if err != nil {
		return prepared{}, fmt.Errorf("prepare linear drivetrain: right: %w", err)
	}

	mergedRawSf := dataset.Concat(side.rawSf, other.rawSf)
	mergedRawSb := dataset.Concat(side.rawSb, other.rawSb)
	mergedRawFf := dataset.Concat(side.rawFf, other.rawFf)
	mergedRawFb := dataset.Concat(side.rawFb, other.rawFb)

	mergedFiltSf := dataset.Concat(side.filtSf, other.filtSf)
	mergedFiltSb := dataset.Concat(side.filtSb, other.filtSb)
	mergedFiltFf := dataset.Concat(side.filtFf, other.filtFf)
	mergedFiltFb := dataset.Concat(side.filtFb, other.filtFb)

	raw := map[dataset.Direction]dataset.Dataset{
		dataset.Forward:  {Quasistatic: mergedRawSf, Dynamic: mergedRawFf},
		dataset.Backward: {Quasistatic: mergedRawSb, Dynamic: mergedRawFb},
		dataset.Combined: {Quasistatic: dataset.Concat(mergedRawSf, mergedRawSb), Dynamic: dataset.Concat(mergedRawFf, mergedRawFb)},

		dataset.LeftForward:  {Quasistatic: side.rawSf, Dynamic: side.rawFf},
		dataset.LeftBackward: {Quasistatic: side.rawSb, Dynamic: side.rawFb},
		dataset.LeftCombined: {Quasistatic: dataset.Concat(side.rawSf, side.rawSb), Dynamic: dataset.Concat(side.rawFf, side.rawFb)},

		dataset.RightForward:  {Quasistatic: other.rawSf, Dynamic: other.rawFf},
		dataset.RightBackward: {Quasistatic: other.rawSb, Dynamic: other.rawFb},
		dataset.RightCombined: {Quasistatic: dataset.Concat(other.rawSf, other.rawSb), Dynamic: dataset.Concat(other.rawFf, other.rawFb)},
	}

	filtered := map[dataset.Direction]dataset.Dataset{
		dataset.Forward:  {Quasistatic: mergedFiltSf, Dynamic: mergedFiltFf},
		dataset.Backward: {Quasistatic: mergedFiltSb, Dynamic: mergedFiltFb},
		dataset.Combined: {Quasistatic: dataset.Concat(mergedFiltSf, mergedFiltSb), Dynamic: dataset.Concat(mergedFiltFf, mergedFiltFb)},

		dataset.LeftForward:  {Quasistatic: side.filtSf, Dynamic: side.filtFf},
		dataset.LeftBackward: {Quasistatic: side.filtSb, Dynamic: side.filtFb},
		dataset.LeftCombined: {Quasistatic: dataset.Concat(side.filtSf, side.filtSb), Dynamic: dataset.Concat(side.filtFf, side.filtFb)},

		dataset.RightForward:  {Quasistatic: other.filtSf, Dynamic: other.filtFf},
		dataset.RightBackward: {Quasistatic: other.filtSb, Dynamic: other.filtFb},
		dataset.RightCombined: {Quasistatic: dataset.Concat(other.filtSf, other.filtSb), Dynamic: dataset.Concat(other.filtFf, other.filtFb)},
	}

	minDuration := math.Min(side.minDuration, other.minDuration)
	maxStepTime := math.Max(side.maxStepTime, other.maxStepTime)

	return prepared{
		Raw:      raw,
		Filtered: filtered,
		StartTimes: [4]time.Duration{
			startTime(mergedFiltSf), startTime(mergedFiltSb),
			startTime(mergedFiltFf), startTime(mergedFiltFb),
		},
		MinDuration: minDuration,
		MaxDuration: maxStepTime,
	}, nil
}

// drivetrainSideResult holds one channel's conditioned runs, raw and
// filtered, before the two sides are merged.
type drivetrainSideResult struct {
	rawSf, rawSb, rawFf, rawFb     dataset.TestRun
	filtSf, filtSb, filtFf, filtFb dataset.TestRun
	minDuration, maxStepTime       float64
}

func prepareDrivetrainSide(doc jsonlog.Document, settings *Settings, factor float64, voltageCol, posCol, velCol int) (drivetrainSideResult, error) {
	sf := parseDrivetrainSide(doc.SlowForward, voltageCol, posCol, velCol)
	sb := parseDrivetrainSide(doc.SlowBackward, voltageCol, posCol, velCol)
	ff := parseDrivetrainSide(doc.FastForward, voltageCol, posCol, velCol)
	fb := parseDrivetrainSide(doc.FastBackward, voltageCol, posCol, velCol)

	alignSign(sf, factor)
	alignSign(sb, factor)
	alignSign(ff, factor)
	alignSign(fb, factor)

	filter.TrimQuasistaticData(&sf, settings.MotionThreshold)
	filter.TrimQuasistaticData(&sb, settings.MotionThreshold)

	maxStepTime := maxDuration(ff, fb)

	rawSf, rawSb, rawFf, rawFb := cloneRun(sf), cloneRun(sb), cloneRun(ff), cloneRun(fb)

	window := settings.WindowSize
	var err error
	if rawSf, err = filter.ComputeAcceleration(rawSf, window); err != nil {
		return drivetrainSideResult{}, fmt.Errorf("raw slow-forward: %w", err)
	}
	if rawSb, err = filter.ComputeAcceleration(rawSb, window); err != nil {
		return drivetrainSideResult{}, fmt.Errorf("raw slow-backward: %w", err)
	}
	if rawFf, err = filter.ComputeAcceleration(rawFf, window); err != nil {
		return drivetrainSideResult{}, fmt.Errorf("raw fast-forward: %w", err)
	}
	if rawFb, err = filter.ComputeAcceleration(rawFb, window); err != nil {
		return drivetrainSideResult{}, fmt.Errorf("raw fast-backward: %w", err)
	}

	filtSf, err := medianThenAccelerate(sf, window)
	if err != nil {
		return drivetrainSideResult{}, fmt.Errorf("filtered slow-forward: %w", err)
	}
	filtSb, err := medianThenAccelerate(sb, window)
	if err != nil {
		return drivetrainSideResult{}, fmt.Errorf("filtered slow-backward: %w", err)
	}
	filtFf, err := medianThenAccelerate(ff, window)
	if err != nil {
		return drivetrainSideResult{}, fmt.Errorf("filtered fast-forward: %w", err)
	}
	filtFb, err := medianThenAccelerate(fb, window)
	if err != nil {
		return drivetrainSideResult{}, fmt.Errorf("filtered fast-backward: %w", err)
	}

	if _, err = filter.TrimStepVoltageData(&rawFf, window, &settings.StepTestDuration, 0, maxStepTime); err != nil {
		return drivetrainSideResult{}, fmt.Errorf("raw step trim forward: %w", err)
	}
	if _, err = filter.TrimStepVoltageData(&rawFb, window, &settings.StepTestDuration, 0, maxStepTime); err != nil {
		return drivetrainSideResult{}, fmt.Errorf("raw step trim backward: %w", err)
	}

	minDuration := math.Inf(1)
	if minDuration, err = filter.TrimStepVoltageData(&filtFf, window, &settings.StepTestDuration, minDuration, maxStepTime); err != nil {
		return drivetrainSideResult{}, fmt.Errorf("filtered step trim forward: %w", err)
	}
	if minDuration, err = filter.TrimStepVoltageData(&filtFb, window, &settings.StepTestDuration, minDuration, maxStepTime); err != nil {
		return drivetrainSideResult{}, fmt.Errorf("filtered step trim backward: %w", err)
	}

	return drivetrainSideResult{
		rawSf: rawSf, rawSb: rawSb, rawFf: rawFf, rawFb: rawFb,
		filtSf: filtSf, filtSb: filtSb, filtFf: filtFf, filtFb: filtFb,
		minDuration: minDuration, maxStepTime: maxStepTime,
	}, nil
}
