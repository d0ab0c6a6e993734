package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/nasa-jpl/sysid-core/dataset"
	"github.com/nasa-jpl/sysid-core/filter"
	"github.com/nasa-jpl/sysid-core/jsonlog"
)

// prepareGeneral conditions the four canonical runs of a Simple, Elevator,
// or Arm experiment: sign-aligned voltage, unit-scaled position/velocity,
// quasistatic trimming on the slow runs, and both a raw and a
// median-filtered acceleration pass, grounded on AnalysisManager::
// PrepareGeneralData.
func prepareGeneral(doc jsonlog.Document, settings *Settings, factor float64, unit string) (prepared, error) {
	sf := parseGeneralRows(doc.SlowForward)
	sb := parseGeneralRows(doc.SlowBackward)
	ff := parseGeneralRows(doc.FastForward)
	fb := parseGeneralRows(doc.FastBackward)

	alignSign(sf, factor)
	alignSign(sb, factor)
	alignSign(ff, factor)
	alignSign(fb, factor)

	filter.TrimQuasistaticData(&sf, settings.MotionThreshold)
	filter.TrimQuasistaticData(&sb, settings.MotionThreshold)

	maxStepTime := maxDuration(ff, fb)

	rawSf, rawSb, rawFf, rawFb := cloneRun(sf), cloneRun(sb), cloneRun(ff), cloneRun(fb)

	var err error
	window := settings.WindowSize
	if rawSf, err = filter.ComputeAcceleration(rawSf, window); err != nil {
		return prepared{}, fmt.Errorf("prepare general: raw slow-forward: %w", err)
	}
	if rawSb, err = filter.ComputeAcceleration(rawSb, window); err != nil {
		return prepared{}, fmt.Errorf("prepare general: raw slow-backward: %w", err)
	}
	if rawFf, err = filter.ComputeAcceleration(rawFf, window); err != nil {
		return prepared{}, fmt.Errorf("prepare general: raw fast-forward: %w", err)
	}
	if rawFb, err = filter.ComputeAcceleration(rawFb, window); err != nil {
		return prepared{}, fmt.Errorf("prepare general: raw fast-backward: %w", err)
	}

	filtSf, err := medianThenAccelerate(sf, window)
	if err != nil {
		return prepared{}, fmt.Errorf("prepare general: filtered slow-forward: %w", err)
	}
	filtSb, err := medianThenAccelerate(sb, window)
	if err != nil {
		return prepared{}, fmt.Errorf("prepare general: filtered slow-backward: %w", err)
	}
	filtFf, err := medianThenAccelerate(ff, window)
	if err != nil {
		return prepared{}, fmt.Errorf("prepare general: filtered fast-forward: %w", err)
	}
	filtFb, err := medianThenAccelerate(fb, window)
	if err != nil {
		return prepared{}, fmt.Errorf("prepare general: filtered fast-backward: %w", err)
	}

	calculateCosine(filtSf, unit)
	calculateCosine(filtSb, unit)
	calculateCosine(filtFf, unit)
	calculateCosine(filtFb, unit)

	// Raw step trimming only locates the transient; the duration it derives
	// is thrown away so the experiment's real minimum step-test duration
	// comes solely from the filtered (median-smoothed) runs.
	if _, err = filter.TrimStepVoltageData(&rawFf, window, &settings.StepTestDuration, 0, maxStepTime); err != nil {
		return prepared{}, fmt.Errorf("prepare general: raw step trim forward: %w", err)
	}
	if _, err = filter.TrimStepVoltageData(&rawFb, window, &settings.StepTestDuration, 0, maxStepTime); err != nil {
		return prepared{}, fmt.Errorf("prepare general: raw step trim backward: %w", err)
	}

	minDuration := math.Inf(1)
	if minDuration, err = filter.TrimStepVoltageData(&filtFf, window, &settings.StepTestDuration, minDuration, maxStepTime); err != nil {
		return prepared{}, fmt.Errorf("prepare general: filtered step trim forward: %w", err)
	}
	if minDuration, err = filter.TrimStepVoltageData(&filtFb, window, &settings.StepTestDuration, minDuration, maxStepTime); err != nil {
		return prepared{}, fmt.Errorf("prepare general: filtered step trim backward: %w", err)
	}

	raw := map[dataset.Direction]dataset.Dataset{
		dataset.Forward:  {Quasistatic: rawSf, Dynamic: rawFf},
		dataset.Backward: {Quasistatic: rawSb, Dynamic: rawFb},
		dataset.Combined: {Quasistatic: dataset.Concat(rawSf, rawSb), Dynamic: dataset.Concat(rawFf, rawFb)},
	}
	filtered := map[dataset.Direction]dataset.Dataset{
		dataset.Forward:  {Quasistatic: filtSf, Dynamic: filtFf},
		dataset.Backward: {Quasistatic: filtSb, Dynamic: filtFb},
		dataset.Combined: {Quasistatic: dataset.Concat(filtSf, filtSb), Dynamic: dataset.Concat(filtFf, filtFb)},
	}

	return prepared{
		Raw:         raw,
		Filtered:    filtered,
		StartTimes:  [4]time.Duration{startTime(filtSf), startTime(filtSb), startTime(filtFf), startTime(filtFb)},
		MinDuration: minDuration,
		MaxDuration: maxStepTime,
	}, nil
}

func medianThenAccelerate(run dataset.TestRun, window int) (dataset.TestRun, error) {
	filtered, err := filter.ApplyMedianFilter(run, window)
	if err != nil {
		return nil, err
	}
	return filter.ComputeAcceleration(filtered, window)
}
