package filter

import (
	"fmt"
	"math"
	"time"

	"github.com/nasa-jpl/sysid-core/dataset"
)

// ComputeAcceleration derives the acceleration field of every interior
// point of run from a central difference of velocity against time:
// a_i = (v[i+s] - v[i-s]) / (t[i+s] - t[i-s]), s = window/2, and sets each
// kept point's Dt to the interval to the next point of run. Points without
// a full window are dropped, and points where the resulting acceleration
// is exactly zero are discarded too — encoder quantization produces
// repeated velocity samples that would otherwise masquerade as a real
// zero-acceleration sample.
func ComputeAcceleration(run dataset.TestRun, window int) (dataset.TestRun, error) {
	s := window / 2
	if len(run) <= 2*s {
		return nil, fmt.Errorf("%d points, window %d: %w", len(run), window, ErrInsufficientData)
	}

	out := make(dataset.TestRun, 0, len(run))
	for i := s; i < len(run)-s; i++ {
		dt := (run[i+s].T - run[i-s].T).Seconds()
		if dt == 0 {
			continue
		}
		a := (run[i+s].Velocity - run[i-s].Velocity) / dt
		if a == 0 {
			continue
		}
		pt := run[i]
		pt.Acceleration = a
		pt.Dt = run[i+1].T - run[i].T
		out = append(out, pt)
	}
	return out, nil
}

// TrimQuasistaticData removes, in place, every point whose absolute
// velocity is below motionThreshold or whose absolute voltage is
// vanishingly small, preserving the order of the surviving points.
func TrimQuasistaticData(run *dataset.TestRun, motionThreshold float64) {
	const voltageEpsilon = 1e-9

	kept := (*run)[:0]
	for _, pt := range *run {
		if math.Abs(pt.Velocity) < motionThreshold || math.Abs(pt.Voltage) < voltageEpsilon {
			continue
		}
		kept = append(kept, pt)
	}
	*run = kept
}

// TrimStepVoltageData locates and retains the useful acceleration
// transient of a step-voltage (dynamic) run:
//
//  1. floor = GetNoiseFloor(run, windowSize, Acceleration)
//  2. find iPeak, the index of the single largest |acceleration| sample in
//     the whole run — the moment the step actually lands — and drop
//     everything before it; the rise to the step is not part of the
//     transient, regardless of whether it already reads above floor
//  3. from iPeak forward, retain the contiguous run of samples whose
//     |acceleration| stays above floor; trim at the first sample that
//     decays back to the floor
//  4. further truncate to stepTestDuration seconds measured from the start
//     of the original run (not of the retained slice), or, if
//     stepTestDuration <= 0, set it to the retained slice's own last
//     timestamp
//  5. return minTime updated to min(minTime, the retained slice's first
//     timestamp) — the earliest point across every run at which a step
//     response is actually underway
//
// windowSize feeds GetNoiseFloor; stepTestDuration is a pointer so the
// "auto" (<=0) branch can write back the duration it derived, matching the
// original manager's own settings field. maxTime bounds the duration-4
// truncation horizon alongside *stepTestDuration. Grounded on
// FilterTest.cpp's StepTrim case, which pins down both the peak-first
// trimming and the absolute (not slice-relative) timestamps recorded into
// stepTestDuration and minTime.
func TrimStepVoltageData(run *dataset.TestRun, windowSize int, stepTestDuration *float64, minTime, maxTime float64) (float64, error) {
	data := *run
	if len(data) == 0 {
		return minTime, fmt.Errorf("step trim: %w", ErrInsufficientData)
	}

	floor := GetNoiseFloor(data, windowSize, Acceleration)

	iPeak := 0
	for i, pt := range data {
		if math.Abs(pt.Acceleration) > math.Abs(data[iPeak].Acceleration) {
			iPeak = i
		}
	}
	data = data[iPeak:]

	iEnd := len(data)
	for i, pt := range data {
		if math.Abs(pt.Acceleration) <= floor {
			iEnd = i
			break
		}
	}
	data = data[:iEnd]
	if len(data) == 0 {
		return minTime, fmt.Errorf("step trim: %w", ErrInsufficientData)
	}

	horizon := *stepTestDuration
	if horizon > 0 {
		limit := horizon
		if maxTime < limit {
			limit = maxTime
		}
		cutoff := time.Duration(limit * float64(time.Second))
		truncated := data[:0]
		for _, pt := range data {
			if pt.T > cutoff {
				break
			}
			truncated = append(truncated, pt)
		}
		data = truncated
		if len(data) == 0 {
			return minTime, fmt.Errorf("step trim: %w", ErrInsufficientData)
		}
	} else {
		*stepTestDuration = data[len(data)-1].T.Seconds()
	}

	observed := data[0].T.Seconds()
	if observed < minTime {
		minTime = observed
	}

	*run = data
	return minTime, nil
}
