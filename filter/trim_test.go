package filter

import (
	"testing"
	"time"

	"github.com/nasa-jpl/sysid-core/dataset"
)

func TestTrimQuasistaticData(t *testing.T) {
	run := dataset.TestRun{
		{Voltage: 1, Velocity: 0.01},
		{Voltage: 1, Velocity: 2},
		{Voltage: 0, Velocity: 5},
		{Voltage: 1, Velocity: 3},
	}
	TrimQuasistaticData(&run, 1.0)

	if len(run) != 2 {
		t.Fatalf("got %d surviving points, want 2", len(run))
	}
	if run[0].Velocity != 2 || run[1].Velocity != 3 {
		t.Fatalf("unexpected survivors: %+v", run)
	}
}

func TestComputeAccelerationDropsZeroAcceleration(t *testing.T) {
	run := dataset.TestRun{
		{T: 0, Velocity: 0},
		{T: 1 * time.Second, Velocity: 1},
		{T: 2 * time.Second, Velocity: 1}, // quantized repeat -> zero accel at window 2
		{T: 3 * time.Second, Velocity: 1},
		{T: 4 * time.Second, Velocity: 4},
	}
	out, err := ComputeAcceleration(run, 2)
	if err != nil {
		t.Fatalf("ComputeAcceleration: %v", err)
	}
	for _, pt := range out {
		if pt.Acceleration == 0 {
			t.Fatalf("zero-acceleration point leaked through: %+v", pt)
		}
	}
}

// Reproduces FilterTest.cpp's StepTrim case: the retained transient starts
// at the single peak sample (not the first sample above the noise floor),
// runs through its decay back to the floor, and the duration/minTime
// bookkeeping is measured from the start of the original run, not of the
// trimmed slice.
func TestTrimStepVoltageDataAutoDuration(t *testing.T) {
	accel := []float64{0, 0.25, 0.5, 0.45, 0.35, 0.15, 0, 0.02, 0.01, 0}
	run := make(dataset.TestRun, len(accel))
	for i, a := range accel {
		run[i] = dataset.PreparedData{T: time.Duration(i) * time.Second, Acceleration: a}
	}

	duration := 0.0
	minTime, err := TrimStepVoltageData(&run, 2, &duration, 9, 9)
	if err != nil {
		t.Fatalf("TrimStepVoltageData: %v", err)
	}

	wantAccel := []float64{0.5, 0.45, 0.35, 0.15}
	if len(run) != len(wantAccel) {
		t.Fatalf("got %d retained samples, want %d: %+v", len(run), len(wantAccel), run)
	}
	for i, pt := range run {
		if pt.Acceleration != wantAccel[i] {
			t.Fatalf("index %d: got acceleration %v, want %v", i, pt.Acceleration, wantAccel[i])
		}
	}
	if run[0].T != 2*time.Second {
		t.Fatalf("got retained run starting at %v, want 2s", run[0].T)
	}
	if duration != 5 {
		t.Fatalf("got stepTestDuration %v, want 5", duration)
	}
	if minTime != 2 {
		t.Fatalf("got minTime %v, want 2", minTime)
	}
}

func TestTrimStepVoltageDataEmptyRun(t *testing.T) {
	run := dataset.TestRun{}
	duration := 0.0
	if _, err := TrimStepVoltageData(&run, 2, &duration, 9, 9); err == nil {
		t.Fatal("expected ErrInsufficientData on an empty run")
	}
}
