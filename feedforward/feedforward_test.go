package feedforward

import (
	"math"
	"testing"

	"github.com/nasa-jpl/sysid-core/analysistype"
	"github.com/nasa-jpl/sysid-core/dataset"
)

// A synthetic Simple-type plant V = Ks*sign(v) + Kv*v + Ka*a, sampled
// noiselessly, should be recovered to within floating-point tolerance.
func TestFitSimpleExactRecovery(t *testing.T) {
	const ks, kv, ka = 0.5, 2.0, 0.3

	var run dataset.TestRun
	for i := 1; i <= 20; i++ {
		v := float64(i) * 0.1
		a := float64(i*i) * 0.01 // not proportional to v, so the columns are independent
		voltage := ks*1 + kv*v + ka*a
		run = append(run, dataset.PreparedData{Velocity: v, Acceleration: a, Voltage: voltage})
	}

	res, err := Fit(run, analysistype.Simple)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	gotKs, gotKv, gotKa := KsKvKa(res)
	if math.Abs(gotKs-ks) > 1e-9 || math.Abs(gotKv-kv) > 1e-9 || math.Abs(gotKa-ka) > 1e-9 {
		t.Fatalf("got (Ks,Kv,Ka)=(%v,%v,%v), want (%v,%v,%v)", gotKs, gotKv, gotKa, ks, kv, ka)
	}
}

func TestFitElevatorRegressorWidth(t *testing.T) {
	run := dataset.TestRun{
		{Velocity: 1, Acceleration: 0.1, Voltage: 1},
		{Velocity: 2, Acceleration: 0.2, Voltage: 2},
		{Velocity: -1, Acceleration: 0.1, Voltage: -0.5},
		{Velocity: 3, Acceleration: 0.5, Voltage: 3},
	}
	res, err := Fit(run, analysistype.Elevator)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if len(res.Beta) != 4 {
		t.Fatalf("got %d coefficients, want 4", len(res.Beta))
	}
	// should not panic: named accessor reads all four.
	_, _, _, _ = KsKgKvKa(res)
}

func TestFitEmptyDataset(t *testing.T) {
	if _, err := Fit(nil, analysistype.Simple); err == nil {
		t.Fatal("expected an error for an empty dataset")
	}
}
