package analysis

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nasa-jpl/sysid-core/analysistype"
	"github.com/nasa-jpl/sysid-core/dataset"
	"github.com/nasa-jpl/sysid-core/feedback"
)

// quasistaticRows builds n rows for a slow, low-voltage test: the same
// first-order response stepRows generates (time constant 0.3), settling at
// velocity. A constant-velocity slow run would have every point dropped by
// ComputeAcceleration for its zero acceleration; this one keeps a nonzero
// acceleration, and at a different voltage from the fast runs it makes the
// (sign(v), v, a) regressors of the combined dataset linearly independent.
// With voltage 2 and velocity 1 next to stepRows' 5 V / 4 / 0.3 fast runs,
// every run comes from the plant Ks=1, Kv=1, Ka=0.3.
func quasistaticRows(n int, dt, voltage, velocity float64) [][]float64 {
	return stepRows(n, dt, voltage, velocity, 0.3)
}

// stepRows builds n rows of a first-order step response: velocity rises
// from 0 toward vss with time constant tau, giving a smoothly decaying
// acceleration transient — the shape TrimStepVoltageData is meant to
// isolate.
func stepRows(n int, dt, voltage, vss, tau float64) [][]float64 {
	rows := make([][]float64, n)
	pos := 0.0
	prevV := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		v := vss * (1 - math.Exp(-t/tau))
		pos += 0.5 * (v + prevV) * dt
		prevV = v
		rows[i] = []float64{t, voltage, pos, v}
	}
	return rows
}

func writeDoc(t *testing.T, doc map[string]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "experiment.json")
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func simpleDoc(test string) map[string]interface{} {
	return map[string]interface{}{
		"sysid":            "1.0.0",
		"test":             test,
		"units":            "Radians",
		"unitsPerRotation": 1.0,
		"slow-forward":     quasistaticRows(20, 0.02, 2.0, 1.0),
		"slow-backward":    quasistaticRows(20, 0.02, -2.0, -1.0),
		"fast-forward":     stepRows(60, 0.02, 5.0, 4.0, 0.3),
		"fast-backward":    stepRows(60, 0.02, -5.0, -4.0, 0.3),
	}
}

func TestNewSimpleMechanism(t *testing.T) {
	path := writeDoc(t, simpleDoc("Simple"))
	m, err := New(path, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Type() != analysistype.Simple {
		t.Fatalf("unexpected mechanism type %+v", m.Type())
	}
	if m.TrackWidth() != nil {
		t.Fatalf("expected nil track width for a Simple mechanism")
	}

	gains, err := m.Calculate()
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(gains.Feedforward.Beta) != 3 {
		t.Fatalf("expected a 3-wide Simple feedforward result, got %d", len(gains.Feedforward.Beta))
	}
	if gains.Feedback.Kp <= 0 {
		t.Fatalf("expected a positive position-loop Kp, got %v", gains.Feedback.Kp)
	}
}

func TestNewArmMechanismUsesCosRegressor(t *testing.T) {
	doc := simpleDoc("Arm")
	path := writeDoc(t, doc)
	m, err := New(path, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	gains, err := m.Calculate()
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(gains.Feedforward.Beta) != 4 {
		t.Fatalf("expected a 4-wide Arm feedforward result, got %d", len(gains.Feedforward.Beta))
	}
}

func TestNewUnknownMechanismType(t *testing.T) {
	doc := simpleDoc("NotAMechanism")
	path := writeDoc(t, doc)
	if _, err := New(path, DefaultSettings(), nil); err == nil {
		t.Fatal("expected an error for an unrecognized mechanism type")
	}
}

func TestNewMissingSchemaTag(t *testing.T) {
	doc := simpleDoc("Simple")
	delete(doc, "sysid")
	path := writeDoc(t, doc)
	if _, err := New(path, DefaultSettings(), nil); err == nil {
		t.Fatal("expected an error for a document missing the sysid schema tag")
	}
}

func TestCalculateUnknownDirection(t *testing.T) {
	path := writeDoc(t, simpleDoc("Simple"))
	settings := DefaultSettings()
	settings.Dataset = dataset.LeftForward
	m, err := New(path, settings, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.Calculate(); err == nil {
		t.Fatal("expected an error selecting a Left/Right direction on a non-drivetrain mechanism")
	}
}

func TestOverrideUnitsReprocesses(t *testing.T) {
	path := writeDoc(t, simpleDoc("Simple"))
	m, err := New(path, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.OverrideUnits("Degrees", 360); err != nil {
		t.Fatalf("OverrideUnits: %v", err)
	}
	if m.Unit() != "Degrees" || m.Factor() != 360 {
		t.Fatalf("OverrideUnits did not take effect: unit=%s factor=%v", m.Unit(), m.Factor())
	}
	if err := m.ResetUnitsFromJSON(); err != nil {
		t.Fatalf("ResetUnitsFromJSON: %v", err)
	}
	if m.Unit() != "Radians" || m.Factor() != 1.0 {
		t.Fatalf("ResetUnitsFromJSON did not restore original units: unit=%s factor=%v", m.Unit(), m.Factor())
	}
}

func drivetrainRows9(n int, dt, voltage, vss, tau float64) [][]float64 {
	gen := stepRows(n, dt, voltage, vss, tau)
	rows := make([][]float64, n)
	for i, r := range gen {
		t, v, p, vel := r[0], r[1], r[2], r[3]
		rows[i] = []float64{t, v, v, p, p, vel, vel, 0, 0}
	}
	return rows
}

// quasistaticRows9 is quasistaticRows in the 9-column drivetrain layout.
func quasistaticRows9(n int, dt, voltage, velocity float64) [][]float64 {
	return drivetrainRows9(n, dt, voltage, velocity, 0.3)
}

func TestNewLinearDrivetrain(t *testing.T) {
	doc := map[string]interface{}{
		"sysid":            "1.0.0",
		"test":             "Drivetrain",
		"units":            "Radians",
		"unitsPerRotation": 1.0,
		"slow-forward":     quasistaticRows9(20, 0.02, 2.0, 1.0),
		"slow-backward":    quasistaticRows9(20, 0.02, -2.0, -1.0),
		"fast-forward":     drivetrainRows9(60, 0.02, 5.0, 4.0, 0.3),
		"fast-backward":    drivetrainRows9(60, 0.02, -5.0, -4.0, 0.3),
	}
	path := writeDoc(t, doc)
	m, err := New(path, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.TrackWidth() != nil {
		t.Fatal("expected nil track width for a linear drivetrain")
	}

	settings := DefaultSettings()
	settings.Dataset = dataset.LeftForward
	m, err = New(path, settings, nil)
	if err != nil {
		t.Fatalf("New with Left direction: %v", err)
	}
	if _, err := m.Calculate(); err != nil {
		t.Fatalf("Calculate (Left Forward): %v", err)
	}
}

func angularRows(n int, dt, voltage, omegaSS, tau, lSign, rSign float64) [][]float64 {
	rows := make([][]float64, n)
	lPos, rPos, angle := 0.0, 0.0, 0.0
	prevOmega := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		omega := omegaSS * (1 - math.Exp(-t/tau))
		angle += 0.5 * (omega + prevOmega) * dt
		prevOmega = omega
		lPos += lSign * omega * dt
		rPos += rSign * omega * dt
		rows[i] = []float64{t, voltage, voltage, lPos, rPos, 0, 0, angle, omega}
	}
	return rows
}

func TestNewAngularDrivetrain(t *testing.T) {
	doc := map[string]interface{}{
		"sysid":            "1.0.0",
		"test":             "Drivetrain (Angular)",
		"units":            "Radians",
		"unitsPerRotation": 1.0,
		"slow-forward":     angularRows(20, 0.02, 2.0, 0.5, 0.05, -1, 1),
		"slow-backward":    angularRows(20, 0.02, -2.0, -0.5, 0.05, 1, -1),
		"fast-forward":     angularRows(60, 0.02, 5.0, 4.0, 0.3, -1, 1),
		"fast-backward":    angularRows(60, 0.02, -5.0, -4.0, 0.3, 1, -1),
	}
	path := writeDoc(t, doc)
	m, err := New(path, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.TrackWidth() == nil {
		t.Fatal("expected a non-nil track width for an angular drivetrain")
	}
	if _, err := m.Calculate(); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
}

func TestCalculateVelocityLoopHasZeroKd(t *testing.T) {
	path := writeDoc(t, simpleDoc("Simple"))
	settings := DefaultSettings()
	settings.FeedbackLoop = VelocityLoop
	m, err := New(path, settings, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	gains, err := m.Calculate()
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if gains.Feedback.Kd != 0 {
		t.Fatalf("expected Kd == 0 for a velocity loop, got %v", gains.Feedback.Kd)
	}
}

func TestCalculateLQRMode(t *testing.T) {
	path := writeDoc(t, simpleDoc("Simple"))
	settings := DefaultSettings()
	settings.FeedbackMode = feedback.LQR
	m, err := New(path, settings, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.Calculate(); err != nil {
		t.Fatalf("Calculate (LQR): %v", err)
	}
}
