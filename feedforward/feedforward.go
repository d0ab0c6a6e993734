// Package feedforward builds the per-mechanism regressor matrix and fits
// the static-friction + gravity/cosine + viscous + acceleration model by
// OLS, then exposes the fitted coefficients through named accessors instead
// of raw Beta indices.
package feedforward

import (
	"fmt"

	"github.com/nasa-jpl/sysid-core/analysistype"
	"github.com/nasa-jpl/sysid-core/dataset"
	"github.com/nasa-jpl/sysid-core/mathx"
	"github.com/nasa-jpl/sysid-core/regression"
	"gonum.org/v1/gonum/mat"
)

// Result is a fitted feedforward model: the OLS solve plus fit diagnostics.
// Its Beta layout depends on the mechanism type (see KsKvKa/KsKgKvKa/
// KsKcosKvKa) so callers should read it through one of those accessors
// rather than indexing Beta directly.
type Result = regression.Result

// Fit builds the regressor matrix for t from combined's PreparedData points
// and solves for the feedforward coefficients by OLS.
func Fit(combined dataset.TestRun, t analysistype.AnalysisType) (regression.Result, error) {
	n := len(combined)
	if n == 0 {
		return regression.Result{}, fmt.Errorf("feedforward: empty dataset")
	}

	cols := regressorWidth(t)
	x := mat.NewDense(n, cols, nil)
	y := mat.NewVecDense(n, nil)

	for i, pt := range combined {
		row := regressorRow(t, pt)
		for j, v := range row {
			x.Set(i, j, v)
		}
		y.SetVec(i, pt.Voltage)
	}

	return regression.Solve(x, y)
}

func regressorWidth(t analysistype.AnalysisType) int {
	switch t {
	case analysistype.Elevator, analysistype.Arm:
		return 4
	default:
		return 3
	}
}

func regressorRow(t analysistype.AnalysisType, pt dataset.PreparedData) []float64 {
	sign := mathx.Sign(pt.Velocity)
	switch t {
	case analysistype.Elevator:
		return []float64{sign, 1, pt.Velocity, pt.Acceleration}
	case analysistype.Arm:
		return []float64{sign, pt.Cos, pt.Velocity, pt.Acceleration}
	default: // Simple, Drivetrain, DrivetrainAngular
		return []float64{sign, pt.Velocity, pt.Acceleration}
	}
}

// KsKvKa reads a Simple/Drivetrain-shaped result: Ks, Kv, Ka.
func KsKvKa(r regression.Result) (ks, kv, ka float64) {
	return r.Beta[0], r.Beta[1], r.Beta[2]
}

// KsKgKvKa reads an Elevator-shaped result: Ks, Kg, Kv, Ka.
func KsKgKvKa(r regression.Result) (ks, kg, kv, ka float64) {
	return r.Beta[0], r.Beta[1], r.Beta[2], r.Beta[3]
}

// KsKcosKvKa reads an Arm-shaped result: Ks, Kcos, Kv, Ka.
func KsKcosKvKa(r regression.Result) (ks, kcos, kv, ka float64) {
	return r.Beta[0], r.Beta[1], r.Beta[2], r.Beta[3]
}
