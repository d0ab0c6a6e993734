package analysis

import (
	"math"

	"github.com/nasa-jpl/sysid-core/dataset"
	"github.com/nasa-jpl/sysid-core/util"
)

// parseGeneralRows turns raw 4-column rows [t, V, p, v] into a TestRun of
// bare (T, Voltage, Position, Velocity) points, with no conditioning
// applied yet.
func parseGeneralRows(rows [][]float64) dataset.TestRun {
	run := make(dataset.TestRun, len(rows))
	for i, r := range rows {
		run[i] = dataset.PreparedData{
			T:        util.SecsToDuration(r[0]),
			Voltage:  r[1],
			Position: r[2],
			Velocity: r[3],
		}
	}
	return run
}

// parseDrivetrainSide turns raw 9-column rows
// [t, Vl, Vr, pl, pr, vl, vr, theta, thetadot] into one side's TestRun,
// selecting the voltage/position/velocity columns for that side.
func parseDrivetrainSide(rows [][]float64, voltageCol, posCol, velCol int) dataset.TestRun {
	run := make(dataset.TestRun, len(rows))
	for i, r := range rows {
		run[i] = dataset.PreparedData{
			T:        util.SecsToDuration(r[0]),
			Voltage:  r[voltageCol],
			Position: r[posCol],
			Velocity: r[velCol],
		}
	}
	return run
}

const (
	colLVoltage    = 1
	colRVoltage    = 2
	colLPos        = 3
	colRPos        = 4
	colLVel        = 5
	colRVel        = 6
	colAngle       = 7
	colAngularRate = 8
)

// alignSign rewrites every point's Voltage to carry the sign of its
// Velocity and scales Position/Velocity by factor, in place.
func alignSign(run dataset.TestRun, factor float64) {
	for i := range run {
		run[i].Voltage = math.Copysign(run[i].Voltage, run[i].Velocity)
		run[i].Position *= factor
		run[i].Velocity *= factor
	}
}

// calculateCosine fills pt.Cos for every point of run, converting position
// to radians per unit before taking the cosine.
func calculateCosine(run dataset.TestRun, unit string) {
	for i := range run {
		p := run[i].Position
		switch unit {
		case "Radians":
			run[i].Cos = math.Cos(p)
		case "Degrees":
			run[i].Cos = math.Cos(p * math.Pi / 180)
		case "Rotations":
			run[i].Cos = math.Cos(p * 2 * math.Pi)
		}
	}
}

// maxDuration returns the larger of two runs' observed durations.
func maxDuration(a, b dataset.TestRun) float64 {
	da, db := a.Duration().Seconds(), b.Duration().Seconds()
	if da > db {
		return da
	}
	return db
}
