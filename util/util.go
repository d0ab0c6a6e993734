// Package util contains misc internal utilities shared by the analysis
// pipeline.
package util

import "time"

// SecsToDuration converts a float seconds value, as logged in an experiment
// JSON's timestamp column, to a time.Duration.
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
