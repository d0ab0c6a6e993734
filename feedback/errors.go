package feedback

import "errors"

// ErrNonPhysicalPlant is returned whenever the identified plant has a
// non-positive Kv or Ka — no real feedback gain solves a plant that can't
// accelerate or that has no velocity drag term.
var ErrNonPhysicalPlant = errors.New("non-physical plant: Kv and Ka must both be positive")

// ErrUnknownPreset is returned by PresetByName for a name not present in
// the embedded preset table.
var ErrUnknownPreset = errors.New("unknown feedback preset")

// ErrRiccatiDidNotConverge is returned when the discrete Riccati fixed-point
// iteration fails to settle within the iteration cap.
var ErrRiccatiDidNotConverge = errors.New("discrete Riccati iteration did not converge")
