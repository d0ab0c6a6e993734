// Package jsonconvert translates the legacy "frc-char" experiment schema
// into the native schema jsonlog reads, as a pure function plus a thin
// filesystem wrapper — the one place in this package allowed to touch
// disk.
package jsonconvert

import (
	"encoding/json"
	"fmt"
	"os"
)

// LegacyDocument is the legacy "frc-char" schema: the same fields, under
// the same JSON names, as the native schema, but without the "sysid"
// schema tag.
type LegacyDocument struct {
	Test             string      `json:"test"`
	Units            string      `json:"units"`
	UnitsPerRotation float64     `json:"unitsPerRotation"`
	SlowForward      [][]float64 `json:"slow-forward"`
	SlowBackward     [][]float64 `json:"slow-backward"`
	FastForward      [][]float64 `json:"fast-forward"`
	FastBackward     [][]float64 `json:"fast-backward"`
}

// NativeDocument mirrors jsonlog.Document's field set; kept independent of
// that package so jsonconvert has no dependency on the loader it feeds.
type NativeDocument struct {
	SysID            string      `json:"sysid"`
	Test             string      `json:"test"`
	Units            string      `json:"units"`
	UnitsPerRotation float64     `json:"unitsPerRotation"`
	SlowForward      [][]float64 `json:"slow-forward"`
	SlowBackward     [][]float64 `json:"slow-backward"`
	FastForward      [][]float64 `json:"fast-forward"`
	FastBackward     [][]float64 `json:"fast-backward"`
}

// nativeSchemaTag is stamped onto every document this package produces.
const nativeSchemaTag = "1.0.0"

// Convert rewrites a LegacyDocument into the native schema, stamping the
// required "sysid" schema tag.
func Convert(legacy LegacyDocument) (NativeDocument, error) {
	if legacy.Test == "" {
		return NativeDocument{}, fmt.Errorf("jsonconvert: legacy document missing \"test\" field")
	}
	return NativeDocument{
		SysID:            nativeSchemaTag,
		Test:             legacy.Test,
		Units:            legacy.Units,
		UnitsPerRotation: legacy.UnitsPerRotation,
		SlowForward:      legacy.SlowForward,
		SlowBackward:     legacy.SlowBackward,
		FastForward:      legacy.FastForward,
		FastBackward:     legacy.FastBackward,
	}, nil
}

// ConvertFile reads a legacy-schema JSON document from inPath, converts it,
// and writes the native-schema result to outPath.
func ConvertFile(inPath, outPath string) error {
	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("jsonconvert: reading %s: %w", inPath, err)
	}

	var legacy LegacyDocument
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return fmt.Errorf("jsonconvert: decoding %s: %w", inPath, err)
	}

	native, err := Convert(legacy)
	if err != nil {
		return fmt.Errorf("jsonconvert: %s: %w", inPath, err)
	}

	out, err := json.MarshalIndent(native, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonconvert: encoding %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("jsonconvert: writing %s: %w", outPath, err)
	}
	return nil
}
