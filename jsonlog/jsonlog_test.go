package jsonlog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, doc Document) string {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "experiment.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadRoundTrip(t *testing.T) {
	want := Document{
		SysID:            "1.0.0",
		Test:             "Simple",
		Units:            "Rotations",
		UnitsPerRotation: 1,
		SlowForward:      [][]float64{{0, 1, 0, 0}},
	}
	path := writeDoc(t, want)

	got, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SysID != want.SysID || got.Test != want.Test {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLoadMissingSchemaTag(t *testing.T) {
	path := writeDoc(t, Document{Test: "Simple"})
	if _, err := Load(path, nil); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("got %v, want ErrSchemaMismatch", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	if _, err := Load(path, nil); !errors.Is(err, ErrIoError) {
		t.Fatalf("got %v, want ErrIoError", err)
	}
}
