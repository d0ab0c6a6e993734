// Package jsonlog reads the native experiment JSON schema from disk: a
// retried file read (transient filesystem hiccups are common on the robot
// controllers this format originates from) followed by a checksum of the
// raw bytes, logged for traceability, then a schema-tagged decode.
package jsonlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/snksoft/crc"
)

// ErrIoError is returned when the experiment JSON cannot be read from disk
// even after retrying.
var ErrIoError = errors.New("experiment log unreadable")

// ErrSchemaMismatch is returned when the document lacks the required
// "sysid" schema tag — the caller is advised to run the legacy-schema
// converter (package jsonconvert) first.
var ErrSchemaMismatch = errors.New("missing \"sysid\" schema tag; run the legacy-schema converter first")

// Document is the native experiment JSON schema: a semver schema tag, the
// mechanism family under test, the unit system the raw samples are logged
// in, and the four canonical test runs as raw numeric rows.
type Document struct {
	SysID            string        `json:"sysid"`
	Test             string        `json:"test"`
	Units            string        `json:"units"`
	UnitsPerRotation float64       `json:"unitsPerRotation"`
	SlowForward      [][]float64   `json:"slow-forward"`
	SlowBackward     [][]float64   `json:"slow-backward"`
	FastForward      [][]float64   `json:"fast-forward"`
	FastBackward     [][]float64   `json:"fast-backward"`
}

var crcTable = crc.NewTable(crc.XMODEM)

// Load reads and decodes the experiment JSON at path, retrying transient
// read failures with an exponential backoff, and logs the XMODEM checksum
// of the raw bytes once read succeeds.
func Load(path string, logger *log.Logger) (Document, error) {
	var raw []byte
	op := func() error {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		raw = b
		return nil
	}

	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock,
	})
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w: %w", path, ErrIoError, err)
	}

	checksum := crcTable.CalculateCRC(raw)
	if logger != nil {
		logger.Printf("jsonlog: loaded %s (%d bytes, crc16/xmodem %04x)", path, len(raw), checksum)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if doc.SysID == "" {
		return Document{}, fmt.Errorf("%s: %w", path, ErrSchemaMismatch)
	}
	return doc, nil
}
