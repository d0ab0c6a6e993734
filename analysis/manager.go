// Package analysis wires the dataset, filter, regression, feedforward,
// feedback, and trackwidth packages into the end-to-end pipeline: load an
// experiment log, condition it into raw and filtered datasets keyed by
// mechanism family, and compute feedforward and feedback gains from the
// direction the caller selects. Grounded on AnalysisManager.cpp's
// constructor/PrepareData/Calculate control flow.
package analysis

import (
	"fmt"
	"log"

	"github.com/nasa-jpl/sysid-core/analysistype"
	"github.com/nasa-jpl/sysid-core/dataset"
	"github.com/nasa-jpl/sysid-core/feedback"
	"github.com/nasa-jpl/sysid-core/feedforward"
	"github.com/nasa-jpl/sysid-core/jsonlog"
)

// Gains is the full result of one Calculate call: the fitted feedforward
// coefficients, the synthesized feedback gains, and (for angular
// drivetrains only) the derived track width.
type Gains struct {
	Feedforward feedforward.Result
	Feedback    feedback.Gains
	TrackWidth  *float64
}

// AnalysisManager owns one loaded experiment and its conditioned datasets.
// It is not safe for concurrent use — callers that need to analyze several
// experiments concurrently should construct one AnalysisManager per
// goroutine, mirroring the original's single-experiment-per-manager model.
type AnalysisManager struct {
	doc      jsonlog.Document
	settings Settings
	logger   *log.Logger

	mechanismType analysistype.AnalysisType
	unit          string
	factor        float64

	data prepared
}

// New loads path as an experiment log, resolves its mechanism type, and
// runs the conditioning pipeline once. settings.StepTestDuration is reset
// to 0 (auto) regardless of what the caller passed in, matching the
// original manager's constructor.
func New(path string, settings Settings, logger *log.Logger) (*AnalysisManager, error) {
	doc, err := jsonlog.Load(path, logger)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	mechanismType, err := analysistype.FromName(doc.Test)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	settings.StepTestDuration = 0
	settings.Units = doc.Units
	settings.UnitsPerRotation = doc.UnitsPerRotation

	m := &AnalysisManager{
		doc:           doc,
		settings:      settings,
		logger:        logger,
		mechanismType: mechanismType,
		unit:          doc.Units,
		factor:        doc.UnitsPerRotation,
	}
	if err := m.prepareData(); err != nil {
		return nil, err
	}
	return m, nil
}

// Type reports the experiment's mechanism family.
func (m *AnalysisManager) Type() analysistype.AnalysisType {
	return m.mechanismType
}

// TrackWidth reports the derived track width, or nil for non-angular
// mechanisms.
func (m *AnalysisManager) TrackWidth() *float64 {
	return m.data.TrackWidth
}

// Unit and Factor report the unit system and scale factor currently in
// effect, whether sourced from the experiment JSON or a prior
// OverrideUnits call.
func (m *AnalysisManager) Unit() string    { return m.unit }
func (m *AnalysisManager) Factor() float64 { return m.factor }

func (m *AnalysisManager) prepareData() error {
	var (
		data prepared
		err  error
	)
	switch m.mechanismType {
	case analysistype.Drivetrain:
		data, err = prepareLinearDrivetrain(m.doc, &m.settings, m.factor)
	case analysistype.DrivetrainAngular:
		data, err = prepareAngular(m.doc, &m.settings, m.factor)
	default:
		data, err = prepareGeneral(m.doc, &m.settings, m.factor, m.unit)
	}
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	m.data = data
	return nil
}

// Calculate fits the feedforward model and synthesizes feedback gains for
// the direction named by m.settings.Dataset, over that direction's full
// filtered sequence — quasistatic and dynamic runs concatenated, since the
// slow quasistatic ramp is what identifies Ks/Kv and the step-voltage
// dynamic run is what identifies Ka. The (Kv, Ka) plant handed to the
// feedback stage is read through feedforward's named accessors rather than
// positional Beta indices, so Elevator/Arm's (Ks, Kg/Kcos, Kv, Ka) layout
// is never confused with Simple/Drivetrain's (Ks, Kv, Ka) — see DESIGN.md.
func (m *AnalysisManager) Calculate() (Gains, error) {
	ds, ok := m.data.Filtered[m.settings.Dataset]
	if !ok {
		return Gains{}, fmt.Errorf("analysis: no %q dataset for %s", m.settings.Dataset, m.mechanismType.Name)
	}

	ffResult, err := feedforward.Fit(dataset.Concat(ds.Quasistatic, ds.Dynamic), m.mechanismType)
	if err != nil {
		return Gains{}, fmt.Errorf("analysis: %w", err)
	}

	plant, err := plantGains(ffResult, m.mechanismType)
	if err != nil {
		return Gains{}, fmt.Errorf("analysis: %w", err)
	}

	preset, err := feedback.PresetByName(m.settings.PresetName)
	if err != nil {
		return Gains{}, fmt.Errorf("analysis: %w", err)
	}

	encoderFactor := 1.0
	if m.settings.ConvertGainsToEncTicks {
		encoderFactor = m.settings.Gearing * m.settings.CPR * m.factor
	}

	var fbGains feedback.Gains
	switch m.settings.FeedbackLoop {
	case VelocityLoop:
		fbGains, err = feedback.CalculateVelocityFeedbackGains(preset, m.settings.FeedbackMode, m.settings.LQR, plant, encoderFactor)
	default:
		fbGains, err = feedback.CalculatePositionFeedbackGains(preset, m.settings.FeedbackMode, m.settings.LQR, plant, encoderFactor)
	}
	if err != nil {
		return Gains{}, fmt.Errorf("analysis: %w", err)
	}

	return Gains{Feedforward: ffResult, Feedback: fbGains, TrackWidth: m.data.TrackWidth}, nil
}

func plantGains(r feedforward.Result, t analysistype.AnalysisType) (feedback.PlantGains, error) {
	switch t {
	case analysistype.Elevator:
		_, _, kv, ka := feedforward.KsKgKvKa(r)
		return feedback.PlantGains{Kv: kv, Ka: ka}, nil
	case analysistype.Arm:
		_, _, kv, ka := feedforward.KsKcosKvKa(r)
		return feedback.PlantGains{Kv: kv, Ka: ka}, nil
	case analysistype.Simple, analysistype.Drivetrain, analysistype.DrivetrainAngular:
		_, kv, ka := feedforward.KsKvKa(r)
		return feedback.PlantGains{Kv: kv, Ka: ka}, nil
	default:
		return feedback.PlantGains{}, fmt.Errorf("%s: %w", t.Name, analysistype.ErrUnknownAnalysisType)
	}
}

// OverrideUnits replaces the unit system and scale factor the experiment
// JSON carried and re-runs the conditioning pipeline against it.
func (m *AnalysisManager) OverrideUnits(unit string, unitsPerRotation float64) error {
	m.unit = unit
	m.factor = unitsPerRotation
	m.settings.Units = unit
	m.settings.UnitsPerRotation = unitsPerRotation
	return m.prepareData()
}

// ResetUnitsFromJSON restores the unit system and scale factor to what the
// experiment JSON originally specified and re-runs the conditioning
// pipeline.
func (m *AnalysisManager) ResetUnitsFromJSON() error {
	return m.OverrideUnits(m.doc.Units, m.doc.UnitsPerRotation)
}
