package analysis

import (
	"github.com/nasa-jpl/sysid-core/dataset"
	"github.com/nasa-jpl/sysid-core/feedback"
)

// FeedbackLoopType selects whether FeedbackAnalysis synthesizes a
// position-loop (Kp, Kd) or a velocity-loop (Kp, Kd=0) controller.
type FeedbackLoopType int

const (
	PositionLoop FeedbackLoopType = iota
	VelocityLoop
)

// Settings bundles the configuration the analysis pipeline consumes. Every
// field named in spec.md's Settings section is present, plus the unit
// fields (Units, UnitsPerRotation) that the original source keeps
// alongside settings even though they're sourced from the experiment JSON
// rather than user configuration.
type Settings struct {
	MotionThreshold   float64             `yaml:"motionThreshold" koanf:"motionThreshold" json:"motionThreshold,omitempty"`
	WindowSize        int                 `yaml:"windowSize" koanf:"windowSize" json:"windowSize,omitempty"`
	StepTestDuration  float64             `yaml:"stepTestDuration" koanf:"stepTestDuration" json:"stepTestDuration,omitempty"`
	VelocityThreshold float64             `yaml:"velocityThreshold" koanf:"velocityThreshold" json:"velocityThreshold,omitempty"`
	PresetName        string              `yaml:"preset" koanf:"preset" json:"preset,omitempty"`
	LQR               feedback.LQRWeights `yaml:"lqr" koanf:"lqr" json:"lqr,omitempty"`
	FeedbackMode      feedback.Mode       `yaml:"feedbackMode" koanf:"feedbackMode" json:"feedbackMode,omitempty"`
	FeedbackLoop      FeedbackLoopType    `yaml:"feedbackLoop" koanf:"feedbackLoop" json:"feedbackLoop,omitempty"`

	ConvertGainsToEncTicks bool    `yaml:"convertGainsToEncTicks" koanf:"convertGainsToEncTicks" json:"convertGainsToEncTicks,omitempty"`
	Gearing                float64 `yaml:"gearing" koanf:"gearing" json:"gearing,omitempty"`
	CPR                    float64 `yaml:"cpr" koanf:"cpr" json:"cpr,omitempty"`

	Dataset dataset.Direction `yaml:"dataset" koanf:"dataset" json:"dataset,omitempty"`

	// Units and UnitsPerRotation default from the experiment JSON at load
	// time (AnalysisManager.New); OverrideUnits/ResetUnitsFromJSON mutate
	// them in place.
	Units            string  `yaml:"-" koanf:"-" json:"-"`
	UnitsPerRotation float64 `yaml:"-" koanf:"-" json:"-"`
}

// DefaultSettings returns the zero-value-safe defaults the original source
// ships: the "default" preset (whose 20ms loop period comes from the preset
// table itself), a 5-sample median/difference window, and the Combined
// dataset selection.
func DefaultSettings() Settings {
	return Settings{
		MotionThreshold:   0.2,
		WindowSize:        5,
		VelocityThreshold: 0.2,
		PresetName:        "default",
		LQR:               feedback.LQRWeights{QPos: 0.01, QVel: 1.5, QEffort: 7},
		FeedbackMode:      feedback.PolePlacement,
		FeedbackLoop:      PositionLoop,
		Gearing:           1,
		CPR:               1,
		Dataset:           dataset.Combined,
	}
}
