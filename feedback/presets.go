package feedback

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v2"
)

//go:embed presets.yaml
var presetsYAML []byte

// Preset carries the loop timing and actuator limits for one controller
// characterization: how fast the control loop runs, how much control
// effort it can command, and how delayed its encoder feedback is.
type Preset struct {
	Period           time.Duration
	MaxControlEffort float64
	EncoderDelay     time.Duration
}

type rawPreset struct {
	Period           string  `yaml:"period"`
	MaxControlEffort float64 `yaml:"maxControlEffort"`
	EncoderDelay     string  `yaml:"encoderDelay"`
}

var presets map[string]Preset

func init() {
	raw := map[string]rawPreset{}
	if err := yaml.Unmarshal(presetsYAML, &raw); err != nil {
		panic(fmt.Errorf("feedback: malformed embedded presets.yaml: %w", err))
	}

	presets = make(map[string]Preset, len(raw))
	for name, rp := range raw {
		period, err := time.ParseDuration(rp.Period)
		if err != nil {
			panic(fmt.Errorf("feedback: preset %q: %w", name, err))
		}
		delay, err := time.ParseDuration(rp.EncoderDelay)
		if err != nil {
			panic(fmt.Errorf("feedback: preset %q: %w", name, err))
		}
		presets[name] = Preset{Period: period, MaxControlEffort: rp.MaxControlEffort, EncoderDelay: delay}
	}
}

// PresetByName resolves a built-in preset by name ("default", "talon",
// "sparkMaxBrushless", "sparkMaxBrushed").
func PresetByName(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%s: %w", name, ErrUnknownPreset)
	}
	return p, nil
}
