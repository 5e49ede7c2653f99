// Package config loads optional synth-wide configuration from YAML,
// following the pattern the retrieval pack's ham-radio-rotator controller
// (doismellburning/samoyed) uses for its device configuration: a typed
// struct with yaml tags and documented defaults, decoded with
// gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DACMode selects the DAC input emulation quirk.
type DACMode string

const (
	DACModeNice        DACMode = "nice"
	DACModePure        DACMode = "pure"
	DACModeGeneration1 DACMode = "generation1"
	DACModeGeneration2 DACMode = "generation2"
)

// MIDIDelayMode selects when queued MIDI events become eligible.
type MIDIDelayMode string

const (
	MIDIDelayImmediate          MIDIDelayMode = "immediate"
	MIDIDelayShortMessagesOnly  MIDIDelayMode = "delay_short_messages_only"
	MIDIDelayAll                MIDIDelayMode = "delay_all"
)

// AnalogQuality selects the output-stage filter mode.
type AnalogQuality string

const (
	AnalogCoarse      AnalogQuality = "coarse"
	AnalogAccurate    AnalogQuality = "accurate"
	AnalogOversampled AnalogQuality = "oversampled"
)

// ResamplerQuality selects the polyphase filter length.
type ResamplerQuality string

const (
	ResampleFastest ResamplerQuality = "fastest"
	ResampleFast    ResamplerQuality = "fast"
	ResampleGood    ResamplerQuality = "good"
	ResampleBest    ResamplerQuality = "best"
)

// SynthConfig holds the options Synth.Open reads. Default supplies the
// documented defaults, and Load overlays a partial YAML document onto
// them. For a zero-value SynthConfig, Synth.Open substitutes the default
// PartialCount and TargetSampleRate and falls back to the default analog,
// resampler and MIDI-delay modes; the gains and boolean switches are used
// as given, so its output gain is 0.
type SynthConfig struct {
	OutputGain          float32          `yaml:"output_gain"`
	ReverbOutputGain    float32          `yaml:"reverb_output_gain"`
	ReverbEnabled       bool             `yaml:"reverb_enabled"`
	ReverbCompatibility string           `yaml:"reverb_compatibility"` // "mt32" | "cm32l"
	ReversedStereo      bool             `yaml:"reversed_stereo"`
	NiceAmpRamp         bool             `yaml:"nice_amp_ramp"`
	NicePanning         bool             `yaml:"nice_panning"`
	NicePartialMixing   bool             `yaml:"nice_partial_mixing"`
	DACMode             DACMode          `yaml:"dac_mode"`
	MIDIDelayMode       MIDIDelayMode    `yaml:"midi_delay_mode"`
	AnalogQuality       AnalogQuality    `yaml:"analog_quality"`
	ResamplerQuality    ResamplerQuality `yaml:"resampler_quality"`
	TargetSampleRate    uint32           `yaml:"target_sample_rate"`
	PartialCount        int              `yaml:"partial_count"`
}

// Default returns the configuration the engine uses when the caller
// passes no overrides: unity output gain, 32 partials, native
// 32000 Hz passthrough.
func Default() SynthConfig {
	return SynthConfig{
		OutputGain:          1.0,
		ReverbOutputGain:    1.0,
		ReverbEnabled:       true,
		ReverbCompatibility: "cm32l",
		NiceAmpRamp:         true,
		DACMode:             DACModeNice,
		MIDIDelayMode:       MIDIDelayImmediate,
		AnalogQuality:       AnalogAccurate,
		ResamplerQuality:    ResampleGood,
		TargetSampleRate:    32000,
		PartialCount:        32,
	}
}

// Load reads a YAML document from path and overlays it onto Default().
func Load(path string) (SynthConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
