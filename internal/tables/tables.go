// Package tables holds every precomputed lookup table the LA32 emulation
// needs, built once into a single immutable context. Nothing here is
// safe to mutate after New() returns; callers share one *Tables across
// every Partial.
package tables

import "math"

// RampStepCount is the number of distinct step magnitudes a ramp increment
// byte's low 7 bits can select.
const RampStepCount = 128

// WaveTableSize is the phase resolution of the log-domain sine/square
// tables consumed by the wave generator.
const WaveTableSize = 1024

// PanSteps is the number of discrete MT-32 pan positions (0=full left,
// 14=full right, 7=center).
const PanSteps = 15

// Tables is the immutable lookup-table context built once at Open.
type Tables struct {
	// RampIncrement[i] is the 24-bit signed per-sample step magnitude a
	// ramp with increment-byte low bits == i advances current by.
	// Index 0 is not used directly by hardware (reserved/fastest), higher
	// indices select progressively slower (smaller-magnitude) ramps.
	RampIncrement [RampStepCount]int32

	// LogTimeTable converts an envelope "time" parameter (0-127, after
	// key/velocity adjustment) into a raw 8-bit hardware value. The last
	// ~22 entries saturate at the literal value 128 which, interpreted as
	// a signed 8-bit quantity, reads back as -128 — a firmware quirk
	// reproduced bit-for-bit rather than clamped away.
	LogTimeTable [RampStepCount]int8

	// LogSin and LogSquare are log-domain waveform tables indexed by the
	// top bits of the LA32 phase accumulator.
	LogSin    [WaveTableSize]int16
	LogSquare [WaveTableSize]int16

	// VolumeToAmpSubtraction[v] converts a 0-127 volume/expression/velocity
	// value into a log-domain amplitude subtraction.
	VolumeToAmpSubtraction [RampStepCount]uint8

	// KeyToPitch[k] is the linear Q16 phase-step multiplier 2^((k-69)/12)
	// for MIDI key k relative to A4=69 (65536 at key 69), used by
	// TVP to derive a base pitch from key + coarse/fine tune.
	KeyToPitch [128]int32

	// FineCents[i] is a sub-semitone interpolation table (0..255 => 0..~100
	// cents) combined multiplicatively with KeyToPitch for fine tuning and
	// pitch-bend.
	FineCents [256]int32

	// Resonance[r] is a decaying-sine amplitude table indexed by the
	// timbre's resonance parameter (0-30), consumed by the wave generator
	// to add a resonance peak at the cutoff frequency each wave period.
	Resonance [31]int16

	// Pan[p][0]=left gain, Pan[p][1]=right gain, Q8 fixed point (0-256).
	Pan [PanSteps][2]uint16

	// KeyfollowFactor[kf] is the per-semitone cutoff/amplitude keyfollow
	// multiplier for keyfollow settings -4..+12 stored as index 0..16.
	KeyfollowFactor [17]int32
}

var shared = New()

// Shared returns the package-level singleton Tables instance. Building the
// tables is pure and deterministic, so sharing one instance across every
// open Synth is safe and avoids repeating the (modest) construction cost.
func Shared() *Tables { return shared }

// New builds a fresh Tables from scratch. Kept exported (rather than only
// exposing Shared) so tests can construct independent instances.
func New() *Tables {
	t := &Tables{}
	t.buildRampIncrement()
	t.buildLogTimeTable()
	t.buildWaveTables()
	t.buildVolumeToAmpSubtraction()
	t.buildPitchTables()
	t.buildResonance()
	t.buildPan()
	t.buildKeyfollow()
	return t
}

// buildRampIncrement reproduces the LA32 ramp generator's logarithmic time
// curve: step magnitude halves roughly every 8 table entries, giving a
// smooth envelope-time range from "a few samples" to "many seconds".
func (t *Tables) buildRampIncrement() {
	const maxStep = 1 << 23 // largest 24-bit-signed magnitude the ramp supports
	for i := 0; i < RampStepCount; i++ {
		// Exponential decay curve: step(i) = maxStep * 2^(-i/8), floored at 1
		// so every non-zero increment eventually produces an interrupt.
		exp := -float64(i) / 8.0
		step := int64(math.Round(float64(maxStep) * math.Exp2(exp)))
		if step < 1 {
			step = 1
		}
		if step > maxStep {
			step = maxStep
		}
		t.RampIncrement[i] = int32(step)
	}
}

// buildLogTimeTable builds the TVA/TVF envelope-time-to-hardware-value
// table, including the saturated tail.
func (t *Tables) buildLogTimeTable() {
	const saturateFrom = RampStepCount - 22 // last 22 entries saturate
	for i := 0; i < RampStepCount; i++ {
		if i >= saturateFrom {
			// Raw hardware value 128 stored in an int8 wraps to -128; the
			// firmware reproduces this wrap rather than clamping it away.
			t.LogTimeTable[i] = int8(uint8(128))
			continue
		}
		v := int(math.Round(float64(i) * float64(127) / float64(saturateFrom-1)))
		if v > 127 {
			v = 127
		}
		t.LogTimeTable[i] = int8(v)
	}
}

// buildWaveTables builds the log-domain sine and square tables the wave
// generator blends by pulse width.
func (t *Tables) buildWaveTables() {
	for i := 0; i < WaveTableSize; i++ {
		phase := 2 * math.Pi * float64(i) / float64(WaveTableSize)
		t.LogSin[i] = int16(math.Round(math.Sin(phase) * 32767))
		if i < WaveTableSize/2 {
			t.LogSquare[i] = 32767
		} else {
			t.LogSquare[i] = -32768
		}
	}
}

// buildVolumeToAmpSubtraction builds the log-domain attenuation curve
// used for master/part volume, expression, and velocity subtraction
// into the TVA base amplitude.
func (t *Tables) buildVolumeToAmpSubtraction() {
	for v := 0; v < RampStepCount; v++ {
		if v == 0 {
			t.VolumeToAmpSubtraction[v] = 255
			continue
		}
		// -log2 curve: full volume (127) subtracts 0, low volume subtracts
		// up to ~255 (clamped), matching a logarithmic loudness taper.
		ratio := float64(v) / float64(RampStepCount-1)
		sub := -20 * math.Log2(ratio)
		if sub < 0 {
			sub = 0
		}
		if sub > 255 {
			sub = 255
		}
		t.VolumeToAmpSubtraction[v] = uint8(math.Round(sub))
	}
}

// buildPitchTables builds the per-key and fine-tune pitch multiplier
// tables TVP uses to derive phase-increment from a MIDI key and cents
// offset.
func (t *Tables) buildPitchTables() {
	const a4 = 69
	for k := 0; k < 128; k++ {
		semitones := float64(k - a4)
		// Q16 fixed-point frequency ratio relative to A4, 2^(semitones/12).
		ratio := math.Exp2(semitones / 12.0)
		t.KeyToPitch[k] = int32(math.Round(ratio * 65536))
	}
	for c := 0; c < 256; c++ {
		cents := float64(c) * (100.0 / 256.0)
		ratio := math.Exp2(cents / 1200.0)
		t.FineCents[c] = int32(math.Round(ratio * 65536))
	}
}

// buildResonance builds the decaying-sine resonance amplitude table the
// wave generator adds at the cutoff frequency each wave period.
func (t *Tables) buildResonance() {
	for r := 0; r < len(t.Resonance); r++ {
		// Resonance peak grows roughly quadratically with the parameter,
		// capped so it never overwhelms the fundamental.
		amp := float64(r*r) / float64((len(t.Resonance)-1)*(len(t.Resonance)-1)) * 16384
		t.Resonance[r] = int16(math.Round(amp))
	}
}

// buildPan builds the constant-power-ish left/right gain table for the 15
// MT-32 pan positions (0=left .. 7=center .. 14=right).
func (t *Tables) buildPan() {
	const center = (PanSteps - 1) / 2
	for p := 0; p < PanSteps; p++ {
		frac := float64(p) / float64(PanSteps-1) // 0..1
		angle := frac * math.Pi / 2
		left := math.Cos(angle)
		right := math.Sin(angle)
		t.Pan[p][0] = uint16(math.Round(left * 256))
		t.Pan[p][1] = uint16(math.Round(right * 256))
	}
	_ = center
}

// buildKeyfollow builds the cutoff/amplitude keyfollow multiplier table
// for settings -4 (index 0) through +12 (index 16), where +10 tracks the
// keyboard 1:1 in semitone space.
func (t *Tables) buildKeyfollow() {
	for i := range t.KeyfollowFactor {
		setting := i - 4 // -4..+12
		factor := float64(setting) / 10.0
		t.KeyfollowFactor[i] = int32(math.Round(factor * 65536))
	}
}

// PitchToPhaseIncrement converts a Q16 frequency ratio (relative to the
// LA32 oscillator's native 1x reference) into a 32-bit phase-increment for
// WaveGenerator.SetPhaseIncrement, scaled for sampleRate. Grounded on the
// teacher's apu/fixed_point.go phase-increment technique: freq * 2^32 /
// sampleRate, done in 64-bit to avoid overflow.
func PitchToPhaseIncrement(ratioQ16 int32, sampleRate uint32) uint32 {
	if ratioQ16 < 0 {
		ratioQ16 = 0
	}
	const referenceHz = 261.6255653005986 // middle C, LA32's 1x reference tone
	freq := referenceHz * float64(ratioQ16) / 65536.0
	inc := freq * 4294967296.0 / float64(sampleRate)
	if inc < 0 {
		return 0
	}
	if inc > 4294967295 {
		return 4294967295
	}
	return uint32(inc)
}
