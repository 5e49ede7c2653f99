package la32

import "github.com/rolandemu/mt32emu-go/internal/tables"

// Mode selects between the LA32's two oscillator modes.
type Mode int

const (
	ModeSynth Mode = iota
	ModePCM
)

// PCMSource exposes one PCM ROM waveform fragment to the wave generator.
// Implementations decode the µ-law-encoded PCM ROM bytes ahead of time;
// Sample indexes into the decoded, linear PCM stream.
type PCMSource interface {
	Sample(index uint32) int16
	Length() uint32
	LoopStart() uint32
	Looping() bool
}

// WaveGenerator produces one signed 16-bit log-domain sample per step,
// blending square/saw plus optional PCM playback and resonance.
// Amplitude and cutoff are driven externally by the owning Partial's
// TVA/TVF ramps each sample; WaveGenerator itself holds no envelope
// state.
type WaveGenerator struct {
	tables *tables.Tables

	mode Mode

	phase          uint32
	phaseIncrement uint32

	pulseWidth uint8 // 0-127, synth mode only
	resonance  uint8 // 0-30, synth mode only

	// Resonance state: a decaying sine triggered once per wave period.
	resPhase  uint32
	resActive bool
	resEnergy int32

	pcm       PCMSource
	pcmPosQ16 uint32 // Q16 fixed-point sample index, PCM mode only
}

// NewWaveGenerator creates a generator bound to a shared Tables instance.
func NewWaveGenerator(t *tables.Tables) *WaveGenerator {
	return &WaveGenerator{tables: t}
}

// Reset clears oscillator phase state, called when a Partial (re)starts.
func (w *WaveGenerator) Reset(mode Mode, pulseWidth, resonance uint8, pcm PCMSource) {
	w.mode = mode
	w.pulseWidth = pulseWidth
	w.resonance = resonance
	w.pcm = pcm
	w.phase = 0
	w.pcmPosQ16 = 0
	w.resPhase = 0
	w.resActive = false
	w.resEnergy = 0
}

// SetPhaseIncrement sets the phase-step for the current sample. freqQ16
// is the phase increment already derived by TVP from its pitch via the
// shared frequency tables.
func (w *WaveGenerator) SetPhaseIncrement(freqQ16 uint32) {
	w.phaseIncrement = freqQ16
}

// NextSample advances the oscillator by one step and returns a signed
// 16-bit PCM sample, given the current amplitude (from the TVA ramp,
// 32-bit log domain) and cutoff (from the TVF ramp, 32-bit log domain).
func (w *WaveGenerator) NextSample(amplitude, cutoff uint32) int16 {
	var raw int32
	if w.mode == ModePCM && w.pcm != nil {
		raw = int32(w.nextPCMSample())
	} else {
		raw = int32(w.nextSynthSample(cutoff))
	}

	scaled := applyAmplitude(raw, amplitude)
	return clip16(scaled)
}

// nextSynthSample implements the synth-mode blend: square/saw hybrid
// selected by pulse width, cutoff attenuation, and periodic resonance.
func (w *WaveGenerator) nextSynthSample(cutoff uint32) int32 {
	prevPhase := w.phase
	w.phase += w.phaseIncrement

	idx := uint32(w.phase>>22) % tables.WaveTableSize
	sinVal := int32(w.tables.LogSin[idx])
	sqVal := int32(w.tables.LogSquare[idx])

	// Blend by pulse width: 0 = pure sine-derived saw/square edge, 127 =
	// pure square, matching the hardware's PWM-style blend.
	blendWeight := int32(w.pulseWidth)
	blended := (sqVal*blendWeight + sinVal*(127-blendWeight)) / 127

	// Cutoff attenuation: higher cutoff value (log domain, larger magnitude
	// closer to 0 meaning "more open") passes more signal through.
	attenShift := cutoffAttenuationShift(cutoff)
	blended >>= attenShift

	// Resonance: a decaying sine at the cutoff frequency, retriggered each
	// time the phase wraps past zero (one wave period).
	if w.phase < prevPhase { // phase counter wrapped: new period
		w.resActive = true
		w.resPhase = 0
		w.resEnergy = int32(w.tables.Resonance[clampResonance(w.resonance)])
	}
	if w.resActive {
		resIdx := uint32(w.resPhase>>22) % tables.WaveTableSize
		resSample := int32(w.tables.LogSin[resIdx]) * w.resEnergy / 32768
		blended += resSample
		w.resPhase += w.phaseIncrement * 2 // resonance rings near cutoff, roughly an octave up
		w.resEnergy = w.resEnergy * 253 / 256 // gentle decay each sample
		if w.resEnergy == 0 {
			w.resActive = false
		}
	}

	return blended
}

// nextPCMSample reads the PCM ROM window with nearest-neighbour
// interpolation and per-sample looping, using the source's LoopStart and
// Looping. No romid quirk is consulted, so the loop behaviour is the
// same for every ROM version.
func (w *WaveGenerator) nextPCMSample() int16 {
	idx := w.pcmPosQ16 >> 16
	length := w.pcm.Length()
	if length == 0 {
		return 0
	}
	if idx >= length {
		if w.pcm.Looping() {
			idx = w.pcm.LoopStart() + (idx-length)%max1(length-w.pcm.LoopStart())
			w.pcmPosQ16 = idx << 16
		} else {
			return 0
		}
	}
	sample := w.pcm.Sample(idx)
	w.pcmPosQ16 += w.phaseIncrement // phaseIncrement is already a Q16 sample-index step for PCM mode
	return sample
}

func max1(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}

// cutoffAttenuationShift maps the 32-bit log-domain cutoff ramp value to a
// small integer right-shift: a fully open filter (cutoff ramp at its
// maximum) applies no attenuation, a closed filter shifts hard.
func cutoffAttenuationShift(cutoff uint32) uint {
	// cutoff is a 32-bit log-domain value; its top 3 bits select 0-7 extra
	// bits of attenuation.
	return uint(7 - (cutoff >> 29))
}

func clampResonance(r uint8) uint8 {
	if int(r) >= len(tables.Shared().Resonance) {
		return uint8(len(tables.Shared().Resonance) - 1)
	}
	return r
}

// applyAmplitude scales a raw log-domain sample by the 32-bit amplitude
// ramp value, exponentiating from log domain to linear.
func applyAmplitude(raw int32, amplitude uint32) int32 {
	// amplitude's top byte selects a coarse linear gain (0-255); the lower
	// 24 bits provide sub-step smoothing folded in as an 8-bit fraction.
	gain := amplitude >> 24
	frac := (amplitude >> 16) & 0xFF
	scaled := raw * int32(gain) / 255
	fine := raw * int32(frac) / (255 * 255)
	return scaled + fine
}

func clip16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
