package la32

import "github.com/rolandemu/mt32emu-go/internal/tables"

// FloatWaveGenerator is the IEEE-float renderer variant, used by
// higher-quality renderer configurations in place of WaveGenerator's
// integer path. It mirrors WaveGenerator's structure exactly — same
// fields, same control flow — substituting float64 math in the
// oscillator and amplitude stage so the only behavioral difference is
// rounding/precision, never the algorithm shape.
type FloatWaveGenerator struct {
	tables *tables.Tables

	mode Mode

	phase          uint32
	phaseIncrement uint32

	pulseWidth uint8
	resonance  uint8

	resPhase  uint32
	resActive bool
	resEnergy float64

	pcm       PCMSource
	pcmPosQ16 uint32
}

// NewFloatWaveGenerator creates a float-domain generator bound to a shared
// Tables instance.
func NewFloatWaveGenerator(t *tables.Tables) *FloatWaveGenerator {
	return &FloatWaveGenerator{tables: t}
}

// Reset mirrors WaveGenerator.Reset.
func (w *FloatWaveGenerator) Reset(mode Mode, pulseWidth, resonance uint8, pcm PCMSource) {
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

// SetPhaseIncrement mirrors WaveGenerator.SetPhaseIncrement.
func (w *FloatWaveGenerator) SetPhaseIncrement(freqQ16 uint32) {
	w.phaseIncrement = freqQ16
}

// NextSample mirrors WaveGenerator.NextSample using float64 intermediates.
func (w *FloatWaveGenerator) NextSample(amplitude, cutoff uint32) float32 {
	var raw float64
	if w.mode == ModePCM && w.pcm != nil {
		raw = float64(w.nextPCMSample())
	} else {
		raw = w.nextSynthSample(cutoff)
	}

	gain := float64(amplitude>>24) / 255.0
	frac := float64((amplitude>>16)&0xFF) / (255.0 * 255.0)
	scaled := raw*gain + raw*frac
	return clipf(scaled / 32768.0)
}

func (w *FloatWaveGenerator) nextSynthSample(cutoff uint32) float64 {
	prevPhase := w.phase
	w.phase += w.phaseIncrement

	idx := uint32(w.phase>>22) % tables.WaveTableSize
	sinVal := float64(w.tables.LogSin[idx])
	sqVal := float64(w.tables.LogSquare[idx])

	blendWeight := float64(w.pulseWidth)
	blended := (sqVal*blendWeight + sinVal*(127-blendWeight)) / 127

	shift := float64(cutoffAttenuationShift(cutoff))
	blended /= float64(int64(1) << uint(shift))

	if w.phase < prevPhase {
		w.resActive = true
		w.resPhase = 0
		w.resEnergy = float64(w.tables.Resonance[clampResonance(w.resonance)])
	}
	if w.resActive {
		resIdx := uint32(w.resPhase>>22) % tables.WaveTableSize
		resSample := float64(w.tables.LogSin[resIdx]) * w.resEnergy / 32768.0
		blended += resSample
		w.resPhase += w.phaseIncrement * 2
		w.resEnergy *= 253.0 / 256.0
		if w.resEnergy < 1 {
			w.resActive = false
		}
	}

	return blended
}

func (w *FloatWaveGenerator) nextPCMSample() int16 {
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
	w.pcmPosQ16 += w.phaseIncrement
	return sample
}

func clipf(v float64) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return float32(v)
}
