// Package resample converts the engine's native 32000Hz stereo output
// to any host target rate via a polyphase FIR, preserving monotonic
// timestamps and bypassing entirely when rates match. The
// polyphase-filter-bank structure is a design reference drawn from
// the retrieval pack's Opus resampler (thesyncim-gopus sFIR/sIIR state
// shape) — not imported, since no pack library exposes a bare
// sample-rate converter as a standalone component; the filter math
// itself is therefore necessarily hand-written (DESIGN.md).
package resample

import "math"

// Quality selects the polyphase filter's window length: FASTEST through
// BEST select a window length and polyphase filter coefficients.
type Quality int

const (
	QualityFastest Quality = iota
	QualityFast
	QualityGood
	QualityBest
)

func tapsForQuality(q Quality) int {
	switch q {
	case QualityFastest:
		return 8
	case QualityFast:
		return 16
	case QualityGood:
		return 32
	case QualityBest:
		return 64
	default:
		return 32
	}
}

const nativeRate = 32000

// Converter resamples interleaved stereo int32 (pre-clip headroom)
// frames from nativeRate to Converter's target rate.
type Converter struct {
	targetRate uint32
	bypass     bool

	taps   int
	coeffs []float64

	// phaseAcc/phaseStep track the fractional read position into the
	// input history in Q32, matching the phase-accumulator convention
	// used throughout this engine's fixed-point oscillators.
	phaseAcc  uint64
	phaseStep uint64

	historyL []float64
	historyR []float64
	histPos  int

	sampleCounter uint64 // monotonic input-domain timestamp
}

// NewConverter creates a Converter targeting rate Hz at the given
// quality. rate == nativeRate makes every call a pass-through.
func NewConverter(rate uint32, quality Quality) *Converter {
	c := &Converter{targetRate: rate, bypass: rate == nativeRate}
	if c.bypass {
		return c
	}
	c.taps = tapsForQuality(quality)
	c.coeffs = buildLowpassKernel(c.taps, float64(min32(rate, nativeRate))/2/float64(max32(rate, nativeRate)))
	c.phaseStep = (uint64(nativeRate) << 32) / uint64(rate)
	c.historyL = make([]float64, c.taps)
	c.historyR = make([]float64, c.taps)
	return c
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// buildLowpassKernel builds a windowed-sinc low-pass kernel with cutoff
// expressed in cycles per sample (a fraction of the sample rate, so 0.5
// is Nyquist).
func buildLowpassKernel(taps int, cutoff float64) []float64 {
	k := make([]float64, taps)
	center := float64(taps-1) / 2
	sum := 0.0
	for i := 0; i < taps; i++ {
		x := float64(i) - center
		var sinc float64
		if x == 0 {
			sinc = 2 * cutoff
		} else {
			sinc = sincf(2*cutoff*x) * 2 * cutoff
		}
		window := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(taps-1))
		k[i] = sinc * window
		sum += k[i]
	}
	if sum != 0 {
		for i := range k {
			k[i] /= sum
		}
	}
	return k
}

func sincf(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// Push feeds one native-rate stereo frame and returns zero or more
// resampled output frames (polyphase FIR consumes input faster or
// slower than it produces output depending on direction). Each output
// frame's interleaved samples are int32 with headroom for the caller to
// clip to the final output representation.
func (c *Converter) Push(l, r int32) [][2]int32 {
	c.sampleCounter++
	if c.bypass {
		return [][2]int32{{l, r}}
	}

	c.historyL[c.histPos] = float64(l)
	c.historyR[c.histPos] = float64(r)
	c.histPos = (c.histPos + 1) % c.taps

	var out [][2]int32
	for c.phaseAcc < (1 << 32) {
		out = append(out, c.interpolate())
		c.phaseAcc += c.phaseStep
	}
	c.phaseAcc -= 1 << 32
	return out
}

func (c *Converter) interpolate() [2]int32 {
	var accL, accR float64
	for i := 0; i < c.taps; i++ {
		idx := (c.histPos + i) % c.taps
		accL += c.historyL[idx] * c.coeffs[i]
		accR += c.historyR[idx] * c.coeffs[i]
	}
	return [2]int32{int32(accL), int32(accR)}
}

// TargetRate returns the configured output sample rate.
func (c *Converter) TargetRate() uint32 { return c.targetRate }
