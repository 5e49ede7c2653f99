package envelope

import (
	"math/rand"

	"github.com/rolandemu/mt32emu-go/internal/tables"
)

// TVPParams is TVP's slice of the decoded timbre/patch parameters.
type TVPParams struct {
	CoarseTune uint8 // semitones, 0x40 == no shift
	FineTune   uint8 // cents, 0x40 == no shift

	Keyfollow uint8 // index into tables.KeyfollowFactor

	PitchEnvTime  [4]uint8
	PitchEnvLevel [4]int8 // signed cents-ish offsets, 0x40-biased by caller

	LFORate  uint8
	LFODepth uint8
}

const defaultJitterSeed int64 = 0x4D543332 // "MT32" — nonzero default

// TVP is the Time-Variant Pitch envelope generator.
type TVP struct {
	tables *tables.Tables

	params TVPParams
	key    uint8
	sampleRate uint32

	pitchBendQ16 int32 // additional Q16 ratio from the MIDI pitch wheel

	envStage   int
	envCurrent int32 // Q16 cents-ish offset, linearly interpolated
	envStep    int32
	envTarget  int32
	envTicks   int

	lfoPhase uint32
	lfoStep  uint32

	rng *rand.Rand
}

// NewTVP creates a TVP bound to a shared Tables instance. Pass 0 for seed
// to use the documented nonzero default.
func NewTVP(t *tables.Tables, sampleRate uint32, seed int64) *TVP {
	if seed == 0 {
		seed = defaultJitterSeed
	}
	return &TVP{
		tables:     t,
		sampleRate: sampleRate,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Reset starts a new pitch envelope on Note-On: base pitch, key-follow,
// a 4-stage pitch envelope, LFO vibrato, and an MCU-timer jitter model
// all feed into the per-sample phase increment.
func (e *TVP) Reset(params TVPParams, key uint8, pitchBendQ16 int32) {
	e.params = params
	e.key = key
	e.pitchBendQ16 = pitchBendQ16
	e.envStage = 0
	e.envCurrent = 0
	e.lfoPhase = 0
	e.lfoStep = uint32(uint32(params.LFORate) * (1 << 24) / 128)
	e.beginStage(0)
}

func (e *TVP) beginStage(stage int) {
	if stage >= len(e.params.PitchEnvLevel) {
		e.envStep = 0
		return
	}
	e.envTarget = int32(e.params.PitchEnvLevel[stage]) * 256 // Q16-ish cents scale
	ticks := int(e.params.PitchEnvTime[stage])
	if ticks == 0 {
		ticks = 1
	}
	e.envTicks = ticks * 64 // a stage lasts a handful of samples per tick unit
	e.envStep = (e.envTarget - e.envCurrent) / int32(e.envTicks)
}

// NextPitch advances pitch-envelope, LFO, and jitter state by one sample
// and returns the resulting phase-increment, ready for
// la32.WaveGenerator.SetPhaseIncrement / PCM position stepping.
func (e *TVP) NextPitch() uint32 {
	e.stepEnvelope()
	e.stepLFO()

	keyRatio := e.tables.KeyToPitch[clampIdx(int(e.key), 128)]
	coarse := e.tables.KeyToPitch[clampIdx(int(e.params.CoarseTune)-0x40+69, 128)]
	fineSteps := (int(e.params.FineTune) - 0x40) * 2
	var fine int32
	if fineSteps >= 0 {
		fine = e.tables.FineCents[clampIdx(fineSteps, 256)]
	} else {
		fine = int32((int64(1) << 32) / int64(e.tables.FineCents[clampIdx(-fineSteps, 256)]))
	}
	kf := e.tables.KeyfollowFactor[clampIdx(int(e.params.Keyfollow), len(e.tables.KeyfollowFactor))]

	ratioQ16 := mulQ16(keyRatio, coarse)
	ratioQ16 = mulQ16(ratioQ16, fine)
	ratioQ16 = mulQ16(ratioQ16, 65536+mulQ16(kf, envToRatioDelta(e.envCurrent)))

	if e.pitchBendQ16 != 0 {
		ratioQ16 = mulQ16(ratioQ16, 65536+e.pitchBendQ16)
	}

	lfoOffset := e.lfoValue()
	ratioQ16 = mulQ16(ratioQ16, 65536+lfoOffset)

	jitter := e.jitterOffset()
	ratioQ16 = mulQ16(ratioQ16, 65536+jitter)

	return tables.PitchToPhaseIncrement(ratioQ16, e.sampleRate)
}

func (e *TVP) stepEnvelope() {
	if e.envStage >= len(e.params.PitchEnvLevel) {
		return
	}
	e.envCurrent += e.envStep
	e.envTicks--
	if e.envTicks <= 0 {
		e.envCurrent = e.envTarget
		e.envStage++
		if e.envStage < len(e.params.PitchEnvLevel) {
			e.beginStage(e.envStage)
		}
	}
}

func (e *TVP) stepLFO() {
	e.lfoPhase += e.lfoStep
}

// lfoValue returns a Q16 ratio delta from the LFO, scaled by depth.
func (e *TVP) lfoValue() int32 {
	if e.params.LFODepth == 0 {
		return 0
	}
	idx := uint32(e.lfoPhase>>22) % tables.WaveTableSize
	s := int32(e.tables.LogSin[idx])
	return s * int32(e.params.LFODepth) / 32768 * 16 // small fraction of a semitone at max depth
}

// jitterOffset returns a small uniform random Q16 delta approximating the
// MCU timer's sampling jitter.
func (e *TVP) jitterOffset() int32 {
	const maxJitter = 8 // tiny, sub-cent-scale offset
	return int32(e.rng.Intn(2*maxJitter+1) - maxJitter)
}

func envToRatioDelta(envCurrentQ16ish int32) int32 {
	// Convert the pitch envelope's cents-ish accumulator into a Q16 ratio
	// delta via the small-angle approximation ratio ≈ 1 + cents/1200*ln2,
	// adequate for the envelope's modest range.
	const lnFactor = 0.000577622650466621 // ln(2)/1200
	return int32(float64(envCurrentQ16ish) * lnFactor)
}

func mulQ16(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> 16)
}
