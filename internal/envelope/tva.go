package envelope

import "github.com/rolandemu/mt32emu-go/internal/tables"

// TVAParams is the subset of a timbre partial's parameter block TVA
// needs, copied out of the decoded memory region rather than held as a
// live pointer: a Sysex write re-decodes and restarts instead of
// mutating a running envelope in place.
type TVAParams struct {
	// EnvTime[0..3] are ATTACK/P2/P3/P4 ramp times; EnvTime[4] is RELEASE time.
	EnvTime [5]uint8
	// EnvLevel[0..3] are the ATTACK/P2/P3/P4 target levels (0-255); P4's
	// level is also SUSTAIN's held level.
	EnvLevel [4]uint8

	BiasPoint uint8 // < 0x40: attenuate above pivot; >= 0x40: attenuate below
	BiasLevel uint8

	EnvTimeVeloSensitivity uint8 // 0-4
	EnvTimeKeyfollow       uint8 // 0-4

	TVALevel uint8
}

// TVA is the Time-Variant Amplifier envelope generator.
type TVA struct {
	tables *tables.Tables

	params TVAParams
	key    uint8
	velo   uint8

	phase   TVAPhase
	baseAmp uint8 // full-scale reference computed at Reset

	niceAmpRamp bool
}

// NewTVA creates a TVA bound to a shared Tables instance.
func NewTVA(t *tables.Tables) *TVA {
	return &TVA{tables: t}
}

// Phase returns the current envelope phase.
func (e *TVA) Phase() TVAPhase { return e.phase }

// Reset computes the base amplitude on Note-On from master volume, part
// volume, expression, rhythm level, bias-point subtraction, velocity
// subtraction, TVA level, and half the TVF resonance. All subtractions
// clamp at 0. A zero envTime[0] skips the ATTACK phase: the phase is set
// to P2 and the ramp heads for the level[0] target at the fastest
// increment. Returns the ramp's initial (target, increment).
func (e *TVA) Reset(params TVAParams, key, velocity, masterVolume, partVolume, expression, rhythmLevel, tvfResonance uint8, niceAmpRamp bool) (target uint32, increment uint8) {
	e.params = params
	e.key = key
	e.velo = velocity
	e.niceAmpRamp = niceAmpRamp

	base := 255
	base -= int(e.tables.VolumeToAmpSubtraction[clamp7(masterVolume)])
	base -= int(e.tables.VolumeToAmpSubtraction[clamp7(partVolume)])
	base -= int(e.tables.VolumeToAmpSubtraction[clamp7(expression)])
	base -= int(255 - int(rhythmLevel))
	base -= int(e.biasAttenuation(key))
	base -= int(e.tables.VolumeToAmpSubtraction[clamp7(velocity)])
	base -= int(params.TVALevel)
	base -= int(tvfResonance) / 2
	if base < 0 {
		base = 0
	}
	e.baseAmp = uint8(base)

	if params.EnvTime[0] == 0 {
		e.phase = TVAP2
		return e.scaledTarget(0), fastestIncrement(false)
	}

	e.phase = TVAAttack
	t := e.velocityAdjustedTime(params.EnvTime[0], velocity, params.EnvTimeVeloSensitivity)
	target = e.scaledTarget(0)
	return target, rampIncrement(t, false)
}

// biasAttenuation implements the two keyboard-position attenuation
// curves: biasPoint < 0x40 penalises keys above the pivot, biasPoint
// >= 0x40 penalises keys below it.
func (e *TVA) biasAttenuation(key uint8) uint8 {
	pivot := e.params.BiasPoint & 0x3F
	if e.params.BiasPoint < 0x40 {
		if key <= pivot {
			return 0
		}
		return subClamp(int(key-pivot)*int(e.params.BiasLevel), 0)
	}
	if key >= pivot {
		return 0
	}
	return subClamp(int(pivot-key)*int(e.params.BiasLevel), 0)
}

func (e *TVA) scaledTarget(levelIdx int) uint32 {
	var level uint8
	if levelIdx < len(e.params.EnvLevel) {
		level = e.params.EnvLevel[levelIdx]
	}
	scaled := uint32(e.baseAmp) * uint32(level) / 255
	return scaled << 24
}

// NextPhase advances the envelope state machine when the owning ramp's
// interrupt fires. canSustain reports whether the owning Poly is still
// eligible to hold in SUSTAIN (false once the note has been released).
// It returns the ramp's next (target, increment) and whether the
// envelope is now DEAD.
func (e *TVA) NextPhase(canSustain bool) (target uint32, increment uint8, dead bool) {
	switch e.phase {
	case TVAAttack:
		return e.enterLeveledPhase(TVAP2, 1)
	case TVAP2:
		return e.enterLeveledPhase(TVAP3, 2)
	case TVAP3:
		return e.enterLeveledPhase(TVAP4, 3)
	case TVAP4:
		e.phase = TVASustain
		if !canSustain {
			return e.startRelease()
		}
		// Hold at P4's level indefinitely: zero increment, no further interrupt.
		return e.scaledTarget(3), 0, false
	case TVASustain:
		if !canSustain {
			return e.startRelease()
		}
		return e.scaledTarget(3), 0, false
	case TVARelease:
		e.phase = TVADead
		return 0, 0, true
	default:
		e.phase = TVADead
		return 0, 0, true
	}
}

// enterLeveledPhase moves to the next ATTACK/P2/P3/P4 phase, applying the
// "all levels from here are zero" quirk and rewriting a zero
// target-delta to ±1 so an interrupt still fires.
func (e *TVA) enterLeveledPhase(next TVAPhase, levelIdx int) (target uint32, increment uint8, dead bool) {
	if e.params.EnvLevel[levelIdx] == 0 {
		e.phase = next
		return e.rampToZeroAndDie()
	}
	e.phase = next
	from := e.currentLevelIndexBefore(next)
	t := e.keyAdjustedTime(e.params.EnvTime[levelIdx], e.key, e.params.EnvTimeKeyfollow)
	target = e.scaledTarget(levelIdx)
	descending := target < e.scaledTarget(from)
	inc := rampIncrement(t, descending)
	target, inc = rewriteZeroDelta(target, e.scaledTarget(from), inc, descending)
	return target, inc, false
}

func (e *TVA) currentLevelIndexBefore(next TVAPhase) int {
	switch next {
	case TVAP2:
		return 0
	case TVAP3:
		return 1
	case TVAP4:
		return 2
	default:
		return 3
	}
}

func (e *TVA) rampToZeroAndDie() (uint32, uint8, bool) {
	e.phase = TVARelease
	return 0, rampIncrement(1, true), false
}

// startRelease begins the RELEASE phase with a forced-nonzero time so an
// interrupt always fires: increment derives from -envTime[4], forced to
// 1 when zero.
func (e *TVA) startRelease() (uint32, uint8, bool) {
	e.phase = TVARelease
	t := e.params.EnvTime[4]
	if t == 0 {
		t = 1
	}
	return 0, rampIncrement(t, true), false
}

// StartAbort begins a fast forced decay to 0, entering the RELEASE phase
// immediately, used when a Partial is stolen for voice allocation.
func (e *TVA) StartAbort() (target uint32, increment uint8) {
	e.phase = TVARelease
	return 0, rampIncrement(1, true)
}

// RecalcSustain recomputes the SUSTAIN target from new master volume,
// part volume and expression. The ramp time is fixed at table index 8
// and is not sized to the delta. The direction is judged against
// currentApprox, which equals the new target, so it comes out ascending
// unless nice-amp-ramp mode adopts rampDescendingNow instead. Nothing in
// this repository calls it.
func (e *TVA) RecalcSustain(masterVolume, partVolume, expression uint8, rampDescendingNow bool) (target uint32, increment uint8) {
	base := 255
	base -= int(e.tables.VolumeToAmpSubtraction[clamp7(masterVolume)])
	base -= int(e.tables.VolumeToAmpSubtraction[clamp7(partVolume)])
	base -= int(e.tables.VolumeToAmpSubtraction[clamp7(expression)])
	if base < 0 {
		base = 0
	}
	e.baseAmp = uint8(base)
	target = e.scaledTarget(3)

	descending := target < e.currentApprox()
	if e.niceAmpRamp && rampDescendingNow != descending {
		descending = rampDescendingNow
	}
	return target, rampIncrement(8, descending)
}

// currentApprox gives RecalcSustain a reference point without requiring a
// live ramp handle: the SUSTAIN target at the current baseAmp.
func (e *TVA) currentApprox() uint32 { return e.scaledTarget(3) }

func clamp7(v uint8) uint8 {
	if v > 127 {
		return 127
	}
	return v
}

// velocityAdjustedTime applies velocity sensitivity to the ATTACK ramp
// time: envTime -= (velocity - 64) >> (6 - envTimeVeloSensitivity),
// clamped to >= 1 when originally non-zero.
func (e *TVA) velocityAdjustedTime(envTime, velocity, sensitivity uint8) uint8 {
	if envTime == 0 {
		return 0
	}
	shift := 6 - int(sensitivity)
	if shift < 0 {
		shift = 0
	}
	delta := (int(velocity) - 64) >> uint(shift)
	t := int(envTime) - delta
	if t < 1 {
		t = 1
	}
	if t > 127 {
		t = 127
	}
	return uint8(t)
}

// keyAdjustedTime applies keyboard-position follow to a phase's ramp
// time: envTime -= (key - 60) >> (5 - envTimeKeyfollow).
func (e *TVA) keyAdjustedTime(envTime, key, keyfollow uint8) uint8 {
	shift := 5 - int(keyfollow)
	if shift < 0 {
		shift = 0
	}
	delta := (int(key) - 60) >> uint(shift)
	t := int(envTime) - delta
	if t < 0 {
		t = 0
	}
	if t > 127 {
		t = 127
	}
	return uint8(t)
}
