package envelope

import "github.com/rolandemu/mt32emu-go/internal/tables"

// TVFParams is TVF's slice of the decoded timbre parameters.
type TVFParams struct {
	EnvTime  [4]uint8 // ATTACK, P2, P3, P4(sustain)
	EnvLevel [4]uint8

	BaseCutoff uint8
	Keyfollow  uint8 // index into tables.KeyfollowFactor (0..16 => -4..+12)
	BiasPoint  uint8
	BiasLevel  uint8
	Resonance  uint8 // 0-30, static: consumed by the wave generator and by TVA
}

// TVF is the Time-Variant Filter cutoff envelope generator.
type TVF struct {
	tables *tables.Tables

	params TVFParams
	key    uint8

	phase   TVFPhase
	baseCut uint8
}

// NewTVF creates a TVF bound to a shared Tables instance.
func NewTVF(t *tables.Tables) *TVF {
	return &TVF{tables: t}
}

func (e *TVF) Phase() TVFPhase    { return e.phase }
func (e *TVF) Resonance() uint8   { return e.params.Resonance }

// Reset computes the base cutoff from timbre cutoff, key-follow, and
// bias, and returns the ramp's initial (target, increment).
func (e *TVF) Reset(params TVFParams, key uint8) (target uint32, increment uint8) {
	e.params = params
	e.key = key
	e.phase = TVFAttack

	base := int(params.BaseCutoff)
	kf := e.tables.KeyfollowFactor[clampIdx(int(params.Keyfollow), len(e.tables.KeyfollowFactor))]
	base += int(kf>>16) * (int(key) - 60) / 64
	base -= int(e.biasAttenuation(key))
	if base < 0 {
		base = 0
	}
	if base > 255 {
		base = 255
	}
	e.baseCut = uint8(base)

	target = e.scaledTarget(0)
	return target, rampIncrement(params.EnvTime[0], false)
}

func (e *TVF) biasAttenuation(key uint8) uint8 {
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

func (e *TVF) scaledTarget(idx int) uint32 {
	level := e.params.EnvLevel[idx]
	scaled := uint32(e.baseCut) * uint32(level) / 255
	return scaled << 24
}

// NextPhase advances the filter envelope on ramp interrupt. The final
// phase (P4/sustain) holds indefinitely: zero increment, no
// further interrupt, matching TVA's SUSTAIN hold.
func (e *TVF) NextPhase() (target uint32, increment uint8, finished bool) {
	switch e.phase {
	case TVFAttack:
		e.phase = TVFP2
		return e.advanceTo(1)
	case TVFP2:
		e.phase = TVFP3
		return e.advanceTo(2)
	case TVFP3:
		e.phase = TVFP4Sustain
		return e.advanceTo(3)
	default:
		return e.scaledTarget(3), 0, true
	}
}

func (e *TVF) advanceTo(idx int) (uint32, uint8, bool) {
	target := e.scaledTarget(idx)
	descending := target < e.scaledTarget(idx-1)
	return target, rampIncrement(e.params.EnvTime[idx], descending), idx == 3
}

func clampIdx(v, max int) int {
	if v < 0 {
		return 0
	}
	if v >= max {
		return max - 1
	}
	return v
}
