package voice

import (
	"github.com/rolandemu/mt32emu-go/internal/envelope"
	"github.com/rolandemu/mt32emu-go/internal/la32"
	"github.com/rolandemu/mt32emu-go/internal/tables"
)

// PartialState is the Partial lifecycle: STARTED runs until its TVA
// reaches DEAD, at which point it's released back to the free list.
type PartialState int

const (
	PartialFree PartialState = iota
	PartialStarted
	PartialDead
)

// PartialParams is the decoded subset of one timbre partial's memory
// record a Partial needs to start. The caller passes an already-decoded
// snapshot at Start time rather than handing the Partial a live pointer
// into timbre memory; a memory write re-decodes and re-starts instead of
// mutating a running voice in place.
type PartialParams struct {
	TVA envelope.TVAParams
	TVF envelope.TVFParams
	TVP envelope.TVPParams

	Mode       la32.Mode
	PulseWidth uint8
	PCM        la32.PCMSource // nil in synth mode

	Pan uint8 // index into tables.Pan

	// StructurePosition is this partial's slot (0-3) within its timbre's
	// up-to-4-partial structure; PairIndex names its ring-mod/mix partner
	// slot, or -1 if unpaired.
	StructurePosition int
	PairIndex         int
}

// Partial is one voice of the polyphonic LA32 chip. Never moved after
// Start; PartialManager hands out PartialHandles rather than pointers so
// callers surviving a steal can detect it via the generation counter.
type Partial struct {
	state PartialState

	owner PolyHandle

	structurePos int // this partial's slot (0-3) within its timbre structure
	pairIndex    int // partner's structure slot, -1 if unpaired
	pair         PartialHandle

	// aborting marks a partial mid-decay after being stolen: it keeps
	// ticking its abort ramp down to silence on the old note, and once it
	// reaches DEAD, pending (if set) takes over instead of returning the
	// slot to the free list.
	aborting bool
	pending  *pendingStart

	tva *envelope.TVA
	tvf *envelope.TVF
	tvp *envelope.TVP

	ampRamp    *la32.Ramp
	cutoffRamp *la32.Ramp
	wave       *la32.WaveGenerator

	pan uint8

	key      uint8
	velocity uint8

	canSustain bool
}

// pendingStart holds a deferred Start call for a partial that's still
// ringing down from being stolen; queueRestart arms it and Tick applies
// it the instant the abort ramp reaches DEAD.
type pendingStart struct {
	owner        PolyHandle
	key          uint8
	velocity     uint8
	params       PartialParams
	masterVolume uint8
	partVolume   uint8
	expression   uint8
	rhythmLevel  uint8
	niceAmpRamp  bool
	pitchBendQ16 int32
}

// newPartial allocates a Partial's owned sub-objects once; the pool
// reuses this struct across many notes via start(), never reallocating.
func newPartial(t *tables.Tables, sampleRate uint32) *Partial {
	return &Partial{
		tva:        envelope.NewTVA(t),
		tvf:        envelope.NewTVF(t),
		tvp:        envelope.NewTVP(t, sampleRate, 0),
		ampRamp:    la32.NewRamp(t),
		cutoffRamp: la32.NewRamp(t),
		wave:       la32.NewWaveGenerator(t),
	}
}

// start begins this partial sounding for owner at (key, velocity) with
// the given decoded params and part-level mix inputs.
func (p *Partial) start(owner PolyHandle, key, velocity uint8, params PartialParams, masterVolume, partVolume, expression, rhythmLevel uint8, niceAmpRamp bool, pitchBendQ16 int32) {
	p.state = PartialStarted
	p.owner = owner
	p.structurePos = params.StructurePosition
	p.pairIndex = params.PairIndex
	p.pair = NoPartial
	p.aborting = false
	p.pending = nil
	p.key = key
	p.velocity = velocity
	p.pan = params.Pan
	p.canSustain = true

	tvfTarget, tvfInc := p.tvf.Reset(params.TVF, key)
	p.cutoffRamp.Reset()
	p.cutoffRamp.StartRamp(tvfTarget, tvfInc)

	tvaTarget, tvaInc := p.tva.Reset(params.TVA, key, velocity, masterVolume, partVolume, expression, rhythmLevel, p.tvf.Resonance(), niceAmpRamp)
	p.ampRamp.Reset()
	p.ampRamp.StartRamp(tvaTarget, tvaInc)

	p.tvp.Reset(params.TVP, key, pitchBendQ16)
	p.wave.Reset(params.Mode, params.PulseWidth, p.tvf.Resonance(), params.PCM)
}

// Release marks this partial's owning note as no longer able to
// sustain; called on Note-Off / pedal lift.
func (p *Partial) Release() { p.canSustain = false }

// Abort forces a fast decay to silence via the TVA's own release phase,
// used when this partial is stolen by a higher-priority allocation or
// cut by All-Sounds-Off. A stolen partial keeps ringing down on its old
// note; see queueRestart.
func (p *Partial) Abort() {
	target, inc := p.tva.StartAbort()
	p.ampRamp.StartRamp(target, inc)
	p.canSustain = false
	p.aborting = true
}

// queueRestart arms a new note to begin the instant this partial's
// in-flight abort ramp reaches DEAD, instead of returning the slot to
// the free list and restarting it mid-ramp. Used when a stolen slot is
// claimed by a new Note-On before its old voice has finished ringing
// down.
func (p *Partial) queueRestart(n pendingStart) { p.pending = &n }

// State reports this partial's lifecycle state.
func (p *Partial) State() PartialState { return p.state }

// Owner returns the weak handle of the Poly this partial belongs to.
func (p *Partial) Owner() PolyHandle { return p.owner }

// Tick advances this partial by one sample, returning its signed 16-bit
// contribution. After advancing both ramps, a ramp that just reached its
// target raises an interrupt; the next envelope phase is fetched and
// restarted, or, for the amp ramp, the partial dies. Returns 0 once DEAD.
func (p *Partial) Tick() int16 {
	if p.state != PartialStarted {
		return 0
	}

	amp := p.ampRamp.NextValue()
	cutoff := p.cutoffRamp.NextValue()

	if p.ampRamp.CheckInterrupt() {
		target, inc, dead := p.tva.NextPhase(p.canSustain)
		if dead {
			if p.pending != nil {
				n := *p.pending
				p.start(n.owner, n.key, n.velocity, n.params, n.masterVolume, n.partVolume, n.expression, n.rhythmLevel, n.niceAmpRamp, n.pitchBendQ16)
			} else {
				p.state = PartialDead
			}
		} else {
			p.ampRamp.StartRamp(target, inc)
		}
	}
	if p.cutoffRamp.CheckInterrupt() {
		target, inc, _ := p.tvf.NextPhase()
		p.cutoffRamp.StartRamp(target, inc)
	}

	phaseInc := p.tvp.NextPitch()
	p.wave.SetPhaseIncrement(phaseInc)

	return p.wave.NextSample(amp, cutoff)
}

// Pan returns this partial's configured stereo pan index.
func (p *Partial) Pan() uint8 { return p.pan }

func (p *Partial) free() {
	p.state = PartialFree
	p.aborting = false
	p.pending = nil
	p.owner = NoPoly
}
