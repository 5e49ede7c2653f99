package voice

import "github.com/rolandemu/mt32emu-go/internal/tables"

// PartialManager owns the fixed pool of LA32 voices (typically 32 on an
// MT-32) and implements the voice-stealing priority policy that decides
// which existing voice gives way when a new note needs more partials
// than are free.
type PartialManager struct {
	partials   []*Partial
	generation []uint16
	free       []uint16
}

// NewPartialManager creates a pool of size capacity, pre-constructing
// every Partial's owned sub-objects so Allocate never allocates.
func NewPartialManager(t *tables.Tables, sampleRate uint32, capacity int) *PartialManager {
	m := &PartialManager{
		partials:   make([]*Partial, capacity),
		generation: make([]uint16, capacity),
	}
	for i := 0; i < capacity; i++ {
		m.partials[i] = newPartial(t, sampleRate)
		m.generation[i] = 1
		m.free = append(m.free, uint16(i))
	}
	return m
}

// Capacity returns the pool size.
func (m *PartialManager) Capacity() int { return len(m.partials) }

// Get returns the live Partial for h, or nil if stale.
func (m *PartialManager) Get(h PartialHandle) *Partial {
	if !h.Valid() || int(h.Index) >= len(m.partials) {
		return nil
	}
	if m.generation[h.Index] != h.Generation {
		return nil
	}
	return m.partials[h.Index]
}

// ActiveCount returns how many partials are not PartialFree.
func (m *PartialManager) ActiveCount() int {
	n := 0
	for _, p := range m.partials {
		if p.state != PartialFree {
			n++
		}
	}
	return n
}

// States returns one PartialState per pool slot.
func (m *PartialManager) States() []PartialState {
	out := make([]PartialState, len(m.partials))
	for i, p := range m.partials {
		out[i] = p.state
	}
	return out
}

// ReapDead frees any Partial whose TVA has reached DEAD, invoking
// onFreed(owner) so the caller (Part/Synth) can update the owning
// Poly's partial count and possibly retire it to INACTIVE.
func (m *PartialManager) ReapDead(onFreed func(owner PolyHandle, slot int)) {
	for i, p := range m.partials {
		if p.state == PartialDead {
			owner := p.owner
			p.free()
			m.generation[i]++
			if m.generation[i] == 0 {
				m.generation[i] = 1
			}
			m.free = append(m.free, uint16(i))
			if onFreed != nil {
				onFreed(owner, i)
			}
		}
	}
}

// Tick advances every started partial by one sample and returns the sum
// of their signed contributions (callers needing per-partial panning
// should use TickAll instead; Tick here is the simple mono-sum path
// used by tests).
func (m *PartialManager) Tick() int32 {
	var sum int32
	for _, p := range m.partials {
		sum += int32(p.Tick())
	}
	return sum
}

// StereoContribution is one partial's (or ring-modulated partial pair's)
// panned output for one sample.
type StereoContribution struct {
	Left, Right int32
}

// ringModulate combines two partials sharing a structure pair into a
// single sample, the way a pair wired for ring modulation multiplies
// rather than sums: two signed 16-bit streams multiply into a 32-bit
// product, then shift back down into 16-bit range.
func ringModulate(a, b int32) int32 {
	return (a * b) >> 15
}

// LinkPairs resolves each handle's configured pair partner (by
// structure slot) against the rest of handles, the partials started
// together for one Note-On. Unpaired partials (PairIndex == -1, or a
// partner not present in handles) are left with pair == NoPartial and
// mix independently in TickAll.
func (m *PartialManager) LinkPairs(handles []PartialHandle) {
	bySlot := make(map[int]PartialHandle, len(handles))
	for _, h := range handles {
		if p := m.Get(h); p != nil {
			bySlot[p.structurePos] = h
		}
	}
	for _, h := range handles {
		p := m.Get(h)
		if p == nil || p.pairIndex < 0 {
			continue
		}
		if partner, ok := bySlot[p.pairIndex]; ok {
			p.pair = partner
		}
	}
}

// TickAll advances every started partial by one sample and returns each
// one's stereo-panned contribution, combining ring-modulated pairs into
// a single entry. Every partial's Tick runs regardless of pairing so its
// envelopes and phase always advance; only the lower-structure-slot
// partner of a pair emits output, folding its partner's raw sample in
// via ringModulate so the pair isn't double-counted.
func (m *PartialManager) TickAll(t *tables.Tables) []StereoContribution {
	raw := make([]int32, len(m.partials))
	for i, p := range m.partials {
		if p.state == PartialStarted {
			raw[i] = int32(p.Tick())
		}
	}

	out := make([]StereoContribution, 0, len(m.partials))
	for i, p := range m.partials {
		if p.state != PartialStarted {
			continue
		}
		if p.pair.Valid() {
			partner := m.Get(p.pair)
			if partner != nil && partner.structurePos < p.structurePos {
				continue // the lower-slot partner already emitted this pair
			}
		}
		sample := raw[i]
		if p.pair.Valid() {
			if j, ok := m.indexOf(p.pair); ok {
				sample = ringModulate(sample, raw[j])
			}
		}
		pan := p.Pan()
		if int(pan) >= len(t.Pan) {
			pan = uint8(len(t.Pan) - 1)
		}
		left := sample * int32(t.Pan[pan][0]) / 256
		right := sample * int32(t.Pan[pan][1]) / 256
		out = append(out, StereoContribution{Left: left, Right: right})
	}
	return out
}

// indexOf returns h's slot index, used by TickAll to read the other
// half of a ring-mod pair out of the raw per-slot sample buffer.
func (m *PartialManager) indexOf(h PartialHandle) (int, bool) {
	if !h.Valid() || int(h.Index) >= len(m.generation) || m.generation[h.Index] != h.Generation {
		return 0, false
	}
	return int(h.Index), true
}

// PolyLookup is the information PartialManager's stealing policy needs
// about in-flight Polys, plus the hook it calls once a partial is
// freed (by natural death or by being stolen) so the owning Poly's
// partial count and INACTIVE transition stay in sync. PolyPool
// implements it.
type PolyLookup interface {
	State(h PolyHandle) PolyState
	Age(h PolyHandle) uint64
	PartOf(h PolyHandle) int
	PartialFreed(h PolyHandle)
}

// Allocate finds count free or stealable partial slots for a new note
// on owningPart, applying the priority order:
//
//	(a) any INACTIVE partial (i.e. genuinely free)
//	(b) partials from this part's oldest RELEASED poly
//	(c) partials from any part's oldest RELEASED poly
//	(d) steal the oldest PLAYING poly in this part
//	(e) steal the oldest PLAYING poly in any part
//
// Stolen partials are aborted rather than freed outright: they keep
// ringing down under their old owner and the caller's ReapDead pass
// reclaims the slot once the abort ramp reaches DEAD. Allocate returns
// the handles of slots it claims for immediate reuse in this call; for
// stolen slots, the caller's Start queues the new note behind the
// in-flight decay rather than cutting it short.
func (m *PartialManager) Allocate(count int, owningPart int, polys PolyLookup) []PartialHandle {
	var claimed []PartialHandle

	// (a) genuinely free slots first.
	for len(claimed) < count && len(m.free) > 0 {
		idx := m.free[len(m.free)-1]
		m.free = m.free[:len(m.free)-1]
		claimed = append(claimed, PartialHandle{Index: idx, Generation: m.generation[idx]})
	}
	if len(claimed) == count {
		return claimed
	}

	need := count - len(claimed)
	stolen := m.stealBestCandidates(need, owningPart, polys)
	claimed = append(claimed, stolen...)
	return claimed
}

// stealBestCandidates implements priority tiers (b)-(e) by scanning all
// active partials once per tier and picking the globally oldest
// qualifying owner each time.
func (m *PartialManager) stealBestCandidates(need int, owningPart int, polys PolyLookup) []PartialHandle {
	var out []PartialHandle
	taken := make(map[int]bool)

	tiers := []func(ownerPart int) bool{
		func(p int) bool { return p == owningPart }, // (b) this part, RELEASED
		func(p int) bool { return true },            // (c) any part, RELEASED
	}
	for _, samePartOnly := range tiers {
		for len(out) < need {
			h, slot, ok := m.oldestMatching(polys, taken, samePartOnly, PolyReleased)
			if !ok {
				break
			}
			out = append(out, m.steal(slot, h, polys))
			taken[slot] = true
		}
		if len(out) == need {
			return out
		}
	}

	playingTiers := []func(ownerPart int) bool{
		func(p int) bool { return p == owningPart }, // (d)
		func(p int) bool { return true },            // (e)
	}
	for _, samePartOnly := range playingTiers {
		for len(out) < need {
			h, slot, ok := m.oldestMatching(polys, taken, samePartOnly, PolyPlaying)
			if !ok {
				break
			}
			out = append(out, m.steal(slot, h, polys))
			taken[slot] = true
		}
		if len(out) == need {
			return out
		}
	}

	return out
}

func (m *PartialManager) oldestMatching(polys PolyLookup, taken map[int]bool, partMatch func(int) bool, wantState PolyState) (PolyHandle, int, bool) {
	bestAge := ^uint64(0)
	bestSlot := -1
	var bestOwner PolyHandle
	for i, p := range m.partials {
		if taken[i] || p.state != PartialStarted {
			continue
		}
		owner := p.owner
		if polys.State(owner) != wantState {
			continue
		}
		if !partMatch(polys.PartOf(owner)) {
			continue
		}
		age := polys.Age(owner)
		if age < bestAge {
			bestAge = age
			bestSlot = i
			bestOwner = owner
		}
	}
	if bestSlot < 0 {
		return PolyHandle{}, -1, false
	}
	return bestOwner, bestSlot, true
}

// steal puts the slot's current voice into its abort ramp rather than
// cutting it immediately: the old note keeps ringing down to silence
// under its own owner, and Tick/ReapDead reclaim the slot once DEAD is
// reached. The old owner's Poly is retired right away via
// polys.PartialFreed, matching what a query right after the steal
// decision should see, even though the audio itself hasn't gone silent
// yet. The generation bumps immediately too, so any handle the old
// owner still holds reads as stale.
func (m *PartialManager) steal(slot int, owner PolyHandle, polys PolyLookup) PartialHandle {
	m.partials[slot].Abort()
	polys.PartialFreed(owner)
	m.generation[slot]++
	if m.generation[slot] == 0 {
		m.generation[slot] = 1
	}
	return PartialHandle{Index: uint16(slot), Generation: m.generation[slot]}
}

// Start begins sounding on an already-claimed handle. If the slot is
// still ringing down from being stolen, the new note is queued to begin
// the instant that decay reaches DEAD instead of cutting it off.
func (m *PartialManager) Start(h PartialHandle, owner PolyHandle, key, velocity uint8, params PartialParams, masterVolume, partVolume, expression, rhythmLevel uint8, niceAmpRamp bool, pitchBendQ16 int32) {
	p := m.Get(h)
	if p == nil {
		return
	}
	if p.aborting {
		p.queueRestart(pendingStart{
			owner: owner, key: key, velocity: velocity, params: params,
			masterVolume: masterVolume, partVolume: partVolume, expression: expression,
			rhythmLevel: rhythmLevel, niceAmpRamp: niceAmpRamp, pitchBendQ16: pitchBendQ16,
		})
		return
	}
	p.start(owner, key, velocity, params, masterVolume, partVolume, expression, rhythmLevel, niceAmpRamp, pitchBendQ16)
}

// ReleaseOwnedBy marks every partial owned by owner as no longer able
// to sustain, called on Note-Off/pedal lift.
func (m *PartialManager) ReleaseOwnedBy(owner PolyHandle) {
	for _, p := range m.partials {
		if p.state == PartialStarted && p.owner == owner {
			p.Release()
		}
	}
}

// AbortOwnedBy force-decays every partial owned by owner, used by
// All-Sounds-Off.
func (m *PartialManager) AbortOwnedBy(owner PolyHandle) {
	for _, p := range m.partials {
		if p.state == PartialStarted && p.owner == owner {
			p.Abort()
		}
	}
}
