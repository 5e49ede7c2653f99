package voice

// PolyState is a sounding note's lifecycle: created PLAYING on Note-On,
// moves to HELD if the part's hold pedal is down at Note-Off, to
// RELEASED on pedal lift or a Note-Off with no pedal, and finally to
// INACTIVE once every partial it owns has died out.
type PolyState int

const (
	PolyInactive PolyState = iota
	PolyPlaying
	PolyHeld
	PolyReleased
)

// Poly is one note event in flight: the MIDI-level note identity that
// owns up to 4 partials for the duration of a timbre's structure.
type Poly struct {
	generation uint16
	state      PolyState

	Key      uint8
	Velocity uint8
	Sustain  bool
	Part     int

	Partials     [4]PartialHandle
	PartialCount int

	noteOnSeq uint64
}

// PolyPool is Synth's arena of Poly slots, index-handle addressed with
// generation counters so a handle held past a Free is detected rather
// than silently aliasing a reused slot.
type PolyPool struct {
	slots   []Poly
	free    []uint16
	nextSeq uint64
}

// NewPolyPool creates a pool with capacity slots (one per simultaneously
// trackable note; a generous cap independent of the partial pool size,
// since a Poly may be HELD with zero active partials briefly during
// reallocation).
func NewPolyPool(capacity int) *PolyPool {
	p := &PolyPool{slots: make([]Poly, capacity)}
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, uint16(i))
	}
	return p
}

// Alloc claims a free slot for a new Note-On, returning its handle.
// Returns ok=false if the pool itself is exhausted (distinct from
// partial-pool exhaustion, which is handled by stealing instead).
func (p *PolyPool) Alloc(key, velocity uint8, part int) (PolyHandle, bool) {
	if len(p.free) == 0 {
		return PolyHandle{}, false
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	s := &p.slots[idx]
	gen := s.generation + 1
	if gen == 0 {
		gen = 1
	}
	p.nextSeq++
	*s = Poly{generation: gen, state: PolyPlaying, Key: key, Velocity: velocity, Part: part, noteOnSeq: p.nextSeq}
	return PolyHandle{Index: idx, Generation: gen}, true
}

// Get returns the live Poly for h, or nil if h is stale (use-after-steal
// / use-after-free detected via the generation mismatch).
func (p *PolyPool) Get(h PolyHandle) *Poly {
	if !h.Valid() || int(h.Index) >= len(p.slots) {
		return nil
	}
	s := &p.slots[h.Index]
	if s.generation != h.Generation {
		return nil
	}
	return s
}

// Free returns a slot to the pool once its Poly reaches INACTIVE.
func (p *PolyPool) Free(h PolyHandle) {
	s := p.Get(h)
	if s == nil {
		return
	}
	s.state = PolyInactive
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	p.free = append(p.free, h.Index)
}

// State implements PolyLookup for PartialManager's stealing policy.
func (p *PolyPool) State(h PolyHandle) PolyState {
	s := p.Get(h)
	if s == nil {
		return PolyInactive
	}
	return s.state
}

// Age implements PolyLookup: lower values are older (earlier Note-On).
func (p *PolyPool) Age(h PolyHandle) uint64 {
	s := p.Get(h)
	if s == nil {
		return 0
	}
	return s.noteOnSeq
}

// PartOf implements PolyLookup.
func (p *PolyPool) PartOf(h PolyHandle) int {
	s := p.Get(h)
	if s == nil {
		return -1
	}
	return s.Part
}

// HoldOn transitions a Poly to HELD (Note-Off with the part's hold
// pedal down).
func (p *PolyPool) HoldOn(h PolyHandle) {
	if s := p.Get(h); s != nil && s.state == PolyPlaying {
		s.state = PolyHeld
	}
}

// Release transitions a Poly to RELEASED (Note-Off with no hold pedal,
// or pedal lift on a HELD poly).
func (p *PolyPool) Release(h PolyHandle) {
	if s := p.Get(h); s != nil && (s.state == PolyPlaying || s.state == PolyHeld) {
		s.state = PolyReleased
	}
}

// MarkInactive transitions a Poly straight to INACTIVE regardless of its
// owned partial count, used when a steal or All-Sounds-Off needs to
// retire it immediately. Callers should then Free it.
func (p *PolyPool) MarkInactive(h PolyHandle) {
	if s := p.Get(h); s != nil {
		s.state = PolyInactive
	}
}

// PartialFreed records that one of h's owned partials has been freed
// (either reaped after reaching DEAD, or synchronously at steal time)
// and marks h INACTIVE once its last partial is gone. A Poly starts
// NoteOn with PartialCount set to however many partials its structure
// used; each freed partial decrements it, and ReapDead/steal call this
// exactly once per partial so the count never goes negative.
func (p *PolyPool) PartialFreed(h PolyHandle) {
	s := p.Get(h)
	if s == nil {
		return
	}
	if s.PartialCount > 0 {
		s.PartialCount--
	}
	if s.PartialCount == 0 {
		s.state = PolyInactive
	}
}

// ForEachHeld applies fn to every currently HELD poly, used when the
// hold pedal is lifted.
func (p *PolyPool) ForEachHeld(part int, fn func(PolyHandle)) {
	for i := range p.slots {
		s := &p.slots[i]
		if s.state == PolyHeld && s.generation != 0 && (part < 0 || s.Part == part) {
			fn(PolyHandle{Index: uint16(i), Generation: s.generation})
		}
	}
}

// ForEachActive applies fn to every PLAYING, HELD, or RELEASED poly
// (i.e. everything except INACTIVE/free), optionally restricted to one
// part (part < 0 means all parts). Used for All-Notes-Off/All-Sounds-Off
// and for partial-count/playing-notes queries.
func (p *PolyPool) ForEachActive(part int, fn func(PolyHandle)) {
	for i := range p.slots {
		s := &p.slots[i]
		if s.generation != 0 && s.state != PolyInactive && (part < 0 || s.Part == part) {
			fn(PolyHandle{Index: uint16(i), Generation: s.generation})
		}
	}
}
