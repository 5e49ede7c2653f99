package voice

// Part is one of the Synth's 9 MIDI channels (8 melodic + 1 rhythm). It
// owns its own volume, expression, pan, program number, pitch-bend,
// modulation, hold pedal, active-timbre pointer, and the list of Polys
// currently sounding on it.
type Part struct {
	Index int

	Volume     uint8
	Expression uint8
	Pan        uint8
	Program    uint8
	PitchBendQ16 int32
	Modulation uint8
	Hold       bool

	ActiveTimbre int // index into the Timbres memory region

	Channel uint8 // configurable MIDI channel assignment

	sounding []PolyHandle
}

// NewPart creates a Part at default settings.
func NewPart(index int) *Part {
	return &Part{Index: index, Volume: 100, Expression: 127, Pan: 7}
}

// NoteOn starts a new Poly on this part. structurePartialCount is the
// timbre's partial count (1, 2, or 4). It allocates partials via
// manager's stealing policy, starts each one, links any ring-mod/mix
// pairs the timbre's structure defines between them, and tracks the
// Poly in this Part's sounding list.
func (pt *Part) NoteOn(key, velocity uint8, structurePartialCount int, polys *PolyPool, manager *PartialManager, paramsFor func(slot int) PartialParams, masterVolume, rhythmLevel uint8, niceAmpRamp bool) (PolyHandle, bool) {
	h, ok := polys.Alloc(key, velocity, pt.Index)
	if !ok {
		return PolyHandle{}, false
	}
	p := polys.Get(h)

	handles := manager.Allocate(structurePartialCount, pt.Index, polys)
	for i, ph := range handles {
		manager.Start(ph, h, key, velocity, paramsFor(i), masterVolume, pt.Volume, pt.Expression, rhythmLevel, niceAmpRamp, pt.PitchBendQ16)
		p.Partials[i] = ph
	}
	p.PartialCount = len(handles)
	manager.LinkPairs(handles)

	pt.sounding = append(pt.sounding, h)
	return h, true
}

// NoteOff releases or holds a Poly depending on the part's hold pedal.
func (pt *Part) NoteOff(h PolyHandle, polys *PolyPool, manager *PartialManager) {
	if pt.Hold {
		polys.HoldOn(h)
		return
	}
	polys.Release(h)
	manager.ReleaseOwnedBy(h)
}

// LiftHold releases every HELD poly on this part to RELEASED, in one
// pass so a chord lifted together ends together.
func (pt *Part) LiftHold(polys *PolyPool, manager *PartialManager) {
	var toRelease []PolyHandle
	polys.ForEachHeld(pt.Index, func(h PolyHandle) { toRelease = append(toRelease, h) })
	for _, h := range toRelease {
		polys.Release(h)
		manager.ReleaseOwnedBy(h)
	}
}

// AllNotesOff releases every sounding poly on this part.
func (pt *Part) AllNotesOff(polys *PolyPool, manager *PartialManager) {
	polys.ForEachActive(pt.Index, func(h PolyHandle) {
		polys.Release(h)
		manager.ReleaseOwnedBy(h)
	})
}

// AllSoundsOff aborts every sounding poly on this part instantly,
// skipping the release phase a plain Note-Off would go through.
func (pt *Part) AllSoundsOff(polys *PolyPool, manager *PartialManager) {
	polys.ForEachActive(pt.Index, func(h PolyHandle) {
		manager.AbortOwnedBy(h)
	})
}

// Prune drops INACTIVE polys from this part's sounding list and frees
// their PolyPool slot; called once per sample after ReapDead.
func (pt *Part) Prune(polys *PolyPool) {
	kept := pt.sounding[:0]
	for _, h := range pt.sounding {
		s := polys.Get(h)
		if s == nil {
			continue
		}
		if s.state == PolyInactive {
			polys.Free(h)
			continue
		}
		kept = append(kept, h)
	}
	pt.sounding = kept
}

// HandlesForKey returns the handles of this part's currently sounding
// (PLAYING or HELD) polys at key, for Note-Off dispatch.
func (pt *Part) HandlesForKey(key uint8, polys *PolyPool) []PolyHandle {
	var out []PolyHandle
	for _, h := range pt.sounding {
		s := polys.Get(h)
		if s == nil || s.Key != key {
			continue
		}
		if s.state == PolyPlaying || s.state == PolyHeld {
			out = append(out, h)
		}
	}
	return out
}

// PlayingNotes returns the keys and velocities of every sounding Poly on
// this part.
func (pt *Part) PlayingNotes(polys *PolyPool) (keys, velocities []uint8) {
	for _, h := range pt.sounding {
		s := polys.Get(h)
		if s == nil || s.state == PolyInactive {
			continue
		}
		keys = append(keys, s.Key)
		velocities = append(velocities, s.Velocity)
	}
	return keys, velocities
}
