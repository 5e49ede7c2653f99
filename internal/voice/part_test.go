package voice

import (
	"testing"

	"github.com/rolandemu/mt32emu-go/internal/tables"
	"github.com/stretchr/testify/require"
)

func newTestPartRig(capacity int) (*Part, *PolyPool, *PartialManager) {
	pt := NewPart(0)
	polys := NewPolyPool(16)
	mgr := NewPartialManager(tables.New(), 32000, capacity)
	return pt, polys, mgr
}

func TestNoteOnThenNoteOffReleasesOwnedPartials(t *testing.T) {
	pt, polys, mgr := newTestPartRig(4)

	h, ok := pt.NoteOn(60, 100, 2, polys, mgr, func(int) PartialParams { return testParams() }, 100, 100, true)
	require.True(t, ok)
	require.Equal(t, PolyPlaying, polys.State(h))
	require.Equal(t, 2, mgr.ActiveCount())

	handles := pt.HandlesForKey(60, polys)
	require.Len(t, handles, 1)
	pt.NoteOff(handles[0], polys, mgr)
	require.Equal(t, PolyReleased, polys.State(h))
}

func TestHoldPedalDefersReleaseUntilLift(t *testing.T) {
	pt, polys, mgr := newTestPartRig(4)
	pt.Hold = true

	h, ok := pt.NoteOn(60, 100, 1, polys, mgr, func(int) PartialParams { return testParams() }, 100, 100, true)
	require.True(t, ok)

	pt.NoteOff(h, polys, mgr)
	require.Equal(t, PolyHeld, polys.State(h), "note-off under hold pedal must defer to HELD, not RELEASED")

	pt.LiftHold(polys, mgr)
	require.Equal(t, PolyReleased, polys.State(h))
}

func TestAllSoundsOffAbortsWithoutWaitingForRelease(t *testing.T) {
	pt, polys, mgr := newTestPartRig(2)
	_, ok := pt.NoteOn(60, 100, 1, polys, mgr, func(int) PartialParams { return testParams() }, 100, 100, true)
	require.True(t, ok)

	pt.AllSoundsOff(polys, mgr)
	// The partial itself should now be aborting; draining it via ReapDead
	// should eventually free it.
	var freed bool
	for i := 0; i < 500000 && mgr.ActiveCount() > 0; i++ {
		mgr.Tick()
		mgr.ReapDead(func(owner PolyHandle, slot int) { freed = true })
	}
	require.True(t, freed)
}

func TestHandlesForKeyIgnoresOtherKeys(t *testing.T) {
	pt, polys, mgr := newTestPartRig(8)
	_, ok := pt.NoteOn(60, 100, 1, polys, mgr, func(int) PartialParams { return testParams() }, 100, 100, true)
	require.True(t, ok)
	_, ok = pt.NoteOn(62, 100, 1, polys, mgr, func(int) PartialParams { return testParams() }, 100, 100, true)
	require.True(t, ok)

	require.Len(t, pt.HandlesForKey(60, polys), 1)
	require.Len(t, pt.HandlesForKey(62, polys), 1)
	require.Len(t, pt.HandlesForKey(64, polys), 0)
}

func TestPruneDropsInactivePolysAndFreesSlot(t *testing.T) {
	pt, polys, mgr := newTestPartRig(2)
	h, ok := pt.NoteOn(60, 100, 1, polys, mgr, func(int) PartialParams { return testParams() }, 100, 100, true)
	require.True(t, ok)

	pt.AllSoundsOff(polys, mgr)
	for i := 0; i < 500000 && mgr.ActiveCount() > 0; i++ {
		mgr.Tick()
		mgr.ReapDead(func(owner PolyHandle, slot int) { polys.MarkInactive(owner) })
	}

	pt.Prune(polys)
	require.Nil(t, polys.Get(h), "pruning must free the poly slot once inactive")
}
