package la32

import (
	"testing"

	"github.com/rolandemu/mt32emu-go/internal/tables"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRampInterruptFiresOnce(t *testing.T) {
	tb := tables.New()
	r := NewRamp(tb)
	r.StartRamp(0xF0000000, 0x10) // ascending, moderate speed

	fired := 0
	for i := 0; i < 2_000_000 && fired == 0; i++ {
		r.NextValue()
		if r.CheckInterrupt() {
			fired++
		}
	}
	require.Equal(t, 1, fired, "ramp must raise its interrupt exactly once per completed ramp")
	require.Equal(t, uint32(0xF0000000), r.Current())

	// No further interrupt until re-armed.
	for i := 0; i < 100; i++ {
		r.NextValue()
		require.False(t, r.CheckInterrupt())
	}
}

// TestRampAlwaysInterrupts is a property-based check that for every
// non-zero increment, repeatedly calling NextValue eventually raises
// the interrupt exactly once.
func TestRampAlwaysInterrupts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tb := tables.Shared()
		r := NewRamp(tb)

		target := rapid.Uint32().Draw(rt, "target")
		lowBits := rapid.IntRange(1, 127).Draw(rt, "lowBits") // non-zero increment
		descending := rapid.Bool().Draw(rt, "descending")

		inc := uint8(lowBits)
		if descending {
			inc |= 0x80
		}
		r.StartRamp(target, inc)

		fired := 0
		for i := 0; i < 40_000_000 && fired == 0; i++ {
			r.NextValue()
			if r.CheckInterrupt() {
				fired++
			}
		}
		if fired != 1 {
			rt.Fatalf("expected exactly one interrupt, got %d (target=%d inc=%#x)", fired, target, inc)
		}
	})
}

func TestRampContinuesWhenTargetUnchanged(t *testing.T) {
	tb := tables.New()
	r := NewRamp(tb)
	r.StartRamp(0x80000000, 0x40)
	r.NextValue()
	before := r.current
	r.StartRamp(0x80000000, 0x40) // same target+direction: must not reset progress
	require.Equal(t, before, r.current)
}

func TestRampDescendingSnapsToTarget(t *testing.T) {
	tb := tables.New()
	r := NewRamp(tb)
	r.current = 0xFFFFFFFF
	r.StartRamp(0, 0x80|0x01) // descending, fast
	for i := 0; i < 5_000_000; i++ {
		r.NextValue()
		if r.Current() == 0 {
			break
		}
	}
	require.Equal(t, uint32(0), r.Current())
}
