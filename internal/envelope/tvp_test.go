package envelope

import (
	"testing"

	"github.com/rolandemu/mt32emu-go/internal/tables"
	"github.com/stretchr/testify/require"
)

func testTVPParams() TVPParams {
	return TVPParams{
		CoarseTune:    0x40,
		FineTune:      0x40,
		PitchEnvTime:  [4]uint8{5, 5, 5, 5},
		PitchEnvLevel: [4]int8{10, 5, 0, 0},
	}
}

func TestNextPitchProducesNonZeroPhaseIncrementAtMiddleC(t *testing.T) {
	tp := NewTVP(tables.New(), 32000, 0)
	tp.Reset(testTVPParams(), 60, 0)
	inc := tp.NextPitch()
	require.Greater(t, inc, uint32(0))
}

func TestHigherKeyProducesLargerPhaseIncrement(t *testing.T) {
	low := NewTVP(tables.New(), 32000, 1)
	high := NewTVP(tables.New(), 32000, 1)
	low.Reset(testTVPParams(), 48, 0)
	high.Reset(testTVPParams(), 72, 0)
	require.Greater(t, high.NextPitch(), low.NextPitch())
}

func TestPitchBendShiftsRatioUpward(t *testing.T) {
	plain := NewTVP(tables.New(), 32000, 1)
	bent := NewTVP(tables.New(), 32000, 1)
	plain.Reset(testTVPParams(), 60, 0)
	bent.Reset(testTVPParams(), 60, 2000) // positive Q16-ish bend

	require.Greater(t, bent.NextPitch(), plain.NextPitch())
}

func TestDefaultSeedIsDeterministicAcrossInstances(t *testing.T) {
	a := NewTVP(tables.New(), 32000, 0)
	b := NewTVP(tables.New(), 32000, 0)
	a.Reset(testTVPParams(), 60, 0)
	b.Reset(testTVPParams(), 60, 0)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.NextPitch(), b.NextPitch(), "same seed must give identical jitter sequences")
	}
}
