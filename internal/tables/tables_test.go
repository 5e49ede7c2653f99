package tables

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSharedReturnsSameInstanceEveryCall(t *testing.T) {
	require.Same(t, Shared(), Shared())
}

func TestNewBuildsIndependentInstances(t *testing.T) {
	a := New()
	b := New()
	require.NotSame(t, a, b)
	require.Equal(t, a.RampIncrement, b.RampIncrement, "construction must be deterministic")
}

func TestRampIncrementIsNeverZero(t *testing.T) {
	tb := New()
	for i, step := range tb.RampIncrement {
		require.NotZero(t, step, "ramp step %d must eventually cause an interrupt", i)
	}
}

func TestRampIncrementDecreasesMonotonically(t *testing.T) {
	tb := New()
	for i := 1; i < RampStepCount; i++ {
		require.LessOrEqual(t, tb.RampIncrement[i], tb.RampIncrement[i-1])
	}
}

func TestLogTimeTableTailSaturatesToWrappedNegative(t *testing.T) {
	tb := New()
	require.Equal(t, int8(-128), tb.LogTimeTable[RampStepCount-1])
}

func TestVolumeToAmpSubtractionFullVolumeIsZero(t *testing.T) {
	tb := New()
	require.Equal(t, uint8(0), tb.VolumeToAmpSubtraction[RampStepCount-1])
	require.Equal(t, uint8(255), tb.VolumeToAmpSubtraction[0])
}

func TestKeyToPitchIsUnityAtA4(t *testing.T) {
	tb := New()
	require.Equal(t, int32(65536), tb.KeyToPitch[69])
}

func TestKeyToPitchDoublesPerOctave(t *testing.T) {
	tb := New()
	require.InDelta(t, float64(tb.KeyToPitch[69])*2, float64(tb.KeyToPitch[81]), 2)
}

func TestPanCenterIsEqualLeftRight(t *testing.T) {
	tb := New()
	const center = (PanSteps - 1) / 2
	require.Equal(t, tb.Pan[center][0], tb.Pan[center][1])
}

func TestPanExtremesFavorOneSide(t *testing.T) {
	tb := New()
	require.Greater(t, tb.Pan[0][0], tb.Pan[0][1], "pan 0 must favor left")
	require.Greater(t, tb.Pan[PanSteps-1][1], tb.Pan[PanSteps-1][0], "pan max must favor right")
}

func TestKeyfollowFactorZeroAtMinusFourSetting(t *testing.T) {
	tb := New()
	require.Equal(t, int32(0), tb.KeyfollowFactor[4], "index 4 is the -4..+12 table's setting=0 entry")
}

func TestPitchToPhaseIncrementScalesWithSampleRate(t *testing.T) {
	high := PitchToPhaseIncrement(65536, 32000)
	low := PitchToPhaseIncrement(65536, 64000)
	require.Greater(t, high, low, "a lower sample rate needs a larger phase increment for the same frequency")
}

func TestPitchToPhaseIncrementNegativeRatioClampsToZero(t *testing.T) {
	require.Equal(t, uint32(0), PitchToPhaseIncrement(-1, 32000))
}
