package resample

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBypassWhenRateMatchesNative(t *testing.T) {
	c := NewConverter(nativeRate, QualityGood)
	out := c.Push(1000, -1000)
	require.Equal(t, [][2]int32{{1000, -1000}}, out)
}

func TestTargetRateReported(t *testing.T) {
	c := NewConverter(44100, QualityFast)
	require.Equal(t, uint32(44100), c.TargetRate())
}

func TestDownsampleProducesFewerFramesThanInput(t *testing.T) {
	c := NewConverter(16000, QualityGood) // half native rate
	var produced int
	for i := 0; i < 2000; i++ {
		produced += len(c.Push(10000, -10000))
	}
	require.Less(t, produced, 2000, "downsampling to half-rate must not produce one output per input")
	require.Greater(t, produced, 800, "downsampling to half-rate should produce roughly half the frames")
}

func TestUpsampleProducesMoreFramesThanInput(t *testing.T) {
	c := NewConverter(64000, QualityGood) // double native rate
	var produced int
	for i := 0; i < 500; i++ {
		produced += len(c.Push(10000, -10000))
	}
	require.Greater(t, produced, 500, "upsampling to double-rate must produce more than one output per input")
}

func TestLowpassKernelNormalizedAndFinite(t *testing.T) {
	k := buildLowpassKernel(32, 0.25)
	require.Len(t, k, 32)
	var sum float64
	for _, v := range k {
		require.False(t, v != v, "kernel coefficient must not be NaN") // v != v detects NaN
		sum += v
	}
	require.InDelta(t, 1.0, sum, 1e-9, "kernel must be DC-normalized")
}
