package analog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoarsePassesSamplesUnchanged(t *testing.T) {
	f := NewFilter(QualityCoarse)
	require.Equal(t, int32(12345), f.Process(12345))
	require.Equal(t, int32(-500), f.Process(-500))
}

func TestAccurateSettlesOnDCInput(t *testing.T) {
	f := NewFilter(QualityAccurate)
	var last int32
	for i := 0; i < 2000; i++ {
		last = f.Process(10000)
	}
	require.InDelta(t, 10000, int(last), 50, "a steady DC input must settle near its input level")
}

func TestOversampledAddsOneSampleLatency(t *testing.T) {
	f := NewFilter(QualityOversampled)
	require.Equal(t, 1, f.Latency())
	require.Equal(t, 0, NewFilter(QualityCoarse).Latency())
	require.Equal(t, 0, NewFilter(QualityAccurate).Latency())
}

func TestResetClearsHistory(t *testing.T) {
	f := NewFilter(QualityAccurate)
	for i := 0; i < 100; i++ {
		f.Process(20000)
	}
	f.Reset()
	first := f.Process(0)
	require.Equal(t, int32(0), first, "history must be zero immediately after Reset")
}

func TestStereoProcessesChannelsIndependently(t *testing.T) {
	s := NewStereo(QualityCoarse)
	l, r := s.Process(111, -222)
	require.Equal(t, int32(111), l)
	require.Equal(t, int32(-222), r)
}
