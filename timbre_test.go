package mt32

import (
	"testing"

	"github.com/rolandemu/mt32emu-go/internal/la32"
	"github.com/rolandemu/mt32emu-go/internal/memory"
	"github.com/stretchr/testify/require"
)

func TestStructurePartialCountMapsStructureByteToVoiceCount(t *testing.T) {
	require.Equal(t, 1, structurePartialCount(0))
	require.Equal(t, 2, structurePartialCount(1))
	require.Equal(t, 2, structurePartialCount(2))
	require.Equal(t, 4, structurePartialCount(3))
	require.Equal(t, 4, structurePartialCount(7))
}

func TestTimbreStructureDefaultsToOneWhenUnprogrammed(t *testing.T) {
	s := openTestSynth(t, "timbre-structure-default")
	require.Equal(t, 1, s.timbreStructure(0))
}

func TestTimbreStructureReadsStructureByteFromRecord(t *testing.T) {
	s := openTestSynth(t, "timbre-structure-written")
	rec := s.mem.Region(memory.RegionTimbres, 3)
	rec[timbreStructureOffset] = 3 // -> 4 partials
	require.Equal(t, 4, s.timbreStructure(3))
}

func TestDecodePartialParamsFallsBackToDefaultsWhenUnprogrammed(t *testing.T) {
	s := openTestSynth(t, "timbre-decode-default")
	p := s.decodePartialParams(5, 0)
	require.Equal(t, la32.ModeSynth, p.Mode)
	require.Equal(t, -1, p.PairIndex)
	require.Equal(t, 0, p.StructurePosition)
}

func TestDecodePartialParamsReadsWrittenFields(t *testing.T) {
	s := openTestSynth(t, "timbre-decode-written")
	rec := s.mem.Region(memory.RegionTimbres, 1)

	off := timbrePartialBase + 0*timbrePartialStride
	b := rec[off : off+timbrePartialStride]
	b[pOffMode] = 0 // synth mode, not PCM
	b[pOffPulseWidth] = 77
	b[pOffPan] = 9
	b[pOffPairIndex] = 0xFF // unpaired
	b[pOffTVALevel] = 88
	b[pOffCoarseTune] = 0x40
	b[pOffPitchEnvLevel0] = 64 // centsBias(64) == 0

	p := s.decodePartialParams(1, 0)
	require.Equal(t, la32.ModeSynth, p.Mode)
	require.Equal(t, uint8(77), p.PulseWidth)
	require.Equal(t, uint8(9), p.Pan)
	require.Equal(t, -1, p.PairIndex)
	require.Equal(t, uint8(88), p.TVA.TVALevel)
	require.Equal(t, int8(0), p.TVP.PitchEnvLevel[0])
}

func TestDecodePartialParamsSelectsPCMSourceWhenModeBitSet(t *testing.T) {
	s := openTestSynth(t, "timbre-decode-pcm")
	rec := s.mem.Region(memory.RegionTimbres, 2)

	off := timbrePartialBase + 1*timbrePartialStride
	b := rec[off : off+timbrePartialStride]
	b[pOffMode] = 1
	b[pOffPCMIndex] = 0x05

	p := s.decodePartialParams(2, 1)
	require.Equal(t, la32.ModePCM, p.Mode)
	require.NotNil(t, p.PCM)
}

func TestCentsBiasCentersAroundSixtyFour(t *testing.T) {
	require.Equal(t, int8(0), centsBias(64))
	require.Equal(t, int8(-64), centsBias(0))
	require.Equal(t, int8(63), centsBias(127))
}
