package mt32

import (
	"github.com/rolandemu/mt32emu-go/internal/envelope"
	"github.com/rolandemu/mt32emu-go/internal/la32"
	"github.com/rolandemu/mt32emu-go/internal/memory"
	"github.com/rolandemu/mt32emu-go/internal/voice"
)

// Timbre record layout within the Timbres/TimbreTemporary regions: a
// 14-byte header (name + structure byte + reserved) followed by four
// fixed-size partial sub-blocks.
const (
	timbreStructureOffset = 10
	timbrePartialBase     = 14
	timbrePartialStride   = 58
)

// Offsets within one partial sub-block.
const (
	pOffCoarseTune = iota
	pOffFineTune
	pOffKeyfollow
	pOffPitchEnvTime0
	pOffPitchEnvTime1
	pOffPitchEnvTime2
	pOffPitchEnvTime3
	pOffPitchEnvLevel0
	pOffPitchEnvLevel1
	pOffPitchEnvLevel2
	pOffPitchEnvLevel3
	pOffLFORate
	pOffLFODepth
	pOffPulseWidth
	pOffMode
	pOffPCMIndex
	pOffTVFCutoff
	pOffTVFKeyfollow
	pOffTVFBiasPoint
	pOffTVFBiasLevel
	pOffTVFResonance
	pOffTVFEnvTime0
	pOffTVFEnvTime1
	pOffTVFEnvTime2
	pOffTVFEnvTime3
	pOffTVFEnvLevel0
	pOffTVFEnvLevel1
	pOffTVFEnvLevel2
	pOffTVFEnvLevel3
	pOffTVAEnvTime0
	pOffTVAEnvTime1
	pOffTVAEnvTime2
	pOffTVAEnvTime3
	pOffTVAEnvTime4
	pOffTVAEnvLevel0
	pOffTVAEnvLevel1
	pOffTVAEnvLevel2
	pOffTVAEnvLevel3
	pOffTVABiasPoint
	pOffTVABiasLevel
	pOffTVAVeloSensitivity
	pOffTVAKeyfollow
	pOffTVALevel
	pOffPan
	pOffPairIndex
)

// structurePartialCount maps the timbre structure byte (0-12 in the
// real firmware's partial-pairing table) down to how many of the 4
// partial slots are populated (1, 2, or 4).
func structurePartialCount(structureByte byte) int {
	switch structureByte % 4 {
	case 0:
		return 1
	case 1, 2:
		return 2
	default:
		return 4
	}
}

const pcmFragmentSize = 4096

// decodePCMSource builds a PCMSource over the loaded PCM ROM for one
// partial's encoded index byte: the top bit selects looping, the low 7
// bits select a fixed-size fragment.
func (s *Synth) decodePCMSource(indexByte byte) la32.PCMSource {
	looping := indexByte&0x80 != 0
	index := uint32(indexByte & 0x7F)
	start := index * pcmFragmentSize
	return la32.NewROMPCMSource(s.pcmROM, start, pcmFragmentSize, 0, looping)
}

func centsBias(b byte) int8 { return int8(int(b) - 64) }

// decodePartialParams reads partial sub-block slot out of the timbre
// record at timbreIndex, converting raw bytes to the typed params
// voice.Partial.start needs. A Partial never reaches into raw memory
// itself; only a decoded snapshot crosses that boundary, so a memory
// write re-decodes and restarts rather than mutating a running voice.
func (s *Synth) decodePartialParams(timbreIndex, slot int) voice.PartialParams {
	rec := s.mem.Region(memory.RegionTimbres, timbreIndex)
	if rec == nil || len(rec) < timbrePartialBase+timbrePartialStride*4 {
		return defaultPartialParams(slot)
	}
	programmed := false
	for _, v := range rec {
		if v != 0 {
			programmed = true
			break
		}
	}
	if !programmed {
		return defaultPartialParams(slot)
	}
	off := timbrePartialBase + slot*timbrePartialStride
	b := rec[off : off+timbrePartialStride]

	mode := la32.ModeSynth
	var pcm la32.PCMSource
	if b[pOffMode] != 0 {
		mode = la32.ModePCM
		pcm = s.decodePCMSource(b[pOffPCMIndex])
	}

	pairIndex := -1
	if b[pOffPairIndex] != 0xFF {
		pairIndex = int(b[pOffPairIndex])
	}

	return voice.PartialParams{
		TVA: envelope.TVAParams{
			EnvTime:                [5]uint8{b[pOffTVAEnvTime0], b[pOffTVAEnvTime1], b[pOffTVAEnvTime2], b[pOffTVAEnvTime3], b[pOffTVAEnvTime4]},
			EnvLevel:               [4]uint8{b[pOffTVAEnvLevel0], b[pOffTVAEnvLevel1], b[pOffTVAEnvLevel2], b[pOffTVAEnvLevel3]},
			BiasPoint:              b[pOffTVABiasPoint],
			BiasLevel:              b[pOffTVABiasLevel],
			EnvTimeVeloSensitivity: b[pOffTVAVeloSensitivity],
			EnvTimeKeyfollow:       b[pOffTVAKeyfollow],
			TVALevel:               b[pOffTVALevel],
		},
		TVF: envelope.TVFParams{
			EnvTime:    [4]uint8{b[pOffTVFEnvTime0], b[pOffTVFEnvTime1], b[pOffTVFEnvTime2], b[pOffTVFEnvTime3]},
			EnvLevel:   [4]uint8{b[pOffTVFEnvLevel0], b[pOffTVFEnvLevel1], b[pOffTVFEnvLevel2], b[pOffTVFEnvLevel3]},
			BaseCutoff: b[pOffTVFCutoff],
			Keyfollow:  b[pOffTVFKeyfollow],
			BiasPoint:  b[pOffTVFBiasPoint],
			BiasLevel:  b[pOffTVFBiasLevel],
			Resonance:  b[pOffTVFResonance],
		},
		TVP: envelope.TVPParams{
			CoarseTune: b[pOffCoarseTune],
			FineTune:   b[pOffFineTune],
			Keyfollow:  b[pOffKeyfollow],
			PitchEnvTime: [4]uint8{
				b[pOffPitchEnvTime0], b[pOffPitchEnvTime1], b[pOffPitchEnvTime2], b[pOffPitchEnvTime3],
			},
			PitchEnvLevel: [4]int8{
				centsBias(b[pOffPitchEnvLevel0]), centsBias(b[pOffPitchEnvLevel1]),
				centsBias(b[pOffPitchEnvLevel2]), centsBias(b[pOffPitchEnvLevel3]),
			},
			LFORate:  b[pOffLFORate],
			LFODepth: b[pOffLFODepth],
		},
		Mode:              mode,
		PulseWidth:        b[pOffPulseWidth],
		PCM:               pcm,
		Pan:               b[pOffPan],
		StructurePosition: slot,
		PairIndex:         pairIndex,
	}
}

// defaultPartialParams is used when a part's active timbre hasn't been
// programmed yet: Open resets parameter memory to zeroed defaults, so
// an early Note-On would otherwise read garbage.
func defaultPartialParams(slot int) voice.PartialParams {
	return voice.PartialParams{
		TVA: envelope.TVAParams{
			EnvTime:  [5]uint8{10, 40, 40, 40, 20},
			EnvLevel: [4]uint8{100, 90, 80, 0},
			TVALevel: 100,
		},
		TVF: envelope.TVFParams{
			EnvTime:    [4]uint8{10, 40, 40, 40},
			EnvLevel:   [4]uint8{100, 90, 80, 70},
			BaseCutoff: 200,
		},
		TVP: envelope.TVPParams{
			CoarseTune: 0x40,
			FineTune:   0x40,
		},
		Mode:              la32.ModeSynth,
		PulseWidth:        50,
		Pan:               7,
		StructurePosition: slot,
		PairIndex:         -1,
	}
}

// timbreStructure reports how many partials timbreIndex's structure
// uses, reading only the structure byte.
func (s *Synth) timbreStructure(timbreIndex int) int {
	rec := s.mem.Region(memory.RegionTimbres, timbreIndex)
	if rec == nil || len(rec) <= timbreStructureOffset {
		return 1
	}
	return structurePartialCount(rec[timbreStructureOffset])
}
