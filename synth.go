// Package mt32 is the top-level coordinator for the MT-32/CM-32L/LAPC-I
// sound-synthesis engine: Sysex dispatch, per-sample rendering, and
// mode configuration, wiring together the tables,
// memory, romid, voice, midi, reverb, analog, resample, and display
// packages. The top-level type owns every subsystem the way a console
// emulator's top-level machine type does, generalized from a
// CPU-driven frame loop to a sample-driven render loop.
package mt32

import (
	"fmt"

	"github.com/rolandemu/mt32emu-go/internal/analog"
	"github.com/rolandemu/mt32emu-go/internal/config"
	"github.com/rolandemu/mt32emu-go/internal/debug"
	"github.com/rolandemu/mt32emu-go/internal/display"
	"github.com/rolandemu/mt32emu-go/internal/memory"
	"github.com/rolandemu/mt32emu-go/internal/midi"
	"github.com/rolandemu/mt32emu-go/internal/resample"
	"github.com/rolandemu/mt32emu-go/internal/reverb"
	"github.com/rolandemu/mt32emu-go/internal/romid"
	"github.com/rolandemu/mt32emu-go/internal/tables"
	"github.com/rolandemu/mt32emu-go/internal/voice"
)

// State is the Synth lifecycle: CLOSED, OPENING, READY, CLOSING.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateReady
	StateClosing
)

// 9 Parts total (8 melodic + 1 rhythm), numbered 0-8 with part 8 as rhythm.
const numParts = 9
const rhythmPartIndex = 8

// Synth is the engine coordinator. One instance models one MT-32/CM-32L
// unit. Not safe for concurrent use: single-threaded per instance,
// callers serialize all calls.
type Synth struct {
	state State
	cfg   config.SynthConfig

	tables *tables.Tables
	mem    *memory.Map
	rom    romid.Info

	controlROM []byte
	pcmROM     []byte

	parts      [numParts]*voice.Part
	polys      *voice.PolyPool
	partialMgr *voice.PartialManager

	reverbModel *reverb.Model
	analogStage analog.Stereo
	resampler   *resample.Converter
	displayMach *display.Machine

	queue  *midi.Queue
	parser *midi.StreamParser

	logger *debug.Logger
	report ReportHandler

	sampleCounter uint32

	partVolumeOverride [numParts]int // -1 = not overridden
	rhythmLevel        uint8
	masterVolume       uint8
}

// New creates an unopened Synth. Pass nil for logger to use a discard
// logger and nil for report to use NoOpReportHandler.
func New(logger *debug.Logger, report ReportHandler) *Synth {
	if logger == nil {
		logger = debug.Discard()
	}
	if report == nil {
		report = NoOpReportHandler{}
	}
	s := &Synth{logger: logger, report: report}
	for i := range s.partVolumeOverride {
		s.partVolumeOverride[i] = -1
	}
	return s
}

// IsOpen reports whether the synth is ready to render.
func (s *Synth) IsOpen() bool { return s.state == StateReady }

// Open identifies the ROM pair, allocates partials, warms tables,
// initializes reverb+analog, and resets parameter memory from ROM
// defaults.
func (s *Synth) Open(controlROM, pcmROM []byte, cfg config.SynthConfig) error {
	if s.state != StateClosed {
		return ErrAlreadyOpen
	}
	s.state = StateOpening

	info, err := romid.Identify(controlROM, pcmROM)
	if err != nil {
		s.state = StateClosed
		return ErrRomNotRecognized
	}
	s.rom = info
	s.controlROM = controlROM
	s.pcmROM = pcmROM
	s.cfg = cfg
	if s.cfg.TargetSampleRate == 0 {
		s.cfg.TargetSampleRate = 32000
	}

	s.tables = tables.Shared()
	s.mem = memory.NewMap()
	s.mem.ResetDefaults(nil, nil, nil)

	partialCount := cfg.PartialCount
	if partialCount <= 0 {
		partialCount = romid.PartialCount
	}
	s.partialMgr = voice.NewPartialManager(s.tables, s.cfg.TargetSampleRate, partialCount)
	s.polys = voice.NewPolyPool(partialCount * 2)

	for i := 0; i < numParts; i++ {
		s.parts[i] = voice.NewPart(i)
		s.parts[i].Channel = uint8(i)
	}
	s.parts[rhythmPartIndex].Channel = 9 // General MIDI rhythm channel

	s.reverbModel = reverb.NewModel(info.Quirks.ReverbTableVersion)
	s.reverbModel.SetEnabled(cfg.ReverbEnabled)
	s.analogStage = analog.NewStereo(analogQualityFrom(cfg.AnalogQuality))
	s.resampler = resample.NewConverter(s.cfg.TargetSampleRate, resampleQualityFrom(cfg.ResamplerQuality))
	s.displayMach = display.NewMachine()
	s.displayMach.OnLCDChange = s.report.OnLCDChange
	s.displayMach.OnMIDILED = s.report.OnMIDIMessageLED

	s.queue = midi.NewQueue(1024)
	s.parser = midi.NewStreamParser()
	s.parser.EmitShort = func(m midi.Message) { s.enqueueImmediate(m) }
	s.parser.EmitSysex = func(payload []byte) { s.enqueueSysexImmediate(payload) }

	s.masterVolume = 100
	s.rhythmLevel = 100
	s.sampleCounter = 0

	s.report.OnControlROMLoaded(info.Machine.String())
	s.report.OnPCMROMLoaded(info.Machine.String())

	s.state = StateReady
	s.logger.Logf(debug.ComponentSynth, debug.LogLevelInfo, "opened %s", info.Machine.String())
	return nil
}

// Close is synchronous: it aborts all polys (fast 0-decay) and marks the
// synth closed. It does not wait for the decay and does not return the
// aborting partials to the pool; the next Open builds a fresh pool.
func (s *Synth) Close() {
	if s.state != StateReady {
		return
	}
	s.state = StateClosing
	for _, p := range s.parts {
		p.AllSoundsOff(s.polys, s.partialMgr)
	}
	s.state = StateClosed
}

func analogQualityFrom(q config.AnalogQuality) analog.Quality {
	switch q {
	case config.AnalogCoarse:
		return analog.QualityCoarse
	case config.AnalogOversampled:
		return analog.QualityOversampled
	default:
		return analog.QualityAccurate
	}
}

func resampleQualityFrom(q config.ResamplerQuality) resample.Quality {
	switch q {
	case config.ResampleFastest:
		return resample.QualityFastest
	case config.ResampleFast:
		return resample.QualityFast
	case config.ResampleBest:
		return resample.QualityBest
	default:
		return resample.QualityGood
	}
}

// Render drains the queue up to the current sample counter, then for
// each frame updates live partials, mixes, applies reverb and the
// analog stage, and writes one stereo int16 frame. out must have room
// for frames*2 int16 samples (interleaved L,R). Returns ErrNotOpen if
// the synth isn't READY.
func (s *Synth) Render(out []int16, frames int) error {
	if s.state != StateReady {
		return ErrNotOpen
	}
	if len(out) < frames*2 {
		return fmt.Errorf("mt32: render buffer too small: need %d, got %d", frames*2, len(out))
	}

	for i := 0; i < frames; i++ {
		s.drainQueueForCurrentSample()
		l, r := s.renderOneFrame()
		out[i*2] = clip16(l)
		out[i*2+1] = clip16(r)
		s.sampleCounter++
	}
	return nil
}

func (s *Synth) renderOneFrame() (int32, int32) {
	s.partialMgr.ReapDead(func(owner voice.PolyHandle, slot int) {
		s.logger.Logf(debug.ComponentVoice, debug.LogLevelDebug, "partial %d freed", slot)
		s.polys.PartialFreed(owner)
	})

	var mixL, mixR int32
	for _, contrib := range s.partialMgr.TickAll(s.tables) {
		mixL += contrib.Left
		mixR += contrib.Right
	}

	for _, pt := range s.parts {
		pt.Prune(s.polys)
	}

	wetL, wetR := s.reverbModel.Process((mixL + mixR) / 2)
	outL := mixL + mulGain(wetL, s.cfg.ReverbOutputGain)
	outR := mixR + mulGain(wetR, s.cfg.ReverbOutputGain)

	if s.cfg.ReversedStereo {
		outL, outR = outR, outL
	}

	outL, outR = s.analogStage.Process(outL, outR)

	outL = mulGain(outL, s.cfg.OutputGain)
	outR = mulGain(outR, s.cfg.OutputGain)

	return outL, outR
}

func mulGain(v int32, gain float32) int32 {
	return int32(float32(v) * gain)
}

func clip16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func (s *Synth) drainQueueForCurrentSample() {
	for {
		e, ok := s.queue.Peek()
		if !ok || e.Timestamp > s.sampleCounter {
			return
		}
		s.queue.Pop()
		if e.Msg != nil {
			s.dispatchShort(e.Msg)
		} else {
			s.dispatchSysex(s.queue.SysexPayload(e))
		}
	}
}

// IsActive reports whether any partial is in use (PartialCount() > 0).
func (s *Synth) IsActive() bool {
	return s.PartialCount() > 0
}

// PartialCount returns the number of non-free partials.
func (s *Synth) PartialCount() int {
	if s.partialMgr == nil {
		return 0
	}
	return s.partialMgr.ActiveCount()
}

// DisplayState returns the current LCD/LED snapshot.
func (s *Synth) DisplayState() display.State { return s.displayMach.State() }
