package mt32

import (
	"github.com/rolandemu/mt32emu-go/internal/config"
	"github.com/rolandemu/mt32emu-go/internal/memory"
	"github.com/rolandemu/mt32emu-go/internal/voice"
	"gitlab.com/gomidi/midi/v2"
)

// PlayMsg queues a short MIDI message for processing at timestamp (a
// sample index). If timestamp is zero, the synth's internal rendered-
// sample counter plus the configured MIDI delay mode offset is used.
func (s *Synth) PlayMsg(msg midi.Message, timestamp uint32) error {
	if s.state != StateReady {
		return ErrNotOpen
	}
	if timestamp == 0 {
		timestamp = s.effectiveTimestamp()
	}
	if err := s.queue.Push(timestamp, msg); err != nil {
		s.report.OnMIDIQueueOverflow()
		return ErrMidiQueueFull
	}
	return nil
}

// PlayMsgNow bypasses the queue: it takes effect at the next sample
// about to be rendered, not retroactively.
func (s *Synth) PlayMsgNow(msg midi.Message) error {
	if s.state != StateReady {
		return ErrNotOpen
	}
	s.dispatchShort(msg)
	return nil
}

// PlaySysex queues a Sysex payload (the bytes between F0 and F7,
// exclusive) for processing at timestamp.
func (s *Synth) PlaySysex(payload []byte, timestamp uint32) error {
	if s.state != StateReady {
		return ErrNotOpen
	}
	if timestamp == 0 {
		timestamp = s.effectiveTimestamp()
	}
	if err := s.queue.PushSysex(timestamp, payload); err != nil {
		s.report.OnMIDIQueueOverflow()
		return ErrMidiQueueFull
	}
	return nil
}

// PlaySysexNow bypasses the queue.
func (s *Synth) PlaySysexNow(payload []byte) error {
	if s.state != StateReady {
		return ErrNotOpen
	}
	s.dispatchSysex(payload)
	return nil
}

func (s *Synth) effectiveTimestamp() uint32 {
	switch s.cfg.MIDIDelayMode {
	case config.MIDIDelayAll, config.MIDIDelayShortMessagesOnly:
		return s.sampleCounter + 1
	default:
		return s.sampleCounter
	}
}

// enqueueImmediate/enqueueSysexImmediate feed the stream parser's
// decoded output straight into the queue at the current sample.
func (s *Synth) enqueueImmediate(msg midi.Message) {
	_ = s.PlayMsg(msg, s.sampleCounter)
}

func (s *Synth) enqueueSysexImmediate(payload []byte) {
	_ = s.PlaySysex(payload, s.sampleCounter)
}

// FeedMidiBytes decodes a raw byte stream via the internal
// StreamParser, enqueueing whatever messages it recognizes. Returns
// ErrInvalidMidiFile on malformed input; already-decoded messages
// before the malformed byte remain queued.
func (s *Synth) FeedMidiBytes(data []byte) error {
	if err := s.parser.Feed(data); err != nil {
		return ErrInvalidMidiFile
	}
	return nil
}

func (s *Synth) dispatchShort(msg midi.Message) {
	if len(msg) == 0 {
		return
	}
	status := msg[0]
	if status < 0x80 {
		return
	}
	channel := int(status & 0x0F)
	kind := status & 0xF0

	part := s.partForChannel(channel)
	if part < 0 {
		return
	}
	s.displayMach.PulseMIDILED(true)

	switch kind {
	case 0x90: // Note On (velocity 0 == Note Off)
		if len(msg) < 3 {
			return
		}
		key, vel := msg[1], msg[2]
		if vel == 0 {
			s.noteOff(part, key)
		} else {
			s.noteOn(part, key, vel)
		}
	case 0x80: // Note Off
		if len(msg) < 2 {
			return
		}
		s.noteOff(part, msg[1])
	case 0xB0: // Control Change
		if len(msg) < 3 {
			return
		}
		s.controlChange(part, msg[1], msg[2])
	case 0xC0: // Program Change
		if len(msg) < 2 {
			return
		}
		s.parts[part].Program = msg[1]
		s.parts[part].ActiveTimbre = int(msg[1])
	case 0xE0: // Pitch Bend
		if len(msg) < 3 {
			return
		}
		raw := int32(msg[1]) | int32(msg[2])<<7 // 14-bit, center 0x2000
		s.parts[part].PitchBendQ16 = (raw - 0x2000) * 65536 / 0x2000 / 12
	}
}

func (s *Synth) partForChannel(channel int) int {
	for i, p := range s.parts {
		if int(p.Channel) == channel {
			return i
		}
	}
	return -1
}

func (s *Synth) controlChange(part int, controller, value byte) {
	p := s.parts[part]
	switch controller {
	case 7: // Channel Volume
		if s.partVolumeOverride[part] < 0 {
			p.Volume = value
		}
	case 10: // Pan
		p.Pan = value
	case 11: // Expression
		p.Expression = value
	case 1: // Modulation
		p.Modulation = value
	case 64: // Hold pedal
		wasHeld := p.Hold
		p.Hold = value >= 64
		if wasHeld && !p.Hold {
			p.LiftHold(s.polys, s.partialMgr)
		}
	case 120: // All Sound Off
		p.AllSoundsOff(s.polys, s.partialMgr)
	case 123: // All Notes Off
		p.AllNotesOff(s.polys, s.partialMgr)
	}
}

func (s *Synth) dispatchSysex(payload []byte) {
	// Roland format: manufacturer(0x41) device(0x10) model(0x16) command
	// address[3] data... checksum.
	if len(payload) < 8 || payload[0] != 0x41 {
		return
	}
	command := payload[3]
	addrBytes := payload[4:7]
	const (
		cmdDT1 = 0x12
		cmdRQ1 = 0x11
	)
	switch command {
	case cmdDT1:
		data := payload[7 : len(payload)-1]
		checksum := payload[len(payload)-1]
		if !memory.VerifyChecksum(addrBytes, data, checksum) {
			s.report.OnSysexChecksumInvalid()
			return
		}
		addr := memory.DecodeAddress(addrBytes[0], addrBytes[1], addrBytes[2])
		if err := s.mem.Write(addr, data); err != nil {
			s.report.OnSysexAddressOutOfRange()
			return
		}
		s.onMemoryWrite(addr)
	case cmdRQ1:
		if len(payload) < 11 {
			return
		}
		lenBytes := payload[7:10]
		checksum := payload[len(payload)-1]
		sumBuf := append(append([]byte{}, addrBytes...), lenBytes...)
		if !memory.VerifyChecksum(sumBuf, nil, checksum) {
			s.report.OnSysexChecksumInvalid()
			return
		}
		addr := memory.DecodeAddress(addrBytes[0], addrBytes[1], addrBytes[2])
		length := int(memory.DecodeAddress(lenBytes[0], lenBytes[1], lenBytes[2]))
		if !s.mem.InRange(addr, length) {
			s.report.OnSysexAddressOutOfRange()
		}
		_ = s.mem.Read(addr, length) // delivering the RQ1 reply is the transport caller's job
	}
}

// onMemoryWrite reacts after a Sysex write lands. Only the reset region
// has an effect here: it triggers a full parameter-memory reset and
// aborts every poly. Writes to other regions take no immediate action;
// timbre records are decoded again at the next Note-On.
func (s *Synth) onMemoryWrite(addr uint32) {
	region, ok := s.mem.FindRegion(addr)
	if !ok {
		return
	}
	if region == memory.RegionReset {
		s.resetAll()
	}
}

func (s *Synth) resetAll() {
	for _, p := range s.parts {
		p.AllSoundsOff(s.polys, s.partialMgr)
	}
	s.mem.ResetDefaults(nil, nil, nil)
}

func (s *Synth) noteOn(part int, key, velocity byte) {
	pt := s.parts[part]
	timbreIndex := pt.ActiveTimbre
	count := s.timbreStructure(timbreIndex)
	pt.NoteOn(key, velocity, count, s.polys, s.partialMgr, func(slot int) voice.PartialParams {
		return s.decodePartialParams(timbreIndex, slot)
	}, s.masterVolume, s.rhythmLevel, s.cfg.NiceAmpRamp)
}

func (s *Synth) noteOff(part int, key byte) {
	pt := s.parts[part]
	for _, h := range pt.HandlesForKey(key, s.polys) {
		pt.NoteOff(h, s.polys, s.partialMgr)
	}
}
