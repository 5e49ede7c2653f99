package midi

import (
	"errors"

	"gitlab.com/gomidi/midi/v2"
)

// ErrInvalidStream is returned by the parser when it cannot make sense
// of a byte sequence.
var ErrInvalidStream = errors.New("midi: invalid byte stream")

// dataBytesFor reports how many data bytes follow a given status byte
// for channel voice messages (-1 for unknown/system status).
func dataBytesFor(status byte) int {
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 2
	case 0xC0, 0xD0:
		return 1
	}
	return -1 // not a channel voice status
}

func isRealtime(b byte) bool { return b >= 0xF8 }
func isStatus(b byte) bool   { return b&0x80 != 0 }

// StreamParser decodes a raw MIDI byte stream with running status,
// realtime bytes passed through inline, and Sysex reassembled across
// F0…F7. One parser instance per input stream; it is not safe for
// concurrent use by multiple producers, matching the engine's
// single-threaded-per-instance contract.
type StreamParser struct {
	runningStatus byte
	pending       []byte // data bytes accumulated for the in-flight channel message

	inSysex    bool
	sysexBytes []byte

	// EmitShort/EmitSysex/EmitRealtime are called as complete messages are
	// decoded. A nil callback silently drops that message class.
	EmitShort     func(msg midi.Message)
	EmitSysex     func(payload []byte)
	EmitRealtime  func(b byte)
}

// NewStreamParser creates an empty parser.
func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

// Feed decodes one or more raw bytes, invoking the Emit* callbacks for
// each complete message as it's recognized. Realtime bytes (0xF8-0xFF)
// are passed through inline even in the middle of another message or a
// Sysex payload.
func (p *StreamParser) Feed(data []byte) error {
	for _, b := range data {
		if isRealtime(b) {
			if p.EmitRealtime != nil {
				p.EmitRealtime(b)
			}
			continue
		}
		if err := p.feedByte(b); err != nil {
			return err
		}
	}
	return nil
}

func (p *StreamParser) feedByte(b byte) error {
	if p.inSysex {
		if b == 0xF7 {
			p.inSysex = false
			if p.EmitSysex != nil {
				p.EmitSysex(p.sysexBytes)
			}
			p.sysexBytes = nil
			return nil
		}
		if isStatus(b) {
			// A non-realtime status byte inside Sysex aborts the message:
			// reassembly is strictly F0...F7-bounded.
			p.inSysex = false
			p.sysexBytes = nil
			return ErrInvalidStream
		}
		p.sysexBytes = append(p.sysexBytes, b)
		return nil
	}

	if b == 0xF0 {
		p.inSysex = true
		p.sysexBytes = p.sysexBytes[:0]
		p.pending = nil
		return nil
	}

	if isStatus(b) {
		if b >= 0xF1 && b <= 0xF7 {
			// System common messages other than Sysex aren't modeled by
			// this engine's MIDI surface; drop running status and ignore.
			p.runningStatus = 0
			p.pending = nil
			return nil
		}
		want := dataBytesFor(b)
		if want < 0 {
			return ErrInvalidStream
		}
		p.runningStatus = b
		p.pending = p.pending[:0]
		if want == 0 {
			p.emitChannelMessage(b, nil)
		}
		return nil
	}

	// Data byte: append to the in-flight message, using running status if
	// no explicit status byte started it.
	if p.runningStatus == 0 {
		return ErrInvalidStream
	}
	want := dataBytesFor(p.runningStatus)
	p.pending = append(p.pending, b)
	if len(p.pending) >= want {
		data := append([]byte(nil), p.pending...)
		p.emitChannelMessage(p.runningStatus, data)
		p.pending = p.pending[:0]
	}
	return nil
}

func (p *StreamParser) emitChannelMessage(status byte, data []byte) {
	if p.EmitShort == nil {
		return
	}
	raw := append([]byte{status}, data...)
	p.EmitShort(midi.Message(raw))
}
