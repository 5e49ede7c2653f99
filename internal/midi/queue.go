// Package midi implements timestamped MIDI ingest: a single-producer /
// single-consumer ring buffer with a Sysex byte arena, plus
// running-status stream parsing. Short messages are represented with
// gitlab.com/gomidi/midi/v2's Message type rather than a hand-rolled
// status/data1/data2 struct.
package midi

import (
	"errors"

	"gitlab.com/gomidi/midi/v2"
)

// ErrQueueFull is returned by Push when the ring is at capacity: pushing
// when full fails, and the synth discards the excess event and reports
// it through the overflow callback.
var ErrQueueFull = errors.New("midi: event queue full")

// Event is one timestamped MIDI event: a sample-index timestamp paired
// with either a short message or a Sysex byte slice.
type Event struct {
	Timestamp uint32
	Msg       midi.Message // short message; nil if this event is Sysex
	SysexOff  int          // offset into the Queue's sysex arena, valid if Msg == nil
	SysexLen  int
}

// Queue is a fixed-capacity ring of Events, with Sysex payload bytes
// held in a separate growable arena so events stay a fixed size: each
// event holds an (offset, len) pair into the arena rather than owning
// its own slice. Grounded on a bus.go-style ring handling shape,
// generalized from a CPU/PPU command queue to a timestamped MIDI one.
type Queue struct {
	events   []Event
	head     int // next to pop
	tail     int // next to push
	count    int
	capacity int

	sysexArena []byte
}

// NewQueue creates a Queue with room for capacity events.
func NewQueue(capacity int) *Queue {
	return &Queue{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

// Push enqueues a short message event. Returns ErrQueueFull if the ring
// is at capacity.
func (q *Queue) Push(timestamp uint32, msg midi.Message) error {
	if q.count == q.capacity {
		return ErrQueueFull
	}
	q.events[q.tail] = Event{Timestamp: timestamp, Msg: msg}
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	return nil
}

// PushSysex enqueues a Sysex event, copying payload into the arena.
// Returns ErrQueueFull if the ring is at capacity.
func (q *Queue) PushSysex(timestamp uint32, payload []byte) error {
	if q.count == q.capacity {
		return ErrQueueFull
	}
	off := len(q.sysexArena)
	q.sysexArena = append(q.sysexArena, payload...)
	q.events[q.tail] = Event{Timestamp: timestamp, SysexOff: off, SysexLen: len(payload)}
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	return nil
}

// Len reports how many events are queued.
func (q *Queue) Len() int { return q.count }

// Peek returns the oldest queued event without removing it, and whether
// one was available.
func (q *Queue) Peek() (Event, bool) {
	if q.count == 0 {
		return Event{}, false
	}
	return q.events[q.head], true
}

// Pop removes and returns the oldest queued event.
func (q *Queue) Pop() (Event, bool) {
	e, ok := q.Peek()
	if !ok {
		return Event{}, false
	}
	q.head = (q.head + 1) % q.capacity
	q.count--
	if q.count == 0 {
		// Reclaim the sysex arena once fully drained; avoids unbounded
		// growth across a long render session.
		q.sysexArena = q.sysexArena[:0]
	}
	return e, true
}

// SysexPayload returns the Sysex bytes for an event produced by
// PushSysex (Msg == nil).
func (q *Queue) SysexPayload(e Event) []byte {
	return q.sysexArena[e.SysexOff : e.SysexOff+e.SysexLen]
}
