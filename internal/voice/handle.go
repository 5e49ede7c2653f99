// Package voice implements polyphonic voice allocation: Poly (a sounding
// MIDI note), Part (one of the 9 MIDI channels), PartialManager (the
// fixed pool of LA32 voices), and Partial (one LA32 voice). Cross-entity
// references are index handles with a generation counter rather than
// pointers, so a back-reference held past a steal or free is detected
// instead of aliasing a reused slot. The arena/generation shape is
// grounded on this engine's own memory package's bank/offset addressing
// style (internal/memory/memory.go), generalized from a flat byte array
// to a typed object pool.
package voice

// PartialHandle is a weak, generation-checked reference to a pool slot
// in PartialManager.
type PartialHandle struct {
	Index      uint16
	Generation uint16
}

// Valid reports whether h refers to any slot at all (the zero handle is
// used as "no partial").
func (h PartialHandle) Valid() bool { return h.Generation != 0 }

// NoPartial is the handle value meaning "no partial assigned".
var NoPartial = PartialHandle{}

// PolyHandle is a weak, generation-checked reference to a Poly slot.
type PolyHandle struct {
	Index      uint16
	Generation uint16
}

func (h PolyHandle) Valid() bool { return h.Generation != 0 }

var NoPoly = PolyHandle{}
