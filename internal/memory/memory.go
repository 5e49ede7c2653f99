// Package memory implements the Sysex-addressable parameter memory
// layout: a flat address space divided into regions, each a typed
// struct array. The region/offset/raw-bytes shape is grounded on the
// teacher's internal/memory/memory.go MemorySystem,
// generalized from a bank/offset console address space to the MT-32's
// flat 7-bit-byte Sysex address space.
package memory

import "fmt"

// Region identifies one addressable memory region.
type Region int

const (
	RegionSystem Region = iota
	RegionPatchTemporary
	RegionRhythmTemporary
	RegionPartTemporary
	RegionTimbreTemporary
	RegionPatches
	RegionTimbres
	RegionSystemPatches
	RegionDisplay
	RegionReset
	regionCount
)

func (r Region) String() string {
	switch r {
	case RegionSystem:
		return "System"
	case RegionPatchTemporary:
		return "PatchTemporary"
	case RegionRhythmTemporary:
		return "RhythmTemporary"
	case RegionPartTemporary:
		return "PartTemporary"
	case RegionTimbreTemporary:
		return "TimbreTemporary"
	case RegionPatches:
		return "Patches"
	case RegionTimbres:
		return "Timbres"
	case RegionSystemPatches:
		return "SystemPatches"
	case RegionDisplay:
		return "Display"
	case RegionReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// Per-record sizes (bytes) for the array regions, and record counts,
// approximating the real MT-32 Sysex address map layout.
const (
	systemSize         = 0x17
	patchTemporarySize = 8
	patchTemporaryN    = 9
	rhythmTemporarySize = 4
	rhythmTemporaryN    = 85
	partTemporarySize   = 58
	partTemporaryN      = 9
	timbreTemporarySize = 246
	timbreTemporaryN    = 8
	patchSize  = 8
	patchN     = 128
	timbreSize = 246
	timbreN    = 64
	systemPatchesSize = 4
	displaySize       = 20
	resetSize         = 1
)

// Base addresses, laid out as non-overlapping 0x10000-byte-spaced
// blocks so every address fits
// the 21-bit range a 3-byte 7-bit Sysex address (DecodeAddress) can
// express, mirroring the real firmware's non-overlapping region
// ordering without claiming to reproduce its literal addresses.
const (
	baseSystem          = 0x000000
	basePatchTemporary  = 0x010000
	baseRhythmTemporary = 0x020000
	basePartTemporary   = 0x030000
	baseTimbreTemporary = 0x040000
	basePatches         = 0x050000
	baseTimbres         = 0x060000
	baseSystemPatches   = 0x070000
	baseDisplay         = 0x080000
	baseReset           = 0x090000
)

// DirtyHook is called after a write lands in a region, so dependent
// caches (decoded envelope params, etc.) can be re-derived rather than
// read stale.
type DirtyHook func(region Region, recordIndex int, offset, length int)

type regionSpan struct {
	base       uint32
	recordSize int
	records    int
	data       []byte
}

func (s *regionSpan) length() int { return s.recordSize * s.records }

func (s *regionSpan) contains(addr uint32) bool {
	return addr >= s.base && addr < s.base+uint32(s.length())
}

// Map is the full addressable parameter memory.
type Map struct {
	spans [regionCount]regionSpan
	hooks []DirtyHook
}

// NewMap builds a Map with every region zeroed, ready for ResetDefaults.
func NewMap() *Map {
	m := &Map{}
	m.spans[RegionSystem] = regionSpan{baseSystem, systemSize, 1, make([]byte, systemSize)}
	m.spans[RegionPatchTemporary] = regionSpan{basePatchTemporary, patchTemporarySize, patchTemporaryN, make([]byte, patchTemporarySize*patchTemporaryN)}
	m.spans[RegionRhythmTemporary] = regionSpan{baseRhythmTemporary, rhythmTemporarySize, rhythmTemporaryN, make([]byte, rhythmTemporarySize*rhythmTemporaryN)}
	m.spans[RegionPartTemporary] = regionSpan{basePartTemporary, partTemporarySize, partTemporaryN, make([]byte, partTemporarySize*partTemporaryN)}
	m.spans[RegionTimbreTemporary] = regionSpan{baseTimbreTemporary, timbreTemporarySize, timbreTemporaryN, make([]byte, timbreTemporarySize*timbreTemporaryN)}
	m.spans[RegionPatches] = regionSpan{basePatches, patchSize, patchN, make([]byte, patchSize*patchN)}
	m.spans[RegionTimbres] = regionSpan{baseTimbres, timbreSize, timbreN, make([]byte, timbreSize*timbreN)}
	m.spans[RegionSystemPatches] = regionSpan{baseSystemPatches, systemPatchesSize, 1, make([]byte, systemPatchesSize)}
	m.spans[RegionDisplay] = regionSpan{baseDisplay, displaySize, 1, make([]byte, displaySize)}
	m.spans[RegionReset] = regionSpan{baseReset, resetSize, 1, make([]byte, resetSize)}
	return m
}

// OnDirty registers a hook invoked after every write that lands inside
// parameter memory.
func (m *Map) OnDirty(h DirtyHook) { m.hooks = append(m.hooks, h) }

// Region returns the raw backing bytes for one record of a region (for
// typed decoding by callers, e.g. the voice package's timbre/patch
// decoders).
func (m *Map) Region(r Region, record int) []byte {
	s := &m.spans[r]
	if record < 0 || record >= s.records {
		return nil
	}
	off := record * s.recordSize
	return s.data[off : off+s.recordSize]
}

// RecordCount returns how many records a region holds.
func (m *Map) RecordCount(r Region) int { return m.spans[r].records }

// FindRegion reports which region addr falls inside, if any. Exposed for
// callers (dirty-hook dispatch) that need to react differently per
// region without duplicating the base-address table.
func (m *Map) FindRegion(addr uint32) (Region, bool) {
	r, _, ok := m.find(addr)
	return r, ok
}

// ErrAddressOutOfRange is returned by Read/Write when addr does not fall
// inside any known region.
var ErrAddressOutOfRange = fmt.Errorf("memory: address out of range")

// Write copies data into parameter memory starting at addr, firing dirty
// hooks for every record touched. Returns ErrAddressOutOfRange if any
// byte of the range falls outside a known region.
func (m *Map) Write(addr uint32, data []byte) error {
	region, span, ok := m.find(addr)
	if !ok {
		return ErrAddressOutOfRange
	}
	start := addr - span.base
	if int(start)+len(data) > span.length() {
		return ErrAddressOutOfRange
	}
	copy(span.data[start:], data)

	firstRecord := int(start) / span.recordSize
	lastRecord := int(start+uint32(len(data))-1) / span.recordSize
	for rec := firstRecord; rec <= lastRecord; rec++ {
		for _, h := range m.hooks {
			h(region, rec, int(start)%span.recordSize, len(data))
		}
	}
	return nil
}

// Read returns a copy of length bytes starting at addr. Out-of-range
// reads return zero-filled bytes rather than an error; reporting the
// out-of-range condition is the caller's responsibility (it holds the
// callback).
func (m *Map) Read(addr uint32, length int) []byte {
	out := make([]byte, length)
	region, span, ok := m.find(addr)
	if !ok {
		return out
	}
	_ = region
	start := addr - span.base
	n := copy(out, span.data[start:])
	_ = n
	return out
}

// InRange reports whether the entire [addr, addr+length) range falls
// inside a single known region.
func (m *Map) InRange(addr uint32, length int) bool {
	_, span, ok := m.find(addr)
	if !ok {
		return false
	}
	start := addr - span.base
	return int(start)+length <= span.length()
}

func (m *Map) find(addr uint32) (Region, *regionSpan, bool) {
	for r := Region(0); r < regionCount; r++ {
		s := &m.spans[r]
		if s.contains(addr) {
			return r, s, true
		}
	}
	return 0, nil, false
}

// ResetDefaults zeros every region and reloads factory default patches
// and the system region from the Control ROM's built-in tables. The
// caller supplies the already-parsed default bytes (ROMInfo decodes
// them); Map itself holds no ROM-format knowledge.
func (m *Map) ResetDefaults(systemDefaults, patchDefaults, timbreDefaults []byte) {
	for r := Region(0); r < regionCount; r++ {
		s := &m.spans[r]
		for i := range s.data {
			s.data[i] = 0
		}
	}
	if len(systemDefaults) > 0 {
		copy(m.spans[RegionSystem].data, systemDefaults)
	}
	if len(patchDefaults) > 0 {
		copy(m.spans[RegionPatches].data, patchDefaults)
	}
	if len(timbreDefaults) > 0 {
		copy(m.spans[RegionTimbres].data, timbreDefaults)
	}
}
