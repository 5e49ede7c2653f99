package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	m := NewMap()
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, m.Write(basePatchTemporary, payload))
	require.Equal(t, payload, m.Read(basePatchTemporary, len(payload)))
}

func TestWriteOutOfRangeRejected(t *testing.T) {
	m := NewMap()
	err := m.Write(0x0FFFFFF, []byte{1})
	require.ErrorIs(t, err, ErrAddressOutOfRange)
}

func TestReadOutOfRangeReturnsZeroed(t *testing.T) {
	m := NewMap()
	out := m.Read(0x0FFFFFF, 4)
	require.Equal(t, []byte{0, 0, 0, 0}, out)
}

func TestDirtyHookFiresPerTouchedRecord(t *testing.T) {
	m := NewMap()
	var touched []int
	m.OnDirty(func(region Region, record int, offset, length int) {
		if region == RegionPatchTemporary {
			touched = append(touched, record)
		}
	})
	// Spans records 0 and 1 (patchTemporarySize == 8).
	require.NoError(t, m.Write(basePatchTemporary+4, make([]byte, 8)))
	require.Equal(t, []int{0, 1}, touched)
}

func TestFindRegionEveryBaseAddressResolves(t *testing.T) {
	m := NewMap()
	bases := []uint32{
		baseSystem, basePatchTemporary, baseRhythmTemporary, basePartTemporary,
		baseTimbreTemporary, basePatches, baseTimbres, baseSystemPatches,
		baseDisplay, baseReset,
	}
	for _, addr := range bases {
		_, ok := m.FindRegion(addr)
		require.True(t, ok, "base address %#x must resolve to a region", addr)
	}
}

func TestResetDefaultsZeroesThenAppliesOverrides(t *testing.T) {
	m := NewMap()
	require.NoError(t, m.Write(baseSystem, []byte{0xFF}))
	m.ResetDefaults([]byte{0x11}, nil, nil)
	require.Equal(t, byte(0x11), m.Read(baseSystem, 1)[0])
}
