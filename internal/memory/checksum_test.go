package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksumRoundTrip(t *testing.T) {
	addr := []byte{0x01, 0x02, 0x03}
	data := []byte{0x10, 0x20, 0x30, 0x40}
	cs := ComputeChecksum(addr, data)
	require.True(t, VerifyChecksum(addr, data, cs))
}

func TestChecksumRejectsTamperedData(t *testing.T) {
	addr := []byte{0x01, 0x02, 0x03}
	data := []byte{0x10, 0x20, 0x30, 0x40}
	cs := ComputeChecksum(addr, data)
	data[0] ^= 0xFF
	require.False(t, VerifyChecksum(addr, data, cs))
}

func TestDecodeAddressStaysWithin21Bits(t *testing.T) {
	got := DecodeAddress(0x7F, 0x7F, 0x7F)
	require.Equal(t, uint32(0x1FFFFF), got)
}
