package midi

import (
	"testing"

	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestRunningStatusRoundTrip(t *testing.T) {
	var got []gomidi.Message
	p := NewStreamParser()
	p.EmitShort = func(m gomidi.Message) { got = append(got, m) }

	// Note On ch0, then a second Note On reusing running status.
	require.NoError(t, p.Feed([]byte{0x90, 60, 100, 64, 90}))

	require.Len(t, got, 2)
	require.Equal(t, gomidi.Message{0x90, 60, 100}, got[0])
	require.Equal(t, gomidi.Message{0x90, 64, 90}, got[1])
}

func TestSysexReassembly(t *testing.T) {
	var got []byte
	p := NewStreamParser()
	p.EmitSysex = func(payload []byte) { got = append([]byte(nil), payload...) }

	require.NoError(t, p.Feed([]byte{0xF0, 0x41, 0x10, 0x16, 0x12, 1, 2, 3, 0xF7}))
	require.Equal(t, []byte{0x41, 0x10, 0x16, 0x12, 1, 2, 3}, got)
}

func TestRealtimeBytesPassThroughMidSysex(t *testing.T) {
	var realtime []byte
	var sysex []byte
	p := NewStreamParser()
	p.EmitRealtime = func(b byte) { realtime = append(realtime, b) }
	p.EmitSysex = func(payload []byte) { sysex = append([]byte(nil), payload...) }

	require.NoError(t, p.Feed([]byte{0xF0, 0x41, 0xF8, 0x10, 0xF7}))
	require.Equal(t, []byte{0xF8}, realtime)
	require.Equal(t, []byte{0x41, 0x10}, sysex)
}

func TestStrayStatusInsideSysexIsInvalid(t *testing.T) {
	p := NewStreamParser()
	err := p.Feed([]byte{0xF0, 0x41, 0x90, 60, 100})
	require.ErrorIs(t, err, ErrInvalidStream)
}

func TestDanglingDataByteWithNoStatusIsInvalid(t *testing.T) {
	p := NewStreamParser()
	err := p.Feed([]byte{60})
	require.ErrorIs(t, err, ErrInvalidStream)
}
