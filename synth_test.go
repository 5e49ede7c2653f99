package mt32

import (
	"testing"

	"github.com/rolandemu/mt32emu-go/internal/config"
	"github.com/rolandemu/mt32emu-go/internal/memory"
	"github.com/rolandemu/mt32emu-go/internal/romid"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func registerTestROM(t *testing.T, tag string) (control, pcm []byte) {
	t.Helper()
	control = []byte("fake control rom: synth_test " + tag)
	pcm = []byte("fake pcm rom: synth_test " + tag)
	romid.Register(romid.Digest(control), romid.MachineMT32V104, false)
	romid.Register(romid.Digest(pcm), romid.MachineMT32V104, true)
	return control, pcm
}

func openTestSynth(t *testing.T, tag string) *Synth {
	t.Helper()
	control, pcm := registerTestROM(t, tag)
	s := New(nil, nil)
	require.NoError(t, s.Open(control, pcm, config.Default()))
	return s
}

func TestOpenRejectsUnrecognizedROM(t *testing.T) {
	s := New(nil, nil)
	err := s.Open([]byte("never registered"), []byte("never registered either"), config.Default())
	require.ErrorIs(t, err, ErrRomNotRecognized)
	require.False(t, s.IsOpen())
}

func TestOpenThenDoubleOpenFails(t *testing.T) {
	s := openTestSynth(t, "double-open")
	require.True(t, s.IsOpen())

	control, pcm := registerTestROM(t, "double-open")
	err := s.Open(control, pcm, config.Default())
	require.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestRenderBeforeOpenReturnsErrNotOpen(t *testing.T) {
	s := New(nil, nil)
	buf := make([]int16, 20)
	require.ErrorIs(t, s.Render(buf, 10), ErrNotOpen)
}

func TestNoteOnThenRenderProducesActivePartials(t *testing.T) {
	s := openTestSynth(t, "note-on")

	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x90, 60, 100}))
	require.Greater(t, s.PartialCount(), 0)
	require.True(t, s.IsActive())

	buf := make([]int16, 256)
	require.NoError(t, s.Render(buf, 128))
}

func TestNoteOnThenNoteOffReleasesTrackedNote(t *testing.T) {
	s := openTestSynth(t, "note-off")

	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x90, 60, 100}))
	keys, _ := s.PlayingNotes(0)
	require.Contains(t, keys, uint8(60))

	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x80, 60, 0}))
	// Still tracked until the TVA's RELEASE ramp completes and ReapDead runs.
	buf := make([]int16, 2)
	for i := 0; i < 200000 && s.PartialCount() > 0; i++ {
		require.NoError(t, s.Render(buf, 1))
	}
	require.Equal(t, 0, s.PartialCount())
}

func TestNoteOnVelocityZeroActsAsNoteOff(t *testing.T) {
	s := openTestSynth(t, "velocity-zero")
	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x90, 60, 100}))
	require.Greater(t, s.PartialCount(), 0)
	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x90, 60, 0}))
	// Note-off was accepted without error; exact decay timing is covered
	// by TestNoteOnThenNoteOffReleasesTrackedNote.
}

func TestSysexResetAbortsAllSoundingNotes(t *testing.T) {
	s := openTestSynth(t, "sysex-reset")
	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x90, 60, 100}))
	require.Greater(t, s.PartialCount(), 0)

	addrBytes := []byte{0x24, 0x00, 0x00} // encodes RegionReset's base address
	data := []byte{0x01}
	checksum := memory.ComputeChecksum(addrBytes, data)
	payload := append([]byte{0x41, 0x10, 0x16, 0x12}, addrBytes...)
	payload = append(payload, data...)
	payload = append(payload, checksum)

	require.NoError(t, s.PlaySysexNow(payload))

	buf := make([]int16, 2)
	for i := 0; i < 200000 && s.PartialCount() > 0; i++ {
		require.NoError(t, s.Render(buf, 1))
	}
	require.Equal(t, 0, s.PartialCount(), "a write into the reset region must abort every sounding note")
}

func TestSysexBadChecksumIsReportedAndIgnored(t *testing.T) {
	s := openTestSynth(t, "sysex-bad-checksum")

	var gotChecksumErr bool
	s.report = reportSpy{onChecksumInvalid: func() { gotChecksumErr = true }}

	addrBytes := []byte{0x00, 0x00, 0x00}
	data := []byte{0x01}
	payload := append([]byte{0x41, 0x10, 0x16, 0x12}, addrBytes...)
	payload = append(payload, data...)
	payload = append(payload, 0x7F) // deliberately wrong checksum

	require.NoError(t, s.PlaySysexNow(payload))
	require.True(t, gotChecksumErr)
}

func TestSysexRQ1InRangeReadReportsNothing(t *testing.T) {
	s := openTestSynth(t, "sysex-rq1-ok")

	var gotRangeErr bool
	s.report = reportSpy{onAddressOutOfRange: func() { gotRangeErr = true }}

	addrBytes := []byte{0x00, 0x00, 0x00} // System region base, in range
	lenBytes := []byte{0x00, 0x00, 0x04}  // request length 4
	sumBuf := append(append([]byte{}, addrBytes...), lenBytes...)
	checksum := memory.ComputeChecksum(sumBuf, nil)
	payload := append([]byte{0x41, 0x10, 0x16, 0x11}, addrBytes...)
	payload = append(payload, lenBytes...)
	payload = append(payload, checksum)

	require.NoError(t, s.PlaySysexNow(payload))
	require.False(t, gotRangeErr)
}

func TestSysexRQ1OutOfRangeReportsAddressError(t *testing.T) {
	s := openTestSynth(t, "sysex-rq1-oor")

	var gotRangeErr bool
	s.report = reportSpy{onAddressOutOfRange: func() { gotRangeErr = true }}

	addrBytes := []byte{0x7F, 0x7F, 0x7F} // far outside any region's span
	lenBytes := []byte{0x00, 0x00, 0x04}
	sumBuf := append(append([]byte{}, addrBytes...), lenBytes...)
	checksum := memory.ComputeChecksum(sumBuf, nil)
	payload := append([]byte{0x41, 0x10, 0x16, 0x11}, addrBytes...)
	payload = append(payload, lenBytes...)
	payload = append(payload, checksum)

	require.NoError(t, s.PlaySysexNow(payload))
	require.True(t, gotRangeErr)
}

func TestHoldPedalDefersNoteOffUntilLift(t *testing.T) {
	s := openTestSynth(t, "hold-pedal")

	require.NoError(t, s.PlayMsgNow(gomidi.Message{0xB0, 64, 127})) // hold on, channel 0
	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x90, 60, 100}))
	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x80, 60, 0}))

	before := s.PartialCount()
	require.Greater(t, before, 0, "held note's partials must still be sounding after note-off")

	require.NoError(t, s.PlayMsgNow(gomidi.Message{0xB0, 64, 0})) // hold off, lifts

	buf := make([]int16, 2)
	for i := 0; i < 200000 && s.PartialCount() > 0; i++ {
		require.NoError(t, s.Render(buf, 1))
	}
	require.Equal(t, 0, s.PartialCount())
}

func TestAllSoundOffControlChangeAbortsImmediately(t *testing.T) {
	s := openTestSynth(t, "all-sound-off")
	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x90, 60, 100}))
	require.Greater(t, s.PartialCount(), 0)

	require.NoError(t, s.PlayMsgNow(gomidi.Message{0xB0, 120, 0}))

	buf := make([]int16, 2)
	for i := 0; i < 200000 && s.PartialCount() > 0; i++ {
		require.NoError(t, s.Render(buf, 1))
	}
	require.Equal(t, 0, s.PartialCount())
}

// reportSpy implements ReportHandler, firing the set callbacks instead of
// doing nothing.
type reportSpy struct {
	NoOpReportHandler
	onChecksumInvalid   func()
	onAddressOutOfRange func()
}

func (r reportSpy) OnSysexChecksumInvalid() {
	if r.onChecksumInvalid != nil {
		r.onChecksumInvalid()
	}
}

func (r reportSpy) OnSysexAddressOutOfRange() {
	if r.onAddressOutOfRange != nil {
		r.onAddressOutOfRange()
	}
}
