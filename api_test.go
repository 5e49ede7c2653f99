package mt32

import (
	"testing"

	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestSetPartVolumeOverrideClampsPartRange(t *testing.T) {
	s := openTestSynth(t, "api-volume-range")

	s.SetPartVolumeOverride(-1, 50)
	s.SetPartVolumeOverride(numParts, 50)
	_, ok := s.GetPartVolumeOverride(-1)
	require.False(t, ok)
	_, ok = s.GetPartVolumeOverride(numParts)
	require.False(t, ok)
}

func TestSetPartVolumeOverrideThenClear(t *testing.T) {
	s := openTestSynth(t, "api-volume-clear")

	s.SetPartVolumeOverride(0, 42)
	level, ok := s.GetPartVolumeOverride(0)
	require.True(t, ok)
	require.Equal(t, 42, level)
	require.Equal(t, uint8(42), s.parts[0].Volume)

	s.SetPartVolumeOverride(0, -1)
	_, ok = s.GetPartVolumeOverride(0)
	require.False(t, ok, "a negative level must clear the override")
}

func TestPartStatesBitIsSetOnlyWhileSounding(t *testing.T) {
	s := openTestSynth(t, "api-part-states")

	require.Equal(t, uint32(0), s.PartStates())
	require.NoError(t, s.PlayMsgNow(gomidi.Message{0x90, 60, 100}))
	require.NotEqual(t, uint32(0), s.PartStates()&(1<<0))
}

func TestPartialStatesLengthMatchesPoolCapacity(t *testing.T) {
	s := openTestSynth(t, "api-partial-states")
	states := s.PartialStates()
	require.Len(t, states, s.partialMgr.Capacity())
}

func TestPlayingNotesOutOfRangePartReturnsNil(t *testing.T) {
	s := openTestSynth(t, "api-playing-notes-oor")
	keys, velocities := s.PlayingNotes(-1)
	require.Nil(t, keys)
	require.Nil(t, velocities)
	keys, velocities = s.PlayingNotes(numParts)
	require.Nil(t, keys)
	require.Nil(t, velocities)
}

func TestReadMemoryOutOfRangeReturnsZeroFilled(t *testing.T) {
	s := openTestSynth(t, "api-read-memory-oor")
	got := s.ReadMemory(0x1FFFFF, 4)
	require.Equal(t, []byte{0, 0, 0, 0}, got)
}

func TestPatchNameEmptyBeforeProgramming(t *testing.T) {
	s := openTestSynth(t, "api-patch-name")
	require.Equal(t, "", s.PatchName(0))
}

func TestPatchNameOutOfRangePartReturnsEmpty(t *testing.T) {
	s := openTestSynth(t, "api-patch-name-oor")
	require.Equal(t, "", s.PatchName(-1))
	require.Equal(t, "", s.PatchName(numParts))
}

func TestSoundGroupNameDistinguishesRhythmPart(t *testing.T) {
	s := openTestSynth(t, "api-sound-group")
	require.Equal(t, "RHYTHM", s.SoundGroupName(rhythmPartIndex))
	require.Equal(t, "NO GROUP", s.SoundGroupName(0))
}

func TestTrimTimbreNameStripsTrailingNullsAndSpaces(t *testing.T) {
	require.Equal(t, "PIANO", trimTimbreName([]byte("PIANO     ")))
	require.Equal(t, "PIANO", trimTimbreName([]byte("PIANO\x00\x00\x00\x00\x00")))
	require.Equal(t, "", trimTimbreName([]byte{0, 0, 0}))
}
