package romid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentifyRecognizedPair(t *testing.T) {
	control := []byte("fake control rom: romid_test pair A")
	pcm := []byte("fake pcm rom: romid_test pair A")
	Register(Digest(control), MachineMT32V104, false)
	Register(Digest(pcm), MachineMT32V104, true)

	info, err := Identify(control, pcm)
	require.NoError(t, err)
	require.Equal(t, MachineMT32V104, info.Machine)
	require.True(t, info.Quirks.PCMLoopFractionalWrap)
}

func TestIdentifyUnknownDigestFails(t *testing.T) {
	_, err := Identify([]byte("never registered A"), []byte("never registered B"))
	require.ErrorIs(t, err, ErrRomNotRecognized)
}

func TestIdentifyMismatchedMachinesFails(t *testing.T) {
	control := []byte("fake control rom: romid_test mismatch")
	pcm := []byte("fake pcm rom: romid_test mismatch")
	Register(Digest(control), MachineMT32V107, false)
	Register(Digest(pcm), MachineCM32LV100, true)

	_, err := Identify(control, pcm)
	require.ErrorIs(t, err, ErrRomNotRecognized)
}

func TestIdentifyRejectsSwappedRoles(t *testing.T) {
	control := []byte("fake control rom: romid_test swap")
	pcm := []byte("fake pcm rom: romid_test swap")
	Register(Digest(control), MachineMT32V106, false)
	Register(Digest(pcm), MachineMT32V106, true)

	_, err := Identify(pcm, control) // control/pcm args swapped
	require.ErrorIs(t, err, ErrRomNotRecognized)
}
