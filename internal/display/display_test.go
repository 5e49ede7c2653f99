package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMachineStartsWithBlankLine(t *testing.T) {
	m := NewMachine()
	require.Equal(t, strings.Repeat(" ", LineWidth), string(m.State().Line[:]))
}

func TestSetTextPadsShortTextWithSpaces(t *testing.T) {
	m := NewMachine()
	m.SetText("HELLO")
	got := string(m.State().Line[:])
	require.Equal(t, "HELLO"+strings.Repeat(" ", LineWidth-5), got)
}

func TestSetTextTruncatesLongText(t *testing.T) {
	m := NewMachine()
	m.SetText(strings.Repeat("X", LineWidth+10))
	got := string(m.State().Line[:])
	require.Len(t, got, LineWidth)
	require.Equal(t, strings.Repeat("X", LineWidth), got)
}

func TestSetTextFiresOnLCDChange(t *testing.T) {
	m := NewMachine()
	var got string
	m.OnLCDChange = func(text string) { got = text }
	m.SetText("PIANO 1")
	require.True(t, strings.HasPrefix(got, "PIANO 1"))
}

func TestPulseMIDILEDOnlyFiresOnStateChange(t *testing.T) {
	m := NewMachine()
	var calls int
	m.OnMIDILED = func(on bool) { calls++ }

	m.PulseMIDILED(true)
	require.Equal(t, 1, calls)
	m.PulseMIDILED(true) // no change, must not refire
	require.Equal(t, 1, calls)
	m.PulseMIDILED(false)
	require.Equal(t, 2, calls)
}

func TestSetCompatibilityTogglesOldStyleFlag(t *testing.T) {
	m := NewMachine()
	require.False(t, m.State().OldStyle)
	m.SetCompatibility(true)
	require.True(t, m.State().OldStyle)
}
