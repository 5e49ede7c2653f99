package reverb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledModelIsSilent(t *testing.T) {
	m := NewModel(0)
	m.SetEnabled(false)
	l, r := m.Process(30000)
	require.Equal(t, int32(0), l)
	require.Equal(t, int32(0), r)
}

func TestDisablingZerosDelayLines(t *testing.T) {
	m := NewModel(0)
	for i := 0; i < 4000; i++ {
		m.Process(30000)
	}
	m.SetEnabled(false)
	m.SetEnabled(true)
	l, r := m.Process(0)
	require.Equal(t, int32(0), l, "re-enabling after a disable must start from silence")
	require.Equal(t, int32(0), r)
}

func TestEnabledProducesNonZeroOutputEventually(t *testing.T) {
	m := NewModel(1)
	m.SetMode(ModeHall)
	var sawNonZero bool
	for i := 0; i < 8192; i++ {
		l, r := m.Process(30000)
		if l != 0 || r != 0 {
			sawNonZero = true
			break
		}
	}
	require.True(t, sawNonZero)
}

func TestAllModesStayInBounds(t *testing.T) {
	for mode := ModeRoom; mode < modeCount; mode++ {
		m := NewModel(0)
		m.SetMode(mode)
		m.SetTime(7)
		m.SetLevel(7)
		for i := 0; i < 20000; i++ {
			l, r := m.Process(32000)
			require.InDelta(t, 0, float64(l), float64(1<<31), "mode %d left output must stay representable", mode)
			require.InDelta(t, 0, float64(r), float64(1<<31), "mode %d right output must stay representable", mode)
		}
	}
}
