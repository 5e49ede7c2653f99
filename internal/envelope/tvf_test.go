package envelope

import (
	"testing"

	"github.com/rolandemu/mt32emu-go/internal/tables"
	"github.com/stretchr/testify/require"
)

func testTVFParams() TVFParams {
	return TVFParams{
		EnvTime:    [4]uint8{10, 20, 20, 20},
		EnvLevel:   [4]uint8{255, 200, 150, 100},
		BaseCutoff: 200,
		Resonance:  10,
	}
}

func TestTVFResetStartsAtAttack(t *testing.T) {
	tf := NewTVF(tables.New())
	tf.Reset(testTVFParams(), 60)
	require.Equal(t, TVFAttack, tf.Phase())
}

func TestTVFAdvancesThroughAllPhasesAndHoldsAtSustain(t *testing.T) {
	tf := NewTVF(tables.New())
	tf.Reset(testTVFParams(), 60)

	_, _, finished := tf.NextPhase()
	require.False(t, finished)
	require.Equal(t, TVFP2, tf.Phase())

	_, _, finished = tf.NextPhase()
	require.False(t, finished)
	require.Equal(t, TVFP3, tf.Phase())

	_, _, finished = tf.NextPhase()
	require.True(t, finished)
	require.Equal(t, TVFP4Sustain, tf.Phase())

	target, inc, finished := tf.NextPhase()
	require.True(t, finished)
	require.Equal(t, uint8(0), inc, "sustain must hold with zero increment")
	require.Equal(t, target, target)
}

func TestTVFBaseCutoffClampedToByteRange(t *testing.T) {
	tf := NewTVF(tables.New())
	p := testTVFParams()
	p.BaseCutoff = 255
	p.Keyfollow = 16 // maximum key-follow factor
	tf.Reset(p, 127)
	require.LessOrEqual(t, tf.baseCut, uint8(255))
}

func TestTVFResonanceAccessor(t *testing.T) {
	tf := NewTVF(tables.New())
	tf.Reset(testTVFParams(), 60)
	require.Equal(t, uint8(10), tf.Resonance())
}
