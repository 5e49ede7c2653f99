// Package reverb implements the Boss-chip reverb processor: a cascade
// of tapped delay lines and all-pass sections across four modes (Room,
// Hall, Plate, Tap-Delay), with coefficients keyed by ROM version.
// Grounded on an internal/apu-style fixed-point generation discipline
// (integer phase/delay-line state advanced per sample, int32
// intermediate math, scale-then-clamp), generalized from oscillator
// synthesis to tapped delay-line filtering.
package reverb

// Mode selects the reverb's delay/feedback/tap preset.
type Mode int

const (
	ModeRoom Mode = iota
	ModeHall
	ModePlate
	ModeTapDelay
	modeCount
)

// maxDelaySamples bounds every mode's longest delay line so all modes
// can share preallocated backing arrays sized to the worst case.
const maxDelaySamples = 8192

// preset holds one (mode, ROM version) coefficient set: delay lengths,
// feedback gains (Q16), and output tap positions.
type preset struct {
	delayLen     [3]int
	feedbackQ16  [3]int32
	allpassLen   int
	allpassGainQ16 int32
	tapL, tapR   [2]int
}

// presetTable[romVersion][mode] holds the reverb coefficients for each
// ROM generation: MT-32 reverb differs audibly from CM-32L, and
// romid.Quirks selects which row applies.
var presetTable = [2][modeCount]preset{
	// ROM version 0: MT-32.
	{
		{delayLen: [3]int{1200, 2100, 3300}, feedbackQ16: [3]int32{28000, 22000, 16000}, allpassLen: 300, allpassGainQ16: 20000, tapL: [2]int{1200, 2100}, tapR: [2]int{2100, 3300}},
		{delayLen: [3]int{2400, 4100, 6200}, feedbackQ16: [3]int32{36000, 30000, 24000}, allpassLen: 440, allpassGainQ16: 22000, tapL: [2]int{2400, 4100}, tapR: [2]int{4100, 6200}},
		{delayLen: [3]int{800, 1500, 2600}, feedbackQ16: [3]int32{20000, 18000, 14000}, allpassLen: 180, allpassGainQ16: 16000, tapL: [2]int{800, 1500}, tapR: [2]int{1500, 2600}},
		{delayLen: [3]int{500, 900, 0}, feedbackQ16: [3]int32{40000, 0, 0}, allpassLen: 0, allpassGainQ16: 0, tapL: [2]int{500, 500}, tapR: [2]int{900, 900}},
	},
	// ROM version 1: CM-32L (longer, slightly brighter presets).
	{
		{delayLen: [3]int{1280, 2240, 3520}, feedbackQ16: [3]int32{29000, 23000, 17000}, allpassLen: 320, allpassGainQ16: 21000, tapL: [2]int{1280, 2240}, tapR: [2]int{2240, 3520}},
		{delayLen: [3]int{2560, 4380, 6620}, feedbackQ16: [3]int32{37000, 31000, 25000}, allpassLen: 470, allpassGainQ16: 23000, tapL: [2]int{2560, 4380}, tapR: [2]int{4380, 6620}},
		{delayLen: [3]int{860, 1600, 2780}, feedbackQ16: [3]int32{21000, 19000, 15000}, allpassLen: 190, allpassGainQ16: 17000, tapL: [2]int{860, 1600}, tapR: [2]int{1600, 2780}},
		{delayLen: [3]int{540, 960, 0}, feedbackQ16: [3]int32{41000, 0, 0}, allpassLen: 0, allpassGainQ16: 0, tapL: [2]int{540, 540}, tapR: [2]int{960, 960}},
	},
}

type delayLine struct {
	buf [maxDelaySamples]int32
	pos int
}

func (d *delayLine) write(length int, v int32) {
	d.buf[d.pos] = v
	d.pos++
	if d.pos >= length {
		d.pos = 0
	}
}

func (d *delayLine) tapBack(length, back int) int32 {
	idx := d.pos - back
	for idx < 0 {
		idx += length
	}
	return d.buf[idx]
}

func (d *delayLine) clear() { *d = delayLine{} }

// Model is the Boss reverb processor. One instance per Synth.
type Model struct {
	romVersion int

	mode  Mode
	time  int // 0-7
	level int // 0-7
	enabled bool

	lines    [3]delayLine
	allpass  delayLine
	allpassPos int
}

// NewModel creates a Model for the given ROM version (romid.Quirks'
// ReverbTableVersion), defaulting to ModeRoom, mid time/level, enabled.
func NewModel(romVersion int) *Model {
	if romVersion < 0 || romVersion >= len(presetTable) {
		romVersion = 0
	}
	return &Model{romVersion: romVersion, mode: ModeRoom, time: 3, level: 3, enabled: true}
}

// SetMode selects one of the four reverb modes.
func (m *Model) SetMode(mode Mode) { m.mode = mode }

// SetTime sets the decay-time setting (0-7).
func (m *Model) SetTime(t int) { m.time = clampReverb(t) }

// SetLevel sets the wet output level (0-7).
func (m *Model) SetLevel(l int) { m.level = clampReverb(l) }

func clampReverb(v int) int {
	if v < 0 {
		return 0
	}
	if v > 7 {
		return 7
	}
	return v
}

// SetEnabled toggles reverb processing. Disabling zeros all delay
// lines; re-enabling starts from silence, matching the hardware, since
// there is no state to "resume" once zeroed.
func (m *Model) SetEnabled(enabled bool) {
	if !enabled && m.enabled {
		for i := range m.lines {
			m.lines[i].clear()
		}
		m.allpass.clear()
	}
	m.enabled = enabled
}

func (m *Model) preset() preset { return presetTable[m.romVersion][m.mode] }

// Process renders one wet stereo sample from a dry mono input. Disabled
// reverb mutes in one sample rather than fading out.
func (m *Model) Process(dry int32) (wetL, wetR int32) {
	if !m.enabled {
		return 0, 0
	}
	p := m.preset()

	// Cascade through three tapped delay lines, each feeding back a
	// fraction of its own tap plus the upstream line's tap.
	timeScale := int32(8 + m.time) // 8..15, widens decay as time increases
	in := dry
	var stage [3]int32
	for i := 0; i < 3; i++ {
		length := p.delayLen[i]
		if length == 0 {
			stage[i] = 0
			continue
		}
		fb := mulQ16(p.feedbackQ16[i], timeScale) / 8
		tapped := m.lines[i].tapBack(length, length)
		fed := in + mulQ16(tapped, fb)
		m.lines[i].write(length, fed)
		stage[i] = tapped
		in = tapped
	}

	if p.allpassLen > 0 {
		ap := m.allpass.tapBack(p.allpassLen, p.allpassLen)
		apIn := stage[2] - mulQ16(ap, p.allpassGainQ16)
		m.allpass.write(p.allpassLen, apIn)
		stage[2] = ap + mulQ16(apIn, p.allpassGainQ16)
	}

	levelGain := int32(m.level+1) * 65536 / 8
	l := mulQ16(m.lines[0].tapBack(p.delayLen[0], p.tapL[0]%maxint(p.delayLen[0], 1))+stage[2], levelGain) / 2
	r := mulQ16(m.lines[1].tapBack(p.delayLen[1], p.tapR[0]%maxint(p.delayLen[1], 1))+stage[2], levelGain) / 2
	return l, r
}

func mulQ16(a, b int32) int32 { return int32((int64(a) * int64(b)) >> 16) }

func maxint(a, b int) int {
	if a > b {
		return a
	}
	return b
}
