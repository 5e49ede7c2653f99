// Package display implements the LCD/MESSAGE-LED state machine: a
// 20-character text line plus a momentary activity LED, with report
// callbacks firing on change. Grounded on debug.Logger's ring-buffer
// shape (internal/debug), generalized from a log entry ring to a
// fixed-width LCD line plus a momentary LED flag.
package display

// LineWidth is the MT-32's LCD character width.
const LineWidth = 20

// State is the LCD/LED state machine's current snapshot.
type State struct {
	Line        [LineWidth]byte
	MessageLED  bool
	OldStyle    bool // display-compatibility mode: true=old MT-32, false=new CM-32L
}

// Machine owns the LCD text buffer and MESSAGE LED flag.
type Machine struct {
	state State

	// OnLCDChange/OnMIDILED mirror the report callback surface; nil
	// means no-op.
	OnLCDChange func(text string)
	OnMIDILED   func(on bool)
}

// NewMachine creates a Machine with a blank, centered default line.
func NewMachine() *Machine {
	m := &Machine{}
	m.clearLine()
	return m
}

func (m *Machine) clearLine() {
	for i := range m.state.Line {
		m.state.Line[i] = ' '
	}
}

// SetText overwrites the LCD line, truncating or space-padding to
// LineWidth, and fires OnLCDChange.
func (m *Machine) SetText(text string) {
	m.clearLine()
	copy(m.state.Line[:], text)
	if m.OnLCDChange != nil {
		m.OnLCDChange(string(m.state.Line[:]))
	}
}

// PulseMIDILED reflects incoming MIDI activity on the MESSAGE LED.
// on=true when a message was just received; the caller is responsible
// for turning it back off after its own debounce interval.
func (m *Machine) PulseMIDILED(on bool) {
	if m.state.MessageLED == on {
		return
	}
	m.state.MessageLED = on
	if m.OnMIDILED != nil {
		m.OnMIDILED(on)
	}
}

// SetCompatibility selects the display's old/new rendering convention.
func (m *Machine) SetCompatibility(old bool) { m.state.OldStyle = old }

// State returns a copy of the current display snapshot.
func (m *Machine) State() State { return m.state }
