// Package la32 emulates the Roland LA32 wave-generation chip's ramp
// registers and per-partial oscillator, grounded on an
// apu/fixed_point.go-style fixed-point phase-accumulator discipline:
// every per-sample computation here stays integer, float conversion
// happens only in the Float variant's own arithmetic.
package la32

import "github.com/rolandemu/mt32emu-go/internal/tables"

// InterruptTime is the fixed countdown (in samples) between a ramp
// snapping to its target and the interrupt firing.
const InterruptTime = 2

// Ramp is the hardware-accurate 32-bit logarithmic amplitude/cutoff ramp
// that drives TVA and TVF.
type Ramp struct {
	tables *tables.Tables

	current uint32
	target  uint32

	increment  int8 // high bit = descending, low 7 bits = table index
	descending bool

	interruptCountdown int
	interruptRaised    bool
}

// NewRamp creates a ramp bound to a shared Tables instance.
func NewRamp(t *tables.Tables) *Ramp {
	return &Ramp{tables: t}
}

// Reset returns the ramp to its power-on state: current and target at 0,
// no increment, no pending interrupt.
func (r *Ramp) Reset() {
	r.current = 0
	r.target = 0
	r.increment = 0
	r.descending = false
	r.interruptCountdown = 0
	r.interruptRaised = false
}

// Current returns the ramp's current 32-bit log-domain value.
func (r *Ramp) Current() uint32 { return r.current }

// StartRamp begins (or re-targets) a ramp. target is the raw hardware
// target byte (expanded to the 32-bit domain by the caller scaling it);
// increment's high bit selects descending, low 7 bits index the
// logarithmic time table.
//
// If the new target equals the ramp's current in-flight target and the
// direction is unchanged, the ramp simply continues; otherwise the step
// is recomputed from scratch.
func (r *Ramp) StartRamp(target uint32, increment uint8) {
	descending := increment&0x80 != 0
	if target == r.target && descending == r.descending && r.increment != 0 {
		return
	}
	r.target = target
	r.increment = int8(increment)
	r.descending = descending
	r.interruptRaised = false
	r.interruptCountdown = 0
}

func (r *Ramp) stepMagnitude() int32 {
	idx := int(r.increment & 0x7F)
	return r.tables.RampIncrement[idx]
}

// NextValue advances the ramp by one sample and returns the new current
// value.
func (r *Ramp) NextValue() uint32 {
	if r.interruptCountdown > 0 {
		r.interruptCountdown--
		if r.interruptCountdown == 0 {
			r.interruptRaised = true
		}
	}

	if r.increment == 0 {
		return r.current
	}

	step := r.stepMagnitude()

	if !r.descending {
		next := int64(r.current) + int64(step)
		if next >= int64(r.target) {
			r.current = r.target
			r.armInterrupt()
		} else {
			r.current = uint32(next)
		}
		return r.current
	}

	// Descending: symmetric to ascending, snapping to target (or 0 if the
	// target is below current and the step would cross below it).
	cur := int64(r.current)
	next := cur - int64(step)
	if next <= int64(r.target) {
		r.current = r.target
		r.armInterrupt()
	} else {
		r.current = uint32(next)
	}
	return r.current
}

func (r *Ramp) armInterrupt() {
	if r.interruptCountdown == 0 && !r.interruptRaised {
		r.interruptCountdown = InterruptTime
	}
}

// CheckInterrupt reports whether the interrupt has fired since the last
// call, clearing it. The envelope state machines poll this each sample
// and advance phase when it's set.
func (r *Ramp) CheckInterrupt() bool {
	if r.interruptRaised {
		r.interruptRaised = false
		return true
	}
	return false
}

// IsBelowCurrent reports whether target lies below the ramp's current
// value, used by envelope code to pick a ramp direction without waiting
// for the next sample.
func (r *Ramp) IsBelowCurrent(target uint32) bool {
	return target < r.current
}
