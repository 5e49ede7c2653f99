package mt32

import (
	"github.com/rolandemu/mt32emu-go/internal/config"
	"github.com/rolandemu/mt32emu-go/internal/memory"
)

// SetOutputGain sets the post-analog-stage gain multiplier.
func (s *Synth) SetOutputGain(gain float32) { s.cfg.OutputGain = gain }

// SetReverbOutputGain sets the reverb wet-signal mix gain.
func (s *Synth) SetReverbOutputGain(gain float32) { s.cfg.ReverbOutputGain = gain }

// SetReverbEnabled toggles the Boss-chip reverb stage; disabling zeros
// its delay lines so re-enabling starts from silence.
func (s *Synth) SetReverbEnabled(enabled bool) {
	s.cfg.ReverbEnabled = enabled
	if s.reverbModel != nil {
		s.reverbModel.SetEnabled(enabled)
	}
}

// SetReversedStereo swaps the left/right output channels.
func (s *Synth) SetReversedStereo(reversed bool) { s.cfg.ReversedStereo = reversed }

// SetNiceAmpRampEnabled toggles the smoothed (non-hardware-exact) TVA
// ramp mode.
func (s *Synth) SetNiceAmpRampEnabled(nice bool) { s.cfg.NiceAmpRamp = nice }

// SetDACMode selects the DAC input emulation quirk.
func (s *Synth) SetDACMode(mode config.DACMode) { s.cfg.DACMode = mode }

// SetMIDIDelayMode selects when queued MIDI events become eligible for
// dispatch.
func (s *Synth) SetMIDIDelayMode(mode config.MIDIDelayMode) { s.cfg.MIDIDelayMode = mode }

// SetPartVolumeOverride pins part's effective volume to level (0-100),
// bypassing incoming CC7 Volume until cleared. Pass a negative level to
// clear the override.
func (s *Synth) SetPartVolumeOverride(part int, level int) {
	if part < 0 || part >= numParts {
		return
	}
	s.partVolumeOverride[part] = level
	if level >= 0 {
		s.parts[part].Volume = uint8(level)
	}
}

// GetPartVolumeOverride reports the current override for part, or
// ok=false if none is set.
func (s *Synth) GetPartVolumeOverride(part int) (level int, ok bool) {
	if part < 0 || part >= numParts || s.partVolumeOverride[part] < 0 {
		return 0, false
	}
	return s.partVolumeOverride[part], true
}

// SetDisplayCompatibility selects the LCD's old MT-32 / new CM-32L
// rendering convention.
func (s *Synth) SetDisplayCompatibility(old bool) { s.displayMach.SetCompatibility(old) }

// SetMainDisplayMode clears LCD text left by a Sysex display-override
// message, leaving a blank line.
func (s *Synth) SetMainDisplayMode() { s.displayMach.SetText("") }

// PartStates returns a bitfield with bit i set if part i has at least
// one sounding poly.
func (s *Synth) PartStates() uint32 {
	var bits uint32
	for i, p := range s.parts {
		keys, _ := p.PlayingNotes(s.polys)
		if len(keys) > 0 {
			bits |= 1 << uint(i)
		}
	}
	return bits
}

// PartialStates returns one state byte per pool slot: 0=free,
// 1=started, 2=dead.
func (s *Synth) PartialStates() []byte {
	states := s.partialMgr.States()
	out := make([]byte, len(states))
	for i, st := range states {
		out[i] = byte(st)
	}
	return out
}

// PlayingNotes returns the keys and velocities currently sounding on
// part.
func (s *Synth) PlayingNotes(part int) (keys, velocities []uint8) {
	if part < 0 || part >= numParts {
		return nil, nil
	}
	return s.parts[part].PlayingNotes(s.polys)
}

// ReadMemory returns length bytes of parameter memory starting at addr,
// zero-filled where out of range.
func (s *Synth) ReadMemory(addr uint32, length int) []byte {
	return s.mem.Read(addr, length)
}

// PatchName returns the name string stored in part's active timbre
// record, or "" if unprogrammed.
func (s *Synth) PatchName(part int) string {
	if part < 0 || part >= numParts {
		return ""
	}
	rec := s.mem.Region(memory.RegionTimbres, s.parts[part].ActiveTimbre)
	if rec == nil || len(rec) < timbreStructureOffset {
		return ""
	}
	return trimTimbreName(rec[:timbreStructureOffset])
}

// SoundGroupName reports the preset group label for part's active
// timbre. Full group categorization lives outside the synthesis core
// this engine implements, so only the RHYTHM/melodic distinction is
// modeled.
func (s *Synth) SoundGroupName(part int) string {
	if part == rhythmPartIndex {
		return "RHYTHM"
	}
	return "NO GROUP"
}

func trimTimbreName(raw []byte) string {
	end := len(raw)
	for end > 0 && (raw[end-1] == 0 || raw[end-1] == ' ') {
		end--
	}
	return string(raw[:end])
}
