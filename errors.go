package mt32

import "errors"

// Sentinel errors.
var (
	// ErrRomNotRecognized is fatal to Open.
	ErrRomNotRecognized = errors.New("mt32: ROM not recognized")
	// ErrNotOpen rejects a command that requires an open Synth.
	ErrNotOpen = errors.New("mt32: synth not open")
	// ErrAlreadyOpen rejects Open on an already-open Synth.
	ErrAlreadyOpen = errors.New("mt32: synth already open")
	// ErrSysexChecksumInvalid: message dropped, reported via callback.
	ErrSysexChecksumInvalid = errors.New("mt32: sysex checksum invalid")
	// ErrSysexAddressOutOfRange: message dropped, reported via callback.
	ErrSysexAddressOutOfRange = errors.New("mt32: sysex address out of range")
	// ErrMidiQueueFull: event dropped, reported via callback.
	ErrMidiQueueFull = errors.New("mt32: midi queue full")
	// ErrInvalidMidiFile surfaces from stream parsing.
	ErrInvalidMidiFile = errors.New("mt32: invalid midi stream")
)
